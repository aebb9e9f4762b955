package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Storage backends selectable via storage.backend.
const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendS3     = "s3"
)

// Server is the whole service configuration.
type Server struct {
	API     Api     `yaml:"api"`
	Storage Storage `yaml:"storage"`
	Janitor Janitor `yaml:"janitor"`
	Notify  Notify  `yaml:"notify"`
}

type Api struct {
	HTTPAddr string `yaml:"http_addr"`
}

type Storage struct {
	Backend         string `yaml:"backend"`
	StagingRoot     string `yaml:"staging_root"`
	DestinationRoot string `yaml:"destination_root"`
	// MaxChunks caps total_chunks in finalize requests; 0 selects the
	// service default of 1000.
	MaxChunks int `yaml:"max_chunks"`
	S3        S3  `yaml:"s3"`
}

type S3 struct {
	Region            string `yaml:"region"`
	Bucket            string `yaml:"bucket"`
	StagingPrefix     string `yaml:"staging_prefix"`
	DestinationPrefix string `yaml:"destination_prefix"`
}

// Janitor reaps stale staging directories; zero TTL or Interval
// disables it.
type Janitor struct {
	TTL      Duration `yaml:"ttl"`
	Interval Duration `yaml:"interval"`
}

type Notify struct {
	// SQSQueueURL enables completion notifications when non-empty.
	SQSQueueURL string `yaml:"sqs_queue_url"`
}

// Duration accepts "24h"-style values in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(v)

	return nil
}

func Parse(path string) (Server, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Server{}, fmt.Errorf("can't read config file: %w", err)
	}

	var cfg Server
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return Server{}, fmt.Errorf("can't unmarshal config: %w", err)
	}

	return cfg, nil
}

func (s Server) Validate() error {
	if s.API.HTTPAddr == "" {
		return fmt.Errorf("api.http_addr is required")
	}
	if s.Storage.MaxChunks < 0 {
		return fmt.Errorf("storage.max_chunks must not be negative")
	}

	switch s.Storage.Backend {
	case BackendLocal:
		if s.Storage.StagingRoot == "" {
			return fmt.Errorf("storage.staging_root is required for the local backend")
		}
		if s.Storage.DestinationRoot == "" {
			return fmt.Errorf("storage.destination_root is required for the local backend")
		}
	case BackendMemory:
	case BackendS3:
		if s.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required for the s3 backend")
		}
		if s.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", s.Storage.Backend)
	}

	return nil
}
