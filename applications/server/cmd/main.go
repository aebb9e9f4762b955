package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/chunkd/chunkd/applications/server"
	"github.com/chunkd/chunkd/applications/server/adapters/inmemory"
	"github.com/chunkd/chunkd/applications/server/adapters/localfs"
	s3adapter "github.com/chunkd/chunkd/applications/server/adapters/s3"
	sqsadapter "github.com/chunkd/chunkd/applications/server/adapters/sqs"
	"github.com/chunkd/chunkd/applications/server/config"
	"github.com/chunkd/chunkd/applications/server/handlers/http"
	"github.com/chunkd/chunkd/applications/server/interfaces"
	"github.com/chunkd/chunkd/applications/server/janitor"
	"github.com/chunkd/chunkd/applications/server/services"
)

// exitCode is a process termination code.
type exitCode int

// Possible process termination codes are listed below.
const (
	// exitSuccess is code for successful program termination.
	exitSuccess exitCode = 0
	// exitFailure is code for unsuccessful program termination.
	exitFailure exitCode = 1
)

// Kubernetes (rolling update) doesn't wait until a pod is out of rotation before sending SIGTERM,
// and external LB could still route traffic to a non-existing pod resulting in a surge of 50x API errors.
// It's recommended to wait for 5 seconds before terminating the program; see references
// https://github.com/kubernetes-retired/contrib/issues/1140, https://youtu.be/me5iyiheOC8?t=1797.
const preStopWait = 5 * time.Second

// Shutdown timeout for http servers.
const shutdownTimeout = 5 * time.Second

var (
	// version is the service version from git tag.
	version = ""
)

func main() {
	os.Exit(int(gracefulMain()))
}

// gracefulMain releases resources gracefully upon termination.
// When we call os.Exit defer statements do not run resulting in unclean process shutdown.
// nolint
func gracefulMain() exitCode {
	var logger log.Logger
	{
		logger = log.NewJSONLogger(log.NewSyncWriter(os.Stderr))
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := fs.String("config", "", "path to the config file")
	v := fs.Bool("v", false, "Show version")

	err := fs.Parse(os.Args[1:])
	if err == flag.ErrHelp {
		return exitSuccess
	}
	if err != nil {
		logger.Log("msg", "parsing cli flags failed", "err", err)
		return exitFailure
	}

	if *v {
		if version == "" {
			level.Error(logger).Log("Version not set")
		} else {
			level.Info(logger).Log("Version: %s\n", version)
		}

		return exitSuccess
	}

	logger.Log("configPath", *configPath)

	cfg, err := config.Parse(*configPath)
	if err != nil {
		logger.Log("msg", "cannot parse service config", "err", err)
		return exitFailure
	}

	err = cfg.Validate()
	if err != nil {
		logger.Log("msg", "config validation failed", "err", err)
		return exitFailure
	}

	// It's nice to be able to see panics in Logs, hence we monitor for panics after
	// logger has been bootstrapped.
	defer monitorPanic(logger)
	ctx := context.Background()

	var awsCfg aws.Config
	if cfg.Storage.Backend == config.BackendS3 || cfg.Notify.SQSQueueURL != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.S3.Region))
		if err != nil {
			level.Error(logger).Log("msg", "cannot load aws config", "err", err)
			return exitFailure
		}
	}

	var stagingStore interfaces.StagingStore
	var destinationStore interfaces.DestinationStore
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		stagingStore = inmemory.NewStagingStore(logger)
		destinationStore = inmemory.NewDestinationStore()
	case config.BackendS3:
		client := awss3.NewFromConfig(awsCfg)
		stagingStore = s3adapter.NewStagingStore(client, cfg.Storage.S3.Bucket, cfg.Storage.S3.StagingPrefix)
		destinationStore = s3adapter.NewDestinationStore(client, cfg.Storage.S3.Bucket, cfg.Storage.S3.DestinationPrefix)
	default:
		stagingStore = localfs.NewStagingStore(cfg.Storage.StagingRoot, logger)
		destinationStore = localfs.NewDestinationStore(cfg.Storage.DestinationRoot)
	}

	var notifier interfaces.CompletionNotifier
	if cfg.Notify.SQSQueueURL != "" {
		notifier = sqsadapter.NewNotifier(awssqs.NewFromConfig(awsCfg), cfg.Notify.SQSQueueURL)
	}

	var uploadService server.UploadService
	{
		namer := services.NewPathNamer("")
		uploadService = services.NewService(stagingStore, destinationStore, namer, notifier, cfg.Storage.MaxChunks, logger)
	}

	hServer := http.NewHTTPServer(cfg.API, uploadService, logger)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-sig:
			level.Info(logger).Log("msg", fmt.Sprintf("signal received (waiting %v before terminating): %v", preStopWait, s))
			time.Sleep(preStopWait)
			level.Info(logger).Log("msg", "terminating...")

			return fmt.Errorf("signal received: %s", s)
		}
	})

	if cfg.Storage.Backend == config.BackendLocal {
		j := janitor.New(cfg.Storage.StagingRoot, time.Duration(cfg.Janitor.TTL), time.Duration(cfg.Janitor.Interval), logger)
		group.Go(func() error {
			return j.Run(ctx)
		})
	}

	group.Go(func() error {
		if err := hServer.ListenAndServe(); err != nil {
			return fmt.Errorf("listen and server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()

		level.Info(logger).Log("msg", "graceful shutdown of server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err = hServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}

		return ctx.Err()
	})

	if err = group.Wait(); err != nil {
		level.Error(logger).Log("msg", fmt.Sprintf("actors stopped with err: %v", err))
		return exitFailure
	}

	level.Info(logger).Log("msg", "actors stopped without errors")

	return exitSuccess
}

// monitorPanic monitors panics and reports them somewhere (e.g. logs, ...).
func monitorPanic(logger log.Logger) {
	if rec := recover(); rec != nil {
		err := fmt.Sprintf("panic: %v \n stack trace: %s", rec, debug.Stack())
		level.Error(logger).Log("err", err)
		panic(err)
	}
}
