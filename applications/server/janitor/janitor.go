package janitor

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Janitor reaps staging directories of sessions whose chunks stopped
// arriving and whose finalize never came. It operates on the local
// staging root directly and is wired outside the upload service: the
// core never depends on it.
type Janitor struct {
	root     string
	ttl      time.Duration
	interval time.Duration
	logger   log.Logger
}

func New(root string, ttl, interval time.Duration, logger log.Logger) *Janitor {
	return &Janitor{
		root:     root,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on every tick until ctx is done. A zero ttl or interval
// disables sweeping and just waits for ctx.
func (j *Janitor) Run(ctx context.Context) error {
	if j.ttl <= 0 || j.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := j.SweepOnce(); err != nil {
				level.Warn(j.logger).Log("msg", "janitor sweep failed", "err", err)
			}
		}
	}
}

// SweepOnce removes session directories whose newest entry is older
// than the TTL. A session still receiving chunks keeps bumping its
// newest mtime and is left alone.
func (j *Janitor) SweepOnce() error {
	entries, err := os.ReadDir(j.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	now := time.Now()
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		dir := filepath.Join(j.root, e.Name())
		newest, err := newestModTime(dir)
		if err != nil {
			continue
		}
		if now.Sub(newest) < j.ttl {
			continue
		}

		if err := os.RemoveAll(dir); err != nil {
			level.Warn(j.logger).Log("msg", "can't remove stale staging dir",
				"session_id", e.Name(),
				"err", err,
			)
			continue
		}

		level.Info(j.logger).Log("msg", "stale session staging removed",
			"session_id", e.Name(),
		)
	}

	return nil
}

func newestModTime(dir string) (time.Time, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return time.Time{}, err
	}
	newest := info.ModTime()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, err
	}
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(newest) {
			newest = fi.ModTime()
		}
	}

	return newest, nil
}
