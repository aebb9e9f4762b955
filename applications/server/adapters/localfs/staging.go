package localfs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/chunkd/chunkd/applications/server/interfaces"
)

// stagingStore keeps chunk files on the local filesystem under an
// explicit root passed at construction. Nothing here reads ambient
// process state like the temp dir or the working directory.
type stagingStore struct {
	root string
	log  log.Logger
}

func NewStagingStore(root string, logger log.Logger) interfaces.StagingStore {
	return &stagingStore{
		root: root,
		log:  logger,
	}
}

func (s *stagingStore) abs(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(p))
}

func (s *stagingStore) EnsureDir(ctx context.Context, dir string) error {
	return os.MkdirAll(s.abs(dir), 0o755)
}

func (s *stagingStore) WriteFile(ctx context.Context, path string, data []byte) error {
	return os.WriteFile(s.abs(path), data, 0o644)
}

// ReadFile reports an absent file through the os error, which wraps
// fs.ErrNotExist as the StagingStore contract requires.
func (s *stagingStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(s.abs(path))
}

func (s *stagingStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(s.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (s *stagingStore) RemoveAll(ctx context.Context, dir string) error {
	err := os.RemoveAll(s.abs(dir))
	if err != nil {
		return err
	}

	level.Debug(s.log).Log("msg", "staging dir removed",
		"dir", dir,
	)

	return nil
}
