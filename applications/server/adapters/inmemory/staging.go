package inmemory

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/chunkd/chunkd/applications/server/interfaces"
)

// inMemoryStagingStore models the staging namespace as maps keyed by
// slash-separated paths. Directories are tracked explicitly because a
// session exists exactly while its (possibly empty) dir does.
type inMemoryStagingStore struct {
	files map[string][]byte
	dirs  map[string]struct{}
	log   log.Logger
	mutex sync.RWMutex
}

func NewStagingStore(logger log.Logger) interfaces.StagingStore {
	return &inMemoryStagingStore{
		files: map[string][]byte{},
		dirs:  map[string]struct{}{},
		log:   logger,
	}
}

func (m *inMemoryStagingStore) EnsureDir(ctx context.Context, dir string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.dirs[dir] = struct{}{}

	return nil
}

func (m *inMemoryStagingStore) WriteFile(ctx context.Context, path string, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[path] = buf

	level.Info(m.log).Log("msg", "chunk file written",
		"path", path,
		"size", humanize.Bytes(uint64(len(data))),
	)

	return nil
}

func (m *inMemoryStagingStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}

	return data, nil
}

func (m *inMemoryStagingStore) Exists(ctx context.Context, path string) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if _, ok := m.dirs[path]; ok {
		return true, nil
	}
	_, ok := m.files[path]

	return ok, nil
}

func (m *inMemoryStagingStore) RemoveAll(ctx context.Context, dir string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.dirs, dir)
	prefix := dir + "/"
	for path := range m.files {
		if strings.HasPrefix(path, prefix) {
			delete(m.files, path)
		}
	}

	return nil
}
