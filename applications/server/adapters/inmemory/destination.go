package inmemory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/chunkd/chunkd/applications/server/interfaces"
)

type InMemoryDestinationStore struct {
	files map[string][]byte
	mutex sync.RWMutex
}

func NewDestinationStore() *InMemoryDestinationStore {
	return &InMemoryDestinationStore{
		files: map[string][]byte{},
	}
}

var _ interfaces.DestinationStore = (*InMemoryDestinationStore)(nil)

func (m *InMemoryDestinationStore) OpenAppend(ctx context.Context, name string) (io.WriteCloser, error) {
	return &memFile{store: m, name: name}, nil
}

// Bytes returns the stored content of an assembled file. Writes that
// were never Closed are not visible.
func (m *InMemoryDestinationStore) Bytes(name string) ([]byte, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	data, ok := m.files[name]

	return data, ok
}

// memFile buffers appends and publishes them on Close, which is as
// close to "durably flushed" as memory gets. Partial writes before a
// failed assembly still land in the store via close, matching the file
// backend where the partial file is already on disk.
type memFile struct {
	store *InMemoryDestinationStore
	name  string
	buf   bytes.Buffer
}

func (f *memFile) Write(p []byte) (int, error) {
	return f.buf.Write(p)
}

func (f *memFile) Close() error {
	f.store.mutex.Lock()
	defer f.store.mutex.Unlock()

	f.store.files[f.name] = f.buf.Bytes()

	return nil
}
