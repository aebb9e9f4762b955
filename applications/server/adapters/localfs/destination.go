package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/chunkd/chunkd/applications/server/interfaces"
)

type destinationStore struct {
	root string
}

func NewDestinationStore(root string) interfaces.DestinationStore {
	return &destinationStore{root: root}
}

func (d *destinationStore) OpenAppend(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(filepath.Join(d.root, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	return &syncedFile{File: f}, nil
}

// syncedFile fsyncs on Close so a reported success means the assembled
// bytes are durable, not just buffered.
type syncedFile struct {
	*os.File
}

func (f *syncedFile) Close() error {
	if err := f.Sync(); err != nil {
		_ = f.File.Close()
		return err
	}

	return f.File.Close()
}
