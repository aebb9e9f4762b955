package interfaces

import (
	"context"
	"io"
)

// DestinationStore holds assembled files.
type DestinationStore interface {
	// OpenAppend opens a sequential write stream for name inside the
	// destination root, creating the root if absent and truncating any
	// previous file of the same name. Close flushes the write durably
	// before returning.
	OpenAppend(ctx context.Context, name string) (io.WriteCloser, error)
}
