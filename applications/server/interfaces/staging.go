package interfaces

import (
	"context"
)

// StagingStore is the keyed namespace holding chunk files between
// upload and finalize. Paths are store-relative, slash-separated.
//
// ReadFile reports an absent file with an error wrapping fs.ErrNotExist
// so callers can tell a missing chunk from an infrastructure failure.
type StagingStore interface {
	EnsureDir(ctx context.Context, dir string) error
	WriteFile(ctx context.Context, path string, data []byte) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	// RemoveAll deletes dir and everything under it. Removing an
	// already absent dir is not an error.
	RemoveAll(ctx context.Context, dir string) error
}
