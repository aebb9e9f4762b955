package server

import (
	"context"
)

// UploadService reassembles files uploaded as independently transmitted
// chunks. ReceiveChunk stages one chunk of one session; Finalize
// verifies completeness, concatenates the chunks in index order into
// the destination and reclaims the session's staging storage.
//
// Finalize must be called at most once per session, after all chunks
// have been accepted. Concurrent Finalize calls for the same session
// are serialized by the service.
type UploadService interface {
	ReceiveChunk(ctx context.Context, sessionID string, chunkIndex int, payload []byte) error
	Finalize(ctx context.Context, sessionID, destinationName string, totalChunks int) (string, error)
}
