package interfaces

import (
	"context"

	"github.com/chunkd/chunkd/applications/server/domain"
)

// CompletionNotifier publishes the fact that a session was assembled.
// Notification failures never change the finalize result.
type CompletionNotifier interface {
	NotifyAssembled(ctx context.Context, file domain.AssembledFile) error
}
