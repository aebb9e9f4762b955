package services

import (
	"regexp"

	"github.com/go-kit/log"

	"github.com/chunkd/chunkd/applications/server"
	"github.com/chunkd/chunkd/applications/server/interfaces"
)

const defaultMaxChunks = 1000

// sessionIDPattern is an allow-list: ids containing anything outside it
// are rejected outright, never stripped down to a valid shape.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type service struct {
	staging     interfaces.StagingStore
	destination interfaces.DestinationStore
	namer       interfaces.PathNamer
	notifier    interfaces.CompletionNotifier
	maxChunks   int
	locks       *sessionLocks
	logger      log.Logger
}

// NewService wires the chunk receiver and assembler over the given
// stores. notifier may be nil; maxChunks <= 0 selects the default
// ceiling of 1000.
func NewService(
	staging interfaces.StagingStore,
	destination interfaces.DestinationStore,
	namer interfaces.PathNamer,
	notifier interfaces.CompletionNotifier,
	maxChunks int,
	logger log.Logger,
) server.UploadService {
	if maxChunks <= 0 {
		maxChunks = defaultMaxChunks
	}

	return &service{
		staging:     staging,
		destination: destination,
		namer:       namer,
		notifier:    notifier,
		maxChunks:   maxChunks,
		locks:       newSessionLocks(),
		logger:      logger,
	}
}
