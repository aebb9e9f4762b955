package services

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"

	"github.com/chunkd/chunkd/applications/server/domain"
)

// ReceiveChunk validates and stages one chunk. The staging directory is
// created on demand, which is the only thing that makes a session
// exist. Re-uploading an index overwrites the previous bytes, so the
// last writer wins.
func (s *service) ReceiveChunk(ctx context.Context, sessionID string, chunkIndex int, payload []byte) error {
	if !sessionIDPattern.MatchString(sessionID) {
		return domain.NewError(domain.KindInvalidSessionID, "session id must be a non-empty string of [A-Za-z0-9_-]")
	}
	if chunkIndex < 0 {
		return domain.NewError(domain.KindInvalidChunkIndex, "chunk index must be a non-negative integer")
	}
	if len(payload) == 0 {
		return domain.NewError(domain.KindMissingPayload, "chunk payload is empty")
	}

	dir := s.namer.SessionDir(sessionID)
	if err := s.staging.EnsureDir(ctx, dir); err != nil {
		level.Error(s.logger).Log("msg", "can't create staging dir",
			"session_id", sessionID,
			"err", err,
		)
		return domain.WrapError(domain.KindStorageFailure, "can't stage chunk", err)
	}

	chunkPath := s.namer.ChunkPath(sessionID, chunkIndex)
	if err := s.staging.WriteFile(ctx, chunkPath, payload); err != nil {
		level.Error(s.logger).Log("msg", "can't write chunk",
			"session_id", sessionID,
			"chunk_index", chunkIndex,
			"err", err,
		)
		return domain.WrapError(domain.KindStorageFailure, "can't stage chunk", err)
	}

	level.Info(s.logger).Log("msg", "chunk staged",
		"session_id", sessionID,
		"chunk_index", chunkIndex,
		"size", humanize.Bytes(uint64(len(payload))),
	)

	return nil
}
