package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"

	"github.com/chunkd/chunkd/applications/server/domain"
)

// assemblyFailedMsg is the public face of every mid-assembly failure.
// A missing chunk aborts the loop after some bytes may already have
// reached the destination, and those bytes are not rolled back, so the
// message says so.
const assemblyFailedMsg = "assembly failed; the destination may contain a partial file"

// Finalize streams chunks 0..totalChunks-1 in order into the
// destination, then unconditionally deletes the session's staging
// directory, success or not. It returns the public path on success.
func (s *service) Finalize(ctx context.Context, sessionID, destinationName string, totalChunks int) (string, error) {
	if totalChunks < 1 || totalChunks > s.maxChunks {
		return "", domain.NewError(domain.KindInvalidChunkCount,
			fmt.Sprintf("total chunks must be within [1, %d]", s.maxChunks))
	}
	if !sessionIDPattern.MatchString(sessionID) {
		return "", domain.NewError(domain.KindInvalidSessionID, "session id must be a non-empty string of [A-Za-z0-9_-]")
	}

	// Only the final path segment of the destination name survives, so
	// a crafted name can't escape the destination root.
	name := path.Base(strings.ReplaceAll(destinationName, "\\", "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", domain.NewError(domain.KindInvalidDestination, "destination name is empty")
	}

	release := s.locks.Acquire(sessionID)
	defer release()

	dir := s.namer.SessionDir(sessionID)
	ok, err := s.staging.Exists(ctx, dir)
	if err != nil {
		level.Error(s.logger).Log("msg", "can't check session staging dir",
			"session_id", sessionID,
			"err", err,
		)
		return "", domain.WrapError(domain.KindStorageFailure, "can't inspect session", err)
	}
	if !ok {
		return "", domain.NewError(domain.KindSessionNotFound, "no staged chunks for session")
	}

	publicPath, asmErr := s.assemble(ctx, sessionID, name, totalChunks)

	// Cleanup runs on both outcomes and never masks them. A failed
	// delete orphans staging data, which an operator has to reclaim.
	if rmErr := s.staging.RemoveAll(ctx, dir); rmErr != nil {
		level.Warn(s.logger).Log("msg", "staging cleanup failed, orphaned staging data left behind",
			"session_id", sessionID,
			"err", rmErr,
		)
	}

	if asmErr != nil {
		return "", asmErr
	}

	if s.notifier != nil {
		if nErr := s.notifier.NotifyAssembled(ctx, domain.AssembledFile{SessionID: sessionID, Path: publicPath}); nErr != nil {
			level.Error(s.logger).Log("msg", "completion notification failed",
				"session_id", sessionID,
				"err", nErr,
			)
		}
	}

	return publicPath, nil
}

func (s *service) assemble(ctx context.Context, sessionID, name string, totalChunks int) (string, error) {
	out, err := s.destination.OpenAppend(ctx, name)
	if err != nil {
		level.Error(s.logger).Log("msg", "can't open destination stream",
			"session_id", sessionID,
			"destination", name,
			"err", err,
		)
		return "", domain.WrapError(domain.KindAssemblyFailed, assemblyFailedMsg, err)
	}

	var written int64
	for i := 0; i < totalChunks; i++ {
		data, err := s.staging.ReadFile(ctx, s.namer.ChunkPath(sessionID, i))
		if err != nil {
			_ = out.Close()
			if errors.Is(err, fs.ErrNotExist) {
				level.Error(s.logger).Log("msg", "chunk missing during assembly",
					"session_id", sessionID,
					"chunk_index", i,
				)
			} else {
				level.Error(s.logger).Log("msg", "can't read chunk during assembly",
					"session_id", sessionID,
					"chunk_index", i,
					"err", err,
				)
			}
			return "", domain.WrapError(domain.KindAssemblyFailed, assemblyFailedMsg, err)
		}

		if _, err := out.Write(data); err != nil {
			_ = out.Close()
			level.Error(s.logger).Log("msg", "can't write to destination",
				"session_id", sessionID,
				"chunk_index", i,
				"err", err,
			)
			return "", domain.WrapError(domain.KindAssemblyFailed, assemblyFailedMsg, err)
		}

		written += int64(len(data))
	}

	if err := out.Close(); err != nil {
		level.Error(s.logger).Log("msg", "can't flush destination",
			"session_id", sessionID,
			"destination", name,
			"err", err,
		)
		return "", domain.WrapError(domain.KindAssemblyFailed, assemblyFailedMsg, err)
	}

	level.Info(s.logger).Log("msg", "file assembled",
		"session_id", sessionID,
		"destination", name,
		"chunks", totalChunks,
		"size", humanize.Bytes(uint64(written)),
	)

	return s.namer.PublicPath(name), nil
}
