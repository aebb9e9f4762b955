package localfs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chunkd/chunkd/applications/server/services"
)

func TestStagingStoreLifecycle(t *testing.T) {
	s := NewStagingStore(t.TempDir(), log.NewNopLogger())
	ctx := context.Background()

	ok, err := s.Exists(ctx, "sess")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.EnsureDir(ctx, "sess"))
	// Idempotent.
	require.NoError(t, s.EnsureDir(ctx, "sess"))

	ok, err = s.Exists(ctx, "sess")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.WriteFile(ctx, "sess/chunk_0", []byte("hello")))

	data, err := s.ReadFile(ctx, "sess/chunk_0")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, s.RemoveAll(ctx, "sess"))

	ok, err = s.Exists(ctx, "sess")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing an absent dir is not an error.
	require.NoError(t, s.RemoveAll(ctx, "sess"))
}

func TestStagingStoreReadMissingChunk(t *testing.T) {
	s := NewStagingStore(t.TempDir(), log.NewNopLogger())

	_, err := s.ReadFile(context.Background(), "sess/chunk_7")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestStagingStoreOverwriteWins(t *testing.T) {
	s := NewStagingStore(t.TempDir(), log.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, s.EnsureDir(ctx, "sess"))
	require.NoError(t, s.WriteFile(ctx, "sess/chunk_0", []byte("first")))
	require.NoError(t, s.WriteFile(ctx, "sess/chunk_0", []byte("second")))

	data, err := s.ReadFile(ctx, "sess/chunk_0")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestDestinationStoreCreatesRootAndFlushes(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	d := NewDestinationStore(root)

	w, err := d.OpenAppend(context.Background(), "out.bin")
	require.NoError(t, err)

	_, err = w.Write([]byte("AAAA"))
	require.NoError(t, err)
	_, err = w.Write([]byte("BB"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(root, "out.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte("AAAABB"), data)
}

func TestServiceRoundTripOnDisk(t *testing.T) {
	stagingRoot := t.TempDir()
	destinationRoot := filepath.Join(t.TempDir(), "uploads")
	logger := log.NewNopLogger()

	svc := services.NewService(
		NewStagingStore(stagingRoot, logger),
		NewDestinationStore(destinationRoot),
		services.NewPathNamer(""),
		nil,
		0,
		logger,
	)
	ctx := context.Background()

	require.NoError(t, svc.ReceiveChunk(ctx, "abc-1", 0, []byte("AAAA")))
	require.NoError(t, svc.ReceiveChunk(ctx, "abc-1", 1, []byte("BB")))

	path, err := svc.Finalize(ctx, "abc-1", "out.bin", 2)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/out.bin", path)

	data, err := os.ReadFile(filepath.Join(destinationRoot, "out.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte("AAAABB"), data)

	_, err = os.Stat(filepath.Join(stagingRoot, "abc-1"))
	assert.True(t, os.IsNotExist(err), "staging dir must be gone after finalize")
}
