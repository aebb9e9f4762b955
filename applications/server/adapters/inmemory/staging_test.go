package inmemory

import (
	"context"
	"io/fs"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagingStoreRemoveAllIsPrefixScoped(t *testing.T) {
	s := NewStagingStore(log.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, s.EnsureDir(ctx, "sess"))
	require.NoError(t, s.EnsureDir(ctx, "sess2"))
	require.NoError(t, s.WriteFile(ctx, "sess/chunk_0", []byte("a")))
	require.NoError(t, s.WriteFile(ctx, "sess2/chunk_0", []byte("b")))

	require.NoError(t, s.RemoveAll(ctx, "sess"))

	ok, err := s.Exists(ctx, "sess")
	require.NoError(t, err)
	assert.False(t, ok)

	// "sess2" shares the "sess" string prefix but is a different dir
	// and must survive.
	ok, err = s.Exists(ctx, "sess2")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := s.ReadFile(ctx, "sess2/chunk_0")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), data)

	_, err = s.ReadFile(ctx, "sess/chunk_0")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestStagingStoreEmptyDirStillExists(t *testing.T) {
	s := NewStagingStore(log.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, s.EnsureDir(ctx, "sess"))

	ok, err := s.Exists(ctx, "sess")
	require.NoError(t, err)
	assert.True(t, ok, "a session with zero chunks still exists")
}

func TestDestinationStoreCloseMakesBytesVisible(t *testing.T) {
	d := NewDestinationStore()

	w, err := d.OpenAppend(context.Background(), "f.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("xy"))
	require.NoError(t, err)

	_, ok := d.Bytes("f.bin")
	assert.False(t, ok, "bytes must not be visible before Close")

	require.NoError(t, w.Close())

	data, ok := d.Bytes("f.bin")
	require.True(t, ok)
	assert.Equal(t, []byte("xy"), data)
}
