package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathNamerDeterministicMapping(t *testing.T) {
	n := NewPathNamer("")

	assert.Equal(t, "abc-1", n.SessionDir("abc-1"))
	assert.Equal(t, "abc-1/chunk_0", n.ChunkPath("abc-1", 0))
	assert.Equal(t, "abc-1/chunk_42", n.ChunkPath("abc-1", 42))
	assert.Equal(t, "/uploads/out.bin", n.PublicPath("out.bin"))
}

func TestPathNamerCustomPublicPrefix(t *testing.T) {
	n := NewPathNamer("/files")

	assert.Equal(t, "/files/out.bin", n.PublicPath("out.bin"))
}
