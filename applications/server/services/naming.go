package services

import (
	"fmt"
	"path"

	"github.com/chunkd/chunkd/applications/server/interfaces"
)

const defaultPublicPrefix = "/uploads"

type pathNamer struct {
	publicPrefix string
}

// NewPathNamer returns the deterministic session/chunk path mapping
// shared by receiver and assembler. publicPrefix defaults to /uploads.
func NewPathNamer(publicPrefix string) interfaces.PathNamer {
	if publicPrefix == "" {
		publicPrefix = defaultPublicPrefix
	}

	return &pathNamer{publicPrefix: publicPrefix}
}

func (n *pathNamer) SessionDir(sessionID string) string {
	return sessionID
}

func (n *pathNamer) ChunkPath(sessionID string, chunkIndex int) string {
	return path.Join(sessionID, fmt.Sprintf("chunk_%d", chunkIndex))
}

func (n *pathNamer) PublicPath(destinationName string) string {
	return path.Join(n.publicPrefix, destinationName)
}
