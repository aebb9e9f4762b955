package interfaces

// PathNamer maps session and destination identities to store paths.
// The mapping is deterministic and independent of the physical roots,
// so receiver and assembler agree on chunk locations without sharing
// any state beyond the staging namespace.
type PathNamer interface {
	SessionDir(sessionID string) string
	ChunkPath(sessionID string, chunkIndex int) string
	// PublicPath is a caller-facing reference for an assembled file,
	// e.g. /uploads/report.pdf. It is not a filesystem path.
	PublicPath(destinationName string) string
}
