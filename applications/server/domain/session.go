package domain

// A session has no stored record of its own: it exists exactly as long
// as its staging directory does, created by the first accepted chunk
// and deleted by finalize.

// AssembledFile describes a successfully assembled destination file.
type AssembledFile struct {
	SessionID string
	Path      string
}
