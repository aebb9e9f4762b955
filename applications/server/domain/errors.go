package domain

import (
	"errors"
)

// Kind classifies a service error with a short machine-readable string.
// It is the only error detail exposed to callers besides the message.
type Kind string

const (
	KindInvalidSessionID   Kind = "invalid_session_id"
	KindInvalidChunkIndex  Kind = "invalid_chunk_index"
	KindMissingPayload     Kind = "missing_payload"
	KindInvalidChunkCount  Kind = "invalid_chunk_count"
	KindInvalidDestination Kind = "invalid_destination"
	KindSessionNotFound    Kind = "session_not_found"
	KindAssemblyFailed     Kind = "assembly_failed"
	KindStorageFailure     Kind = "storage_failure"
)

// Error is the error type crossing the service boundary. The message is
// safe to show to callers; the wrapped cause carries storage detail and
// is meant for logs only.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

func WrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, msg: msg, err: err}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// KindOf extracts the Kind from err, or "" for untyped errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
