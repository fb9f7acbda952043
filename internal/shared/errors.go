package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates a missing or rejected staff credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrBackend indicates a failed call to the remote store backend.
	ErrBackend = errors.New("backend unavailable")
	// ErrValidation indicates input rejected locally, before any network call.
	ErrValidation = errors.New("validation failed")
)
