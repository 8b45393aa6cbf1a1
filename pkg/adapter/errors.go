package adapter

import "errors"

// Predefined errors for the adapter package.
var (
	// ErrWriteAttempted indicates a mutation was attempted on a read-only
	// adapter.
	ErrWriteAttempted = errors.New("write attempted on a read-only adapter")

	// ErrFeatureNotFound indicates a strict adapter was asked for a feature
	// that is not registered.
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrActorLimitExceeded indicates a feature reached the configured actor
	// enrollment cap.
	ErrActorLimitExceeded = errors.New("actor limit exceeded")

	// ErrMalformedExport indicates export contents that cannot be parsed.
	ErrMalformedExport = errors.New("malformed export contents")

	// ErrInvalidExport indicates export contents with a valid encoding but
	// the wrong structure, version or format.
	ErrInvalidExport = errors.New("invalid export")
)
