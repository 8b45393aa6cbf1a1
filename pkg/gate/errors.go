package gate

import "errors"

// Predefined errors for the gate package.
var (
	// ErrInvalidValue indicates a candidate value cannot be wrapped into a
	// gate's typed form.
	ErrInvalidValue = errors.New("invalid gate value")

	// ErrMalformedExpression indicates expression contents that cannot be
	// parsed.
	ErrMalformedExpression = errors.New("malformed expression")
)
