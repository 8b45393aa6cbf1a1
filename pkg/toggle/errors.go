package toggle

import "errors"

// Predefined errors for the toggle package.
var (
	// ErrNoGateProtects indicates a candidate value no gate knows how to
	// enable or disable with.
	ErrNoGateProtects = errors.New("no gate protects the given value")
)
