package adapter

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// ReadOnly rejects every mutation with ErrWriteAttempted before it reaches
// the wrapped adapter. Reads pass through untouched.
type ReadOnly struct {
	Wrapper
}

// NewReadOnly wraps inner in a read-only guard.
func NewReadOnly(inner Adapter) *ReadOnly {
	return &ReadOnly{Wrapper: Wrap(inner)}
}

func (a *ReadOnly) ReadOnly() bool { return true }

func (a *ReadOnly) Add(ctx context.Context, feature string) (bool, error) {
	return false, writeAttempted("add", feature)
}

func (a *ReadOnly) Remove(ctx context.Context, feature string) (bool, error) {
	return false, writeAttempted("remove", feature)
}

func (a *ReadOnly) Clear(ctx context.Context, feature string) (bool, error) {
	return false, writeAttempted("clear", feature)
}

func (a *ReadOnly) Enable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	return false, writeAttempted("enable", feature)
}

func (a *ReadOnly) Disable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	return false, writeAttempted("disable", feature)
}

func (a *ReadOnly) Import(ctx context.Context, source Adapter) error {
	return writeAttempted("import", source.Name())
}

func writeAttempted(op, subject string) error {
	return fmt.Errorf("%w: %s %q", ErrWriteAttempted, op, subject)
}
