package adapter

import (
	"context"

	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// Failsafe suppresses matching errors from the wrapped adapter and returns
// safe defaults instead: reads come back empty, mutations report false.
// The posture is fail-closed - when storage is unreachable every feature
// reads as absent and therefore disabled, and flag evaluation never crashes
// the caller. Non-matching errors still propagate.
type Failsafe struct {
	Wrapper
	targets []error
}

// FailsafeOption configures a Failsafe adapter.
type FailsafeOption func(*Failsafe)

// WithFailsafeErrors restricts suppression to errors matching one of the
// targets via errors.Is. Without it, every error is suppressed.
func WithFailsafeErrors(targets ...error) FailsafeOption {
	return func(a *Failsafe) { a.targets = targets }
}

// NewFailsafe wraps inner in error suppression.
func NewFailsafe(inner Adapter, opts ...FailsafeOption) *Failsafe {
	a := &Failsafe{Wrapper: Wrap(inner)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Failsafe) Features(ctx context.Context) ([]string, error) {
	result, err := a.Adapter.Features(ctx)
	if a.suppress(err) {
		return []string{}, nil
	}
	return result, err
}

func (a *Failsafe) Get(ctx context.Context, feature string) (gate.GateData, error) {
	result, err := a.Adapter.Get(ctx, feature)
	if a.suppress(err) {
		return gate.GateData{}, nil
	}
	return result, err
}

func (a *Failsafe) GetMulti(ctx context.Context, features []string) (map[string]gate.GateData, error) {
	result, err := a.Adapter.GetMulti(ctx, features)
	if a.suppress(err) {
		return map[string]gate.GateData{}, nil
	}
	return result, err
}

func (a *Failsafe) GetAll(ctx context.Context) (map[string]gate.GateData, error) {
	result, err := a.Adapter.GetAll(ctx)
	if a.suppress(err) {
		return map[string]gate.GateData{}, nil
	}
	return result, err
}

func (a *Failsafe) Add(ctx context.Context, feature string) (bool, error) {
	ok, err := a.Adapter.Add(ctx, feature)
	if a.suppress(err) {
		return false, nil
	}
	return ok, err
}

func (a *Failsafe) Remove(ctx context.Context, feature string) (bool, error) {
	ok, err := a.Adapter.Remove(ctx, feature)
	if a.suppress(err) {
		return false, nil
	}
	return ok, err
}

func (a *Failsafe) Clear(ctx context.Context, feature string) (bool, error) {
	ok, err := a.Adapter.Clear(ctx, feature)
	if a.suppress(err) {
		return false, nil
	}
	return ok, err
}

func (a *Failsafe) Enable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	ok, err := a.Adapter.Enable(ctx, feature, g, v)
	if a.suppress(err) {
		return false, nil
	}
	return ok, err
}

func (a *Failsafe) Disable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	ok, err := a.Adapter.Disable(ctx, feature, g, v)
	if a.suppress(err) {
		return false, nil
	}
	return ok, err
}

func (a *Failsafe) Export(ctx context.Context, opts ...ExportOption) (*Export, error) {
	result, err := a.Adapter.Export(ctx, opts...)
	if a.suppress(err) {
		return NewExport(ctx, NewMemory(), opts...)
	}
	return result, err
}

func (a *Failsafe) Import(ctx context.Context, source Adapter) error {
	err := a.Adapter.Import(ctx, source)
	if a.suppress(err) {
		return nil
	}
	return err
}

func (a *Failsafe) suppress(err error) bool {
	return err != nil && matchesTargets(err, a.targets)
}
