package adapter

import (
	"context"
	"errors"

	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// Failover reads from a primary adapter and retries against a secondary
// when the primary fails with a configured error. Writes always go to the
// primary; with dual-write enabled they are also applied to the secondary
// afterward, and the primary's result stands regardless of the secondary's
// outcome. There is no atomicity across the two stores.
type Failover struct {
	primary   Adapter
	secondary Adapter
	dualWrite bool
	targets   []error
}

// FailoverOption configures a Failover adapter.
type FailoverOption func(*Failover)

// WithFailoverDualWrite applies writes to the secondary after the primary.
func WithFailoverDualWrite() FailoverOption {
	return func(a *Failover) { a.dualWrite = true }
}

// WithFailoverErrors restricts failover to errors matching one of the
// targets via errors.Is. Without it, every error fails over.
func WithFailoverErrors(targets ...error) FailoverOption {
	return func(a *Failover) { a.targets = targets }
}

// NewFailover builds a failover chain from a primary and a secondary
// adapter.
func NewFailover(primary, secondary Adapter, opts ...FailoverOption) *Failover {
	a := &Failover{primary: primary, secondary: secondary}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Failover) Name() string { return "failover" }

func (a *Failover) Features(ctx context.Context) ([]string, error) {
	result, err := a.primary.Features(ctx)
	if a.shouldFailover(err) {
		return a.secondary.Features(ctx)
	}
	return result, err
}

func (a *Failover) Get(ctx context.Context, feature string) (gate.GateData, error) {
	result, err := a.primary.Get(ctx, feature)
	if a.shouldFailover(err) {
		return a.secondary.Get(ctx, feature)
	}
	return result, err
}

func (a *Failover) GetMulti(ctx context.Context, features []string) (map[string]gate.GateData, error) {
	result, err := a.primary.GetMulti(ctx, features)
	if a.shouldFailover(err) {
		return a.secondary.GetMulti(ctx, features)
	}
	return result, err
}

func (a *Failover) GetAll(ctx context.Context) (map[string]gate.GateData, error) {
	result, err := a.primary.GetAll(ctx)
	if a.shouldFailover(err) {
		return a.secondary.GetAll(ctx)
	}
	return result, err
}

func (a *Failover) Add(ctx context.Context, feature string) (bool, error) {
	ok, err := a.primary.Add(ctx, feature)
	if err == nil && a.dualWrite {
		_, _ = a.secondary.Add(ctx, feature)
	}
	return ok, err
}

func (a *Failover) Remove(ctx context.Context, feature string) (bool, error) {
	ok, err := a.primary.Remove(ctx, feature)
	if err == nil && a.dualWrite {
		_, _ = a.secondary.Remove(ctx, feature)
	}
	return ok, err
}

func (a *Failover) Clear(ctx context.Context, feature string) (bool, error) {
	ok, err := a.primary.Clear(ctx, feature)
	if err == nil && a.dualWrite {
		_, _ = a.secondary.Clear(ctx, feature)
	}
	return ok, err
}

func (a *Failover) Enable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	ok, err := a.primary.Enable(ctx, feature, g, v)
	if err == nil && a.dualWrite {
		_, _ = a.secondary.Enable(ctx, feature, g, v)
	}
	return ok, err
}

func (a *Failover) Disable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	ok, err := a.primary.Disable(ctx, feature, g, v)
	if err == nil && a.dualWrite {
		_, _ = a.secondary.Disable(ctx, feature, g, v)
	}
	return ok, err
}

func (a *Failover) ReadOnly() bool { return a.primary.ReadOnly() }

func (a *Failover) Export(ctx context.Context, opts ...ExportOption) (*Export, error) {
	result, err := a.primary.Export(ctx, opts...)
	if a.shouldFailover(err) {
		return a.secondary.Export(ctx, opts...)
	}
	return result, err
}

func (a *Failover) Import(ctx context.Context, source Adapter) error {
	err := a.primary.Import(ctx, source)
	if err == nil && a.dualWrite {
		_ = a.secondary.Import(ctx, source)
	}
	return err
}

func (a *Failover) shouldFailover(err error) bool {
	return err != nil && matchesTargets(err, a.targets)
}

// matchesTargets reports whether err matches the configured allow-list; an
// empty list matches every error.
func matchesTargets(err error, targets []error) bool {
	if len(targets) == 0 {
		return true
	}
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
