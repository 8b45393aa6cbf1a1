package adapter

import (
	"context"

	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// DualWrite sends every read to the local adapter and every write to the
// remote adapter first, then the local one. It is a migration aid: write to
// both stores, keep reading from the one being phased out, then flip the
// reads. There is no atomicity across the two writes.
type DualWrite struct {
	Wrapper
	remote Adapter
}

// NewDualWrite builds a dual-writing adapter over a local (read) and a
// remote (write-first) adapter.
func NewDualWrite(local, remote Adapter) *DualWrite {
	return &DualWrite{Wrapper: Wrap(local), remote: remote}
}

func (a *DualWrite) Name() string { return "dual_write" }

func (a *DualWrite) Add(ctx context.Context, feature string) (bool, error) {
	ok, err := a.remote.Add(ctx, feature)
	if err != nil {
		return false, err
	}
	if _, err := a.Adapter.Add(ctx, feature); err != nil {
		return false, err
	}
	return ok, nil
}

func (a *DualWrite) Remove(ctx context.Context, feature string) (bool, error) {
	ok, err := a.remote.Remove(ctx, feature)
	if err != nil {
		return false, err
	}
	if _, err := a.Adapter.Remove(ctx, feature); err != nil {
		return false, err
	}
	return ok, nil
}

func (a *DualWrite) Clear(ctx context.Context, feature string) (bool, error) {
	ok, err := a.remote.Clear(ctx, feature)
	if err != nil {
		return false, err
	}
	if _, err := a.Adapter.Clear(ctx, feature); err != nil {
		return false, err
	}
	return ok, nil
}

func (a *DualWrite) Enable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	ok, err := a.remote.Enable(ctx, feature, g, v)
	if err != nil {
		return false, err
	}
	if _, err := a.Adapter.Enable(ctx, feature, g, v); err != nil {
		return false, err
	}
	return ok, nil
}

func (a *DualWrite) Disable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	ok, err := a.remote.Disable(ctx, feature, g, v)
	if err != nil {
		return false, err
	}
	if _, err := a.Adapter.Disable(ctx, feature, g, v); err != nil {
		return false, err
	}
	return ok, nil
}

func (a *DualWrite) Import(ctx context.Context, source Adapter) error {
	if err := a.remote.Import(ctx, source); err != nil {
		return err
	}
	return a.Adapter.Import(ctx, source)
}
