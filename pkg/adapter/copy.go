package adapter

import (
	"context"

	"github.com/dmitrymomot/togglekit/pkg/gate"
	"github.com/dmitrymomot/togglekit/pkg/typecast"
)

// Copy replaces dst's state with src's. Features are added and replayed
// gate by gate first, then local features absent from the source are
// removed, so a crash mid-copy leaves a superset rather than a hole.
// This is the full-replace import; the toggle package's Synchronizer is the
// minimal-mutation alternative.
func Copy(ctx context.Context, dst, src Adapter) error {
	srcAll, err := src.GetAll(ctx)
	if err != nil {
		return err
	}
	dstFeatures, err := dst.Features(ctx)
	if err != nil {
		return err
	}

	for name, data := range srcAll {
		if _, err := dst.Add(ctx, name); err != nil {
			return err
		}
		if _, err := dst.Clear(ctx, name); err != nil {
			return err
		}
		if err := replay(ctx, dst, name, data); err != nil {
			return err
		}
	}

	for _, name := range dstFeatures {
		if _, ok := srcAll[name]; ok {
			continue
		}
		if _, err := dst.Remove(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// replay writes one feature's raw record through the Enable contract so the
// destination persists each value in its own native representation.
func replay(ctx context.Context, dst Adapter, feature string, data gate.GateData) error {
	values := gate.ValuesFromData(data)

	if values.Boolean {
		if _, err := dst.Enable(ctx, feature, gate.BooleanGate{}, gate.BoolValue(true)); err != nil {
			return err
		}
	}
	for _, id := range typecast.SetToSlice(values.Actors) {
		if _, err := dst.Enable(ctx, feature, gate.ActorGate{}, gate.ActorValue(id)); err != nil {
			return err
		}
	}
	for _, name := range typecast.SetToSlice(values.Groups) {
		if _, err := dst.Enable(ctx, feature, gate.GroupGate{}, gate.GroupValue(name)); err != nil {
			return err
		}
	}
	if values.PercentageOfActors > 0 {
		v := gate.PercentageOfActorsValue(values.PercentageOfActors)
		if _, err := dst.Enable(ctx, feature, gate.PercentageOfActorsGate{}, v); err != nil {
			return err
		}
	}
	if values.PercentageOfTime > 0 {
		v := gate.PercentageOfTimeValue(values.PercentageOfTime)
		if _, err := dst.Enable(ctx, feature, gate.PercentageOfTimeGate{}, v); err != nil {
			return err
		}
	}
	if values.Expression != nil {
		v := gate.ExpressionValue{Expr: values.Expression}
		if _, err := dst.Enable(ctx, feature, gate.ExpressionGate{}, v); err != nil {
			return err
		}
	}
	return nil
}
