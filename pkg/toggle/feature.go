package toggle

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/togglekit/pkg/adapter"
	"github.com/dmitrymomot/togglekit/pkg/gate"
	"github.com/dmitrymomot/togglekit/pkg/typecast"
)

// FeatureOperationEvent is the instrumentation event name emitted for
// feature checks and mutations.
const FeatureOperationEvent = "feature_operation"

// State summarizes how a feature is rolled out.
type State string

const (
	// StateOn means the feature is fully on for everyone.
	StateOn State = "on"
	// StateConditional means at least one targeting gate is set.
	StateConditional State = "conditional"
	// StateOff means no gate is set.
	StateOff State = "off"
)

// Feature evaluates and mutates the gates of one named flag. It is
// stateless beyond its identity and configuration: gate values are fetched
// fresh from the adapter on every check, never cached here (caching is an
// adapter decorator concern).
type Feature struct {
	name    string
	adapter adapter.Adapter
	groups  gate.Groups
	inst    adapter.Instrumenter
	gates   []gate.Gate
}

// FeatureOption configures a Feature.
type FeatureOption func(*Feature)

// WithFeatureGroups sets the group registry used by the group gate.
func WithFeatureGroups(groups gate.Groups) FeatureOption {
	return func(f *Feature) { f.groups = groups }
}

// WithFeatureInstrumenter sets the instrumentation sink for feature
// operations.
func WithFeatureInstrumenter(inst adapter.Instrumenter) FeatureOption {
	return func(f *Feature) {
		if inst != nil {
			f.inst = inst
		}
	}
}

// NewFeature builds a feature bound to an adapter. Most callers go through
// Client.Feature instead, which shares the client's groups and sink.
func NewFeature(name string, a adapter.Adapter, opts ...FeatureOption) *Feature {
	f := &Feature{
		name:    name,
		adapter: a,
		inst:    adapter.NoopInstrumenter{},
		gates:   gate.All(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the feature's name, which doubles as its storage key.
func (f *Feature) Name() string { return f.name }

// IsEnabled reports whether the feature is on for the given candidate,
// which may be an actor, a typed gate value, or nothing. Gates are
// evaluated in fixed order with short-circuiting OR: the first open gate
// wins and is the one reported to instrumentation.
func (f *Feature) IsEnabled(ctx context.Context, things ...any) (bool, error) {
	var thing any
	if len(things) > 0 {
		thing = things[0]
	}

	var result bool
	payload := map[string]any{
		"operation":    "enabled?",
		"feature_name": f.name,
	}
	err := f.inst.Instrument(ctx, FeatureOperationEvent, payload, func(p map[string]any) error {
		data, err := f.adapter.Get(ctx, f.name)
		if err != nil {
			return err
		}

		check := gate.CheckContext{
			FeatureName: f.name,
			Values:      gate.ValuesFromData(data),
			Thing:       thing,
			Groups:      f.groups,
		}
		if actor, ok := thing.(gate.Actor); ok {
			check.Actor = actor
		}

		for _, g := range f.gates {
			if g.IsOpen(ctx, check) {
				result = true
				p["gate_name"] = g.Name()
				break
			}
		}
		p["result"] = result
		return nil
	})
	return result, err
}

// Enable turns a gate on for the given value: a bool or nothing flips the
// boolean gate, an actor enrolls that actor, a string enables a group, a
// typed gate value addresses its gate directly.
func (f *Feature) Enable(ctx context.Context, things ...any) (bool, error) {
	g, v, err := f.dispatch(true, things)
	if err != nil {
		return false, err
	}
	return f.enable(ctx, g, v)
}

// Disable is the inverse of Enable.
func (f *Feature) Disable(ctx context.Context, things ...any) (bool, error) {
	g, v, err := f.dispatch(false, things)
	if err != nil {
		return false, err
	}
	return f.disable(ctx, g, v)
}

// EnableActor enrolls a single actor.
func (f *Feature) EnableActor(ctx context.Context, actor gate.Actor) (bool, error) {
	v, err := gate.NewActorValue(actor)
	if err != nil {
		return false, err
	}
	return f.enable(ctx, gate.ActorGate{}, v)
}

// DisableActor removes a single actor's enrollment.
func (f *Feature) DisableActor(ctx context.Context, actor gate.Actor) (bool, error) {
	v, err := gate.NewActorValue(actor)
	if err != nil {
		return false, err
	}
	return f.disable(ctx, gate.ActorGate{}, v)
}

// EnableGroup enables the feature for a named group.
func (f *Feature) EnableGroup(ctx context.Context, group string) (bool, error) {
	return f.enable(ctx, gate.GroupGate{}, gate.GroupValue(group))
}

// DisableGroup disables the feature for a named group.
func (f *Feature) DisableGroup(ctx context.Context, group string) (bool, error) {
	return f.disable(ctx, gate.GroupGate{}, gate.GroupValue(group))
}

// EnablePercentageOfActors sets a deterministic rollout percentage.
func (f *Feature) EnablePercentageOfActors(ctx context.Context, percentage float64) (bool, error) {
	v, err := gate.NewPercentageOfActorsValue(percentage)
	if err != nil {
		return false, err
	}
	return f.enable(ctx, gate.PercentageOfActorsGate{}, v)
}

// DisablePercentageOfActors resets the deterministic rollout to zero.
func (f *Feature) DisablePercentageOfActors(ctx context.Context) (bool, error) {
	return f.disable(ctx, gate.PercentageOfActorsGate{}, gate.PercentageOfActorsValue(0))
}

// EnablePercentageOfTime sets a random rollout percentage.
func (f *Feature) EnablePercentageOfTime(ctx context.Context, percentage float64) (bool, error) {
	v, err := gate.NewPercentageOfTimeValue(percentage)
	if err != nil {
		return false, err
	}
	return f.enable(ctx, gate.PercentageOfTimeGate{}, v)
}

// DisablePercentageOfTime resets the random rollout to zero.
func (f *Feature) DisablePercentageOfTime(ctx context.Context) (bool, error) {
	return f.disable(ctx, gate.PercentageOfTimeGate{}, gate.PercentageOfTimeValue(0))
}

// EnableExpression stores an expression gate.
func (f *Feature) EnableExpression(ctx context.Context, expr *gate.Expression) (bool, error) {
	v, err := gate.ExpressionGate{}.Wrap(expr)
	if err != nil {
		return false, err
	}
	return f.enable(ctx, gate.ExpressionGate{}, v)
}

// DisableExpression removes the expression gate.
func (f *Feature) DisableExpression(ctx context.Context) (bool, error) {
	return f.disable(ctx, gate.ExpressionGate{}, gate.ExpressionValue{})
}

// Add registers the feature in the adapter's index.
func (f *Feature) Add(ctx context.Context) (bool, error) {
	return f.adapter.Add(ctx, f.name)
}

// Remove unregisters the feature and clears all gate storage.
func (f *Feature) Remove(ctx context.Context) (bool, error) {
	return f.adapter.Remove(ctx, f.name)
}

// Clear resets all gate values without unregistering the feature.
func (f *Feature) Clear(ctx context.Context) (bool, error) {
	return f.adapter.Clear(ctx, f.name)
}

// Exists reports whether the feature is registered.
func (f *Feature) Exists(ctx context.Context) (bool, error) {
	features, err := f.adapter.Features(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range features {
		if name == f.name {
			return true, nil
		}
	}
	return false, nil
}

// GateValues returns a fresh typed snapshot of the feature's stored state.
func (f *Feature) GateValues(ctx context.Context) (gate.GateValues, error) {
	data, err := f.adapter.Get(ctx, f.name)
	if err != nil {
		return gate.GateValues{}, err
	}
	return gate.ValuesFromData(data), nil
}

// Actors returns the enrolled actor ids in sorted order.
func (f *Feature) Actors(ctx context.Context) ([]string, error) {
	values, err := f.GateValues(ctx)
	if err != nil {
		return nil, err
	}
	return typecast.SetToSlice(values.Actors), nil
}

// Groups returns the enabled group names in sorted order.
func (f *Feature) Groups(ctx context.Context) ([]string, error) {
	values, err := f.GateValues(ctx)
	if err != nil {
		return nil, err
	}
	return typecast.SetToSlice(values.Groups), nil
}

// PercentageOfActors returns the deterministic rollout percentage.
func (f *Feature) PercentageOfActors(ctx context.Context) (float64, error) {
	values, err := f.GateValues(ctx)
	if err != nil {
		return 0, err
	}
	return values.PercentageOfActors, nil
}

// PercentageOfTime returns the random rollout percentage.
func (f *Feature) PercentageOfTime(ctx context.Context) (float64, error) {
	values, err := f.GateValues(ctx)
	if err != nil {
		return 0, err
	}
	return values.PercentageOfTime, nil
}

// Expression returns the stored expression, nil when none is set.
func (f *Feature) Expression(ctx context.Context) (*gate.Expression, error) {
	values, err := f.GateValues(ctx)
	if err != nil {
		return nil, err
	}
	return values.Expression, nil
}

// State summarizes the rollout: on when the boolean gate is set,
// conditional when any targeting gate is set, off otherwise.
func (f *Feature) State(ctx context.Context) (State, error) {
	values, err := f.GateValues(ctx)
	if err != nil {
		return StateOff, err
	}
	if values.Boolean {
		return StateOn, nil
	}
	for _, g := range f.gates {
		if g.Kind() == gate.KindBoolean {
			continue
		}
		if g.IsEnabled(values) {
			return StateConditional, nil
		}
	}
	return StateOff, nil
}

func (f *Feature) enable(ctx context.Context, g gate.Gate, v gate.TypedValue) (bool, error) {
	return f.mutate(ctx, "enable", g, func() (bool, error) {
		// Register before mutating so the adapter always observes the add
		// first.
		if _, err := f.adapter.Add(ctx, f.name); err != nil {
			return false, err
		}
		return f.adapter.Enable(ctx, f.name, g, v)
	})
}

func (f *Feature) disable(ctx context.Context, g gate.Gate, v gate.TypedValue) (bool, error) {
	return f.mutate(ctx, "disable", g, func() (bool, error) {
		if _, err := f.adapter.Add(ctx, f.name); err != nil {
			return false, err
		}
		return f.adapter.Disable(ctx, f.name, g, v)
	})
}

func (f *Feature) mutate(ctx context.Context, operation string, g gate.Gate, fn func() (bool, error)) (bool, error) {
	var result bool
	payload := map[string]any{
		"operation":    operation,
		"feature_name": f.name,
		"gate_name":    g.Name(),
	}
	err := f.inst.Instrument(ctx, FeatureOperationEvent, payload, func(p map[string]any) error {
		var err error
		result, err = fn()
		p["result"] = result
		return err
	})
	return result, err
}

// dispatch resolves the gate responsible for a candidate value. A nil
// candidate addresses the boolean gate.
func (f *Feature) dispatch(enabling bool, things []any) (gate.Gate, gate.TypedValue, error) {
	var thing any
	if len(things) > 0 {
		thing = things[0]
	}
	if thing == nil {
		return gate.BooleanGate{}, gate.BoolValue(enabling), nil
	}
	for _, g := range f.gates {
		if !g.Protects(thing) {
			continue
		}
		v, err := g.Wrap(thing)
		if err != nil {
			return nil, nil, err
		}
		return g, v, nil
	}
	return nil, nil, fmt.Errorf("%w: %T", ErrNoGateProtects, thing)
}
