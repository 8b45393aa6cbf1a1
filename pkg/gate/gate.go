package gate

import (
	"context"
	"fmt"
)

// Kind identifies a gate variant. The set of kinds is closed: every gate a
// feature owns is one of the six variants below.
type Kind string

const (
	KindBoolean            Kind = "boolean"
	KindExpression         Kind = "expression"
	KindActor              Kind = "actor"
	KindPercentageOfActors Kind = "percentageOfActors"
	KindPercentageOfTime   Kind = "percentageOfTime"
	KindGroup              Kind = "group"
)

// DataType dictates how an adapter must persist a gate's value.
type DataType string

const (
	DataTypeBool   DataType = "bool"
	DataTypeSet    DataType = "set"
	DataTypeNumber DataType = "number"
	DataTypeJSON   DataType = "json"
)

// Actor is any candidate carrying a stable, unique string identifier used
// for per-identity enablement and deterministic bucketing. An empty ID is
// treated as "no actor" and never opens a gate.
type Actor interface {
	ToggleID() string
}

// PropertyProvider is optionally implemented by actors that carry properties
// for expression gate evaluation.
type PropertyProvider interface {
	ToggleProperties() map[string]any
}

// GroupFn reports whether an actor belongs to a group.
type GroupFn func(ctx context.Context, actor Actor) bool

// Groups is an explicit group registry mapping group names to membership
// predicates. It is built by the caller and threaded through every
// evaluation; there is no ambient registry.
type Groups map[string]GroupFn

// CheckContext carries everything a gate needs to decide whether it is open
// for one candidate.
type CheckContext struct {
	FeatureName string
	Values      GateValues
	Thing       any
	Actor       Actor
	Groups      Groups
}

// Gate is a stateless predicate that can independently enable a feature for
// some subset of candidates.
type Gate interface {
	// Kind returns the variant discriminant.
	Kind() Kind

	// Name is the gate name reported to instrumentation.
	Name() string

	// Key is the field under which the gate's value is stored.
	Key() string

	// DataType tells adapters how to persist this gate's value.
	DataType() DataType

	// IsEnabled reports whether the gate has any value set at all,
	// regardless of candidate.
	IsEnabled(values GateValues) bool

	// IsOpen reports whether the gate enables the feature for the
	// candidate in check.
	IsOpen(ctx context.Context, check CheckContext) bool

	// Protects reports whether the gate is the one responsible for
	// enabling/disabling with the given value.
	Protects(thing any) bool

	// Wrap converts a raw candidate value into this gate's typed value.
	// Wrapping an already-wrapped value returns it unchanged.
	Wrap(thing any) (TypedValue, error)
}

// All returns the fixed gate evaluation order. Checks short-circuit on the
// first open gate, so the order is part of the contract: a satisfied
// percentage-of-time rollout is reported over a simultaneously satisfied
// group gate.
func All() []Gate {
	return []Gate{
		BooleanGate{},
		ExpressionGate{},
		ActorGate{},
		PercentageOfActorsGate{},
		PercentageOfTimeGate{},
		GroupGate{},
	}
}

func wrapError(g Gate, thing any) error {
	return fmt.Errorf("%w: %T cannot be wrapped for the %s gate", ErrInvalidValue, thing, g.Name())
}

// actorOf extracts the actor identity from a candidate, unwrapping typed
// actor values.
func actorOf(check CheckContext) (string, bool) {
	if check.Actor != nil {
		if id := check.Actor.ToggleID(); id != "" {
			return id, true
		}
		return "", false
	}
	if v, ok := check.Thing.(ActorValue); ok && v != "" {
		return string(v), true
	}
	return "", false
}
