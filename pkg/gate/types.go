package gate

import (
	"errors"
	"fmt"
	"strconv"
)

// TypedValue is a canonical typed form of a raw candidate value, tagged with
// the kind of gate it belongs to. Adapters persist a typed value via its
// String form.
type TypedValue interface {
	// Kind returns the gate kind the value belongs to.
	Kind() Kind

	// String returns the dataType-appropriate storage representation.
	String() string
}

// BoolValue wraps the boolean gate's value.
type BoolValue bool

func (BoolValue) Kind() Kind       { return KindBoolean }
func (v BoolValue) String() string { return strconv.FormatBool(bool(v)) }

// ActorValue wraps an actor identity.
type ActorValue string

func (ActorValue) Kind() Kind       { return KindActor }
func (v ActorValue) String() string { return string(v) }

// NewActorValue wraps an actor into its typed value, rejecting actors
// without an identity.
func NewActorValue(actor Actor) (ActorValue, error) {
	if actor == nil {
		return "", fmt.Errorf("%w: nil actor", ErrInvalidValue)
	}
	id := actor.ToggleID()
	if id == "" {
		return "", fmt.Errorf("%w: actor has an empty id", ErrInvalidValue)
	}
	return ActorValue(id), nil
}

// GroupValue wraps a group name.
type GroupValue string

func (GroupValue) Kind() Kind       { return KindGroup }
func (v GroupValue) String() string { return string(v) }

// PercentageOfActorsValue wraps a deterministic rollout percentage.
type PercentageOfActorsValue float64

func (PercentageOfActorsValue) Kind() Kind { return KindPercentageOfActors }
func (v PercentageOfActorsValue) String() string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}

// NewPercentageOfActorsValue validates and wraps a percentage.
func NewPercentageOfActorsValue(p float64) (PercentageOfActorsValue, error) {
	if err := validatePercentage(p); err != nil {
		return 0, err
	}
	return PercentageOfActorsValue(p), nil
}

// PercentageOfTimeValue wraps a random rollout percentage.
type PercentageOfTimeValue float64

func (PercentageOfTimeValue) Kind() Kind { return KindPercentageOfTime }
func (v PercentageOfTimeValue) String() string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}

// NewPercentageOfTimeValue validates and wraps a percentage.
func NewPercentageOfTimeValue(p float64) (PercentageOfTimeValue, error) {
	if err := validatePercentage(p); err != nil {
		return 0, err
	}
	return PercentageOfTimeValue(p), nil
}

// ExpressionValue wraps an expression tree.
type ExpressionValue struct {
	Expr *Expression
}

func (ExpressionValue) Kind() Kind { return KindExpression }
func (v ExpressionValue) String() string {
	if v.Expr == nil {
		return ""
	}
	b, err := v.Expr.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

func validatePercentage(p float64) error {
	if p < 0 || p > 100 {
		return errors.Join(ErrInvalidValue,
			fmt.Errorf("percentage must be between 0 and 100, got %v", p))
	}
	return nil
}
