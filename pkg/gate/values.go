package gate

import (
	"github.com/dmitrymomot/togglekit/pkg/typecast"
)

// Storage keys for the six gate values. They double as the field names of
// the canonical export shape.
const (
	KeyBoolean            = "boolean"
	KeyExpression         = "expression"
	KeyActors             = "actors"
	KeyGroups             = "groups"
	KeyPercentageOfActors = "percentageOfActors"
	KeyPercentageOfTime   = "percentageOfTime"
)

// GateData is one feature's raw storage record: a flat map from gate key to
// a dataType-appropriate raw value (string, set of strings, slice, or JSON
// string). Adapters produce and consume this shape.
type GateData map[string]any

// GateValues is an immutable, typed snapshot of one feature's raw storage
// record. It is rebuilt from scratch on every read and never patched, so a
// snapshot can never go stale halfway.
type GateValues struct {
	Boolean            bool
	Actors             map[string]struct{}
	Groups             map[string]struct{}
	PercentageOfActors float64
	PercentageOfTime   float64
	Expression         *Expression
}

// ValuesFromData builds a typed snapshot from a raw storage record. All
// normalization goes through typecast: actors and groups are always sets of
// strings, percentages are clamped to [0,100], the boolean is a real boolean.
func ValuesFromData(data GateData) GateValues {
	return GateValues{
		Boolean:            typecast.ToBool(data[KeyBoolean]),
		Actors:             typecast.ToSet(data[KeyActors]),
		Groups:             typecast.ToSet(data[KeyGroups]),
		PercentageOfActors: clampPercentage(typecast.ToFloat(data[KeyPercentageOfActors])),
		PercentageOfTime:   clampPercentage(typecast.ToFloat(data[KeyPercentageOfTime])),
		Expression:         expressionFromRaw(data[KeyExpression]),
	}
}

func clampPercentage(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}

func expressionFromRaw(v any) *Expression {
	switch t := v.(type) {
	case nil:
		return nil
	case *Expression:
		return t
	case string:
		if t == "" {
			return nil
		}
		expr, err := ParseExpression([]byte(t))
		if err != nil {
			return nil
		}
		return expr
	case []byte:
		expr, err := ParseExpression(t)
		if err != nil {
			return nil
		}
		return expr
	case map[string]any:
		return NewExpression(t)
	default:
		return nil
	}
}
