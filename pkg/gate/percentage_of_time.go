package gate

import (
	"context"
	"math/rand/v2"
)

// PercentageOfTimeGate enables a feature for a percentage of checks rather
// than a percentage of actors: every check draws a fresh uniform random
// number, so two consecutive checks with the same candidate may disagree.
// It exists for load and canary testing, not for stable per-actor rollout.
type PercentageOfTimeGate struct {
	// Rand overrides the random source; nil uses math/rand/v2.
	Rand func() float64
}

func (PercentageOfTimeGate) Kind() Kind         { return KindPercentageOfTime }
func (PercentageOfTimeGate) Name() string       { return "percentageOfTime" }
func (PercentageOfTimeGate) Key() string        { return KeyPercentageOfTime }
func (PercentageOfTimeGate) DataType() DataType { return DataTypeNumber }

func (PercentageOfTimeGate) IsEnabled(values GateValues) bool {
	return values.PercentageOfTime > 0
}

func (g PercentageOfTimeGate) IsOpen(_ context.Context, check CheckContext) bool {
	percentage := check.Values.PercentageOfTime
	if percentage <= 0 {
		return false
	}
	draw := rand.Float64
	if g.Rand != nil {
		draw = g.Rand
	}
	return draw() < percentage/100
}

func (PercentageOfTimeGate) Protects(thing any) bool {
	_, ok := thing.(PercentageOfTimeValue)
	return ok
}

func (g PercentageOfTimeGate) Wrap(thing any) (TypedValue, error) {
	switch t := thing.(type) {
	case PercentageOfTimeValue:
		return t, nil
	case float64:
		return NewPercentageOfTimeValue(t)
	case int:
		return NewPercentageOfTimeValue(float64(t))
	default:
		return nil, wrapError(g, thing)
	}
}
