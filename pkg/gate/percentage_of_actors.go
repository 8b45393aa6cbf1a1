package gate

import (
	"context"
	"hash/crc32"
	"math"
)

// percentageScale gives percentages three decimal places of precision: the
// bucket space is 100 * 1000 and thresholds are scaled to match.
const percentageScale = 1000

// PercentageOfActorsGate deterministically enables a feature for a stable
// slice of the actor population. The same feature, actor and percentage
// always yield the same verdict, and raising the percentage never removes a
// previously included actor.
type PercentageOfActorsGate struct{}

func (PercentageOfActorsGate) Kind() Kind         { return KindPercentageOfActors }
func (PercentageOfActorsGate) Name() string       { return "percentageOfActors" }
func (PercentageOfActorsGate) Key() string        { return KeyPercentageOfActors }
func (PercentageOfActorsGate) DataType() DataType { return DataTypeNumber }

func (PercentageOfActorsGate) IsEnabled(values GateValues) bool {
	return values.PercentageOfActors > 0
}

func (PercentageOfActorsGate) IsOpen(_ context.Context, check CheckContext) bool {
	id, ok := actorOf(check)
	if !ok {
		return false
	}
	percentage := check.Values.PercentageOfActors
	if percentage <= 0 {
		return false
	}
	return Bucket(check.FeatureName, id) < uint32(math.Round(percentage*percentageScale))
}

func (PercentageOfActorsGate) Protects(thing any) bool {
	_, ok := thing.(PercentageOfActorsValue)
	return ok
}

func (g PercentageOfActorsGate) Wrap(thing any) (TypedValue, error) {
	switch t := thing.(type) {
	case PercentageOfActorsValue:
		return t, nil
	case float64:
		return NewPercentageOfActorsValue(t)
	case int:
		return NewPercentageOfActorsValue(float64(t))
	default:
		return nil, wrapError(g, thing)
	}
}

// Bucket returns an actor's fixed position in the scaled bucket space
// [0, 100*1000) for a feature. The bucket depends only on the feature name
// and actor id, so the verdict for a percentage p is simply
// bucket < p*1000.
func Bucket(featureName, actorID string) uint32 {
	hash := crc32.ChecksumIEEE([]byte(featureName + actorID))
	return hash % (100 * percentageScale)
}
