package gate

import "context"

// BooleanGate turns a feature fully on or off for everyone. It ignores the
// candidate entirely.
type BooleanGate struct{}

func (BooleanGate) Kind() Kind         { return KindBoolean }
func (BooleanGate) Name() string       { return "boolean" }
func (BooleanGate) Key() string        { return KeyBoolean }
func (BooleanGate) DataType() DataType { return DataTypeBool }

func (BooleanGate) IsEnabled(values GateValues) bool {
	return values.Boolean
}

func (BooleanGate) IsOpen(_ context.Context, check CheckContext) bool {
	return check.Values.Boolean
}

func (BooleanGate) Protects(thing any) bool {
	switch thing.(type) {
	case bool, BoolValue:
		return true
	default:
		return false
	}
}

func (g BooleanGate) Wrap(thing any) (TypedValue, error) {
	switch t := thing.(type) {
	case BoolValue:
		return t, nil
	case bool:
		return BoolValue(t), nil
	case nil:
		return BoolValue(true), nil
	default:
		return nil, wrapError(g, thing)
	}
}
