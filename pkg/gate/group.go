package gate

import "context"

// GroupGate enables a feature for actors belonging to an enabled group. A
// group is a named membership predicate from the registry; group names with
// no registered predicate never open the gate.
type GroupGate struct{}

func (GroupGate) Kind() Kind         { return KindGroup }
func (GroupGate) Name() string       { return "group" }
func (GroupGate) Key() string        { return KeyGroups }
func (GroupGate) DataType() DataType { return DataTypeSet }

func (GroupGate) IsEnabled(values GateValues) bool {
	return len(values.Groups) > 0
}

func (GroupGate) IsOpen(ctx context.Context, check CheckContext) bool {
	if check.Actor == nil || check.Actor.ToggleID() == "" {
		return false
	}
	for name := range check.Values.Groups {
		fn, ok := check.Groups[name]
		if !ok || fn == nil {
			continue
		}
		if fn(ctx, check.Actor) {
			return true
		}
	}
	return false
}

func (GroupGate) Protects(thing any) bool {
	switch thing.(type) {
	case GroupValue, string:
		return true
	default:
		return false
	}
}

func (g GroupGate) Wrap(thing any) (TypedValue, error) {
	switch t := thing.(type) {
	case GroupValue:
		return t, nil
	case string:
		return GroupValue(t), nil
	default:
		return nil, wrapError(g, thing)
	}
}
