package gate

import "context"

// ActorGate enables a feature for individually enrolled actors.
type ActorGate struct{}

func (ActorGate) Kind() Kind         { return KindActor }
func (ActorGate) Name() string       { return "actor" }
func (ActorGate) Key() string        { return KeyActors }
func (ActorGate) DataType() DataType { return DataTypeSet }

func (ActorGate) IsEnabled(values GateValues) bool {
	return len(values.Actors) > 0
}

func (ActorGate) IsOpen(_ context.Context, check CheckContext) bool {
	id, ok := actorOf(check)
	if !ok {
		return false
	}
	_, member := check.Values.Actors[id]
	return member
}

func (ActorGate) Protects(thing any) bool {
	switch thing.(type) {
	case Actor, ActorValue:
		return true
	default:
		return false
	}
}

func (g ActorGate) Wrap(thing any) (TypedValue, error) {
	switch t := thing.(type) {
	case ActorValue:
		return t, nil
	case Actor:
		return NewActorValue(t)
	default:
		return nil, wrapError(g, thing)
	}
}
