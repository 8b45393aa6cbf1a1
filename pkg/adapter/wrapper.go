package adapter

// Wrapper embeds an inner Adapter to give decorators pass-through delegation
// for free: a decorator embeds Wrapper and overrides only the methods whose
// behavior it changes.
type Wrapper struct {
	Adapter
}

// Wrap builds a pass-through wrapper around inner.
func Wrap(inner Adapter) Wrapper {
	return Wrapper{Adapter: inner}
}

// Unwrap returns the wrapped adapter.
func (w Wrapper) Unwrap() Adapter {
	return w.Adapter
}
