package adapter

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/togglekit/pkg/gate"
	"github.com/dmitrymomot/togglekit/pkg/typecast"
)

// DefaultActorLimit caps per-feature actor enrollment. Actor gates are for
// small hand-picked sets; past a few hundred members the percentage gate is
// the right tool, so the cap pushes misuse back early.
const DefaultActorLimit = 100

// ActorLimitError reports a rejected actor enrollment. It matches
// ErrActorLimitExceeded with errors.Is.
type ActorLimitError struct {
	Feature string
	Limit   int
}

func (e *ActorLimitError) Error() string {
	return fmt.Sprintf("actor limit exceeded: feature %q already has %d enabled actors", e.Feature, e.Limit)
}

func (e *ActorLimitError) Unwrap() error { return ErrActorLimitExceeded }

// ActorLimit rejects actor-gate enables once a feature's actor set has
// reached the limit. Re-enabling an already-present actor never counts
// against the limit, and no other gate or any disable is affected. The
// rejected call performs no mutation.
type ActorLimit struct {
	Wrapper
	limit int
}

// NewActorLimit wraps inner with an enrollment cap. A non-positive limit
// uses DefaultActorLimit.
func NewActorLimit(inner Adapter, limit int) *ActorLimit {
	if limit <= 0 {
		limit = DefaultActorLimit
	}
	return &ActorLimit{Wrapper: Wrap(inner), limit: limit}
}

// Limit returns the configured cap.
func (a *ActorLimit) Limit() int { return a.limit }

func (a *ActorLimit) Enable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	if g.Kind() == gate.KindActor {
		data, err := a.Adapter.Get(ctx, feature)
		if err != nil {
			return false, err
		}
		actors := typecast.ToSet(data[g.Key()])
		if _, present := actors[v.String()]; !present && len(actors) >= a.limit {
			return false, &ActorLimitError{Feature: feature, Limit: a.limit}
		}
	}
	return a.Adapter.Enable(ctx, feature, g, v)
}
