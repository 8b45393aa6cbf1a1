package toggle

import (
	"context"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/dmitrymomot/togglekit/pkg/adapter"
	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// SynchronizerCallEvent is the instrumentation event name wrapping a full
// reconciliation run.
const SynchronizerCallEvent = "synchronizer_call"

// Synchronizer reconciles a local adapter's full state onto a remote
// source: another adapter, an export's adapter view, or another client's
// adapter. Each feature is converged through the minimal set of mutations,
// remote-only features are added and local-only features removed.
type Synchronizer struct {
	local  adapter.Adapter
	remote adapter.Adapter
	raise  bool
	inst   adapter.Instrumenter
}

// SynchronizerOption configures a Synchronizer.
type SynchronizerOption func(*Synchronizer)

// WithSynchronizerRaise controls failure behavior: true (the default)
// propagates errors from Call, false swallows them and reports false.
// Swallowing suits best-effort background imports.
func WithSynchronizerRaise(raise bool) SynchronizerOption {
	return func(s *Synchronizer) { s.raise = raise }
}

// WithSynchronizerInstrumenter sets the sink wrapping the reconciliation
// span.
func WithSynchronizerInstrumenter(inst adapter.Instrumenter) SynchronizerOption {
	return func(s *Synchronizer) {
		if inst != nil {
			s.inst = inst
		}
	}
}

// NewSynchronizer builds a reconciliation run from local onto remote.
func NewSynchronizer(local, remote adapter.Adapter, opts ...SynchronizerOption) *Synchronizer {
	s := &Synchronizer{
		local:  local,
		remote: remote,
		raise:  true,
		inst:   adapter.NoopInstrumenter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Call performs the reconciliation. It reports true on success; on failure
// it either returns the error or, with raise disabled, swallows it and
// reports false.
func (s *Synchronizer) Call(ctx context.Context) (bool, error) {
	payload := map[string]any{
		"operation": "synchronize",
		"sync_id":   uuid.NewString(),
	}
	err := s.inst.Instrument(ctx, SynchronizerCallEvent, payload, func(p map[string]any) error {
		return s.sync(ctx)
	})
	if err != nil {
		if s.raise {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (s *Synchronizer) sync(ctx context.Context) error {
	remoteAll, err := s.remote.GetAll(ctx)
	if err != nil {
		return err
	}
	localAll, err := s.local.GetAll(ctx)
	if err != nil {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(remoteAll)) {
		localData, exists := localAll[name]
		if !exists {
			if _, err := s.local.Add(ctx, name); err != nil {
				return err
			}
			localData = gate.GateData{}
		}

		fs := NewFeatureSynchronizer(
			NewFeature(name, s.local),
			gate.ValuesFromData(localData),
			gate.ValuesFromData(remoteAll[name]),
		)
		if err := fs.Call(ctx); err != nil {
			return err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(localAll)) {
		if _, ok := remoteAll[name]; ok {
			continue
		}
		if _, err := s.local.Remove(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// FeatureSynchronizer converges one feature's local gate values onto the
// remote ones, touching only what differs: unchanged booleans, percentages
// and set members cost no adapter calls at all. Every enable/disable is a
// storage mutation, so minimality is the point.
type FeatureSynchronizer struct {
	feature *Feature
	local   gate.GateValues
	remote  gate.GateValues
}

// NewFeatureSynchronizer builds a per-feature reconciliation step.
func NewFeatureSynchronizer(feature *Feature, local, remote gate.GateValues) *FeatureSynchronizer {
	return &FeatureSynchronizer{feature: feature, local: local, remote: remote}
}

// Call applies the minimal mutations.
func (fs *FeatureSynchronizer) Call(ctx context.Context) error {
	if err := fs.syncBoolean(ctx); err != nil {
		return err
	}
	if err := fs.syncActors(ctx); err != nil {
		return err
	}
	if err := fs.syncGroups(ctx); err != nil {
		return err
	}
	if err := fs.syncPercentageOfActors(ctx); err != nil {
		return err
	}
	if err := fs.syncPercentageOfTime(ctx); err != nil {
		return err
	}
	return fs.syncExpression(ctx)
}

func (fs *FeatureSynchronizer) syncBoolean(ctx context.Context) error {
	if fs.local.Boolean == fs.remote.Boolean {
		return nil
	}
	var err error
	if fs.remote.Boolean {
		_, err = fs.feature.Enable(ctx)
	} else {
		_, err = fs.feature.Disable(ctx)
	}
	return err
}

func (fs *FeatureSynchronizer) syncActors(ctx context.Context) error {
	for id := range fs.remote.Actors {
		if _, ok := fs.local.Actors[id]; ok {
			continue
		}
		if _, err := fs.feature.EnableActor(ctx, actorID(id)); err != nil {
			return err
		}
	}
	for id := range fs.local.Actors {
		if _, ok := fs.remote.Actors[id]; ok {
			continue
		}
		if _, err := fs.feature.DisableActor(ctx, actorID(id)); err != nil {
			return err
		}
	}
	return nil
}

func (fs *FeatureSynchronizer) syncGroups(ctx context.Context) error {
	for name := range fs.remote.Groups {
		if _, ok := fs.local.Groups[name]; ok {
			continue
		}
		if _, err := fs.feature.EnableGroup(ctx, name); err != nil {
			return err
		}
	}
	for name := range fs.local.Groups {
		if _, ok := fs.remote.Groups[name]; ok {
			continue
		}
		if _, err := fs.feature.DisableGroup(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (fs *FeatureSynchronizer) syncPercentageOfActors(ctx context.Context) error {
	if fs.local.PercentageOfActors == fs.remote.PercentageOfActors {
		return nil
	}
	var err error
	if fs.remote.PercentageOfActors > 0 {
		_, err = fs.feature.EnablePercentageOfActors(ctx, fs.remote.PercentageOfActors)
	} else {
		_, err = fs.feature.DisablePercentageOfActors(ctx)
	}
	return err
}

func (fs *FeatureSynchronizer) syncPercentageOfTime(ctx context.Context) error {
	if fs.local.PercentageOfTime == fs.remote.PercentageOfTime {
		return nil
	}
	var err error
	if fs.remote.PercentageOfTime > 0 {
		_, err = fs.feature.EnablePercentageOfTime(ctx, fs.remote.PercentageOfTime)
	} else {
		_, err = fs.feature.DisablePercentageOfTime(ctx)
	}
	return err
}

func (fs *FeatureSynchronizer) syncExpression(ctx context.Context) error {
	if fs.local.Expression.Equal(fs.remote.Expression) {
		return nil
	}
	var err error
	if fs.remote.Expression != nil {
		_, err = fs.feature.EnableExpression(ctx, fs.remote.Expression)
	} else {
		_, err = fs.feature.DisableExpression(ctx)
	}
	return err
}

// actorID lets the synchronizer re-enroll actors it only knows by id.
type actorID string

func (a actorID) ToggleID() string { return string(a) }
