package adapter

import (
	"context"

	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// Adapter is the storage abstraction the gate engine reads and writes
// through. Concrete adapters persist to memory, Redis, etc.; decorators
// implement the same contract by wrapping another Adapter.
//
// A feature's existence (membership in the feature index) is independent of
// whether any gate value is set: a feature can exist fully "off", and gate
// values can be read for unregistered features as an empty record.
type Adapter interface {
	// Name identifies the adapter in instrumentation payloads.
	Name() string

	// Features returns the keys of all registered features.
	Features(ctx context.Context) ([]string, error)

	// Add registers a feature in the feature index.
	Add(ctx context.Context, feature string) (bool, error)

	// Remove unregisters a feature and clears all of its gate values.
	Remove(ctx context.Context, feature string) (bool, error)

	// Clear resets a feature's gate values without unregistering it.
	Clear(ctx context.Context, feature string) (bool, error)

	// Get returns one feature's raw gate values. Unknown features yield an
	// empty record, not an error; the Strict decorator adds existence
	// checking.
	Get(ctx context.Context, feature string) (gate.GateData, error)

	// GetMulti returns raw gate values for several features at once.
	GetMulti(ctx context.Context, features []string) (map[string]gate.GateData, error)

	// GetAll returns raw gate values for every registered feature.
	GetAll(ctx context.Context) (map[string]gate.GateData, error)

	// Enable stores a gate value for a feature.
	Enable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error)

	// Disable removes or zeroes a gate value for a feature.
	Disable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error)

	// ReadOnly reports whether mutations are rejected.
	ReadOnly() bool

	// Export returns a versioned immutable snapshot of the full state.
	Export(ctx context.Context, opts ...ExportOption) (*Export, error)

	// Import replaces this adapter's state with the source's: every feature
	// and gate value is copied over and local features absent from the
	// source are removed.
	Import(ctx context.Context, source Adapter) error
}
