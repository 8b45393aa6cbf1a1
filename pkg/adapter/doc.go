// Package adapter defines the storage contract the flag engine reads and
// writes through, an in-memory implementation, versioned state snapshots,
// and a chain of composable decorators.
//
// # Architecture
//
// Every decorator implements the same Adapter contract and holds a wrapped
// inner Adapter, so cross-cutting behavior stacks in any order:
//
//	store := adapter.NewInstrumented(
//		adapter.NewFailsafe(
//			adapter.NewFailover(cache, db),
//		),
//		adapter.NewLogInstrumenter(log),
//	)
//
// Decorators embed Wrapper for pass-through delegation and override only
// the methods whose behavior they change:
//
//   - Failover - retry reads against a secondary, optionally dual-write
//   - Failsafe - suppress storage errors, fail closed with empty defaults
//   - ReadOnly - reject all mutations
//   - Strict - reject (or warn on) reads of unregistered features
//   - Instrumented - emit an event per operation to a sink
//   - Memoizable - explicit on/off read cache with single-flight fetching
//   - ActorLimit - cap per-feature actor enrollment
//   - DualWrite - read local, write remote-then-local during migrations
//
// # Snapshots
//
// Export captures an adapter's full state as an immutable, versioned
// document (JSON or YAML). ExportSource turns a snapshot back into a
// read-only Adapter so the reconciliation machinery can diff against it,
// and Copy performs a full-replace import from any Adapter into another.
//
// # Error Handling
//
// Sentinel errors (ErrWriteAttempted, ErrFeatureNotFound,
// ErrActorLimitExceeded, ErrMalformedExport, ErrInvalidExport) are wrapped
// with context and can be checked with errors.Is. Storage errors from
// concrete backends are opaque to this package; Failover and Failsafe
// classify them only against their configured target lists.
package adapter
