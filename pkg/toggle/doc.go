// Package toggle is the front door of the feature-flag engine: it wires
// gates, adapters and groups into a small API for checking, mutating and
// reconciling flags.
//
// # Usage
//
//	import (
//		"github.com/dmitrymomot/togglekit/pkg/adapter"
//		"github.com/dmitrymomot/togglekit/pkg/gate"
//		"github.com/dmitrymomot/togglekit/pkg/toggle"
//	)
//
//	flags := toggle.New(adapter.NewMemory(), toggle.WithGroups(gate.Groups{
//		"staff": func(ctx context.Context, actor gate.Actor) bool {
//			u, ok := actor.(*User)
//			return ok && u.Staff
//		},
//	}))
//
//	flags.Enable(ctx, "new-billing")                         // on for everyone
//	flags.Feature("search").EnableActor(ctx, user)           // one actor
//	flags.Feature("search").EnablePercentageOfActors(ctx, 25)
//
//	enabled, err := flags.IsEnabled(ctx, "search", user)
//
// A candidate is anything implementing gate.Actor (a ToggleID method);
// checks without a candidate only consult candidate-independent gates.
//
// # Evaluation
//
// Feature.IsEnabled builds a fresh typed snapshot from the adapter and
// evaluates the fixed gate order with short-circuiting OR. Results are
// never cached by Feature itself; wrap the adapter in adapter.Memoizable
// or use Preload/PreloadAll for request-scoped caching.
//
// # Reconciliation
//
// Synchronizer diffs two adapters' full state and converges the local one
// onto the remote through the minimal set of enable/disable calls;
// Client.Import and Client.ImportExport are the convenience entry points.
// For wholesale replacement without diffing, use the adapter package's
// Copy instead.
package toggle
