package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// MissingFeatureHandler decides what happens when a strict adapter is asked
// for an unregistered feature. Returning an error aborts the read.
type MissingFeatureHandler func(ctx context.Context, feature string) error

// RaiseHandler aborts reads of unregistered features with
// ErrFeatureNotFound.
func RaiseHandler() MissingFeatureHandler {
	return func(ctx context.Context, feature string) error {
		return fmt.Errorf("%w: %q", ErrFeatureNotFound, feature)
	}
}

// WarnHandler logs a warning for unregistered features and continues.
func WarnHandler(log *slog.Logger) MissingFeatureHandler {
	return func(ctx context.Context, feature string) error {
		if log != nil {
			log.WarnContext(ctx, "feature checked before being added",
				slog.String("feature_name", feature))
		}
		return nil
	}
}

// NoopHandler silently allows reads of unregistered features.
func NoopHandler() MissingFeatureHandler {
	return func(ctx context.Context, feature string) error { return nil }
}

// Strict asserts that every feature requested through Get or GetMulti is
// registered, dispatching unknown names to the configured handler. It
// catches typo'd feature names that would otherwise silently read as
// disabled forever.
type Strict struct {
	Wrapper
	handler MissingFeatureHandler
}

// NewStrict wraps inner with existence checking. A nil handler raises.
func NewStrict(inner Adapter, handler MissingFeatureHandler) *Strict {
	if handler == nil {
		handler = RaiseHandler()
	}
	return &Strict{Wrapper: Wrap(inner), handler: handler}
}

func (a *Strict) Get(ctx context.Context, feature string) (gate.GateData, error) {
	if err := a.check(ctx, feature); err != nil {
		return nil, err
	}
	return a.Adapter.Get(ctx, feature)
}

func (a *Strict) GetMulti(ctx context.Context, features []string) (map[string]gate.GateData, error) {
	known, err := a.Adapter.Features(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range features {
		if slices.Contains(known, f) {
			continue
		}
		if err := a.handler(ctx, f); err != nil {
			return nil, err
		}
	}
	return a.Adapter.GetMulti(ctx, features)
}

func (a *Strict) check(ctx context.Context, feature string) error {
	known, err := a.Adapter.Features(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(known, feature) {
		return nil
	}
	return a.handler(ctx, feature)
}
