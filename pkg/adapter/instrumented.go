package adapter

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// AdapterOperationEvent is the instrumentation event name emitted for every
// adapter call.
const AdapterOperationEvent = "adapter_operation"

// Instrumenter is the sink contract for observability events. The sink may
// mutate the payload (attach results, timings) and must propagate fn's
// error after recording it.
type Instrumenter interface {
	Instrument(ctx context.Context, event string, payload map[string]any, fn func(payload map[string]any) error) error
}

// NoopInstrumenter runs the operation without recording anything.
type NoopInstrumenter struct{}

func (NoopInstrumenter) Instrument(ctx context.Context, event string, payload map[string]any, fn func(payload map[string]any) error) error {
	return fn(payload)
}

// LogInstrumenter records every event to a structured logger with a unique
// event id.
type LogInstrumenter struct {
	log *slog.Logger
}

// NewLogInstrumenter builds an instrumenter over a slog logger. A nil
// logger falls back to slog.Default.
func NewLogInstrumenter(log *slog.Logger) *LogInstrumenter {
	if log == nil {
		log = slog.Default()
	}
	return &LogInstrumenter{log: log}
}

func (i *LogInstrumenter) Instrument(ctx context.Context, event string, payload map[string]any, fn func(payload map[string]any) error) error {
	err := fn(payload)
	if err != nil {
		payload["error"] = err.Error()
	}

	attrs := make([]any, 0, len(payload)+1)
	attrs = append(attrs, slog.String("event_id", uuid.NewString()))
	for k, v := range payload {
		attrs = append(attrs, slog.Any(k, v))
	}

	if err != nil {
		i.log.ErrorContext(ctx, event, attrs...)
	} else {
		i.log.DebugContext(ctx, event, attrs...)
	}
	return err
}

// Instrumented wraps every operation of the inner adapter in a call to the
// instrumentation sink, attaching operation name, adapter name and
// per-feature context to the payload.
type Instrumented struct {
	Wrapper
	inst Instrumenter
}

// NewInstrumented wraps inner with the given sink. A nil sink is a noop.
func NewInstrumented(inner Adapter, inst Instrumenter) *Instrumented {
	if inst == nil {
		inst = NoopInstrumenter{}
	}
	return &Instrumented{Wrapper: Wrap(inner), inst: inst}
}

func (a *Instrumented) payload(operation string, extra map[string]any) map[string]any {
	payload := map[string]any{
		"operation":    operation,
		"adapter_name": a.Adapter.Name(),
	}
	for k, v := range extra {
		payload[k] = v
	}
	return payload
}

func (a *Instrumented) Features(ctx context.Context) ([]string, error) {
	var result []string
	err := a.inst.Instrument(ctx, AdapterOperationEvent, a.payload("features", nil), func(p map[string]any) error {
		var err error
		result, err = a.Adapter.Features(ctx)
		if err != nil {
			return err
		}
		p["result"] = result
		return nil
	})
	return result, err
}

func (a *Instrumented) Add(ctx context.Context, feature string) (bool, error) {
	return a.mutate(ctx, "add", feature, nil, func() (bool, error) {
		return a.Adapter.Add(ctx, feature)
	})
}

func (a *Instrumented) Remove(ctx context.Context, feature string) (bool, error) {
	return a.mutate(ctx, "remove", feature, nil, func() (bool, error) {
		return a.Adapter.Remove(ctx, feature)
	})
}

func (a *Instrumented) Clear(ctx context.Context, feature string) (bool, error) {
	return a.mutate(ctx, "clear", feature, nil, func() (bool, error) {
		return a.Adapter.Clear(ctx, feature)
	})
}

func (a *Instrumented) Get(ctx context.Context, feature string) (gate.GateData, error) {
	var result gate.GateData
	payload := a.payload("get", map[string]any{"feature_name": feature})
	err := a.inst.Instrument(ctx, AdapterOperationEvent, payload, func(p map[string]any) error {
		var err error
		result, err = a.Adapter.Get(ctx, feature)
		if err != nil {
			return err
		}
		p["result"] = result
		return nil
	})
	return result, err
}

func (a *Instrumented) GetMulti(ctx context.Context, features []string) (map[string]gate.GateData, error) {
	var result map[string]gate.GateData
	payload := a.payload("get_multi", map[string]any{"feature_names": features})
	err := a.inst.Instrument(ctx, AdapterOperationEvent, payload, func(p map[string]any) error {
		var err error
		result, err = a.Adapter.GetMulti(ctx, features)
		if err != nil {
			return err
		}
		p["result"] = result
		return nil
	})
	return result, err
}

func (a *Instrumented) GetAll(ctx context.Context) (map[string]gate.GateData, error) {
	var result map[string]gate.GateData
	err := a.inst.Instrument(ctx, AdapterOperationEvent, a.payload("get_all", nil), func(p map[string]any) error {
		var err error
		result, err = a.Adapter.GetAll(ctx)
		if err != nil {
			return err
		}
		p["result"] = result
		return nil
	})
	return result, err
}

func (a *Instrumented) Enable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	extra := map[string]any{"gate_name": g.Name()}
	return a.mutate(ctx, "enable", feature, extra, func() (bool, error) {
		return a.Adapter.Enable(ctx, feature, g, v)
	})
}

func (a *Instrumented) Disable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	extra := map[string]any{"gate_name": g.Name()}
	return a.mutate(ctx, "disable", feature, extra, func() (bool, error) {
		return a.Adapter.Disable(ctx, feature, g, v)
	})
}

func (a *Instrumented) Export(ctx context.Context, opts ...ExportOption) (*Export, error) {
	var result *Export
	err := a.inst.Instrument(ctx, AdapterOperationEvent, a.payload("export", nil), func(p map[string]any) error {
		var err error
		result, err = a.Adapter.Export(ctx, opts...)
		if err != nil {
			return err
		}
		p["export_format"] = result.Format()
		p["export_version"] = result.Version()
		return nil
	})
	return result, err
}

func (a *Instrumented) Import(ctx context.Context, source Adapter) error {
	payload := a.payload("import", map[string]any{"source_name": source.Name()})
	return a.inst.Instrument(ctx, AdapterOperationEvent, payload, func(p map[string]any) error {
		return a.Adapter.Import(ctx, source)
	})
}

func (a *Instrumented) mutate(ctx context.Context, operation, feature string, extra map[string]any, fn func() (bool, error)) (bool, error) {
	payload := a.payload(operation, extra)
	payload["feature_name"] = feature
	var result bool
	err := a.inst.Instrument(ctx, AdapterOperationEvent, payload, func(p map[string]any) error {
		var err error
		result, err = fn()
		p["result"] = result
		return err
	})
	return result, err
}
