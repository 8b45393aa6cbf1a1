package adapter

import (
	"context"
	"maps"
	"slices"

	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// ExportSource adapts a snapshot into a read-only Adapter view so the
// reconciliation machinery can treat exports and live adapters uniformly.
// Parsing happens eagerly so malformed contents surface here rather than on
// first read.
func ExportSource(e *Export) (Adapter, error) {
	features, err := e.Features()
	if err != nil {
		return nil, err
	}
	return &exportSource{export: e, features: features}, nil
}

type exportSource struct {
	export   *Export
	features map[string]gate.GateData
}

func (s *exportSource) Name() string { return "export" }

func (s *exportSource) Features(ctx context.Context) ([]string, error) {
	return slices.Sorted(maps.Keys(s.features)), nil
}

func (s *exportSource) Get(ctx context.Context, feature string) (gate.GateData, error) {
	return copyData(s.features[feature]), nil
}

func (s *exportSource) GetMulti(ctx context.Context, features []string) (map[string]gate.GateData, error) {
	result := make(map[string]gate.GateData, len(features))
	for _, f := range features {
		result[f] = copyData(s.features[f])
	}
	return result, nil
}

func (s *exportSource) GetAll(ctx context.Context) (map[string]gate.GateData, error) {
	result := make(map[string]gate.GateData, len(s.features))
	for f, data := range s.features {
		result[f] = copyData(data)
	}
	return result, nil
}

func (s *exportSource) ReadOnly() bool { return true }

func (s *exportSource) Add(ctx context.Context, feature string) (bool, error) {
	return false, ErrWriteAttempted
}

func (s *exportSource) Remove(ctx context.Context, feature string) (bool, error) {
	return false, ErrWriteAttempted
}

func (s *exportSource) Clear(ctx context.Context, feature string) (bool, error) {
	return false, ErrWriteAttempted
}

func (s *exportSource) Enable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	return false, ErrWriteAttempted
}

func (s *exportSource) Disable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	return false, ErrWriteAttempted
}

func (s *exportSource) Export(ctx context.Context, opts ...ExportOption) (*Export, error) {
	return NewExport(ctx, s, opts...)
}

func (s *exportSource) Import(ctx context.Context, source Adapter) error {
	return ErrWriteAttempted
}
