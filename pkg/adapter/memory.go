package adapter

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// Memory is an in-memory implementation of the Adapter interface. It's
// useful for testing, local development and as the local side of a
// migration chain.
type Memory struct {
	mu    sync.RWMutex
	index map[string]struct{}
	data  map[string]gate.GateData
}

// NewMemory creates a new in-memory adapter.
func NewMemory() *Memory {
	return &Memory{
		index: make(map[string]struct{}),
		data:  make(map[string]gate.GateData),
	}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Features(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.index)), nil
}

func (m *Memory) Add(ctx context.Context, feature string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index[feature] = struct{}{}
	return true, nil
}

func (m *Memory) Remove(ctx context.Context, feature string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.index, feature)
	delete(m.data, feature)
	return true, nil
}

func (m *Memory) Clear(ctx context.Context, feature string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, feature)
	return true, nil
}

func (m *Memory) Get(ctx context.Context, feature string) (gate.GateData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyData(m.data[feature]), nil
}

func (m *Memory) GetMulti(ctx context.Context, features []string) (map[string]gate.GateData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]gate.GateData, len(features))
	for _, f := range features {
		result[f] = copyData(m.data[f])
	}
	return result, nil
}

func (m *Memory) GetAll(ctx context.Context) (map[string]gate.GateData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]gate.GateData, len(m.index))
	for f := range m.index {
		result[f] = copyData(m.data[f])
	}
	return result, nil
}

func (m *Memory) Enable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := m.ensure(feature)
	switch g.DataType() {
	case gate.DataTypeSet:
		set, _ := data[g.Key()].(map[string]struct{})
		if set == nil {
			set = make(map[string]struct{})
			data[g.Key()] = set
		}
		set[v.String()] = struct{}{}
	default:
		data[g.Key()] = v.String()
	}
	return true, nil
}

func (m *Memory) Disable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := m.ensure(feature)
	switch g.DataType() {
	case gate.DataTypeSet:
		if set, ok := data[g.Key()].(map[string]struct{}); ok {
			delete(set, v.String())
		}
	case gate.DataTypeJSON:
		delete(data, g.Key())
	default:
		data[g.Key()] = v.String()
	}
	return true, nil
}

func (m *Memory) ReadOnly() bool { return false }

func (m *Memory) Export(ctx context.Context, opts ...ExportOption) (*Export, error) {
	return NewExport(ctx, m, opts...)
}

func (m *Memory) Import(ctx context.Context, source Adapter) error {
	return Copy(ctx, m, source)
}

// Must be called with the write lock held.
func (m *Memory) ensure(feature string) gate.GateData {
	data, ok := m.data[feature]
	if !ok {
		data = gate.GateData{}
		m.data[feature] = data
	}
	return data
}

// copyData deep-copies a raw record so callers can never mutate stored
// state through a returned snapshot.
func copyData(data gate.GateData) gate.GateData {
	result := make(gate.GateData, len(data))
	for k, v := range data {
		if set, ok := v.(map[string]struct{}); ok {
			result[k] = maps.Clone(set)
			continue
		}
		result[k] = v
	}
	return result
}
