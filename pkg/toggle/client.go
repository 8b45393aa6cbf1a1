package toggle

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrymomot/togglekit/pkg/adapter"
	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// Client is the front door of the flag engine: it owns the adapter, the
// group registry and the instrumentation sink, and hands out Feature
// instances that share them.
type Client struct {
	adapter adapter.Adapter
	groups  gate.Groups
	inst    adapter.Instrumenter

	mu       sync.RWMutex
	features map[string]*Feature
}

// Option configures a Client.
type Option func(*Client)

// WithGroups sets the group registry threaded through every evaluation.
func WithGroups(groups gate.Groups) Option {
	return func(c *Client) { c.groups = groups }
}

// WithInstrumenter sets the sink for feature operation events.
func WithInstrumenter(inst adapter.Instrumenter) Option {
	return func(c *Client) {
		if inst != nil {
			c.inst = inst
		}
	}
}

// WithLogger instruments feature operations through a structured logger.
// Shorthand for WithInstrumenter(adapter.NewLogInstrumenter(log)).
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.inst = adapter.NewLogInstrumenter(log)
	}
}

// New creates a client over an adapter.
func New(a adapter.Adapter, opts ...Option) *Client {
	c := &Client{
		adapter:  a,
		inst:     adapter.NoopInstrumenter{},
		features: make(map[string]*Feature),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Adapter returns the underlying adapter, e.g. for use as a sync source.
func (c *Client) Adapter() adapter.Adapter { return c.adapter }

// Groups returns a copy of the group registry.
func (c *Client) Groups() gate.Groups { return maps.Clone(c.groups) }

// Feature returns the named feature, creating it on first access.
func (c *Client) Feature(name string) *Feature {
	c.mu.RLock()
	f, ok := c.features[name]
	c.mu.RUnlock()
	if ok {
		return f
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.features[name]; ok {
		return f
	}
	f = c.newFeature(name, c.adapter)
	c.features[name] = f
	return f
}

// IsEnabled checks the named feature for a candidate.
func (c *Client) IsEnabled(ctx context.Context, name string, things ...any) (bool, error) {
	return c.Feature(name).IsEnabled(ctx, things...)
}

// Enable turns a gate of the named feature on; see Feature.Enable.
func (c *Client) Enable(ctx context.Context, name string, things ...any) (bool, error) {
	return c.Feature(name).Enable(ctx, things...)
}

// Disable turns a gate of the named feature off; see Feature.Disable.
func (c *Client) Disable(ctx context.Context, name string, things ...any) (bool, error) {
	return c.Feature(name).Disable(ctx, things...)
}

// Add registers a feature without enabling anything.
func (c *Client) Add(ctx context.Context, name string) (bool, error) {
	return c.adapter.Add(ctx, name)
}

// Remove unregisters a feature and clears its gate storage.
func (c *Client) Remove(ctx context.Context, name string) (bool, error) {
	return c.adapter.Remove(ctx, name)
}

// Exists reports whether a feature is registered.
func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	return c.Feature(name).Exists(ctx)
}

// Features returns the names of all registered features.
func (c *Client) Features(ctx context.Context) ([]string, error) {
	return c.adapter.Features(ctx)
}

// Preload fetches the named features in one batch and returns Feature
// instances backed by a memoized view, so subsequent checks hit the warm
// cache instead of storage.
func (c *Client) Preload(ctx context.Context, names ...string) ([]*Feature, error) {
	memo := adapter.NewMemoizable(c.adapter)
	memo.Memoize(true)
	if _, err := memo.GetMulti(ctx, names); err != nil {
		return nil, err
	}

	features := make([]*Feature, len(names))
	for i, name := range names {
		features[i] = c.newFeature(name, memo)
	}
	return features, nil
}

// PreloadAll fetches every registered feature in one batch; see Preload.
func (c *Client) PreloadAll(ctx context.Context) ([]*Feature, error) {
	memo := adapter.NewMemoizable(c.adapter)
	memo.Memoize(true)
	all, err := memo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	names := slices.Sorted(maps.Keys(all))
	features := make([]*Feature, len(names))
	for i, name := range names {
		features[i] = c.newFeature(name, memo)
	}
	return features, nil
}

// Export snapshots the full flag state.
func (c *Client) Export(ctx context.Context, opts ...adapter.ExportOption) (*adapter.Export, error) {
	return c.adapter.Export(ctx, opts...)
}

// Import reconciles this client's state onto the source's using the
// minimal set of mutations (see Synchronizer). The source may be another
// adapter, another client's Adapter(), or an export via ImportExport.
func (c *Client) Import(ctx context.Context, source adapter.Adapter) error {
	sync := NewSynchronizer(c.adapter, source,
		WithSynchronizerInstrumenter(c.inst),
	)
	_, err := sync.Call(ctx)
	return err
}

// Sync reconciles this client's state onto a remote source with explicit
// synchronizer options, e.g. WithSynchronizerRaise(false) for best-effort
// background runs. Import is the raise-by-default shorthand.
func (c *Client) Sync(ctx context.Context, remote adapter.Adapter, opts ...SynchronizerOption) (bool, error) {
	opts = append([]SynchronizerOption{WithSynchronizerInstrumenter(c.inst)}, opts...)
	return NewSynchronizer(c.adapter, remote, opts...).Call(ctx)
}

// ImportExport reconciles this client's state onto a snapshot's.
func (c *Client) ImportExport(ctx context.Context, e *adapter.Export) error {
	source, err := adapter.ExportSource(e)
	if err != nil {
		return err
	}
	return c.Import(ctx, source)
}

func (c *Client) newFeature(name string, a adapter.Adapter) *Feature {
	return NewFeature(name, a,
		WithFeatureGroups(c.groups),
		WithFeatureInstrumenter(c.inst),
	)
}
