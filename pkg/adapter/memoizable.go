package adapter

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// Cache keys: one per feature, one for the feature list, one for the full
// snapshot.
const (
	memoFeaturesKey   = "features"
	memoAllKey        = "all"
	memoFeaturePrefix = "feature/"
)

// MemoCache holds memoized adapter reads. Concurrent callers of the same
// not-yet-resolved fetch share a single underlying call, so a cold cache
// never produces a thundering herd. Every key carries a generation that
// eviction bumps: a fetch that was in flight when its key was evicted
// resolves normally for its own caller but never repopulates the cache, so
// a read issued after a completed write cannot be served the pre-write
// data. A cache may be shared across Memoizable instances for
// request-scoped sharing.
type MemoCache struct {
	mu     sync.Mutex
	flight singleflight.Group
	epoch  uint64
	gens   map[string]uint64
	values map[string]any
}

// NewMemoCache creates an empty cache.
func NewMemoCache() *MemoCache {
	return &MemoCache{
		gens:   make(map[string]uint64),
		values: make(map[string]any),
	}
}

func (c *MemoCache) do(key string, fn func() (any, error)) (any, error) {
	c.mu.Lock()
	if v, ok := c.values[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	gen := c.gens[key]
	c.gens[key] = gen // track the key so reset detaches its flight
	c.mu.Unlock()

	v, err, _ := c.flight.Do(key, func() (any, error) {
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.commit(key, gen, v)
		return v, nil
	})
	return v, err
}

func (c *MemoCache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// generation returns the key's current generation, to be passed back to
// commit after an out-of-flight fetch.
func (c *MemoCache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.gens[key]
	c.gens[key] = gen
	return gen
}

// epochNow returns the cache-wide eviction counter, for commitAtEpoch when
// the affected keys are only known after the fetch.
func (c *MemoCache) epochNow() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// commit stores a fetched value unless the key was evicted after gen was
// read.
func (c *MemoCache) commit(key string, gen uint64, v any) {
	c.mu.Lock()
	if c.gens[key] == gen {
		c.values[key] = v
	}
	c.mu.Unlock()
}

// commitAtEpoch stores a fetched value unless any eviction ran after epoch
// was read.
func (c *MemoCache) commitAtEpoch(key string, epoch uint64, v any) {
	c.mu.Lock()
	if c.epoch == epoch {
		c.values[key] = v
	}
	c.mu.Unlock()
}

func (c *MemoCache) forget(keys ...string) {
	c.mu.Lock()
	c.epoch++
	for _, key := range keys {
		delete(c.values, key)
		c.gens[key]++
		c.flight.Forget(key)
	}
	c.mu.Unlock()
}

func (c *MemoCache) reset() {
	c.mu.Lock()
	c.epoch++
	for key := range c.gens {
		c.gens[key]++
		c.flight.Forget(key)
	}
	clear(c.values)
	c.mu.Unlock()
}

// Memoizable caches Features, Get and GetAll results while memoization is
// switched on. Every mutation evicts the affected entries before returning,
// so a caller that has observed a completed write never sees a cache hit
// for the invalidated data - not even from a fetch that was already in
// flight when the write landed. Turning memoization off clears the cache.
type Memoizable struct {
	Wrapper
	cache    *MemoCache
	memoized atomic.Bool
}

// MemoizableOption configures a Memoizable adapter.
type MemoizableOption func(*Memoizable)

// WithMemoCache shares an existing cache instead of allocating a private
// one.
func WithMemoCache(cache *MemoCache) MemoizableOption {
	return func(a *Memoizable) {
		if cache != nil {
			a.cache = cache
		}
	}
}

// NewMemoizable wraps inner with an explicit on/off read cache. Memoization
// starts switched off.
func NewMemoizable(inner Adapter, opts ...MemoizableOption) *Memoizable {
	a := &Memoizable{Wrapper: Wrap(inner), cache: NewMemoCache()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Memoize switches caching on or off. Switching off clears the cache.
func (a *Memoizable) Memoize(on bool) {
	a.memoized.Store(on)
	if !on {
		a.cache.reset()
	}
}

// Memoized reports whether caching is on.
func (a *Memoizable) Memoized() bool {
	return a.memoized.Load()
}

func (a *Memoizable) Features(ctx context.Context) ([]string, error) {
	if !a.Memoized() {
		return a.Adapter.Features(ctx)
	}
	v, err := a.cache.do(memoFeaturesKey, func() (any, error) {
		return a.Adapter.Features(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (a *Memoizable) Get(ctx context.Context, feature string) (gate.GateData, error) {
	if !a.Memoized() {
		return a.Adapter.Get(ctx, feature)
	}
	v, err := a.cache.do(memoFeaturePrefix+feature, func() (any, error) {
		return a.Adapter.Get(ctx, feature)
	})
	if err != nil {
		return nil, err
	}
	// Hand out a copy so no caller can mutate the cached record.
	return copyData(v.(gate.GateData)), nil
}

// GetMulti fetches uncached features in one underlying call and seeds the
// per-feature cache, so a preload primes later Get calls.
func (a *Memoizable) GetMulti(ctx context.Context, features []string) (map[string]gate.GateData, error) {
	if !a.Memoized() {
		return a.Adapter.GetMulti(ctx, features)
	}

	result := make(map[string]gate.GateData, len(features))
	var missing []string
	gens := make(map[string]uint64)
	for _, f := range features {
		if v, ok := a.cache.lookup(memoFeaturePrefix + f); ok {
			result[f] = copyData(v.(gate.GateData))
			continue
		}
		gens[f] = a.cache.generation(memoFeaturePrefix + f)
		missing = append(missing, f)
	}

	if len(missing) > 0 {
		fetched, err := a.Adapter.GetMulti(ctx, missing)
		if err != nil {
			return nil, err
		}
		for f, data := range fetched {
			a.cache.commit(memoFeaturePrefix+f, gens[f], data)
			result[f] = copyData(data)
		}
	}
	return result, nil
}

// GetAll caches the full snapshot and seeds every feature's entry.
func (a *Memoizable) GetAll(ctx context.Context) (map[string]gate.GateData, error) {
	if !a.Memoized() {
		return a.Adapter.GetAll(ctx)
	}
	v, err := a.cache.do(memoAllKey, func() (any, error) {
		epoch := a.cache.epochNow()
		all, err := a.Adapter.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		for f, data := range all {
			a.cache.commitAtEpoch(memoFeaturePrefix+f, epoch, data)
		}
		return all, nil
	})
	if err != nil {
		return nil, err
	}

	all := v.(map[string]gate.GateData)
	result := make(map[string]gate.GateData, len(all))
	for f, data := range all {
		result[f] = copyData(data)
	}
	return result, nil
}

func (a *Memoizable) Add(ctx context.Context, feature string) (bool, error) {
	ok, err := a.Adapter.Add(ctx, feature)
	a.cache.forget(memoFeaturesKey, memoAllKey)
	return ok, err
}

func (a *Memoizable) Remove(ctx context.Context, feature string) (bool, error) {
	ok, err := a.Adapter.Remove(ctx, feature)
	a.cache.forget(memoFeaturesKey, memoAllKey, memoFeaturePrefix+feature)
	return ok, err
}

func (a *Memoizable) Clear(ctx context.Context, feature string) (bool, error) {
	ok, err := a.Adapter.Clear(ctx, feature)
	a.cache.forget(memoAllKey, memoFeaturePrefix+feature)
	return ok, err
}

func (a *Memoizable) Enable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	ok, err := a.Adapter.Enable(ctx, feature, g, v)
	a.cache.forget(memoAllKey, memoFeaturePrefix+feature)
	return ok, err
}

func (a *Memoizable) Disable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	ok, err := a.Adapter.Disable(ctx, feature, g, v)
	a.cache.forget(memoAllKey, memoFeaturePrefix+feature)
	return ok, err
}

func (a *Memoizable) Import(ctx context.Context, source Adapter) error {
	err := a.Adapter.Import(ctx, source)
	a.cache.reset()
	return err
}
