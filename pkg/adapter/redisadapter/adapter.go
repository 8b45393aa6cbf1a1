package redisadapter

import (
	"context"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/togglekit/pkg/adapter"
	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// Adapter persists flag state in Redis: one hash per feature plus a set
// indexing registered features. Scalar gates are plain hash fields keyed by
// gate key; set-gate members are stored one per field as "<gatekey>/<member>",
// so enrolling an actor is a single HSET and never rewrites the whole set.
type Adapter struct {
	client *redis.Client
	prefix string
}

// Option configures the adapter.
type Option func(*Adapter)

// WithKeyPrefix overrides the default "togglekit" key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(a *Adapter) {
		if prefix != "" {
			a.prefix = prefix
		}
	}
}

// New creates a Redis-backed adapter over an established client.
func New(client *redis.Client, opts ...Option) *Adapter {
	a := &Adapter{client: client, prefix: "togglekit"}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Name() string { return "redis" }

func (a *Adapter) indexKey() string {
	return a.prefix + ":features"
}

func (a *Adapter) featureKey(feature string) string {
	return a.prefix + ":feature:" + feature
}

func (a *Adapter) Features(ctx context.Context) ([]string, error) {
	features, err := a.client.SMembers(ctx, a.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(features)
	return features, nil
}

func (a *Adapter) Add(ctx context.Context, feature string) (bool, error) {
	if err := a.client.SAdd(ctx, a.indexKey(), feature).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (a *Adapter) Remove(ctx context.Context, feature string) (bool, error) {
	pipe := a.client.TxPipeline()
	pipe.SRem(ctx, a.indexKey(), feature)
	pipe.Del(ctx, a.featureKey(feature))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (a *Adapter) Clear(ctx context.Context, feature string) (bool, error) {
	if err := a.client.Del(ctx, a.featureKey(feature)).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (a *Adapter) Get(ctx context.Context, feature string) (gate.GateData, error) {
	fields, err := a.client.HGetAll(ctx, a.featureKey(feature)).Result()
	if err != nil {
		return nil, err
	}
	return dataFromFields(fields), nil
}

func (a *Adapter) GetMulti(ctx context.Context, features []string) (map[string]gate.GateData, error) {
	pipe := a.client.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(features))
	for _, f := range features {
		cmds[f] = pipe.HGetAll(ctx, a.featureKey(f))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	result := make(map[string]gate.GateData, len(features))
	for f, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil {
			return nil, err
		}
		result[f] = dataFromFields(fields)
	}
	return result, nil
}

func (a *Adapter) GetAll(ctx context.Context) (map[string]gate.GateData, error) {
	features, err := a.Features(ctx)
	if err != nil {
		return nil, err
	}
	return a.GetMulti(ctx, features)
}

func (a *Adapter) Enable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	key := a.featureKey(feature)
	var err error
	switch g.DataType() {
	case gate.DataTypeSet:
		err = a.client.HSet(ctx, key, memberField(g, v.String()), "1").Err()
	default:
		err = a.client.HSet(ctx, key, g.Key(), v.String()).Err()
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *Adapter) Disable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	key := a.featureKey(feature)
	var err error
	switch g.DataType() {
	case gate.DataTypeSet:
		err = a.client.HDel(ctx, key, memberField(g, v.String())).Err()
	case gate.DataTypeJSON:
		err = a.client.HDel(ctx, key, g.Key()).Err()
	default:
		err = a.client.HSet(ctx, key, g.Key(), v.String()).Err()
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *Adapter) ReadOnly() bool { return false }

func (a *Adapter) Export(ctx context.Context, opts ...adapter.ExportOption) (*adapter.Export, error) {
	return adapter.NewExport(ctx, a, opts...)
}

func (a *Adapter) Import(ctx context.Context, source adapter.Adapter) error {
	return adapter.Copy(ctx, a, source)
}

func memberField(g gate.Gate, member string) string {
	return g.Key() + "/" + member
}

// dataFromFields rebuilds a raw gate record from hash fields, folding
// "<gatekey>/<member>" fields back into sets.
func dataFromFields(fields map[string]string) gate.GateData {
	data := gate.GateData{}
	for field, value := range fields {
		gateKey, member, isMember := strings.Cut(field, "/")
		if !isMember {
			data[field] = value
			continue
		}
		set, _ := data[gateKey].(map[string]struct{})
		if set == nil {
			set = make(map[string]struct{})
			data[gateKey] = set
		}
		set[member] = struct{}{}
	}
	return data
}
