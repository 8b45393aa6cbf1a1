package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/togglekit/pkg/gate"
	"github.com/dmitrymomot/togglekit/pkg/typecast"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ExportVersion is the only snapshot version currently produced and
// accepted.
const ExportVersion = 1

type exportConfig struct {
	format  string
	version int
}

// ExportOption configures snapshot creation.
type ExportOption func(*exportConfig)

// WithExportFormat selects the snapshot encoding, "json" or "yaml".
func WithExportFormat(format string) ExportOption {
	return func(c *exportConfig) { c.format = format }
}

// WithExportVersion selects the snapshot version.
func WithExportVersion(version int) ExportOption {
	return func(c *exportConfig) { c.version = version }
}

// Export is a versioned immutable snapshot of a full flag state. Contents
// are parsed lazily and at most once.
type Export struct {
	contents []byte
	format   string
	version  int

	once     sync.Once
	features map[string]gate.GateData
	parseErr error
}

// NewExportFromBytes wraps already-serialized snapshot contents, e.g. read
// from a file or another process.
func NewExportFromBytes(contents []byte, format string, version int) *Export {
	return &Export{
		contents: bytes.Clone(contents),
		format:   format,
		version:  version,
	}
}

// NewExport builds a snapshot of the source adapter's full state.
func NewExport(ctx context.Context, source Adapter, opts ...ExportOption) (*Export, error) {
	cfg := exportConfig{format: FormatJSON, version: ExportVersion}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.version != ExportVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidExport, cfg.version)
	}

	all, err := source.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	doc := exportDoc{
		Version:  cfg.version,
		Features: make(map[string]exportFeature, len(all)),
	}
	for name, data := range all {
		doc.Features[name] = featureToWire(data)
	}

	var contents []byte
	switch cfg.format {
	case FormatJSON:
		contents, err = json.Marshal(doc)
	case FormatYAML:
		contents, err = yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidExport, cfg.format)
	}
	if err != nil {
		return nil, errors.Join(ErrInvalidExport, err)
	}

	return &Export{contents: contents, format: cfg.format, version: cfg.version}, nil
}

// Contents returns a copy of the serialized snapshot.
func (e *Export) Contents() []byte { return bytes.Clone(e.contents) }

func (e *Export) Format() string { return e.format }

func (e *Export) Version() int { return e.version }

// Equal reports whether two exports share format, version and contents.
func (e *Export) Equal(other *Export) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.format == other.format &&
		e.version == other.version &&
		bytes.Equal(e.contents, other.contents)
}

// Features parses the contents into the per-feature gate-value shape the
// adapter contract uses for GetAll. Raw arrays are normalized into sets.
func (e *Export) Features() (map[string]gate.GateData, error) {
	e.once.Do(func() {
		e.features, e.parseErr = e.parse()
	})
	if e.parseErr != nil {
		return nil, e.parseErr
	}
	// Copy so callers cannot mutate the cached parse.
	result := make(map[string]gate.GateData, len(e.features))
	for name, data := range e.features {
		result[name] = copyData(data)
	}
	return result, nil
}

func (e *Export) parse() (map[string]gate.GateData, error) {
	if e.version != ExportVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidExport, e.version)
	}

	var doc exportDoc
	switch e.format {
	case FormatJSON:
		if err := json.Unmarshal(e.contents, &doc); err != nil {
			return nil, errors.Join(ErrMalformedExport, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(e.contents, &doc); err != nil {
			return nil, errors.Join(ErrMalformedExport, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidExport, e.format)
	}

	if doc.Version != e.version {
		return nil, fmt.Errorf("%w: contents declare version %d, export is version %d",
			ErrInvalidExport, doc.Version, e.version)
	}
	if doc.Features == nil {
		return nil, fmt.Errorf("%w: missing features section", ErrInvalidExport)
	}

	features := make(map[string]gate.GateData, len(doc.Features))
	for name, wire := range doc.Features {
		if name == "" {
			return nil, fmt.Errorf("%w: empty feature name", ErrInvalidExport)
		}
		features[name] = wire.toData()
	}
	return features, nil
}

// exportDoc is the v1 wire document.
type exportDoc struct {
	Version  int                      `json:"version" yaml:"version"`
	Features map[string]exportFeature `json:"features" yaml:"features"`
}

type exportFeature struct {
	Boolean            *string  `json:"boolean" yaml:"boolean"`
	Actors             []string `json:"actors" yaml:"actors"`
	Groups             []string `json:"groups" yaml:"groups"`
	PercentageOfActors *float64 `json:"percentageOfActors" yaml:"percentageOfActors"`
	PercentageOfTime   *float64 `json:"percentageOfTime" yaml:"percentageOfTime"`
	Expression         any      `json:"expression" yaml:"expression"`
}

func featureToWire(data gate.GateData) exportFeature {
	wire := exportFeature{
		Actors: typecast.SetToSlice(typecast.ToSet(data[gate.KeyActors])),
		Groups: typecast.SetToSlice(typecast.ToSet(data[gate.KeyGroups])),
	}
	if v, ok := data[gate.KeyBoolean].(string); ok {
		wire.Boolean = &v
	}
	if raw, ok := data[gate.KeyPercentageOfActors]; ok {
		p := typecast.ToFloat(raw)
		wire.PercentageOfActors = &p
	}
	if raw, ok := data[gate.KeyPercentageOfTime]; ok {
		p := typecast.ToFloat(raw)
		wire.PercentageOfTime = &p
	}
	if raw, ok := data[gate.KeyExpression].(string); ok && raw != "" {
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			wire.Expression = decoded
		}
	}
	return wire
}

func (w exportFeature) toData() gate.GateData {
	data := gate.GateData{
		gate.KeyActors: typecast.ToSet(w.Actors),
		gate.KeyGroups: typecast.ToSet(w.Groups),
	}
	if w.Boolean != nil {
		data[gate.KeyBoolean] = *w.Boolean
	}
	if w.PercentageOfActors != nil {
		data[gate.KeyPercentageOfActors] = *w.PercentageOfActors
	}
	if w.PercentageOfTime != nil {
		data[gate.KeyPercentageOfTime] = *w.PercentageOfTime
	}
	if w.Expression != nil {
		if encoded, err := json.Marshal(w.Expression); err == nil {
			data[gate.KeyExpression] = string(encoded)
		}
	}
	return data
}
