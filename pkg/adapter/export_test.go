package adapter_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/togglekit/pkg/adapter"
	"github.com/dmitrymomot/togglekit/pkg/gate"
)

// seedState fills an adapter with a representative mix of gate values.
func seedState(ctx context.Context, t *testing.T, a adapter.Adapter) {
	t.Helper()

	_, err := a.Add(ctx, "search")
	require.NoError(t, err)
	_, err = a.Enable(ctx, "search", gate.BooleanGate{}, gate.BoolValue(true))
	require.NoError(t, err)

	_, err = a.Add(ctx, "checkout")
	require.NoError(t, err)
	_, err = a.Enable(ctx, "checkout", gate.ActorGate{}, gate.ActorValue("user-1"))
	require.NoError(t, err)
	_, err = a.Enable(ctx, "checkout", gate.ActorGate{}, gate.ActorValue("user-2"))
	require.NoError(t, err)
	_, err = a.Enable(ctx, "checkout", gate.GroupGate{}, gate.GroupValue("staff"))
	require.NoError(t, err)
	_, err = a.Enable(ctx, "checkout", gate.PercentageOfActorsGate{}, gate.PercentageOfActorsValue(12.5))
	require.NoError(t, err)
	_, err = a.Enable(ctx, "checkout", gate.PercentageOfTimeGate{}, gate.PercentageOfTimeValue(5))
	require.NoError(t, err)

	expr, err := gate.ParseExpression([]byte(`{"Equal":[{"Property":["plan"]},"basic"]}`))
	require.NoError(t, err)
	_, err = a.Enable(ctx, "checkout", gate.ExpressionGate{}, gate.ExpressionValue{Expr: expr})
	require.NoError(t, err)

	_, err = a.Add(ctx, "bare")
	require.NoError(t, err)
}

func TestExport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("JSONWireShape", func(t *testing.T) {
		t.Parallel()
		m := adapter.NewMemory()
		seedState(ctx, t, m)

		export, err := m.Export(ctx)
		require.NoError(t, err)
		assert.Equal(t, adapter.FormatJSON, export.Format())
		assert.Equal(t, adapter.ExportVersion, export.Version())

		var doc struct {
			Version  int                        `json:"version"`
			Features map[string]json.RawMessage `json:"features"`
		}
		require.NoError(t, json.Unmarshal(export.Contents(), &doc))
		assert.Equal(t, 1, doc.Version)
		assert.Len(t, doc.Features, 3)
		assert.Contains(t, doc.Features, "bare")

		var checkout struct {
			Actors             []string `json:"actors"`
			Groups             []string `json:"groups"`
			PercentageOfActors *float64 `json:"percentageOfActors"`
		}
		require.NoError(t, json.Unmarshal(doc.Features["checkout"], &checkout))
		assert.Equal(t, []string{"user-1", "user-2"}, checkout.Actors)
		assert.Equal(t, []string{"staff"}, checkout.Groups)
		require.NotNil(t, checkout.PercentageOfActors)
		assert.InDelta(t, 12.5, *checkout.PercentageOfActors, 1e-9)
	})

	t.Run("RoundTripsThroughBytes", func(t *testing.T) {
		t.Parallel()
		m := adapter.NewMemory()
		seedState(ctx, t, m)

		export, err := m.Export(ctx)
		require.NoError(t, err)

		restored := adapter.NewExportFromBytes(export.Contents(), export.Format(), export.Version())
		assert.True(t, export.Equal(restored))

		want, err := export.Features()
		require.NoError(t, err)
		got, err := restored.Features()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("YAMLFormat", func(t *testing.T) {
		t.Parallel()
		m := adapter.NewMemory()
		seedState(ctx, t, m)

		jsonExport, err := m.Export(ctx)
		require.NoError(t, err)
		yamlExport, err := m.Export(ctx, adapter.WithExportFormat(adapter.FormatYAML))
		require.NoError(t, err)
		assert.Equal(t, adapter.FormatYAML, yamlExport.Format())
		assert.False(t, jsonExport.Equal(yamlExport))

		want, err := jsonExport.Features()
		require.NoError(t, err)
		got, err := yamlExport.Features()
		require.NoError(t, err)

		// The two encodings must describe the same per-feature state. The
		// expression is compared structurally since key order may differ.
		require.Len(t, got, len(want))
		for name, wantData := range want {
			gotData := got[name]
			assert.Equal(t, wantData[gate.KeyActors], gotData[gate.KeyActors], name)
			assert.Equal(t, wantData[gate.KeyGroups], gotData[gate.KeyGroups], name)
			assert.Equal(t, wantData[gate.KeyBoolean], gotData[gate.KeyBoolean], name)
			assert.Equal(t, gate.ValuesFromData(wantData).PercentageOfActors,
				gate.ValuesFromData(gotData).PercentageOfActors, name)
			assert.True(t, gate.ValuesFromData(wantData).Expression.Equal(
				gate.ValuesFromData(gotData).Expression), name)
		}
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		t.Parallel()
		_, err := adapter.NewMemory().Export(ctx, adapter.WithExportFormat("toml"))
		require.ErrorIs(t, err, adapter.ErrInvalidExport)
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		t.Parallel()
		_, err := adapter.NewMemory().Export(ctx, adapter.WithExportVersion(2))
		require.ErrorIs(t, err, adapter.ErrInvalidExport)
	})

	t.Run("MalformedContents", func(t *testing.T) {
		t.Parallel()
		export := adapter.NewExportFromBytes([]byte("{nope"), adapter.FormatJSON, adapter.ExportVersion)
		_, err := export.Features()
		require.ErrorIs(t, err, adapter.ErrMalformedExport)
	})

	t.Run("VersionMismatchInContents", func(t *testing.T) {
		t.Parallel()
		export := adapter.NewExportFromBytes(
			[]byte(`{"version":2,"features":{}}`), adapter.FormatJSON, adapter.ExportVersion)
		_, err := export.Features()
		require.ErrorIs(t, err, adapter.ErrInvalidExport)
	})

	t.Run("MissingFeaturesSection", func(t *testing.T) {
		t.Parallel()
		export := adapter.NewExportFromBytes(
			[]byte(`{"version":1}`), adapter.FormatJSON, adapter.ExportVersion)
		_, err := export.Features()
		require.ErrorIs(t, err, adapter.ErrInvalidExport)
	})
}

func TestExportSource(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := adapter.NewMemory()
	seedState(ctx, t, m)
	export, err := m.Export(ctx)
	require.NoError(t, err)

	source, err := adapter.ExportSource(export)
	require.NoError(t, err)

	t.Run("ReadsMatchOrigin", func(t *testing.T) {
		t.Parallel()
		features, err := source.Features(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"bare", "checkout", "search"}, features)

		data, err := source.Get(ctx, "checkout")
		require.NoError(t, err)
		values := gate.ValuesFromData(data)
		assert.Equal(t, map[string]struct{}{"user-1": {}, "user-2": {}}, values.Actors)
		assert.InDelta(t, 12.5, values.PercentageOfActors, 1e-9)
	})

	t.Run("RejectsWrites", func(t *testing.T) {
		t.Parallel()
		assert.True(t, source.ReadOnly())

		_, err := source.Add(ctx, "new")
		require.ErrorIs(t, err, adapter.ErrWriteAttempted)
		_, err = source.Remove(ctx, "search")
		require.ErrorIs(t, err, adapter.ErrWriteAttempted)
		_, err = source.Clear(ctx, "search")
		require.ErrorIs(t, err, adapter.ErrWriteAttempted)
		_, err = source.Enable(ctx, "search", gate.BooleanGate{}, gate.BoolValue(true))
		require.ErrorIs(t, err, adapter.ErrWriteAttempted)
		_, err = source.Disable(ctx, "search", gate.BooleanGate{}, gate.BoolValue(false))
		require.ErrorIs(t, err, adapter.ErrWriteAttempted)
		require.ErrorIs(t, source.Import(ctx, adapter.NewMemory()), adapter.ErrWriteAttempted)
	})

	t.Run("MalformedExportSurfacesEagerly", func(t *testing.T) {
		t.Parallel()
		broken := adapter.NewExportFromBytes([]byte("{nope"), adapter.FormatJSON, adapter.ExportVersion)
		_, err := adapter.ExportSource(broken)
		require.ErrorIs(t, err, adapter.ErrMalformedExport)
	})
}

func TestCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("ReplacesDestinationState", func(t *testing.T) {
		t.Parallel()
		src := adapter.NewMemory()
		seedState(ctx, t, src)

		dst := adapter.NewMemory()
		_, err := dst.Add(ctx, "legacy")
		require.NoError(t, err)
		_, err = dst.Enable(ctx, "legacy", gate.BooleanGate{}, gate.BoolValue(true))
		require.NoError(t, err)
		// A feature shared with the source keeps only the source's values.
		_, err = dst.Add(ctx, "search")
		require.NoError(t, err)
		_, err = dst.Enable(ctx, "search", gate.ActorGate{}, gate.ActorValue("stale"))
		require.NoError(t, err)

		require.NoError(t, adapter.Copy(ctx, dst, src))

		features, err := dst.Features(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"bare", "checkout", "search"}, features)

		search, err := dst.Get(ctx, "search")
		require.NoError(t, err)
		values := gate.ValuesFromData(search)
		assert.True(t, values.Boolean)
		assert.Empty(t, values.Actors)

		checkout, err := dst.Get(ctx, "checkout")
		require.NoError(t, err)
		got := gate.ValuesFromData(checkout)
		assert.Equal(t, map[string]struct{}{"user-1": {}, "user-2": {}}, got.Actors)
		assert.Equal(t, map[string]struct{}{"staff": {}}, got.Groups)
		assert.InDelta(t, 12.5, got.PercentageOfActors, 1e-9)
		assert.InDelta(t, 5, got.PercentageOfTime, 1e-9)
		require.NotNil(t, got.Expression)
	})

	t.Run("ImportFromExportSource", func(t *testing.T) {
		t.Parallel()
		src := adapter.NewMemory()
		seedState(ctx, t, src)
		export, err := src.Export(ctx)
		require.NoError(t, err)
		source, err := adapter.ExportSource(export)
		require.NoError(t, err)

		dst := adapter.NewMemory()
		require.NoError(t, dst.Import(ctx, source))

		want, err := src.GetAll(ctx)
		require.NoError(t, err)
		got, err := dst.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for name, wantData := range want {
			wantValues := gate.ValuesFromData(wantData)
			gotValues := gate.ValuesFromData(got[name])
			assert.Equal(t, wantValues.Boolean, gotValues.Boolean, name)
			assert.Equal(t, wantValues.Actors, gotValues.Actors, name)
			assert.Equal(t, wantValues.Groups, gotValues.Groups, name)
			assert.InDelta(t, wantValues.PercentageOfActors, gotValues.PercentageOfActors, 1e-9, name)
			assert.InDelta(t, wantValues.PercentageOfTime, gotValues.PercentageOfTime, 1e-9, name)
			assert.True(t, wantValues.Expression.Equal(gotValues.Expression), name)
		}
	})
}
