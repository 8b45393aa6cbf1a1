package adapter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/togglekit/pkg/adapter"
	"github.com/dmitrymomot/togglekit/pkg/gate"
)

var errStorageDown = errors.New("storage down")

// faultyAdapter delegates to the wrapped adapter until err is set, then
// fails every operation with it.
type faultyAdapter struct {
	adapter.Wrapper
	err error
}

func newFaulty(inner adapter.Adapter) *faultyAdapter {
	return &faultyAdapter{Wrapper: adapter.Wrap(inner)}
}

func (a *faultyAdapter) Features(ctx context.Context) ([]string, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.Adapter.Features(ctx)
}

func (a *faultyAdapter) Get(ctx context.Context, feature string) (gate.GateData, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.Adapter.Get(ctx, feature)
}

func (a *faultyAdapter) GetMulti(ctx context.Context, features []string) (map[string]gate.GateData, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.Adapter.GetMulti(ctx, features)
}

func (a *faultyAdapter) GetAll(ctx context.Context) (map[string]gate.GateData, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.Adapter.GetAll(ctx)
}

func (a *faultyAdapter) Add(ctx context.Context, feature string) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	return a.Adapter.Add(ctx, feature)
}

func (a *faultyAdapter) Remove(ctx context.Context, feature string) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	return a.Adapter.Remove(ctx, feature)
}

func (a *faultyAdapter) Clear(ctx context.Context, feature string) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	return a.Adapter.Clear(ctx, feature)
}

func (a *faultyAdapter) Enable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	return a.Adapter.Enable(ctx, feature, g, v)
}

func (a *faultyAdapter) Disable(ctx context.Context, feature string, g gate.Gate, v gate.TypedValue) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	return a.Adapter.Disable(ctx, feature, g, v)
}

func (a *faultyAdapter) Export(ctx context.Context, opts ...adapter.ExportOption) (*adapter.Export, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.Adapter.Export(ctx, opts...)
}

func (a *faultyAdapter) Import(ctx context.Context, source adapter.Adapter) error {
	if a.err != nil {
		return a.err
	}
	return a.Adapter.Import(ctx, source)
}

func TestFailover(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("ReadsPreferPrimary", func(t *testing.T) {
		t.Parallel()
		primary := adapter.NewMemory()
		secondary := adapter.NewMemory()
		_, err := primary.Enable(ctx, "search", gate.BooleanGate{}, gate.BoolValue(true))
		require.NoError(t, err)

		a := adapter.NewFailover(primary, secondary)
		data, err := a.Get(ctx, "search")
		require.NoError(t, err)
		assert.Equal(t, "true", data[gate.KeyBoolean])
	})

	t.Run("ReadsRetrySecondaryOnFailure", func(t *testing.T) {
		t.Parallel()
		primary := newFaulty(adapter.NewMemory())
		primary.err = errStorageDown
		secondary := adapter.NewMemory()
		_, err := secondary.Add(ctx, "search")
		require.NoError(t, err)
		_, err = secondary.Enable(ctx, "search", gate.BooleanGate{}, gate.BoolValue(true))
		require.NoError(t, err)

		a := adapter.NewFailover(primary, secondary)

		data, err := a.Get(ctx, "search")
		require.NoError(t, err)
		assert.Equal(t, "true", data[gate.KeyBoolean])

		features, err := a.Features(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"search"}, features)
	})

	t.Run("ErrorAllowListIsHonored", func(t *testing.T) {
		t.Parallel()
		primary := newFaulty(adapter.NewMemory())
		primary.err = errStorageDown
		secondary := adapter.NewMemory()

		a := adapter.NewFailover(primary, secondary,
			adapter.WithFailoverErrors(context.DeadlineExceeded))

		_, err := a.Get(ctx, "search")
		require.ErrorIs(t, err, errStorageDown)
	})

	t.Run("WritesStayOnPrimaryByDefault", func(t *testing.T) {
		t.Parallel()
		primary := adapter.NewMemory()
		secondary := adapter.NewMemory()
		a := adapter.NewFailover(primary, secondary)

		_, err := a.Enable(ctx, "search", gate.BooleanGate{}, gate.BoolValue(true))
		require.NoError(t, err)

		data, err := primary.Get(ctx, "search")
		require.NoError(t, err)
		assert.Equal(t, "true", data[gate.KeyBoolean])

		data, err = secondary.Get(ctx, "search")
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("DualWriteMirrorsToSecondary", func(t *testing.T) {
		t.Parallel()
		primary := adapter.NewMemory()
		secondary := adapter.NewMemory()
		a := adapter.NewFailover(primary, secondary, adapter.WithFailoverDualWrite())

		_, err := a.Add(ctx, "search")
		require.NoError(t, err)
		_, err = a.Enable(ctx, "search", gate.BooleanGate{}, gate.BoolValue(true))
		require.NoError(t, err)

		for _, side := range []adapter.Adapter{primary, secondary} {
			data, err := side.Get(ctx, "search")
			require.NoError(t, err)
			assert.Equal(t, "true", data[gate.KeyBoolean])
		}
	})

	t.Run("DualWriteIgnoresSecondaryFailures", func(t *testing.T) {
		t.Parallel()
		primary := adapter.NewMemory()
		secondary := newFaulty(adapter.NewMemory())
		secondary.err = errStorageDown
		a := adapter.NewFailover(primary, secondary, adapter.WithFailoverDualWrite())

		_, err := a.Enable(ctx, "search", gate.BooleanGate{}, gate.BoolValue(true))
		require.NoError(t, err)
	})

	t.Run("WriteFailuresPropagate", func(t *testing.T) {
		t.Parallel()
		primary := newFaulty(adapter.NewMemory())
		primary.err = errStorageDown
		a := adapter.NewFailover(primary, adapter.NewMemory(), adapter.WithFailoverDualWrite())

		_, err := a.Enable(ctx, "search", gate.BooleanGate{}, gate.BoolValue(true))
		require.ErrorIs(t, err, errStorageDown)
	})
}
