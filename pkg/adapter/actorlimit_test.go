package adapter_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/togglekit/pkg/adapter"
	"github.com/dmitrymomot/togglekit/pkg/gate"
)

func TestActorLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("RejectsEnrollmentPastTheLimit", func(t *testing.T) {
		t.Parallel()
		a := adapter.NewActorLimit(adapter.NewMemory(), 3)

		for i := range 3 {
			_, err := a.Enable(ctx, "search", gate.ActorGate{}, gate.ActorValue(fmt.Sprintf("user-%d", i)))
			require.NoError(t, err)
		}

		_, err := a.Enable(ctx, "search", gate.ActorGate{}, gate.ActorValue("user-3"))
		require.ErrorIs(t, err, adapter.ErrActorLimitExceeded)

		var limitErr *adapter.ActorLimitError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, "search", limitErr.Feature)
		assert.Equal(t, 3, limitErr.Limit)

		// The rejected actor was not stored.
		data, err := a.Get(ctx, "search")
		require.NoError(t, err)
		assert.Len(t, data[gate.KeyActors], 3)
	})

	t.Run("ReenablingPresentActorAlwaysSucceeds", func(t *testing.T) {
		t.Parallel()
		a := adapter.NewActorLimit(adapter.NewMemory(), 2)

		_, err := a.Enable(ctx, "search", gate.ActorGate{}, gate.ActorValue("user-1"))
		require.NoError(t, err)
		_, err = a.Enable(ctx, "search", gate.ActorGate{}, gate.ActorValue("user-2"))
		require.NoError(t, err)

		_, err = a.Enable(ctx, "search", gate.ActorGate{}, gate.ActorValue("user-1"))
		require.NoError(t, err)
	})

	t.Run("LimitIsPerFeature", func(t *testing.T) {
		t.Parallel()
		a := adapter.NewActorLimit(adapter.NewMemory(), 1)

		_, err := a.Enable(ctx, "search", gate.ActorGate{}, gate.ActorValue("user-1"))
		require.NoError(t, err)
		_, err = a.Enable(ctx, "billing", gate.ActorGate{}, gate.ActorValue("user-1"))
		require.NoError(t, err)

		_, err = a.Enable(ctx, "search", gate.ActorGate{}, gate.ActorValue("user-2"))
		require.ErrorIs(t, err, adapter.ErrActorLimitExceeded)
	})

	t.Run("OtherGatesAreUnaffected", func(t *testing.T) {
		t.Parallel()
		a := adapter.NewActorLimit(adapter.NewMemory(), 1)
		_, err := a.Enable(ctx, "search", gate.ActorGate{}, gate.ActorValue("user-1"))
		require.NoError(t, err)

		_, err = a.Enable(ctx, "search", gate.BooleanGate{}, gate.BoolValue(true))
		require.NoError(t, err)
		_, err = a.Enable(ctx, "search", gate.GroupGate{}, gate.GroupValue("staff"))
		require.NoError(t, err)
		_, err = a.Enable(ctx, "search", gate.PercentageOfActorsGate{}, gate.PercentageOfActorsValue(50))
		require.NoError(t, err)
	})

	t.Run("DisablesAreUnaffected", func(t *testing.T) {
		t.Parallel()
		a := adapter.NewActorLimit(adapter.NewMemory(), 1)
		_, err := a.Enable(ctx, "search", gate.ActorGate{}, gate.ActorValue("user-1"))
		require.NoError(t, err)

		_, err = a.Disable(ctx, "search", gate.ActorGate{}, gate.ActorValue("user-1"))
		require.NoError(t, err)
		// Freed capacity can be reused.
		_, err = a.Enable(ctx, "search", gate.ActorGate{}, gate.ActorValue("user-2"))
		require.NoError(t, err)
	})

	t.Run("NonPositiveLimitUsesDefault", func(t *testing.T) {
		t.Parallel()
		a := adapter.NewActorLimit(adapter.NewMemory(), 0)
		assert.Equal(t, adapter.DefaultActorLimit, a.Limit())
	})

	t.Run("ErrorMessageNamesTheFeature", func(t *testing.T) {
		t.Parallel()
		err := error(&adapter.ActorLimitError{Feature: "search", Limit: 100})
		assert.True(t, errors.Is(err, adapter.ErrActorLimitExceeded))
		assert.Contains(t, err.Error(), `"search"`)
		assert.Contains(t, err.Error(), "100")
	})
}
