package redisadapter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/togglekit/pkg/gate"
)

func TestKeys(t *testing.T) {
	t.Parallel()

	a := New(nil)
	assert.Equal(t, "togglekit:features", a.indexKey())
	assert.Equal(t, "togglekit:feature:search", a.featureKey("search"))

	custom := New(nil, WithKeyPrefix("flags"))
	assert.Equal(t, "flags:features", custom.indexKey())
	assert.Equal(t, "flags:feature:search", custom.featureKey("search"))

	// Empty prefix keeps the default.
	kept := New(nil, WithKeyPrefix(""))
	assert.Equal(t, "togglekit:features", kept.indexKey())
}

func TestMemberField(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "actors/user-1", memberField(gate.ActorGate{}, "user-1"))
	assert.Equal(t, "groups/staff", memberField(gate.GroupGate{}, "staff"))
}

func TestDataFromFields(t *testing.T) {
	t.Parallel()

	t.Run("ScalarsPassThrough", func(t *testing.T) {
		t.Parallel()
		data := dataFromFields(map[string]string{
			gate.KeyBoolean:            "true",
			gate.KeyPercentageOfActors: "12.5",
		})
		assert.Equal(t, "true", data[gate.KeyBoolean])
		assert.Equal(t, "12.5", data[gate.KeyPercentageOfActors])
	})

	t.Run("MemberFieldsFoldIntoSets", func(t *testing.T) {
		t.Parallel()
		data := dataFromFields(map[string]string{
			"actors/user-1": "1",
			"actors/user-2": "1",
			"groups/staff":  "1",
		})
		assert.Equal(t, map[string]struct{}{"user-1": {}, "user-2": {}}, data[gate.KeyActors])
		assert.Equal(t, map[string]struct{}{"staff": {}}, data[gate.KeyGroups])
	})

	t.Run("MemberNamesMayContainSeparators", func(t *testing.T) {
		t.Parallel()
		data := dataFromFields(map[string]string{
			"actors/org/42": "1",
		})
		assert.Equal(t, map[string]struct{}{"org/42": {}}, data[gate.KeyActors])
	})

	t.Run("RoundTripsThroughGateValues", func(t *testing.T) {
		t.Parallel()
		data := dataFromFields(map[string]string{
			gate.KeyBoolean: "true",
			"actors/user-1": "1",
		})
		values := gate.ValuesFromData(data)
		assert.True(t, values.Boolean)
		assert.Equal(t, map[string]struct{}{"user-1": {}}, values.Actors)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("REDIS_RETRY_ATTEMPTS", "5")
	t.Setenv("TOGGLEKIT_KEY_PREFIX", "flags")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/1", cfg.ConnectionURL)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, "flags", cfg.KeyPrefix)
}
