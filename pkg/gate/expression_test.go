package gate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/togglekit/pkg/gate"
)

func TestParseExpression(t *testing.T) {
	t.Parallel()

	t.Run("RoundTripsJSON", func(t *testing.T) {
		t.Parallel()
		src := `{"Equal":[{"Property":["plan"]},"basic"]}`
		expr, err := gate.ParseExpression([]byte(src))
		require.NoError(t, err)
		encoded, err := expr.MarshalJSON()
		require.NoError(t, err)
		assert.JSONEq(t, src, string(encoded))
	})

	t.Run("MalformedContents", func(t *testing.T) {
		t.Parallel()
		_, err := gate.ParseExpression([]byte("{nope"))
		require.ErrorIs(t, err, gate.ErrMalformedExpression)
	})
}

func TestExpressionEvaluate(t *testing.T) {
	t.Parallel()

	eval := func(t *testing.T, src string, props map[string]any) bool {
		t.Helper()
		expr, err := gate.ParseExpression([]byte(src))
		require.NoError(t, err)
		return expr.Matches(gate.ExpressionContext{FeatureName: "search", Properties: props})
	}

	t.Run("PropertyComparison", func(t *testing.T) {
		t.Parallel()
		src := `{"Equal":[{"Property":["plan"]},"basic"]}`
		assert.True(t, eval(t, src, map[string]any{"plan": "basic"}))
		assert.False(t, eval(t, src, map[string]any{"plan": "pro"}))
		assert.False(t, eval(t, src, nil))
	})

	t.Run("NumericComparisons", func(t *testing.T) {
		t.Parallel()
		src := `{"GreaterThanOrEqualTo":[{"Property":["age"]},{"Number":[21]}]}`
		assert.True(t, eval(t, src, map[string]any{"age": 21}))
		assert.True(t, eval(t, src, map[string]any{"age": 22.5}))
		assert.False(t, eval(t, src, map[string]any{"age": 20}))
		assert.False(t, eval(t, src, map[string]any{"age": "lots"}))
	})

	t.Run("AllAnyNot", func(t *testing.T) {
		t.Parallel()
		src := `{"All":[
			{"Boolean":[true]},
			{"Any":[{"Equal":[{"Property":["plan"]},"pro"]},{"Boolean":[false]}]},
			{"Not":[{"Equal":[{"Property":["plan"]},"basic"]}]}
		]}`
		assert.True(t, eval(t, src, map[string]any{"plan": "pro"}))
		assert.False(t, eval(t, src, map[string]any{"plan": "basic"}))
	})

	t.Run("FeatureNameIsAProperty", func(t *testing.T) {
		t.Parallel()
		src := `{"Equal":[{"Property":["feature_name"]},"search"]}`
		assert.True(t, eval(t, src, nil))
	})

	t.Run("UnknownFunctionIsFalse", func(t *testing.T) {
		t.Parallel()
		assert.False(t, eval(t, `{"Mystery":[1]}`, nil))
	})

	t.Run("BareConstantIsNotTrue", func(t *testing.T) {
		t.Parallel()
		assert.False(t, eval(t, `42`, nil))
		assert.True(t, eval(t, `true`, nil))
	})
}

func TestExpressionGate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g := gate.ExpressionGate{}

	expr, err := gate.ParseExpression([]byte(`{"Equal":[{"Property":["plan"]},"basic"]}`))
	require.NoError(t, err)

	t.Run("UsesActorProperties", func(t *testing.T) {
		t.Parallel()
		check := gate.CheckContext{
			FeatureName: "search",
			Values:      gate.GateValues{Expression: expr},
			Actor:       testActor{id: "user-1", props: map[string]any{"plan": "basic"}},
		}
		assert.True(t, g.IsOpen(ctx, check))
	})

	t.Run("ClosedWithoutExpression", func(t *testing.T) {
		t.Parallel()
		check := gate.CheckContext{FeatureName: "search"}
		assert.False(t, g.IsOpen(ctx, check))
	})

	t.Run("ClosedWithoutMatchingProperties", func(t *testing.T) {
		t.Parallel()
		check := gate.CheckContext{
			FeatureName: "search",
			Values:      gate.GateValues{Expression: expr},
			Actor:       testActor{id: "user-1"},
		}
		assert.False(t, g.IsOpen(ctx, check))
	})
}

func TestExpressionEqual(t *testing.T) {
	t.Parallel()

	a, err := gate.ParseExpression([]byte(`{"Boolean":[true]}`))
	require.NoError(t, err)
	b, err := gate.ParseExpression([]byte(`{"Boolean":[true]}`))
	require.NoError(t, err)
	c, err := gate.ParseExpression([]byte(`{"Boolean":[false]}`))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))

	var nilExpr *gate.Expression
	assert.True(t, nilExpr.Equal(nil))
}
