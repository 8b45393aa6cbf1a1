package gate

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"reflect"
	"time"

	"github.com/dmitrymomot/togglekit/pkg/typecast"
)

// Expression is a small boolean expression tree evaluated against a
// feature's name and a candidate's properties. The wire form is JSON: a
// scalar is a constant, a single-key object is a function call, e.g.
//
//	{"Equal": [{"Property": ["plan"]}, "basic"]}
//	{"Any": [{"Boolean": [true]}, {"GreaterThan": [{"Property": ["age"]}, 21]}]}
type Expression struct {
	raw any
}

// ExpressionContext is the environment an expression is evaluated in.
type ExpressionContext struct {
	FeatureName string
	Properties  map[string]any
}

// NewExpression builds an expression from an already-decoded JSON value.
func NewExpression(raw any) *Expression {
	return &Expression{raw: raw}
}

// ParseExpression decodes an expression from its JSON wire form.
func ParseExpression(b []byte) (*Expression, error) {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, errors.Join(ErrMalformedExpression, err)
	}
	return &Expression{raw: raw}, nil
}

// MarshalJSON encodes the expression back into its wire form.
func (e *Expression) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.raw)
}

// Equal reports structural equality of two expression trees.
func (e *Expression) Equal(other *Expression) bool {
	if e == nil || other == nil {
		return e == other
	}
	return reflect.DeepEqual(e.raw, other.raw)
}

// Evaluate walks the tree and returns the resulting value. Unknown function
// names and malformed nodes evaluate to nil rather than erroring, matching
// the fail-closed posture of gate evaluation.
func (e *Expression) Evaluate(ec ExpressionContext) any {
	if e == nil {
		return nil
	}
	props := make(map[string]any, len(ec.Properties)+1)
	for k, v := range ec.Properties {
		props[k] = v
	}
	props["feature_name"] = ec.FeatureName
	return evalNode(e.raw, props)
}

// Matches reports whether the expression evaluates to exactly true.
func (e *Expression) Matches(ec ExpressionContext) bool {
	return e.Evaluate(ec) == true
}

func evalNode(node any, props map[string]any) any {
	call, ok := node.(map[string]any)
	if !ok || len(call) != 1 {
		// Scalars are constants; multi-key objects are malformed.
		if ok {
			return nil
		}
		return node
	}

	var name string
	var rawArgs any
	for k, v := range call {
		name, rawArgs = k, v
	}
	args, _ := rawArgs.([]any)

	switch name {
	case "All":
		for _, a := range args {
			if evalNode(a, props) != true {
				return false
			}
		}
		return true
	case "Any":
		for _, a := range args {
			if evalNode(a, props) == true {
				return true
			}
		}
		return false
	case "Not":
		return !(evalArg(args, 0, props) == true)
	case "Equal":
		return looseEqual(evalArg(args, 0, props), evalArg(args, 1, props))
	case "NotEqual":
		return !looseEqual(evalArg(args, 0, props), evalArg(args, 1, props))
	case "GreaterThan":
		return compareNumbers(args, props, func(a, b float64) bool { return a > b })
	case "GreaterThanOrEqualTo":
		return compareNumbers(args, props, func(a, b float64) bool { return a >= b })
	case "LessThan":
		return compareNumbers(args, props, func(a, b float64) bool { return a < b })
	case "LessThanOrEqualTo":
		return compareNumbers(args, props, func(a, b float64) bool { return a <= b })
	case "Property":
		key, ok := evalArg(args, 0, props).(string)
		if !ok {
			return nil
		}
		return props[key]
	case "Boolean":
		return typecast.ToBool(evalArg(args, 0, props))
	case "String":
		s, _ := evalArg(args, 0, props).(string)
		return s
	case "Number", "Percentage":
		return typecast.ToFloat(evalArg(args, 0, props))
	case "Random":
		max := typecast.ToFloat(evalArg(args, 0, props))
		if max <= 0 {
			return float64(0)
		}
		return rand.Float64() * max
	case "Now":
		return float64(time.Now().Unix())
	case "Time":
		s, ok := evalArg(args, 0, props).(string)
		if !ok {
			return nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil
		}
		return float64(t.Unix())
	default:
		return nil
	}
}

func evalArg(args []any, i int, props map[string]any) any {
	if i >= len(args) {
		return nil
	}
	return evalNode(args[i], props)
}

func looseEqual(a, b any) bool {
	if af, aok := asNumber(a); aok {
		if bf, bok := asNumber(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func compareNumbers(args []any, props map[string]any, cmp func(a, b float64) bool) bool {
	a, aok := asNumber(evalArg(args, 0, props))
	b, bok := asNumber(evalArg(args, 1, props))
	return aok && bok && cmp(a, b)
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

// ExpressionGate enables a feature when its stored expression evaluates to
// true against the candidate's properties.
type ExpressionGate struct{}

func (ExpressionGate) Kind() Kind         { return KindExpression }
func (ExpressionGate) Name() string       { return "expression" }
func (ExpressionGate) Key() string        { return KeyExpression }
func (ExpressionGate) DataType() DataType { return DataTypeJSON }

func (ExpressionGate) IsEnabled(values GateValues) bool {
	return values.Expression != nil
}

func (ExpressionGate) IsOpen(_ context.Context, check CheckContext) bool {
	expr := check.Values.Expression
	if expr == nil {
		return false
	}
	var props map[string]any
	if p, ok := check.Thing.(PropertyProvider); ok {
		props = p.ToggleProperties()
	} else if p, ok := check.Actor.(PropertyProvider); ok {
		props = p.ToggleProperties()
	}
	return expr.Matches(ExpressionContext{
		FeatureName: check.FeatureName,
		Properties:  props,
	})
}

func (ExpressionGate) Protects(thing any) bool {
	switch thing.(type) {
	case *Expression, ExpressionValue:
		return true
	default:
		return false
	}
}

func (g ExpressionGate) Wrap(thing any) (TypedValue, error) {
	switch t := thing.(type) {
	case ExpressionValue:
		return t, nil
	case *Expression:
		if t == nil {
			return nil, wrapError(g, thing)
		}
		return ExpressionValue{Expr: t}, nil
	default:
		return nil, wrapError(g, thing)
	}
}
