package typecast

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// ToBool normalizes a raw stored value into a boolean.
// Only true, 1, "true" and "1" are treated as true; every other value,
// including nil and unknown types, is false.
func ToBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	case int:
		return t == 1
	case int64:
		return t == 1
	case float64:
		return t == 1
	default:
		return false
	}
}

// ToFloat normalizes a raw stored value into a float64.
// Strings are parsed as integers or decimals; unparsable values and unknown
// types default to 0.
func ToFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ToSet normalizes a raw stored value into a set of strings.
// Slices of any element type are accepted with every member coerced to a
// string; existing sets are copied. Anything else yields an empty set.
func ToSet(v any) map[string]struct{} {
	switch t := v.(type) {
	case map[string]struct{}:
		return maps.Clone(t)
	case []string:
		set := make(map[string]struct{}, len(t))
		for _, s := range t {
			set[s] = struct{}{}
		}
		return set
	case []any:
		set := make(map[string]struct{}, len(t))
		for _, e := range t {
			set[toString(e)] = struct{}{}
		}
		return set
	default:
		return map[string]struct{}{}
	}
}

// SetToSlice returns the members of a set as a sorted slice, giving exports
// and comparisons a stable order.
func SetToSlice(set map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(set))
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; keep integral values compact.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
