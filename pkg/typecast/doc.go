// Package typecast normalizes heterogeneous raw storage values into canonical
// Go types.
//
// Storage backends are free to persist gate values however their native types
// allow: booleans as strings, sets as slices, numbers as decimal strings.
// This package is the single normalization boundary between those raw
// representations and the typed snapshots the evaluation engine works with.
//
// All functions are pure and total: invalid input never produces an error,
// it produces the type's zero value (false, 0, or an empty set).
package typecast
