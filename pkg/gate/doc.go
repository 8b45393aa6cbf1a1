// Package gate implements the predicates that decide whether a feature is
// enabled for a candidate, and the typed snapshot layer they evaluate
// against.
//
// # Architecture
//
// The package is built around three core concepts:
//
// 1. GateValues - an immutable, typed snapshot of one feature's raw storage
// record, normalized through the typecast package
// 2. Gates - six stateless predicate variants (boolean, expression, actor,
// percentage of actors, percentage of time, group)
// 3. Typed values - canonical wrappers carrying a single gate value into and
// out of storage
//
// Gates are evaluated in the fixed order returned by All with
// short-circuiting OR semantics: the first open gate determines the verdict
// and is the one reported to instrumentation.
//
// # Determinism
//
// The percentage-of-actors gate buckets actors with CRC32 over the feature
// name and actor id, scaled to three decimal places of precision. The same
// feature, actor and percentage always produce the same verdict, and raising
// the percentage never removes a previously included actor. The
// percentage-of-time gate is deliberately non-deterministic: it draws a
// fresh uniform random number on every check.
//
// # Groups
//
// Group membership is resolved through an explicit Groups registry value
// passed in the check context; there is no ambient registry. A group name
// stored against a feature but missing from the registry never opens the
// gate.
package gate
