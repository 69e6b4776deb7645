// Package typeenv models the frozen global type environments the harness
// exposes to the guest toolchain's static analyzer.
//
// # Purpose
//
//   - Provide an append-only arena of type nodes (nominal, table, function)
//     addressed by stable TypeIDs.
//   - Build two independent global environments (ordinary and autocomplete)
//     holding a small fixed set of stub host types, mimicking a production
//     embedding that exposes host object types to the analyzer.
//   - Enforce the frozen-state discipline: once an environment is frozen,
//     any mutation panics immediately instead of corrupting shared state
//     that later iterations depend on.
//
// # Scope
//
// Package typeenv does not perform type inference or checking; the analyzer
// behind the toolchain boundary consumes these environments read-only. All
// per-iteration analysis state lives in arenas owned by the analyzer, never
// here.
package typeenv
