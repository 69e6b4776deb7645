// Package harness is the iteration driver: it binds the translator, the
// pipeline orchestrator, the resource governor and the code-generation
// driver into one long-lived fuzzing context and runs structured inputs
// through them.
//
// # Purpose
//
//   - Config loads and validates the stage toggles and resource limits
//     from TOML, with stage-dependency checking (execution needs the
//     compiler, native codegen needs execution).
//   - Harness holds everything that survives across iterations: the two
//     frozen global type environments, the flag registry, the allocation
//     governor, the long-lived execution runtime.
//   - RunIteration is the one-input entry point: randomize flags,
//     translate, re-register sources, run the pipeline, consume the
//     artifact, verify the frozen environments were not mutated.
//   - ReproBundle persists a failing input with its derived sources for
//     offline replay.
//
// # Scope
//
// The harness owns sequencing and lifetime, not semantics: what each stage
// does belongs to the toolchain behind the interfaces, and the failure
// policy belongs to the report package.
package harness
