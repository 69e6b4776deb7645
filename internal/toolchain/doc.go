// Package toolchain defines the boundary between the fuzzing harness and
// the guest-language toolchain under test.
//
// # Purpose
//
//   - Describe each external collaborator (translator, parser, frontend,
//     transpiler, compiler, runtime, code generator) as a narrow interface
//     carrying exactly the operations the harness needs.
//   - Model stage outcomes as explicit result values so the split between
//     recoverable and fatal failures is enforced by types, not by which
//     recover site happens to run.
//   - Provide the fuzz-specific resolver implementations: an in-memory
//     source resolver that maps bare global references to module names, and
//     a config resolver returning one fixed non-strict configuration.
//
// # Scope
//
// This package contains no toolchain logic. The systems under test live
// behind these interfaces; internal/guestsim carries the simulated
// implementation used for self-tests.
package toolchain
