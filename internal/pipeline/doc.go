// Package pipeline sequences the toolchain stages over one module set.
//
// # Purpose
//
//   - Run parse → static check (twice per module) → transpile → compile in
//     the module set's original order, isolating failures per module and
//     per stage so one module's failure never blocks later modules or
//     later stages where semantically valid.
//   - Track each module through the explicit state machine
//     Parsed → {CheckAttempted} → {Transpiled} → {CompiledOk | CompileFailed}
//     and retain the artifact of the most recently compiled module.
//   - Emit per-stage progress events to a sink and stage timings to the
//     observ timer.
//
// # Scope
//
// The stages themselves live behind internal/toolchain. Code generation
// and execution of the resulting artifact belong to internal/codegen.
package pipeline
