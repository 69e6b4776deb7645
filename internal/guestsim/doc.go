// Package guestsim is a miniature, fully deterministic guest toolchain
// implementing the internal/toolchain boundary.
//
// # Purpose
//
//   - Give the harness a real counterpart for self-tests and the CLI's
//     selftest replay mode: a line-oriented toy language with a parser,
//     checker, transpiler, register-limited compiler, a stepping runtime
//     that drives the allocator hook and the interrupt callback, and a
//     pretend code-generation backend.
//   - Exercise every failure class the harness must isolate: parse errors,
//     analyzer panics, compile limit violations, allocator rejections,
//     watchdog timeouts and heap leaks.
//
// # Scope
//
// This is a test double, not a language. It stays just complex enough to
// light up the harness's paths; anything resembling real semantics is out.
//
// # Statement forms
//
//	print <text>   no-op
//	local <name>   consumes one compiler register
//	global <name>  declares a numeric global binding
//	vec <name>     declares a binding of the exported value stub type
//	use <name>     references another module's global by name
//	alloc <n>      allocates n bytes, released at the next collection
//	leak <n>       allocates n bytes that survive collection
//	loop           spins until the watchdog raises a timeout
//	boom           makes the analyzer panic during checking
//	ice            fires the frontend's internal-error callback
//	err <text>     produces a parse error (the line is dropped from the AST)
package guestsim
