package toolchain

import (
	"fuzzrig/internal/flagreg"
	"fuzzrig/internal/typeenv"
)

// Module is one named source text inside a module set.
type Module struct {
	Name   string
	Source string
}

// ModuleSet is the ordered output of the translator for one fuzz iteration.
// Later modules may reference earlier ones by name, so order is meaningful.
type ModuleSet []Module

// Translator turns a schema-constrained structured input into source texts.
// Must be deterministic for identical input.
type Translator interface {
	Translate(input []byte, typeAnnotations bool) (ModuleSet, error)
}

// AST is an opaque syntax-tree handle owned by a parse unit.
type AST any

// TypeRef is an opaque resolved-type handle owned by the frontend.
type TypeRef any

// ParseError is one recoverable diagnostic produced by the parser.
type ParseError struct {
	Line    int
	Message string
}

// ParseOptions mirror the fixed parse configuration of the harness.
type ParseOptions struct {
	CaptureComments bool
}

// Unit bundles a module's text allocator, name-interning table and parse
// result. Owned exclusively by the orchestrator for one iteration; Release
// destroys all of it at iteration end.
type Unit interface {
	// Root returns the parsed tree, possibly partial, or nil when nothing
	// usable was produced.
	Root() AST
	// Errors returns the parse diagnostics; empty means a clean parse.
	Errors() []ParseError
	// Release destroys the unit's allocator and interning table.
	Release()
}

// Parser produces one Unit per module text.
type Parser interface {
	Parse(source string, opts ParseOptions) Unit
}

// CheckOptions select the analysis pass variant.
type CheckOptions struct {
	ForAutocomplete      bool
	RetainFullTypeGraphs bool
	RunLintChecks        bool
}

// StringifyOptions configure the recursive type formatter. Zero limits mean
// unbounded depth, which is exactly what the access-after-lifetime probe
// wants.
type StringifyOptions struct {
	Exhaustive     bool
	MaxTableLength int
	MaxTypeLength  int
}

// Binding is one resolved global binding exposed by the frontend after a
// check pass.
type Binding struct {
	Name string
	Type TypeRef
}

// Frontend is the long-lived analysis engine, created once per process and
// reused across iterations. Check may panic on inputs the analyzer cannot
// digest; the orchestrator recovers and records the pass as internally
// failed.
type Frontend interface {
	typeenv.BuiltinRegistrar

	// AttachEnvironments hands the frontend its two frozen global scopes.
	AttachEnvironments(ordinary, autocomplete *typeenv.Environment)
	// AttachResolvers hands the frontend its source and configuration
	// lookup capabilities.
	AttachResolvers(src SourceResolver, cfg ConfigResolver)
	// SetInternalErrorHandler installs the callback fired on an internal
	// consistency error. The harness routes it to the fatal tier.
	SetInternalErrorHandler(fn func(msg string))
	// ClearCaches drops every iteration-scoped analysis cache. Called at
	// the start of each iteration, before any source is re-registered.
	ClearCaches()
	// Check runs the full analysis pipeline over one module.
	Check(module string, opts CheckOptions) error
	// GlobalBindings lists the resolved global bindings of the ordinary
	// scope after checking.
	GlobalBindings() []Binding
	// StringifyType recursively formats a resolved type.
	StringifyType(t TypeRef, opts StringifyOptions) string
}

// Transpiler regenerates source text from a parsed tree, type annotations
// included. The result is discarded by the harness; the stage exists to
// exercise the regeneration path.
type Transpiler interface {
	TranspileWithTypes(root AST) (string, error)
}

// CompileOutcomeKind enumerates the only two legal compile results for a
// module that parsed cleanly.
type CompileOutcomeKind uint8

const (
	// CompiledOk means the module lowered to a non-empty bytecode buffer.
	CompiledOk CompileOutcomeKind = iota
	// CompileLimitExceeded means a fixed compile-time limit (register
	// count and similar) was hit. Recoverable and expected.
	CompileLimitExceeded
)

func (k CompileOutcomeKind) String() string {
	if k == CompileLimitExceeded {
		return "limit-exceeded"
	}
	return "ok"
}

// CompileOutcome is the explicit result of the compile stage. Failures that
// are neither of the two kinds must panic instead: they are not recoverable
// and the orchestrator deliberately lets them escape.
type CompileOutcome struct {
	Kind     CompileOutcomeKind
	Bytecode []byte
	Err      error // detail accompanying CompileLimitExceeded
}

// Compiler lowers a cleanly parsed unit to a bytecode artifact.
type Compiler interface {
	Compile(u Unit) CompileOutcome
}

// AllocFunc is the allocator hook signature the guest runtime calls for
// every allocation, resize and free. newSize == 0 frees and never fails;
// otherwise the hook returns the resized storage or ok == false when the
// request was rejected without side effects.
type AllocFunc func(old []byte, newSize int) (buf []byte, ok bool)

// InterruptFunc is invoked periodically by the guest runtime at safe
// points. gcPhase is true when called from inside a collection cycle, in
// which case the callback must do nothing.
type InterruptFunc func(th Thread, gcPhase bool)

// Thread is one guest execution thread.
type Thread interface {
	// Sandbox isolates the thread from the runtime's shared globals.
	Sandbox()
	// Load stages a bytecode chunk; a zero status means ready to resume.
	Load(chunkName string, bytecode []byte) int
	// Resume runs the thread once until completion, fault or yield. The
	// returned error is a guest-level fault, never a harness failure.
	Resume() error
	// RaiseRuntimeError signals a guest-visible runtime fault through the
	// guest's own error mechanism. Used by the watchdog.
	RaiseRuntimeError(msg string)
}

// RuntimeOptions configure a new runtime instance.
type RuntimeOptions struct {
	Alloc     AllocFunc
	Interrupt InterruptFunc
	OpenLibs  bool
	Sandbox   bool
}

// Runtime is a guest virtual-machine instance.
type Runtime interface {
	NewThread() Thread
	// Collect forces a full garbage-collection cycle.
	Collect()
	Close()
}

// RuntimeFactory creates runtime instances: one long-lived for execution,
// disposable ones for the assembly-only path.
type RuntimeFactory interface {
	NewRuntime(opts RuntimeOptions) Runtime
}

// Target names a code-generation target architecture.
type Target string

const (
	// TargetA64 selects 64-bit ARM assembly output.
	TargetA64 Target = "a64"
	// TargetX64 selects 64-bit x86 assembly output.
	TargetX64 Target = "x64"
)

// AsmOptions configure assembly emission.
type AsmOptions struct {
	Target       Target
	OutputBinary bool
}

// CodeGen is the native code-generation backend.
type CodeGen interface {
	// Supported reports whether the host can run natively compiled code.
	Supported() bool
	// Enable attaches the backend to a runtime instance.
	Enable(rt Runtime)
	// NativeCompile lowers the loaded chunk of th to native code in place.
	NativeCompile(th Thread) error
	// EmitAssembly lowers the loaded chunk of th to assembly text or
	// binary and returns it. Never executes guest code.
	EmitAssembly(th Thread, opts AsmOptions) ([]byte, error)
}

// Toolchain bundles every collaborator the harness drives. Flags is the
// toolchain's own registry of internal toggles; the harness owns their
// values, never their semantics.
type Toolchain struct {
	Translator Translator
	Parser     Parser
	Frontend   Frontend
	Transpiler Transpiler
	Compiler   Compiler
	Runtimes   RuntimeFactory
	CodeGen    CodeGen
	Flags      *flagreg.Registry
}
