package toolchain

import "sort"

// GlobalRef is a bare global-name reference inside a module.
type GlobalRef struct {
	Name string
}

// SourceResolver is the lookup capability consumed by the static checker.
type SourceResolver interface {
	// ReadSource returns a registered module's text.
	ReadSource(name string) (string, bool)
	// ResolveModule maps a bare global reference to a module name.
	ResolveModule(ref GlobalRef) (string, bool)
	// HumanReadableName passes a module name through for diagnostics.
	HumanReadableName(name string) string
	// EnvironmentFor reports a per-module environment override.
	EnvironmentFor(name string) (string, bool)
}

// AnalysisMode selects the checker's strictness.
type AnalysisMode uint8

const (
	// ModeNonStrict is the permissive analysis mode.
	ModeNonStrict AnalysisMode = iota
	// ModeStrict is the strict analysis mode.
	ModeStrict
)

func (m AnalysisMode) String() string {
	if m == ModeStrict {
		return "strict"
	}
	return "nonstrict"
}

// Config is the per-module analysis configuration.
type Config struct {
	Mode            AnalysisMode
	LintMask        uint64
	CaptureComments bool
}

// ConfigResolver yields the analysis configuration for a module.
type ConfigResolver interface {
	ConfigFor(name string) Config
}

// FuzzSourceResolver is the map-backed resolver used during fuzzing. A bare
// global reference resolves to the module of the same name; environment
// overrides always report none. Queries are recorded so tests can assert
// the checker never asks for unregistered names.
type FuzzSourceResolver struct {
	sources map[string]string
	queried []string
}

// NewFuzzSourceResolver creates an empty resolver.
func NewFuzzSourceResolver() *FuzzSourceResolver {
	return &FuzzSourceResolver{sources: make(map[string]string, 4)}
}

// AddSource registers a module's text for the current iteration.
func (r *FuzzSourceResolver) AddSource(name, source string) {
	r.sources[name] = source
}

// Reset drops all registered sources and recorded queries. Called before
// each iteration re-registers the new module set.
func (r *FuzzSourceResolver) Reset() {
	clear(r.sources)
	r.queried = r.queried[:0]
}

// ReadSource returns a registered module's text.
func (r *FuzzSourceResolver) ReadSource(name string) (string, bool) {
	r.queried = append(r.queried, name)
	src, ok := r.sources[name]
	return src, ok
}

// ResolveModule maps the bare global name straight to a module name.
func (r *FuzzSourceResolver) ResolveModule(ref GlobalRef) (string, bool) {
	if ref.Name == "" {
		return "", false
	}
	return ref.Name, true
}

// HumanReadableName returns the module name unchanged.
func (r *FuzzSourceResolver) HumanReadableName(name string) string { return name }

// EnvironmentFor always reports no override in the fuzz harness.
func (r *FuzzSourceResolver) EnvironmentFor(string) (string, bool) { return "", false }

// Queried returns a sorted copy of every name ReadSource was asked for.
func (r *FuzzSourceResolver) Queried() []string {
	out := append([]string(nil), r.queried...)
	sort.Strings(out)
	return out
}

// FuzzConfigResolver returns one fixed configuration for every module:
// non-strict mode, every lint category enabled, comment capture on.
type FuzzConfigResolver struct {
	cfg Config
}

// NewFuzzConfigResolver builds the fixed fuzz configuration.
func NewFuzzConfigResolver() *FuzzConfigResolver {
	return &FuzzConfigResolver{cfg: Config{
		Mode:            ModeNonStrict,
		LintMask:        ^uint64(0),
		CaptureComments: true,
	}}
}

// ConfigFor returns the same configuration regardless of module name.
func (r *FuzzConfigResolver) ConfigFor(string) Config { return r.cfg }
