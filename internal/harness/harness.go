package harness

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"fuzzrig/internal/codegen"
	"fuzzrig/internal/flagreg"
	"fuzzrig/internal/govern"
	"fuzzrig/internal/observ"
	"fuzzrig/internal/pipeline"
	"fuzzrig/internal/report"
	"fuzzrig/internal/toolchain"
	"fuzzrig/internal/typeenv"
)

// DebugEnvVar, when set in the environment, makes the harness print every
// derived module source before running it. Crash triage under a fuzzing
// engine reads this output from the reproducer log.
const DebugEnvVar = "FUZZRIG_DEBUG"

// Harness is the long-lived fuzzing context. Everything in it is built once
// and reused: re-creating the frontend or the execution runtime per input
// would hide exactly the cross-iteration state bugs the fuzzer hunts.
type Harness struct {
	cfg   Config
	tc    *toolchain.Toolchain
	fatal report.FatalSink
	log   zerolog.Logger

	governor *govern.Governor
	watchdog *govern.Watchdog

	ordinary     *typeenv.Environment
	autocomplete *typeenv.Environment
	ordinaryFP   [32]byte
	autocompFP   [32]byte

	sources *toolchain.FuzzSourceResolver
	orch    *pipeline.Orchestrator
	driver  *codegen.Driver
	execRT  toolchain.Runtime
	timer   *observ.Timer

	lastSet    toolchain.ModuleSet
	iterations uint64

	debug    bool
	debugOut io.Writer
}

// New builds a harness around a toolchain. The global environments are
// constructed and frozen here, once, before any input runs.
func New(cfg Config, tc *toolchain.Toolchain, fatal report.FatalSink, log zerolog.Logger) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fatal == nil {
		fatal = report.ExitSink{}
	}

	h := &Harness{
		cfg:      cfg,
		tc:       tc,
		fatal:    fatal,
		log:      log,
		governor: govern.NewGovernor(cfg.Limits.HeapCeiling),
		watchdog: govern.NewWatchdog(cfg.InterruptTimeout()),
		timer:    observ.NewTimer(),
		debug:    os.Getenv(DebugEnvVar) != "",
		debugOut: os.Stdout,
	}

	h.ordinary = typeenv.BuildGlobalEnv(typeenv.ScopeOrdinary, tc.Frontend)
	h.autocomplete = typeenv.BuildGlobalEnv(typeenv.ScopeAutocomplete, tc.Frontend)
	h.ordinaryFP = h.ordinary.Fingerprint()
	h.autocompFP = h.autocomplete.Fingerprint()
	tc.Frontend.AttachEnvironments(h.ordinary, h.autocomplete)

	h.sources = toolchain.NewFuzzSourceResolver()
	tc.Frontend.AttachResolvers(h.sources, toolchain.NewFuzzConfigResolver())
	tc.Frontend.SetInternalErrorHandler(func(msg string) {
		h.fatal.Fatal("frontend", "internal error: "+msg)
	})

	h.orch = pipeline.NewOrchestrator(tc, nil, h.timer)
	h.driver = codegen.NewDriver(tc, h.governor, h.watchdog, fatal,
		cfg.Limits.CollectCeiling, toolchain.Target(cfg.Codegen.Target))

	if cfg.Fuzz.VM {
		h.execRT = tc.Runtimes.NewRuntime(toolchain.RuntimeOptions{
			Alloc:     h.governor.Alloc,
			Interrupt: h.watchdog.Interrupt,
			OpenLibs:  true,
			Sandbox:   true,
		})
		if cfg.Fuzz.Codegen && tc.CodeGen.Supported() {
			tc.CodeGen.Enable(h.execRT)
		}
	}
	return h, nil
}

// Close releases the long-lived execution runtime.
func (h *Harness) Close() {
	if h.execRT != nil {
		h.execRT.Close()
		h.execRT = nil
	}
}

// Iterations returns the number of inputs processed so far.
func (h *Harness) Iterations() uint64 { return h.iterations }

// LastSet returns the module set derived from the most recent input, kept
// for reproducer bundling after a failure.
func (h *Harness) LastSet() toolchain.ModuleSet { return h.lastSet }

// Timer exposes the per-stage timings of the most recent iteration. The
// timer is cleared at the start of every RunIteration.
func (h *Harness) Timer() *observ.Timer { return h.timer }

// RunIteration processes one structured input end to end and returns the
// pipeline result. Nothing about a "bad" input is an error at this level:
// parse failures, analyzer exceptions and compile limits are recoverable
// outcomes inside the result; genuine defects go through the fatal sink.
func (h *Harness) RunIteration(input []byte) *pipeline.Result {
	h.timer.Reset()
	flagreg.Randomize(h.tc.Flags, h.cfg.FlagPrefix)

	set, err := h.tc.Translator.Translate(input, h.cfg.Fuzz.TypeAnnotations)
	if err != nil {
		h.log.Debug().Err(err).Msg("translator rejected input")
		return &pipeline.Result{}
	}
	h.lastSet = set
	if h.debug {
		h.dumpSources(set)
	}

	h.tc.Frontend.ClearCaches()
	h.sources.Reset()
	for _, mod := range set {
		h.sources.AddSource(mod.Name, mod.Source)
	}

	result := h.orch.Run(set, pipeline.Options{
		Typecheck: h.cfg.Fuzz.Typecheck,
		Lint:      h.cfg.Fuzz.Lint,
		Transpile: h.cfg.Fuzz.Transpile,
		Compile:   h.cfg.Fuzz.Compile,
	})

	if result.Artifact != nil {
		if h.cfg.Fuzz.CodegenAsm {
			h.driver.EmitAssembly(result.Artifact)
		}
		if h.cfg.Fuzz.VM {
			if h.cfg.Fuzz.Codegen {
				h.driver.Execute(h.execRT, result.Artifact)
			} else {
				h.driver.ExecuteInterpreted(h.execRT, result.Artifact)
			}
		}
	}

	h.verifyFrozenEnvs()
	h.iterations++
	h.log.Debug().
		Uint64("iteration", h.iterations).
		Int("modules", len(set)).
		Bool("artifact", result.Artifact != nil).
		Msg("iteration complete")
	return result
}

// verifyFrozenEnvs re-fingerprints both global environments after the
// iteration. Any drift means iteration-scoped analysis leaked a mutation
// into process-lifetime state.
func (h *Harness) verifyFrozenEnvs() {
	if h.ordinary.Fingerprint() != h.ordinaryFP {
		h.fatal.Fatal("typeenv", "ordinary global environment mutated after freeze")
	}
	if h.autocomplete.Fingerprint() != h.autocompFP {
		h.fatal.Fatal("typeenv", "autocomplete global environment mutated after freeze")
	}
}

func (h *Harness) dumpSources(set toolchain.ModuleSet) {
	for _, mod := range set {
		fmt.Fprintf(h.debugOut, "-- %s\n%s\n", mod.Name, mod.Source)
	}
}
