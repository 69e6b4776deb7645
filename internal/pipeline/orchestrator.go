package pipeline

import (
	"fmt"
	"time"

	"fuzzrig/internal/observ"
	"fuzzrig/internal/toolchain"
)

// Options toggle the optional stages for one run. Parse always runs.
type Options struct {
	Typecheck bool
	Lint      bool
	Transpile bool
	Compile   bool
}

// Orchestrator drives the fixed stage sequence over module sets. One
// orchestrator serves many iterations; all per-iteration state lives in the
// run itself.
type Orchestrator struct {
	tc    *toolchain.Toolchain
	sink  Sink
	timer *observ.Timer
}

// NewOrchestrator creates an orchestrator bound to a toolchain. A nil sink
// discards events; a nil timer disables timings.
func NewOrchestrator(tc *toolchain.Toolchain, sink Sink, timer *observ.Timer) *Orchestrator {
	if sink == nil {
		sink = NopSink{}
	}
	return &Orchestrator{tc: tc, sink: sink, timer: timer}
}

// Run processes the module set through parse, check, transpile and compile,
// in set order within every stage. Parse units are destroyed before Run
// returns.
func (o *Orchestrator) Run(set toolchain.ModuleSet, opts Options) *Result {
	result := &Result{Modules: make([]ModuleReport, len(set))}

	units := o.parseAll(set, result)
	defer func() {
		for _, u := range units {
			if u != nil {
				u.Release()
			}
		}
	}()

	if opts.Typecheck {
		o.checkAll(set, result, opts)
		o.stringifyProbe()
	}
	if opts.Transpile {
		o.transpileAll(set, units, result)
	}
	if opts.Compile {
		o.compileAll(set, units, result)
	}
	return result
}

func (o *Orchestrator) parseAll(set toolchain.ModuleSet, result *Result) []toolchain.Unit {
	idx := o.begin(string(StageParse))
	units := make([]toolchain.Unit, len(set))
	parseOpts := toolchain.ParseOptions{CaptureComments: true}
	for i, mod := range set {
		start := time.Now()
		u := o.tc.Parser.Parse(mod.Source, parseOpts)
		units[i] = u

		result.Modules[i].Name = mod.Name
		result.Modules[i].State = StateParsed
		result.Modules[i].ParseErrors = len(u.Errors())

		status := StatusDone
		var err error
		if n := len(u.Errors()); n > 0 {
			status = StatusError
			err = fmt.Errorf("%d parse errors", n)
		}
		o.sink.OnEvent(Event{Module: mod.Name, Stage: StageParse, Status: status, Err: err, Elapsed: time.Since(start)})
	}
	o.end(idx, fmt.Sprintf("%d modules", len(set)))
	return units
}

func (o *Orchestrator) checkAll(set toolchain.ModuleSet, result *Result, opts Options) {
	idx := o.begin(string(StageCheck))
	for i, mod := range set {
		result.Modules[i].State = StateCheckAttempted
		for _, pass := range []CheckPassKind{CheckOrdinary, CheckAutocomplete} {
			start := time.Now()
			outcome := o.runCheckPass(mod.Name, pass, opts)
			result.Modules[i].Checks[pass] = outcome

			status := StatusDone
			if outcome == CheckInternalError {
				status = StatusError
			}
			o.sink.OnEvent(Event{Module: mod.Name, Stage: StageCheck, Status: status, Elapsed: time.Since(start)})
		}
	}
	o.end(idx, "2 passes per module")
}

// runCheckPass runs one analysis pass, recovering any panic the analyzer
// raises. The analyzer is known to throw on some input shapes; suppressing
// those here is the documented policy — the fuzzer hunts crashes, assertion
// failures and memory errors, not internal-exception paths.
func (o *Orchestrator) runCheckPass(module string, pass CheckPassKind, opts Options) (outcome CheckOutcomeKind) {
	defer func() {
		if recover() != nil {
			outcome = CheckInternalError
		}
	}()
	checkOpts := toolchain.CheckOptions{
		ForAutocomplete:      pass == CheckAutocomplete,
		RetainFullTypeGraphs: true,
		RunLintChecks:        opts.Lint,
	}
	if err := o.tc.Frontend.Check(module, checkOpts); err != nil {
		return CheckInternalError
	}
	return CheckOK
}

// stringifyProbe recursively formats every resolved global binding with
// unbounded depth after all checks are done. The analyzer's per-check
// arenas are destroyed very close to this point, so a use-after-free in the
// walk is exactly what the host's memory instrumentation must catch; the
// output itself is discarded.
func (o *Orchestrator) stringifyProbe() {
	idx := o.begin(string(StageStringify))
	stringifyOpts := toolchain.StringifyOptions{
		Exhaustive:     true,
		MaxTableLength: 0,
		MaxTypeLength:  0,
	}
	bindings := o.tc.Frontend.GlobalBindings()
	for _, b := range bindings {
		_ = o.tc.Frontend.StringifyType(b.Type, stringifyOpts)
	}
	o.end(idx, fmt.Sprintf("%d bindings", len(bindings)))
}

func (o *Orchestrator) transpileAll(set toolchain.ModuleSet, units []toolchain.Unit, result *Result) {
	idx := o.begin(string(StageTranspile))
	for i, u := range units {
		start := time.Now()
		root := u.Root()
		if root == nil {
			o.sink.OnEvent(Event{Module: set[i].Name, Stage: StageTranspile, Status: StatusSkipped})
			continue
		}
		// Regeneration output is discarded; the stage exists to prove the
		// path does not crash, even on partial trees from error parses.
		_, err := o.tc.Transpiler.TranspileWithTypes(root)
		result.Modules[i].State = StateTranspiled

		status := StatusDone
		if err != nil {
			status = StatusError
		}
		o.sink.OnEvent(Event{Module: set[i].Name, Stage: StageTranspile, Status: status, Err: err, Elapsed: time.Since(start)})
	}
	o.end(idx, "")
}

func (o *Orchestrator) compileAll(set toolchain.ModuleSet, units []toolchain.Unit, result *Result) {
	idx := o.begin(string(StageCompile))
	for i, u := range units {
		start := time.Now()
		if result.Modules[i].ParseErrors > 0 {
			o.sink.OnEvent(Event{Module: set[i].Name, Stage: StageCompile, Status: StatusSkipped})
			continue
		}
		// Only a limit violation comes back as an outcome; anything else
		// panics out of Compile and is deliberately not caught here.
		out := o.tc.Compiler.Compile(u)
		switch out.Kind {
		case toolchain.CompiledOk:
			result.Modules[i].State = StateCompiledOk
			result.Artifact = out.Bytecode
			result.ArtifactModule = set[i].Name
			o.sink.OnEvent(Event{Module: set[i].Name, Stage: StageCompile, Status: StatusDone, Elapsed: time.Since(start)})
		case toolchain.CompileLimitExceeded:
			result.Modules[i].State = StateCompileFailed
			o.sink.OnEvent(Event{Module: set[i].Name, Stage: StageCompile, Status: StatusError, Err: out.Err, Elapsed: time.Since(start)})
		}
	}
	o.end(idx, "")
}

func (o *Orchestrator) begin(name string) int {
	if o.timer == nil {
		return -1
	}
	return o.timer.Begin(name)
}

func (o *Orchestrator) end(idx int, note string) {
	if o.timer != nil {
		o.timer.End(idx, note)
	}
}
