package pipeline

import "time"

// Stage describes one pipeline phase.
type Stage string

const (
	// StageParse is the parsing stage.
	StageParse Stage = "parse"
	// StageCheck is the static-check stage (two passes per module).
	StageCheck Stage = "check"
	// StageStringify is the post-check type-stringification probe.
	StageStringify Stage = "stringify"
	// StageTranspile is the source-regeneration stage.
	StageTranspile Stage = "transpile"
	// StageCompile is the bytecode-lowering stage.
	StageCompile Stage = "compile"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusDone indicates the stage step completed.
	StatusDone Status = "done"
	// StatusError indicates a recovered failure for this module.
	StatusError Status = "error"
	// StatusSkipped indicates the module did not qualify for the stage.
	StatusSkipped Status = "skipped"
)

// Event reports progress for a module (or the whole set when Module is
// empty).
type Event struct {
	Module  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Sink consumes progress events.
type Sink interface {
	OnEvent(Event)
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}

// MultiSink fans events out to several sinks.
type MultiSink []Sink

func (m MultiSink) OnEvent(evt Event) {
	for _, s := range m {
		if s != nil {
			s.OnEvent(evt)
		}
	}
}

// ModuleState is the per-module state machine position.
type ModuleState uint8

const (
	// StateParsed means only the parse stage has run.
	StateParsed ModuleState = iota
	// StateCheckAttempted means at least one check pass ran.
	StateCheckAttempted
	// StateTranspiled means source regeneration ran over the module.
	StateTranspiled
	// StateCompiledOk is terminal: the module produced the current
	// artifact at the time it compiled.
	StateCompiledOk
	// StateCompileFailed is terminal: a compile-time limit violation
	// excluded the module from codegen and execution.
	StateCompileFailed
)

func (s ModuleState) String() string {
	switch s {
	case StateCheckAttempted:
		return "check-attempted"
	case StateTranspiled:
		return "transpiled"
	case StateCompiledOk:
		return "compiled-ok"
	case StateCompileFailed:
		return "compile-failed"
	default:
		return "parsed"
	}
}

// CheckPassKind names the two analysis passes run per module.
type CheckPassKind uint8

const (
	// CheckOrdinary is the regular analysis pass.
	CheckOrdinary CheckPassKind = iota
	// CheckAutocomplete is the second pass with autocomplete forced.
	CheckAutocomplete
)

func (k CheckPassKind) String() string {
	if k == CheckAutocomplete {
		return "autocomplete"
	}
	return "ordinary"
}

// CheckOutcomeKind is the explicit result of one check pass.
type CheckOutcomeKind uint8

const (
	// CheckOK means the pass completed, diagnostics notwithstanding.
	CheckOK CheckOutcomeKind = iota
	// CheckInternalError means the analyzer raised internally and the
	// pass was discarded under the documented suppression policy.
	CheckInternalError
)

func (k CheckOutcomeKind) String() string {
	if k == CheckInternalError {
		return "internal-error"
	}
	return "ok"
}

// ModuleReport summarises one module's trip through the pipeline.
type ModuleReport struct {
	Name        string
	State       ModuleState
	ParseErrors int
	Checks      [2]CheckOutcomeKind // indexed by CheckPassKind
}

// Result is the outcome of one pipeline run.
type Result struct {
	Modules []ModuleReport
	// Artifact is the bytecode of the most recently compiled module;
	// empty when no module compiled. Earlier failures are skipped, not
	// retried, so this need not correspond to the last module in the set.
	Artifact       []byte
	ArtifactModule string
}
