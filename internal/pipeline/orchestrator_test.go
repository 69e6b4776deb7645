package pipeline_test

import (
	"strings"
	"testing"

	"fuzzrig/internal/guestsim"
	"fuzzrig/internal/pipeline"
	"fuzzrig/internal/toolchain"
	"fuzzrig/internal/typeenv"
)

// newRig wires a simulated toolchain the way the harness does, returning
// the orchestrator and the resolver backing the frontend.
func newRig(t *testing.T) (*pipeline.Orchestrator, *toolchain.Toolchain, *toolchain.FuzzSourceResolver) {
	t.Helper()
	tc := guestsim.New()
	ord := typeenv.BuildGlobalEnv(typeenv.ScopeOrdinary, tc.Frontend)
	auto := typeenv.BuildGlobalEnv(typeenv.ScopeAutocomplete, tc.Frontend)
	tc.Frontend.AttachEnvironments(ord, auto)
	res := toolchain.NewFuzzSourceResolver()
	tc.Frontend.AttachResolvers(res, toolchain.NewFuzzConfigResolver())
	return pipeline.NewOrchestrator(tc, nil, nil), tc, res
}

func registerSet(res *toolchain.FuzzSourceResolver, set toolchain.ModuleSet) {
	res.Reset()
	for _, mod := range set {
		res.AddSource(mod.Name, mod.Source)
	}
}

var allStages = pipeline.Options{Typecheck: true, Lint: true, Transpile: true, Compile: true}

func TestRun_CleanSetCompilesLastModule(t *testing.T) {
	orch, _, res := newRig(t)
	set := toolchain.ModuleSet{
		{Name: "module0", Source: "global a\nprint one"},
		{Name: "module1", Source: "local x\nprint two"},
	}
	registerSet(res, set)

	result := orch.Run(set, allStages)
	if len(result.Modules) != 2 {
		t.Fatalf("reports = %d", len(result.Modules))
	}
	for _, m := range result.Modules {
		if m.State != pipeline.StateCompiledOk {
			t.Errorf("%s state = %v, want compiled-ok", m.Name, m.State)
		}
		for pass, outcome := range m.Checks {
			if outcome != pipeline.CheckOK {
				t.Errorf("%s pass %d outcome = %v", m.Name, pass, outcome)
			}
		}
	}
	if result.ArtifactModule != "module1" {
		t.Errorf("artifact from %q, want module1", result.ArtifactModule)
	}
	if len(result.Artifact) == 0 {
		t.Errorf("compiled artifact empty")
	}
}

func TestRun_ParseErrorSkipsCompileNotLaterStages(t *testing.T) {
	orch, _, res := newRig(t)
	set := toolchain.ModuleSet{
		{Name: "module0", Source: "err busted\nprint alive"},
		{Name: "module1", Source: "print fine"},
	}
	registerSet(res, set)

	result := orch.Run(set, allStages)

	// The broken module still went through check and transpile on its
	// partial tree, but never reached compile.
	if result.Modules[0].State != pipeline.StateTranspiled {
		t.Errorf("module0 state = %v, want transpiled", result.Modules[0].State)
	}
	if result.Modules[0].ParseErrors != 1 {
		t.Errorf("module0 parse errors = %d", result.Modules[0].ParseErrors)
	}
	if result.Modules[1].State != pipeline.StateCompiledOk {
		t.Errorf("module1 state = %v", result.Modules[1].State)
	}
	if result.ArtifactModule != "module1" {
		t.Errorf("artifact from %q", result.ArtifactModule)
	}
}

func TestRun_RegisterLimitIsRecoverable(t *testing.T) {
	orch, _, res := newRig(t)
	var over strings.Builder
	for i := 0; i <= guestsim.RegisterLimit; i++ {
		over.WriteString("local v\n")
	}
	set := toolchain.ModuleSet{
		{Name: "module0", Source: over.String()},
		{Name: "module1", Source: "print after"},
	}
	registerSet(res, set)

	result := orch.Run(set, allStages)
	if result.Modules[0].State != pipeline.StateCompileFailed {
		t.Errorf("over-limit module state = %v, want compile-failed", result.Modules[0].State)
	}
	// The pipeline proceeded to the next module in the set.
	if result.Modules[1].State != pipeline.StateCompiledOk {
		t.Errorf("subsequent module state = %v", result.Modules[1].State)
	}
	if result.ArtifactModule != "module1" {
		t.Errorf("artifact from %q", result.ArtifactModule)
	}
}

func TestRun_EarlierArtifactSurvivesLaterFailure(t *testing.T) {
	orch, _, res := newRig(t)
	var over strings.Builder
	for i := 0; i <= guestsim.RegisterLimit; i++ {
		over.WriteString("local v\n")
	}
	set := toolchain.ModuleSet{
		{Name: "module0", Source: "print early"},
		{Name: "module1", Source: over.String()},
	}
	registerSet(res, set)

	result := orch.Run(set, allStages)
	if result.ArtifactModule != "module0" {
		t.Errorf("artifact from %q, want the earlier success", result.ArtifactModule)
	}
	if len(result.Artifact) == 0 {
		t.Errorf("artifact lost when a later module failed")
	}
}

func TestRun_AnalyzerPanicIsSuppressedPerPass(t *testing.T) {
	orch, _, res := newRig(t)
	set := toolchain.ModuleSet{
		{Name: "module0", Source: "boom"},
		{Name: "module1", Source: "print ok"},
	}
	registerSet(res, set)

	result := orch.Run(set, allStages)
	for pass, outcome := range result.Modules[0].Checks {
		if outcome != pipeline.CheckInternalError {
			t.Errorf("boom pass %d outcome = %v, want internal-error", pass, outcome)
		}
	}
	for pass, outcome := range result.Modules[1].Checks {
		if outcome != pipeline.CheckOK {
			t.Errorf("clean pass %d outcome = %v", pass, outcome)
		}
	}
	// boom is harmless at runtime; the set still compiles.
	if result.ArtifactModule != "module1" {
		t.Errorf("artifact from %q", result.ArtifactModule)
	}
}

func TestRun_CrossModuleResolution(t *testing.T) {
	orch, _, res := newRig(t)
	set := toolchain.ModuleSet{
		{Name: "module0", Source: "global shared"},
		{Name: "module1", Source: "use module0"},
	}
	registerSet(res, set)

	orch.Run(set, allStages)

	for _, name := range res.Queried() {
		if name != "module0" && name != "module1" {
			t.Errorf("resolver asked for unregistered name %q", name)
		}
	}
}

type eventRecorder struct {
	events []pipeline.Event
}

func (r *eventRecorder) OnEvent(evt pipeline.Event) { r.events = append(r.events, evt) }

func TestRun_EmitsStageEventsInSetOrder(t *testing.T) {
	rec := &eventRecorder{}
	tc := guestsim.New()
	ord := typeenv.BuildGlobalEnv(typeenv.ScopeOrdinary, tc.Frontend)
	auto := typeenv.BuildGlobalEnv(typeenv.ScopeAutocomplete, tc.Frontend)
	tc.Frontend.AttachEnvironments(ord, auto)
	res := toolchain.NewFuzzSourceResolver()
	tc.Frontend.AttachResolvers(res, toolchain.NewFuzzConfigResolver())
	orch := pipeline.NewOrchestrator(tc, rec, nil)

	set := toolchain.ModuleSet{
		{Name: "module0", Source: "print a"},
		{Name: "module1", Source: "print b"},
	}
	registerSet(res, set)
	orch.Run(set, allStages)

	var parseOrder []string
	for _, evt := range rec.events {
		if evt.Stage == pipeline.StageParse {
			parseOrder = append(parseOrder, evt.Module)
		}
	}
	if len(parseOrder) != 2 || parseOrder[0] != "module0" || parseOrder[1] != "module1" {
		t.Errorf("parse events out of order: %v", parseOrder)
	}
}

func TestRun_DeterministicAcrossRuns(t *testing.T) {
	orch, _, res := newRig(t)
	set := toolchain.ModuleSet{
		{Name: "module0", Source: "global g\nlocal a"},
		{Name: "module1", Source: "use module0\nerr oops"},
	}

	registerSet(res, set)
	first := orch.Run(set, allStages)
	registerSet(res, set)
	second := orch.Run(set, allStages)

	for i := range first.Modules {
		if first.Modules[i] != second.Modules[i] {
			t.Errorf("module %d outcome differs across identical runs", i)
		}
	}
	if string(first.Artifact) != string(second.Artifact) {
		t.Errorf("artifacts differ across identical runs")
	}
}
