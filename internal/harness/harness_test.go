package harness_test

import (
	"bytes"
	"strings"
	"testing"

	"fuzzrig/internal/guestsim"
	"fuzzrig/internal/harness"
	"fuzzrig/internal/pipeline"
	"fuzzrig/internal/report"
)

func newTestHarness(t *testing.T, cfg harness.Config) (*harness.Harness, *report.RecordingSink) {
	t.Helper()
	sink := &report.RecordingSink{}
	h, err := harness.New(cfg, guestsim.New(), sink, report.NewLogger(false))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(h.Close)
	return h, sink
}

func TestRunIteration_CleanInputRunsEveryStage(t *testing.T) {
	h, sink := newTestHarness(t, harness.DefaultConfig())

	result := h.RunIteration([]byte("print hi\nlocal a\nvec v\nalloc 64"))

	if len(result.Modules) != 1 {
		t.Fatalf("modules = %d, want 1", len(result.Modules))
	}
	mod := result.Modules[0]
	if mod.State != pipeline.StateCompiledOk {
		t.Errorf("state = %v, want %v", mod.State, pipeline.StateCompiledOk)
	}
	if mod.Checks[pipeline.CheckOrdinary] != pipeline.CheckOK {
		t.Errorf("ordinary check = %v, want ok", mod.Checks[pipeline.CheckOrdinary])
	}
	if mod.Checks[pipeline.CheckAutocomplete] != pipeline.CheckOK {
		t.Errorf("autocomplete check = %v, want ok", mod.Checks[pipeline.CheckAutocomplete])
	}
	if result.Artifact == nil {
		t.Error("expected a compiled artifact")
	}
	if len(sink.Reports) != 0 {
		t.Errorf("unexpected fatal reports: %v", sink.Reports)
	}
	if h.Iterations() != 1 {
		t.Errorf("iterations = %d, want 1", h.Iterations())
	}
}

func TestRunIteration_ParseErrorSkipsCompile(t *testing.T) {
	h, sink := newTestHarness(t, harness.DefaultConfig())

	result := h.RunIteration([]byte("err busted\nlocal a"))

	if result.Modules[0].ParseErrors != 1 {
		t.Errorf("parse errors = %d, want 1", result.Modules[0].ParseErrors)
	}
	if result.Artifact != nil {
		t.Error("module with parse errors must not produce an artifact")
	}
	// The partial tree still goes through analysis and regeneration.
	if result.Modules[0].State != pipeline.StateTranspiled {
		t.Errorf("state = %v, want %v", result.Modules[0].State, pipeline.StateTranspiled)
	}
	if len(sink.Reports) != 0 {
		t.Errorf("a bad input must never be fatal, got %v", sink.Reports)
	}
}

func TestRunIteration_AnalyzerPanicIsRecovered(t *testing.T) {
	h, sink := newTestHarness(t, harness.DefaultConfig())

	result := h.RunIteration([]byte("boom"))

	for pass, outcome := range result.Modules[0].Checks {
		if outcome != pipeline.CheckInternalError {
			t.Errorf("pass %d outcome = %v, want internal error", pass, outcome)
		}
	}
	// The module still parsed cleanly, so compilation and execution ran.
	if result.Artifact == nil {
		t.Error("expected an artifact despite the failed checks")
	}
	if len(sink.Reports) != 0 {
		t.Errorf("analyzer exceptions are recoverable, got fatal %v", sink.Reports)
	}
}

func TestRunIteration_FrontendInternalErrorIsFatal(t *testing.T) {
	h, sink := newTestHarness(t, harness.DefaultConfig())

	h.RunIteration([]byte("ice"))

	if len(sink.Reports) == 0 {
		t.Fatal("expected a fatal report from the frontend internal error")
	}
	if !strings.Contains(sink.Reports[0], "frontend") {
		t.Errorf("report %q does not name the frontend", sink.Reports[0])
	}
}

func TestRunIteration_LeakTripsOracle(t *testing.T) {
	h, sink := newTestHarness(t, harness.DefaultConfig())

	h.RunIteration([]byte("leak 524288"))

	if len(sink.Reports) == 0 {
		t.Fatal("expected the leak oracle to report")
	}
	if !strings.Contains(sink.Reports[0], "post-collection usage") {
		t.Errorf("report %q is not a leak-oracle report", sink.Reports[0])
	}
}

func TestRunIteration_TimeoutIsGuestFaultOnly(t *testing.T) {
	h, sink := newTestHarness(t, harness.DefaultConfig())

	h.RunIteration([]byte("loop"))

	if len(sink.Reports) != 0 {
		t.Errorf("a watchdog timeout must stay a guest fault, got %v", sink.Reports)
	}
}

func TestRunIteration_MultiModuleReferences(t *testing.T) {
	h, sink := newTestHarness(t, harness.DefaultConfig())

	result := h.RunIteration([]byte("global shared\n---\nuse module0\nlocal b"))

	if len(result.Modules) != 2 {
		t.Fatalf("modules = %d, want 2", len(result.Modules))
	}
	for i, mod := range result.Modules {
		if mod.Checks[pipeline.CheckOrdinary] != pipeline.CheckOK {
			t.Errorf("module %d ordinary check = %v, want ok", i, mod.Checks[pipeline.CheckOrdinary])
		}
	}
	// Later compiles overwrite the artifact, so the last clean module wins.
	if result.ArtifactModule != "module1" {
		t.Errorf("artifact module = %q, want module1", result.ArtifactModule)
	}
	if len(sink.Reports) != 0 {
		t.Errorf("unexpected fatal reports: %v", sink.Reports)
	}
}

func TestRunIteration_EnvironmentsStayFrozenAcrossIterations(t *testing.T) {
	h, sink := newTestHarness(t, harness.DefaultConfig())

	inputs := []string{
		"vec a\nvec b",
		"err broken",
		"boom",
		"local x\nuse nowhere",
		"print done",
	}
	for _, in := range inputs {
		h.RunIteration([]byte(in))
	}

	if h.Iterations() != uint64(len(inputs)) {
		t.Errorf("iterations = %d, want %d", h.Iterations(), len(inputs))
	}
	if len(sink.Reports) != 0 {
		t.Errorf("frozen environments drifted: %v", sink.Reports)
	}
}

func TestRunIteration_VMDisabledStopsAtArtifact(t *testing.T) {
	cfg := harness.DefaultConfig()
	cfg.Fuzz.VM = false
	cfg.Fuzz.Codegen = false
	h, sink := newTestHarness(t, cfg)

	result := h.RunIteration([]byte("leak 524288"))

	if result.Artifact == nil {
		t.Fatal("expected an artifact")
	}
	// Without the execution stage the leaking script never runs, so the
	// leak oracle has nothing to see.
	if len(sink.Reports) != 0 {
		t.Errorf("unexpected fatal reports: %v", sink.Reports)
	}
}

func TestRunIteration_DebugDumpsDerivedSources(t *testing.T) {
	t.Setenv(harness.DebugEnvVar, "1")
	h, _ := newTestHarness(t, harness.DefaultConfig())
	var buf bytes.Buffer
	h.SetDebugOutput(&buf)

	h.RunIteration([]byte("print hello\n---\nprint world"))

	dump := buf.String()
	if !strings.Contains(dump, "-- module0") || !strings.Contains(dump, "-- module1") {
		t.Errorf("dump missing module headers:\n%s", dump)
	}
	if !strings.Contains(dump, "print world") {
		t.Errorf("dump missing source text:\n%s", dump)
	}
}

func TestRunIteration_TimerResetsBetweenIterations(t *testing.T) {
	h, _ := newTestHarness(t, harness.DefaultConfig())
	input := []byte("print hi\nlocal a\nalloc 16")

	h.RunIteration(input)
	first := len(h.Timer().Report().Spans)
	if first == 0 {
		t.Fatal("no stage spans recorded")
	}

	for i := 0; i < 10; i++ {
		h.RunIteration(input)
	}
	if got := len(h.Timer().Report().Spans); got != first {
		t.Errorf("spans accumulated across iterations: %d after 1, %d after 11", first, got)
	}
}

func TestRunIteration_DeterministicAcrossHarnesses(t *testing.T) {
	input := []byte("local a\nvec v\nalloc 32\n---\nuse module0\nprint done")

	h1, _ := newTestHarness(t, harness.DefaultConfig())
	h2, _ := newTestHarness(t, harness.DefaultConfig())
	r1 := h1.RunIteration(input)
	r2 := h2.RunIteration(input)

	if len(r1.Modules) != len(r2.Modules) {
		t.Fatalf("module counts differ: %d vs %d", len(r1.Modules), len(r2.Modules))
	}
	for i := range r1.Modules {
		if r1.Modules[i] != r2.Modules[i] {
			t.Errorf("module %d reports differ: %+v vs %+v", i, r1.Modules[i], r2.Modules[i])
		}
	}
	if !bytes.Equal(r1.Artifact, r2.Artifact) {
		t.Error("artifacts differ for identical input")
	}
	if r1.ArtifactModule != r2.ArtifactModule {
		t.Errorf("artifact modules differ: %q vs %q", r1.ArtifactModule, r2.ArtifactModule)
	}
}

func TestLastSet_KeepsSourcesForBundling(t *testing.T) {
	h, _ := newTestHarness(t, harness.DefaultConfig())

	h.RunIteration([]byte("print a\n---\nprint b"))

	set := h.LastSet()
	if len(set) != 2 {
		t.Fatalf("last set has %d modules, want 2", len(set))
	}
	if set[1].Name != "module1" {
		t.Errorf("second module name = %q, want module1", set[1].Name)
	}
}
