package observ

import (
	"strings"
	"testing"
)

func TestTimer_BeginEndReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("parse")
	tm.End(idx, "3 modules")

	report := tm.Report()
	if len(report.Spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(report.Spans))
	}
	if report.Spans[0].Name != "parse" || report.Spans[0].Note != "3 modules" {
		t.Errorf("unexpected span %+v", report.Spans[0])
	}
	if report.Spans[0].DurationMS < 0 {
		t.Errorf("negative duration")
	}
}

func TestTimer_EndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(-1, "")
	tm.End(5, "")
	if got := len(tm.Report().Spans); got != 0 {
		t.Errorf("spans = %d after out-of-range End", got)
	}
}

func TestTimer_ResetDropsSpans(t *testing.T) {
	tm := NewTimer()
	tm.End(tm.Begin("compile"), "")
	tm.Reset()
	if got := len(tm.Report().Spans); got != 0 {
		t.Errorf("spans survived Reset: %d", got)
	}
}

func TestTimer_Summary(t *testing.T) {
	tm := NewTimer()
	tm.End(tm.Begin("check"), "2 passes")
	out := tm.Summary()
	if !strings.Contains(out, "check") || !strings.Contains(out, "2 passes") || !strings.Contains(out, "total") {
		t.Errorf("summary missing fields:\n%s", out)
	}
}
