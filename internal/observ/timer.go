// Package observ carries the lightweight timing instrumentation used by the
// iteration driver and the replay CLI.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Span records the duration and note of one pipeline stage.
type Span struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks stage durations within one iteration.
type Timer struct {
	spans []Span
}

// NewTimer creates an empty timer.
func NewTimer() *Timer { return &Timer{spans: make([]Span, 0, 8)} }

// Begin starts a span and returns its index.
func (t *Timer) Begin(name string) int {
	t.spans = append(t.spans, Span{Name: name, Start: time.Now()})
	return len(t.spans) - 1
}

// End finishes a span by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.spans) {
		return
	}
	s := &t.spans[idx]
	s.Dur = time.Since(s.Start)
	s.Note = note
}

// Reset drops every recorded span so the timer can serve the next iteration.
func (t *Timer) Reset() { t.spans = t.spans[:0] }

// Summary returns a human-readable rendering of all recorded spans.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, s := range report.Spans {
		fmt.Fprintf(&b, "  %-12s %7.2f ms", s.Name, s.DurationMS)
		if s.Note != "" {
			b.WriteString("  // " + s.Note)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "  %-12s %7.2f ms\n", "total", report.TotalMS)
	return b.String()
}

// SpanReport is the serialisable form of one span.
type SpanReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates recorded spans and the total duration in milliseconds.
type Report struct {
	TotalMS float64      `json:"total_ms"`
	Spans   []SpanReport `json:"spans"`
}

// Report builds the aggregate view of every recorded span.
func (t *Timer) Report() Report {
	if len(t.spans) == 0 {
		return Report{}
	}
	report := Report{Spans: make([]SpanReport, len(t.spans))}
	var total time.Duration
	for i, span := range t.spans {
		total += span.Dur
		report.Spans[i] = SpanReport{
			Name:       span.Name,
			DurationMS: durationToMillis(span.Dur),
			Note:       span.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
