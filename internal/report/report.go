// Package report models the harness failure policy: what is swallowed,
// what is surfaced to the guest, and what must terminate the process.
//
// # Purpose
//
//   - Tier classifies every failure the harness can observe.
//   - FatalSink is the single escape hatch for tier-3 failures: internal
//     consistency errors, broken invariants, leak-oracle violations. The
//     production sink terminates the process; tests substitute a recorder.
//   - NewLogger builds the zerolog logger used by the harness and CLI,
//     silent unless verbosity is requested.
//
// # Scope
//
// Recovered stage outcomes (tier 1) and guest-visible faults (tier 2) are
// represented where they occur, as outcome values and guest errors; this
// package only names their tiers and owns the fatal path.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Tier is the failure-isolation class of an observed failure.
type Tier uint8

const (
	// TierRecovered covers parse errors, compile limit violations and
	// analyzer internal exceptions: caught at the stage boundary, never
	// counted as discovered defects.
	TierRecovered Tier = iota
	// TierGuestFault covers allocator rejections and watchdog timeouts:
	// translated into guest-visible runtime faults.
	TierGuestFault
	// TierFatal covers internal-consistency violations and broken
	// invariants: the defects this harness exists to surface. Never
	// recovered; the process terminates.
	TierFatal
)

func (t Tier) String() string {
	switch t {
	case TierGuestFault:
		return "guest-fault"
	case TierFatal:
		return "fatal"
	default:
		return "recovered"
	}
}

// FatalSink receives tier-3 failures. Implementations must not swallow
// them: the production sink exits, the test sink records for assertions.
type FatalSink interface {
	Fatal(component, msg string)
}

var fatalBanner = color.New(color.FgRed, color.Bold)

// ExitSink is the production fatal sink: a diagnostic banner naming the
// failure, then immediate process termination.
type ExitSink struct {
	Out io.Writer // defaults to stderr
}

// Fatal prints the diagnostic and exits with a non-zero status.
func (s ExitSink) Fatal(component, msg string) {
	out := s.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "%s [%s] %s\n", fatalBanner.Sprint("FATAL"), component, msg)
	os.Exit(1)
}

// RecordingSink captures fatal reports for tests.
type RecordingSink struct {
	Reports []string
}

// Fatal records the report and returns, letting the test observe it.
func (s *RecordingSink) Fatal(component, msg string) {
	s.Reports = append(s.Reports, component+": "+msg)
}

// NewLogger builds the harness logger: a console writer on stderr, disabled
// entirely unless verbose is set. The harness stays silent in normal
// operation until a tier-3 failure terminates the process.
func NewLogger(verbose bool) zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	return zerolog.New(writer).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
