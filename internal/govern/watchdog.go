package govern

import (
	"time"

	"fuzzrig/internal/toolchain"
)

// DefaultInterruptTimeout bounds one top-level resume of a guest thread.
const DefaultInterruptTimeout = 10 * time.Millisecond

// TimeoutMessage is the guest-visible fault raised on deadline expiry.
const TimeoutMessage = "execution timed out"

// Watchdog enforces a wall-clock deadline on guest execution. Arm is called
// immediately before each top-level resume and never during one; the
// deadline is read-only while the guest runs.
type Watchdog struct {
	deadline time.Time
	timeout  time.Duration
	now      func() time.Time
}

// NewWatchdog creates a watchdog; a zero timeout selects the default.
func NewWatchdog(timeout time.Duration) *Watchdog {
	if timeout <= 0 {
		timeout = DefaultInterruptTimeout
	}
	return &Watchdog{timeout: timeout, now: time.Now}
}

// Arm resets the deadline to now + timeout.
func (w *Watchdog) Arm() {
	w.deadline = w.now().Add(w.timeout)
}

// Deadline returns the armed deadline.
func (w *Watchdog) Deadline() time.Time { return w.deadline }

// Interrupt is the runtime's periodic safe-point callback. Invocations from
// inside a collection cycle, or before the watchdog was ever armed, are a
// no-op by contract. Past the deadline it raises a guest-level runtime
// error through the thread's own signaling, never by failing the harness.
func (w *Watchdog) Interrupt(th toolchain.Thread, gcPhase bool) {
	if gcPhase || w.deadline.IsZero() {
		return
	}
	if w.now().After(w.deadline) {
		th.RaiseRuntimeError(TimeoutMessage)
	}
}
