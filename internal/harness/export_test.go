package harness

import "io"

// SetDebugOutput redirects the source dump so tests can capture it.
func (h *Harness) SetDebugOutput(w io.Writer) { h.debugOut = w }
