package govern

import "fortio.org/safecast"

// Default ceilings mirrored from the original harness constants.
const (
	// DefaultHeapCeiling bounds total tracked guest heap usage.
	DefaultHeapCeiling uint64 = 512 * 1024 * 1024
	// DefaultCollectCeiling is the usage a full collection must reclaim
	// down to; anything above it is a leak, a discovered defect.
	DefaultCollectCeiling uint64 = 256 * 1024
)

// Governor is the bounded accounting allocator. It is the only mutator of
// the process-wide usage counter, single-threaded within an iteration, and
// signals rejection through its return value, never a panic.
type Governor struct {
	used    uint64
	ceiling uint64
}

// NewGovernor creates a governor with the given ceiling; zero selects
// DefaultHeapCeiling.
func NewGovernor(ceiling uint64) *Governor {
	if ceiling == 0 {
		ceiling = DefaultHeapCeiling
	}
	return &Governor{ceiling: ceiling}
}

// Alloc implements the runtime allocator hook. A free (newSize == 0)
// releases storage and always succeeds. A grow or shrink is accepted only
// when the resulting usage stays at or under the ceiling; a rejected
// request leaves both usage and storage untouched.
func (g *Governor) Alloc(old []byte, newSize int) ([]byte, bool) {
	oldSize, err := safecast.Conv[uint64](len(old))
	if err != nil {
		return nil, false
	}

	if newSize == 0 {
		g.used -= oldSize
		return nil, true
	}

	next, err := safecast.Conv[uint64](newSize)
	if err != nil {
		return nil, false
	}
	if g.used-oldSize+next > g.ceiling {
		return nil, false
	}
	g.used -= oldSize
	g.used += next

	if next <= oldSize {
		return old[:next], true
	}
	buf := make([]byte, next)
	copy(buf, old)
	return buf, true
}

// Used returns the tracked usage.
func (g *Governor) Used() uint64 { return g.used }

// Ceiling returns the configured ceiling.
func (g *Governor) Ceiling() uint64 { return g.ceiling }

// Reset zeroes the usage counter. Only the process entry point calls this;
// within iterations the counter returns to zero as allocations are freed.
func (g *Governor) Reset() { g.used = 0 }
