package flagreg

import "strings"

// Numeric safety limits pinned before every iteration. Without these a
// generated program can drive the analyzer itself into unbounded recursion
// or iteration, producing stack-overflow noise instead of real defects.
const (
	TypeInferRecursionLimitName    = "TypeInferRecursionLimit"
	TypeInferTypePackLoopLimitName = "TypeInferTypePackLoopLimit"
	CheckRecursionLimitName        = "CheckRecursionLimit"
	TypeInferIterationLimitName    = "TypeInferIterationLimit"
	DependencyChildLimitName       = "DependencyChildLimit"
	TableStringifierLengthName     = "TableTypeMaximumStringifierLength"

	// FreezeArenaFlagSuffix names the debug toggle that makes stray
	// mutations of frozen type arenas fail immediately instead of
	// corrupting state that crashes much later.
	FreezeArenaFlagSuffix = "FreezeArena"
)

var pinnedLimits = map[string]int64{
	TypeInferRecursionLimitName:    100,
	TypeInferTypePackLoopLimitName: 100,
	CheckRecursionLimitName:        100,
	TypeInferIterationLimitName:    1000,
	DependencyChildLimitName:       1000,
	TableStringifierLengthName:     100,
}

// Randomize prepares the registry for one iteration: every boolean flag
// carrying the toolchain's namespace prefix is forced on so guarded and
// experimental code paths run every time, the numeric safety limits are
// pinned to small constants, and the debug freeze-arena flag is enabled.
// Only values are written: a flag the toolchain never declared stays
// absent, since the registry's flag set belongs to the toolchain.
func Randomize(r *Registry, prefix string) {
	for _, f := range r.Snapshot() {
		if f.Kind == KindBool && strings.HasPrefix(f.Name, prefix) {
			r.SetBool(f.Name, true)
		}
	}
	for suffix, v := range pinnedLimits {
		r.SetInt(prefix+suffix, v)
	}
	r.SetBool("Debug"+prefix+FreezeArenaFlagSuffix, true)
}
