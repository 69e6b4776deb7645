// Package flagreg holds the queryable registry of internal toolchain
// toggles. The harness owns the values of these flags, never their
// semantics: the toolchain registers them, the harness forces them before
// each iteration.
package flagreg

import (
	"sort"
	"sync"
)

// FlagKind discriminates registered flag value types.
type FlagKind uint8

const (
	// KindBool is a boolean toggle.
	KindBool FlagKind = iota
	// KindInt is a numeric limit.
	KindInt
)

func (k FlagKind) String() string {
	if k == KindInt {
		return "int"
	}
	return "bool"
}

// Flag is one {name, value} pair produced by enumeration.
type Flag struct {
	Name string
	Kind FlagKind
	Bool bool
	Int  int64
}

// Registry stores named boolean and numeric flags with snapshot-style
// enumeration instead of a pointer-chased list head.
type Registry struct {
	mu    sync.Mutex
	bools map[string]bool
	ints  map[string]int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bools: make(map[string]bool, 16),
		ints:  make(map[string]int64, 8),
	}
}

// RegisterBool adds or overwrites a boolean flag.
func (r *Registry) RegisterBool(name string, value bool) {
	r.mu.Lock()
	r.bools[name] = value
	r.mu.Unlock()
}

// RegisterInt adds or overwrites a numeric flag.
func (r *Registry) RegisterInt(name string, value int64) {
	r.mu.Lock()
	r.ints[name] = value
	r.mu.Unlock()
}

// SetBool updates an existing boolean flag; false when unknown.
func (r *Registry) SetBool(name string, value bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bools[name]; !ok {
		return false
	}
	r.bools[name] = value
	return true
}

// SetInt updates an existing numeric flag; false when unknown.
func (r *Registry) SetInt(name string, value int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ints[name]; !ok {
		return false
	}
	r.ints[name] = value
	return true
}

// Bool reads a boolean flag.
func (r *Registry) Bool(name string) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.bools[name]
	return v, ok
}

// Int reads a numeric flag.
func (r *Registry) Int(name string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ints[name]
	return v, ok
}

// Snapshot enumerates every flag sorted by name.
func (r *Registry) Snapshot() []Flag {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Flag, 0, len(r.bools)+len(r.ints))
	for name, v := range r.bools {
		out = append(out, Flag{Name: name, Kind: KindBool, Bool: v})
	}
	for name, v := range r.ints {
		out = append(out, Flag{Name: name, Kind: KindInt, Int: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered flags.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bools) + len(r.ints)
}
