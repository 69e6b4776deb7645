package typeenv

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

// Scope selects which analysis pass an environment serves.
type Scope uint8

const (
	// ScopeOrdinary serves the regular strict/non-strict analysis pass.
	ScopeOrdinary Scope = iota
	// ScopeAutocomplete serves the forced-autocomplete analysis pass.
	ScopeAutocomplete
)

func (s Scope) String() string {
	switch s {
	case ScopeAutocomplete:
		return "autocomplete"
	default:
		return "ordinary"
	}
}

// Environment is one global scope shared read-only across iterations: a type
// arena plus the exported-type bindings visible to guest programs.
type Environment struct {
	scope    Scope
	arena    *Arena
	exported map[string]TypeID
	persist  map[TypeID]bool
	frozen   bool
}

// NewEnvironment creates an unfrozen environment with a fresh seeded arena.
func NewEnvironment(scope Scope) *Environment {
	return &Environment{
		scope:    scope,
		arena:    NewArena(),
		exported: make(map[string]TypeID, 4),
		persist:  make(map[TypeID]bool, 4),
	}
}

// Scope returns the pass this environment serves.
func (e *Environment) Scope() Scope { return e.scope }

// Arena returns the environment's type arena.
func (e *Environment) Arena() *Arena { return e.arena }

// Export publishes a type binding under a fixed name. Panics when frozen.
func (e *Environment) Export(name string, id TypeID) {
	if e.frozen {
		panic("typeenv: Export on frozen environment")
	}
	e.exported[name] = id
}

// Exported returns the binding for name.
func (e *Environment) Exported(name string) (TypeID, bool) {
	id, ok := e.exported[name]
	return id, ok
}

// ExportedNames returns the exported binding names in sorted order.
func (e *Environment) ExportedNames() []string {
	names := make([]string, 0, len(e.exported))
	for name := range e.exported {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Persist marks a binding as long-lived and non-collectible. Panics when
// frozen.
func (e *Environment) Persist(id TypeID) {
	if e.frozen {
		panic("typeenv: Persist on frozen environment")
	}
	e.persist[id] = true
}

// Persisted reports whether id was marked long-lived.
func (e *Environment) Persisted(id TypeID) bool { return e.persist[id] }

// Freeze freezes the environment and its arena. Mutations afterwards panic.
func (e *Environment) Freeze() {
	e.arena.Freeze()
	e.frozen = true
}

// Frozen reports whether Freeze was called.
func (e *Environment) Frozen() bool { return e.frozen }

// Fingerprint hashes every node and exported binding into a stable digest.
// Iteration code asserts the digest is identical before and after a run.
func (e *Environment) Fingerprint() [32]byte {
	h := sha256.New()
	var scratch [8]byte
	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(scratch[:4], v)
		h.Write(scratch[:4])
	}
	for i := 1; i < e.arena.Len(); i++ {
		n := e.arena.MustNode(TypeID(i)) // #nosec G115 -- bounded by Len
		h.Write([]byte{byte(n.Kind)})
		h.Write([]byte(n.Name))
		writeU32(uint32(n.Parent))
		writeU32(uint32(n.Meta))
		for _, p := range n.Props {
			h.Write([]byte(p.Name))
			writeU32(uint32(p.Type))
		}
		for _, p := range n.Params {
			writeU32(uint32(p))
		}
		for _, r := range n.Results {
			writeU32(uint32(r))
		}
	}
	for _, name := range e.ExportedNames() {
		h.Write([]byte(name))
		writeU32(uint32(e.exported[name]))
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
