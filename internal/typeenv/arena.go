package typeenv

import (
	"fmt"

	"fortio.org/safecast"
)

// TypeID addresses a node inside an Arena. Zero is the invalid sentinel.
type TypeID uint32

// NoTypeID is the invalid TypeID sentinel.
const NoTypeID TypeID = 0

// Kind discriminates arena node shapes.
type Kind uint8

const (
	// KindInvalid is the reserved zero kind.
	KindInvalid Kind = iota
	// KindNumber is the builtin numeric primitive.
	KindNumber
	// KindString is the builtin string primitive.
	KindString
	// KindNominal is a named host type, optionally with a parent and metatype.
	KindNominal
	// KindTable is a table-shaped type holding named properties.
	KindTable
	// KindFunction is a function type with parameter and result lists.
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindNominal:
		return "nominal"
	case KindTable:
		return "table"
	case KindFunction:
		return "function"
	default:
		return "invalid"
	}
}

// Prop is a named property of a nominal or table node.
type Prop struct {
	Name string
	Type TypeID
}

// Node is one type stored in an Arena. Unused fields stay zero.
type Node struct {
	Kind    Kind
	Name    string   // nominal name
	Parent  TypeID   // nominal inheritance, NoTypeID when absent
	Meta    TypeID   // attached metatype, NoTypeID when absent
	Props   []Prop   // nominal/table properties
	Params  []TypeID // function parameters
	Results []TypeID // function results
}

// Builtins stores TypeIDs for the primitives every arena is seeded with.
type Builtins struct {
	Number TypeID
	String TypeID
}

// Arena is an append-only store of type nodes. After Freeze, every mutating
// entry point panics: iteration-scoped work must never touch shared global
// type state.
type Arena struct {
	nodes    []Node
	builtins Builtins
	frozen   bool
}

// NewArena constructs an arena seeded with the builtin primitives.
func NewArena() *Arena {
	a := &Arena{nodes: make([]Node, 1, 16)} // reserve 0 as invalid sentinel
	a.builtins.Number = a.Add(Node{Kind: KindNumber})
	a.builtins.String = a.Add(Node{Kind: KindString})
	return a
}

// Builtins returns TypeIDs for the seeded primitives.
func (a *Arena) Builtins() Builtins { return a.builtins }

// Add appends a node and returns its TypeID. Panics when frozen.
func (a *Arena) Add(n Node) TypeID {
	a.mustMutable("Add")
	lenNodes, err := safecast.Conv[uint32](len(a.nodes))
	if err != nil {
		panic(fmt.Errorf("typeenv: len(nodes) overflow: %w", err))
	}
	id := TypeID(lenNodes)
	a.nodes = append(a.nodes, n)
	return id
}

// SetProps replaces the property list of an existing node. Panics when frozen
// or when id is invalid.
func (a *Arena) SetProps(id TypeID, props []Prop) {
	a.mustMutable("SetProps")
	a.nodes[a.mustIndex(id)].Props = props
}

// SetMeta attaches a metatype to an existing nominal node. Panics when frozen
// or when id is invalid.
func (a *Arena) SetMeta(id, meta TypeID) {
	a.mustMutable("SetMeta")
	a.nodes[a.mustIndex(id)].Meta = meta
}

// Node returns the node for id.
func (a *Arena) Node(id TypeID) (Node, bool) {
	if id == NoTypeID || int(id) >= len(a.nodes) {
		return Node{}, false
	}
	return a.nodes[id], true
}

// MustNode panics when id is invalid.
func (a *Arena) MustNode(id TypeID) Node {
	n, ok := a.Node(id)
	if !ok {
		panic("typeenv: invalid TypeID")
	}
	return n
}

// Len returns the number of stored nodes, sentinel included.
func (a *Arena) Len() int { return len(a.nodes) }

// Freeze permanently forbids mutation.
func (a *Arena) Freeze() { a.frozen = true }

// Frozen reports whether the arena has been frozen.
func (a *Arena) Frozen() bool { return a.frozen }

func (a *Arena) mustMutable(op string) {
	if a.frozen {
		panic("typeenv: " + op + " on frozen arena")
	}
}

func (a *Arena) mustIndex(id TypeID) int {
	if id == NoTypeID || int(id) >= len(a.nodes) {
		panic("typeenv: invalid TypeID")
	}
	return int(id)
}
