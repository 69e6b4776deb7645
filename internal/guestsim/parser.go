package guestsim

import "fuzzrig/internal/toolchain"

// parser produces one unit per module text.
type parser struct{}

type unit struct {
	root     *program
	errors   []toolchain.ParseError
	released bool
}

func (p parser) Parse(source string, _ toolchain.ParseOptions) toolchain.Unit {
	prog, issues := scan(source)
	u := &unit{}
	if source != "" {
		u.root = prog
	}
	for _, is := range issues {
		u.errors = append(u.errors, toolchain.ParseError{Line: is.line, Message: is.msg})
	}
	return u
}

func (u *unit) Root() toolchain.AST {
	if u.root == nil {
		return nil
	}
	return u.root
}

func (u *unit) Errors() []toolchain.ParseError { return u.errors }

// Release drops the unit's tree. Later use of the unit is a bug in the
// caller and panics, standing in for a use-after-free.
func (u *unit) Release() {
	u.released = true
	u.root = nil
}

func (u *unit) mustProgram() *program {
	if u.released {
		panic("guestsim: unit used after Release")
	}
	if u.root == nil {
		return &program{}
	}
	return u.root
}
