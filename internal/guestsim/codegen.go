package guestsim

import (
	"fmt"
	"strings"

	"fuzzrig/internal/toolchain"
)

// codeGen is the pretend native backend. It lowers the op list to a fixed
// pseudo-assembly per target; "natively compiled" execution is the same
// interpretation with a marker bit set, which keeps the interpreted and
// compiled traces trivially comparable.
type codeGen struct {
	supported bool
	enabled   map[toolchain.Runtime]bool
}

func newCodeGen(supported bool) *codeGen {
	return &codeGen{supported: supported, enabled: make(map[toolchain.Runtime]bool, 2)}
}

func (c *codeGen) Supported() bool { return c.supported }

func (c *codeGen) Enable(rt toolchain.Runtime) { c.enabled[rt] = true }

func (c *codeGen) NativeCompile(th toolchain.Thread) error {
	t, ok := th.(*thread)
	if !ok {
		return fmt.Errorf("guestsim: foreign thread handed to codegen")
	}
	if !t.loaded {
		return fmt.Errorf("guestsim: native compile before load")
	}
	t.native = true
	return nil
}

func (c *codeGen) EmitAssembly(th toolchain.Thread, opts toolchain.AsmOptions) ([]byte, error) {
	t, ok := th.(*thread)
	if !ok {
		return nil, fmt.Errorf("guestsim: foreign thread handed to codegen")
	}
	if !t.loaded {
		return nil, fmt.Errorf("guestsim: assembly emission before load")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "; target %s\n", opts.Target)
	for _, op := range t.ops {
		switch op.kind {
		case opAlloc, opLeak:
			fmt.Fprintf(&b, "  call rt_alloc, %d\n", op.n)
		case opLoop:
			b.WriteString("  b .self\n")
		default:
			b.WriteString("  nop\n")
		}
	}
	out := []byte(b.String())
	if opts.OutputBinary {
		// Binary output is the same listing tagged with a header byte.
		out = append([]byte{0x7F}, out...)
	}
	return out, nil
}
