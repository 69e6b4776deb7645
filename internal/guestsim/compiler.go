package guestsim

import (
	"fmt"
	"strconv"
	"strings"

	"fuzzrig/internal/toolchain"
)

// RegisterLimit caps local declarations per module, standing in for the
// real compiler's fixed register file.
const RegisterLimit = 200

// bytecodeMagic tags artifacts produced by this compiler.
const bytecodeMagic = 0xFB

// transpiler regenerates source with inferred-type annotations.
type transpiler struct{}

func (transpiler) TranspileWithTypes(root toolchain.AST) (string, error) {
	prog, ok := root.(*program)
	if !ok {
		return "", fmt.Errorf("guestsim: foreign tree handed to transpiler")
	}
	var b strings.Builder
	for _, st := range prog.stmts {
		switch st.kind {
		case opPrint:
			fmt.Fprintf(&b, "print %s\n", st.name)
		case opLocal:
			fmt.Fprintf(&b, "local %s # : number\n", st.name)
		case opGlobal:
			fmt.Fprintf(&b, "global %s # : number\n", st.name)
		case opVec:
			fmt.Fprintf(&b, "vec %s # : Vec3\n", st.name)
		case opUse:
			fmt.Fprintf(&b, "use %s\n", st.name)
		case opAlloc:
			fmt.Fprintf(&b, "alloc %d\n", st.n)
		case opLeak:
			fmt.Fprintf(&b, "leak %d\n", st.n)
		case opLoop:
			b.WriteString("loop\n")
		case opBoom:
			b.WriteString("boom\n")
		case opICE:
			b.WriteString("ice\n")
		}
	}
	return b.String(), nil
}

// compiler lowers a cleanly parsed unit to bytecode. The only recoverable
// failure is the register-limit violation; everything else panics.
type compiler struct{}

func (compiler) Compile(u toolchain.Unit) toolchain.CompileOutcome {
	su, ok := u.(*unit)
	if !ok {
		panic("guestsim: foreign unit handed to compiler")
	}
	prog := su.mustProgram()

	locals := 0
	var lines []string
	for _, st := range prog.stmts {
		if st.kind == opLocal {
			locals++
		}
		lines = append(lines, encodeOp(st))
	}
	if locals > RegisterLimit {
		return toolchain.CompileOutcome{
			Kind: toolchain.CompileLimitExceeded,
			Err:  fmt.Errorf("guestsim: %d locals exceed the register limit of %d", locals, RegisterLimit),
		}
	}

	bytecode := append([]byte{bytecodeMagic}, []byte(strings.Join(lines, "\n"))...)
	return toolchain.CompileOutcome{Kind: toolchain.CompiledOk, Bytecode: bytecode}
}

func encodeOp(st stmt) string {
	switch st.kind {
	case opAlloc:
		return "A" + strconv.Itoa(st.n)
	case opLeak:
		return "K" + strconv.Itoa(st.n)
	case opLoop:
		return "L"
	default:
		return "N" // ops with no runtime effect
	}
}

// decodeOps rebuilds the runtime op list from a bytecode buffer.
func decodeOps(bytecode []byte) ([]stmt, bool) {
	if len(bytecode) == 0 || bytecode[0] != bytecodeMagic {
		return nil, false
	}
	body := string(bytecode[1:])
	if body == "" {
		return nil, true
	}
	var ops []stmt
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			continue
		}
		switch line[0] {
		case 'A', 'K':
			n, err := strconv.Atoi(line[1:])
			if err != nil {
				return nil, false
			}
			kind := opAlloc
			if line[0] == 'K' {
				kind = opLeak
			}
			ops = append(ops, stmt{kind: kind, n: n})
		case 'L':
			ops = append(ops, stmt{kind: opLoop})
		case 'N':
			ops = append(ops, stmt{kind: opPrint})
		default:
			return nil, false
		}
	}
	return ops, true
}
