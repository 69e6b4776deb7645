package guestsim

import (
	"strconv"
	"strings"
)

type opKind uint8

const (
	opPrint opKind = iota
	opLocal
	opGlobal
	opVec
	opUse
	opAlloc
	opLeak
	opLoop
	opBoom
	opICE
)

type stmt struct {
	kind opKind
	name string
	n    int
	line int
}

// program is the toy AST: a flat statement list.
type program struct {
	stmts []stmt
}

type parseIssue struct {
	line int
	msg  string
}

// scan splits source into statements and parse issues. Lines that fail to
// scan are dropped from the statement list, leaving a partial tree the
// later stages must tolerate.
func scan(source string) (*program, []parseIssue) {
	prog := &program{}
	var issues []parseIssue
	for i, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		word, rest := fields[0], fields[1:]
		lineNo := i + 1
		switch word {
		case "print":
			prog.stmts = append(prog.stmts, stmt{kind: opPrint, name: strings.Join(rest, " "), line: lineNo})
		case "local", "global", "vec", "use":
			if len(rest) != 1 {
				issues = append(issues, parseIssue{line: lineNo, msg: word + " wants exactly one name"})
				continue
			}
			kind := map[string]opKind{"local": opLocal, "global": opGlobal, "vec": opVec, "use": opUse}[word]
			prog.stmts = append(prog.stmts, stmt{kind: kind, name: rest[0], line: lineNo})
		case "alloc", "leak":
			if len(rest) != 1 {
				issues = append(issues, parseIssue{line: lineNo, msg: word + " wants a byte count"})
				continue
			}
			n, err := strconv.Atoi(rest[0])
			if err != nil || n < 0 {
				issues = append(issues, parseIssue{line: lineNo, msg: "bad byte count " + rest[0]})
				continue
			}
			kind := opAlloc
			if word == "leak" {
				kind = opLeak
			}
			prog.stmts = append(prog.stmts, stmt{kind: kind, n: n, line: lineNo})
		case "loop":
			prog.stmts = append(prog.stmts, stmt{kind: opLoop, line: lineNo})
		case "boom":
			prog.stmts = append(prog.stmts, stmt{kind: opBoom, line: lineNo})
		case "ice":
			prog.stmts = append(prog.stmts, stmt{kind: opICE, line: lineNo})
		case "err":
			issues = append(issues, parseIssue{line: lineNo, msg: strings.Join(rest, " ")})
		default:
			issues = append(issues, parseIssue{line: lineNo, msg: "unknown statement " + word})
		}
	}
	return prog, issues
}
