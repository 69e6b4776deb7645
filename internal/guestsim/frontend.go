package guestsim

import (
	"fmt"
	"sort"
	"strings"

	"fuzzrig/internal/toolchain"
	"fuzzrig/internal/typeenv"
)

// typeRef is the simulated resolved-type handle: a TypeID in one of the
// frozen environments.
type typeRef struct {
	env *typeenv.Environment
	id  typeenv.TypeID
}

// frontend is the long-lived simulated analysis engine. Bindings are the
// iteration-scoped cache cleared before every iteration.
type frontend struct {
	ordinary     *typeenv.Environment
	autocomplete *typeenv.Environment
	src          toolchain.SourceResolver
	cfg          toolchain.ConfigResolver
	onICE        func(msg string)
	bindings     map[string]typeRef
}

func newFrontend() *frontend {
	return &frontend{bindings: make(map[string]typeRef, 8)}
}

// RegisterBuiltins exports the toy standard globals into a scope.
func (f *frontend) RegisterBuiltins(env *typeenv.Environment, _ bool) {
	printType := env.Arena().Add(typeenv.Node{
		Kind:   typeenv.KindFunction,
		Params: []typeenv.TypeID{env.Arena().Builtins().String},
	})
	env.Export("print", printType)
}

func (f *frontend) AttachEnvironments(ordinary, autocomplete *typeenv.Environment) {
	f.ordinary = ordinary
	f.autocomplete = autocomplete
}

func (f *frontend) AttachResolvers(src toolchain.SourceResolver, cfg toolchain.ConfigResolver) {
	f.src = src
	f.cfg = cfg
}

func (f *frontend) SetInternalErrorHandler(fn func(msg string)) { f.onICE = fn }

func (f *frontend) ClearCaches() { clear(f.bindings) }

// Check analyses one module: declares its globals, resolves its cross
// module references, and panics on the boom statement to model the
// analyzer's internal exceptions.
func (f *frontend) Check(module string, opts toolchain.CheckOptions) error {
	cfg := f.cfg.ConfigFor(module)
	env := f.ordinary
	if opts.ForAutocomplete {
		env = f.autocomplete
	}
	if !env.Frozen() {
		return fmt.Errorf("guestsim: %s scope used before freeze", env.Scope())
	}

	source, ok := f.src.ReadSource(module)
	if !ok {
		return fmt.Errorf("guestsim: module %q not registered", module)
	}

	prog, _ := scan(source)
	builtins := env.Arena().Builtins()
	for _, st := range prog.stmts {
		switch st.kind {
		case opBoom:
			panic("guestsim: analyzer blew an internal limit")
		case opICE:
			if f.onICE != nil {
				f.onICE("guestsim: invariant violated while checking " + module)
			}
		case opGlobal:
			if !opts.ForAutocomplete {
				f.bindings[st.name] = typeRef{env: env, id: builtins.Number}
			}
		case opVec:
			id, ok := env.Exported(typeenv.ExportedValueName)
			if !ok {
				return fmt.Errorf("guestsim: value stub missing from %s scope", env.Scope())
			}
			if !opts.ForAutocomplete {
				f.bindings[st.name] = typeRef{env: env, id: id}
			}
		case opUse:
			dep, ok := f.src.ResolveModule(toolchain.GlobalRef{Name: st.name})
			if !ok {
				continue
			}
			// Missing dependency source is an ordinary diagnostic for the
			// guest, not a harness concern.
			_, _ = f.src.ReadSource(dep)
		}
	}
	_ = cfg.Mode // mode does not change toy analysis
	return nil
}

func (f *frontend) GlobalBindings() []toolchain.Binding {
	names := make([]string, 0, len(f.bindings))
	for name := range f.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]toolchain.Binding, len(names))
	for i, name := range names {
		out[i] = toolchain.Binding{Name: name, Type: f.bindings[name]}
	}
	return out
}

// StringifyType walks the full type graph. Metatype edges make the graph
// cyclic, so revisits print the bare name instead of recursing forever.
func (f *frontend) StringifyType(t toolchain.TypeRef, opts toolchain.StringifyOptions) string {
	ref, ok := t.(typeRef)
	if !ok {
		return "<foreign>"
	}
	var b strings.Builder
	f.writeType(&b, ref.env, ref.id, opts, make(map[typeenv.TypeID]bool))
	return b.String()
}

func (f *frontend) writeType(b *strings.Builder, env *typeenv.Environment, id typeenv.TypeID, opts toolchain.StringifyOptions, seen map[typeenv.TypeID]bool) {
	node, ok := env.Arena().Node(id)
	if !ok {
		b.WriteString("<invalid>")
		return
	}
	switch node.Kind {
	case typeenv.KindNumber, typeenv.KindString:
		b.WriteString(node.Kind.String())
	case typeenv.KindNominal:
		b.WriteString(node.Name)
		if seen[id] || !opts.Exhaustive {
			return
		}
		seen[id] = true
		b.WriteString("{")
		for i, p := range node.Props {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name + ": ")
			f.writeType(b, env, p.Type, opts, seen)
		}
		b.WriteString("}")
		if node.Meta != typeenv.NoTypeID {
			b.WriteString(" meta ")
			f.writeType(b, env, node.Meta, opts, seen)
		}
		if node.Parent != typeenv.NoTypeID {
			b.WriteString(" : ")
			f.writeType(b, env, node.Parent, opts, seen)
		}
	case typeenv.KindTable:
		if seen[id] {
			b.WriteString("{...}")
			return
		}
		seen[id] = true
		b.WriteString("{")
		for i, p := range node.Props {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name + ": ")
			f.writeType(b, env, p.Type, opts, seen)
		}
		b.WriteString("}")
	case typeenv.KindFunction:
		if seen[id] {
			b.WriteString("fn")
			return
		}
		seen[id] = true
		b.WriteString("fn(")
		for i, p := range node.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			f.writeType(b, env, p, opts, seen)
		}
		b.WriteString(")")
		for i, r := range node.Results {
			if i == 0 {
				b.WriteString(" -> ")
			} else {
				b.WriteString(", ")
			}
			f.writeType(b, env, r, opts, seen)
		}
	default:
		b.WriteString("<invalid>")
	}
}
