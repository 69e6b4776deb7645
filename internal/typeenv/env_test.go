package typeenv

import "testing"

func TestArena_AddAndLookup(t *testing.T) {
	a := NewArena()
	id := a.Add(Node{Kind: KindNominal, Name: "Thing"})
	if id == NoTypeID {
		t.Fatalf("Add returned the invalid sentinel")
	}
	n, ok := a.Node(id)
	if !ok {
		t.Fatalf("Node(%d) not found", id)
	}
	if n.Name != "Thing" || n.Kind != KindNominal {
		t.Errorf("unexpected node %+v", n)
	}
	if _, ok := a.Node(NoTypeID); ok {
		t.Errorf("NoTypeID resolved to a node")
	}
}

func TestArena_FrozenMutationPanics(t *testing.T) {
	a := NewArena()
	id := a.Add(Node{Kind: KindTable})
	a.Freeze()

	mutations := map[string]func(){
		"Add":      func() { a.Add(Node{Kind: KindTable}) },
		"SetProps": func() { a.SetProps(id, nil) },
		"SetMeta":  func() { a.SetMeta(id, NoTypeID) },
	}
	for name, mutate := range mutations {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s on frozen arena did not panic", name)
				}
			}()
			mutate()
		}()
	}
}

func TestBuildGlobalEnv_StubTypes(t *testing.T) {
	env := BuildGlobalEnv(ScopeOrdinary, nil)
	if !env.Frozen() || !env.Arena().Frozen() {
		t.Fatalf("environment not frozen after build")
	}

	names := env.ExportedNames()
	want := []string{ExportedObjectName, ExportedValueName, ExportedDerivedName}
	if len(names) != len(want) {
		t.Fatalf("exported %d bindings, want %d", len(names), len(want))
	}
	for _, name := range want {
		id, ok := env.Exported(name)
		if !ok {
			t.Fatalf("binding %q not exported", name)
		}
		if !env.Persisted(id) {
			t.Errorf("binding %q not marked persistent", name)
		}
	}

	value, _ := env.Exported(ExportedValueName)
	valueNode := env.Arena().MustNode(value)
	if len(valueNode.Props) != 3 {
		t.Errorf("value stub has %d fields, want 3", len(valueNode.Props))
	}
	if valueNode.Meta == NoTypeID {
		t.Fatalf("value stub has no metatype")
	}
	meta := env.Arena().MustNode(valueNode.Meta)
	if meta.Kind != KindTable || len(meta.Props) != 1 || meta.Props[0].Name != "__add" {
		t.Errorf("metatype does not hold the single __add overload: %+v", meta)
	}
	op := env.Arena().MustNode(meta.Props[0].Type)
	if op.Kind != KindFunction || len(op.Params) != 2 || len(op.Results) != 1 {
		t.Fatalf("__add is not a binary function: %+v", op)
	}
	if op.Params[0] != value || op.Params[1] != value || op.Results[0] != value {
		t.Errorf("__add operands/result are not the value stub")
	}

	object, _ := env.Exported(ExportedObjectName)
	derived, _ := env.Exported(ExportedDerivedName)
	derivedNode := env.Arena().MustNode(derived)
	if derivedNode.Parent != object {
		t.Errorf("derived stub parent = %d, want %d", derivedNode.Parent, object)
	}
	if len(derivedNode.Props) != 1 || derivedNode.Props[0].Type != value {
		t.Errorf("derived stub field is not value-typed: %+v", derivedNode.Props)
	}
}

func TestEnvironment_FingerprintStable(t *testing.T) {
	env := BuildGlobalEnv(ScopeAutocomplete, nil)
	first := env.Fingerprint()
	second := env.Fingerprint()
	if first != second {
		t.Errorf("fingerprint changed between reads")
	}

	other := BuildGlobalEnv(ScopeAutocomplete, nil)
	if other.Fingerprint() != first {
		t.Errorf("identical builds produced different fingerprints")
	}
}

type countingRegistrar struct {
	calls        int
	autocomplete bool
}

func (c *countingRegistrar) RegisterBuiltins(env *Environment, forAutocomplete bool) {
	c.calls++
	c.autocomplete = forAutocomplete
	env.Export("print", env.Arena().Add(Node{Kind: KindFunction}))
}

func TestBuildGlobalEnv_RegistrarRunsFirst(t *testing.T) {
	reg := &countingRegistrar{}
	env := BuildGlobalEnv(ScopeAutocomplete, reg)
	if reg.calls != 1 {
		t.Fatalf("registrar called %d times, want 1", reg.calls)
	}
	if !reg.autocomplete {
		t.Errorf("registrar not told about the autocomplete scope")
	}
	if _, ok := env.Exported("print"); !ok {
		t.Errorf("registrar export lost")
	}
}
