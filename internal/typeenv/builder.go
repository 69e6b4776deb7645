package typeenv

// Exported names of the stub host types. Fixed across the process lifetime so
// generated programs can reference them by name.
const (
	ExportedValueName   = "Vec3"
	ExportedObjectName  = "Node"
	ExportedDerivedName = "Sprite"
)

// BuiltinRegistrar registers the toolchain's standard built-in globals into
// an environment. The long-lived frontend satisfies this.
type BuiltinRegistrar interface {
	RegisterBuiltins(env *Environment, forAutocomplete bool)
}

// BuildGlobalEnv constructs, populates and freezes one global environment.
// Called exactly once per process for each scope, before any iteration.
//
// The stub types mimic a production embedding: a value type with an operator
// overload on its metatype, an object type, and a derived object holding a
// value-typed field. Together they cover the analyzer's class, table and
// metatype paths without re-deriving them from generated code.
func BuildGlobalEnv(scope Scope, reg BuiltinRegistrar) *Environment {
	env := NewEnvironment(scope)
	if reg != nil {
		reg.RegisterBuiltins(env, scope == ScopeAutocomplete)
	}

	arena := env.Arena()
	builtins := arena.Builtins()

	// Value stub: three numeric fields, operator overload on the metatype.
	valueMeta := arena.Add(Node{Kind: KindTable})
	value := arena.Add(Node{Kind: KindNominal, Name: ExportedValueName, Meta: valueMeta})
	arena.SetProps(value, []Prop{
		{Name: "X", Type: builtins.Number},
		{Name: "Y", Type: builtins.Number},
		{Name: "Z", Type: builtins.Number},
	})
	addOp := arena.Add(Node{
		Kind:    KindFunction,
		Params:  []TypeID{value, value},
		Results: []TypeID{value},
	})
	arena.SetProps(valueMeta, []Prop{{Name: "__add", Type: addOp}})

	// Object stub: single string field, no parent.
	object := arena.Add(Node{Kind: KindNominal, Name: ExportedObjectName})
	arena.SetProps(object, []Prop{{Name: "Name", Type: builtins.String}})

	// Derived object stub: inherits the object, adds a value-typed field.
	derived := arena.Add(Node{Kind: KindNominal, Name: ExportedDerivedName, Parent: object})
	arena.SetProps(derived, []Prop{{Name: "Position", Type: value}})

	env.Export(ExportedValueName, value)
	env.Export(ExportedObjectName, object)
	env.Export(ExportedDerivedName, derived)

	for _, name := range env.ExportedNames() {
		id, _ := env.Exported(name)
		env.Persist(id)
	}

	env.Freeze()
	return env
}
