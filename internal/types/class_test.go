package types

import (
	"errors"
	"fmt"
	"testing"

	"keel/internal/location"
)

func TestFieldLimit(t *testing.T) {
	db := New()
	cls := newClass(db, "A")
	for i := range FieldsLimit {
		cls.NewField(db, fmt.Sprintf("f%d", i), i, Int(), VisibilityPublic, 0, location.Location{})
	}

	v := expectPanic(t, func() {
		cls.NewField(db, "extra", FieldsLimit, Int(), VisibilityPublic, 0, location.Location{})
	})
	err, ok := v.(error)
	if !ok || !errors.Is(err, ErrCapacity) {
		t.Fatalf("unexpected panic value %v", v)
	}
	if cls.NumberOfFields(db) != FieldsLimit {
		t.Fatalf("class has %d fields", cls.NumberOfFields(db))
	}
}

func TestTraitRequirementInheritance(t *testing.T) {
	db := New()
	a := newTrait(db, "A")
	ap := a.NewTypeParameter(db, "P1")
	b := newTrait(db, "B")
	bp := b.NewTypeParameter(db, "P2")
	c := newTrait(db, "C")
	c.NewTypeParameter(db, "P3")

	aArgs := NewTypeArguments()
	aArgs.Assign(ap, AnyOf(param(bp)))
	b.AddRequiredTrait(db, GenericTrait(db, a, aArgs))

	bArgs := NewTypeArguments()
	bArgs.Assign(bp, Int())
	c.AddRequiredTrait(db, GenericTrait(db, b, bArgs))

	inherited := c.InheritedTypeArguments(db)
	if got, ok := inherited.Get(ap); !ok || got != AnyOf(param(bp)) {
		t.Fatalf("P1 is %s", Format(db, got))
	}
	if got, ok := inherited.GetRecursive(db, ap); !ok || got != Int() {
		t.Fatalf("P1 resolves to %s", Format(db, got))
	}
	if len(c.RequiredTraits(db)) != 1 {
		t.Fatalf("expected one required trait")
	}
}

func TestTraitMethodLookupOrder(t *testing.T) {
	db := New()
	parent := newTrait(db, "Parent")
	child := newTrait(db, "Child")
	child.AddRequiredTrait(db, NewTraitInstance(parent))

	inherited := newMethod(db, "inherited", MethodInstance)
	parent.AddDefaultMethod(db, "inherited", inherited)
	required := newMethod(db, "required", MethodInstance)
	child.AddRequiredMethod(db, "required", required)

	if m, ok := child.Method(db, "inherited"); !ok || m != inherited {
		t.Fatalf("inherited default method not found")
	}
	if m, ok := child.Method(db, "required"); !ok || m != required {
		t.Fatalf("required method not found")
	}
}

func TestClassMethodFallsBackToTraitDefaults(t *testing.T) {
	db := New()
	base := newTrait(db, "Base")
	sub := newTrait(db, "Sub")
	sub.AddRequiredTrait(db, NewTraitInstance(base))
	// A cycle must not make the lookup loop.
	base.AddRequiredTrait(db, NewTraitInstance(sub))

	def := newMethod(db, "describe", MethodInstance)
	base.AddDefaultMethod(db, "describe", def)

	cls := newClass(db, "A")
	cls.AddTraitImplementation(db, TraitImplementation{Instance: NewTraitInstance(sub)})

	if m, ok := cls.Method(db, "describe"); !ok || m != def {
		t.Fatalf("default method not found through required traits")
	}

	own := newMethod(db, "describe", MethodInstance)
	cls.AddMethod(db, "describe", own)
	if m, _ := cls.Method(db, "describe"); m != own {
		t.Fatalf("class method doesn't take precedence")
	}
	if _, ok := cls.Method(db, "missing"); ok {
		t.Fatalf("missing method found")
	}
	if by := sub.ImplementedBy(db); len(by) != 1 || by[0] != cls {
		t.Fatalf("implementor not recorded: %v", by)
	}
}

func TestLookupMethod(t *testing.T) {
	db := New()
	foo := newModule(db, "foo")
	bla := newModule(db, "bla")
	cls := db.AllocClass("A", ClassKindRegular, VisibilityPublic, foo, location.Location{})

	add := func(name string, vis Visibility, kind MethodKind) MethodID {
		m := db.AllocMethod(foo, location.Location{}, name, vis, kind)
		cls.AddMethod(db, name, m)
		return m
	}
	add("public", VisibilityPublic, MethodInstance)
	add("private", VisibilityPrivate, MethodInstance)
	add("hidden", VisibilityTypePrivate, MethodInstance)
	add("new", VisibilityPublic, MethodStatic)
	drop := add("$drop", VisibilityPublic, MethodDestructor)

	ins := instance(cls)
	static := ClassType(cls)

	tests := []struct {
		name     string
		typ      TypeID
		method   string
		from     ModuleID
		typePriv bool
		want     MethodLookupKind
	}{
		{"public", ins, "public", bla, false, LookupOk},
		{"private from outside", ins, "private", bla, false, LookupPrivate},
		{"private from inside", ins, "private", foo, false, LookupOk},
		{"type private", ins, "hidden", foo, false, LookupPrivate},
		{"type private inside the type", ins, "hidden", foo, true, LookupOk},
		{"static on instance", ins, "new", foo, false, LookupStaticOnInstance},
		{"instance on static", static, "public", foo, false, LookupInstanceOnStatic},
		{"static", static, "new", bla, false, LookupOk},
		{"missing", ins, "missing", foo, false, LookupNone},
		{"destructor", ins, "$drop", foo, true, LookupPrivate},
	}
	for _, tt := range tests {
		got := tt.typ.LookupMethod(db, tt.method, tt.from, tt.typePriv)
		if got.Kind != tt.want {
			t.Fatalf("%s: got %v, want %v", tt.name, got.Kind, tt.want)
		}
	}

	if ins.CanCall(db, drop, foo, true) {
		t.Fatalf("destructor is callable")
	}
}

func TestReceiverForClassInstance(t *testing.T) {
	db := New()
	heap := newClass(db, "Heap")
	stack := newStackClass(db, "Stack")
	proc := db.AllocClass("Proc", ClassKindAsync, VisibilityPublic, 0, location.Location{})

	method := func(kind MethodKind, cls ClassID) MethodID {
		m := newMethod(db, "m", kind)
		m.SetReceiver(db, OwnedOf(instance(cls)))
		return m
	}

	tests := []struct {
		name string
		m    MethodID
		cls  ClassID
		want TypeRef
	}{
		{"instance", method(MethodInstance, heap), heap, RefOf(instance(heap))},
		{"mutable", method(MethodMutable, heap), heap, MutOf(instance(heap))},
		{"moving", method(MethodMoving, heap), heap, OwnedOf(instance(heap))},
		{"static", method(MethodStatic, heap), heap, OwnedOf(ClassType(heap))},
		{"stack instance", method(MethodInstance, stack), stack, OwnedOf(instance(stack))},
		{"stack mutable", method(MethodMutable, stack), stack, OwnedOf(instance(stack))},
		{"async", method(MethodAsync, proc), proc, RefOf(instance(proc))},
		{"async mutable", method(MethodAsyncMutable, proc), proc, MutOf(instance(proc))},
	}
	for _, tt := range tests {
		got := tt.m.ReceiverForClassInstance(db, NewClassInstance(tt.cls))
		if got != tt.want {
			t.Fatalf("%s: got %s, want %s", tt.name, Format(db, got), Format(db, tt.want))
		}
	}
}

func TestClassPredicates(t *testing.T) {
	db := New()
	ext := newExternClass(db, "Ext")
	stack := newStackClass(db, "Stack")
	heap := newClass(db, "Heap")

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"extern is stack allocated", ext.IsStackAllocated(db), true},
		{"extern allows mutating", ext.AllowMutating(db), true},
		{"stack class has no header", stack.HasObjectHeader(db), false},
		{"stack class allows no mutating", stack.AllowMutating(db), false},
		{"heap class allows trait casts", heap.AllowCastToTrait(db), true},
		{"stack class allows no trait casts", stack.AllowCastToTrait(db), false},
		{"string is a value type", StringClassID.IsValueType(db), true},
		{"int is builtin", IntClassID.IsBuiltin(), true},
		{"array isn't builtin", ArrayClassID.IsBuiltin(), false},
		{"tuples are generic", Tuple3ClassID.IsGeneric(db), true},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestTupleClasses(t *testing.T) {
	db := New()
	cls, ok := TupleClass(3)
	if !ok || cls != Tuple3ClassID {
		t.Fatalf("TupleClass(3) = %v", cls)
	}
	if _, ok := TupleClass(9); ok {
		t.Fatalf("tuple of 9 members exists")
	}
	if got := cls.FieldNames(db); len(got) != 3 || got[2] != "2" {
		t.Fatalf("tuple fields %v", got)
	}
	if n := len(cls.TypeParameters(db)); n != 3 {
		t.Fatalf("tuple has %d type parameters", n)
	}
}
