package types

import "testing"

func TestMethodArguments(t *testing.T) {
	db := New()
	m := newMethod(db, "add", MethodInstance)
	m.NewArgument(db, "a", Int(), Int(), zeroLocation)
	v := m.NewArgument(db, "b", Float(), Float(), zeroLocation)

	idx, typ, ok := m.NamedArgument(db, "b")
	if !ok || idx != 1 {
		t.Fatalf("NamedArgument(b) = %d, %v", idx, ok)
	}
	expectType(t, db, typ, Float())
	if v.Name(db) != "b" || v.IsMutable(db) {
		t.Fatalf("unexpected argument variable %q", v.Name(db))
	}
	if _, _, ok := m.NamedArgument(db, "c"); ok {
		t.Fatalf("found an undefined argument")
	}

	expectPanic(t, func() { m.NewArgument(db, "a", Int(), Int(), zeroLocation) })
}

func TestCopyMethod(t *testing.T) {
	db := New()
	a := newModule(db, "a")
	b := newModule(db, "b")
	m := db.AllocMethod(a, zeroLocation, "foo", VisibilityPublic, MethodInstance)
	m.NewArgument(db, "x", Int(), Int(), zeroLocation)

	cp := m.CopyMethod(db, b)
	if cp == m {
		t.Fatalf("copy shares the ID of its source")
	}
	cp.NewArgument(db, "y", Int(), Int(), zeroLocation)

	if _, _, ok := m.NamedArgument(db, "y"); ok {
		t.Fatalf("arguments of the copy leak into the source")
	}
	if cp.Name(db) != "foo" {
		t.Fatalf("copy name = %q", cp.Name(db))
	}
}

func TestMethodInlining(t *testing.T) {
	db := New()

	m := newMethod(db, "drop", MethodMutable)
	if m.Inline(db) != InlineInfer {
		t.Fatalf("default inline = %v", m.Inline(db))
	}
	m.MarkAsDestructor(db)
	if m.Kind(db) != MethodDestructor || m.Inline(db) != InlineAlways {
		t.Fatalf("destructor kind %v, inline %v", m.Kind(db), m.Inline(db))
	}

	panics := newMethod(db, "panic", MethodStatic)
	panics.SetReturnType(db, Never())
	if panics.Inline(db) != InlineNever {
		t.Fatalf("methods returning Never must not be inlined")
	}
	if panics.ReturnsValue(db) {
		t.Fatalf("methods returning Never produce no value")
	}
}

func TestExternMethods(t *testing.T) {
	db := New()
	m := newMethod(db, "puts", MethodExtern)

	if m.CallConvention(db) != CallConventionC || m.Inline(db) != InlineNever {
		t.Fatalf("extern method: convention %v, inline %v", m.CallConvention(db), m.Inline(db))
	}
	m.SetReturnType(db, Nil())
	if m.HasReturnType(db) {
		t.Fatalf("extern methods returning Nil have no return type")
	}
	m.SetReturnType(db, Int())
	if !m.HasReturnType(db) {
		t.Fatalf("extern methods returning Int have a return type")
	}

	native := newMethod(db, "foo", MethodInstance)
	native.SetReturnType(db, Nil())
	if !native.HasReturnType(db) || !native.IgnoreReturnValue(db) {
		t.Fatalf("native methods always have a return type")
	}
	if NewCallConvention(true) != CallConventionC || NewCallConvention(false) != CallConventionNative {
		t.Fatalf("unexpected call conventions")
	}
}

func TestClosureCaptures(t *testing.T) {
	db := New()
	cls := newClass(db, "Thing")
	stack := newStackClass(db, "Point")

	a := db.AllocVariable("a", Int(), false, zeroLocation)
	b := db.AllocVariable("b", OwnedOf(instance(cls)), false, zeroLocation)

	c := db.AllocClosure(false)
	c.AddCapture(db, b, UniOf(instance(cls)))
	c.AddCapture(db, a, Int())
	c.AddCapture(db, a, Int())

	got := c.Captured(db)
	if len(got) != 2 || got[0].Variable != a || got[1].Variable != b {
		t.Fatalf("Captured() = %v", got)
	}
	if !c.CanInferAsUni(db) {
		t.Fatalf("closure capturing only sendable values must infer as uni")
	}

	c.SetCapturedSelfType(db, OwnedOf(instance(cls)))
	if c.CanInferAsUni(db) {
		t.Fatalf("closure capturing a heap self must not infer as uni")
	}

	d := db.AllocClosure(true)
	d.SetCapturedSelfType(db, OwnedOf(instance(stack)))
	if !d.CanInferAsUni(db) {
		t.Fatalf("closure capturing a stack self should infer as uni")
	}

	e := db.AllocClosure(false)
	e.AddCapture(db, b, OwnedOf(instance(cls)))
	if e.CanInferAsUni(db) {
		t.Fatalf("closure capturing an owned value must not infer as uni")
	}
	if !d.IsMoving(db) || e.IsMoving(db) {
		t.Fatalf("unexpected moving flags")
	}
}

func TestIntrinsics(t *testing.T) {
	all := Intrinsics()
	if len(all) != int(numIntrinsics) {
		t.Fatalf("Intrinsics() returned %d entries", len(all))
	}

	seen := make(map[string]bool, len(all))
	for _, i := range all {
		if i.Name() == "" || seen[i.Name()] {
			t.Fatalf("intrinsic %d has a missing or duplicate name %q", i, i.Name())
		}
		seen[i.Name()] = true
	}

	byName := intrinsicMapping()
	tests := []struct {
		name string
		want TypeRef
	}{
		{"float_round", Float()},
		{"int_swap_bytes", Int()},
		{"bool_eq", Boolean()},
		{"spin_loop_hint", Nil()},
		{"int_checked_add", OwnedOf(ClassInstanceType(NewClassInstance(CheckedIntResultClassID)))},
	}
	for _, tt := range tests {
		i, ok := byName[tt.name]
		if !ok {
			t.Fatalf("no intrinsic named %q", tt.name)
		}
		if got := i.ReturnType(); got != tt.want {
			t.Fatalf("%s returns %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAllocConstant(t *testing.T) {
	db := New()
	mod := newModule(db, "consts")

	a := db.AllocConstant(mod, zeroLocation, "A", VisibilityPublic, Int())
	b := db.AllocConstant(mod, zeroLocation, "B", VisibilityPrivate, String())

	if a.ModuleLocalID(db) != 0 || b.ModuleLocalID(db) != 1 {
		t.Fatalf("local IDs = %d, %d", a.ModuleLocalID(db), b.ModuleLocalID(db))
	}
	if !a.IsPublic(db) || b.IsPublic(db) {
		t.Fatalf("unexpected visibility")
	}

	sym, ok := mod.Symbol(db, "B")
	if !ok || sym.Kind != SymbolConstant || sym.Constant() != b {
		t.Fatalf("Symbol(B) = %v, %v", sym, ok)
	}
	if got := mod.Constants(db); len(got) != 2 || got[1] != b {
		t.Fatalf("Constants() = %v", got)
	}
	expectType(t, db, b.ValueType(db), String())
}
