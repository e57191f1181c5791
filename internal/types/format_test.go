package types

import (
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	db := New()
	p := db.AllocTypeParameter("T")
	mod := newModule(db, "std.foo")
	unresolved := db.AllocPlaceholder()
	array := func(typ TypeRef) TypeID { return ClassInstanceType(genericInstance(db, ArrayClassID, typ)) }
	moving := db.AllocClosure(true)
	moving.SetReturnType(db, Never())

	tests := []struct {
		typ  TypeRef
		want string
	}{
		{RefOf(array(Int())), "ref Array[Int]"},
		{UniOf(param(p)), "uni T"},
		{MutOf(RigidTypeParameterType(p)), "mut T"},
		{UniRefOf(instance(StringClassID)), "uni ref String"},
		{UniMutOf(array(Float())), "uni mut Array[Float]"},
		{OwnedOf(ClosureType(newClosure(db, Nil(), Int()))), "fn (Int) -> Nil"},
		{OwnedOf(ClosureType(moving)), "fn move () -> Never"},
		{OwnedOf(ClassInstanceType(genericInstance(db, Tuple2ClassID, Int(), Float()))), "(Int, Float)"},
		{PointerTo(ForeignIntType(8, Signed)), "Pointer[Int8]"},
		{ForeignInt(16, Unsigned), "UInt16"},
		{ForeignFloat(32), "Float32"},
		{ModuleRef(mod), "std.foo"},
		{Unknown(), "?"},
		{Never(), "Never"},
		{ErrorType(), "<error>"},
		{PlaceholderRef(unresolved), "?"},
		{PlaceholderRef(unresolved.AsRef()), "ref ?"},
	}
	for _, tt := range tests {
		if got := Format(db, tt.typ); got != tt.want {
			t.Fatalf("got %q, want %q", got, tt.want)
		}
	}
}

func TestFormatResolvedPlaceholder(t *testing.T) {
	db := New()
	p := db.AllocPlaceholder()
	p.Assign(db, OwnedOf(instance(newClass(db, "Foo"))))

	if got := Format(db, PlaceholderRef(p.AsMut())); got != "mut Foo" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatLimitsDepth(t *testing.T) {
	db := New()
	typ := Int()
	for range maxFormatDepth + 2 {
		typ = OwnedOf(ClassInstanceType(genericInstance(db, ArrayClassID, typ)))
	}
	got := Format(db, typ)
	if !strings.Contains(got, "...") || strings.Contains(got, "Int") {
		t.Fatalf("nested type rendered as %q", got)
	}
}

func TestFormatInstanceWithoutArguments(t *testing.T) {
	db := New()
	genericInstance(db, ArrayClassID, Int())

	bare := OwnedOf(instance(ArrayClassID))
	if got := Format(db, bare); got != "Array[T]" {
		t.Fatalf("Format() = %q, want Array[T]", got)
	}

	args, ok := NewClassInstance(ArrayClassID).TypeArguments(db)
	if !ok || len(args.Pairs()) != 0 {
		t.Fatalf("instances without arguments must see an empty list")
	}
}
