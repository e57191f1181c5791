package types

import (
	"testing"

	"keel/internal/location"
)

func TestHasSameRootNamespace(t *testing.T) {
	db := New()
	foo := newModule(db, "std.foo")
	bar := newModule(db, "std.bar")
	bla := newModule(db, "bla")
	testBla := newModule(db, "test_bla")
	nested := newModule(db, "test_bla.nested")

	tests := []struct {
		name  string
		from  ModuleID
		other ModuleID
		want  bool
	}{
		{"siblings", foo, bar, true},
		{"siblings reversed", bar, foo, true},
		{"different roots", foo, bla, false},
		{"tests see their module", bla, testBla, true},
		{"modules don't see their tests", testBla, bla, false},
		{"nested test modules", bla, nested, false},
		{"itself", bla, bla, true},
	}
	for _, tt := range tests {
		if got := tt.from.HasSameRootNamespace(db, tt.other); got != tt.want {
			t.Fatalf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSymbolVisibility(t *testing.T) {
	db := New()
	foo := newModule(db, "std.foo")
	bar := newModule(db, "std.bar")
	bla := newModule(db, "bla")

	public := db.AllocClass("A", ClassKindRegular, VisibilityPublic, foo, location.Location{})
	private := db.AllocClass("B", ClassKindRegular, VisibilityPrivate, foo, location.Location{})

	if !ClassSymbol(public).IsVisibleTo(db, bla) {
		t.Fatalf("public class is hidden")
	}
	if !ClassSymbol(private).IsVisibleTo(db, bar) {
		t.Fatalf("private class is hidden from a sibling module")
	}
	if ClassSymbol(private).IsVisibleTo(db, bla) {
		t.Fatalf("private class is visible from another namespace")
	}
}

func TestFieldVisibility(t *testing.T) {
	db := New()
	foo := newModule(db, "std.foo")
	bla := newModule(db, "bla")
	cls := db.AllocClass("A", ClassKindRegular, VisibilityPublic, foo, location.Location{})

	public := cls.NewField(db, "a", 0, Int(), VisibilityPublic, foo, location.Location{})
	private := cls.NewField(db, "b", 1, Int(), VisibilityPrivate, foo, location.Location{})
	typePrivate := cls.NewField(db, "c", 2, Int(), VisibilityTypePrivate, foo, location.Location{})

	if !public.IsVisibleTo(db, bla) {
		t.Fatalf("public field is hidden")
	}
	if private.IsVisibleTo(db, bla) || !private.IsVisibleTo(db, foo) {
		t.Fatalf("private field visibility is wrong")
	}
	if typePrivate.IsVisibleTo(db, foo) {
		t.Fatalf("type private field is visible")
	}
}

func TestModuleSymbols(t *testing.T) {
	db := New()
	foo := newModule(db, "foo")
	bar := newModule(db, "bar")

	own := db.AllocClass("A", ClassKindRegular, VisibilityPublic, foo, location.Location{})
	imported := db.AllocClass("B", ClassKindRegular, VisibilityPublic, bar, location.Location{})
	generated := db.AllocClass("$Closure0", ClassKindClosure, VisibilityPrivate, foo, location.Location{})

	foo.NewSymbol(db, "A", ClassSymbol(own))
	foo.NewSymbol(db, "B", ClassSymbol(imported))
	foo.NewSymbol(db, "$Closure0", ClassSymbol(generated))
	foo.NewSymbol(db, "T", TypeParameterSymbol(db.AllocTypeParameter("T")))

	if _, ok := foo.ImportSymbol(db, "A"); !ok {
		t.Fatalf("own symbol can't be imported")
	}
	if _, ok := foo.ImportSymbol(db, "B"); ok {
		t.Fatalf("imported symbols can be re-exported")
	}
	if _, ok := foo.ImportSymbol(db, "T"); ok {
		t.Fatalf("type parameters can be imported")
	}
	if !foo.SymbolIsUsed(db, "A") {
		t.Fatalf("importing doesn't mark the symbol as used")
	}

	classes := foo.Classes(db)
	if len(classes) != 1 || classes[0] != own {
		t.Fatalf("unexpected classes %v", classes)
	}

	names := []string{}
	for _, s := range foo.Symbols(db) {
		names = append(names, s.Name)
	}
	if len(names) != 4 || names[0] != "A" || names[3] != "T" {
		t.Fatalf("symbols out of order: %v", names)
	}
}

func TestModuleExternMethods(t *testing.T) {
	db := New()
	mod := newModule(db, "foo")
	ext := db.AllocMethod(mod, location.Location{}, "puts", VisibilityPublic, MethodExtern)
	mod.AddExternMethod(db, ext)

	lookup := ModuleType(mod).LookupMethod(db, "puts", mod, false)
	if !lookup.IsOk() || lookup.Method != ext {
		t.Fatalf("extern method not found: %+v", lookup)
	}
	if lookup := ModuleType(mod).LookupMethod(db, "missing", mod, false); lookup.Kind != LookupNone {
		t.Fatalf("missing method found: %+v", lookup)
	}
}
