package decl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"keel/internal/typeexpr"
	"keel/internal/types"
)

const sample = `
main = "app"

[[modules]]
name = "std.cmp"

[[modules]]
name = "app"
imports = ["std.cmp"]

[[traits]]
module = "std.cmp"
name = "Equal"
methods = [{ name = "==" }, { name = "!=", default = true }]

[[traits]]
module = "std.cmp"
name = "Compare"
requires = ["Equal"]

[[classes]]
module = "app"
name = "Box"
params = [{ name = "T", requires = ["cmp.Equal"] }]
fields = [{ name = "value", type = "T" }]
implements = ["cmp.Equal"]

[[classes]]
module = "app"
name = "Point"
stack = true
fields = [{ name = "x", type = "Int" }, { name = "y", type = "Int" }]

[[classes]]
module = "app"
name = "Shape"
kind = "enum"
constructors = [{ name = "Circle", members = ["Float"] }, { name = "Line", members = ["Point", "Point"] }]

[[methods]]
module = "app"
name = "get"
receiver = "Box"
arguments = [{ name = "default", type = "ref T" }]
returns = "ref T"

[[methods]]
module = "app"
name = "main"
kind = "static"
main = true

[[methods]]
module = "app"
name = "puts"
kind = "extern"
arguments = [{ name = "ptr", type = "Pointer[UInt8]" }]
returns = "Int32"

[[bindings]]
module = "app"
name = "boxes"
declared = "Array[Box[?]]"
value = "Array[Box[Int]]"

[[bindings]]
module = "app"
name = "pair"
declared = "(?, ref ?)"
value = "(Point, ref String)"
`

func declareSample(t *testing.T) (*types.Database, *Declared) {
	t.Helper()
	p, err := Decode([]byte(sample))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	db := types.New()
	d, err := Declare(db, p)
	if err != nil {
		t.Fatalf("Declare: %v", err)
	}
	return db, d
}

func TestDeclareSample(t *testing.T) {
	db, d := declareSample(t)

	if len(d.Modules) != 2 || len(d.Classes) != 3 || len(d.Traits) != 2 {
		t.Fatalf("declared %d modules, %d classes, %d traits", len(d.Modules), len(d.Classes), len(d.Traits))
	}

	app := db.Module("app")
	box := db.ClassInModule("app", "Box")
	equal := db.TraitInModule("std.cmp", "Equal")
	if !box.ImplementsTrait(db, equal) {
		t.Fatalf("Box must implement Equal")
	}
	if p := box.TypeParameters(db)[0]; len(p.Requirements(db)) != 1 {
		t.Fatalf("T must require Equal")
	}
	if compare := db.TraitInModule("std.cmp", "Compare"); len(compare.RequiredTraits(db)) != 1 {
		t.Fatalf("Compare must require Equal")
	}

	if !db.ClassInModule("app", "Point").IsStackAllocated(db) {
		t.Fatalf("Point must be stack allocated")
	}
	shape := db.ClassInModule("app", "Shape")
	if n := shape.NumberOfConstructors(db); n != 2 {
		t.Fatalf("Shape has %d constructors", n)
	}

	get, ok := box.Method(db, "get")
	if !ok {
		t.Fatalf("Box.get is missing")
	}
	if got := types.Format(db, get.ReturnType(db)); got != "ref T" {
		t.Fatalf("Box.get returns %q", got)
	}
	if got := types.Format(db, get.Receiver(db)); got != "ref Box[T]" {
		t.Fatalf("Box.get receiver = %q", got)
	}

	puts, ok := app.ExternMethod(db, "puts")
	if !ok || !puts.UsesCCallingConvention(db) {
		t.Fatalf("puts must be an extern C function")
	}
	if _, typ, _ := puts.NamedArgument(db, "ptr"); types.Format(db, typ) != "Pointer[UInt8]" {
		t.Fatalf("puts argument = %q", types.Format(db, typ))
	}

	main, ok := db.MainMethod()
	if !ok || main.Name(db) != "main" {
		t.Fatalf("main method not recorded")
	}
	if name, ok := db.MainModule(); !ok || name.String() != "app" {
		t.Fatalf("main module not recorded")
	}
}

func TestDeclareBindings(t *testing.T) {
	db, d := declareSample(t)

	bs := d.BindingsOf(db.Module("app"))
	if len(bs) != 2 {
		t.Fatalf("got %d bindings", len(bs))
	}
	tests := []struct {
		name, declared, value string
	}{
		{"boxes", "Array[Box[?]]", "Array[Box[Int]]"},
		{"pair", "(?, ref ?)", "(Point, ref String)"},
	}
	for i, tt := range tests {
		b := bs[i]
		if b.Name != tt.name || b.Source != tt.declared {
			t.Fatalf("binding %d = %q %q", i, b.Name, b.Source)
		}
		if got := types.Format(db, b.Declared); got != tt.declared {
			t.Fatalf("%s declared = %q", tt.name, got)
		}
		if got := types.Format(db, b.Value); got != tt.value {
			t.Fatalf("%s value = %q", tt.name, got)
		}
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode([]byte("[[modules]]\nname = \"a\"\nflavour = \"x\"\n"))
	if !errors.Is(err, ErrUnknownKeys) {
		t.Fatalf("expected ErrUnknownKeys, got %v", err)
	}
	if !strings.Contains(err.Error(), "modules.flavour") {
		t.Fatalf("error doesn't name the key: %v", err)
	}
}

func TestDecodeNormalizesNames(t *testing.T) {
	// "Café" written with a combining accent.
	decomposed := "Cafe\u0301"
	p, err := Decode([]byte(`
[[modules]]
name = "app"

[[classes]]
module = "app"
name = "` + decomposed + `"

[[bindings]]
module = "app"
name = "c"
declared = "Caf\u00e9"
value = "` + decomposed + `"
`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Classes[0].Name != "Caf\u00e9" {
		t.Fatalf("class name not normalized: %q", p.Classes[0].Name)
	}

	db := types.New()
	d, err := Declare(db, p)
	if err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if d.Bindings[0].Declared != d.Bindings[0].Value {
		t.Fatalf("both spellings must resolve to the same class")
	}
}

func TestDecodeValidation(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"missing module name", "[[modules]]\ndoc = \"x\"\n", "missing name"},
		{"duplicate module", "[[modules]]\nname = \"a\"\n[[modules]]\nname = \"a\"\n", "more than once"},
		{"bad import", "[[modules]]\nname = \"a\"\nimports = [\"b\"]\n", "undeclared module \"b\""},
		{"bad main", "main = \"b\"\n[[modules]]\nname = \"a\"\n", "main module"},
		{"class without module", "[[modules]]\nname = \"a\"\n[[classes]]\nname = \"A\"\n", "missing module"},
		{"class and trait clash", "[[modules]]\nname = \"a\"\n[[classes]]\nmodule = \"a\"\nname = \"A\"\n[[traits]]\nmodule = \"a\"\nname = \"A\"\n", "class \"A\" is declared more than once"},
		{"binding without value", "[[modules]]\nname = \"a\"\n[[bindings]]\nmodule = \"a\"\nname = \"x\"\ndeclared = \"Int\"\n", "both declared and value"},
		{"bad toml", "[[modules]\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Decode error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDeclareErrors(t *testing.T) {
	const header = "[[modules]]\nname = \"std.cmp\"\n[[modules]]\nname = \"app\"\nimports = [\"std.cmp\"]\n" +
		"[[classes]]\nmodule = \"std.cmp\"\nname = \"Secret\"\nvisibility = \"private\"\n" +
		"[[classes]]\nmodule = \"app\"\nname = \"Box\"\nparams = [{ name = \"T\" }]\n"
	binding := func(declared string) string {
		return header + "[[bindings]]\nmodule = \"app\"\nname = \"x\"\ndeclared = \"" + declared + "\"\nvalue = \"Int\"\n"
	}

	tests := []struct {
		name, input, want string
	}{
		{"undefined type", binding("Nope"), "undefined type \"Nope\""},
		{"arity", binding("Box"), "expects 1 type arguments, found 0"},
		{"extra arguments", binding("Int[String]"), "doesn't take type arguments"},
		{"private symbol", binding("cmp.Secret"), "private to module"},
		{"undefined module", binding("nope.Thing"), "undefined module \"nope\""},
		{"syntax", binding("Array["), "column 7"},
		{"pointer to nothing", binding("Pointer[?]"), "can't point to"},
		{"bad class kind", header + "[[classes]]\nmodule = \"app\"\nname = \"C\"\nkind = \"weird\"\n", "invalid class kind"},
		{"constructors on a class", header + "[[classes]]\nmodule = \"app\"\nname = \"C\"\nconstructors = [{ name = \"A\" }]\n", "only enums"},
		{"duplicate field", header + "[[classes]]\nmodule = \"app\"\nname = \"C\"\nfields = [{ name = \"a\", type = \"Int\" }, { name = \"a\", type = \"Int\" }]\n", "field \"a\" is defined more than once"},
		{"extern implements", header + "[[traits]]\nmodule = \"app\"\nname = \"T\"\n[[classes]]\nmodule = \"app\"\nname = \"C\"\nkind = \"extern\"\nimplements = [\"T\"]\n", "can't implement traits"},
		{"not a trait", header + "[[classes]]\nmodule = \"app\"\nname = \"C\"\nimplements = [\"Box[Int]\"]\n", "is not a trait"},
		{"unknown receiver", header + "[[methods]]\nmodule = \"app\"\nname = \"m\"\nreceiver = \"Nope\"\n", "receiver \"Nope\""},
		{"duplicate method", header + "[[methods]]\nmodule = \"app\"\nname = \"m\"\n[[methods]]\nmodule = \"app\"\nname = \"m\"\n", "already defines"},
		{"import clash", "[[modules]]\nname = \"std.cmp\"\n[[modules]]\nname = \"app\"\nimports = [\"std.cmp\"]\n[[classes]]\nmodule = \"app\"\nname = \"cmp\"\n", "conflicts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			_, err = Declare(types.New(), p)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Declare error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDeclareWrapsSyntaxErrors(t *testing.T) {
	p, err := Decode([]byte("[[modules]]\nname = \"a\"\n[[bindings]]\nmodule = \"a\"\nname = \"x\"\ndeclared = \"(\"\nvalue = \"Int\"\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	_, err = Declare(types.New(), p)
	var se *typeexpr.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected a wrapped SyntaxError, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Path != path || len(p.Bindings) != 2 {
		t.Fatalf("unexpected program %+v", p)
	}
	if got := p.ModuleNames(); strings.Join(got, ",") != "std.cmp,app" {
		t.Fatalf("ModuleNames() = %v", got)
	}
	if got := p.BindingsOf("app"); len(got) != 2 {
		t.Fatalf("BindingsOf(app) = %v", got)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "missing.toml") {
		t.Fatalf("Load of a missing file = %v", err)
	}
}
