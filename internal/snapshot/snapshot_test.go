package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"keel/internal/decl"
	"keel/internal/driver"
	"keel/internal/types"
)

const program = `
main = "app"

[[modules]]
name = "app"

[[classes]]
module = "app"
name = "Box"
params = [{ name = "T" }]
fields = [{ name = "value", type = "T" }]

[[classes]]
module = "app"
name = "Point"
stack = true
fields = [{ name = "x", type = "Int" }, { name = "y", type = "Int" }]

[[classes]]
module = "app"
name = "Option"
kind = "enum"
constructors = [{ name = "Some", members = ["Point"] }, { name = "None" }]

[[bindings]]
module = "app"
name = "a"
declared = "Box[?]"
value = "Box[Int]"

[[bindings]]
module = "app"
name = "b"
declared = "Box[Float]"
value = "Box[Float]"

[[bindings]]
module = "app"
name = "c"
declared = "Int"
value = "Point"
`

func build(t *testing.T) *Snapshot {
	t.Helper()
	p, err := decl.Decode([]byte(program))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	db := types.New()
	d, err := decl.Declare(db, p)
	if err != nil {
		t.Fatalf("Declare: %v", err)
	}
	res, err := driver.Run(context.Background(), db, d, driver.Options{Jobs: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return Build(db, res)
}

func TestBuild(t *testing.T) {
	s := build(t)

	if s.Schema != SchemaVersion || s.Main != "app" {
		t.Fatalf("schema %d, main %q", s.Schema, s.Main)
	}

	box, ok := s.Class("Box")
	if !ok || box.Module != "app" || box.Storage != "heap" || box.Kind != "regular" {
		t.Fatalf("Box: %+v", box)
	}
	specs := s.Specializations(box.ID)
	if len(specs) != 2 {
		t.Fatalf("Box has %d specializations", len(specs))
	}
	var shapes []string
	for _, c := range specs {
		if c.Module != "app" || len(c.Shapes) != 1 {
			t.Fatalf("specialization %+v", c)
		}
		shapes = append(shapes, c.Shapes[0])
	}
	if !slices.Equal(shapes, []string{"i64", "f64"}) {
		t.Fatalf("specialization shapes %v", shapes)
	}

	point, ok := s.Class("Point")
	if !ok || point.Storage != "stack" || len(point.Fields) != 2 || point.Fields[1].Type != "Int" {
		t.Fatalf("Point: %+v", point)
	}
	opt, ok := s.Class("Option")
	if !ok || len(opt.Constructors) != 2 || !slices.Equal(opt.Constructors[0].Members, []string{"Point"}) {
		t.Fatalf("Option: %+v", opt)
	}

	array, ok := s.Class("Array")
	if !ok || array.Module != "" {
		t.Fatalf("Array: %+v", array)
	}

	if len(s.Bindings) != 3 {
		t.Fatalf("%d bindings", len(s.Bindings))
	}
	if a := s.Bindings[0]; !a.Resolved || a.Type != "Box[Int]" || a.Shape != "o" || len(a.Classes) != 2 {
		t.Fatalf("binding a: %+v", a)
	}
	if c := s.Bindings[2]; c.Resolved || c.Shape != "" || c.Problem == "" {
		t.Fatalf("binding c: %+v", c)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "snapshots"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, ok, err := store.Get("prog"); ok || err != nil {
		t.Fatalf("Get on empty store = %v, %v", ok, err)
	}

	want := build(t)
	if err := store.Put("prog", want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get("prog")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}

	if got.Version != want.Version || len(got.Classes) != len(want.Classes) || len(got.Bindings) != len(want.Bindings) {
		t.Fatalf("round trip lost data: %d classes, %d bindings", len(got.Classes), len(got.Bindings))
	}
	box, _ := got.Class("Box")
	if specs := got.Specializations(box.ID); len(specs) != 2 || *specs[0].Source != box.ID {
		t.Fatalf("specializations after round trip: %+v", specs)
	}
	if got.Bindings[0].Shape != "o" || got.Bindings[2].Problem != want.Bindings[2].Problem {
		t.Fatalf("bindings after round trip: %+v", got.Bindings)
	}

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "prog.mp" {
		t.Fatalf("store left %v behind", entries)
	}

	if err := store.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := store.Get("prog"); ok {
		t.Fatalf("snapshot survived DropAll")
	}
}

func TestReadRejectsOtherSchemas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.mp")
	data, err := msgpack.Marshal(&Snapshot{Schema: SchemaVersion + 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Read(path); !errors.Is(err, ErrSchema) {
		t.Fatalf("Read error = %v, want ErrSchema", err)
	}
}

func TestNilStore(t *testing.T) {
	var s *Store
	if err := s.Put("x", &Snapshot{}); err != nil {
		t.Fatalf("Put on nil store: %v", err)
	}
	if _, ok, err := s.Get("x"); ok || err != nil {
		t.Fatalf("Get on nil store = %v, %v", ok, err)
	}
}

func TestNameFor(t *testing.T) {
	if got := NameFor("/tmp/progs/app.toml"); got != "app" {
		t.Fatalf("NameFor() = %q", got)
	}
}
