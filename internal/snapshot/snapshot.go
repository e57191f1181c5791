// Package snapshot records the layout of a finalized database: the classes
// that exist after specialization and the shapes of the checked bindings.
// Snapshots are stored with msgpack so later runs can compare against them.
package snapshot

import (
	"keel/internal/driver"
	"keel/internal/observ"
	"keel/internal/types"
	"keel/internal/version"
)

// SchemaVersion is bumped whenever the encoded form of Snapshot changes.
const SchemaVersion uint16 = 1

type Snapshot struct {
	Schema   uint16        `msgpack:"schema"`
	Version  string        `msgpack:"version"`
	Main     string        `msgpack:"main,omitempty"`
	Classes  []Class       `msgpack:"classes"`
	Bindings []Binding     `msgpack:"bindings"`
	Timings  observ.Report `msgpack:"timings"`
}

type Class struct {
	ID      uint32 `msgpack:"id"`
	Name    string `msgpack:"name"`
	Module  string `msgpack:"module,omitempty"`
	Kind    string `msgpack:"kind"`
	Storage string `msgpack:"storage"`
	// Shapes are only present on specialized classes.
	Shapes []string `msgpack:"shapes,omitempty"`
	// Source is the ID of the generic class this one was specialized from.
	Source       *uint32       `msgpack:"source,omitempty"`
	Fields       []Field       `msgpack:"fields,omitempty"`
	Constructors []Constructor `msgpack:"constructors,omitempty"`
}

type Field struct {
	Name  string `msgpack:"name"`
	Index int    `msgpack:"index"`
	Type  string `msgpack:"type"`
}

type Constructor struct {
	Name    string   `msgpack:"name"`
	Members []string `msgpack:"members,omitempty"`
}

type Binding struct {
	Module   string   `msgpack:"module"`
	Name     string   `msgpack:"name"`
	Type     string   `msgpack:"type"`
	Resolved bool     `msgpack:"resolved"`
	Problem  string   `msgpack:"problem,omitempty"`
	Shape    string   `msgpack:"shape,omitempty"`
	Classes  []uint32 `msgpack:"classes,omitempty"`
}

var storageNames = [...]string{
	types.StorageHeap:  "heap",
	types.StorageStack: "stack",
}

// Build captures db, which must have been finalized by the run that produced
// res.
func Build(db *types.Database, res *driver.Result) *Snapshot {
	s := &Snapshot{
		Schema:  SchemaVersion,
		Version: version.Version,
		Timings: res.Timings,
	}
	if name, ok := db.MainModule(); ok {
		s.Main = name.String()
	}

	for i := range db.NumberOfClasses() {
		cls := types.ClassID(i)
		if cls.IsModule(db) || cls.IsClosure(db) {
			continue
		}
		s.Classes = append(s.Classes, buildClass(db, cls))
	}

	for _, b := range res.Bindings {
		out := Binding{
			Module:   b.Module,
			Name:     b.Name,
			Type:     b.Type,
			Resolved: b.Resolved,
			Problem:  b.Problem,
		}
		if b.Resolved {
			out.Shape = b.Shape.String()
		}
		for _, cls := range b.Classes {
			out.Classes = append(out.Classes, uint32(cls))
		}
		s.Bindings = append(s.Bindings, out)
	}
	return s
}

func buildClass(db *types.Database, cls types.ClassID) Class {
	out := Class{
		ID:      uint32(cls),
		Name:    cls.Name(db),
		Module:  moduleOf(db, cls),
		Kind:    cls.Kind(db).String(),
		Storage: storageNames[cls.Storage(db)],
	}
	if src, ok := cls.SpecializationSource(db); ok {
		id := uint32(src)
		out.Source = &id
		for _, shape := range cls.Shapes(db) {
			out.Shapes = append(out.Shapes, shape.String())
		}
	}
	for _, f := range cls.Fields(db) {
		out.Fields = append(out.Fields, Field{
			Name:  f.Name(db),
			Index: f.Index(db),
			Type:  types.Format(db, f.ValueType(db)),
		})
	}
	for _, c := range cls.Constructors(db) {
		ctor := Constructor{Name: c.Name(db)}
		for _, m := range c.Arguments(db) {
			ctor.Members = append(ctor.Members, types.Format(db, m))
		}
		out.Constructors = append(out.Constructors, ctor)
	}
	return out
}

// moduleOf returns the module that defines cls, or "" for builtin classes
// and their specializations.
func moduleOf(db *types.Database, cls types.ClassID) string {
	root := cls
	if src, ok := cls.SpecializationSource(db); ok {
		root = src
	}
	if root < types.FirstUserClassID {
		return ""
	}
	return root.Module(db).Name(db).String()
}

// Class returns the first class with the given name, preferring the
// unspecialized one.
func (s *Snapshot) Class(name string) (Class, bool) {
	for _, c := range s.Classes {
		if c.Name == name && c.Source == nil {
			return c, true
		}
	}
	return Class{}, false
}

// Specializations returns the classes specialized from the class with ID
// source.
func (s *Snapshot) Specializations(source uint32) []Class {
	var out []Class
	for _, c := range s.Classes {
		if c.Source != nil && *c.Source == source {
			out = append(out, c)
		}
	}
	return out
}
