package types

import (
	"testing"

	"keel/internal/location"
	"keel/internal/modname"
)

func newModule(db *Database, name string) ModuleID {
	return db.AllocModule(modname.New(name), name+".kl")
}

func newClass(db *Database, name string) ClassID {
	return db.AllocClass(name, ClassKindRegular, VisibilityPublic, 0, location.Location{})
}

func newExternClass(db *Database, name string) ClassID {
	return db.AllocClass(name, ClassKindExtern, VisibilityPublic, 0, location.Location{})
}

func newStackClass(db *Database, name string) ClassID {
	cls := newClass(db, name)
	cls.SetStack(db)
	return cls
}

func newTrait(db *Database, name string) TraitID {
	return db.AllocTrait(name, VisibilityPublic, 0, location.Location{})
}

func newMethod(db *Database, name string, kind MethodKind) MethodID {
	return db.AllocMethod(0, location.Location{}, name, VisibilityPublic, kind)
}

func instance(cls ClassID) TypeID {
	return ClassInstanceType(NewClassInstance(cls))
}

func param(id TypeParameterID) TypeID {
	return TypeParameterType(id)
}

// genericInstance returns an instance of cls with the given types assigned
// to its parameters in order.
func genericInstance(db *Database, cls ClassID, types ...TypeRef) ClassInstance {
	args := NewTypeArguments()
	for i, p := range cls.TypeParameters(db) {
		args.Assign(p, types[i])
	}
	return GenericClass(db, cls, args)
}

func expectType(t *testing.T, db *Database, got, want TypeRef) {
	t.Helper()
	if got != want {
		t.Fatalf("got %s (%v), want %s (%v)", Format(db, got), got.kind, Format(db, want), want.kind)
	}
}

func expectPanic(t *testing.T, fn func()) any {
	t.Helper()
	var v any
	func() {
		defer func() { v = recover() }()
		fn()
	}()
	if v == nil {
		t.Fatalf("expected a panic")
	}
	return v
}

var zeroLocation location.Location
