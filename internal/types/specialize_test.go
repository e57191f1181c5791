package types

import "testing"

func TestSpecializeClass(t *testing.T) {
	db := New()
	cls := newClass(db, "Box")
	p := cls.NewTypeParameter(db, "T")
	cls.NewField(db, "value", 0, AnyOf(param(p)), VisibilityPublic, 0, zeroLocation)
	interned := NewInternedTypeArguments()
	s := NewSpecializer(db, interned, nil)

	ints := s.SpecializeClass(genericInstance(db, cls, Int()))
	again := s.SpecializeClass(genericInstance(db, cls, Int()))
	floats := s.SpecializeClass(genericInstance(db, cls, Float()))
	heap := s.SpecializeClass(genericInstance(db, cls, OwnedOf(instance(newClass(db, "Foo")))))

	if ints != again {
		t.Fatalf("same shapes produced two specializations")
	}
	if ints == floats || ints == heap || ints == cls {
		t.Fatalf("specializations aren't distinct")
	}
	if src, ok := ints.SpecializationSource(db); !ok || src != cls {
		t.Fatalf("specialization source is %d", src)
	}
	if shapes := ints.Shapes(db); len(shapes) != 1 || shapes[0] != IntShape(64, Signed) {
		t.Fatalf("specialization shapes %v", shapes)
	}
	if got := len(cls.Specializations(db)); got != 3 {
		t.Fatalf("class has %d specializations", got)
	}

	field, ok := ints.Field(db, "value")
	if !ok || field.ValueType(db) != Int() {
		t.Fatalf("specialized field has type %s", Format(db, field.ValueType(db)))
	}
	if s.SpecializeClass(NewClassInstance(ints)) != ints {
		t.Fatalf("specialized class was specialized again")
	}
	if s.SpecializeClass(NewClassInstance(IntClassID)) != IntClassID {
		t.Fatalf("regular class was specialized")
	}
}

func TestSpecializeMethod(t *testing.T) {
	db := New()
	m := newMethod(db, "map", MethodInstance)
	m.SetReturnType(db, Int())
	s := NewSpecializer(db, NewInternedTypeArguments(), nil)

	shapes := []Shape{OwnedShape(), IntShape(64, Signed)}
	first := s.SpecializeMethod(m, shapes)
	if s.SpecializeMethod(m, shapes) != first {
		t.Fatalf("same shapes produced two specializations")
	}
	if s.SpecializeMethod(m, []Shape{RefShape()}) == first {
		t.Fatalf("different shapes share a specialization")
	}
	if first.ReturnType(db) != Int() || first.Name(db) != "map" {
		t.Fatalf("specialization lost the signature")
	}
	if got := ShapeKey(first.Shapes(db)); got != "o,i64" {
		t.Fatalf("specialization shapes %q", got)
	}
}

func TestSpecializerArgumentShapes(t *testing.T) {
	db := New()
	p := db.AllocTypeParameter("X")
	s := NewSpecializer(db, NewInternedTypeArguments(), map[TypeParameterID]Shape{p: StringShape()})

	ins := genericInstance(db, Tuple2ClassID, AnyOf(param(p)), RefOf(instance(ArrayClassID)))
	got := ShapeKey(s.ArgumentShapes(ins))
	if got != "s,r" {
		t.Fatalf("argument shapes %q", got)
	}
}
