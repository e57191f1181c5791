package types

// Specializer creates the specialized versions of generic classes and
// methods, one per distinct list of argument shapes.
type Specializer struct {
	db       *Database
	interned *InternedTypeArguments
	shapes   map[TypeParameterID]Shape
}

// NewSpecializer returns a Specializer. shapes holds the shapes of the type
// parameters in scope and may be nil outside generic code.
func NewSpecializer(db *Database, interned *InternedTypeArguments, shapes map[TypeParameterID]Shape) *Specializer {
	if shapes == nil {
		shapes = make(map[TypeParameterID]Shape)
	}
	return &Specializer{db: db, interned: interned, shapes: shapes}
}

func (s *Specializer) Shape(typ TypeRef) Shape {
	return typ.Shape(s.db, s.interned, s.shapes)
}

// ArgumentShapes returns the shapes of the arguments of ins in parameter
// order. Unassigned parameters use the shape of the parameter itself.
func (s *Specializer) ArgumentShapes(ins ClassInstance) []Shape {
	db := s.db
	params := ins.instanceOf.TypeParameters(db)
	args, _ := ins.TypeArguments(db)
	out := make([]Shape, len(params))
	for i, p := range params {
		var v TypeRef
		ok := false
		if args != nil {
			v, ok = args.Get(p)
		}
		if !ok {
			v = AnyOf(TypeParameterType(p))
		}
		out[i] = s.Shape(v)
	}
	return out
}

// SpecializeClass returns the class to use for ins. Generic classes are
// specialized once per list of shapes; the specialization's fields and
// constructors have the instance's arguments substituted.
func (s *Specializer) SpecializeClass(ins ClassInstance) ClassID {
	db := s.db
	cls := ins.instanceOf
	if !cls.IsGeneric(db) {
		return cls
	}
	if _, ok := cls.SpecializationSource(db); ok {
		return cls
	}

	shapes := s.ArgumentShapes(ins)
	if id, ok := cls.Specialization(db, shapes); ok {
		return id
	}

	spec := cls.CloneForSpecialization(db)
	spec.SetShapes(db, shapes)
	spec.SetSpecializationSource(db, cls)
	cls.AddSpecialization(db, shapes, spec)

	args := ForClass(db, ins)
	resolver := NewTypeResolver(db, &args, nil)
	for _, f := range cls.Fields(db) {
		fd := f.get(db)
		spec.NewField(db, fd.name, fd.index, resolver.Resolve(fd.valueType), fd.visibility, fd.module, fd.location)
	}
	for _, c := range cls.Constructors(db) {
		members := c.Arguments(db)
		for i, m := range members {
			members[i] = resolver.Resolve(m)
		}
		spec.NewConstructor(db, c.Name(db), members, c.Location(db))
	}
	return spec
}

// SpecializeMethod returns the version of method for the given shapes,
// creating it on first use. The copy has the same arguments and return
// type; rewriting its body is up to the caller.
func (s *Specializer) SpecializeMethod(method MethodID, shapes []Shape) MethodID {
	db := s.db
	if id, ok := method.Specialization(db, shapes); ok {
		return id
	}

	spec := method.CloneForSpecialization(db)
	spec.SetShapes(db, shapes)
	spec.SetReceiver(db, method.Receiver(db))
	for _, arg := range method.Arguments(db) {
		spec.AddArgument(db, arg)
	}
	spec.SetReturnType(db, method.ReturnType(db))
	method.AddSpecialization(db, shapes, spec)
	return spec
}
