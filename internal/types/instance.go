package types

// ClassInstance is a class together with the index of its type arguments.
// Instances created without arguments use index 0, an empty list that is
// never written to. After Compact no instance has type arguments.
type ClassInstance struct {
	instanceOf    ClassID
	typeArguments uint32
}

func NewClassInstance(of ClassID) ClassInstance {
	return ClassInstance{instanceOf: of}
}

// GenericClass stores the arguments in the database and returns an instance
// referring to them.
func GenericClass(db *Database, of ClassID, args TypeArguments) ClassInstance {
	return ClassInstance{instanceOf: of, typeArguments: db.addTypeArguments(args)}
}

// RigidClass returns an instance whose parameters are assigned rigid versions
// of themselves, or of their bounds when present.
func RigidClass(db *Database, of ClassID, bounds *TypeBounds) ClassInstance {
	if !of.IsGeneric(db) {
		return NewClassInstance(of)
	}

	args := NewTypeArguments()
	for _, param := range of.TypeParameters(db) {
		args.Assign(param, boundOrSelf(bounds, param).AsRigid())
	}
	return GenericClass(db, of, args)
}

// ClassWithTypes assigns the given types to the parameters of the class in
// order. Parameters without a type get a fresh placeholder.
func ClassWithTypes(db *Database, of ClassID, types []TypeRef) ClassInstance {
	args := NewTypeArguments()
	for i, param := range of.TypeParameters(db) {
		if i < len(types) {
			args.Assign(param, types[i])
		} else {
			args.Assign(param, PlaceholderRef(db.AllocPlaceholder(param)))
		}
	}
	return GenericClass(db, of, args)
}

// EmptyClass returns an instance with a placeholder for every parameter.
func EmptyClass(db *Database, of ClassID) ClassInstance {
	if !of.IsGeneric(db) {
		return NewClassInstance(of)
	}

	args := NewTypeArguments()
	for _, param := range of.TypeParameters(db) {
		args.Assign(param, PlaceholderRef(db.AllocPlaceholder(param)))
	}
	return GenericClass(db, of, args)
}

func (i ClassInstance) InstanceOf() ClassID { return i.instanceOf }

// TypeArgumentsIndex returns the raw index into the type arguments table.
func (i ClassInstance) TypeArgumentsIndex() uint32 { return i.typeArguments }

func (i ClassInstance) TypeArguments(db *Database) (*TypeArguments, bool) {
	if int(i.typeArguments) >= len(db.typeArguments) {
		return nil, false
	}
	return &db.typeArguments[i.typeArguments], true
}

func (i ClassInstance) Method(db *Database, name string) (MethodID, bool) {
	return i.instanceOf.Method(db, name)
}

// OrderedTypeArguments returns the arguments in parameter order, Unknown for
// unassigned parameters.
func (i ClassInstance) OrderedTypeArguments(db *Database) []TypeRef {
	params := i.instanceOf.TypeParameters(db)
	args, ok := i.TypeArguments(db)
	if !ok {
		panic("types: ordered type arguments of an instance without arguments")
	}

	out := make([]TypeRef, 0, len(params))
	for _, p := range params {
		v, ok := args.Get(p)
		if !ok {
			v = Unknown()
		}
		out = append(out, v)
	}
	return out
}

func (i ClassInstance) CopyNewArgumentsFrom(db *Database, from *TypeArguments) {
	if !i.instanceOf.IsGeneric(db) || i.typeArguments == 0 {
		return
	}
	params := i.instanceOf.TypeParameters(db)
	from.CopyAssignedInto(params, &db.typeArguments[i.typeArguments])
}

func (i ClassInstance) CopyTypeArgumentsInto(db *Database, target *TypeArguments) {
	if !i.instanceOf.IsGeneric(db) {
		return
	}
	if args, ok := i.TypeArguments(db); ok {
		args.CopyInto(target)
	}
}

// Shape returns the shape of values of this instance when owned. Stack
// allocated generic instances are interned so equal instances share a shape.
func (i ClassInstance) Shape(db *Database, interned *InternedTypeArguments, def Shape) Shape {
	switch i.instanceOf {
	case IntClassID:
		return IntShape(64, Signed)
	case FloatClassID:
		return FloatShape(64)
	case BoolClassID:
		return BooleanShape()
	case NilClassID:
		return NilShape()
	case StringClassID:
		return StringShape()
	}

	switch {
	case i.instanceOf.IsAtomic(db):
		return AtomicShape()
	case i.instanceOf.IsStackAllocated(db):
		var args uint32
		if i.instanceOf.IsGeneric(db) {
			args = interned.Intern(db, i)
		}
		return StackShape(ClassInstance{instanceOf: i.instanceOf, typeArguments: args})
	default:
		return def
	}
}

func (i ClassInstance) namedType(db *Database, name string) (Symbol, bool) {
	return i.instanceOf.namedType(db, name)
}
