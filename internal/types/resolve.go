package types

// maxResolveDepth bounds substitution through parameters assigned to types
// that mention themselves.
const maxResolveDepth = 64

// TypeResolver substitutes type arguments through a type.
//
// Parameters without an argument are left as is, or turned into rigid
// parameters when the resolver is rigid. Bounds replace a parameter with the
// parameter that carries its additional requirements before any lookup.
type TypeResolver struct {
	db        *Database
	arguments *TypeArguments
	bounds    *TypeBounds
	rigid     bool
	immutable bool
	owned     bool
	depth     int
}

func NewTypeResolver(db *Database, arguments *TypeArguments, bounds *TypeBounds) *TypeResolver {
	return &TypeResolver{db: db, arguments: arguments, bounds: bounds}
}

func (r *TypeResolver) WithRigid(v bool) *TypeResolver {
	r.rigid = v
	return r
}

// WithImmutable makes mutable borrows in the result immutable.
func (r *TypeResolver) WithImmutable(v bool) *TypeResolver {
	r.immutable = v
	return r
}

// WithOwned makes owned parameters resolve to owned values, regardless of
// the ownership of the assigned type.
func (r *TypeResolver) WithOwned(v bool) *TypeResolver {
	r.owned = v
	return r
}

func (r *TypeResolver) Resolve(typ TypeRef) TypeRef {
	out := r.resolveRef(typ)
	if !r.immutable {
		return out
	}

	switch out.kind {
	case RefMut:
		out.kind = RefRef
	case RefUniMut:
		out.kind = RefUniRef
	}
	return out
}

func (r *TypeResolver) resolveRef(typ TypeRef) TypeRef {
	if r.depth >= maxResolveDepth {
		return typ
	}
	r.depth++
	defer func() { r.depth-- }()

	db := r.db
	switch typ.kind {
	case RefPlaceholder:
		if v, ok := typ.placeholder().Value(db); ok {
			return r.resolveRef(v)
		}
		return typ
	case RefOwned:
		id, sub, ok := r.resolveID(typ.id)
		switch {
		case !ok:
			return OwnedOf(id)
		case r.owned:
			return sub.AsOwned(db)
		}
		return sub
	case RefAny:
		id, sub, ok := r.resolveID(typ.id)
		if ok {
			return sub
		}
		return AnyOf(id)
	case RefUni:
		return r.qualify(typ, TypeRef.AsUni)
	case RefRef:
		return r.qualify(typ, TypeRef.AsRef)
	case RefMut:
		return r.qualify(typ, TypeRef.AsMut)
	case RefUniRef:
		return r.qualify(typ, TypeRef.AsUniRef)
	case RefUniMut:
		return r.qualify(typ, TypeRef.AsUniMut)
	case RefPointer:
		return r.qualify(typ, TypeRef.AsPointer)
	}
	return typ
}

// qualify resolves the wrapped type ID. A parameter replaced by a full type
// gets the ownership of typ through convert.
func (r *TypeResolver) qualify(typ TypeRef, convert func(TypeRef, *Database) TypeRef) TypeRef {
	id, sub, ok := r.resolveID(typ.id)
	if ok {
		return convert(sub, r.db)
	}
	return TypeRef{kind: typ.kind, id: id}
}

// resolveID returns either a new type ID, or a complete type when id is a
// parameter with an assigned value.
func (r *TypeResolver) resolveID(id TypeID) (TypeID, TypeRef, bool) {
	db := r.db
	switch id.kind {
	case typeIDClassInstance:
		ins := id.classInstance()
		if !ins.instanceOf.IsGeneric(db) {
			return id, TypeRef{}, false
		}
		args := ForClass(db, ins)
		r.resolveArguments(&args)
		return ClassInstanceType(GenericClass(db, ins.instanceOf, args)), TypeRef{}, false
	case typeIDTraitInstance:
		ins := id.traitInstance()
		if !ins.instanceOf.IsGeneric(db) {
			return id, TypeRef{}, false
		}
		args := ForTrait(db, ins)
		r.resolveArguments(&args)
		return TraitInstanceType(GenericTrait(db, ins.instanceOf, args)), TypeRef{}, false
	case typeIDTypeParameter, typeIDRigidTypeParameter:
		return r.resolveParameter(id)
	case typeIDClosure:
		return ClosureType(r.resolveClosure(ClosureID(id.id))), TypeRef{}, false
	}
	return id, TypeRef{}, false
}

func (r *TypeResolver) resolveArguments(args *TypeArguments) {
	args.Update(r.resolveRef)
}

func (r *TypeResolver) resolveParameter(id TypeID) (TypeID, TypeRef, bool) {
	p := TypeParameterID(id.id)
	if r.bounds != nil {
		if bound, ok := r.bounds.Get(p); ok {
			p = bound
		}
	}

	if r.arguments != nil {
		if v, ok := r.arguments.GetRecursive(r.db, p); ok {
			// A parameter assigned to itself stays a parameter.
			if pid, isParam := v.AsTypeParameter(r.db); !isParam || pid != p {
				return TypeID{}, r.resolveRef(v), true
			}
		}
	}

	if r.rigid {
		return RigidTypeParameterType(p), TypeRef{}, false
	}
	id.id = uint32(p)
	return id, TypeRef{}, false
}

// resolveClosure returns a copy of the closure with its argument and return
// types resolved, or the closure itself if nothing changes.
func (r *TypeResolver) resolveClosure(c ClosureID) ClosureID {
	db := r.db
	args := c.Arguments(db)
	resolved := make([]TypeRef, len(args))
	changed := false
	for i, arg := range args {
		resolved[i] = r.resolveRef(arg.ValueType)
		changed = changed || resolved[i] != arg.ValueType
	}
	ret := r.resolveRef(c.ReturnType(db))
	if !changed && ret == c.ReturnType(db) {
		return c
	}

	nc := db.AllocClosure(c.IsMoving(db))
	decl := nc.get(db)
	for i, arg := range args {
		arg.ValueType = resolved[i]
		decl.arguments.insert(arg.Name, arg)
	}
	decl.returnType = ret
	return nc
}
