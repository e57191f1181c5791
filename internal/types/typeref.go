package types

// RefKind is the ownership qualifier of a TypeRef, or one of the special
// types that don't wrap a TypeID.
type RefKind uint8

const (
	// RefUnknown is a type that isn't known yet. It's the zero value.
	RefUnknown RefKind = iota
	RefOwned
	RefUni
	RefRef
	RefMut
	RefUniRef
	RefUniMut
	// RefAny is a type parameter whose ownership can be anything.
	RefAny
	RefPointer
	// RefNever is the type of expressions that never produce a value.
	RefNever
	// RefError is produced wherever a type couldn't be determined.
	RefError
	RefPlaceholder
)

// TypeRef is a type together with its ownership.
type TypeRef struct {
	kind RefKind
	own  Ownership
	id   TypeID
}

func OwnedOf(id TypeID) TypeRef  { return TypeRef{kind: RefOwned, id: id} }
func UniOf(id TypeID) TypeRef    { return TypeRef{kind: RefUni, id: id} }
func RefOf(id TypeID) TypeRef    { return TypeRef{kind: RefRef, id: id} }
func MutOf(id TypeID) TypeRef    { return TypeRef{kind: RefMut, id: id} }
func UniRefOf(id TypeID) TypeRef { return TypeRef{kind: RefUniRef, id: id} }
func UniMutOf(id TypeID) TypeRef { return TypeRef{kind: RefUniMut, id: id} }
func AnyOf(id TypeID) TypeRef    { return TypeRef{kind: RefAny, id: id} }
func PointerTo(id TypeID) TypeRef {
	return TypeRef{kind: RefPointer, id: id}
}

func Never() TypeRef     { return TypeRef{kind: RefNever} }
func ErrorType() TypeRef { return TypeRef{kind: RefError} }
func Unknown() TypeRef   { return TypeRef{} }

func PlaceholderRef(id TypePlaceholderID) TypeRef {
	return TypeRef{kind: RefPlaceholder, own: id.ownership, id: TypeID{id: id.id}}
}

// NewPlaceholder allocates a placeholder and returns a reference to it.
func NewPlaceholder(db *Database, required ...TypeParameterID) TypeRef {
	return PlaceholderRef(db.AllocPlaceholder(required...))
}

func owned(cls ClassID) TypeRef { return OwnedOf(ClassInstanceType(NewClassInstance(cls))) }

func Nil() TypeRef       { return owned(NilClassID) }
func Boolean() TypeRef   { return owned(BoolClassID) }
func Int() TypeRef       { return owned(IntClassID) }
func Float() TypeRef     { return owned(FloatClassID) }
func String() TypeRef    { return owned(StringClassID) }
func ByteArray() TypeRef { return owned(ByteArrayClassID) }

// IntWithSign returns Int for signed 64 bits integers, and a foreign integer
// type otherwise.
func IntWithSign(bits uint32, sign Sign) TypeRef {
	if sign == Signed && bits == 64 {
		return Int()
	}
	return OwnedOf(ForeignIntType(bits, sign))
}

func FloatWithSize(bits uint32) TypeRef {
	if bits == 64 {
		return Float()
	}
	return OwnedOf(ForeignFloatType(bits))
}

func ForeignInt(bits uint32, sign Sign) TypeRef { return OwnedOf(ForeignIntType(bits, sign)) }
func ForeignFloat(bits uint32) TypeRef          { return OwnedOf(ForeignFloatType(bits)) }

func ModuleRef(id ModuleID) TypeRef { return OwnedOf(ModuleType(id)) }

func (r TypeRef) Kind() RefKind { return r.kind }

func (r TypeRef) placeholder() TypePlaceholderID {
	return TypePlaceholderID{id: r.id.id, ownership: r.own}
}

// Placeholder returns the placeholder r refers to.
func (r TypeRef) Placeholder() (TypePlaceholderID, bool) {
	return r.placeholder(), r.kind == RefPlaceholder
}

// wrapsTypeID reports kinds that carry a TypeID.
func (k RefKind) wrapsTypeID() bool { return k >= RefOwned && k <= RefPointer }

// qualified reports kinds that carry a TypeID, except pointers.
func (k RefKind) qualified() bool { return k >= RefOwned && k <= RefAny }

// resolve applies f to the value of a placeholder, returning def when it
// isn't resolved.
func resolve[T any](db *Database, r TypeRef, def T, f func(TypeRef) T) T {
	if v, ok := r.placeholder().Value(db); ok {
		return f(v)
	}
	return def
}

// TypeID returns the type ID of r, following placeholders.
func (r TypeRef) TypeID(db *Database) (TypeID, bool) {
	switch {
	case r.kind.wrapsTypeID():
		return r.id, true
	case r.kind == RefPlaceholder:
		if v, ok := r.placeholder().Value(db); ok {
			return v.TypeID(db)
		}
	}
	return TypeID{}, false
}

func (r TypeRef) ClosureID(db *Database) (ClosureID, bool) {
	if id, ok := r.TypeID(db); ok {
		return id.Closure()
	}
	return 0, false
}

func (r TypeRef) classInstance() (ClassInstance, bool) {
	return r.id.classInstance(), r.kind.wrapsTypeID() && r.id.kind == typeIDClassInstance
}

func (r TypeRef) IsNever(db *Database) bool {
	switch r.kind {
	case RefNever:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsNever(db) })
	}
	return false
}

func (r TypeRef) AllowInArray(db *Database) bool {
	switch r.kind {
	case RefUniRef, RefUniMut:
		return false
	case RefPlaceholder:
		return resolve(db, r, true, func(v TypeRef) bool { return v.AllowInArray(db) })
	}
	return !r.IsForeignType(db)
}

func (r TypeRef) IsForeignType(db *Database) bool {
	switch r.kind {
	case RefOwned:
		if ins, ok := r.classInstance(); ok {
			return ins.instanceOf.IsExtern(db)
		}
		return r.id.IsForeign()
	case RefPointer:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsForeignType(db) })
	}
	return false
}

func (r TypeRef) IsExternInstance(db *Database) bool {
	if r.kind != RefOwned && r.kind != RefUni {
		return false
	}
	ins, ok := r.classInstance()
	return ok && ins.instanceOf.IsExtern(db)
}

func (r TypeRef) IsPointer(db *Database) bool {
	switch r.kind {
	case RefPointer:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsPointer(db) })
	}
	return false
}

func (r TypeRef) IsError(db *Database) bool {
	switch r.kind {
	case RefError:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsError(db) })
	}
	return false
}

// IsPresent reports whether the type produces a value.
func (r TypeRef) IsPresent(db *Database) bool {
	switch r.kind {
	case RefNever:
		return false
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsPresent(db) })
	}
	return true
}

func (r TypeRef) IsOwnedOrUni(db *Database) bool {
	switch r.kind {
	case RefOwned, RefUni, RefAny:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsOwnedOrUni(db) })
	}
	return false
}

func (r TypeRef) IsOwned(db *Database) bool {
	switch r.kind {
	case RefOwned:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsOwned(db) })
	}
	return false
}

func (r TypeRef) IsTypeParameter(db *Database) bool {
	switch {
	case r.kind.qualified():
		return r.id.isParameterLike()
	case r.kind == RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsTypeParameter(db) })
	}
	return false
}

func (r TypeRef) IsRigidTypeParameter(db *Database) bool {
	id, ok := r.TypeID(db)
	return ok && id.kind == typeIDRigidTypeParameter
}

func (r TypeRef) IsTraitInstance(db *Database) bool {
	switch {
	case r.kind.qualified() && r.kind != RefAny:
		return r.id.kind == typeIDTraitInstance
	case r.kind == RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsTraitInstance(db) })
	}
	return false
}

// TypeArguments returns a copy of the arguments of a generic instance. For
// type parameters these are the arguments of their generic requirements,
// including what those inherit.
func (r TypeRef) TypeArguments(db *Database) TypeArguments {
	id, ok := r.TypeID(db)
	if !ok {
		return NewTypeArguments()
	}

	switch id.kind {
	case typeIDTraitInstance:
		return ForTrait(db, id.traitInstance())
	case typeIDClassInstance:
		return ForClass(db, id.classInstance())
	case typeIDTypeParameter, typeIDRigidTypeParameter:
		out := NewTypeArguments()
		for _, req := range TypeParameterID(id.id).Requirements(db) {
			if !req.instanceOf.IsGeneric(db) {
				continue
			}
			if args, ok := req.TypeArguments(db); ok {
				args.CopyInto(&out)
			}
			req.instanceOf.get(db).inherited.CopyInto(&out)
		}
		return out
	}
	return NewTypeArguments()
}

func (r TypeRef) IsUni(db *Database) bool {
	switch r.kind {
	case RefUni:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsUni(db) })
	}
	return false
}

func (r TypeRef) RequireSendableArguments(db *Database) bool {
	switch r.kind {
	case RefUni, RefUniRef, RefUniMut:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.RequireSendableArguments(db) })
	}
	return false
}

func (r TypeRef) IsSendableRef(db *Database) bool {
	switch r.kind {
	case RefRef, RefUniRef:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsSendableRef(db) })
	}
	return false
}

func (r TypeRef) IsRef(db *Database) bool {
	switch r.kind {
	case RefRef:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsRef(db) })
	}
	return false
}

func (r TypeRef) IsMut(db *Database) bool {
	switch r.kind {
	case RefMut:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsMut(db) })
	}
	return false
}

func (r TypeRef) IsRefOrMut(db *Database) bool {
	switch r.kind {
	case RefRef, RefMut:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsRefOrMut(db) })
	}
	return false
}

func (r TypeRef) HasOwnership(db *Database) bool {
	switch r.kind {
	case RefOwned, RefUni, RefRef, RefMut, RefPointer:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.HasOwnership(db) })
	}
	return false
}

func (r TypeRef) UseReferenceCounting(db *Database) bool {
	switch r.kind {
	case RefRef, RefMut, RefUniRef, RefUniMut:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.UseReferenceCounting(db) })
	}
	return false
}

func (r TypeRef) UseAtomicReferenceCounting(db *Database) bool {
	cls, ok := r.ClassID(db)
	return ok && cls.IsAtomic(db)
}

func (r TypeRef) isInstanceOf(db *Database, cls ClassID) bool {
	id, ok := r.ClassID(db)
	return ok && id == cls
}

func (r TypeRef) IsBool(db *Database) bool   { return r.isInstanceOf(db, BoolClassID) }
func (r TypeRef) IsInt(db *Database) bool    { return r.isInstanceOf(db, IntClassID) }
func (r TypeRef) IsString(db *Database) bool { return r.isInstanceOf(db, StringClassID) }
func (r TypeRef) IsNil(db *Database) bool    { return r.isInstanceOf(db, NilClassID) }

func (r TypeRef) AllowMoving(db *Database) bool {
	switch r.kind {
	case RefOwned, RefUni:
		return true
	case RefUniRef, RefUniMut:
		ins, ok := r.classInstance()
		return ok && ins.instanceOf.IsStackAllocated(db)
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.AllowMoving(db) })
	}
	return false
}

func (r TypeRef) AllowMutating(db *Database) bool {
	switch r.kind {
	case RefOwned, RefMut:
		if ins, ok := r.classInstance(); ok {
			return ins.instanceOf.AllowMutating(db)
		}
		return true
	case RefUni, RefUniMut, RefPointer:
		return true
	case RefAny:
		if p, ok := r.id.anyTypeParameter(); ok {
			return p.IsMutable(db)
		}
	case RefRef:
		if ins, ok := r.classInstance(); ok {
			return ins.instanceOf.IsValueType(db) && !ins.instanceOf.Kind(db).IsAsync()
		}
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.AllowMutating(db) })
	}
	return false
}

func (r TypeRef) AsClassInstanceForPatternMatching(db *Database) (ClassInstance, bool) {
	switch r.kind {
	case RefOwned, RefUni, RefMut, RefRef:
		if ins, ok := r.classInstance(); ok && ins.instanceOf.Kind(db).AllowPatternMatching() {
			return ins, true
		}
	case RefPlaceholder:
		if v, ok := r.placeholder().Value(db); ok {
			return v.AsClassInstanceForPatternMatching(db)
		}
	}
	return ClassInstance{}, false
}

func (r TypeRef) IsUniRef(db *Database) bool {
	switch r.kind {
	case RefUniRef, RefUniMut:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsUniRef(db) })
	}
	return false
}

// IsSendable reports whether values of the type may be sent to another
// process.
func (r TypeRef) IsSendable(db *Database) bool {
	switch r.kind {
	case RefUni, RefNever, RefError:
		return true
	case RefOwned:
		if c, ok := r.id.Closure(); ok {
			return c.CanInferAsUni(db)
		}
	case RefPlaceholder:
		return resolve(db, r, true, func(v TypeRef) bool { return v.IsSendable(db) })
	}
	return r.IsValueType(db)
}

// IsSendableOutput reports whether a value returned from an async method can
// be sent back.
func (r TypeRef) IsSendableOutput(db *Database) bool {
	switch r.kind {
	case RefUni, RefNever, RefError:
		return true
	case RefOwned:
		ins, ok := r.classInstance()
		if !ok {
			break
		}
		cls := ins.instanceOf
		if cls.IsGeneric(db) {
			args, _ := ins.TypeArguments(db)
			for _, pair := range args.Pairs() {
				if !pair.Value.IsSendableOutput(db) {
					return false
				}
			}
		}
		for _, f := range cls.Fields(db) {
			if !f.ValueType(db).IsSendableOutput(db) {
				return false
			}
		}
		return true
	case RefPlaceholder:
		return resolve(db, r, true, func(v TypeRef) bool { return v.IsSendableOutput(db) })
	}
	return r.IsValueType(db)
}

func (r TypeRef) AllowAsRef(db *Database) bool {
	switch r.kind {
	case RefOwned, RefMut, RefRef, RefUni, RefAny, RefError:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.AllowAsRef(db) })
	}
	return false
}

func (r TypeRef) AsEnumInstance(db *Database) (ClassInstance, bool) {
	switch r.kind {
	case RefOwned, RefUni, RefRef, RefMut:
		if ins, ok := r.classInstance(); ok && ins.instanceOf.IsEnum(db) {
			return ins, true
		}
	}
	return ClassInstance{}, false
}

func (r TypeRef) AsTraitInstance(db *Database) (TraitInstance, bool) {
	if id, ok := r.TypeID(db); ok {
		return id.TraitInstance()
	}
	return TraitInstance{}, false
}

func (r TypeRef) AsClassInstance(db *Database) (ClassInstance, bool) {
	if id, ok := r.TypeID(db); ok {
		return id.ClassInstance()
	}
	return ClassInstance{}, false
}

// AsClass returns the class of a type used as a static receiver, including
// the class of a module.
func (r TypeRef) AsClass(db *Database) (ClassID, bool) {
	if r.kind != RefOwned {
		return 0, false
	}
	switch r.id.kind {
	case typeIDClass:
		return ClassID(r.id.id), true
	case typeIDModule:
		return ModuleID(r.id.id).Class(db), true
	}
	return 0, false
}

func (r TypeRef) AsTypeParameter(db *Database) (TypeParameterID, bool) {
	switch r.kind {
	case RefOwned, RefUni, RefRef, RefMut, RefAny:
		if p, ok := r.id.anyTypeParameter(); ok {
			return p, true
		}
	case RefUniRef, RefUniMut:
		return r.id.RigidTypeParameter()
	case RefPlaceholder:
		if v, ok := r.placeholder().Value(db); ok {
			return v.AsTypeParameter(db)
		}
	}
	return 0, false
}

func (r TypeRef) Fields(db *Database) []FieldID {
	switch {
	case r.kind.qualified() && r.kind != RefAny:
		if ins, ok := r.classInstance(); ok {
			return ins.instanceOf.Fields(db)
		}
	case r.kind == RefPlaceholder:
		if v, ok := r.placeholder().Value(db); ok {
			return v.Fields(db)
		}
	}
	return nil
}

// AsRigidType replaces every type parameter in r with its rigid version,
// using bounds where present.
func (r TypeRef) AsRigidType(db *Database, bounds *TypeBounds) TypeRef {
	empty := NewTypeArguments()
	return NewTypeResolver(db, &empty, bounds).WithRigid(true).Resolve(r)
}

// AsRigidTypeParameter turns a reference to a type parameter into one to its
// rigid version, keeping the ownership.
func (r TypeRef) AsRigidTypeParameter() TypeRef {
	if r.kind.qualified() && r.id.kind == typeIDTypeParameter {
		r.id.kind = typeIDRigidTypeParameter
	}
	return r
}

// IsValueType reports types that are copied rather than moved: stack
// allocated and atomic classes, foreign types, pointers, and modules.
func (r TypeRef) IsValueType(db *Database) bool {
	switch r.kind {
	case RefOwned, RefRef, RefMut, RefUniRef, RefUniMut, RefUni:
		if ins, ok := r.classInstance(); ok {
			return ins.instanceOf.IsValueType(db)
		}
		switch r.id.kind {
		case typeIDModule:
			return r.kind == RefOwned || r.kind == RefRef || r.kind == RefMut
		case typeIDForeignInt, typeIDForeignFloat:
			return r.kind == RefOwned
		}
	case RefPointer:
		return true
	case RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsValueType(db) })
	}
	return false
}

func (r TypeRef) IsStackAllocated(db *Database) bool {
	switch {
	case r.kind.qualified():
		switch r.id.kind {
		case typeIDClassInstance:
			return ClassID(r.id.id).IsStackAllocated(db)
		case typeIDTypeParameter, typeIDRigidTypeParameter:
			return TypeParameterID(r.id.id).IsStack(db)
		case typeIDForeignInt, typeIDForeignFloat:
			return true
		}
		return false
	case r.kind == RefError || r.kind == RefPointer:
		return true
	case r.kind == RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsStackAllocated(db) })
	}
	return false
}

// IsInferred reports whether the type no longer contains unresolved
// placeholders.
func (r TypeRef) IsInferred(db *Database) bool {
	switch {
	case r.kind.qualified():
		switch r.id.kind {
		case typeIDClassInstance:
			ins := r.id.classInstance()
			if ins.instanceOf.IsGeneric(db) {
				args, _ := ins.TypeArguments(db)
				return argumentsInferred(db, args)
			}
		case typeIDTraitInstance:
			ins := r.id.traitInstance()
			if ins.instanceOf.IsGeneric(db) {
				args, _ := ins.TypeArguments(db)
				return argumentsInferred(db, args)
			}
		case typeIDClosure:
			c := ClosureID(r.id.id)
			for _, arg := range c.Arguments(db) {
				if !arg.ValueType.IsInferred(db) {
					return false
				}
			}
			return c.ReturnType(db).IsInferred(db)
		}
		return true
	case r.kind == RefPlaceholder:
		return resolve(db, r, false, func(v TypeRef) bool { return v.IsInferred(db) })
	}
	return true
}

func argumentsInferred(db *Database, args *TypeArguments) bool {
	if args == nil {
		return true
	}
	for _, v := range args.mapping {
		if !v.IsInferred(db) {
			return false
		}
	}
	return true
}

// ClassID returns the class of instances, classes, modules and pointers to
// instances.
func (r TypeRef) ClassID(db *Database) (ClassID, bool) {
	switch {
	case r.kind.qualified() && r.kind != RefAny, r.kind == RefPointer:
		if ins, ok := r.classInstance(); ok {
			return ins.instanceOf, true
		}
		if r.kind == RefOwned {
			return r.AsClass(db)
		}
	case r.kind == RefPlaceholder:
		if v, ok := r.placeholder().Value(db); ok {
			return v.ClassID(db)
		}
	}
	return 0, false
}

// ThrowKind describes how a value of the type signals an error. It requires
// std.option and std.result to be registered for class instances.
func (r TypeRef) ThrowKind(db *Database) ThrowKind {
	switch {
	case r.kind.qualified() && r.kind != RefAny:
		ins, ok := r.classInstance()
		if !ok {
			break
		}
		opt := db.ClassInModule(OptionModule, OptionClass)
		res := db.ClassInModule(ResultModule, ResultClass)
		params := ins.instanceOf.TypeParameters(db)

		switch ins.instanceOf {
		case res:
			args, _ := ins.TypeArguments(db)
			ok, _ := args.Get(params[0])
			err, _ := args.Get(params[1])
			return ThrowKind{Tag: ThrowResult, Ok: ok, Error: err}
		case opt:
			args, _ := ins.TypeArguments(db)
			some, _ := args.Get(params[0])
			return ThrowKind{Tag: ThrowOption, Ok: some}
		}
	case r.kind == RefPlaceholder:
		p := r.placeholder()
		if v, ok := p.Value(db); ok {
			return v.ThrowKind(db)
		}
		return ThrowKind{Tag: ThrowInfer, Placeholder: p}
	}
	return ThrowKind{}
}

// ResultType returns an owned std.result.Result[ok, err].
func ResultType(db *Database, ok, err TypeRef) TypeRef {
	cls := db.ClassInModule(ResultModule, ResultClass)
	params := cls.TypeParameters(db)
	args := NewTypeArguments()
	args.Assign(params[0], ok)
	args.Assign(params[1], err)
	return OwnedOf(ClassInstanceType(GenericClass(db, cls, args)))
}

// OptionType returns an owned std.option.Option[some].
func OptionType(db *Database, some TypeRef) TypeRef {
	cls := db.ClassInModule(OptionModule, OptionClass)
	params := cls.TypeParameters(db)
	args := NewTypeArguments()
	args.Assign(params[0], some)
	return OwnedOf(ClassInstanceType(GenericClass(db, cls, args)))
}

func (r TypeRef) IsSignedInt(db *Database) bool {
	id, ok := r.TypeID(db)
	if !ok {
		return false
	}
	switch id.kind {
	case typeIDForeignInt:
		return id.sign == Signed
	case typeIDClassInstance:
		return ClassID(id.id) == IntClassID
	}
	return false
}
