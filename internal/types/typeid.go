package types

type Sign uint8

const (
	Signed Sign = iota
	Unsigned
)

func (s Sign) IsSigned() bool { return s == Signed }

type typeIDKind uint8

const (
	typeIDClass typeIDKind = iota
	typeIDTrait
	typeIDModule
	typeIDClassInstance
	typeIDTraitInstance
	typeIDTypeParameter
	typeIDRigidTypeParameter
	// typeIDAtomicTypeParameter is only produced by specialization, for
	// parameters assigned atomically reference counted types.
	typeIDAtomicTypeParameter
	typeIDClosure
	typeIDForeignInt
	typeIDForeignFloat
)

// TypeID identifies a type without ownership. For instances args is the type
// arguments index; for foreign types id holds the size in bits.
type TypeID struct {
	kind typeIDKind
	sign Sign
	id   uint32
	args uint32
}

func ClassType(id ClassID) TypeID   { return TypeID{kind: typeIDClass, id: uint32(id)} }
func TraitType(id TraitID) TypeID   { return TypeID{kind: typeIDTrait, id: uint32(id)} }
func ModuleType(id ModuleID) TypeID { return TypeID{kind: typeIDModule, id: uint32(id)} }

func ClassInstanceType(ins ClassInstance) TypeID {
	return TypeID{kind: typeIDClassInstance, id: uint32(ins.instanceOf), args: ins.typeArguments}
}

func TraitInstanceType(ins TraitInstance) TypeID {
	return TypeID{kind: typeIDTraitInstance, id: uint32(ins.instanceOf), args: ins.typeArguments}
}

func TypeParameterType(id TypeParameterID) TypeID {
	return TypeID{kind: typeIDTypeParameter, id: uint32(id)}
}

func RigidTypeParameterType(id TypeParameterID) TypeID {
	return TypeID{kind: typeIDRigidTypeParameter, id: uint32(id)}
}

func AtomicTypeParameterType(id TypeParameterID) TypeID {
	return TypeID{kind: typeIDAtomicTypeParameter, id: uint32(id)}
}

func ClosureType(id ClosureID) TypeID { return TypeID{kind: typeIDClosure, id: uint32(id)} }

func ForeignIntType(bits uint32, sign Sign) TypeID {
	return TypeID{kind: typeIDForeignInt, id: bits, sign: sign}
}

func ForeignFloatType(bits uint32) TypeID {
	return TypeID{kind: typeIDForeignFloat, id: bits}
}

func (t TypeID) classInstance() ClassInstance {
	return ClassInstance{instanceOf: ClassID(t.id), typeArguments: t.args}
}

func (t TypeID) traitInstance() TraitInstance {
	return TraitInstance{instanceOf: TraitID(t.id), typeArguments: t.args}
}

func (t TypeID) Class() (ClassID, bool)   { return ClassID(t.id), t.kind == typeIDClass }
func (t TypeID) Trait() (TraitID, bool)   { return TraitID(t.id), t.kind == typeIDTrait }
func (t TypeID) Module() (ModuleID, bool) { return ModuleID(t.id), t.kind == typeIDModule }
func (t TypeID) Closure() (ClosureID, bool) {
	return ClosureID(t.id), t.kind == typeIDClosure
}

func (t TypeID) ClassInstance() (ClassInstance, bool) {
	return t.classInstance(), t.kind == typeIDClassInstance
}

func (t TypeID) TraitInstance() (TraitInstance, bool) {
	return t.traitInstance(), t.kind == typeIDTraitInstance
}

func (t TypeID) TypeParameter() (TypeParameterID, bool) {
	return TypeParameterID(t.id), t.kind == typeIDTypeParameter
}

func (t TypeID) RigidTypeParameter() (TypeParameterID, bool) {
	return TypeParameterID(t.id), t.kind == typeIDRigidTypeParameter
}

func (t TypeID) AtomicTypeParameter() (TypeParameterID, bool) {
	return TypeParameterID(t.id), t.kind == typeIDAtomicTypeParameter
}

// anyTypeParameter returns the parameter of a regular or rigid type parameter.
func (t TypeID) anyTypeParameter() (TypeParameterID, bool) {
	ok := t.kind == typeIDTypeParameter || t.kind == typeIDRigidTypeParameter
	return TypeParameterID(t.id), ok
}

func (t TypeID) isParameterLike() bool {
	switch t.kind {
	case typeIDTypeParameter, typeIDRigidTypeParameter, typeIDAtomicTypeParameter:
		return true
	default:
		return false
	}
}

// ForeignInt returns the size and sign of a foreign integer type.
func (t TypeID) ForeignInt() (uint32, Sign, bool) {
	return t.id, t.sign, t.kind == typeIDForeignInt
}

func (t TypeID) ForeignFloat() (uint32, bool) {
	return t.id, t.kind == typeIDForeignFloat
}

func (t TypeID) IsForeign() bool {
	return t.kind == typeIDForeignInt || t.kind == typeIDForeignFloat
}

// IsInstance reports whether values of the type are instances rather than
// classes, traits or modules.
func (t TypeID) IsInstance() bool {
	switch t.kind {
	case typeIDClass, typeIDTrait, typeIDModule:
		return false
	default:
		return true
	}
}

// NamedType looks up a type-level symbol. For modules this marks the symbol
// as used.
func (t TypeID) NamedType(db *Database, name string) (Symbol, bool) {
	switch t.kind {
	case typeIDModule:
		return ModuleID(t.id).UseSymbol(db, name)
	case typeIDTrait:
		return TraitID(t.id).namedType(db, name)
	case typeIDClass:
		return ClassID(t.id).namedType(db, name)
	case typeIDClassInstance:
		return t.classInstance().namedType(db, name)
	case typeIDTraitInstance:
		return t.traitInstance().namedType(db, name)
	default:
		return Symbol{}, false
	}
}

// LookupMethod finds a method callable on the type from module. Modules fall
// back to their extern methods.
func (t TypeID) LookupMethod(db *Database, name string, module ModuleID, allowTypePrivate bool) MethodLookup {
	id, ok := t.Method(db, name)
	if !ok {
		if m, isMod := t.Module(); isMod {
			if ext, found := m.ExternMethod(db, name); found {
				return MethodLookup{Kind: LookupOk, Method: ext}
			}
		}
		return MethodLookup{}
	}

	static := id.Kind(db).IsStatic()
	switch {
	case t.IsInstance() && static:
		return MethodLookup{Kind: LookupStaticOnInstance, Method: id}
	case !t.IsInstance() && !static:
		return MethodLookup{Kind: LookupInstanceOnStatic, Method: id}
	case t.CanCall(db, id, module, allowTypePrivate):
		return MethodLookup{Kind: LookupOk, Method: id}
	default:
		return MethodLookup{Kind: LookupPrivate, Method: id}
	}
}

func (t TypeID) Method(db *Database, name string) (MethodID, bool) {
	switch t.kind {
	case typeIDClass:
		return ClassID(t.id).Method(db, name)
	case typeIDTrait:
		return TraitID(t.id).Method(db, name)
	case typeIDModule:
		return ModuleID(t.id).Method(db, name)
	case typeIDClassInstance:
		return t.classInstance().Method(db, name)
	case typeIDTraitInstance:
		return t.traitInstance().Method(db, name)
	case typeIDTypeParameter, typeIDRigidTypeParameter:
		return TypeParameterID(t.id).Method(db, name)
	default:
		return 0, false
	}
}

// CanCall reports whether code in module may call method on the type.
// Destructors are never callable directly.
func (t TypeID) CanCall(db *Database, method MethodID, module ModuleID, allowTypePrivate bool) bool {
	m := method.get(db)
	if m.kind == MethodDestructor {
		return false
	}

	switch m.visibility {
	case VisibilityPublic:
		return true
	case VisibilityPrivate:
		return m.module.HasSameRootNamespace(db, module)
	default:
		return allowTypePrivate
	}
}

func (t TypeID) UseDynamicDispatch() bool {
	switch t.kind {
	case typeIDTraitInstance, typeIDTypeParameter, typeIDRigidTypeParameter:
		return true
	default:
		return false
	}
}

func (t TypeID) HasDestructor(db *Database) bool {
	if t.kind == typeIDClassInstance {
		return ClassID(t.id).HasDestructor(db)
	}
	return false
}

// AsTypeForPointer returns the type of the value a pointer to t points to.
func (t TypeID) AsTypeForPointer() TypeRef {
	if _, ok := t.anyTypeParameter(); ok {
		return AnyOf(t)
	}
	return OwnedOf(t)
}
