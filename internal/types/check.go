package types

import "github.com/hashicorp/go-set/v3"

const maxCheckDepth = 64

// Checker unifies types during the checking phase. Unresolved placeholders on
// either side are bound to the other side.
//
// A Checker is meant to run inside Database.Read: it binds placeholders
// without taking the exclusive lock and never allocates entities.
type Checker struct {
	db    *Database
	depth int
}

func NewChecker(db *Database) *Checker {
	return &Checker{db: db}
}

// Check reports whether a value of type value can be used where expected is
// required.
func (c *Checker) Check(value, expected TypeRef) bool {
	if c.depth >= maxCheckDepth {
		return false
	}
	c.depth++
	defer func() { c.depth-- }()

	db := c.db
	if value.kind == RefPlaceholder {
		if v, ok := value.placeholder().Value(db); ok {
			return c.Check(v, expected)
		}
	}
	if expected.kind == RefPlaceholder {
		if v, ok := expected.placeholder().Value(db); ok {
			return c.Check(value, v)
		}
	}

	switch {
	case value.kind == RefError || expected.kind == RefError:
		return true
	case value.kind == RefNever:
		return true
	case value.kind == RefPlaceholder && expected.kind == RefPlaceholder:
		// Only the ends of the two chains are unbound.
		tv, te := value.placeholder().tail(db), expected.placeholder().tail(db)
		if tv.id == te.id {
			return true
		}
		return c.bind(tv, PlaceholderRef(te))
	case value.kind == RefPlaceholder:
		return c.bind(value.placeholder().tail(db), expected)
	case expected.kind == RefPlaceholder:
		return c.bind(expected.placeholder().tail(db), value)
	case value.kind == RefUnknown || expected.kind == RefUnknown:
		return false
	case expected.kind == RefNever:
		return false
	}

	if !c.ownershipCompatible(value, expected) {
		return false
	}
	return c.checkID(value, expected)
}

// bind assigns a type to an unresolved placeholder, after checking the
// requirements of the parameter the placeholder stands in for. The stored
// value is stripped of the ownership the placeholder applies when read.
func (c *Checker) bind(p TypePlaceholderID, typ TypeRef) bool {
	db := c.db
	if param, ok := p.Required(db); ok && !c.satisfies(typ, param) {
		return false
	}

	if p.hasOwnership() && typ.kind != RefPlaceholder {
		typ = typ.AsOwned(db)
	}
	p.assignInternal(db, typ)
	return true
}

func (c *Checker) ownershipCompatible(value, expected TypeRef) bool {
	db := c.db
	if value.kind == expected.kind {
		return true
	}
	if value.IsValueType(db) && expected.kind != RefPointer && value.kind != RefPointer {
		return true
	}

	switch expected.kind {
	case RefOwned:
		return value.kind == RefUni || value.kind == RefAny
	case RefAny:
		return value.kind == RefOwned || value.kind == RefUni
	case RefRef:
		return value.kind == RefMut
	case RefUniRef:
		return value.kind == RefUniMut
	}
	return false
}

func (c *Checker) checkID(value, expected TypeRef) bool {
	db := c.db
	vid, eid := value.id, expected.id

	switch eid.kind {
	case typeIDClassInstance:
		if vid.kind != typeIDClassInstance || vid.id != eid.id {
			return false
		}
		return c.checkArguments(vid.classInstance(), eid.classInstance())
	case typeIDTraitInstance:
		trait := eid.traitInstance()
		switch vid.kind {
		case typeIDTraitInstance:
			if vid.id != eid.id {
				return false
			}
			if !trait.instanceOf.IsGeneric(db) {
				return true
			}
			vargs, _ := vid.traitInstance().TypeArguments(db)
			eargs, _ := trait.TypeArguments(db)
			return c.checkPairs(trait.instanceOf.TypeParameters(db), vargs, eargs)
		default:
			return c.implements(value, trait.instanceOf)
		}
	case typeIDTypeParameter:
		if vid.kind == typeIDTypeParameter && vid.id == eid.id {
			return true
		}
		return c.satisfies(value, TypeParameterID(eid.id))
	case typeIDRigidTypeParameter, typeIDAtomicTypeParameter:
		return vid.kind == eid.kind && vid.id == eid.id
	case typeIDClosure:
		if vid.kind != typeIDClosure {
			return false
		}
		return c.checkClosure(ClosureID(vid.id), ClosureID(eid.id))
	}
	return vid == eid
}

func (c *Checker) checkArguments(value, expected ClassInstance) bool {
	db := c.db
	cls := expected.instanceOf
	if !cls.IsGeneric(db) {
		return true
	}
	vargs, _ := value.TypeArguments(db)
	eargs, _ := expected.TypeArguments(db)
	return c.checkPairs(cls.TypeParameters(db), vargs, eargs)
}

// checkPairs checks the arguments assigned to params. Parameters missing on
// either side are accepted.
func (c *Checker) checkPairs(params []TypeParameterID, value, expected *TypeArguments) bool {
	if value == nil || expected == nil {
		return true
	}
	for _, p := range params {
		v, vok := value.Get(p)
		e, eok := expected.Get(p)
		if vok && eok && !c.Check(v, e) {
			return false
		}
	}
	return true
}

func (c *Checker) checkClosure(value, expected ClosureID) bool {
	db := c.db
	if value == expected {
		return true
	}
	vargs, eargs := value.Arguments(db), expected.Arguments(db)
	if len(vargs) != len(eargs) {
		return false
	}
	for i := range vargs {
		if !c.Check(eargs[i].ValueType, vargs[i].ValueType) {
			return false
		}
	}
	return c.Check(value.ReturnType(db), expected.ReturnType(db))
}

// satisfies reports whether typ meets every requirement of param.
func (c *Checker) satisfies(typ TypeRef, param TypeParameterID) bool {
	db := c.db
	if pid, ok := typ.AsTypeParameter(db); ok && pid == param {
		return true
	}
	for _, req := range param.Requirements(db) {
		if !c.implements(typ, req.instanceOf) {
			return false
		}
	}
	return true
}

// implements reports whether typ implements trait, either directly or
// through the requirements of a type parameter.
func (c *Checker) implements(typ TypeRef, trait TraitID) bool {
	db := c.db
	if typ.kind == RefPlaceholder {
		v, ok := typ.placeholder().Value(db)
		if !ok {
			return true
		}
		typ = v
	}
	if !typ.kind.wrapsTypeID() {
		return typ.kind == RefError || typ.kind == RefNever
	}

	id := typ.id
	switch id.kind {
	case typeIDClassInstance:
		return ClassID(id.id).ImplementsTrait(db, trait)
	case typeIDTraitInstance:
		return traitIncludes(db, TraitID(id.id), trait, set.New[TraitID](4))
	case typeIDTypeParameter, typeIDRigidTypeParameter:
		seen := set.New[TraitID](4)
		for _, req := range TypeParameterID(id.id).Requirements(db) {
			if traitIncludes(db, req.instanceOf, trait, seen) {
				return true
			}
		}
	}
	return false
}

// traitIncludes reports whether trait is target or requires it.
func traitIncludes(db *Database, trait, target TraitID, seen *set.Set[TraitID]) bool {
	if trait == target {
		return true
	}
	if !seen.Insert(trait) {
		return false
	}
	for _, req := range trait.RequiredTraits(db) {
		if traitIncludes(db, req.instanceOf, target, seen) {
			return true
		}
	}
	return false
}
