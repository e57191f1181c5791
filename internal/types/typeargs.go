package types

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// TypeArguments maps type parameters to the types assigned to them.
// Parameters that aren't assigned are absent.
type TypeArguments struct {
	mapping map[TypeParameterID]TypeRef
}

// TypeArgumentPair is a single parameter and its assigned type.
type TypeArgumentPair struct {
	Parameter TypeParameterID
	Value     TypeRef
}

func NewTypeArguments() TypeArguments {
	return TypeArguments{mapping: make(map[TypeParameterID]TypeRef)}
}

// ForClass returns a copy of the arguments of a class instance, or an empty
// set if the class isn't generic.
func ForClass(db *Database, ins ClassInstance) TypeArguments {
	if ins.instanceOf.IsGeneric(db) {
		if args, ok := ins.TypeArguments(db); ok {
			return args.Clone()
		}
	}
	return NewTypeArguments()
}

func ForTrait(db *Database, ins TraitInstance) TypeArguments {
	if ins.instanceOf.IsGeneric(db) {
		if args, ok := ins.TypeArguments(db); ok {
			return args.Clone()
		}
	}
	return NewTypeArguments()
}

func (a *TypeArguments) Assign(param TypeParameterID, value TypeRef) {
	if a.mapping == nil {
		a.mapping = make(map[TypeParameterID]TypeRef)
	}
	a.mapping[param] = value
}

func (a *TypeArguments) Get(param TypeParameterID) (TypeRef, bool) {
	v, ok := a.mapping[param]
	return v, ok
}

// GetRecursive follows parameters assigned to other parameters. It stops when
// a parameter is bound to itself, or when the parameter found is unassigned,
// and returns the last value seen.
func (a *TypeArguments) GetRecursive(db *Database, param TypeParameterID) (TypeRef, bool) {
	found, ok := a.Get(param)
	for ok {
		id, isParam := found.AsTypeParameter(db)
		if !isParam {
			return found, true
		}

		next, assigned := a.Get(id)
		if !assigned || next == found {
			return found, true
		}
		found = next
	}
	return TypeRef{}, false
}

// Keys returns the assigned parameters in ascending order.
func (a *TypeArguments) Keys() []TypeParameterID {
	return slices.Sorted(maps.Keys(a.mapping))
}

// Pairs returns the assignments ordered by parameter.
func (a *TypeArguments) Pairs() []TypeArgumentPair {
	keys := a.Keys()
	pairs := make([]TypeArgumentPair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, TypeArgumentPair{Parameter: k, Value: a.mapping[k]})
	}
	return pairs
}

func (a *TypeArguments) Len() int { return len(a.mapping) }

func (a *TypeArguments) IsEmpty() bool { return len(a.mapping) == 0 }

func (a *TypeArguments) Clone() TypeArguments {
	out := TypeArguments{mapping: make(map[TypeParameterID]TypeRef, len(a.mapping))}
	maps.Copy(out.mapping, a.mapping)
	return out
}

func (a *TypeArguments) CopyInto(other *TypeArguments) {
	for k, v := range a.mapping {
		other.Assign(k, v)
	}
}

// MoveInto copies every assignment into other and empties a.
func (a *TypeArguments) MoveInto(other *TypeArguments) {
	a.CopyInto(other)
	a.mapping = nil
}

// CopyAssignedInto copies the assignments of the given parameters, skipping
// those without a value.
func (a *TypeArguments) CopyAssignedInto(params []TypeParameterID, target *TypeArguments) {
	for _, p := range params {
		if v, ok := a.Get(p); ok {
			target.Assign(p, v)
		}
	}
}

// Update replaces every value with the result of fn.
func (a *TypeArguments) Update(fn func(TypeRef) TypeRef) {
	for k, v := range a.mapping {
		a.mapping[k] = fn(v)
	}
}

// TypeBounds maps the parameters of a type to the parameters created for the
// extra requirements of an implementation or method.
type TypeBounds struct {
	mapping map[TypeParameterID]TypeParameterID
}

type TypeBoundPair struct {
	Parameter TypeParameterID
	Bound     TypeParameterID
}

func NewTypeBounds() TypeBounds {
	return TypeBounds{mapping: make(map[TypeParameterID]TypeParameterID)}
}

func (b *TypeBounds) Set(param, bound TypeParameterID) {
	if b.mapping == nil {
		b.mapping = make(map[TypeParameterID]TypeParameterID)
	}
	b.mapping[param] = bound
}

func (b *TypeBounds) Get(param TypeParameterID) (TypeParameterID, bool) {
	v, ok := b.mapping[param]
	return v, ok
}

func (b *TypeBounds) Pairs() []TypeBoundPair {
	keys := slices.Sorted(maps.Keys(b.mapping))
	out := make([]TypeBoundPair, 0, len(keys))
	for _, k := range keys {
		out = append(out, TypeBoundPair{Parameter: k, Bound: b.mapping[k]})
	}
	return out
}

func (b *TypeBounds) IsEmpty() bool { return len(b.mapping) == 0 }

func (b *TypeBounds) Clone() TypeBounds {
	out := TypeBounds{mapping: make(map[TypeParameterID]TypeParameterID, len(b.mapping))}
	maps.Copy(out.mapping, b.mapping)
	return out
}

// Union returns a copy of b with the entries of with added, the latter
// winning on conflicts.
func (b *TypeBounds) Union(with *TypeBounds) TypeBounds {
	out := b.Clone()
	for k, v := range with.mapping {
		out.Set(k, v)
	}
	return out
}

// MakeImmutable replaces every mutable bound with an immutable copy.
func (b *TypeBounds) MakeImmutable(db *Database) {
	for _, k := range slices.Sorted(maps.Keys(b.mapping)) {
		if bound := b.mapping[k]; bound.IsMutable(db) {
			b.mapping[k] = bound.AsImmutable(db)
		}
	}
}

// InternedTypeArguments maps structurally equal generic instances to a single
// type arguments index, so the same instance isn't specialized twice.
type InternedTypeArguments struct {
	cache   map[ClassInstance]uint32
	mapping map[string]uint32
}

func NewInternedTypeArguments() *InternedTypeArguments {
	return &InternedTypeArguments{
		cache:   make(map[ClassInstance]uint32),
		mapping: make(map[string]uint32),
	}
}

// Intern returns the common type arguments index of the instance. The first
// instance seen with a given structure determines the index.
func (in *InternedTypeArguments) Intern(db *Database, ins ClassInstance) uint32 {
	if id, ok := in.cache[ins]; ok {
		return id
	}

	var key strings.Builder
	stack := []TypeID{ClassInstanceType(ins)}

	for len(stack) > 0 {
		tid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		val := tid
		var args *TypeArguments

		switch tid.kind {
		case typeIDClassInstance:
			ci := tid.classInstance()
			if ci.instanceOf.IsGeneric(db) {
				val = ClassInstanceType(NewClassInstance(ci.instanceOf))
				args, _ = ci.TypeArguments(db)
			}
		case typeIDTraitInstance:
			ti := tid.traitInstance()
			if ti.instanceOf.IsGeneric(db) {
				val = TraitInstanceType(NewTraitInstance(ti.instanceOf))
				args, _ = ti.TypeArguments(db)
			}
		}

		if args != nil {
			for _, pair := range args.Pairs() {
				if id, ok := pair.Value.TypeID(db); ok {
					stack = append(stack, id)
				}
			}
		}

		writeTypeIDKey(&key, val)
	}

	k := key.String()
	id, ok := in.mapping[k]
	if !ok {
		id = ins.typeArguments
		in.mapping[k] = id
	}
	in.cache[ins] = id
	return id
}

func writeTypeIDKey(b *strings.Builder, id TypeID) {
	b.WriteString(strconv.FormatUint(uint64(id.kind), 10))
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(uint64(id.sign), 10))
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(uint64(id.id), 10))
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(uint64(id.args), 10))
	b.WriteByte(';')
}
