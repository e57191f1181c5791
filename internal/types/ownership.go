package types

// operand classifies the type a qualifier wraps, as far as ownership
// conversions are concerned.
type operand uint8

const (
	operandOther operand = iota
	operandExtern
	operandStackClass
	operandValueClass
	operandStackParam
	operandMutParam
	operandParam
	numOperands
)

func classify(db *Database, id TypeID) operand {
	switch id.kind {
	case typeIDClassInstance:
		cls := ClassID(id.id)
		switch {
		case cls.IsExtern(db):
			return operandExtern
		case cls.IsStackAllocated(db):
			return operandStackClass
		case cls.IsValueType(db):
			return operandValueClass
		}
	case typeIDTypeParameter, typeIDRigidTypeParameter:
		p := TypeParameterID(id.id)
		switch {
		case p.IsStack(db):
			return operandStackParam
		case p.IsMutable(db):
			return operandMutParam
		}
		return operandParam
	}
	return operandOther
}

type conversion uint8

const (
	opAsRef conversion = iota
	opAsMut
	opForceAsMut
	opAsPointer
	opAsUniRef
	opAsUniMut
	opForceAsUniMut
	opAsUni
	opAsOwned
	opAsUniBorrow
	numConversions
)

// transitions maps a qualifier and operand to the resulting qualifier.
// RefUnknown leaves the type as is.
type transitions [RefPointer + 1][numOperands]RefKind

type conversionRule struct {
	// tag is applied to unresolved placeholders.
	tag Ownership
	// valueTypesUnchanged returns value types as is before consulting the
	// table.
	valueTypesUnchanged bool
	table               transitions
}

type cell struct {
	on operand
	to RefKind
}

func on(o operand, to RefKind) cell { return cell{on: o, to: to} }

type row struct {
	from []RefKind
	def  RefKind
	over []cell
}

type qualifiers []RefKind

func from(q ...RefKind) qualifiers { return q }

// to sets the result for every operand, then applies the overrides.
func (q qualifiers) to(def RefKind, cells ...cell) row {
	return row{from: q, def: def, over: cells}
}

func table(rows ...row) transitions {
	var t transitions
	for _, r := range rows {
		for _, q := range r.from {
			for o := range t[q] {
				t[q][o] = r.def
			}
			for _, c := range r.over {
				t[q][c.on] = c.to
			}
		}
	}
	return t
}

var conversions = [numConversions]conversionRule{
	opAsRef: {
		tag: OwnershipRef,
		table: table(
			from(RefOwned).to(RefRef,
				on(operandExtern, RefPointer),
				on(operandStackClass, RefOwned),
				on(operandStackParam, RefOwned),
			),
			from(RefAny, RefMut, RefRef).to(RefRef, on(operandStackParam, RefOwned)),
			from(RefUni, RefUniMut).to(RefUniRef),
		),
	},
	opAsMut: {
		tag: OwnershipMut,
		table: table(
			from(RefAny).to(RefUnknown,
				on(operandStackParam, RefOwned),
				on(operandMutParam, RefMut),
				on(operandParam, RefRef),
			),
			from(RefOwned).to(RefMut,
				on(operandStackParam, RefOwned),
				on(operandExtern, RefPointer),
				on(operandStackClass, RefOwned),
				on(operandValueClass, RefOwned),
			),
			from(RefMut).to(RefUnknown, on(operandStackParam, RefOwned)),
			from(RefUni).to(RefUniMut, on(operandStackParam, RefOwned)),
		),
	},
	opForceAsMut: {
		tag: OwnershipMut,
		table: table(
			from(RefOwned).to(RefMut,
				on(operandExtern, RefPointer),
				on(operandStackClass, RefOwned),
				on(operandValueClass, RefOwned),
				on(operandStackParam, RefOwned),
			),
			from(RefAny, RefMut).to(RefMut, on(operandStackParam, RefOwned)),
			from(RefUni).to(RefUniMut, on(operandStackParam, RefOwned)),
		),
	},
	opAsPointer: {
		tag:   OwnershipPointer,
		table: table(from(RefOwned, RefUni, RefAny, RefMut, RefRef).to(RefPointer)),
	},
	opAsUniRef: {
		tag: OwnershipUniRef,
		table: table(
			from(RefOwned, RefAny, RefUni, RefMut, RefRef, RefUniRef, RefUniMut).to(RefUniRef),
		),
	},
	opAsUniMut: {
		tag: OwnershipUniMut,
		table: table(
			from(RefOwned, RefUni, RefMut, RefUniMut).to(RefUniMut),
			from(RefRef, RefAny, RefUniRef).to(RefUniRef),
		),
	},
	opForceAsUniMut: {
		tag:   OwnershipUniMut,
		table: table(from(RefOwned, RefAny, RefUni, RefMut, RefRef).to(RefUniMut)),
	},
	opAsUni: {
		tag:                 OwnershipUni,
		valueTypesUnchanged: true,
		table:               table(from(RefOwned, RefAny, RefUni, RefMut, RefRef).to(RefUni)),
	},
	opAsOwned: {
		tag: OwnershipOwned,
		table: table(
			from(RefUni, RefAny, RefRef, RefMut, RefUniRef, RefUniMut).to(RefOwned),
		),
	},
	opAsUniBorrow: {
		tag:                 OwnershipUniMut,
		valueTypesUnchanged: true,
		table: table(
			from(RefOwned, RefMut).to(RefUniMut),
			from(RefRef).to(RefUniRef),
		),
	},
}

func (r TypeRef) convert(db *Database, op conversion) TypeRef {
	c := &conversions[op]
	if c.valueTypesUnchanged && r.IsValueType(db) {
		return r
	}

	switch {
	case r.kind == RefPlaceholder:
		p := r.placeholder()
		if v, ok := p.Value(db); ok {
			return v.convert(db, op)
		}
		return PlaceholderRef(p.withOwnership(c.tag))
	case !r.kind.wrapsTypeID():
		return r
	}

	next := c.table[r.kind][classify(db, r.id)]
	if next == RefUnknown {
		return r
	}
	return TypeRef{kind: next, id: r.id}
}

func (r TypeRef) AsRef(db *Database) TypeRef { return r.convert(db, opAsRef) }

// AsMut borrows mutably where the type allows it. Immutable type parameters
// under Any become Ref.
func (r TypeRef) AsMut(db *Database) TypeRef { return r.convert(db, opAsMut) }

func (r TypeRef) ForceAsMut(db *Database) TypeRef    { return r.convert(db, opForceAsMut) }
func (r TypeRef) AsPointer(db *Database) TypeRef     { return r.convert(db, opAsPointer) }
func (r TypeRef) AsUniRef(db *Database) TypeRef      { return r.convert(db, opAsUniRef) }
func (r TypeRef) AsUniMut(db *Database) TypeRef      { return r.convert(db, opAsUniMut) }
func (r TypeRef) ForceAsUniMut(db *Database) TypeRef { return r.convert(db, opForceAsUniMut) }
func (r TypeRef) AsUni(db *Database) TypeRef         { return r.convert(db, opAsUni) }
func (r TypeRef) AsOwned(db *Database) TypeRef       { return r.convert(db, opAsOwned) }

// AsUniBorrow exposes a borrow to a recover expression. Value types are
// copied instead.
func (r TypeRef) AsUniBorrow(db *Database) TypeRef { return r.convert(db, opAsUniBorrow) }

// CastAccordingTo gives r the ownership of other, as used when reading a
// value through a reference.
func (r TypeRef) CastAccordingTo(db *Database, other TypeRef) TypeRef {
	if r.IsValueType(db) {
		switch {
		case other.IsUni(db):
			return r.AsUni(db)
		case other.IsRefOrMut(db) && r.IsExternInstance(db):
			return r.AsPointer(db)
		default:
			return r.AsOwned(db)
		}
	}

	switch {
	case other.IsRef(db):
		return r.AsRef(db)
	case other.IsMut(db):
		return r.AsMut(db)
	}
	return r
}

func (r TypeRef) ValueTypeAsOwned(db *Database) TypeRef {
	if r.IsValueType(db) {
		return r.AsOwned(db)
	}
	return r
}
