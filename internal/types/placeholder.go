package types

import "sync/atomic"

// typePlaceholder is an inference variable. Its value is written through an
// atomic cell so checking workers can bind it while sharing the database.
type typePlaceholder struct {
	value       atomic.Pointer[TypeRef]
	required    TypeParameterID
	hasRequired bool
}

// Ownership is the ownership a placeholder reference applies to the value it
// resolves to.
type Ownership uint8

const (
	OwnershipAny Ownership = iota
	OwnershipOwned
	OwnershipUni
	OwnershipRef
	OwnershipMut
	OwnershipUniRef
	OwnershipUniMut
	OwnershipPointer
)

// TypePlaceholderID refers to a placeholder together with the ownership its
// value must be read with. The ownership lives in the ID because it's often
// only known after the placeholder is created.
type TypePlaceholderID struct {
	id        uint32
	ownership Ownership
}

// AllocPlaceholder creates a placeholder with an Unknown value. When required
// is given, values assigned to it must satisfy that type parameter.
func (db *Database) AllocPlaceholder(required ...TypeParameterID) TypePlaceholderID {
	db.checkAlloc("placeholder")

	id := nextIndex(len(db.placeholders), tableLimit, "placeholders")
	p := &typePlaceholder{}
	if len(required) > 0 {
		p.required = required[0]
		p.hasRequired = true
	}

	db.placeholders = append(db.placeholders, p)
	return TypePlaceholderID{id: id}
}

func (id TypePlaceholderID) Index() uint32 { return id.id }

func (id TypePlaceholderID) Ownership() Ownership { return id.ownership }

func (id TypePlaceholderID) withOwnership(o Ownership) TypePlaceholderID {
	return TypePlaceholderID{id: id.id, ownership: o}
}

func (id TypePlaceholderID) AsOwned() TypePlaceholderID   { return id.withOwnership(OwnershipOwned) }
func (id TypePlaceholderID) AsUni() TypePlaceholderID     { return id.withOwnership(OwnershipUni) }
func (id TypePlaceholderID) AsRef() TypePlaceholderID     { return id.withOwnership(OwnershipRef) }
func (id TypePlaceholderID) AsMut() TypePlaceholderID     { return id.withOwnership(OwnershipMut) }
func (id TypePlaceholderID) AsUniRef() TypePlaceholderID  { return id.withOwnership(OwnershipUniRef) }
func (id TypePlaceholderID) AsUniMut() TypePlaceholderID  { return id.withOwnership(OwnershipUniMut) }
func (id TypePlaceholderID) AsPointer() TypePlaceholderID { return id.withOwnership(OwnershipPointer) }

func (id TypePlaceholderID) hasOwnership() bool { return id.ownership != OwnershipAny }

func (id TypePlaceholderID) get(db *Database) *typePlaceholder {
	return db.placeholders[id.id]
}

func (id TypePlaceholderID) raw(db *Database) TypeRef {
	if v := id.get(db).value.Load(); v != nil {
		return *v
	}
	return Unknown()
}

// Value returns the resolved value of the placeholder, following chains of
// placeholders. Only the ownership of the last link in a chain is applied to
// the result; the tags of the links before it are dropped.
func (id TypePlaceholderID) Value(db *Database) (TypeRef, bool) {
	typ := id.raw(db)

	switch typ.kind {
	case RefPlaceholder:
		return typ.placeholder().Value(db)
	case RefUnknown:
		return TypeRef{}, false
	}

	switch id.ownership {
	case OwnershipOwned:
		return typ.AsOwned(db), true
	case OwnershipUni:
		return typ.AsUni(db), true
	case OwnershipRef:
		return typ.AsRef(db), true
	case OwnershipMut:
		return typ.ForceAsMut(db), true
	case OwnershipUniRef:
		return typ.AsUniRef(db), true
	case OwnershipUniMut:
		return typ.ForceAsUniMut(db), true
	case OwnershipPointer:
		return typ.AsPointer(db), true
	default:
		return typ, true
	}
}

// tail follows the chain of placeholders id is bound to and returns the last
// one, carrying the ownership of the reference that leads to it. For a
// resolved chain the placeholder holding the value is returned.
func (id TypePlaceholderID) tail(db *Database) TypePlaceholderID {
	for {
		next := id.raw(db)
		if next.kind != RefPlaceholder {
			return id
		}
		id = next.placeholder()
	}
}

// Required returns the type parameter a value must satisfy.
func (id TypePlaceholderID) Required(db *Database) (TypeParameterID, bool) {
	p := id.get(db)
	return p.required, p.hasRequired
}

// Assign binds the placeholder. It takes the database's exclusive lock and
// thus must not be called from inside Read.
func (id TypePlaceholderID) Assign(db *Database, value TypeRef) {
	db.access.Lock()
	defer db.access.Unlock()
	id.assignInternal(db, value)
}

// assignInternal binds the placeholder without locking. Only the checker uses
// it, while holding the shared lock.
func (id TypePlaceholderID) assignInternal(db *Database, value TypeRef) {
	// Binding a placeholder to a chain that ends in itself would make Value
	// loop forever.
	if value.kind == RefPlaceholder && value.placeholder().tail(db).id == id.id {
		return
	}
	id.get(db).value.Store(&value)
}
