package types

type typeParameterDecl struct {
	name         string
	requirements []TraitInstance
	mutable      bool
	stack        bool
	original     TypeParameterID
	hasOriginal  bool
}

// AllocTypeParameter creates a type parameter without requirements.
func (db *Database) AllocTypeParameter(name string) TypeParameterID {
	return db.addTypeParameter(typeParameterDecl{name: name})
}

func (db *Database) addTypeParameter(decl typeParameterDecl) TypeParameterID {
	db.checkAlloc("type parameter")
	id := nextIndex(len(db.typeParameters), tableLimit, "type parameters")
	db.typeParameters = append(db.typeParameters, decl)
	return TypeParameterID(id)
}

func (id TypeParameterID) get(db *Database) *typeParameterDecl {
	return &db.typeParameters[id]
}

func (id TypeParameterID) Name(db *Database) string { return id.get(db).name }

func (id TypeParameterID) AddRequirements(db *Database, requirements ...TraitInstance) {
	p := id.get(db)
	p.requirements = append(p.requirements, requirements...)
}

func (id TypeParameterID) Requirements(db *Database) []TraitInstance {
	return append([]TraitInstance(nil), id.get(db).requirements...)
}

func (id TypeParameterID) hasRequirements(db *Database) bool {
	return len(id.get(db).requirements) > 0
}

// Method looks up a method in the traits the parameter requires.
func (id TypeParameterID) Method(db *Database, name string) (MethodID, bool) {
	for _, req := range id.get(db).requirements {
		if m, ok := req.Method(db, name); ok {
			return m, true
		}
	}
	return 0, false
}

func (id TypeParameterID) SetOriginal(db *Database, param TypeParameterID) {
	p := id.get(db)
	p.original = param
	p.hasOriginal = true
}

// Original returns the parameter this one was cloned from for bounds.
func (id TypeParameterID) Original(db *Database) (TypeParameterID, bool) {
	p := id.get(db)
	return p.original, p.hasOriginal
}

func (id TypeParameterID) SetMutable(db *Database)     { id.get(db).mutable = true }
func (id TypeParameterID) IsMutable(db *Database) bool { return id.get(db).mutable }
func (id TypeParameterID) SetStack(db *Database)       { id.get(db).stack = true }
func (id TypeParameterID) IsStack(db *Database) bool   { return id.get(db).stack }

// AsImmutable returns a copy of the parameter that doesn't allow mutable
// references.
func (id TypeParameterID) AsImmutable(db *Database) TypeParameterID {
	cp := id.clone(db)
	cp.mutable = false
	return db.addTypeParameter(cp)
}

// CloneForBound returns a copy of the parameter that remembers id as its
// origin.
func (id TypeParameterID) CloneForBound(db *Database) TypeParameterID {
	cp := id.clone(db)
	cp.original = id
	cp.hasOriginal = true
	return db.addTypeParameter(cp)
}

func (id TypeParameterID) clone(db *Database) typeParameterDecl {
	cp := *id.get(db)
	cp.requirements = append([]TraitInstance(nil), cp.requirements...)
	return cp
}

func (id TypeParameterID) AsRigid() TypeRef {
	return AnyOf(RigidTypeParameterType(id))
}

func (id TypeParameterID) AsOwnedRigid() TypeRef {
	return OwnedOf(RigidTypeParameterType(id))
}
