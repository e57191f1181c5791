package types

import "keel/internal/location"

type traitDecl struct {
	name           string
	module         ModuleID
	location       location.Location
	documentation  string
	implementedBy  []ClassID
	visibility     Visibility
	typeParameters indexMap[string, TypeParameterID]
	requiredTraits []TraitInstance
	defaultMethods indexMap[string, MethodID]
	required       indexMap[string, MethodID]

	// inherited holds the arguments the trait inherits through its required
	// traits, flattened when a requirement is added. For C: B[P3] and
	// B[P2]: A[P2] it maps P2 to P3 and P1 to P2.
	inherited TypeArguments
}

// AllocTrait registers a new trait.
func (db *Database) AllocTrait(name string, visibility Visibility, module ModuleID, loc location.Location) TraitID {
	db.checkAlloc("trait")
	id := nextIndex(len(db.traits), tableLimit, "traits")
	db.traits = append(db.traits, traitDecl{
		name:       name,
		module:     module,
		location:   loc,
		visibility: visibility,
		inherited:  NewTypeArguments(),
	})
	return TraitID(id)
}

func (id TraitID) get(db *Database) *traitDecl { return &db.traits[id] }

func (id TraitID) Name(db *Database) string { return id.get(db).name }

func (id TraitID) Module(db *Database) ModuleID { return id.get(db).module }

func (id TraitID) Location(db *Database) location.Location { return id.get(db).location }

func (id TraitID) SetDocumentation(db *Database, doc string) { id.get(db).documentation = doc }

func (id TraitID) Documentation(db *Database) string { return id.get(db).documentation }

func (id TraitID) IsPublic(db *Database) bool { return id.get(db).visibility == VisibilityPublic }

func (id TraitID) IsPrivate(db *Database) bool { return !id.IsPublic(db) }

func (id TraitID) IsGeneric(db *Database) bool { return id.get(db).typeParameters.len() > 0 }

func (id TraitID) TypeParameters(db *Database) []TypeParameterID {
	return id.get(db).typeParameters.valueList()
}

func (id TraitID) NumberOfTypeParameters(db *Database) int {
	return id.get(db).typeParameters.len()
}

func (id TraitID) TypeParameterExists(db *Database, name string) bool {
	return id.get(db).typeParameters.contains(name)
}

func (id TraitID) NewTypeParameter(db *Database, name string) TypeParameterID {
	param := db.AllocTypeParameter(name)
	id.get(db).typeParameters.insert(name, param)
	return param
}

func (id TraitID) RequiredTraits(db *Database) []TraitInstance {
	return append([]TraitInstance(nil), id.get(db).requiredTraits...)
}

func (id TraitID) RequiredMethods(db *Database) []MethodID {
	return id.get(db).required.valueList()
}

func (id TraitID) DefaultMethods(db *Database) []MethodID {
	return id.get(db).defaultMethods.valueList()
}

// AddRequiredTrait adds a requirement and folds the arguments it passes to its
// own ancestors into the inherited arguments of id.
func (id TraitID) AddRequiredTrait(db *Database, requirement TraitInstance) {
	base := requirement.instanceOf.get(db).inherited.Clone()

	if requirement.instanceOf.IsGeneric(db) {
		if args, ok := requirement.TypeArguments(db); ok {
			args.CopyInto(&base)
		}
	}

	t := id.get(db)
	base.MoveInto(&t.inherited)
	t.requiredTraits = append(t.requiredTraits, requirement)
}

func (id TraitID) InheritedTypeArguments(db *Database) *TypeArguments {
	return &id.get(db).inherited
}

func (id TraitID) ImplementedBy(db *Database) []ClassID {
	return append([]ClassID(nil), id.get(db).implementedBy...)
}

func (id TraitID) MethodExists(db *Database, name string) bool {
	t := id.get(db)
	return t.defaultMethods.contains(name) || t.required.contains(name)
}

// Method looks up a default method, then a required method, then a method of
// one of the required traits.
func (id TraitID) Method(db *Database, name string) (MethodID, bool) {
	t := id.get(db)
	if m, ok := t.defaultMethods.get(name); ok {
		return m, true
	}
	if m, ok := t.required.get(name); ok {
		return m, true
	}
	for _, req := range t.requiredTraits {
		if m, ok := req.Method(db, name); ok {
			return m, true
		}
	}
	return 0, false
}

func (id TraitID) AddDefaultMethod(db *Database, name string, method MethodID) {
	id.get(db).defaultMethods.insert(name, method)
}

func (id TraitID) AddRequiredMethod(db *Database, name string, method MethodID) {
	id.get(db).required.insert(name, method)
}

func (id TraitID) namedType(db *Database, name string) (Symbol, bool) {
	if p, ok := id.get(db).typeParameters.get(name); ok {
		return TypeParameterSymbol(p), true
	}
	return Symbol{}, false
}

// TraitInstance is a trait together with the index of its type arguments.
// Non-generic instances always use index 0, which must not be read.
type TraitInstance struct {
	instanceOf    TraitID
	typeArguments uint32
}

func NewTraitInstance(of TraitID) TraitInstance {
	return TraitInstance{instanceOf: of}
}

// GenericTrait stores the arguments in the database and returns an instance
// referring to them.
func GenericTrait(db *Database, of TraitID, args TypeArguments) TraitInstance {
	return TraitInstance{instanceOf: of, typeArguments: db.addTypeArguments(args)}
}

// RigidTrait returns an instance whose parameters are assigned rigid
// versions of themselves, or of their bounds when present.
func RigidTrait(db *Database, of TraitID, bounds *TypeBounds) TraitInstance {
	if !of.IsGeneric(db) {
		return NewTraitInstance(of)
	}

	args := NewTypeArguments()
	for _, param := range of.TypeParameters(db) {
		args.Assign(param, boundOrSelf(bounds, param).AsRigid())
	}
	return GenericTrait(db, of, args)
}

func boundOrSelf(bounds *TypeBounds, param TypeParameterID) TypeParameterID {
	if bounds != nil {
		if b, ok := bounds.Get(param); ok {
			return b
		}
	}
	return param
}

func (db *Database) addTypeArguments(args TypeArguments) uint32 {
	if db.phase == PhaseFinalized {
		panic("types: can't allocate type arguments in a finalized database")
	}
	id := nextIndex(len(db.typeArguments), tableLimit, "type arguments")
	db.typeArguments = append(db.typeArguments, args)
	return id
}

func (i TraitInstance) InstanceOf() TraitID { return i.instanceOf }

// TypeArguments returns the arguments of the instance. The result is false
// after Compact or for an index that was never allocated.
func (i TraitInstance) TypeArguments(db *Database) (*TypeArguments, bool) {
	if int(i.typeArguments) >= len(db.typeArguments) {
		return nil, false
	}
	return &db.typeArguments[i.typeArguments], true
}

// CopyNewArgumentsFrom copies the arguments from assigned to the parameters
// of the trait into the instance.
func (i TraitInstance) CopyNewArgumentsFrom(db *Database, from *TypeArguments) {
	if !i.instanceOf.IsGeneric(db) || i.typeArguments == 0 {
		return
	}
	params := i.instanceOf.TypeParameters(db)
	from.CopyAssignedInto(params, &db.typeArguments[i.typeArguments])
}

func (i TraitInstance) CopyTypeArgumentsInto(db *Database, target *TypeArguments) {
	if !i.instanceOf.IsGeneric(db) {
		return
	}
	if args, ok := i.TypeArguments(db); ok {
		args.CopyInto(target)
	}
}

func (i TraitInstance) Method(db *Database, name string) (MethodID, bool) {
	return i.instanceOf.Method(db, name)
}

func (i TraitInstance) namedType(db *Database, name string) (Symbol, bool) {
	return i.instanceOf.namedType(db, name)
}
