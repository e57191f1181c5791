package types

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"keel/internal/location"
)

// Storage describes where instances of a class live.
type Storage uint8

const (
	StorageHeap Storage = iota
	StorageStack
)

type ClassKind uint8

const (
	ClassKindAsync ClassKind = iota
	ClassKindAtomic
	ClassKindClosure
	ClassKindEnum
	ClassKindExtern
	ClassKindModule
	ClassKindRegular
	ClassKindTuple
)

var classKindNames = [...]string{
	ClassKindAsync:   "async",
	ClassKindAtomic:  "atomic",
	ClassKindClosure: "closure",
	ClassKindEnum:    "enum",
	ClassKindExtern:  "extern",
	ClassKindModule:  "module",
	ClassKindRegular: "regular",
	ClassKindTuple:   "tuple",
}

func (k ClassKind) String() string {
	if int(k) < len(classKindNames) {
		return classKindNames[k]
	}
	return fmt.Sprintf("ClassKind(%d)", uint8(k))
}

func (k ClassKind) IsAsync() bool   { return k == ClassKindAsync }
func (k ClassKind) IsEnum() bool    { return k == ClassKindEnum }
func (k ClassKind) IsTuple() bool   { return k == ClassKindTuple }
func (k ClassKind) IsClosure() bool { return k == ClassKindClosure }
func (k ClassKind) IsModule() bool  { return k == ClassKindModule }
func (k ClassKind) IsExtern() bool  { return k == ClassKindExtern }

func (k ClassKind) AllowPatternMatching() bool {
	return k == ClassKindRegular || k == ClassKindExtern
}

// IsAtomic reports kinds that are heap allocated but reference counted
// atomically.
func (k ClassKind) IsAtomic() bool {
	return k == ClassKindAsync || k == ClassKindAtomic
}

// TraitImplementation is a trait implemented by a class, with the bounds of
// the implementation.
type TraitImplementation struct {
	Instance TraitInstance
	Bounds   TypeBounds
}

type classDecl struct {
	kind          ClassKind
	name          string
	documentation string
	destructor    bool
	storage       Storage
	module        ModuleID
	location      location.Location
	visibility    Visibility

	fields             indexMap[string, FieldID]
	typeParameters     indexMap[string, TypeParameterID]
	methods            indexMap[string, MethodID]
	implementedTraits  indexMap[TraitID, TraitImplementation]
	constructors       indexMap[string, ConstructorID]
	specializations    map[string]ClassID
	specializationKeys []string

	specializationSource    ClassID
	hasSpecializationSource bool

	shapes []Shape
}

func newClassDecl(name string, kind ClassKind, visibility Visibility, module ModuleID, loc location.Location) classDecl {
	storage := StorageHeap
	if kind == ClassKindExtern {
		storage = StorageStack
	}
	return classDecl{
		name:            name,
		kind:            kind,
		visibility:      visibility,
		storage:         storage,
		module:          module,
		location:        loc,
		specializations: make(map[string]ClassID),
	}
}

// AllocClass registers a new class.
func (db *Database) AllocClass(name string, kind ClassKind, visibility Visibility, module ModuleID, loc location.Location) ClassID {
	return db.addClass(newClassDecl(name, kind, visibility, module, loc))
}

func (db *Database) addClass(decl classDecl) ClassID {
	db.checkAlloc("class")
	id := nextIndex(len(db.classes), tableLimit, "classes")
	db.classes = append(db.classes, decl)
	return ClassID(id)
}

// TupleClass returns the builtin tuple class with the given number of
// members.
func TupleClass(arity int) (ClassID, bool) {
	if arity < 1 || arity > len(tupleNames) {
		return 0, false
	}
	return Tuple1ClassID + ClassID(arity-1), true
}

func (id ClassID) get(db *Database) *classDecl { return &db.classes[id] }

func (id ClassID) Name(db *Database) string { return id.get(db).name }

func (id ClassID) Kind(db *Database) ClassKind { return id.get(db).kind }

func (id ClassID) AllowTraitImplementations(db *Database) bool {
	k := id.Kind(db)
	return k != ClassKindAsync && k != ClassKindExtern
}

func (id ClassID) TypeParameters(db *Database) []TypeParameterID {
	return id.get(db).typeParameters.valueList()
}

func (id ClassID) TypeParameter(db *Database, name string) (TypeParameterID, bool) {
	return id.get(db).typeParameters.get(name)
}

func (id ClassID) NumberOfTypeParameters(db *Database) int {
	return id.get(db).typeParameters.len()
}

func (id ClassID) TypeParameterExists(db *Database, name string) bool {
	return id.get(db).typeParameters.contains(name)
}

func (id ClassID) NewTypeParameter(db *Database, name string) TypeParameterID {
	param := db.AllocTypeParameter(name)
	id.get(db).typeParameters.insert(name, param)
	return param
}

func (id ClassID) IsGeneric(db *Database) bool { return id.get(db).typeParameters.len() > 0 }

func (id ClassID) namedType(db *Database, name string) (Symbol, bool) {
	if p, ok := id.TypeParameter(db, name); ok {
		return TypeParameterSymbol(p), true
	}
	return Symbol{}, false
}

// AddTraitImplementation records the implementation on the class and the
// class as an implementor of the trait.
func (id ClassID) AddTraitImplementation(db *Database, impl TraitImplementation) {
	trait := impl.Instance.instanceOf
	id.get(db).implementedTraits.insert(trait, impl)
	t := trait.get(db)
	t.implementedBy = append(t.implementedBy, id)
}

func (id ClassID) TraitImplementation(db *Database, trait TraitID) (TraitImplementation, bool) {
	return id.get(db).implementedTraits.get(trait)
}

func (id ClassID) ImplementedTraits(db *Database) []TraitImplementation {
	return id.get(db).implementedTraits.valueList()
}

func (id ClassID) ImplementsTrait(db *Database, trait TraitID) bool {
	return id.get(db).implementedTraits.contains(trait)
}

// NewConstructor adds an enum constructor. Constructors are numbered in the
// order they are added.
func (id ClassID) NewConstructor(db *Database, name string, members []TypeRef, loc location.Location) ConstructorID {
	local := nextIndex(id.get(db).constructors.len(), ConstructorsLimit, "constructors")
	ctor := db.allocConstructor(uint16(local), name, members, loc)
	id.get(db).constructors.insert(name, ctor)
	return ctor
}

func (id ClassID) Constructor(db *Database, name string) (ConstructorID, bool) {
	return id.get(db).constructors.get(name)
}

func (id ClassID) Constructors(db *Database) []ConstructorID {
	return id.get(db).constructors.valueList()
}

func (id ClassID) NumberOfConstructors(db *Database) int { return id.get(db).constructors.len() }

// NewField adds a field. A class has at most FieldsLimit fields.
func (id ClassID) NewField(db *Database, name string, index int, value TypeRef, visibility Visibility, module ModuleID, loc location.Location) FieldID {
	nextIndex(id.get(db).fields.len(), FieldsLimit, "fields")
	field := db.allocField(name, index, value, visibility, module, loc)
	id.get(db).fields.insert(name, field)
	return field
}

func (id ClassID) Field(db *Database, name string) (FieldID, bool) {
	return id.get(db).fields.get(name)
}

func (id ClassID) FieldByIndex(db *Database, index int) (FieldID, bool) {
	_, f, ok := id.get(db).fields.at(index)
	return f, ok
}

func (id ClassID) FieldNames(db *Database) []string { return id.get(db).fields.keyList() }

func (id ClassID) Fields(db *Database) []FieldID { return id.get(db).fields.valueList() }

// EnumFields returns the fields of an enum without the leading tag field.
func (id ClassID) EnumFields(db *Database) []FieldID {
	c := id.get(db)
	if c.kind != ClassKindEnum || c.fields.len() == 0 {
		return nil
	}
	return c.fields.valueList()[1:]
}

func (id ClassID) NumberOfFields(db *Database) int { return id.get(db).fields.len() }

func (id ClassID) AddMethod(db *Database, name string, method MethodID) {
	id.get(db).methods.insert(name, method)
}

// Method returns the method with the given name, checking the methods of the
// class itself before the default methods of the traits it implements.
func (id ClassID) Method(db *Database, name string) (MethodID, bool) {
	c := id.get(db)
	if m, ok := c.methods.get(name); ok {
		return m, true
	}

	seen := set.New[TraitID](c.implementedTraits.len())
	for _, impl := range c.implementedTraits.valueList() {
		if m, ok := defaultMethod(db, impl.Instance.instanceOf, name, seen); ok {
			return m, true
		}
	}
	return 0, false
}

func defaultMethod(db *Database, trait TraitID, name string, seen *set.Set[TraitID]) (MethodID, bool) {
	if !seen.Insert(trait) {
		return 0, false
	}

	t := trait.get(db)
	if m, ok := t.defaultMethods.get(name); ok {
		return m, true
	}
	for _, req := range t.requiredTraits {
		if m, ok := defaultMethod(db, req.instanceOf, name, seen); ok {
			return m, true
		}
	}
	return 0, false
}

func (id ClassID) MethodExists(db *Database, name string) bool {
	return id.get(db).methods.contains(name)
}

func (id ClassID) Methods(db *Database) []MethodID { return id.get(db).methods.valueList() }

func (id ClassID) NumberOfMethods(db *Database) int { return id.get(db).methods.len() }

func (id ClassID) InstanceMethods(db *Database) []MethodID {
	var out []MethodID
	for _, m := range id.get(db).methods.values {
		if m.IsInstance(db) {
			out = append(out, m)
		}
	}
	return out
}

func (id ClassID) StaticMethods(db *Database) []MethodID {
	var out []MethodID
	for _, m := range id.get(db).methods.values {
		if m.IsStatic(db) {
			out = append(out, m)
		}
	}
	return out
}

func (id ClassID) IsPublic(db *Database) bool  { return id.get(db).visibility == VisibilityPublic }
func (id ClassID) IsPrivate(db *Database) bool { return !id.IsPublic(db) }

func (id ClassID) IsAtomic(db *Database) bool  { return id.Kind(db).IsAtomic() }
func (id ClassID) IsEnum(db *Database) bool    { return id.Kind(db).IsEnum() }
func (id ClassID) IsExtern(db *Database) bool  { return id.Kind(db).IsExtern() }
func (id ClassID) IsClosure(db *Database) bool { return id.Kind(db).IsClosure() }
func (id ClassID) IsModule(db *Database) bool  { return id.Kind(db).IsModule() }

func (id ClassID) SetModule(db *Database, module ModuleID) { id.get(db).module = module }

func (id ClassID) Module(db *Database) ModuleID { return id.get(db).module }

func (id ClassID) MarkAsHavingDestructor(db *Database) { id.get(db).destructor = true }

func (id ClassID) HasDestructor(db *Database) bool { return id.get(db).destructor }

// IsBuiltin reports the classes up to and including Nil.
func (id ClassID) IsBuiltin() bool { return id <= NilClassID }

func (id ClassID) IsNumeric() bool { return id == IntClassID || id == FloatClassID }

// IsValueType reports classes copied by value. Async and atomic classes live
// on the heap but are treated as values.
func (id ClassID) IsValueType(db *Database) bool {
	c := id.get(db)
	if c.kind.IsAtomic() {
		return true
	}
	return c.storage == StorageStack
}

func (id ClassID) IsHeapAllocated(db *Database) bool  { return id.get(db).storage == StorageHeap }
func (id ClassID) IsStackAllocated(db *Database) bool { return id.get(db).storage == StorageStack }

// HasObjectHeader reports classes whose instances start with an object
// header.
func (id ClassID) HasObjectHeader(db *Database) bool { return !id.IsStackAllocated(db) }

func (id ClassID) AllowCastToTrait(db *Database) bool {
	c := id.get(db)
	switch c.kind {
	case ClassKindEnum, ClassKindRegular, ClassKindTuple:
		return c.storage == StorageHeap
	default:
		return false
	}
}

func (id ClassID) AllowCastToForeign(db *Database) bool {
	return id.get(db).storage == StorageHeap ||
		id == IntClassID || id == FloatClassID || id == BoolClassID
}

func (id ClassID) AllowMutating(db *Database) bool {
	c := id.get(db)
	switch c.kind {
	case ClassKindExtern:
		return true
	case ClassKindAtomic:
		return false
	default:
		return c.storage == StorageHeap
	}
}

func (id ClassID) Documentation(db *Database) string { return id.get(db).documentation }

func (id ClassID) SetDocumentation(db *Database, doc string) { id.get(db).documentation = doc }

func (id ClassID) Location(db *Database) location.Location { return id.get(db).location }

func (id ClassID) SetLocation(db *Database, loc location.Location) { id.get(db).location = loc }

func (id ClassID) SetStack(db *Database) { id.get(db).storage = StorageStack }

func (id ClassID) Storage(db *Database) Storage { return id.get(db).storage }

func (id ClassID) SetShapes(db *Database, shapes []Shape) {
	id.get(db).shapes = append([]Shape(nil), shapes...)
}

// Shapes returns the shapes of the type parameters of a specialized class, in
// parameter order.
func (id ClassID) Shapes(db *Database) []Shape {
	return append([]Shape(nil), id.get(db).shapes...)
}

func (id ClassID) SetSpecializationSource(db *Database, source ClassID) {
	c := id.get(db)
	c.specializationSource = source
	c.hasSpecializationSource = true
}

// SpecializationSource returns the generic class id was specialized from.
func (id ClassID) SpecializationSource(db *Database) (ClassID, bool) {
	c := id.get(db)
	return c.specializationSource, c.hasSpecializationSource
}

// AddSpecialization records that the class specialized for shapes is
// specialized.
func (id ClassID) AddSpecialization(db *Database, shapes []Shape, specialized ClassID) {
	c := id.get(db)
	key := ShapeKey(shapes)
	if _, ok := c.specializations[key]; !ok {
		c.specializationKeys = append(c.specializationKeys, key)
	}
	c.specializations[key] = specialized
}

// Specialization returns the class specialized for the given shapes.
func (id ClassID) Specialization(db *Database, shapes []Shape) (ClassID, bool) {
	v, ok := id.get(db).specializations[ShapeKey(shapes)]
	return v, ok
}

// Specializations returns the specialized classes in the order they were
// added.
func (id ClassID) Specializations(db *Database) []ClassID {
	c := id.get(db)
	out := make([]ClassID, 0, len(c.specializationKeys))
	for _, k := range c.specializationKeys {
		out = append(out, c.specializations[k])
	}
	return out
}

// CloneForSpecialization allocates a class with the same name, kind,
// visibility, module, location and storage as id, and nothing else.
func (id ClassID) CloneForSpecialization(db *Database) ClassID {
	src := id.get(db)
	decl := newClassDecl(src.name, src.kind, src.visibility, src.module, src.location)
	decl.storage = src.storage
	return db.addClass(decl)
}
