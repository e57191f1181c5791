package types

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"keel/internal/location"
)

type MethodKind uint8

const (
	// MethodAsync is an immutable async method.
	MethodAsync MethodKind = iota
	MethodAsyncMutable
	MethodStatic
	// MethodConstructor is a static method generated for an enum
	// constructor.
	MethodConstructor
	MethodInstance
	// MethodMoving takes ownership of its receiver.
	MethodMoving
	MethodMutable
	MethodDestructor
	MethodExtern
)

var methodKindNames = [...]string{
	MethodAsync:        "async",
	MethodAsyncMutable: "async mut",
	MethodStatic:       "static",
	MethodConstructor:  "constructor",
	MethodInstance:     "instance",
	MethodMoving:       "move",
	MethodMutable:      "mut",
	MethodDestructor:   "destructor",
	MethodExtern:       "extern",
}

func (k MethodKind) String() string {
	if int(k) < len(methodKindNames) {
		return methodKindNames[k]
	}
	return fmt.Sprintf("MethodKind(%d)", uint8(k))
}

func (k MethodKind) IsStatic() bool      { return k == MethodStatic || k == MethodConstructor }
func (k MethodKind) IsConstructor() bool { return k == MethodConstructor }

type MethodSourceKind uint8

const (
	// SourceDirect methods are defined on the type itself.
	SourceDirect MethodSourceKind = iota
	// SourceImplemented methods override a default method of a trait.
	SourceImplemented
	// SourceInherited methods are default methods that weren't overridden.
	SourceInherited
)

// MethodSource describes where a method comes from. Trait and Method are only
// set for implemented and inherited methods.
type MethodSource struct {
	Kind   MethodSourceKind
	Trait  TraitInstance
	Method MethodID
}

func DirectSource() MethodSource { return MethodSource{} }

func ImplementedSource(trait TraitInstance, method MethodID) MethodSource {
	return MethodSource{Kind: SourceImplemented, Trait: trait, Method: method}
}

func InheritedSource(trait TraitInstance, method MethodID) MethodSource {
	return MethodSource{Kind: SourceInherited, Trait: trait, Method: method}
}

type CallConvention uint8

const (
	CallConventionNative CallConvention = iota
	CallConventionC
)

func NewCallConvention(c bool) CallConvention {
	if c {
		return CallConventionC
	}
	return CallConventionNative
}

type Inline uint8

const (
	InlineNever Inline = iota
	// InlineInfer leaves the decision to heuristics.
	InlineInfer
	InlineAlways
)

// Argument is a named argument of a method or closure.
type Argument struct {
	Index     int
	Name      string
	ValueType TypeRef
	Variable  VariableID
}

type fieldType struct {
	field FieldID
	typ   TypeRef
}

type methodDecl struct {
	module         ModuleID
	location       location.Location
	name           string
	documentation  string
	kind           MethodKind
	callConvention CallConvention
	visibility     Visibility
	inline         Inline
	typeParameters indexMap[string, TypeParameterID]
	arguments      indexMap[string, Argument]
	bounds         TypeBounds
	returnType     TypeRef
	source         MethodSource
	main           bool
	variadic       bool
	receiver       TypeRef
	fieldTypes     indexMap[string, fieldType]

	// specializations is keyed by the shapes of the receiver and the method
	// parameters, in parameter order.
	specializations    map[string]MethodID
	specializationKeys []string

	// shapes of the method's type parameters. Static methods start with the
	// shapes of their class.
	shapes []Shape
}

// AllocMethod registers a new method. Extern methods use the C calling
// convention and are never inlined.
func (db *Database) AllocMethod(module ModuleID, loc location.Location, name string, visibility Visibility, kind MethodKind) MethodID {
	conv := CallConventionNative
	inline := InlineInfer
	if kind == MethodExtern {
		conv = CallConventionC
		inline = InlineNever
	}

	return db.addMethod(methodDecl{
		module:          module,
		location:        loc,
		name:            name,
		kind:            kind,
		callConvention:  conv,
		visibility:      visibility,
		inline:          inline,
		bounds:          NewTypeBounds(),
		specializations: make(map[string]MethodID),
	})
}

func (db *Database) addMethod(decl methodDecl) MethodID {
	db.checkAlloc("method")
	id := nextIndex(len(db.methods), MethodsLimit, "methods")
	db.methods = append(db.methods, decl)
	return MethodID(id)
}

func (id MethodID) get(db *Database) *methodDecl { return &db.methods[id] }

func (id MethodID) Name(db *Database) string { return id.get(db).name }

// IsGenerated reports methods generated by the compiler, whose names start
// with a $.
func (id MethodID) IsGenerated(db *Database) bool {
	return strings.HasPrefix(id.get(db).name, "$")
}

func (id MethodID) namedType(db *Database, name string) (Symbol, bool) {
	if p, ok := id.get(db).typeParameters.get(name); ok {
		return TypeParameterSymbol(p), true
	}
	return Symbol{}, false
}

func (id MethodID) TypeParameters(db *Database) []TypeParameterID {
	return id.get(db).typeParameters.valueList()
}

func (id MethodID) NewTypeParameter(db *Database, name string) TypeParameterID {
	param := db.AllocTypeParameter(name)
	id.get(db).typeParameters.insert(name, param)
	return param
}

func (id MethodID) IsGeneric(db *Database) bool { return id.get(db).typeParameters.len() > 0 }

func (id MethodID) SetModule(db *Database, module ModuleID) { id.get(db).module = module }

func (id MethodID) Module(db *Database) ModuleID { return id.get(db).module }

func (id MethodID) SetReceiver(db *Database, receiver TypeRef) { id.get(db).receiver = receiver }

func (id MethodID) Receiver(db *Database) TypeRef { return id.get(db).receiver }

// ReceiverTypeID returns the type ID of the receiver, panicking if the
// receiver has none.
func (id MethodID) ReceiverTypeID(db *Database) TypeID {
	tid, ok := id.get(db).receiver.TypeID(db)
	if !ok {
		panic(fmt.Sprintf("types: receiver of method %q has no type ID", id.Name(db)))
	}
	return tid
}

// ReceiverForClassInstance returns the type of self when calling the method
// on an instance of the class.
func (id MethodID) ReceiverForClassInstance(db *Database, ins ClassInstance) TypeRef {
	rec := ClassInstanceType(ins)
	kind := id.Kind(db)

	switch {
	// Async methods access self through a reference so immutable async
	// methods can't change the process state.
	case kind == MethodAsync:
		return RefOf(rec)
	case kind == MethodAsyncMutable:
		return MutOf(rec)
	case id.Receiver(db).IsValueType(db) && !ins.instanceOf.Kind(db).IsAsync():
		return OwnedOf(rec)
	}

	switch kind {
	case MethodInstance:
		return RefOf(rec)
	case MethodMutable, MethodDestructor:
		return MutOf(rec)
	case MethodStatic, MethodConstructor:
		return OwnedOf(ClassType(ins.instanceOf))
	case MethodMoving:
		return OwnedOf(rec)
	default:
		return Unknown()
	}
}

func (id MethodID) Source(db *Database) MethodSource { return id.get(db).source }

func (id MethodID) SetSource(db *Database, source MethodSource) { id.get(db).source = source }

func (id MethodID) IsPublic(db *Database) bool  { return id.get(db).visibility == VisibilityPublic }
func (id MethodID) IsPrivate(db *Database) bool { return !id.IsPublic(db) }

func (id MethodID) Visibility(db *Database) Visibility { return id.get(db).visibility }

func (id MethodID) Location(db *Database) location.Location { return id.get(db).location }

func (id MethodID) SetDocumentation(db *Database, doc string) { id.get(db).documentation = doc }

// Documentation returns the documentation of the method. Methods implemented
// through a trait inherit it unless they define their own.
func (id MethodID) Documentation(db *Database) string {
	m := id.get(db)
	if m.documentation == "" {
		if orig, ok := id.OriginalMethod(db); ok {
			return orig.Documentation(db)
		}
	}
	return m.documentation
}

func (id MethodID) Kind(db *Database) MethodKind { return id.get(db).kind }

func (id MethodID) IsMutable(db *Database) bool {
	k := id.Kind(db)
	return k == MethodMutable || k == MethodAsyncMutable
}

func (id MethodID) IsImmutable(db *Database) bool {
	switch id.Kind(db) {
	case MethodAsync, MethodStatic, MethodInstance:
		return true
	default:
		return false
	}
}

func (id MethodID) IsAsync(db *Database) bool {
	k := id.Kind(db)
	return k == MethodAsync || k == MethodAsyncMutable
}

func (id MethodID) IsStatic(db *Database) bool { return id.Kind(db).IsStatic() }
func (id MethodID) IsExtern(db *Database) bool { return id.Kind(db) == MethodExtern }
func (id MethodID) IsMoving(db *Database) bool { return id.Kind(db) == MethodMoving }

func (id MethodID) IsInstance(db *Database) bool {
	switch id.Kind(db) {
	case MethodAsync, MethodAsyncMutable, MethodInstance, MethodMoving, MethodMutable, MethodDestructor:
		return true
	default:
		return false
	}
}

func (id MethodID) SetVariadic(db *Database)     { id.get(db).variadic = true }
func (id MethodID) IsVariadic(db *Database) bool { return id.get(db).variadic }

func (id MethodID) SetMain(db *Database)     { id.get(db).main = true }
func (id MethodID) IsMain(db *Database) bool { return id.get(db).main }

// NewArgument allocates the variable of a new argument and appends the
// argument. Argument names must be unique.
func (id MethodID) NewArgument(db *Database, name string, variableType, argumentType TypeRef, loc location.Location) VariableID {
	v := db.AllocVariable(name, variableType, false, loc)
	id.addArgument(db, name, argumentType, v)
	return v
}

// AddArgument appends an argument that already has a variable.
func (id MethodID) AddArgument(db *Database, arg Argument) {
	id.addArgument(db, arg.Name, arg.ValueType, arg.Variable)
}

func (id MethodID) addArgument(db *Database, name string, typ TypeRef, v VariableID) {
	args := &id.get(db).arguments
	if args.contains(name) {
		panic(fmt.Sprintf("types: method %q already defines argument %q", id.Name(db), name))
	}
	args.insert(name, Argument{Index: args.len(), Name: name, ValueType: typ, Variable: v})
}

func (id MethodID) Arguments(db *Database) []Argument { return id.get(db).arguments.valueList() }

func (id MethodID) ArgumentTypes(db *Database) []TypeRef {
	args := id.get(db).arguments.values
	out := make([]TypeRef, 0, len(args))
	for _, a := range args {
		out = append(out, a.ValueType)
	}
	return out
}

func (id MethodID) NumberOfArguments(db *Database) int { return id.get(db).arguments.len() }

func (id MethodID) PositionalArgumentInputType(db *Database, index int) (TypeRef, bool) {
	_, arg, ok := id.get(db).arguments.at(index)
	return arg.ValueType, ok
}

// NamedArgument returns the position and type of the argument with the given
// name.
func (id MethodID) NamedArgument(db *Database, name string) (int, TypeRef, bool) {
	arg, ok := id.get(db).arguments.get(name)
	return arg.Index, arg.ValueType, ok
}

func (id MethodID) UpdateArgumentTypes(db *Database, index int, variableType, argumentType TypeRef) {
	args := &id.get(db).arguments
	args.values[index].ValueType = argumentType
	args.values[index].Variable.SetValueType(db, variableType)
}

// CopyMethod allocates a copy of the method that belongs to module.
func (id MethodID) CopyMethod(db *Database, module ModuleID) MethodID {
	src := id.get(db)
	cp := *src
	cp.module = module
	cp.typeParameters = src.typeParameters.clone()
	cp.arguments = src.arguments.clone()
	cp.bounds = src.bounds.Clone()
	cp.fieldTypes = src.fieldTypes.clone()
	cp.specializations = maps.Clone(src.specializations)
	cp.specializationKeys = slices.Clone(src.specializationKeys)
	cp.shapes = slices.Clone(src.shapes)
	return db.addMethod(cp)
}

// MarkAsDestructor turns the method into a destructor. Destructors are
// inlined into their droppers.
func (id MethodID) MarkAsDestructor(db *Database) {
	m := id.get(db)
	m.kind = MethodDestructor
	m.inline = InlineAlways
}

func (id MethodID) IgnoreReturnValue(db *Database) bool {
	return id.get(db).returnType == Nil()
}

func (id MethodID) SetFieldType(db *Database, name string, field FieldID, typ TypeRef) {
	id.get(db).fieldTypes.insert(name, fieldType{field: field, typ: typ})
}

// FieldType returns the field and its type as seen from inside the method.
func (id MethodID) FieldType(db *Database, name string) (FieldID, TypeRef, bool) {
	ft, ok := id.get(db).fieldTypes.get(name)
	return ft.field, ft.typ, ok
}

func (id MethodID) FieldIDs(db *Database) []FieldID {
	fts := id.get(db).fieldTypes.values
	out := make([]FieldID, 0, len(fts))
	for _, ft := range fts {
		out = append(out, ft.field)
	}
	return out
}

func (id MethodID) Bounds(db *Database) *TypeBounds { return &id.get(db).bounds }

func (id MethodID) SetBounds(db *Database, bounds TypeBounds) { id.get(db).bounds = bounds }

// SetReturnType sets the return type. Methods that never return aren't worth
// inlining.
func (id MethodID) SetReturnType(db *Database, typ TypeRef) {
	m := id.get(db)
	if typ.kind == RefNever {
		m.inline = InlineNever
	}
	m.returnType = typ
}

func (id MethodID) ReturnType(db *Database) TypeRef { return id.get(db).returnType }

// HasReturnType reports whether calls produce a value at the machine level.
// C functions returning Nil don't.
func (id MethodID) HasReturnType(db *Database) bool {
	m := id.get(db)
	if m.callConvention == CallConventionC {
		return m.returnType != Nil()
	}
	return true
}

func (id MethodID) ReturnsValue(db *Database) bool {
	return id.HasReturnType(db) && !id.ReturnType(db).IsNever(db)
}

func (id MethodID) AddSpecialization(db *Database, shapes []Shape, method MethodID) {
	m := id.get(db)
	key := ShapeKey(shapes)
	if _, ok := m.specializations[key]; !ok {
		m.specializationKeys = append(m.specializationKeys, key)
	}
	m.specializations[key] = method
}

func (id MethodID) Specialization(db *Database, shapes []Shape) (MethodID, bool) {
	v, ok := id.get(db).specializations[ShapeKey(shapes)]
	return v, ok
}

func (id MethodID) Specializations(db *Database) []MethodID {
	m := id.get(db)
	out := make([]MethodID, 0, len(m.specializationKeys))
	for _, k := range m.specializationKeys {
		out = append(out, m.specializations[k])
	}
	return out
}

func (id MethodID) SetShapes(db *Database, shapes []Shape) { id.get(db).shapes = slices.Clone(shapes) }

func (id MethodID) Shapes(db *Database) []Shape { return slices.Clone(id.get(db).shapes) }

// CloneForSpecialization allocates an empty method with the same module,
// location, name, visibility, kind, source and inline mode.
func (id MethodID) CloneForSpecialization(db *Database) MethodID {
	old := id.get(db)
	source, inline := old.source, old.inline

	m := db.AllocMethod(old.module, old.location, old.name, old.visibility, old.kind)
	m.SetSource(db, source)
	m.SetInline(db, inline)
	return m
}

// OriginalMethod returns the trait method an implemented or inherited method
// comes from.
func (id MethodID) OriginalMethod(db *Database) (MethodID, bool) {
	src := id.get(db).source
	if src.Kind == SourceDirect {
		return 0, false
	}
	return src.Method, true
}

func (id MethodID) ImplementedTraitInstance(db *Database) (TraitInstance, bool) {
	src := id.get(db).source
	if src.Kind == SourceDirect {
		return TraitInstance{}, false
	}
	return src.Trait, true
}

// SourceModule returns the module the method body is defined in. Inherited
// default methods live in the module of their trait.
func (id MethodID) SourceModule(db *Database) ModuleID {
	m := id.get(db)
	if m.source.Kind == SourceInherited {
		return m.source.Trait.instanceOf.Module(db)
	}
	return m.module
}

func (id MethodID) SourceFile(db *Database) string {
	return id.SourceModule(db).File(db)
}

func (id MethodID) UsesCCallingConvention(db *Database) bool {
	return id.get(db).callConvention == CallConventionC
}

func (id MethodID) UseCCallingConvention(db *Database) {
	id.get(db).callConvention = CallConventionC
}

func (id MethodID) CallConvention(db *Database) CallConvention { return id.get(db).callConvention }

func (id MethodID) AlwaysInline(db *Database) { id.get(db).inline = InlineAlways }

func (id MethodID) SetInline(db *Database, inline Inline) { id.get(db).inline = inline }

func (id MethodID) Inline(db *Database) Inline { return id.get(db).inline }

// MethodLookupKind is the outcome of looking up a method on a type.
type MethodLookupKind uint8

const (
	LookupNone MethodLookupKind = iota
	LookupOk
	// LookupPrivate means the method exists but isn't visible to the caller.
	LookupPrivate
	// LookupInstanceOnStatic means an instance method was called on a class.
	LookupInstanceOnStatic
	// LookupStaticOnInstance means a static method was called on an instance.
	LookupStaticOnInstance
)

type MethodLookup struct {
	Kind   MethodLookupKind
	Method MethodID
}

func (l MethodLookup) IsOk() bool { return l.Kind == LookupOk }
