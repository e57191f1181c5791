package types

import (
	"fmt"
	"sync"

	"keel/internal/location"
	"keel/internal/modname"
)

// Phase is the stage of the compilation pipeline the database is in.
type Phase uint8

const (
	PhaseDeclared Phase = iota
	PhaseChecked
	PhaseSpecialized
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseDeclared:
		return "declared"
	case PhaseChecked:
		return "checked"
	case PhaseSpecialized:
		return "specialized"
	case PhaseFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// Database owns every entity of a program. All other packages refer to
// entities through the typed IDs handed out by the Alloc* functions.
//
// The declaration phase is single-threaded. During checking, workers share the
// database through Read and may only write to placeholders.
type Database struct {
	modules        []moduleDecl
	moduleMapping  map[string]ModuleID
	traits         []traitDecl
	classes        []classDecl
	typeParameters []typeParameterDecl
	typeArguments  []TypeArguments
	methods        []methodDecl
	fields         []fieldDecl
	closures       []closureDecl
	variables      []variableDecl
	constants      []constantDecl
	constructors   []constructorDecl
	intrinsics     map[string]Intrinsic

	// access guards the placeholder table only. Workers hold it shared through
	// Read, exported writes take it exclusively.
	access       sync.RWMutex
	placeholders []*typePlaceholder

	phase Phase

	mainModule    modname.Name
	hasMainModule bool
	mainMethod    MethodID
	hasMainMethod bool
	mainClass     ClassID
	hasMainClass  bool
}

// New returns a database with the builtin classes registered at their fixed
// IDs.
func New() *Database {
	db := &Database{
		moduleMapping: make(map[string]ModuleID),
		intrinsics:    intrinsicMapping(),
		// Slot 0 is shared by all instances created without arguments.
		typeArguments: []TypeArguments{NewTypeArguments()},
	}

	db.classes = append(db.classes,
		newClassDecl(stringName, ClassKindAtomic, VisibilityPublic, 0, location.Location{}),
		newClassDecl(byteArrayName, ClassKindRegular, VisibilityPublic, 0, location.Location{}),
		valueTypeDecl(intName),
		valueTypeDecl(floatName),
		valueTypeDecl(boolName),
		valueTypeDecl(nilName),
	)
	for _, name := range tupleNames {
		db.classes = append(db.classes, newClassDecl(name, ClassKindTuple, VisibilityPublic, 0, location.Location{}))
	}
	db.classes = append(db.classes,
		newClassDecl(arrayName, ClassKindRegular, VisibilityPublic, 0, location.Location{}),
		newClassDecl(checkedIntResultName, ClassKindExtern, VisibilityPrivate, 0, location.Location{}),
	)

	// Tuples are generic over one parameter per member and expose each member
	// as a numbered field.
	for arity := 1; arity <= len(tupleNames); arity++ {
		cls, _ := TupleClass(arity)
		for i := range arity {
			param := cls.NewTypeParameter(db, fmt.Sprintf("T%d", i+1))
			cls.NewField(db, fmt.Sprintf("%d", i), i, AnyOf(TypeParameterType(param)), VisibilityPublic, 0, location.Location{})
		}
	}
	ArrayClassID.NewTypeParameter(db, "T")

	return db
}

func valueTypeDecl(name string) classDecl {
	decl := newClassDecl(name, ClassKindRegular, VisibilityPublic, 0, location.Location{})
	decl.storage = StorageStack
	return decl
}

// Phase returns the current pipeline phase.
func (db *Database) Phase() Phase { return db.phase }

// Advance moves the database to the given phase. Phases never go backwards.
func (db *Database) Advance(to Phase) {
	if to < db.phase {
		panic(fmt.Sprintf("types: can't move from phase %s back to %s", db.phase, to))
	}
	db.phase = to
}

func (db *Database) checkAlloc(what string) {
	if db.phase == PhaseFinalized {
		panic(fmt.Sprintf("types: can't allocate %s in a finalized database", what))
	}
}

// Read runs fn while holding the placeholder table in shared mode. Checking
// workers use it so Assign from outside can't race with them. fn must not
// call Assign.
func (db *Database) Read(fn func(*Database) error) error {
	db.access.RLock()
	defer db.access.RUnlock()
	return fn(db)
}

// Compact drops the type argument table. Instances created before compacting
// no longer have type arguments afterwards.
func (db *Database) Compact() {
	db.typeArguments = nil
	db.Advance(PhaseFinalized)
}

// BuiltinClass returns the ID of a builtin class by its name.
func (db *Database) BuiltinClass(name string) (ClassID, bool) {
	switch name {
	case intName:
		return IntClassID, true
	case floatName:
		return FloatClassID, true
	case stringName:
		return StringClassID, true
	case arrayName:
		return ArrayClassID, true
	case boolName:
		return BoolClassID, true
	case nilName:
		return NilClassID, true
	case byteArrayName:
		return ByteArrayClassID, true
	case checkedIntResultName:
		return CheckedIntResultClassID, true
	}
	for i, tuple := range tupleNames {
		if name == tuple {
			return Tuple1ClassID + ClassID(i), true
		}
	}
	return 0, false
}

func (db *Database) Intrinsic(name string) (Intrinsic, bool) {
	v, ok := db.intrinsics[name]
	return v, ok
}

// Module returns the module with the given name, panicking if it doesn't
// exist.
func (db *Database) Module(name string) ModuleID {
	if id, ok := db.OptionalModule(name); ok {
		return id
	}
	panic(fmt.Sprintf("types: module %q isn't registered", name))
}

func (db *Database) OptionalModule(name string) (ModuleID, bool) {
	id, ok := db.moduleMapping[name]
	return id, ok
}

func (db *Database) ClassInModule(module, name string) ClassID {
	if sym, ok := db.Module(module).Symbol(db, name); ok && sym.Kind == SymbolClass {
		return sym.Class()
	}
	panic(fmt.Sprintf("types: class %s.%s isn't defined", module, name))
}

func (db *Database) TraitInModule(module, name string) TraitID {
	if sym, ok := db.Module(module).Symbol(db, name); ok && sym.Kind == SymbolTrait {
		return sym.Trait()
	}
	panic(fmt.Sprintf("types: trait %s.%s isn't defined", module, name))
}

func (db *Database) DropTrait() TraitID {
	return db.TraitInModule(DropModule, DropTrait)
}

func (db *Database) NumberOfModules() int      { return len(db.modules) }
func (db *Database) NumberOfClasses() int      { return len(db.classes) }
func (db *Database) NumberOfTraits() int       { return len(db.traits) }
func (db *Database) NumberOfMethods() int      { return len(db.methods) }
func (db *Database) NumberOfClosures() int     { return len(db.closures) }
func (db *Database) NumberOfPlaceholders() int { return len(db.placeholders) }

func (db *Database) SetMainModule(name modname.Name) {
	db.mainModule = name
	db.hasMainModule = true
}

func (db *Database) MainModule() (modname.Name, bool) {
	return db.mainModule, db.hasMainModule
}

func (db *Database) SetMainMethod(id MethodID) {
	db.mainMethod = id
	db.hasMainMethod = true
}

func (db *Database) MainMethod() (MethodID, bool) {
	return db.mainMethod, db.hasMainMethod
}

func (db *Database) SetMainClass(id ClassID) {
	db.mainClass = id
	db.hasMainClass = true
}

func (db *Database) MainClass() (ClassID, bool) {
	return db.mainClass, db.hasMainClass
}
