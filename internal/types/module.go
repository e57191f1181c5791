package types

import (
	"strings"

	"keel/internal/location"
	"keel/internal/modname"
)

type moduleSymbol struct {
	symbol Symbol
	used   bool
}

type moduleDecl struct {
	name          modname.Name
	documentation string

	// methodSymbolName is used when generating symbol names for methods, so
	// generated modules still get readable names in debug info.
	methodSymbolName modname.Name

	// class holds the static methods of the module.
	class         ClassID
	file          string
	constants     []ConstantID
	symbols       indexMap[string, moduleSymbol]
	externMethods indexMap[string, MethodID]
}

// AllocModule registers a module and the class holding its methods.
func (db *Database) AllocModule(name modname.Name, file string) ModuleID {
	db.checkAlloc("module")
	id := ModuleID(nextIndex(len(db.modules), tableLimit, "modules"))
	cls := db.AllocClass(name.String(), ClassKindModule, VisibilityPrivate, id, location.Location{})

	db.moduleMapping[name.String()] = id
	db.modules = append(db.modules, moduleDecl{
		name:             name,
		methodSymbolName: name,
		class:            cls,
		file:             file,
	})
	return id
}

func (id ModuleID) get(db *Database) *moduleDecl { return &db.modules[id] }

func (id ModuleID) Name(db *Database) modname.Name { return id.get(db).name }

func (id ModuleID) Documentation(db *Database) string { return id.get(db).documentation }

func (id ModuleID) SetDocumentation(db *Database, doc string) { id.get(db).documentation = doc }

func (id ModuleID) Constants(db *Database) []ConstantID {
	return append([]ConstantID(nil), id.get(db).constants...)
}

func (id ModuleID) MethodSymbolName(db *Database) modname.Name { return id.get(db).methodSymbolName }

func (id ModuleID) SetMethodSymbolName(db *Database, name modname.Name) {
	id.get(db).methodSymbolName = name
}

func (id ModuleID) File(db *Database) string { return id.get(db).file }

func (id ModuleID) Class(db *Database) ClassID { return id.get(db).class }

func (id ModuleID) IsStd(db *Database) bool { return id.get(db).name.IsStd() }

// NewSymbol defines or replaces a symbol. New symbols start out unused.
func (id ModuleID) NewSymbol(db *Database, name string, sym Symbol) {
	id.get(db).symbols.insert(name, moduleSymbol{symbol: sym})
}

// UseSymbol returns the symbol and marks it as used.
func (id ModuleID) UseSymbol(db *Database, name string) (Symbol, bool) {
	syms := &id.get(db).symbols
	i, ok := syms.index[name]
	if !ok {
		return Symbol{}, false
	}
	syms.values[i].used = true
	return syms.values[i].symbol, true
}

func (id ModuleID) Symbol(db *Database, name string) (Symbol, bool) {
	s, ok := id.get(db).symbols.get(name)
	return s.symbol, ok
}

func (id ModuleID) SymbolIsUsed(db *Database, name string) bool {
	s, ok := id.get(db).symbols.get(name)
	return ok && s.used
}

func (id ModuleID) SymbolExists(db *Database, name string) bool {
	return id.get(db).symbols.contains(name)
}

// NamedSymbol is a symbol with the name it's defined under.
type NamedSymbol struct {
	Name   string
	Symbol Symbol
}

// Symbols returns the symbols in the order they were defined.
func (id ModuleID) Symbols(db *Database) []NamedSymbol {
	syms := &id.get(db).symbols
	out := make([]NamedSymbol, 0, syms.len())
	for i, name := range syms.keys {
		out = append(out, NamedSymbol{Name: name, Symbol: syms.values[i].symbol})
	}
	return out
}

// ImportSymbol returns a symbol another module may import from id. Only
// symbols defined by id itself can be imported, type parameters never.
func (id ModuleID) ImportSymbol(db *Database, name string) (Symbol, bool) {
	sym, ok := id.UseSymbol(db, name)
	if !ok || sym.Kind == SymbolTypeParameter {
		return Symbol{}, false
	}

	var owner ModuleID
	switch sym.Kind {
	case SymbolModule:
		owner = sym.Module()
	default:
		owner, _ = sym.module(db)
	}

	if owner != id {
		return Symbol{}, false
	}
	return sym, true
}

func (id ModuleID) Method(db *Database, name string) (MethodID, bool) {
	return id.get(db).class.Method(db, name)
}

func (id ModuleID) Methods(db *Database) []MethodID { return id.get(db).class.Methods(db) }

func (id ModuleID) AddMethod(db *Database, name string, method MethodID) {
	id.get(db).class.AddMethod(db, name, method)
}

// Classes returns the classes defined by the module, leaving out generated
// ones.
func (id ModuleID) Classes(db *Database) []ClassID {
	syms := &id.get(db).symbols
	var out []ClassID
	for i, name := range syms.keys {
		sym := syms.values[i].symbol
		if sym.Kind != SymbolClass || strings.HasPrefix(name, "$") {
			continue
		}
		if sym.Class().Module(db) == id {
			out = append(out, sym.Class())
		}
	}
	return out
}

func (id ModuleID) Traits(db *Database) []TraitID {
	var out []TraitID
	for _, s := range id.get(db).symbols.values {
		if s.symbol.Kind == SymbolTrait && s.symbol.Trait().Module(db) == id {
			out = append(out, s.symbol.Trait())
		}
	}
	return out
}

func (id ModuleID) AddExternMethod(db *Database, method MethodID) {
	id.get(db).externMethods.insert(method.Name(db), method)
}

func (id ModuleID) ExternMethod(db *Database, name string) (MethodID, bool) {
	return id.get(db).externMethods.get(name)
}

func (id ModuleID) ExternMethods(db *Database) []MethodID {
	return id.get(db).externMethods.valueList()
}

// HasSameRootNamespace reports whether other may see private symbols of id.
// That's the case for modules sharing their first name segment, and for a
// root module test_x looking into x.
func (id ModuleID) HasSameRootNamespace(db *Database, other ModuleID) bool {
	ours := id.Name(db)
	theirs := other.Name(db)

	if ours.Head() == theirs.Head() {
		return true
	}
	if !theirs.IsRoot() {
		return false
	}

	name, ok := strings.CutPrefix(theirs.String(), "test_")
	return ok && ours.Head() == name
}
