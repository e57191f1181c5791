package types

type SymbolKind uint8

const (
	SymbolClass SymbolKind = iota
	SymbolTrait
	SymbolModule
	SymbolTypeParameter
	SymbolConstant
	SymbolMethod
)

// Symbol is a named entity visible in a module or type scope.
type Symbol struct {
	Kind SymbolKind
	id   uint32
}

func ClassSymbol(id ClassID) Symbol   { return Symbol{Kind: SymbolClass, id: uint32(id)} }
func TraitSymbol(id TraitID) Symbol   { return Symbol{Kind: SymbolTrait, id: uint32(id)} }
func ModuleSymbol(id ModuleID) Symbol { return Symbol{Kind: SymbolModule, id: uint32(id)} }
func TypeParameterSymbol(id TypeParameterID) Symbol {
	return Symbol{Kind: SymbolTypeParameter, id: uint32(id)}
}
func ConstantSymbol(id ConstantID) Symbol { return Symbol{Kind: SymbolConstant, id: uint32(id)} }
func MethodSymbol(id MethodID) Symbol     { return Symbol{Kind: SymbolMethod, id: uint32(id)} }

func (s Symbol) Class() ClassID                 { return ClassID(s.id) }
func (s Symbol) Trait() TraitID                 { return TraitID(s.id) }
func (s Symbol) Module() ModuleID               { return ModuleID(s.id) }
func (s Symbol) TypeParameter() TypeParameterID { return TypeParameterID(s.id) }
func (s Symbol) Constant() ConstantID           { return ConstantID(s.id) }
func (s Symbol) Method() MethodID               { return MethodID(s.id) }

// module returns the module defining the symbol. Modules and type parameters
// have none.
func (s Symbol) module(db *Database) (ModuleID, bool) {
	switch s.Kind {
	case SymbolMethod:
		return s.Method().Module(db), true
	case SymbolClass:
		return s.Class().Module(db), true
	case SymbolTrait:
		return s.Trait().Module(db), true
	case SymbolConstant:
		return s.Constant().Module(db), true
	default:
		return 0, false
	}
}

func (s Symbol) IsPublic(db *Database) bool {
	switch s.Kind {
	case SymbolMethod:
		return s.Method().IsPublic(db)
	case SymbolClass:
		return s.Class().IsPublic(db)
	case SymbolTrait:
		return s.Trait().IsPublic(db)
	case SymbolConstant:
		return s.Constant().IsPublic(db)
	default:
		return true
	}
}

func (s Symbol) IsPrivate(db *Database) bool { return !s.IsPublic(db) }

// IsVisibleTo reports whether code in module can refer to the symbol.
func (s Symbol) IsVisibleTo(db *Database, module ModuleID) bool {
	if s.IsPublic(db) {
		return true
	}
	owner, ok := s.module(db)
	if !ok {
		return true
	}
	return owner.HasSameRootNamespace(db, module)
}
