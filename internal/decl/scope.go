package decl

import (
	"fmt"
	"strings"

	"keel/internal/typeexpr"
	"keel/internal/types"
)

const maxTupleSize = 8

var foreignInts = map[string]struct {
	bits uint32
	sign types.Sign
}{
	"Int8": {8, types.Signed}, "Int16": {16, types.Signed},
	"Int32": {32, types.Signed}, "Int64": {64, types.Signed},
	"UInt8": {8, types.Unsigned}, "UInt16": {16, types.Unsigned},
	"UInt32": {32, types.Unsigned}, "UInt64": {64, types.Unsigned},
}

var foreignFloats = map[string]uint32{"Float32": 32, "Float64": 64}

// scope resolves type expressions inside a module, with the type parameters
// of the surrounding class, trait or method.
type scope struct {
	db     *types.Database
	module types.ModuleID
	params map[string]types.TypeParameterID
}

func (d *declarer) scope(module types.ModuleID) *scope {
	return &scope{db: d.db, module: module, params: make(map[string]types.TypeParameterID)}
}

func (d *declarer) classScope(module types.ModuleID, cls types.ClassID) *scope {
	s := d.scope(module)
	for _, p := range cls.TypeParameters(d.db) {
		s.params[p.Name(d.db)] = p
	}
	return s
}

func (d *declarer) traitScope(module types.ModuleID, trait types.TraitID) *scope {
	s := d.scope(module)
	for _, p := range trait.TypeParameters(d.db) {
		s.params[p.Name(d.db)] = p
	}
	return s
}

// resolve parses and resolves a type.
func (s *scope) resolve(input string) (types.TypeRef, error) {
	e, err := typeexpr.Parse(input)
	if err != nil {
		return types.Unknown(), err
	}
	return s.resolveExpr(e)
}

// trait parses a trait with its type arguments, such as "Equal[Int]".
func (s *scope) trait(input string) (types.TraitInstance, error) {
	e, err := typeexpr.Parse(input)
	if err != nil {
		return types.TraitInstance{}, err
	}
	if e.Kind != typeexpr.KindNamed || e.Qual != typeexpr.QualOwned {
		return types.TraitInstance{}, fmt.Errorf("%q is not a trait", input)
	}
	sym, err := s.symbol(e)
	if err != nil {
		return types.TraitInstance{}, err
	}
	if sym.Kind != types.SymbolTrait {
		return types.TraitInstance{}, fmt.Errorf("%q is not a trait", e.Name)
	}
	return s.traitInstance(sym.Trait(), e)
}

func (s *scope) resolveExpr(e *typeexpr.Expr) (types.TypeRef, error) {
	switch e.Kind {
	case typeexpr.KindInfer:
		return s.placeholder(e.Qual), nil
	case typeexpr.KindNever:
		return types.Never(), nil
	case typeexpr.KindTuple:
		return s.tuple(e)
	case typeexpr.KindClosure:
		return s.closure(e)
	}

	if p, ok := s.params[e.Name]; ok {
		if len(e.Args) > 0 {
			return types.Unknown(), fmt.Errorf("type parameter %q doesn't take type arguments", e.Name)
		}
		id := types.TypeParameterType(p)
		if e.Qual == typeexpr.QualOwned {
			return types.AnyOf(id), nil
		}
		return qualify(id, e.Qual), nil
	}
	if typ, ok, err := s.builtin(e); ok || err != nil {
		return typ, err
	}

	sym, err := s.symbol(e)
	if err != nil {
		return types.Unknown(), err
	}
	switch sym.Kind {
	case types.SymbolClass:
		ins, err := s.classInstance(sym.Class(), e)
		if err != nil {
			return types.Unknown(), err
		}
		return qualify(types.ClassInstanceType(ins), e.Qual), nil
	case types.SymbolTrait:
		ins, err := s.traitInstance(sym.Trait(), e)
		if err != nil {
			return types.Unknown(), err
		}
		return qualify(types.TraitInstanceType(ins), e.Qual), nil
	}
	return types.Unknown(), fmt.Errorf("%q is not a type", e.Name)
}

func qualify(id types.TypeID, q typeexpr.Qualifier) types.TypeRef {
	switch q {
	case typeexpr.QualRef:
		return types.RefOf(id)
	case typeexpr.QualMut:
		return types.MutOf(id)
	case typeexpr.QualUni:
		return types.UniOf(id)
	case typeexpr.QualUniRef:
		return types.UniRefOf(id)
	case typeexpr.QualUniMut:
		return types.UniMutOf(id)
	}
	return types.OwnedOf(id)
}

// placeholder allocates a placeholder. A qualifier becomes the ownership
// the placeholder applies to its value.
func (s *scope) placeholder(q typeexpr.Qualifier) types.TypeRef {
	p := s.db.AllocPlaceholder()
	switch q {
	case typeexpr.QualRef:
		p = p.AsRef()
	case typeexpr.QualMut:
		p = p.AsMut()
	case typeexpr.QualUni:
		p = p.AsUni()
	case typeexpr.QualUniRef:
		p = p.AsUniRef()
	case typeexpr.QualUniMut:
		p = p.AsUniMut()
	}
	return types.PlaceholderRef(p)
}

// builtin resolves builtin class names, foreign types and Pointer. The
// second result is false for names that aren't builtin.
func (s *scope) builtin(e *typeexpr.Expr) (types.TypeRef, bool, error) {
	if f, ok := foreignInts[e.Name]; ok {
		return s.foreign(e, types.ForeignIntType(f.bits, f.sign))
	}
	if bits, ok := foreignFloats[e.Name]; ok {
		return s.foreign(e, types.ForeignFloatType(bits))
	}
	if e.Name == "Pointer" {
		if len(e.Args) != 1 || e.Qual != typeexpr.QualOwned {
			return types.Unknown(), true, fmt.Errorf("Pointer takes exactly one type argument and no ownership")
		}
		inner, err := s.resolveExpr(e.Args[0])
		if err != nil {
			return types.Unknown(), true, err
		}
		id, ok := inner.TypeID(s.db)
		if !ok {
			return types.Unknown(), true, fmt.Errorf("can't point to %s", e.Args[0])
		}
		return types.PointerTo(id), true, nil
	}

	// Module symbols shadow builtin class names.
	if s.module.SymbolExists(s.db, e.Name) {
		return types.Unknown(), false, nil
	}
	cls, ok := s.db.BuiltinClass(e.Name)
	if !ok || cls.Kind(s.db).IsTuple() {
		return types.Unknown(), false, nil
	}
	ins, err := s.classInstance(cls, e)
	if err != nil {
		return types.Unknown(), true, err
	}
	return qualify(types.ClassInstanceType(ins), e.Qual), true, nil
}

func (s *scope) foreign(e *typeexpr.Expr, id types.TypeID) (types.TypeRef, bool, error) {
	if len(e.Args) > 0 {
		return types.Unknown(), true, fmt.Errorf("%s doesn't take type arguments", e.Name)
	}
	return qualify(id, e.Qual), true, nil
}

// symbol looks up a class or trait by name. Dotted names refer to a symbol
// of another module, either through an import alias or by its full name.
func (s *scope) symbol(e *typeexpr.Expr) (types.Symbol, error) {
	prefix, name, dotted := cutLast(e.Name, ".")
	if !dotted {
		sym, ok := s.module.UseSymbol(s.db, e.Name)
		if !ok {
			return types.Symbol{}, fmt.Errorf("undefined type %q", e.Name)
		}
		return sym, nil
	}

	var other types.ModuleID
	if sym, ok := s.module.UseSymbol(s.db, prefix); ok && sym.Kind == types.SymbolModule {
		other = sym.Module()
	} else if id, ok := s.db.OptionalModule(prefix); ok {
		other = id
	} else {
		return types.Symbol{}, fmt.Errorf("undefined module %q", prefix)
	}

	sym, ok := other.ImportSymbol(s.db, name)
	if !ok {
		return types.Symbol{}, fmt.Errorf("module %q doesn't define %q", prefix, name)
	}
	if !sym.IsVisibleTo(s.db, s.module) {
		return types.Symbol{}, fmt.Errorf("%q is private to module %q", name, prefix)
	}
	return sym, nil
}

func cutLast(s, sep string) (string, string, bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return "", s, false
	}
	return s[:i], s[i+len(sep):], true
}

func (s *scope) arguments(name string, params []types.TypeParameterID, exprs []*typeexpr.Expr) (types.TypeArguments, error) {
	args := types.NewTypeArguments()
	if len(exprs) != len(params) {
		return args, fmt.Errorf("%q expects %d type arguments, found %d", name, len(params), len(exprs))
	}
	for i, p := range params {
		typ, err := s.resolveExpr(exprs[i])
		if err != nil {
			return args, err
		}
		args.Assign(p, typ)
	}
	return args, nil
}

func (s *scope) classInstance(cls types.ClassID, e *typeexpr.Expr) (types.ClassInstance, error) {
	if !cls.IsGeneric(s.db) {
		if len(e.Args) > 0 {
			return types.ClassInstance{}, fmt.Errorf("%q doesn't take type arguments", e.Name)
		}
		return types.NewClassInstance(cls), nil
	}
	args, err := s.arguments(e.Name, cls.TypeParameters(s.db), e.Args)
	if err != nil {
		return types.ClassInstance{}, err
	}
	return types.GenericClass(s.db, cls, args), nil
}

func (s *scope) traitInstance(trait types.TraitID, e *typeexpr.Expr) (types.TraitInstance, error) {
	if !trait.IsGeneric(s.db) {
		if len(e.Args) > 0 {
			return types.TraitInstance{}, fmt.Errorf("%q doesn't take type arguments", e.Name)
		}
		return types.NewTraitInstance(trait), nil
	}
	args, err := s.arguments(e.Name, trait.TypeParameters(s.db), e.Args)
	if err != nil {
		return types.TraitInstance{}, err
	}
	return types.GenericTrait(s.db, trait, args), nil
}

func (s *scope) tuple(e *typeexpr.Expr) (types.TypeRef, error) {
	cls, ok := types.TupleClass(len(e.Args))
	if !ok {
		return types.Unknown(), fmt.Errorf("tuples can't have more than %d members", maxTupleSize)
	}
	args, err := s.arguments(e.String(), cls.TypeParameters(s.db), e.Args)
	if err != nil {
		return types.Unknown(), err
	}
	return qualify(types.ClassInstanceType(types.GenericClass(s.db, cls, args)), e.Qual), nil
}

func (s *scope) closure(e *typeexpr.Expr) (types.TypeRef, error) {
	c := s.db.AllocClosure(e.Moving)
	for _, a := range e.Args {
		typ, err := s.resolveExpr(a)
		if err != nil {
			return types.Unknown(), err
		}
		c.NewAnonymousArgument(s.db, typ)
	}
	ret := types.Nil()
	if e.Return != nil {
		var err error
		if ret, err = s.resolveExpr(e.Return); err != nil {
			return types.Unknown(), err
		}
	}
	c.SetReturnType(s.db, ret)
	return qualify(types.ClosureType(c), e.Qual), nil
}
