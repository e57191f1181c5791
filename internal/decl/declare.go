package decl

import (
	"fmt"
	"strings"

	"keel/internal/location"
	"keel/internal/modname"
	"keel/internal/types"
)

// Bound is a binding with its types resolved against the database.
type Bound struct {
	Module     types.ModuleID
	ModuleName string
	Name       string
	// Declared is the annotated type, with a placeholder for every "?".
	Declared types.TypeRef
	Value    types.TypeRef
	// Source is the declared type as written.
	Source string
}

// Declared lists the entities Declare allocated, in declaration order.
type Declared struct {
	Modules  []types.ModuleID
	Classes  []types.ClassID
	Traits   []types.TraitID
	Methods  []types.MethodID
	Bindings []Bound
}

// BindingsOf returns the bindings of module.
func (d *Declared) BindingsOf(module types.ModuleID) []Bound {
	var out []Bound
	for _, b := range d.Bindings {
		if b.Module == module {
			out = append(out, b)
		}
	}
	return out
}

var classKinds = map[string]types.ClassKind{
	"":        types.ClassKindRegular,
	"regular": types.ClassKindRegular,
	"enum":    types.ClassKindEnum,
	"extern":  types.ClassKindExtern,
	"async":   types.ClassKindAsync,
	"atomic":  types.ClassKindAtomic,
}

var methodKinds = map[string]types.MethodKind{
	"":          types.MethodInstance,
	"instance":  types.MethodInstance,
	"static":    types.MethodStatic,
	"mut":       types.MethodMutable,
	"move":      types.MethodMoving,
	"async":     types.MethodAsync,
	"async mut": types.MethodAsyncMutable,
	"extern":    types.MethodExtern,
}

var inlineModes = map[string]types.Inline{
	"":       types.InlineInfer,
	"infer":  types.InlineInfer,
	"always": types.InlineAlways,
	"never":  types.InlineNever,
}

func parseVisibility(s string) (types.Visibility, error) {
	switch s {
	case "", "public", "pub":
		return types.VisibilityPublic, nil
	case "private":
		return types.VisibilityPrivate, nil
	case "type":
		return types.VisibilityTypePrivate, nil
	}
	return 0, fmt.Errorf("invalid visibility %q (expected public|private|type)", s)
}

func lookup[T any](table map[string]T, what, value string) (T, error) {
	v, ok := table[value]
	if !ok {
		var zero T
		return zero, fmt.Errorf("invalid %s %q", what, value)
	}
	return v, nil
}

type declarer struct {
	db      *types.Database
	prog    *Program
	out     *Declared
	modules map[string]types.ModuleID
	loc     location.Location
}

// Declare allocates every entity of p in db. Modules come first, then
// classes and traits so their names can be used by any later type, then
// their members, methods and finally bindings.
func Declare(db *types.Database, p *Program) (*Declared, error) {
	d := &declarer{
		db:      db,
		prog:    p,
		out:     &Declared{},
		modules: make(map[string]types.ModuleID, len(p.Modules)),
	}
	steps := []func() error{
		d.declareModules,
		d.declareClasses,
		d.declareTraits,
		d.defineTraits,
		d.defineClasses,
		d.declareMethods,
		d.declareBindings,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return d.out, nil
}

func (d *declarer) declareModules() error {
	for _, m := range d.prog.Modules {
		name := modname.New(m.Name)
		file := m.File
		if file == "" {
			file = name.RelativePath()
		}
		id := d.db.AllocModule(name, file)
		id.SetDocumentation(d.db, m.Doc)
		d.modules[m.Name] = id
		d.out.Modules = append(d.out.Modules, id)
	}
	for _, m := range d.prog.Modules {
		id := d.modules[m.Name]
		for _, imp := range m.Imports {
			alias := modname.New(imp).Tail()
			if id.SymbolExists(d.db, alias) {
				return fmt.Errorf("module %q: import %q conflicts with an existing symbol", m.Name, imp)
			}
			id.NewSymbol(d.db, alias, types.ModuleSymbol(d.modules[imp]))
		}
	}
	if d.prog.Main != "" {
		d.db.SetMainModule(modname.New(d.prog.Main))
	}
	return nil
}

func (d *declarer) declareParams(scope *scope, params []Param, alloc func(string) types.TypeParameterID) error {
	for _, p := range params {
		if p.Name == "" {
			return fmt.Errorf("type parameter without a name")
		}
		if _, ok := scope.params[p.Name]; ok {
			return fmt.Errorf("type parameter %q is defined more than once", p.Name)
		}
		id := alloc(p.Name)
		if p.Mutable {
			id.SetMutable(d.db)
		}
		if p.Stack {
			id.SetStack(d.db)
		}
		scope.params[p.Name] = id
	}
	return nil
}

func (d *declarer) requireParams(scope *scope, params []Param) error {
	for _, p := range params {
		id := scope.params[p.Name]
		for _, req := range p.Requires {
			ins, err := scope.trait(req)
			if err != nil {
				return fmt.Errorf("type parameter %q: %w", p.Name, err)
			}
			id.AddRequirements(d.db, ins)
		}
	}
	return nil
}

func (d *declarer) declareClasses() error {
	for _, c := range d.prog.Classes {
		mod := d.modules[c.Module]
		kind, err := lookup(classKinds, "class kind", c.Kind)
		if err != nil {
			return fmt.Errorf("class %q: %w", c.Name, err)
		}
		vis, err := parseVisibility(c.Visibility)
		if err != nil {
			return fmt.Errorf("class %q: %w", c.Name, err)
		}
		if mod.SymbolExists(d.db, c.Name) {
			return fmt.Errorf("class %q conflicts with an existing symbol of module %q", c.Name, c.Module)
		}

		cls := d.db.AllocClass(c.Name, kind, vis, mod, d.loc)
		cls.SetDocumentation(d.db, c.Doc)
		if c.Stack {
			cls.SetStack(d.db)
		}
		mod.NewSymbol(d.db, c.Name, types.ClassSymbol(cls))

		s := d.scope(mod)
		err = d.declareParams(s, c.Params, func(name string) types.TypeParameterID {
			return cls.NewTypeParameter(d.db, name)
		})
		if err != nil {
			return fmt.Errorf("class %q: %w", c.Name, err)
		}
		d.out.Classes = append(d.out.Classes, cls)
	}
	return nil
}

func (d *declarer) declareTraits() error {
	for _, t := range d.prog.Traits {
		mod := d.modules[t.Module]
		vis, err := parseVisibility(t.Visibility)
		if err != nil {
			return fmt.Errorf("trait %q: %w", t.Name, err)
		}
		if mod.SymbolExists(d.db, t.Name) {
			return fmt.Errorf("trait %q conflicts with an existing symbol of module %q", t.Name, t.Module)
		}

		trait := d.db.AllocTrait(t.Name, vis, mod, d.loc)
		trait.SetDocumentation(d.db, t.Doc)
		mod.NewSymbol(d.db, t.Name, types.TraitSymbol(trait))

		s := d.scope(mod)
		err = d.declareParams(s, t.Params, func(name string) types.TypeParameterID {
			return trait.NewTypeParameter(d.db, name)
		})
		if err != nil {
			return fmt.Errorf("trait %q: %w", t.Name, err)
		}
		d.out.Traits = append(d.out.Traits, trait)
	}
	return nil
}

// defineTraits adds requirements and methods once every trait has a name.
func (d *declarer) defineTraits() error {
	for i, t := range d.prog.Traits {
		trait := d.out.Traits[i]
		mod := d.modules[t.Module]
		s := d.traitScope(mod, trait)

		if err := d.requireParams(s, t.Params); err != nil {
			return fmt.Errorf("trait %q: %w", t.Name, err)
		}
		for _, req := range t.Requires {
			ins, err := s.trait(req)
			if err != nil {
				return fmt.Errorf("trait %q: %w", t.Name, err)
			}
			trait.AddRequiredTrait(d.db, ins)
		}

		receiver := types.OwnedOf(types.TraitInstanceType(types.NewTraitInstance(trait)))
		for _, tm := range t.Methods {
			kind, err := lookup(methodKinds, "method kind", tm.Kind)
			if err != nil {
				return fmt.Errorf("trait %q: method %q: %w", t.Name, tm.Name, err)
			}
			if kind == types.MethodExtern || kind.IsStatic() {
				return fmt.Errorf("trait %q: method %q: trait methods must be instance methods", t.Name, tm.Name)
			}
			m := d.db.AllocMethod(mod, d.loc, tm.Name, types.VisibilityPublic, kind)
			m.SetReceiver(d.db, receiver)
			m.SetReturnType(d.db, types.Nil())
			if tm.Default {
				trait.AddDefaultMethod(d.db, tm.Name, m)
			} else {
				trait.AddRequiredMethod(d.db, tm.Name, m)
			}
			d.out.Methods = append(d.out.Methods, m)
		}
	}
	return nil
}

func (d *declarer) defineClasses() error {
	for i, c := range d.prog.Classes {
		cls := d.out.Classes[i]
		mod := d.modules[c.Module]
		s := d.classScope(mod, cls)

		if err := d.requireParams(s, c.Params); err != nil {
			return fmt.Errorf("class %q: %w", c.Name, err)
		}
		if err := d.defineMembers(s, cls, c); err != nil {
			return fmt.Errorf("class %q: %w", c.Name, err)
		}
	}
	return nil
}

func (d *declarer) defineMembers(s *scope, cls types.ClassID, c Class) error {
	for i, f := range c.Fields {
		typ, err := s.resolve(f.Type)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		vis, err := parseVisibility(f.Visibility)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		if _, ok := cls.Field(d.db, f.Name); ok {
			return fmt.Errorf("field %q is defined more than once", f.Name)
		}
		cls.NewField(d.db, f.Name, i, typ, vis, s.module, d.loc)
	}

	if len(c.Constructors) > 0 && !cls.Kind(d.db).IsEnum() {
		return fmt.Errorf("only enums can define constructors")
	}
	for _, ctor := range c.Constructors {
		members := make([]types.TypeRef, len(ctor.Members))
		for i, m := range ctor.Members {
			typ, err := s.resolve(m)
			if err != nil {
				return fmt.Errorf("constructor %q: %w", ctor.Name, err)
			}
			members[i] = typ
		}
		if _, ok := cls.Constructor(d.db, ctor.Name); ok {
			return fmt.Errorf("constructor %q is defined more than once", ctor.Name)
		}
		cls.NewConstructor(d.db, ctor.Name, members, d.loc)
	}

	if len(c.Implements) > 0 && !cls.AllowTraitImplementations(d.db) {
		return fmt.Errorf("%s classes can't implement traits", cls.Kind(d.db))
	}
	for _, impl := range c.Implements {
		ins, err := s.trait(impl)
		if err != nil {
			return err
		}
		cls.AddTraitImplementation(d.db, types.TraitImplementation{
			Instance: ins,
			Bounds:   types.NewTypeBounds(),
		})
	}
	return nil
}

func (d *declarer) declareMethods() error {
	for _, m := range d.prog.Methods {
		id, err := d.declareMethod(m)
		if err != nil {
			return fmt.Errorf("method %q: %w", m.Name, err)
		}
		d.out.Methods = append(d.out.Methods, id)
	}
	return nil
}

func (d *declarer) declareMethod(m Method) (types.MethodID, error) {
	mod := d.modules[m.Module]
	kind, err := lookup(methodKinds, "method kind", m.Kind)
	if err != nil {
		return 0, err
	}
	vis, err := parseVisibility(m.Visibility)
	if err != nil {
		return 0, err
	}
	inline, err := lookup(inlineModes, "inline mode", m.Inline)
	if err != nil {
		return 0, err
	}

	var (
		cls   types.ClassID
		s     = d.scope(mod)
		isCls = m.Receiver != ""
	)
	if isCls {
		sym, ok := mod.Symbol(d.db, m.Receiver)
		if !ok || sym.Kind != types.SymbolClass {
			return 0, fmt.Errorf("receiver %q is not a class of module %q", m.Receiver, m.Module)
		}
		cls = sym.Class()
		if cls.MethodExists(d.db, m.Name) {
			return 0, fmt.Errorf("class %q already defines this method", m.Receiver)
		}
		if kind == types.MethodExtern {
			return 0, fmt.Errorf("extern methods can't have a receiver")
		}
		s = d.classScope(mod, cls)
	} else if kind != types.MethodExtern {
		if _, ok := mod.Method(d.db, m.Name); ok {
			return 0, fmt.Errorf("module %q already defines this method", m.Module)
		}
	}

	id := d.db.AllocMethod(mod, d.loc, m.Name, vis, kind)
	err = d.declareParams(s, m.Params, func(name string) types.TypeParameterID {
		return id.NewTypeParameter(d.db, name)
	})
	if err != nil {
		return 0, err
	}
	if err := d.requireParams(s, m.Params); err != nil {
		return 0, err
	}

	for _, arg := range m.Arguments {
		typ, err := s.resolve(arg.Type)
		if err != nil {
			return 0, fmt.Errorf("argument %q: %w", arg.Name, err)
		}
		if _, _, ok := id.NamedArgument(d.db, arg.Name); ok {
			return 0, fmt.Errorf("argument %q is defined more than once", arg.Name)
		}
		id.NewArgument(d.db, arg.Name, typ, typ, d.loc)
	}

	ret := types.Nil()
	if m.Returns != "" {
		if ret, err = s.resolve(m.Returns); err != nil {
			return 0, fmt.Errorf("return type: %w", err)
		}
	}
	id.SetReturnType(d.db, ret)
	if kind != types.MethodExtern && ret.Kind() != types.RefNever {
		id.SetInline(d.db, inline)
	}

	switch {
	case isCls:
		id.SetReceiver(d.db, id.ReceiverForClassInstance(d.db, types.NewClassInstance(cls)))
		cls.AddMethod(d.db, m.Name, id)
	case kind == types.MethodExtern:
		mod.AddExternMethod(d.db, id)
	default:
		id.SetReceiver(d.db, types.ModuleRef(mod))
		mod.AddMethod(d.db, m.Name, id)
	}
	if m.Main {
		d.db.SetMainMethod(id)
	}
	return id, nil
}

func (d *declarer) declareBindings() error {
	for _, b := range d.prog.Bindings {
		mod := d.modules[b.Module]
		s := d.scope(mod)
		declared, err := s.resolve(b.Declared)
		if err != nil {
			return fmt.Errorf("binding %q: declared type: %w", b.Name, err)
		}
		value, err := s.resolve(b.Value)
		if err != nil {
			return fmt.Errorf("binding %q: value type: %w", b.Name, err)
		}
		d.out.Bindings = append(d.out.Bindings, Bound{
			Module:     mod,
			ModuleName: b.Module,
			Name:       b.Name,
			Declared:   declared,
			Value:      value,
			Source:     strings.TrimSpace(b.Declared),
		})
	}
	return nil
}
