package types

// CallResolver turns names used in expressions into call metadata. Resolving
// members of generic instances may store new type arguments, so it needs
// exclusive access to the database, unlike Checker.
type CallResolver struct {
	db *Database
}

func NewCallResolver(db *Database) *CallResolver {
	return &CallResolver{db: db}
}

// ResolveCall resolves `receiver.name` as seen from module: a method call, a
// call of a closure through its call method, or a field read. The lookup is
// returned as well so callers can report private or misplaced methods.
func (r *CallResolver) ResolveCall(receiver TypeRef, name string, module ModuleID) (CallKind, MethodLookup) {
	db := r.db
	id, ok := receiver.TypeID(db)
	if !ok {
		return CallKind{}, MethodLookup{}
	}
	if receiver.kind == RefPlaceholder {
		receiver, _ = receiver.placeholder().Value(db)
	}

	if closure, ok := id.Closure(); ok && name == CallMethodName {
		info := &ClosureCallInfo{ID: closure, Returns: closure.ReturnType(db)}
		return CallKind{Tag: CallClosure, Closure: info}, MethodLookup{Kind: LookupOk}
	}

	lookup := id.LookupMethod(db, name, module, false)
	if lookup.IsOk() {
		info := r.callInfo(receiver, lookup.Method)
		if _, isMod := id.Module(); isMod {
			info.Receiver = ReceiverWithModule(db, lookup.Method)
		} else {
			info.Receiver = ReceiverWith(db, receiver, lookup.Method)
		}
		info.Dynamic = id.UseDynamicDispatch()
		return CallKind{Tag: CallMethod, Call: info}, lookup
	}
	if lookup.Kind != LookupNone {
		return CallKind{}, lookup
	}

	if ins, ok := id.ClassInstance(); ok {
		if field, ok := ins.instanceOf.Field(db, name); ok && field.IsVisibleTo(db, module) {
			args := ForClass(db, ins)
			info := &FieldInfo{
				Class:        ins.instanceOf,
				ID:           field,
				VariableType: NewTypeResolver(db, &args, nil).Resolve(field.ValueType(db)),
				AsPointer:    receiver.IsPointer(db),
			}
			return CallKind{Tag: CallGetField, Field: info}, lookup
		}
	}
	return CallKind{}, lookup
}

// callInfo describes a call of method on receiver, with the return type
// resolved against the receiver's type arguments.
func (r *CallResolver) callInfo(receiver TypeRef, method MethodID) *CallInfo {
	db := r.db
	args := NewTypeArguments()
	if ins, ok := receiver.AsClassInstance(db); ok {
		args = ForClass(db, ins)
	}
	return &CallInfo{
		ID:            method,
		Returns:       NewTypeResolver(db, &args, nil).Resolve(method.ReturnType(db)),
		TypeArguments: args,
	}
}

// ResolveIdentifier resolves a bare name: a local variable from locals, or a
// method of module called without a receiver.
func (r *CallResolver) ResolveIdentifier(locals map[string]VariableID, module ModuleID, name string) IdentifierKind {
	db := r.db
	if v, ok := locals[name]; ok {
		return IdentifierKind{Tag: IdentifierVariable, Variable: v}
	}
	if m, ok := module.Method(db, name); ok {
		info := r.callInfo(Unknown(), m)
		info.Receiver = ReceiverWithout(db, m)
		return IdentifierKind{Tag: IdentifierMethod, Call: info}
	}
	return IdentifierKind{}
}

// ResolveConstant resolves a capitalized name in module to a constant, or to
// a static method of the module called without arguments.
func (r *CallResolver) ResolveConstant(module ModuleID, name string) ConstantKind {
	db := r.db
	if sym, ok := module.Symbol(db, name); ok && sym.Kind == SymbolConstant {
		return ConstantKind{Tag: ConstantValue, Constant: sym.Constant()}
	}
	if m, ok := module.Method(db, name); ok {
		info := r.callInfo(Unknown(), m)
		info.Receiver = ReceiverWithModule(db, m)
		return ConstantKind{Tag: ConstantMethod, Call: info}
	}
	return ConstantKind{}
}

// ResolvePattern resolves a name used as a pattern against a value of type
// expected: an enum constructor, or a String or Int constant of module.
func (r *CallResolver) ResolvePattern(expected TypeRef, module ModuleID, name string) ConstantPatternKind {
	db := r.db
	if ins, ok := expected.AsClassInstance(db); ok && ins.instanceOf.IsEnum(db) {
		if ctor, ok := ins.instanceOf.Constructor(db, name); ok {
			return ConstantPatternKind{Tag: PatternConstructor, Constructor: ctor}
		}
		return ConstantPatternKind{}
	}

	sym, ok := module.Symbol(db, name)
	if !ok || sym.Kind != SymbolConstant {
		return ConstantPatternKind{}
	}
	typ := sym.Constant().ValueType(db)
	switch {
	case typ.IsString(db):
		return ConstantPatternKind{Tag: PatternString, Constant: sym.Constant()}
	case typ.IsInt(db):
		return ConstantPatternKind{Tag: PatternInt, Constant: sym.Constant()}
	}
	return ConstantPatternKind{}
}

// ResolveIntrinsic returns the call of a compiler intrinsic by name.
func (r *CallResolver) ResolveIntrinsic(name string) (IntrinsicCall, bool) {
	i, ok := r.db.Intrinsic(name)
	if !ok {
		return IntrinsicCall{}, false
	}
	return IntrinsicCall{ID: i, Returns: i.ReturnType()}, true
}

// ResolveClassLiteral describes a literal of the class instance typ, with
// every field in declaration order and its type resolved against the
// instance's arguments.
func (r *CallResolver) ResolveClassLiteral(typ TypeRef) (CallKind, bool) {
	db := r.db
	ins, ok := typ.AsClassInstance(db)
	if !ok || ins.instanceOf.IsEnum(db) {
		return CallKind{}, false
	}

	args := ForClass(db, ins)
	resolver := NewTypeResolver(db, &args, nil)
	info := &ClassInstanceInfo{Class: ins.instanceOf, ResolvedType: typ}
	for _, f := range ins.instanceOf.Fields(db) {
		info.Fields = append(info.Fields, FieldValue{Field: f, Type: resolver.Resolve(f.ValueType(db))})
	}
	return CallKind{Tag: CallClassInstance, Instance: info}, true
}
