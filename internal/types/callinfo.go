package types

import "fmt"

type ReceiverKind uint8

const (
	// ReceiverExplicit calls have a receiver expression, like foo.bar().
	ReceiverExplicit ReceiverKind = iota
	// ReceiverImplicit calls use self implicitly.
	ReceiverImplicit
	// ReceiverClass calls a static method; there's no receiver expression
	// to evaluate.
	ReceiverClass
	// ReceiverExtern calls an extern function.
	ReceiverExtern
)

func ReceiverWithout(db *Database, method MethodID) ReceiverKind {
	if method.IsExtern(db) {
		return ReceiverExtern
	}
	if _, ok := method.Receiver(db).AsClass(db); ok {
		return ReceiverClass
	}
	return ReceiverImplicit
}

func ReceiverWith(db *Database, receiver TypeRef, method MethodID) ReceiverKind {
	if method.IsExtern(db) {
		return ReceiverExtern
	}
	if _, ok := receiver.AsClass(db); ok {
		return ReceiverClass
	}
	return ReceiverExplicit
}

func ReceiverWithModule(db *Database, method MethodID) ReceiverKind {
	if method.IsExtern(db) {
		return ReceiverExtern
	}
	return ReceiverClass
}

func (k ReceiverKind) IsExplicit() bool { return k == ReceiverExplicit }

type CallInfo struct {
	ID            MethodID
	Receiver      ReceiverKind
	Returns       TypeRef
	Dynamic       bool
	TypeArguments TypeArguments
}

type ClosureCallInfo struct {
	ID      ClosureID
	Returns TypeRef
}

type IntrinsicCall struct {
	ID      Intrinsic
	Returns TypeRef
}

type FieldInfo struct {
	Class        ClassID
	ID           FieldID
	VariableType TypeRef
	AsPointer    bool
}

type FieldValue struct {
	Field FieldID
	Type  TypeRef
}

type ClassInstanceInfo struct {
	Class        ClassID
	ResolvedType TypeRef
	Fields       []FieldValue
}

type CallKindTag uint8

const (
	CallUnknown CallKindTag = iota
	CallMethod
	CallClosure
	CallGetField
	CallSetField
	CallGetConstant
	CallReadPointer
	CallWritePointer
	CallClassInstance
)

// CallKind records what a call expression resolved to. Only the member
// matching Tag is set.
type CallKind struct {
	Tag      CallKindTag
	Call     *CallInfo
	Closure  *ClosureCallInfo
	Field    *FieldInfo
	Constant ConstantID
	Pointee  TypeRef
	Instance *ClassInstanceInfo
}

type IdentifierKindTag uint8

const (
	IdentifierUnknown IdentifierKindTag = iota
	IdentifierVariable
	IdentifierMethod
)

type IdentifierKind struct {
	Tag      IdentifierKindTag
	Variable VariableID
	Call     *CallInfo
}

type ConstantKindTag uint8

const (
	ConstantUnknown ConstantKindTag = iota
	ConstantValue
	ConstantMethod
)

type ConstantKind struct {
	Tag      ConstantKindTag
	Constant ConstantID
	Call     *CallInfo
}

type ConstantPatternTag uint8

const (
	PatternUnknown ConstantPatternTag = iota
	PatternConstructor
	PatternString
	PatternInt
)

type ConstantPatternKind struct {
	Tag         ConstantPatternTag
	Constructor ConstructorID
	Constant    ConstantID
}

type ThrowKindTag uint8

const (
	ThrowUnknown ThrowKindTag = iota
	ThrowInfer
	ThrowOption
	ThrowResult
)

// ThrowKind describes how a value can fail: through an inferred type, an
// Option or a Result.
type ThrowKind struct {
	Tag         ThrowKindTag
	Placeholder TypePlaceholderID
	Ok          TypeRef
	Error       TypeRef
}

func (k ThrowKind) ThrowTypeName(db *Database, ok TypeRef) string {
	switch k.Tag {
	case ThrowOption:
		return fmt.Sprintf("Option[%s]", Format(db, ok))
	case ThrowResult:
		return fmt.Sprintf("Result[%s, %s]", Format(db, ok), Format(db, k.Error))
	default:
		return "?"
	}
}

// AsUni turns an owned error type of a Result into a unique one.
func (k ThrowKind) AsUni(db *Database) ThrowKind {
	if k.Tag == ThrowResult && k.Error.IsOwned(db) {
		k.Error = k.Error.AsUni(db)
	}
	return k
}
