package types

import (
	"errors"
	"fmt"
	"math"

	"fortio.org/safecast"
)

// Builtin class IDs. The runtime indexes its class table with these, so the
// order must never change.
const (
	StringClassID ClassID = iota
	ByteArrayClassID
	IntClassID
	FloatClassID
	BoolClassID
	NilClassID
	Tuple1ClassID
	Tuple2ClassID
	Tuple3ClassID
	Tuple4ClassID
	Tuple5ClassID
	Tuple6ClassID
	Tuple7ClassID
	Tuple8ClassID
	ArrayClassID
	CheckedIntResultClassID

	// FirstUserClassID is the ID of the first class not defined by the
	// compiler itself.
	FirstUserClassID
)

const (
	// ConstructorsLimit is the maximum number of constructors of an enum.
	ConstructorsLimit = math.MaxUint16

	// FieldsLimit is the maximum number of fields of a class.
	FieldsLimit = math.MaxUint8

	// ArrayLimit is the maximum number of values in an array literal.
	ArrayLimit = math.MaxUint16

	// MethodsLimit leaves math.MaxUint32 free for use as a sentinel.
	MethodsLimit = math.MaxUint32 - 1

	// ConstantsLimit is the maximum number of constants per module.
	ConstantsLimit = math.MaxUint16

	tableLimit = math.MaxUint32
)

// Names of well-known modules, types and methods.
const (
	StringModule           = "std.string"
	ToStringTrait          = "ToString"
	ToStringMethod         = "to_string"
	CallMethodName         = "call"
	EqMethod               = "=="
	MainClass              = "Main"
	MainMethod             = "main"
	DropModule             = "std.drop"
	DropTrait              = "Drop"
	DropMethod             = "drop"
	DropperMethod          = "$dropper"
	AsyncDropperMethod     = "$async_dropper"
	OptionModule           = "std.option"
	OptionClass            = "Option"
	ResultModule           = "std.result"
	ResultClass            = "Result"
	OptionSome             = "Some"
	OptionNone             = "None"
	ResultOk               = "Ok"
	ResultError            = "Error"
	ArrayWithCapacity      = "with_capacity"
	ArrayPush              = "push"
	ArrayInternalName      = "$Array"
	DerefPointerField      = "0"
	EnumTagField           = "tag"
	EnumTagIndex           = 0
	ImportModuleItselfName = "self"
)

const (
	intName              = "Int"
	floatName            = "Float"
	stringName           = "String"
	arrayName            = "Array"
	boolName             = "Bool"
	nilName              = "Nil"
	byteArrayName        = "ByteArray"
	checkedIntResultName = "CheckedIntResult"
)

var tupleNames = [...]string{"Tuple1", "Tuple2", "Tuple3", "Tuple4", "Tuple5", "Tuple6", "Tuple7", "Tuple8"}

// ErrCapacity is wrapped by the panics raised when a table or per-entity
// limit is exceeded.
var ErrCapacity = errors.New("capacity exceeded")

// Entity IDs. They index the tables of a Database and are only meaningful
// together with the Database that produced them.
type (
	ModuleID        uint32
	ClassID         uint32
	TraitID         uint32
	MethodID        uint32
	FieldID         uint32
	TypeParameterID uint32
	ConstructorID   uint32
	ClosureID       uint32
	VariableID      uint32
	ConstantID      uint32
)

// nextIndex returns the index the next entry of a table with n entries gets,
// panicking when that index would reach limit.
func nextIndex(n int, limit uint64, table string) uint32 {
	id, err := safecast.Conv[uint32](n)
	if err == nil && uint64(id) >= limit {
		err = ErrCapacity
	}
	if err != nil {
		panic(fmt.Errorf("types: %s overflow: %w", table, err))
	}
	return id
}
