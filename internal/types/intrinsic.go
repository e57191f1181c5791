package types

// Intrinsic is a function implemented by the compiler itself.
type Intrinsic uint8

const (
	IntrinsicFloatAdd Intrinsic = iota
	IntrinsicFloatCeil
	IntrinsicFloatDiv
	IntrinsicFloatEq
	IntrinsicFloatFloor
	IntrinsicFloatFromBits
	IntrinsicFloatGe
	IntrinsicFloatGt
	IntrinsicFloatIsInf
	IntrinsicFloatIsNan
	IntrinsicFloatLe
	IntrinsicFloatLt
	IntrinsicFloatMod
	IntrinsicFloatMul
	IntrinsicFloatSub
	IntrinsicFloatToBits
	IntrinsicIntBitAnd
	IntrinsicIntBitNot
	IntrinsicIntBitOr
	IntrinsicIntBitXor
	IntrinsicIntDiv
	IntrinsicIntEq
	IntrinsicIntGe
	IntrinsicIntGt
	IntrinsicIntLe
	IntrinsicIntLt
	IntrinsicIntRem
	IntrinsicIntRotateLeft
	IntrinsicIntRotateRight
	IntrinsicIntShl
	IntrinsicIntShr
	IntrinsicIntUnsignedShr
	IntrinsicIntWrappingAdd
	IntrinsicIntWrappingMul
	IntrinsicIntWrappingSub
	IntrinsicMoved
	IntrinsicPanic
	IntrinsicStringConcat
	IntrinsicState
	IntrinsicProcess
	IntrinsicFloatRound
	IntrinsicFloatPowi
	IntrinsicIntCheckedAdd
	IntrinsicIntCheckedMul
	IntrinsicIntCheckedSub
	IntrinsicIntSwapBytes
	IntrinsicIntAbsolute
	IntrinsicIntCompareSwap
	IntrinsicSpinLoopHint
	IntrinsicBoolEq

	numIntrinsics
)

type intrinsicReturn uint8

const (
	returnsFloat intrinsicReturn = iota
	returnsInt
	returnsBool
	returnsNil
	returnsNever
	returnsString
	returnsCheckedResult
	returnsBytePointer
)

type intrinsicInfo struct {
	name    string
	returns intrinsicReturn
}

var intrinsicTable = [numIntrinsics]intrinsicInfo{
	IntrinsicFloatAdd:       {"float_add", returnsFloat},
	IntrinsicFloatCeil:      {"float_ceil", returnsFloat},
	IntrinsicFloatDiv:       {"float_div", returnsFloat},
	IntrinsicFloatEq:        {"float_eq", returnsBool},
	IntrinsicFloatFloor:     {"float_floor", returnsFloat},
	IntrinsicFloatFromBits:  {"float_from_bits", returnsFloat},
	IntrinsicFloatGe:        {"float_ge", returnsBool},
	IntrinsicFloatGt:        {"float_gt", returnsBool},
	IntrinsicFloatIsInf:     {"float_is_inf", returnsBool},
	IntrinsicFloatIsNan:     {"float_is_nan", returnsBool},
	IntrinsicFloatLe:        {"float_le", returnsBool},
	IntrinsicFloatLt:        {"float_lt", returnsBool},
	IntrinsicFloatMod:       {"float_mod", returnsFloat},
	IntrinsicFloatMul:       {"float_mul", returnsFloat},
	IntrinsicFloatSub:       {"float_sub", returnsFloat},
	IntrinsicFloatToBits:    {"float_to_bits", returnsInt},
	IntrinsicIntBitAnd:      {"int_bit_and", returnsInt},
	IntrinsicIntBitNot:      {"int_bit_not", returnsInt},
	IntrinsicIntBitOr:       {"int_bit_or", returnsInt},
	IntrinsicIntBitXor:      {"int_bit_xor", returnsInt},
	IntrinsicIntDiv:         {"int_div", returnsInt},
	IntrinsicIntEq:          {"int_eq", returnsBool},
	IntrinsicIntGe:          {"int_ge", returnsBool},
	IntrinsicIntGt:          {"int_gt", returnsBool},
	IntrinsicIntLe:          {"int_le", returnsBool},
	IntrinsicIntLt:          {"int_lt", returnsBool},
	IntrinsicIntRem:         {"int_rem", returnsInt},
	IntrinsicIntRotateLeft:  {"int_rotate_left", returnsInt},
	IntrinsicIntRotateRight: {"int_rotate_right", returnsInt},
	IntrinsicIntShl:         {"int_shl", returnsInt},
	IntrinsicIntShr:         {"int_shr", returnsInt},
	IntrinsicIntUnsignedShr: {"int_unsigned_shr", returnsInt},
	IntrinsicIntWrappingAdd: {"int_wrapping_add", returnsInt},
	IntrinsicIntWrappingMul: {"int_wrapping_mul", returnsInt},
	IntrinsicIntWrappingSub: {"int_wrapping_sub", returnsInt},
	IntrinsicMoved:          {"moved", returnsNil},
	IntrinsicPanic:          {"panic", returnsNever},
	IntrinsicStringConcat:   {"string_concat", returnsString},
	IntrinsicState:          {"state", returnsBytePointer},
	IntrinsicProcess:        {"process", returnsBytePointer},
	IntrinsicFloatRound:     {"float_round", returnsFloat},
	IntrinsicFloatPowi:      {"float_powi", returnsFloat},
	IntrinsicIntCheckedAdd:  {"int_checked_add", returnsCheckedResult},
	IntrinsicIntCheckedMul:  {"int_checked_mul", returnsCheckedResult},
	IntrinsicIntCheckedSub:  {"int_checked_sub", returnsCheckedResult},
	IntrinsicIntSwapBytes:   {"int_swap_bytes", returnsInt},
	IntrinsicIntAbsolute:    {"int_absolute", returnsInt},
	IntrinsicIntCompareSwap: {"int_compare_swap", returnsBool},
	IntrinsicSpinLoopHint:   {"spin_loop_hint", returnsNil},
	IntrinsicBoolEq:         {"bool_eq", returnsBool},
}

func intrinsicMapping() map[string]Intrinsic {
	m := make(map[string]Intrinsic, numIntrinsics)
	for i := range numIntrinsics {
		m[intrinsicTable[i].name] = i
	}
	return m
}

// Intrinsics returns every intrinsic in declaration order.
func Intrinsics() []Intrinsic {
	out := make([]Intrinsic, 0, numIntrinsics)
	for i := range numIntrinsics {
		out = append(out, i)
	}
	return out
}

func (i Intrinsic) Name() string { return intrinsicTable[i].name }

func (i Intrinsic) String() string { return i.Name() }

func (i Intrinsic) ReturnType() TypeRef {
	switch intrinsicTable[i].returns {
	case returnsFloat:
		return Float()
	case returnsInt:
		return Int()
	case returnsBool:
		return Boolean()
	case returnsNil:
		return Nil()
	case returnsNever:
		return Never()
	case returnsString:
		return String()
	case returnsCheckedResult:
		return OwnedOf(ClassInstanceType(NewClassInstance(CheckedIntResultClassID)))
	default:
		return PointerTo(ForeignIntType(8, Unsigned))
	}
}
