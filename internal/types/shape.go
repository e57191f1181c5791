package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ShapeKind is the memory layout category of a value, used to decide how
// generic code is specialized.
type ShapeKind uint8

const (
	ShapeOwned ShapeKind = iota
	ShapeMut
	ShapeRef
	ShapeInt
	ShapeFloat
	ShapeBoolean
	ShapeString
	ShapeNil
	ShapeAtomic
	ShapePointer
	ShapeStack
)

// Shape is comparable, so it can be used directly as a map key.
type Shape struct {
	Kind     ShapeKind
	Bits     uint32
	Sign     Sign
	Instance ClassInstance
}

func OwnedShape() Shape   { return Shape{Kind: ShapeOwned} }
func MutShape() Shape     { return Shape{Kind: ShapeMut} }
func RefShape() Shape     { return Shape{Kind: ShapeRef} }
func BooleanShape() Shape { return Shape{Kind: ShapeBoolean} }
func StringShape() Shape  { return Shape{Kind: ShapeString} }
func NilShape() Shape     { return Shape{Kind: ShapeNil} }
func AtomicShape() Shape  { return Shape{Kind: ShapeAtomic} }
func PointerShape() Shape { return Shape{Kind: ShapePointer} }

func IntShape(bits uint32, sign Sign) Shape { return Shape{Kind: ShapeInt, Bits: bits, Sign: sign} }
func FloatShape(bits uint32) Shape          { return Shape{Kind: ShapeFloat, Bits: bits} }

// StackShape is the shape of an inline class instance. The instance's type
// arguments index refers to interned arguments, not the argument table.
func StackShape(ins ClassInstance) Shape { return Shape{Kind: ShapeStack, Instance: ins} }

// IsForeign reports shapes that only occur for foreign types.
func (s Shape) IsForeign() bool {
	switch s.Kind {
	case ShapeInt:
		return s.Bits != 64 || s.Sign != Signed
	case ShapeFloat:
		return s.Bits == 32
	}
	return false
}

func (s Shape) String() string {
	switch s.Kind {
	case ShapeOwned:
		return "o"
	case ShapeMut:
		return "m"
	case ShapeRef:
		return "r"
	case ShapeInt:
		if s.Sign == Signed {
			return "i" + strconv.FormatUint(uint64(s.Bits), 10)
		}
		return "u" + strconv.FormatUint(uint64(s.Bits), 10)
	case ShapeFloat:
		return "f" + strconv.FormatUint(uint64(s.Bits), 10)
	case ShapeBoolean:
		return "b"
	case ShapeString:
		return "s"
	case ShapeNil:
		return "n"
	case ShapeAtomic:
		return "a"
	case ShapePointer:
		return "p"
	case ShapeStack:
		return fmt.Sprintf("S%d.%d", s.Instance.instanceOf, s.Instance.typeArguments)
	}
	return "?"
}

// ShapeKey renders shapes as a string suitable for specialization caches.
func ShapeKey(shapes []Shape) string {
	var b strings.Builder
	for i, s := range shapes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Shape returns the shape of r. shapes provides the shapes of the type
// parameters in scope; a parameter without one panics.
func (r TypeRef) Shape(db *Database, interned *InternedTypeArguments, shapes map[TypeParameterID]Shape) Shape {
	switch r.kind {
	case RefPlaceholder:
		if v, ok := r.placeholder().Value(db); ok {
			return v.Shape(db, interned, shapes)
		}
		return OwnedShape()
	case RefPointer:
		return PointerShape()
	}
	if !r.kind.qualified() {
		return OwnedShape()
	}

	id := r.id
	switch id.kind {
	case typeIDClassInstance:
		switch r.kind {
		case RefOwned, RefUni:
			return id.classInstance().Shape(db, interned, OwnedShape())
		case RefMut, RefUniMut:
			return id.classInstance().Shape(db, interned, MutShape())
		case RefRef, RefUniRef:
			return id.classInstance().Shape(db, interned, RefShape())
		}
	case typeIDTypeParameter, typeIDRigidTypeParameter:
		p := TypeParameterID(id.id)
		switch r.kind {
		case RefAny, RefOwned, RefUni:
			s, ok := shapes[p]
			if !ok {
				panic(fmt.Sprintf("type parameter '%s' (ID: %d) must be assigned a shape", p.Name(db), p))
			}
			return s
		case RefMut, RefUniMut:
			if s, ok := shapes[p]; ok && s.Kind != ShapeOwned {
				return s
			}
			return MutShape()
		case RefRef, RefUniRef:
			if s, ok := shapes[p]; ok && s.Kind != ShapeOwned {
				return s
			}
			return RefShape()
		}
	case typeIDAtomicTypeParameter:
		switch r.kind {
		case RefOwned, RefRef, RefMut:
			return AtomicShape()
		}
	case typeIDForeignInt:
		if r.kind == RefOwned || r.kind == RefUni {
			return IntShape(id.id, id.sign)
		}
	case typeIDForeignFloat:
		if r.kind == RefOwned || r.kind == RefUni {
			return FloatShape(id.id)
		}
	}

	switch r.kind {
	case RefMut, RefUniMut:
		return MutShape()
	case RefRef, RefUniRef:
		return RefShape()
	}
	return OwnedShape()
}
