package types

import (
	"strconv"
	"strings"
)

// maxFormatDepth bounds how deep nested types are rendered.
const maxFormatDepth = 8

// Format renders a type the way it's written in source code, such as
// "ref Array[Int]" or "fn (Int) -> Nil". Unknown types render as "?".
func Format(db *Database, typ TypeRef) string {
	f := formatter{db: db}
	f.ref(typ)
	return f.buf.String()
}

// FormatID renders a type without ownership.
func FormatID(db *Database, id TypeID) string {
	f := formatter{db: db}
	f.id(id)
	return f.buf.String()
}

type formatter struct {
	db    *Database
	buf   strings.Builder
	depth int
}

func (f *formatter) enter() bool {
	if f.depth >= maxFormatDepth {
		f.buf.WriteString("...")
		return false
	}
	f.depth++
	return true
}

func (f *formatter) leave() { f.depth-- }

var refPrefixes = [...]string{
	RefOwned:  "",
	RefUni:    "uni ",
	RefRef:    "ref ",
	RefMut:    "mut ",
	RefUniRef: "uni ref ",
	RefUniMut: "uni mut ",
	RefAny:    "",
}

var ownershipPrefixes = [...]string{
	OwnershipAny:     "",
	OwnershipOwned:   "move ",
	OwnershipUni:     "uni ",
	OwnershipRef:     "ref ",
	OwnershipMut:     "mut ",
	OwnershipUniRef:  "uni ref ",
	OwnershipUniMut:  "uni mut ",
	OwnershipPointer: "Pointer ",
}

func (f *formatter) ref(typ TypeRef) {
	switch typ.kind {
	case RefUnknown:
		f.buf.WriteByte('?')
	case RefNever:
		f.buf.WriteString("Never")
	case RefError:
		f.buf.WriteString("<error>")
	case RefPointer:
		f.buf.WriteString("Pointer[")
		f.id(typ.id)
		f.buf.WriteByte(']')
	case RefPlaceholder:
		p := typ.placeholder()
		if v, ok := p.Value(f.db); ok {
			f.ref(v)
			return
		}
		f.buf.WriteString(ownershipPrefixes[p.ownership])
		f.buf.WriteByte('?')
	default:
		f.buf.WriteString(refPrefixes[typ.kind])
		f.id(typ.id)
	}
}

func (f *formatter) id(id TypeID) {
	db := f.db
	switch id.kind {
	case typeIDClass:
		f.buf.WriteString(ClassID(id.id).Name(db))
	case typeIDTrait:
		f.buf.WriteString(TraitID(id.id).Name(db))
	case typeIDModule:
		f.buf.WriteString(ModuleID(id.id).Name(db).String())
	case typeIDClassInstance:
		f.classInstance(id.classInstance())
	case typeIDTraitInstance:
		ins := id.traitInstance()
		f.buf.WriteString(ins.instanceOf.Name(db))
		if ins.instanceOf.IsGeneric(db) {
			args, _ := ins.TypeArguments(db)
			f.arguments(ins.instanceOf.TypeParameters(db), args, "[", "]")
		}
	case typeIDTypeParameter, typeIDRigidTypeParameter, typeIDAtomicTypeParameter:
		f.buf.WriteString(TypeParameterID(id.id).Name(db))
	case typeIDClosure:
		f.closure(ClosureID(id.id))
	case typeIDForeignInt:
		if id.sign == Unsigned {
			f.buf.WriteByte('U')
		}
		f.buf.WriteString("Int")
		f.buf.WriteString(strconv.FormatUint(uint64(id.id), 10))
	case typeIDForeignFloat:
		f.buf.WriteString("Float")
		f.buf.WriteString(strconv.FormatUint(uint64(id.id), 10))
	}
}

func (f *formatter) classInstance(ins ClassInstance) {
	db := f.db
	cls := ins.instanceOf
	if !cls.IsGeneric(db) {
		f.buf.WriteString(cls.Name(db))
		return
	}

	args, _ := ins.TypeArguments(db)
	if cls.Kind(db).IsTuple() {
		f.arguments(cls.TypeParameters(db), args, "(", ")")
		return
	}
	f.buf.WriteString(cls.Name(db))
	f.arguments(cls.TypeParameters(db), args, "[", "]")
}

// arguments writes the values assigned to params, falling back to the
// parameter's name when one isn't assigned.
func (f *formatter) arguments(params []TypeParameterID, args *TypeArguments, open, end string) {
	if !f.enter() {
		return
	}
	defer f.leave()

	f.buf.WriteString(open)
	for i, p := range params {
		if i > 0 {
			f.buf.WriteString(", ")
		}
		var v TypeRef
		ok := false
		if args != nil {
			v, ok = args.Get(p)
		}
		if ok {
			f.ref(v)
		} else {
			f.buf.WriteString(p.Name(f.db))
		}
	}
	f.buf.WriteString(end)
}

func (f *formatter) closure(c ClosureID) {
	if !f.enter() {
		return
	}
	defer f.leave()

	f.buf.WriteString("fn ")
	if c.IsMoving(f.db) {
		f.buf.WriteString("move ")
	}
	f.buf.WriteByte('(')
	for i, arg := range c.Arguments(f.db) {
		if i > 0 {
			f.buf.WriteString(", ")
		}
		f.ref(arg.ValueType)
	}
	f.buf.WriteString(") -> ")
	f.ref(c.ReturnType(f.db))
}
