package types

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/hashicorp/go-set/v3"

	"keel/internal/location"
)

// Capture is a variable captured by a closure, with the type it's captured
// as.
type Capture struct {
	Variable VariableID
	As       TypeRef
}

// closureDecl is an anonymous function. Closures have no type parameters of
// their own but may refer to those of the surrounding method or type.
type closureDecl struct {
	moving          bool
	captured        *set.Set[Capture]
	capturedSelf    TypeRef
	hasCapturedSelf bool
	arguments       indexMap[string, Argument]
	returnType      TypeRef
}

func (db *Database) AllocClosure(moving bool) ClosureID {
	db.checkAlloc("closure")
	id := nextIndex(len(db.closures), tableLimit, "closures")
	db.closures = append(db.closures, closureDecl{
		moving:   moving,
		captured: set.New[Capture](0),
	})
	return ClosureID(id)
}

func (id ClosureID) get(db *Database) *closureDecl { return &db.closures[id] }

func (id ClosureID) IsMoving(db *Database) bool { return id.get(db).moving }

func (id ClosureID) NumberOfArguments(db *Database) int { return id.get(db).arguments.len() }

func (id ClosureID) PositionalArgumentInputType(db *Database, index int) (TypeRef, bool) {
	_, arg, ok := id.get(db).arguments.at(index)
	return arg.ValueType, ok
}

func (id ClosureID) Arguments(db *Database) []Argument { return id.get(db).arguments.valueList() }

func (id ClosureID) NewArgument(db *Database, name string, variableType, argumentType TypeRef, loc location.Location) VariableID {
	v := db.AllocVariable(name, variableType, false, loc)
	args := &id.get(db).arguments
	args.insert(name, Argument{Index: args.len(), Name: name, ValueType: argumentType, Variable: v})
	return v
}

// NewAnonymousArgument adds an argument that can't be referred to. Its
// variable is always 0.
func (id ClosureID) NewAnonymousArgument(db *Database, typ TypeRef) {
	args := &id.get(db).arguments
	name := fmt.Sprintf("_arg%d", args.len())
	args.insert(name, Argument{Index: args.len(), Name: name, ValueType: typ})
}

func (id ClosureID) SetReturnType(db *Database, typ TypeRef) { id.get(db).returnType = typ }

func (id ClosureID) ReturnType(db *Database) TypeRef { return id.get(db).returnType }

func (id ClosureID) SetCapturedSelfType(db *Database, typ TypeRef) {
	c := id.get(db)
	c.capturedSelf = typ
	c.hasCapturedSelf = true
}

func (id ClosureID) CapturedSelfType(db *Database) (TypeRef, bool) {
	c := id.get(db)
	return c.capturedSelf, c.hasCapturedSelf
}

func (id ClosureID) AddCapture(db *Database, variable VariableID, as TypeRef) {
	id.get(db).captured.Insert(Capture{Variable: variable, As: as})
}

// Captured returns the captures ordered by variable.
func (id ClosureID) Captured(db *Database) []Capture {
	out := id.get(db).captured.Slice()
	slices.SortFunc(out, func(a, b Capture) int {
		if c := cmp.Compare(a.Variable, b.Variable); c != 0 {
			return c
		}
		return cmp.Compare(a.As.kind, b.As.kind)
	})
	return out
}

// CanInferAsUni reports whether the closure may be treated as a unique
// value: everything it captures must be sendable, and a captured self must be
// stack allocated.
func (id ClosureID) CanInferAsUni(db *Database) bool {
	c := id.get(db)
	for capture := range c.captured.Items() {
		if !capture.As.IsSendable(db) {
			return false
		}
	}
	if c.hasCapturedSelf {
		return c.capturedSelf.IsStackAllocated(db)
	}
	return true
}

// Block is a body of code with arguments and a return type.
type Block interface {
	NewArgument(db *Database, name string, variableType, argumentType TypeRef, loc location.Location) VariableID
	ReturnType(db *Database) TypeRef
	SetReturnType(db *Database, typ TypeRef)
}

var (
	_ Block = MethodID(0)
	_ Block = ClosureID(0)
)
