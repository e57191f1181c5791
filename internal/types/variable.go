package types

import "keel/internal/location"

type variableDecl struct {
	name      string
	valueType TypeRef
	mutable   bool
	location  location.Location
}

func (db *Database) AllocVariable(name string, typ TypeRef, mutable bool, loc location.Location) VariableID {
	db.checkAlloc("variable")
	id := nextIndex(len(db.variables), tableLimit, "variables")
	db.variables = append(db.variables, variableDecl{name: name, valueType: typ, mutable: mutable, location: loc})
	return VariableID(id)
}

func (id VariableID) get(db *Database) *variableDecl { return &db.variables[id] }

func (id VariableID) Name(db *Database) string                { return id.get(db).name }
func (id VariableID) ValueType(db *Database) TypeRef          { return id.get(db).valueType }
func (id VariableID) SetValueType(db *Database, typ TypeRef)  { id.get(db).valueType = typ }
func (id VariableID) IsMutable(db *Database) bool             { return id.get(db).mutable }
func (id VariableID) Location(db *Database) location.Location { return id.get(db).location }

// constantDecl is a module-level constant. Constants are limited to values of
// a few builtin types and can't be reassigned.
type constantDecl struct {
	id            uint16
	module        ModuleID
	location      location.Location
	name          string
	documentation string
	valueType     TypeRef
	visibility    Visibility
}

// AllocConstant registers a constant and defines it as a symbol of module.
func (db *Database) AllocConstant(module ModuleID, loc location.Location, name string, visibility Visibility, typ TypeRef) ConstantID {
	db.checkAlloc("constant")
	global := ConstantID(nextIndex(len(db.constants), tableLimit, "constants"))
	local := nextIndex(len(module.get(db).constants), ConstantsLimit+1, "module constants")

	db.constants = append(db.constants, constantDecl{
		id:         uint16(local),
		module:     module,
		location:   loc,
		name:       name,
		valueType:  typ,
		visibility: visibility,
	})

	m := module.get(db)
	m.constants = append(m.constants, global)
	module.NewSymbol(db, name, ConstantSymbol(global))
	return global
}

func (id ConstantID) get(db *Database) *constantDecl { return &db.constants[id] }

// ModuleLocalID returns the index of the constant within its module.
func (id ConstantID) ModuleLocalID(db *Database) uint16         { return id.get(db).id }
func (id ConstantID) Location(db *Database) location.Location   { return id.get(db).location }
func (id ConstantID) Name(db *Database) string                  { return id.get(db).name }
func (id ConstantID) Module(db *Database) ModuleID              { return id.get(db).module }
func (id ConstantID) SetValueType(db *Database, typ TypeRef)    { id.get(db).valueType = typ }
func (id ConstantID) ValueType(db *Database) TypeRef            { return id.get(db).valueType }
func (id ConstantID) IsPublic(db *Database) bool                { return id.get(db).visibility == VisibilityPublic }
func (id ConstantID) SetDocumentation(db *Database, doc string) { id.get(db).documentation = doc }
func (id ConstantID) Documentation(db *Database) string         { return id.get(db).documentation }
