package types

import "keel/internal/location"

type fieldDecl struct {
	index         int
	name          string
	valueType     TypeRef
	visibility    Visibility
	module        ModuleID
	location      location.Location
	documentation string
}

func (db *Database) allocField(name string, index int, value TypeRef, visibility Visibility, module ModuleID, loc location.Location) FieldID {
	db.checkAlloc("field")
	id := nextIndex(len(db.fields), tableLimit, "fields")
	db.fields = append(db.fields, fieldDecl{
		index:      index,
		name:       name,
		valueType:  value,
		visibility: visibility,
		module:     module,
		location:   loc,
	})
	return FieldID(id)
}

func (id FieldID) get(db *Database) *fieldDecl { return &db.fields[id] }

func (id FieldID) Name(db *Database) string { return id.get(db).name }

func (id FieldID) Index(db *Database) int { return id.get(db).index }

func (id FieldID) ValueType(db *Database) TypeRef { return id.get(db).valueType }

func (id FieldID) SetValueType(db *Database, v TypeRef) { id.get(db).valueType = v }

func (id FieldID) IsPublic(db *Database) bool { return id.get(db).visibility == VisibilityPublic }

func (id FieldID) Module(db *Database) ModuleID { return id.get(db).module }

// IsVisibleTo reports whether code in module may access the field from
// outside the class. Type-private fields are only reachable through the class
// itself.
func (id FieldID) IsVisibleTo(db *Database, module ModuleID) bool {
	f := id.get(db)
	switch f.visibility {
	case VisibilityPublic:
		return true
	case VisibilityPrivate:
		return f.module.HasSameRootNamespace(db, module)
	default:
		return false
	}
}

func (id FieldID) Location(db *Database) location.Location { return id.get(db).location }

func (id FieldID) SetDocumentation(db *Database, doc string) { id.get(db).documentation = doc }

func (id FieldID) Documentation(db *Database) string { return id.get(db).documentation }

type constructorDecl struct {
	id            uint16
	name          string
	documentation string
	location      location.Location
	arguments     []TypeRef
}

func (db *Database) allocConstructor(local uint16, name string, members []TypeRef, loc location.Location) ConstructorID {
	db.checkAlloc("constructor")
	id := nextIndex(len(db.constructors), tableLimit, "constructors")
	db.constructors = append(db.constructors, constructorDecl{
		id:        local,
		name:      name,
		location:  loc,
		arguments: members,
	})
	return ConstructorID(id)
}

func (id ConstructorID) get(db *Database) *constructorDecl { return &db.constructors[id] }

// ID returns the index of the constructor within its enum.
func (id ConstructorID) ID(db *Database) uint16 { return id.get(db).id }

func (id ConstructorID) Name(db *Database) string { return id.get(db).name }

func (id ConstructorID) Arguments(db *Database) []TypeRef {
	return append([]TypeRef(nil), id.get(db).arguments...)
}

func (id ConstructorID) SetArguments(db *Database, members []TypeRef) {
	id.get(db).arguments = members
}

func (id ConstructorID) NumberOfArguments(db *Database) int { return len(id.get(db).arguments) }

func (id ConstructorID) Location(db *Database) location.Location { return id.get(db).location }

func (id ConstructorID) SetDocumentation(db *Database, doc string) { id.get(db).documentation = doc }

func (id ConstructorID) Documentation(db *Database) string { return id.get(db).documentation }
