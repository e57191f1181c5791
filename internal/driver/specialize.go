package driver

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"keel/internal/trace"
	"keel/internal/types"
)

// specialize computes the shape of every resolved binding and specializes
// the generic classes its type refers to.
func (r *runner) specialize(ctx context.Context) error {
	db := r.db
	interned := types.NewInternedTypeArguments()
	spec := types.NewSpecializer(db, interned, nil)
	created := set.New[types.ClassID](8)

	for i := range r.result.Bindings {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := &r.result.Bindings[i]
		if !b.Resolved {
			continue
		}
		b.Shape = spec.Shape(b.Declared)
		b.Classes = specializeType(db, spec, b.Declared, nil)

		for _, cls := range b.Classes {
			if _, ok := cls.SpecializationSource(db); ok && created.Insert(cls) {
				r.result.Specialized = append(r.result.Specialized, cls)
			}
		}
	}

	trace.CurrentSpan(ctx).WithExtra("specialized", fmt.Sprint(len(r.result.Specialized)))
	db.Advance(types.PhaseSpecialized)
	return nil
}

// specializeType appends the class of typ and of every type argument nested
// in it, specializing generic ones.
func specializeType(db *types.Database, spec *types.Specializer, typ types.TypeRef, out []types.ClassID) []types.ClassID {
	id, ok := typ.TypeID(db)
	if !ok {
		return out
	}
	ins, ok := id.ClassInstance()
	if !ok {
		return out
	}

	out = append(out, spec.SpecializeClass(ins))

	cls := ins.InstanceOf()
	if !cls.IsGeneric(db) {
		return out
	}
	args, ok := ins.TypeArguments(db)
	if !ok {
		return out
	}
	for _, p := range cls.TypeParameters(db) {
		if v, ok := args.Get(p); ok {
			out = specializeType(db, spec, v, out)
		}
	}
	return out
}
