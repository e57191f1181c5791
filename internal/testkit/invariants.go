// Package testkit holds consistency checks that tests run against a type
// database after the driver has been through it.
package testkit

import (
	"errors"
	"fmt"
	"slices"

	"keel/internal/types"
)

// CheckSpecializations verifies the specialization registry of db:
//  1. a specialized class points at a generic, unspecialized source
//  2. it has one shape per type parameter of the source
//  3. the source maps those shapes back to it
//  4. it carries the same fields and constructors as the source
//
// All violations are returned joined together.
func CheckSpecializations(db *types.Database) error {
	var errs []error
	for i := range db.NumberOfClasses() {
		cls := types.ClassID(i)
		src, ok := cls.SpecializationSource(db)
		if !ok {
			continue
		}
		if err := checkSpecialization(db, src, cls); err != nil {
			errs = append(errs, fmt.Errorf("%s (class %d): %w", cls.Name(db), cls, err))
		}
	}
	return errors.Join(errs...)
}

func checkSpecialization(db *types.Database, src, spec types.ClassID) error {
	if !src.IsGeneric(db) {
		return fmt.Errorf("source class %d isn't generic", src)
	}
	if _, nested := src.SpecializationSource(db); nested {
		return fmt.Errorf("source class %d is itself a specialization", src)
	}

	shapes := spec.Shapes(db)
	if got, want := len(shapes), src.NumberOfTypeParameters(db); got != want {
		return fmt.Errorf("%d shapes for %d type parameters", got, want)
	}
	if back, ok := src.Specialization(db, shapes); !ok || back != spec {
		return fmt.Errorf("source doesn't map %s back to it", types.ShapeKey(shapes))
	}

	if spec.Name(db) != src.Name(db) || spec.Kind(db) != src.Kind(db) || spec.Module(db) != src.Module(db) {
		return fmt.Errorf("identity differs from source class %d", src)
	}
	if got, want := spec.FieldNames(db), src.FieldNames(db); !slices.Equal(got, want) {
		return fmt.Errorf("fields %v, source has %v", got, want)
	}
	if got, want := spec.NumberOfConstructors(db), src.NumberOfConstructors(db); got != want {
		return fmt.Errorf("%d constructors, source has %d", got, want)
	}
	return nil
}
