package skema

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/multierr"
)

// ErrDuplicateDiscriminator is wrapped when two branches of a discriminated
// union share a discriminator literal.
var ErrDuplicateDiscriminator = errors.New("skema: duplicate discriminator value")

// DiscriminatedUnion returns a union whose branch is selected by the literal
// value of the key field. Every branch must be an object schema declaring key
// as a literal, and no two branches may share that literal. All problems found
// are reported together in one *ConstructionError.
func DiscriminatedUnion(key string, branches ...*Schema) (*Schema, error) {
	var errs error
	if key == "" {
		errs = multierr.Append(errs, errors.New("empty discriminator key"))
	}
	if len(branches) == 0 {
		errs = multierr.Append(errs, errors.New("at least one branch is required"))
	}

	index := make(map[any]*Schema, len(branches))
	owner := make(map[any]int, len(branches))
	s := newSchema(KindDiscriminatedUnion)
	for i, b := range branches {
		if b == nil {
			errs = multierr.Append(errs, fmt.Errorf("branch %d is nil", i))
			continue
		}
		s.depth = max(s.depth, b.depth+1)
		if b.kind != KindObject {
			errs = multierr.Append(errs, fmt.Errorf("branch %d is a %s schema, want object", i, b.kind))
			continue
		}
		if key == "" {
			continue
		}
		f, ok := b.field(key)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("branch %d has no %q field", i, key))
			continue
		}
		if f.kind != KindLiteral {
			errs = multierr.Append(errs, fmt.Errorf("branch %d field %q is a %s schema, want literal", i, key, f.kind))
			continue
		}
		k, _ := literalKey(f.literal)
		if j, dup := owner[k]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%w %s in branches %d and %d", ErrDuplicateDiscriminator, literalText(f.literal), j, i))
			continue
		}
		owner[k] = i
		index[k] = b
	}
	if errs != nil {
		return nil, &ConstructionError{Op: "DiscriminatedUnion", Reason: errs.Error(), Err: errs}
	}

	s.discriminator = key
	s.branches = slices.Clone(branches)
	s.index = index
	return s, nil
}

// MustDiscriminatedUnion is DiscriminatedUnion that panics on error.
func MustDiscriminatedUnion(key string, branches ...*Schema) *Schema {
	s, err := DiscriminatedUnion(key, branches...)
	if err != nil {
		panic(err)
	}
	return s
}
