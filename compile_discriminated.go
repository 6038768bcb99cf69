package skema

import (
	"github.com/reoring/skema/internal/pathctx"
)

// compileDiscriminated builds the literal -> branch table once; each call is
// one map lookup followed by the matched branch alone.
func compileDiscriminated(ctx pathctx.Context, s *Schema) checkFunc {
	path, custom, key := ctx.Path(), s.message, s.discriminator
	keyPath := path.Append(key)

	table := make(map[any]checkFunc, len(s.branches))
	for _, b := range s.branches {
		f, _ := b.field(key)
		k, _ := literalKey(f.literal)
		table[k] = compileNode(ctx.Nest(), b)
	}
	ctx.Trace("discriminated union", "key", key, "branches", len(table))

	return func(v any) Result {
		m, ok := asObject(v)
		if !ok {
			return Result{Issue: typeFailure(path.Clone(), KindObject, custom, v)}
		}
		dv, present := m[key]
		if !present {
			return Result{Issue: discriminatorFailure(keyPath.Clone(), CodeDiscriminatorMissing, custom)}
		}
		if k, ok := literalKey(dv); ok {
			if check, found := table[k]; found {
				return check(v)
			}
		}
		return Result{Issue: discriminatorFailure(keyPath.Clone(), CodeDiscriminatorInvalid, custom)}
	}
}
