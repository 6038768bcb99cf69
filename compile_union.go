package skema

import (
	"github.com/reoring/skema/internal/pathctx"
)

// typeMask is a set of valueTypes.
type typeMask uint16

func maskOf(t valueType) typeMask { return 1 << t }

// tagOf returns the tag test of a union branch: the value types its outermost
// check accepts. Only bare primitive branches have one; refinements or
// coercion make a branch unoptimizable.
func tagOf(b *Schema) (typeMask, bool) {
	if len(b.refines) > 0 || b.coerce {
		return 0, false
	}
	switch b.kind {
	case KindString:
		return maskOf(typeString), true
	case KindNumber:
		// NaN has its own value type, so it never passes a number tag.
		return maskOf(typeNumber), true
	case KindBoolean:
		return maskOf(typeBoolean), true
	case KindUndefined:
		return maskOf(typeUndefined), true
	case KindNull:
		return maskOf(typeNull), true
	}
	return 0, false
}

// unionMask combines the tag tests of all branches. ok is false as soon as one
// branch is unoptimizable.
func unionMask(branches []*Schema) (mask typeMask, ok bool) {
	for _, b := range branches {
		m, tagged := tagOf(b)
		if !tagged {
			return 0, false
		}
		mask |= m
	}
	return mask, true
}

// compileUnion picks a dispatch strategy. A value is rejected by the tag path
// only when it fails every branch's tag; otherwise branches run in declared
// order and the first acceptance wins.
func compileUnion(ctx pathctx.Context, s *Schema) checkFunc {
	path, custom := ctx.Path(), s.message
	fail := func() Result { return Result{Issue: unionFailure(path.Clone(), custom)} }

	switch len(s.branches) {
	case 0:
		ctx.Trace("union: no branches")
		return func(any) Result { return fail() }
	case 1:
		ctx.Trace("union: single branch")
		return compileNode(ctx.Nest(), s.branches[0])
	}

	if mask, ok := unionMask(s.branches); ok {
		ctx.Trace("union: tag dispatch", "branches", len(s.branches), "mask", uint16(mask))
		return func(v any) Result {
			if mask&maskOf(typeOf(v)) != 0 {
				return Result{Value: v}
			}
			return fail()
		}
	}

	ctx.Trace("union: sequential", "branches", len(s.branches))
	checks := make([]checkFunc, len(s.branches))
	for i, b := range s.branches {
		checks[i] = compileNode(ctx.Nest(), b)
	}
	return func(v any) Result {
		for _, check := range checks {
			if r := check(v); r.Issue == nil {
				return r
			}
		}
		return fail()
	}
}
