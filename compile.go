package skema

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-logr/logr"

	"github.com/reoring/skema/internal/pathctx"
)

// DefaultMaxDepth bounds the schema tree height accepted by Compile.
const DefaultMaxDepth = 64

// checkFunc is a compiled node. Paths of the issues it returns are baked in at
// compile time.
type checkFunc func(v any) Result

// Validator is the compiled form of a schema. It holds no reference to the
// schema and is safe for concurrent use.
type Validator struct {
	check     checkFunc
	kind      Kind
	externals []any
}

// Validate checks v and returns the first failure, if any.
func (v *Validator) Validate(x any) Result { return v.check(x) }

// Parse validates x and returns the effective value, or Issues holding the
// single failure.
func (v *Validator) Parse(x any) (any, error) {
	r := v.check(x)
	if r.Issue != nil {
		return nil, Issues{*r.Issue}
	}
	return r.Value, nil
}

// Kind returns the kind of the compiled schema.
func (v *Validator) Kind() Kind { return v.kind }

// Externals returns the values the compiled closures were built with, such as
// compiled patterns and CEL programs, in registration order.
func (v *Validator) Externals() []any { return slices.Clone(v.externals) }

type compileConfig struct {
	cache    *Cache
	log      logr.Logger
	debug    bool
	maxDepth int
}

// CompileOption configures Compile.
type CompileOption func(*compileConfig)

// WithCache selects the cache consulted and populated by Compile. A nil cache
// disables caching and every call compiles afresh.
func WithCache(c *Cache) CompileOption { return func(cfg *compileConfig) { cfg.cache = c } }

// WithLogger sets the logger used for compile tracing.
func WithLogger(l logr.Logger) CompileOption { return func(cfg *compileConfig) { cfg.log = l } }

// WithDebug enables one V(1) log line per compiled node.
func WithDebug(on bool) CompileOption { return func(cfg *compileConfig) { cfg.debug = on } }

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(n int) CompileOption { return func(cfg *compileConfig) { cfg.maxDepth = n } }

// Compile turns s into a Validator. With the default cache, compiling the same
// *Schema twice returns the same *Validator; any other *Schema, including one
// derived from s by a constraint, gets its own.
//
// Compile fails for a nil schema and for trees deeper than the max depth. Only
// the top-level schema is cached: children are compiled inline because their
// error paths depend on where they sit.
func Compile(s *Schema, opts ...CompileOption) (*Validator, error) {
	if s == nil {
		return nil, &ConstructionError{Op: "Compile", Reason: "nil schema", Err: ErrNilSchema}
	}
	cfg := compileConfig{cache: DefaultCache, log: logr.Discard(), maxDepth: DefaultMaxDepth}
	for _, o := range opts {
		o(&cfg)
	}
	if s.depth > cfg.maxDepth {
		return nil, &ConstructionError{
			Op:     "Compile",
			Reason: fmt.Sprintf("schema depth %d exceeds max depth %d", s.depth, cfg.maxDepth),
			Err:    ErrMaxDepth,
		}
	}
	if cfg.cache != nil {
		if v, ok := cfg.cache.Get(s); ok {
			return v, nil
		}
	}
	ctx := pathctx.New(cfg.log, cfg.debug)
	v := &Validator{check: compileNode(ctx, s), kind: s.kind}
	v.externals = ctx.Externals()
	if cfg.cache != nil {
		v = cfg.cache.loadOrStore(s, v)
	}
	return v, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(s *Schema, opts ...CompileOption) *Validator {
	v, err := Compile(s, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// compileNode compiles s and its refinements. The returned closure must not
// capture s, so that the cache entry can be reclaimed with the schema.
func compileNode(ctx pathctx.Context, s *Schema) checkFunc {
	ctx.Trace("compile "+s.kind.String(), "refinements", len(s.refines), "coerce", s.coerce)
	var fn checkFunc
	switch s.kind {
	case KindString, KindNumber, KindBoolean, KindBigInt, KindDate, KindNull, KindUndefined:
		fn = compilePrimitive(ctx, s)
	case KindLiteral:
		fn = compileLiteral(ctx, s)
	case KindObject:
		fn = compileObject(ctx, s)
	case KindArray:
		fn = compileArray(ctx, s)
	case KindUnion:
		fn = compileUnion(ctx, s)
	case KindDiscriminatedUnion:
		fn = compileDiscriminated(ctx, s)
	default:
		panic(fmt.Sprintf("skema: unknown schema kind %s", s.kind))
	}
	for i := range s.refines {
		fn = compileRefinement(ctx, fn, s.refines[i])
	}
	return fn
}

func compilePrimitive(ctx pathctx.Context, s *Schema) checkFunc {
	path, kind, custom := ctx.Path(), s.kind, s.message
	fail := func(v any) Result { return Result{Issue: typeFailure(path.Clone(), kind, custom, v)} }
	if s.coerce {
		var conv func(any) (any, bool, bool)
		switch kind {
		case KindString:
			conv = func(v any) (any, bool, bool) { return coerceString(v) }
		case KindNumber:
			conv = coerceNumber
		case KindBigInt:
			conv = func(v any) (any, bool, bool) { return coerceBigInt(v) }
		case KindDate:
			conv = func(v any) (any, bool, bool) { return coerceDate(v) }
		default:
			panic(fmt.Sprintf("skema: coercion not supported for %s", kind))
		}
		return func(v any) Result {
			out, changed, ok := conv(v)
			if !ok {
				return fail(v)
			}
			return Result{Value: out, Coerced: changed}
		}
	}
	var accept func(any) bool
	switch kind {
	case KindString:
		accept = func(v any) bool { _, ok := v.(string); return ok }
	case KindNumber:
		accept = func(v any) bool { return typeOf(v) == typeNumber }
	case KindBoolean:
		accept = func(v any) bool { _, ok := v.(bool); return ok }
	case KindBigInt:
		accept = func(v any) bool { return typeOf(v) == typeBigInt }
	case KindDate:
		accept = func(v any) bool { return isDate(v) }
	case KindNull:
		accept = func(v any) bool { return typeOf(v) == typeNull }
	case KindUndefined:
		accept = func(v any) bool { _, ok := v.(Absent); return ok }
	}
	return func(v any) Result {
		if accept(v) {
			return Result{Value: v}
		}
		return fail(v)
	}
}

func compileLiteral(ctx pathctx.Context, s *Schema) checkFunc {
	path, lit, custom := ctx.Path(), s.literal, s.message
	want, _ := literalKey(lit)
	return func(v any) Result {
		if k, ok := literalKey(v); ok && k == want {
			return Result{Value: v}
		}
		return Result{Issue: literalFailure(path.Clone(), lit, custom, v)}
	}
}

type fieldCheck struct {
	name  string
	check checkFunc
}

func compileObject(ctx pathctx.Context, s *Schema) checkFunc {
	path, custom := ctx.Path(), s.message
	fields := make([]fieldCheck, len(s.fields))
	for i, f := range s.fields {
		fields[i] = fieldCheck{name: f.Name, check: compileNode(ctx.PushPath(f.Name).Nest(), f.Schema)}
	}
	return func(v any) Result {
		m, ok := asObject(v)
		if !ok {
			return Result{Issue: typeFailure(path.Clone(), KindObject, custom, v)}
		}
		var out map[string]any
		for _, f := range fields {
			fv, present := m[f.name]
			if !present {
				fv = Absent{}
			}
			r := f.check(fv)
			if r.Issue != nil {
				return r
			}
			if r.Coerced {
				if out == nil {
					out = maps.Clone(m)
				}
				out[f.name] = r.Value
			}
		}
		if out != nil {
			return Result{Value: out, Coerced: true}
		}
		return Result{Value: v}
	}
}

// compileArray compiles the element schema once with pathctx.AnyIndex in its
// path; the failing index replaces the placeholder in the reported issue.
func compileArray(ctx pathctx.Context, s *Schema) checkFunc {
	path, custom := ctx.Path(), s.message
	at := len(path)
	elem := compileNode(ctx.PushPath(pathctx.AnyIndex).Nest(), s.elem)
	return func(v any) Result {
		l, ok := asList(v)
		if !ok {
			return Result{Issue: typeFailure(path.Clone(), KindArray, custom, v)}
		}
		var out []any
		for i, e := range l {
			r := elem(e)
			if r.Issue != nil {
				r.Issue.Path[at] = i
				return r
			}
			if r.Coerced {
				if out == nil {
					out = slices.Clone(l)
				}
				out[i] = r.Value
			}
		}
		if out != nil {
			return Result{Value: out, Coerced: true}
		}
		return Result{Value: v}
	}
}

// compileRefinement wraps next with one refinement. Built-in constraints are
// specialised here so no op dispatch happens per call.
func compileRefinement(ctx pathctx.Context, next checkFunc, r refinement) checkFunc {
	path := ctx.Path()
	ctx.Trace("refine", "constraint", r.name)
	if r.op == opCustom {
		return func(v any) Result {
			res := next(v)
			if res.Issue != nil {
				return res
			}
			if code, msg, failed := r.custom(res.Value); failed {
				return Result{Issue: &Issue{Code: code, Path: path.Clone(), Message: msg}}
			}
			return res
		}
	}
	holds := r.specialize(ctx)
	return func(v any) Result {
		res := next(v)
		if res.Issue != nil || holds(res.Value) {
			return res
		}
		code, msg := r.failure(res.Value)
		return Result{Issue: &Issue{Code: code, Path: path.Clone(), Message: msg}}
	}
}
