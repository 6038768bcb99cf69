package skema

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/cel-go/cel"

	"github.com/reoring/skema/i18n"
	"github.com/reoring/skema/internal/pathctx"
)

type constraintOp uint8

const (
	opCustom constraintOp = iota
	opExpr
	opMinLength
	opMaxLength
	opLength
	opEmail
	opURL
	opUUID
	opRegex
	opIncludes
	opStartsWith
	opEndsWith
	opMin
	opMax
	opGt
	opLt
	opMultipleOf
	opInt
	opFinite
	opMinKeys
	opMaxKeys
	opStrict
	opBigMin
	opBigMax
	opBigGt
	opBigLt
	opBigMultipleOf
	opDateMin
	opDateMax
)

// refinement is one check composed onto a schema after its kind check.
// Built-in constraints are declarative so the compiler can specialise them;
// opCustom and opExpr carry caller logic.
type refinement struct {
	op      constraintOp
	name    string
	target  Kind
	n       int
	f       float64
	str     string
	big     *big.Int
	at      time.Time
	re      *regexp.Regexp
	keys    map[string]struct{}
	fn      func(any) error
	prog    cel.Program
	message string
}

// Refine returns a new schema that runs fn after every check of base has
// passed. fn receives the effective value (coerced, if any check coerced) and
// rejects it by returning a non-nil error whose text becomes the message.
// A panic inside fn is not recovered.
func Refine(base *Schema, fn func(v any) error) *Schema {
	if base == nil {
		panic(&ConstructionError{Op: "Refine", Reason: "nil base schema", Err: ErrNilSchema})
	}
	if fn == nil {
		constructionPanic("Refine", "nil refinement function")
	}
	return base.withRefinement(refinement{op: opCustom, name: "refine", target: base.kind, fn: fn})
}

// Refine is the chaining form of the package-level Refine.
func (s *Schema) Refine(fn func(v any) error) *Schema { return Refine(s, fn) }

// RefineAs is Refine with the effective value asserted to T. A value of
// another type fails with a custom issue instead of reaching fn.
func RefineAs[T any](base *Schema, fn func(v T) error) *Schema {
	if fn == nil {
		constructionPanic("RefineAs", "nil refinement function")
	}
	return Refine(base, func(v any) error {
		t, ok := v.(T)
		if !ok {
			var zero T
			return fmt.Errorf("expected %T, received %s", zero, typeOf(v))
		}
		return fn(t)
	})
}

func (s *Schema) withRefinement(r refinement) *Schema {
	c := s.clone()
	c.refines = append(c.refines, r)
	return c
}

// evaluate is the interpreted form: one switch per call.
func (r *refinement) evaluate(v any) (code, msg string, failed bool) {
	if r.op == opCustom {
		return r.custom(v)
	}
	if r.holds(v) {
		return "", "", false
	}
	code, msg = r.failure(v)
	return code, msg, true
}

func (r *refinement) custom(v any) (code, msg string, failed bool) {
	err := r.fn(v)
	if err == nil {
		return "", "", false
	}
	msg = err.Error()
	if msg == "" {
		msg = i18n.T("custom", nil)
	}
	return CodeCustom, msg, true
}

func (r *refinement) holds(v any) bool {
	switch r.op {
	case opExpr:
		return exprHolds(r.prog, v)
	case opMinLength:
		return lengthOf(v) >= r.n
	case opMaxLength:
		return lengthOf(v) <= r.n
	case opLength:
		return lengthOf(v) == r.n
	case opEmail:
		return isEmail(v.(string))
	case opURL:
		return isURL(v.(string))
	case opUUID:
		return isUUID(v.(string))
	case opRegex:
		return r.re.MatchString(v.(string))
	case opIncludes:
		return strings.Contains(v.(string), r.str)
	case opStartsWith:
		return strings.HasPrefix(v.(string), r.str)
	case opEndsWith:
		return strings.HasSuffix(v.(string), r.str)
	case opMin:
		f, _ := toFloat(v)
		return f >= r.f
	case opMax:
		f, _ := toFloat(v)
		return f <= r.f
	case opGt:
		f, _ := toFloat(v)
		return f > r.f
	case opLt:
		f, _ := toFloat(v)
		return f < r.f
	case opMultipleOf:
		f, _ := toFloat(v)
		return isMultipleOf(f, r.f)
	case opInt:
		f, _ := toFloat(v)
		return f == math.Trunc(f) && !math.IsInf(f, 0)
	case opFinite:
		f, _ := toFloat(v)
		return !math.IsInf(f, 0)
	case opMinKeys:
		return lengthOf(v) >= r.n
	case opMaxKeys:
		return lengthOf(v) <= r.n
	case opStrict:
		return len(unknownKeys(v, r.keys)) == 0
	case opBigMin:
		return v.(*big.Int).Cmp(r.big) >= 0
	case opBigMax:
		return v.(*big.Int).Cmp(r.big) <= 0
	case opBigGt:
		return v.(*big.Int).Cmp(r.big) > 0
	case opBigLt:
		return v.(*big.Int).Cmp(r.big) < 0
	case opBigMultipleOf:
		return isBigMultipleOf(v.(*big.Int), r.big)
	case opDateMin:
		return !v.(time.Time).Before(r.at)
	case opDateMax:
		return !v.(time.Time).After(r.at)
	}
	panic(fmt.Sprintf("skema: unhandled constraint op %d", r.op))
}

// specialize is the compiled form: the op switch runs once, at compile time,
// and returns a predicate bound to its arguments. Compiled patterns and CEL
// programs are registered as externals and captured from the table.
func (r *refinement) specialize(ctx pathctx.Context) func(any) bool {
	switch r.op {
	case opExpr:
		prg := ctx.External(ctx.Register(r.prog)).(cel.Program)
		return func(v any) bool { return exprHolds(prg, v) }
	case opMinLength, opMinKeys:
		n := r.n
		if r.target == KindString {
			return func(v any) bool { return utf8.RuneCountInString(v.(string)) >= n }
		}
		return func(v any) bool { return lengthOf(v) >= n }
	case opMaxLength, opMaxKeys:
		n := r.n
		if r.target == KindString {
			return func(v any) bool { return utf8.RuneCountInString(v.(string)) <= n }
		}
		return func(v any) bool { return lengthOf(v) <= n }
	case opLength:
		n := r.n
		if r.target == KindString {
			return func(v any) bool { return utf8.RuneCountInString(v.(string)) == n }
		}
		return func(v any) bool { return lengthOf(v) == n }
	case opEmail:
		return func(v any) bool { return isEmail(v.(string)) }
	case opURL:
		return func(v any) bool { return isURL(v.(string)) }
	case opUUID:
		return func(v any) bool { return isUUID(v.(string)) }
	case opRegex:
		re := ctx.External(ctx.Register(r.re)).(*regexp.Regexp)
		return func(v any) bool { return re.MatchString(v.(string)) }
	case opIncludes:
		sub := r.str
		return func(v any) bool { return strings.Contains(v.(string), sub) }
	case opStartsWith:
		prefix := r.str
		return func(v any) bool { return strings.HasPrefix(v.(string), prefix) }
	case opEndsWith:
		suffix := r.str
		return func(v any) bool { return strings.HasSuffix(v.(string), suffix) }
	case opMin:
		bound := r.f
		return func(v any) bool { f, _ := toFloat(v); return f >= bound }
	case opMax:
		bound := r.f
		return func(v any) bool { f, _ := toFloat(v); return f <= bound }
	case opGt:
		bound := r.f
		return func(v any) bool { f, _ := toFloat(v); return f > bound }
	case opLt:
		bound := r.f
		return func(v any) bool { f, _ := toFloat(v); return f < bound }
	case opMultipleOf:
		step := r.f
		return func(v any) bool { f, _ := toFloat(v); return isMultipleOf(f, step) }
	case opInt:
		return func(v any) bool { f, _ := toFloat(v); return f == math.Trunc(f) && !math.IsInf(f, 0) }
	case opFinite:
		return func(v any) bool { f, _ := toFloat(v); return !math.IsInf(f, 0) }
	case opStrict:
		keys := r.keys
		return func(v any) bool { return len(unknownKeys(v, keys)) == 0 }
	case opBigMin:
		bound := r.big
		return func(v any) bool { return v.(*big.Int).Cmp(bound) >= 0 }
	case opBigMax:
		bound := r.big
		return func(v any) bool { return v.(*big.Int).Cmp(bound) <= 0 }
	case opBigGt:
		bound := r.big
		return func(v any) bool { return v.(*big.Int).Cmp(bound) > 0 }
	case opBigLt:
		bound := r.big
		return func(v any) bool { return v.(*big.Int).Cmp(bound) < 0 }
	case opBigMultipleOf:
		step := r.big
		return func(v any) bool { return isBigMultipleOf(v.(*big.Int), step) }
	case opDateMin:
		bound := r.at
		return func(v any) bool { return !v.(time.Time).Before(bound) }
	case opDateMax:
		bound := r.at
		return func(v any) bool { return !v.(time.Time).After(bound) }
	}
	panic(fmt.Sprintf("skema: unhandled constraint op %d", r.op))
}

// failure renders the code and message for a value that did not hold.
func (r *refinement) failure(v any) (code, msg string) {
	switch r.op {
	case opExpr:
		return CodeCustom, r.text("custom", nil)
	case opMinLength:
		return CodeTooSmall, r.text("too_small."+r.target.String(), map[string]string{"min": strconv.Itoa(r.n)})
	case opMaxLength:
		return CodeTooBig, r.text("too_big."+r.target.String(), map[string]string{"max": strconv.Itoa(r.n)})
	case opLength:
		code = CodeTooBig
		if lengthOf(v) < r.n {
			code = CodeTooSmall
		}
		return code, r.text("exact."+r.target.String(), map[string]string{"n": strconv.Itoa(r.n)})
	case opEmail:
		return CodeInvalidFormat, r.text("invalid_format.email", nil)
	case opURL:
		return CodeInvalidFormat, r.text("invalid_format.url", nil)
	case opUUID:
		return CodeInvalidFormat, r.text("invalid_format.uuid", nil)
	case opRegex:
		return CodeInvalidFormat, r.text("invalid_format.regex", map[string]string{"pattern": r.re.String()})
	case opIncludes:
		return CodeInvalidFormat, r.text("invalid_format.includes", map[string]string{"value": r.str})
	case opStartsWith:
		return CodeInvalidFormat, r.text("invalid_format.starts_with", map[string]string{"value": r.str})
	case opEndsWith:
		return CodeInvalidFormat, r.text("invalid_format.ends_with", map[string]string{"value": r.str})
	case opMin:
		return CodeTooSmall, r.text("too_small.number", map[string]string{"min": formatFloat(r.f, 64)})
	case opGt:
		return CodeTooSmall, r.text("too_small.number.exclusive", map[string]string{"min": formatFloat(r.f, 64)})
	case opMax:
		return CodeTooBig, r.text("too_big.number", map[string]string{"max": formatFloat(r.f, 64)})
	case opLt:
		return CodeTooBig, r.text("too_big.number.exclusive", map[string]string{"max": formatFloat(r.f, 64)})
	case opMultipleOf:
		return CodeNotMultipleOf, r.text("not_multiple_of.number", map[string]string{"step": formatFloat(r.f, 64)})
	case opInt:
		return CodeNotInteger, r.text("not_integer", nil)
	case opFinite:
		return CodeNotFinite, r.text("not_finite", nil)
	case opMinKeys:
		return CodeTooSmall, r.text("too_small.object", map[string]string{"min": strconv.Itoa(r.n)})
	case opMaxKeys:
		return CodeTooBig, r.text("too_big.object", map[string]string{"max": strconv.Itoa(r.n)})
	case opStrict:
		uk := unknownKeys(v, r.keys)
		quoted := make([]string, len(uk))
		for i, k := range uk {
			quoted[i] = "'" + k + "'"
		}
		return CodeUnrecognizedKeys, r.text("unrecognized_keys", map[string]string{"keys": strings.Join(quoted, ", ")})
	case opBigMin:
		return CodeTooSmall, r.text("too_small.bigint", map[string]string{"min": r.big.String()})
	case opBigGt:
		return CodeTooSmall, r.text("too_small.bigint.exclusive", map[string]string{"min": r.big.String()})
	case opBigMax:
		return CodeTooBig, r.text("too_big.bigint", map[string]string{"max": r.big.String()})
	case opBigLt:
		return CodeTooBig, r.text("too_big.bigint.exclusive", map[string]string{"max": r.big.String()})
	case opBigMultipleOf:
		return CodeNotMultipleOf, r.text("not_multiple_of.bigint", map[string]string{"step": r.big.String()})
	case opDateMin:
		return CodeTooSmall, r.text("too_small.date", map[string]string{"min": formatRFC3339Canonical(r.at)})
	case opDateMax:
		return CodeTooBig, r.text("too_big.date", map[string]string{"max": formatRFC3339Canonical(r.at)})
	}
	panic(fmt.Sprintf("skema: unhandled constraint op %d", r.op))
}

func (r *refinement) text(key string, data map[string]string) string {
	if r.message != "" {
		return r.message
	}
	return i18n.T(key, data)
}

// lengthOf counts runes of a string, elements of a list and keys of an object.
func lengthOf(v any) int {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x)
	case []any:
		return len(x)
	case map[string]any:
		return len(x)
	}
	switch typeOf(v) {
	case typeArray:
		l, _ := asList(v)
		return len(l)
	case typeObject:
		m, _ := asObject(v)
		return len(m)
	}
	return 0
}

// unknownKeys returns the sorted keys of v that are not declared.
func unknownKeys(v any, declared map[string]struct{}) []string {
	m, _ := asObject(v)
	var out []string
	for k := range m {
		if _, ok := declared[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func isMultipleOf(f, step float64) bool {
	if step == 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return false
	}
	q := f / step
	return math.Abs(q-math.Round(q)) < 1e-9
}

func isBigMultipleOf(n, step *big.Int) bool {
	if step.Sign() == 0 {
		return false
	}
	return new(big.Int).Rem(n, step).Sign() == 0
}
