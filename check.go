package skema

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/reoring/skema/i18n"
)

// Result is the outcome of one validation. On success Issue is nil and Value
// holds the effective value: the input itself, or its coerced replacement when
// Coerced is set. On failure only Issue is meaningful.
type Result struct {
	Value   any
	Coerced bool
	Issue   *Issue
}

// OK reports whether the value was accepted.
func (r Result) OK() bool { return r.Issue == nil }

// Err returns the failure as Issues, or nil.
func (r Result) Err() error {
	if r.Issue == nil {
		return nil
	}
	return Issues{*r.Issue}
}

// Check validates v by walking the schema tree. It is the reference the
// compiled validator agrees with; prefer Compile on hot paths.
func (s *Schema) Check(v any) Result { return s.check(v) }

func (s *Schema) check(v any) Result {
	var r Result
	switch s.kind {
	case KindString, KindNumber, KindBoolean, KindBigInt, KindDate, KindNull, KindUndefined:
		out, coerced, ok := primitiveCheck(s.kind, s.coerce, v)
		if !ok {
			return Result{Issue: typeFailure(nil, s.kind, s.message, v)}
		}
		r = Result{Value: out, Coerced: coerced}
	case KindLiteral:
		if !literalMatches(s.literal, v) {
			return Result{Issue: literalFailure(nil, s.literal, s.message, v)}
		}
		r = Result{Value: v}
	case KindObject:
		r = s.checkObject(v)
	case KindArray:
		r = s.checkArray(v)
	case KindUnion:
		r = s.checkUnion(v)
	case KindDiscriminatedUnion:
		r = s.checkDiscriminated(v)
	default:
		panic(fmt.Sprintf("skema: unknown schema kind %s", s.kind))
	}
	if r.Issue != nil {
		return r
	}
	for i := range s.refines {
		if code, msg, failed := s.refines[i].evaluate(r.Value); failed {
			return Result{Issue: &Issue{Code: code, Message: msg}}
		}
	}
	return r
}

func (s *Schema) checkObject(v any) Result {
	m, ok := asObject(v)
	if !ok {
		return Result{Issue: typeFailure(nil, KindObject, s.message, v)}
	}
	var out map[string]any
	for _, f := range s.fields {
		fv, present := m[f.Name]
		if !present {
			fv = Absent{}
		}
		r := f.Schema.check(fv)
		if r.Issue != nil {
			return Result{Issue: r.Issue.prefixed(f.Name)}
		}
		if r.Coerced {
			if out == nil {
				out = maps.Clone(m)
			}
			out[f.Name] = r.Value
		}
	}
	if out != nil {
		return Result{Value: out, Coerced: true}
	}
	return Result{Value: v}
}

func (s *Schema) checkArray(v any) Result {
	l, ok := asList(v)
	if !ok {
		return Result{Issue: typeFailure(nil, KindArray, s.message, v)}
	}
	var out []any
	for i, e := range l {
		r := s.elem.check(e)
		if r.Issue != nil {
			return Result{Issue: r.Issue.prefixed(i)}
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

func (s *Schema) checkUnion(v any) Result {
	switch len(s.branches) {
	case 0:
		return Result{Issue: unionFailure(nil, s.message)}
	case 1:
		return s.branches[0].check(v)
	}
	for _, b := range s.branches {
		if r := b.check(v); r.Issue == nil {
			return r
		}
	}
	return Result{Issue: unionFailure(nil, s.message)}
}

func (s *Schema) checkDiscriminated(v any) Result {
	m, ok := asObject(v)
	if !ok {
		return Result{Issue: typeFailure(nil, KindObject, s.message, v)}
	}
	dv, present := m[s.discriminator]
	if !present {
		return Result{Issue: discriminatorFailure(Path{s.discriminator}, CodeDiscriminatorMissing, s.message)}
	}
	k, ok := literalKey(dv)
	if !ok {
		return Result{Issue: discriminatorFailure(Path{s.discriminator}, CodeDiscriminatorInvalid, s.message)}
	}
	b, found := s.index[k]
	if !found {
		return Result{Issue: discriminatorFailure(Path{s.discriminator}, CodeDiscriminatorInvalid, s.message)}
	}
	return b.check(v)
}

// primitiveCheck is the kind test shared by both modes. It returns the
// effective value and whether coercion replaced the input.
func primitiveCheck(k Kind, coerce bool, v any) (out any, coerced, ok bool) {
	switch k {
	case KindString:
		if coerce {
			return coerceString(v)
		}
		_, ok = v.(string)
	case KindNumber:
		if coerce {
			return coerceNumber(v)
		}
		ok = typeOf(v) == typeNumber
	case KindBoolean:
		_, ok = v.(bool)
	case KindBigInt:
		if coerce {
			return coerceBigInt(v)
		}
		ok = typeOf(v) == typeBigInt
	case KindDate:
		if coerce {
			return coerceDate(v)
		}
		ok = isDate(v)
	case KindNull:
		ok = typeOf(v) == typeNull
	case KindUndefined:
		_, ok = v.(Absent)
	default:
		panic(fmt.Sprintf("skema: %s is not a primitive kind", k))
	}
	return v, false, ok
}

// typeFailure builds the issue for a failed kind check. A missing value reads
// "Required" rather than "received undefined".
func typeFailure(path Path, expected Kind, custom string, v any) *Issue {
	if custom != "" {
		return &Issue{Code: CodeInvalidType, Path: path, Message: custom}
	}
	got := typeOf(v)
	if got == typeUndefined {
		return &Issue{Code: CodeInvalidType, Path: path, Message: i18n.T("required", nil)}
	}
	return &Issue{Code: CodeInvalidType, Path: path, Message: i18n.T("invalid_type", map[string]string{
		"expected": expected.String(),
		"received": got.String(),
	})}
}

func literalMatches(lit, v any) bool {
	k, ok := literalKey(v)
	if !ok {
		return false
	}
	want, _ := literalKey(lit)
	return k == want
}

func literalFailure(path Path, lit any, custom string, v any) *Issue {
	if custom == "" && typeOf(v) == typeUndefined {
		return typeFailure(path, KindLiteral, "", v)
	}
	msg := custom
	if msg == "" {
		msg = i18n.T("invalid_literal", map[string]string{"expected": literalText(lit)})
	}
	return &Issue{Code: CodeInvalidLiteral, Path: path, Message: msg}
}

func literalText(lit any) string {
	k, _ := literalKey(lit)
	switch x := k.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case bool:
		return strconv.FormatBool(x)
	case int64, uint64, float64:
		return numberText(x)
	}
	return fmt.Sprint(k)
}

func unionFailure(path Path, custom string) *Issue {
	msg := custom
	if msg == "" {
		msg = i18n.T("invalid_union", nil)
	}
	return &Issue{Code: CodeInvalidUnion, Path: path, Message: msg}
}

func discriminatorFailure(path Path, code, custom string) *Issue {
	msg := custom
	if msg == "" {
		msg = i18n.T(code, nil)
	}
	return &Issue{Code: code, Path: path, Message: msg}
}
