package skema_test

import (
	"errors"
	"math"
	"math/big"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	"github.com/reoring/skema/i18n"
)

func setLanguage(t *testing.T, lang string) {
	t.Helper()
	i18n.SetLanguage(lang)
	t.Cleanup(func() { i18n.SetLanguage("en") })
}

// checkBoth validates in with both modes and returns the compiled result after
// asserting they agree.
func checkBoth(t *testing.T, s *skema.Schema, in any) skema.Result {
	t.Helper()
	want := s.Check(in)
	got := skema.MustCompile(s, skema.WithCache(nil)).Validate(in)
	if want.Issue == nil {
		require.Nil(t, got.Issue)
		return got
	}
	require.NotNil(t, got.Issue)
	require.Equal(t, want.Issue.Code, got.Issue.Code)
	require.Equal(t, want.Issue.Message, got.Issue.Message)
	require.True(t, want.Issue.Path.Equal(got.Issue.Path))
	return got
}

func TestStringMinLength(t *testing.T) {
	s := skema.String().MinLength(5)
	r := checkBoth(t, s, "ab")
	require.NotNil(t, r.Issue)
	assert.Equal(t, "String must be at least 5 characters long", r.Issue.Message)
	assert.Equal(t, skema.CodeTooSmall, r.Issue.Code)
	assert.Equal(t, skema.ConstraintViolation, r.Issue.Category())
	assert.Nil(t, r.Issue.Path)

	ok := checkBoth(t, s, "abcdef")
	assert.Nil(t, ok.Issue)
	assert.Equal(t, "abcdef", ok.Value)
	assert.False(t, ok.Coerced)
}

func TestStringLengthCountsRunes(t *testing.T) {
	s := skema.String().Length(3)
	assert.Nil(t, checkBoth(t, s, "日本語").Issue)
	assert.Equal(t, skema.CodeTooBig, checkBoth(t, s, "日本語!").Issue.Code)
}

func TestConstraintMessages(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		s    *skema.Schema
		in   any
		code string
		msg  string
	}{
		{"max_length", skema.String().MaxLength(2), "abc", skema.CodeTooBig, "String must be at most 2 characters long"},
		{"length_short", skema.String().Length(2), "a", skema.CodeTooSmall, "String must be exactly 2 characters long"},
		{"length_long", skema.String().Length(2), "abc", skema.CodeTooBig, "String must be exactly 2 characters long"},
		{"array_min", skema.Array(skema.Number()).MinLength(2), []any{1}, skema.CodeTooSmall, "Array must contain at least 2 element(s)"},
		{"array_max", skema.Array(skema.Number()).MaxLength(1), []any{1, 2}, skema.CodeTooBig, "Array must contain at most 1 element(s)"},
		{"array_length", skema.Array(skema.Number()).Length(1), []any{}, skema.CodeTooSmall, "Array must contain exactly 1 element(s)"},
		{"email", skema.String().Email(), "nope", skema.CodeInvalidFormat, "Invalid email"},
		{"email_dots", skema.String().Email(), "a..b@example.com", skema.CodeInvalidFormat, "Invalid email"},
		{"url", skema.String().URL(), "example.com", skema.CodeInvalidFormat, "Invalid url"},
		{"uuid", skema.String().UUID(), "123", skema.CodeInvalidFormat, "Invalid uuid"},
		{"uuid_braces", skema.String().UUID(), "{123e4567-e89b-12d3-a456-426614174000}", skema.CodeInvalidFormat, "Invalid uuid"},
		{"regex", skema.String().Regex(regexp.MustCompile(`^a+$`)), "b", skema.CodeInvalidFormat, "String must match pattern ^a+$"},
		{"includes", skema.String().Includes("@"), "x", skema.CodeInvalidFormat, `String must include "@"`},
		{"starts_with", skema.String().StartsWith("ab"), "x", skema.CodeInvalidFormat, `String must start with "ab"`},
		{"ends_with", skema.String().EndsWith("z"), "x", skema.CodeInvalidFormat, `String must end with "z"`},
		{"min", skema.Number().Min(1), 0, skema.CodeTooSmall, "Number must be greater than or equal to 1"},
		{"max", skema.Number().Max(1), 2, skema.CodeTooBig, "Number must be less than or equal to 1"},
		{"gt", skema.Number().Gt(1), 1, skema.CodeTooSmall, "Number must be greater than 1"},
		{"lt", skema.Number().Lt(1), 1, skema.CodeTooBig, "Number must be less than 1"},
		{"positive", skema.Number().Positive(), 0, skema.CodeTooSmall, "Number must be greater than 0"},
		{"negative", skema.Number().Negative(), 0, skema.CodeTooBig, "Number must be less than 0"},
		{"multiple_of", skema.Number().MultipleOf(0.1), 0.35, skema.CodeNotMultipleOf, "Number must be a multiple of 0.1"},
		{"int", skema.Number().Int(), 1.5, skema.CodeNotInteger, "Expected integer, received float"},
		{"finite", skema.Number().Finite(), math.Inf(-1), skema.CodeNotFinite, "Number must be finite"},
		{"min_keys", skema.Object().MinKeys(2), map[string]any{"a": 1}, skema.CodeTooSmall, "Object must have at least 2 key(s)"},
		{"max_keys", skema.Object().MaxKeys(0), map[string]any{"a": 1}, skema.CodeTooBig, "Object must have at most 0 key(s)"},
		{"strict", skema.Object(skema.Field("a", skema.Number())).Strict(), map[string]any{"a": 1, "z": 1, "b": 2}, skema.CodeUnrecognizedKeys, "Unrecognized key(s) in object: 'b', 'z'"},
		{"bigint_min", skema.BigIntMin(skema.BigInt(), big.NewInt(10)), big.NewInt(5), skema.CodeTooSmall, "BigInt must be greater than or equal to 10"},
		{"bigint_max", skema.BigIntMax(skema.BigInt(), big.NewInt(10)), big.NewInt(11), skema.CodeTooBig, "BigInt must be less than or equal to 10"},
		{"bigint_gt", skema.BigIntGt(skema.BigInt(), big.NewInt(10)), big.NewInt(10), skema.CodeTooSmall, "BigInt must be greater than 10"},
		{"bigint_lt", skema.BigIntLt(skema.BigInt(), big.NewInt(10)), big.NewInt(10), skema.CodeTooBig, "BigInt must be less than 10"},
		{"bigint_positive", skema.BigInt().Positive(), big.NewInt(-1), skema.CodeTooSmall, "BigInt must be greater than 0"},
		{"bigint_negative", skema.BigInt().Negative(), big.NewInt(0), skema.CodeTooBig, "BigInt must be less than 0"},
		{"bigint_multiple", skema.BigIntMultipleOf(skema.BigInt(), big.NewInt(3)), big.NewInt(7), skema.CodeNotMultipleOf, "BigInt must be a multiple of 3"},
		{"date_min", skema.DateMin(skema.Date(), t0), t0.Add(-time.Hour), skema.CodeTooSmall, "Date must be greater than or equal to 2024-01-01T00:00:00Z"},
		{"date_max", skema.DateMax(skema.Date(), t0), t0.Add(time.Hour), skema.CodeTooBig, "Date must be smaller than or equal to 2024-01-01T00:00:00Z"},
		{"custom_message", skema.String().MinLength(5, "too short"), "ab", skema.CodeTooSmall, "too short"},
		{"invalid_type", skema.Number(), "x", skema.CodeInvalidType, "Expected number, received string"},
		{"invalid_type_nan", skema.Number(), math.NaN(), skema.CodeInvalidType, "Expected number, received nan"},
		{"required", skema.String(), skema.Absent{}, skema.CodeInvalidType, "Required"},
		{"with_message", skema.Number().WithMessage("need a number"), "x", skema.CodeInvalidType, "need a number"},
		{"with_message_keeps_refinement_text", skema.Number().WithMessage("need a number").Min(3), 1, skema.CodeTooSmall, "Number must be greater than or equal to 3"},
		{"literal_string", skema.Literal("circle"), "x", skema.CodeInvalidLiteral, `Invalid literal value, expected "circle"`},
		{"literal_number", skema.Literal(42), 41, skema.CodeInvalidLiteral, "Invalid literal value, expected 42"},
		{"literal_missing", skema.Literal(true), skema.Absent{}, skema.CodeInvalidType, "Required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := checkBoth(t, tc.s, tc.in)
			require.NotNil(t, r.Issue)
			assert.Equal(t, tc.code, r.Issue.Code)
			assert.Equal(t, tc.msg, r.Issue.Message)
		})
	}
}

func TestConstraintsAccept(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		s    *skema.Schema
		in   any
	}{
		{"email", skema.String().Email(), "a.b+tag@example.co.jp"},
		{"url", skema.String().URL(), "https://example.com/path?q=1"},
		{"uuid", skema.String().UUID(), "123e4567-e89b-12d3-a456-426614174000"},
		{"multiple_of", skema.Number().MultipleOf(0.1), 0.3},
		{"int_typed", skema.Number().Int(), int16(12)},
		{"literal_cross_type", skema.Literal(42), 42.0},
		{"literal_uint", skema.Literal(42), uint32(42)},
		{"strict_declared_only", skema.Object(skema.Field("a", skema.Number())).Strict(), map[string]any{"a": 1}},
		{"bigint_multiple", skema.BigIntMultipleOf(skema.BigInt(), big.NewInt(3)), big.NewInt(-9)},
		{"date_bounds", skema.DateMax(skema.DateMin(skema.Date(), t0), t0), t0},
		{"array_typed", skema.Array(skema.String()).Length(2), []string{"a", "b"}},
		{"object_typed_map", skema.Object(skema.Field("a", skema.Number())).MaxKeys(1), map[string]int{"a": 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := checkBoth(t, tc.s, tc.in)
			assert.Nil(t, r.Issue)
			assert.Equal(t, tc.in, r.Value)
		})
	}
}

func TestConstraintOrder_FirstFailureWins(t *testing.T) {
	s := skema.String().MinLength(3).Email()
	r := checkBoth(t, s, "a")
	require.NotNil(t, r.Issue)
	assert.Equal(t, skema.CodeTooSmall, r.Issue.Code)

	r = checkBoth(t, s, "abc")
	require.NotNil(t, r.Issue)
	assert.Equal(t, skema.CodeInvalidFormat, r.Issue.Code)
}

func TestConstraintsDoNotMutateBase(t *testing.T) {
	base := skema.Number()
	a := base.Min(10)
	b := base.Max(0)
	assert.Equal(t, 0, base.Refinements())
	assert.Equal(t, 1, a.Refinements())
	assert.Equal(t, 1, b.Refinements())
	assert.Nil(t, checkBoth(t, a, 50).Issue)
	assert.NotNil(t, checkBoth(t, b, 50).Issue)
}

func TestConstructionPanics(t *testing.T) {
	cases := []struct {
		name  string
		build func()
	}{
		{"number_constraint_on_string", func() { skema.String().Min(1) }},
		{"length_on_number", func() { skema.Number().MinLength(1) }},
		{"negative_length", func() { skema.String().MinLength(-1) }},
		{"strict_on_array", func() { skema.Array(skema.String()).Strict() }},
		{"bigint_bound_on_number", func() { skema.BigIntMin(skema.Number(), big.NewInt(1)) }},
		{"nil_bigint_bound", func() { skema.BigIntMax(skema.BigInt(), nil) }},
		{"zero_multiple", func() { skema.Number().MultipleOf(0) }},
		{"nil_regex", func() { skema.String().Regex(nil) }},
		{"duplicate_field", func() { skema.Object(skema.Field("a", skema.String()), skema.Field("a", skema.Number())) }},
		{"empty_field_name", func() { skema.Object(skema.Field("", skema.String())) }},
		{"nil_field_schema", func() { skema.Object(skema.Field("a", nil)) }},
		{"nil_array_element", func() { skema.Array(nil) }},
		{"nil_union_branch", func() { skema.Union(skema.String(), nil) }},
		{"unsupported_literal", func() { skema.Literal([]int{1}) }},
		{"coerce_boolean", func() { skema.Boolean().Coerce() }},
		{"nil_refine_fn", func() { skema.Refine(skema.String(), nil) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				rec := recover()
				require.NotNil(t, rec, "expected a panic")
				err, ok := rec.(error)
				require.True(t, ok, "panic value %T is not an error", rec)
				var ce *skema.ConstructionError
				assert.True(t, errors.As(err, &ce), "panic value %T is not a *ConstructionError", rec)
			}()
			tc.build()
		})
	}
}
