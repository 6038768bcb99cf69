package skema

import (
	"fmt"
	"math/big"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// constrain attaches a built-in refinement after checking that the schema kind
// supports it. The optional message replaces the default text.
func (s *Schema) constrain(r refinement, kinds []Kind, message []string) *Schema {
	if !slices.Contains(kinds, s.kind) {
		constructionPanic(r.name, fmt.Sprintf("not applicable to %s schema", s.kind))
	}
	r.target = s.kind
	if len(message) > 0 {
		r.message = message[0]
	}
	return s.withRefinement(r)
}

var (
	stringOnly   = []Kind{KindString}
	sized        = []Kind{KindString, KindArray}
	numberOnly   = []Kind{KindNumber}
	signed       = []Kind{KindNumber, KindBigInt}
	objectOnly   = []Kind{KindObject}
	bigIntOnly   = []Kind{KindBigInt}
	dateOnly     = []Kind{KindDate}
	zeroBigInt   = big.NewInt(0)
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9_'+\-.]*[A-Za-z0-9_+\-]@([A-Za-z0-9][A-Za-z0-9\-]*\.)+[A-Za-z]{2,}$`)
)

func nonNegative(op string, n int) {
	if n < 0 {
		constructionPanic(op, fmt.Sprintf("negative length %d", n))
	}
}

// ---- string and array ----

// MinLength requires at least n characters (runes) for strings or n elements
// for arrays.
func (s *Schema) MinLength(n int, message ...string) *Schema {
	nonNegative("MinLength", n)
	return s.constrain(refinement{op: opMinLength, name: "MinLength", n: n}, sized, message)
}

// MaxLength requires at most n characters or elements.
func (s *Schema) MaxLength(n int, message ...string) *Schema {
	nonNegative("MaxLength", n)
	return s.constrain(refinement{op: opMaxLength, name: "MaxLength", n: n}, sized, message)
}

// Length requires exactly n characters or elements.
func (s *Schema) Length(n int, message ...string) *Schema {
	nonNegative("Length", n)
	return s.constrain(refinement{op: opLength, name: "Length", n: n}, sized, message)
}

// ---- string formats ----

func (s *Schema) Email(message ...string) *Schema {
	return s.constrain(refinement{op: opEmail, name: "Email"}, stringOnly, message)
}

func (s *Schema) URL(message ...string) *Schema {
	return s.constrain(refinement{op: opURL, name: "URL"}, stringOnly, message)
}

func (s *Schema) UUID(message ...string) *Schema {
	return s.constrain(refinement{op: opUUID, name: "UUID"}, stringOnly, message)
}

// Regex requires a match of re anywhere in the string; anchor the pattern for a
// full match.
func (s *Schema) Regex(re *regexp.Regexp, message ...string) *Schema {
	if re == nil {
		constructionPanic("Regex", "nil pattern")
	}
	return s.constrain(refinement{op: opRegex, name: "Regex", re: re}, stringOnly, message)
}

func (s *Schema) Includes(sub string, message ...string) *Schema {
	return s.constrain(refinement{op: opIncludes, name: "Includes", str: sub}, stringOnly, message)
}

func (s *Schema) StartsWith(prefix string, message ...string) *Schema {
	return s.constrain(refinement{op: opStartsWith, name: "StartsWith", str: prefix}, stringOnly, message)
}

func (s *Schema) EndsWith(suffix string, message ...string) *Schema {
	return s.constrain(refinement{op: opEndsWith, name: "EndsWith", str: suffix}, stringOnly, message)
}

func isEmail(s string) bool {
	return !strings.HasPrefix(s, ".") && !strings.Contains(s, "..") && emailPattern.MatchString(s)
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// ---- number ----

// Min requires v >= n.
func (s *Schema) Min(n float64, message ...string) *Schema {
	return s.constrain(refinement{op: opMin, name: "Min", f: n}, numberOnly, message)
}

// Max requires v <= n.
func (s *Schema) Max(n float64, message ...string) *Schema {
	return s.constrain(refinement{op: opMax, name: "Max", f: n}, numberOnly, message)
}

// Gt requires v > n.
func (s *Schema) Gt(n float64, message ...string) *Schema {
	return s.constrain(refinement{op: opGt, name: "Gt", f: n}, numberOnly, message)
}

// Lt requires v < n.
func (s *Schema) Lt(n float64, message ...string) *Schema {
	return s.constrain(refinement{op: opLt, name: "Lt", f: n}, numberOnly, message)
}

// Positive requires v > 0 for numbers and bigints.
func (s *Schema) Positive(message ...string) *Schema {
	if s.kind == KindBigInt {
		return s.constrain(refinement{op: opBigGt, name: "Positive", big: zeroBigInt}, signed, message)
	}
	return s.constrain(refinement{op: opGt, name: "Positive"}, signed, message)
}

// Negative requires v < 0 for numbers and bigints.
func (s *Schema) Negative(message ...string) *Schema {
	if s.kind == KindBigInt {
		return s.constrain(refinement{op: opBigLt, name: "Negative", big: zeroBigInt}, signed, message)
	}
	return s.constrain(refinement{op: opLt, name: "Negative"}, signed, message)
}

// MultipleOf requires v to be an integral multiple of step (within float
// tolerance).
func (s *Schema) MultipleOf(step float64, message ...string) *Schema {
	if step == 0 {
		constructionPanic("MultipleOf", "step must not be zero")
	}
	return s.constrain(refinement{op: opMultipleOf, name: "MultipleOf", f: step}, numberOnly, message)
}

// Int requires a finite number without a fractional part.
func (s *Schema) Int(message ...string) *Schema {
	return s.constrain(refinement{op: opInt, name: "Int"}, numberOnly, message)
}

// Finite rejects ±Inf.
func (s *Schema) Finite(message ...string) *Schema {
	return s.constrain(refinement{op: opFinite, name: "Finite"}, numberOnly, message)
}

// ---- object ----

// MinKeys requires at least n keys, declared or not.
func (s *Schema) MinKeys(n int, message ...string) *Schema {
	nonNegative("MinKeys", n)
	return s.constrain(refinement{op: opMinKeys, name: "MinKeys", n: n}, objectOnly, message)
}

// MaxKeys allows at most n keys, declared or not.
func (s *Schema) MaxKeys(n int, message ...string) *Schema {
	nonNegative("MaxKeys", n)
	return s.constrain(refinement{op: opMaxKeys, name: "MaxKeys", n: n}, objectOnly, message)
}

// Strict rejects keys that are not declared fields. Unknown keys are otherwise
// passed through untouched.
func (s *Schema) Strict(message ...string) *Schema {
	keys := make(map[string]struct{}, len(s.fields))
	for _, f := range s.fields {
		keys[f.Name] = struct{}{}
	}
	return s.constrain(refinement{op: opStrict, name: "Strict", keys: keys}, objectOnly, message)
}

// ---- bigint ----

func bigArg(op string, n *big.Int) *big.Int {
	if n == nil {
		constructionPanic(op, "nil bound")
	}
	return new(big.Int).Set(n)
}

// BigIntMin requires a bigint >= n.
func BigIntMin(s *Schema, n *big.Int, message ...string) *Schema {
	return s.constrain(refinement{op: opBigMin, name: "BigIntMin", big: bigArg("BigIntMin", n)}, bigIntOnly, message)
}

// BigIntMax requires a bigint <= n.
func BigIntMax(s *Schema, n *big.Int, message ...string) *Schema {
	return s.constrain(refinement{op: opBigMax, name: "BigIntMax", big: bigArg("BigIntMax", n)}, bigIntOnly, message)
}

// BigIntGt requires a bigint > n.
func BigIntGt(s *Schema, n *big.Int, message ...string) *Schema {
	return s.constrain(refinement{op: opBigGt, name: "BigIntGt", big: bigArg("BigIntGt", n)}, bigIntOnly, message)
}

// BigIntLt requires a bigint < n.
func BigIntLt(s *Schema, n *big.Int, message ...string) *Schema {
	return s.constrain(refinement{op: opBigLt, name: "BigIntLt", big: bigArg("BigIntLt", n)}, bigIntOnly, message)
}

// BigIntMultipleOf requires a bigint divisible by step.
func BigIntMultipleOf(s *Schema, step *big.Int, message ...string) *Schema {
	step = bigArg("BigIntMultipleOf", step)
	if step.Sign() == 0 {
		constructionPanic("BigIntMultipleOf", "step must not be zero")
	}
	return s.constrain(refinement{op: opBigMultipleOf, name: "BigIntMultipleOf", big: step}, bigIntOnly, message)
}

// ---- date ----

// DateMin requires a date not before t.
func DateMin(s *Schema, t time.Time, message ...string) *Schema {
	return s.constrain(refinement{op: opDateMin, name: "DateMin", at: t}, dateOnly, message)
}

// DateMax requires a date not after t.
func DateMax(s *Schema, t time.Time, message ...string) *Schema {
	return s.constrain(refinement{op: opDateMax, name: "DateMax", at: t}, dateOnly, message)
}
