package skema

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/constraints"
)

// Coercions return the canonical value and whether a substitution happened.
// ok=false means the input cannot be coerced and the kind check fails.

func coerceString(v any) (out string, changed, ok bool) {
	switch x := v.(type) {
	case string:
		return x, false, true
	case bool:
		return strconv.FormatBool(x), true, true
	case *big.Int:
		if x != nil {
			return x.String(), true, true
		}
	}
	if typeOf(v) == typeNumber {
		return numberText(v), true, true
	}
	return "", false, false
}

func coerceNumber(v any) (out any, changed, ok bool) {
	switch typeOf(v) {
	case typeNumber:
		return v, false, true
	case typeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.(string)), 64)
		if err != nil || math.IsNaN(f) {
			return nil, false, false
		}
		return f, true, true
	case typeBoolean:
		if v.(bool) {
			return float64(1), true, true
		}
		return float64(0), true, true
	}
	return nil, false, false
}

func bigFromSigned[T constraints.Signed](n T) *big.Int { return big.NewInt(int64(n)) }

func bigFromUnsigned[T constraints.Unsigned](n T) *big.Int { return new(big.Int).SetUint64(uint64(n)) }

func coerceBigInt(v any) (out *big.Int, changed, ok bool) {
	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			return nil, false, false
		}
		return x, false, true
	case int:
		return bigFromSigned(x), true, true
	case int8:
		return bigFromSigned(x), true, true
	case int16:
		return bigFromSigned(x), true, true
	case int32:
		return bigFromSigned(x), true, true
	case int64:
		return bigFromSigned(x), true, true
	case uint:
		return bigFromUnsigned(x), true, true
	case uint8:
		return bigFromUnsigned(x), true, true
	case uint16:
		return bigFromUnsigned(x), true, true
	case uint32:
		return bigFromUnsigned(x), true, true
	case uint64:
		return bigFromUnsigned(x), true, true
	case float64:
		return bigFromFloat(x)
	case float32:
		return bigFromFloat(float64(x))
	case string:
		n, good := new(big.Int).SetString(strings.TrimSpace(x), 10)
		if !good {
			return nil, false, false
		}
		return n, true, true
	}
	return nil, false, false
}

// bigFromFloat accepts finite whole floats only.
func bigFromFloat(f float64) (out *big.Int, changed, ok bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, false, false
	}
	n, _ := new(big.Float).SetFloat64(f).Int(nil)
	return n, true, true
}

func coerceDate(v any) (out time.Time, changed, ok bool) {
	switch x := v.(type) {
	case time.Time:
		return x, false, true
	case string:
		t, err := parseRFC3339(x)
		if err != nil {
			return time.Time{}, false, false
		}
		return t, true, true
	}
	return time.Time{}, false, false
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}

func signedText[T constraints.Signed](n T) string { return strconv.FormatInt(int64(n), 10) }

func unsignedText[T constraints.Unsigned](n T) string { return strconv.FormatUint(uint64(n), 10) }

// numberText renders a Go number as JavaScript's String(n) would: integer
// types keep every digit, floats use plain notation within [1e-6, 1e21).
func numberText(v any) string {
	switch x := v.(type) {
	case int:
		return signedText(x)
	case int8:
		return signedText(x)
	case int16:
		return signedText(x)
	case int32:
		return signedText(x)
	case int64:
		return signedText(x)
	case uint:
		return unsignedText(x)
	case uint8:
		return unsignedText(x)
	case uint16:
		return unsignedText(x)
	case uint32:
		return unsignedText(x)
	case uint64:
		return unsignedText(x)
	case uintptr:
		return unsignedText(x)
	case float32:
		return formatFloat(float64(x), 32)
	}
	f, _ := toFloat(v)
	return formatFloat(f, 64)
}

func formatFloat(f float64, bits int) string {
	if a := math.Abs(f); a == 0 || (a >= 1e-6 && a < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}
