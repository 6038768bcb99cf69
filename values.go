package skema

import (
	"math"
	"math/big"
	"reflect"
	"time"

	"golang.org/x/exp/constraints"
)

// Absent is the value handed to a field's check when the key is missing from
// the object. It plays the role of "undefined".
type Absent struct{}

func (Absent) String() string { return "undefined" }

// valueType is the runtime type of an input as seen by kind checks and union
// tag tests.
type valueType uint8

const (
	typeUnknown valueType = iota
	typeString
	typeNumber
	typeNaN
	typeBoolean
	typeBigInt
	typeDate
	typeNull
	typeUndefined
	typeObject
	typeArray
)

var typeNames = [...]string{
	typeUnknown:   "unknown",
	typeString:    "string",
	typeNumber:    "number",
	typeNaN:       "nan",
	typeBoolean:   "boolean",
	typeBigInt:    "bigint",
	typeDate:      "date",
	typeNull:      "null",
	typeUndefined: "undefined",
	typeObject:    "object",
	typeArray:     "array",
}

func (t valueType) String() string { return typeNames[t] }

func typeOf(v any) valueType {
	switch x := v.(type) {
	case nil:
		return typeNull
	case Absent:
		return typeUndefined
	case string:
		return typeString
	case bool:
		return typeBoolean
	case float64:
		if math.IsNaN(x) {
			return typeNaN
		}
		return typeNumber
	case float32:
		if math.IsNaN(float64(x)) {
			return typeNaN
		}
		return typeNumber
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return typeNumber
	case *big.Int:
		if x == nil {
			return typeNull
		}
		return typeBigInt
	case time.Time:
		return typeDate
	case map[string]any:
		return typeObject
	case []any:
		return typeArray
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return typeObject
		}
	case reflect.Struct:
		return typeObject
	case reflect.Slice, reflect.Array:
		return typeArray
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return typeNull
		}
	}
	return typeUnknown
}

func floatOf[T constraints.Integer | constraints.Float](n T) float64 { return float64(n) }

// toFloat converts any Go number to float64.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return floatOf(x), true
	case int:
		return floatOf(x), true
	case int8:
		return floatOf(x), true
	case int16:
		return floatOf(x), true
	case int32:
		return floatOf(x), true
	case int64:
		return floatOf(x), true
	case uint:
		return floatOf(x), true
	case uint8:
		return floatOf(x), true
	case uint16:
		return floatOf(x), true
	case uint32:
		return floatOf(x), true
	case uint64:
		return floatOf(x), true
	case uintptr:
		return floatOf(x), true
	}
	return 0, false
}

// asObject returns v as map[string]any. Other string-keyed maps and structs
// are copied.
func asObject(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if typeOf(v) != typeObject {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Struct {
		return structFields(rv), true
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asList returns v as []any. Other slices and arrays are copied.
func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	if typeOf(v) != typeArray {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// literalKey normalises a literal or an input value into a comparable map key.
// Numbers that hold an integer become int64 (uint64 above MaxInt64) so that 1
// and 1.0 match while large integers keep every digit; other numbers become
// float64. Values that cannot be literals report false.
func literalKey(v any) (any, bool) {
	switch typeOf(v) {
	case typeString, typeBoolean:
		return v, true
	case typeNull:
		return nil, true
	case typeNumber:
		return numberKey(v), true
	}
	return nil, false
}

const twoTo63 = 1 << 63

func numberKey(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint, uint8, uint16, uint32, uint64, uintptr:
		u := reflect.ValueOf(x).Uint()
		if u > math.MaxInt64 {
			return u
		}
		return int64(u)
	}
	f, _ := toFloat(v)
	switch {
	case f != math.Trunc(f) || math.IsInf(f, 0):
		return f
	case f >= -twoTo63 && f < twoTo63:
		return int64(f)
	case f >= twoTo63 && f < 2*twoTo63:
		return uint64(f)
	}
	return f
}

func isDate(v any) bool {
	_, ok := v.(time.Time)
	return ok
}
