package skema

import (
	"reflect"
	"strings"
)

// structKey resolves the object key of a struct field.
// Priority: skema:"name=..." > json tag name > field name; "-" hides the field.
func structKey(sf reflect.StructField) string {
	if st := sf.Tag.Get("skema"); st != "" {
		for _, p := range strings.Split(st, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if i == 0 {
				return sf.Name
			}
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// structFields copies the exported fields of a struct value into a map keyed
// by structKey.
func structFields(rv reflect.Value) map[string]any {
	rt := rv.Type()
	out := make(map[string]any, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := structKey(sf)
		if key == "-" {
			continue
		}
		out[key] = rv.Field(i).Interface()
	}
	return out
}
