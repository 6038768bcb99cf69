package skema

import (
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/skema/i18n"
)

// ParseJSON decodes data and validates the result against s. Objects decode to
// map[string]any, arrays to []any and numbers to float64. Malformed input and
// objects repeating a key are reported as Issues before validation runs.
func ParseJSON(s *Schema, data []byte, opts ...CompileOption) (any, error) {
	v, err := Compile(s, opts...)
	if err != nil {
		return nil, err
	}
	return v.ParseJSON(data)
}

// ParseYAML decodes a single YAML document and validates the result against s.
// Mapping keys are rendered as strings so every mapping validates as an object.
func ParseYAML(s *Schema, data []byte, opts ...CompileOption) (any, error) {
	v, err := Compile(s, opts...)
	if err != nil {
		return nil, err
	}
	return v.ParseYAML(data)
}

// ParseJSON is the Validator form of the package-level ParseJSON.
func (v *Validator) ParseJSON(data []byte) (any, error) {
	var in any
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, parseIssue("json", err)
	}
	if iss := duplicateKeyIssue(data); iss != nil {
		return nil, Issues{*iss}
	}
	return v.Parse(in)
}

// ParseYAML is the Validator form of the package-level ParseYAML.
func (v *Validator) ParseYAML(data []byte) (any, error) {
	var in any
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, parseIssue("yaml", err)
	}
	return v.Parse(normalizeYAML(in))
}

func parseIssue(format string, err error) Issues {
	return Issues{{Code: CodeParseError, Message: i18n.T("parse_error", nil) + ": " + format + ": " + err.Error()}}
}

// normalizeYAML converts map[any]any mappings (non-string keys) to
// map[string]any, recursively.
func normalizeYAML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeYAML(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = normalizeYAML(e)
		}
		return x
	}
	return v
}
