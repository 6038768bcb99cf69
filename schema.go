package skema

import (
	"fmt"
	"slices"
)

// Kind identifies the variant of a Schema. The set is closed: the compiler and
// the interpreter switch over every kind and panic on anything else.
type Kind uint8

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindBigInt
	KindDate
	KindNull
	KindUndefined
	KindLiteral
	KindObject
	KindArray
	KindUnion
	KindDiscriminatedUnion
)

var kindNames = [...]string{
	KindString:             "string",
	KindNumber:             "number",
	KindBoolean:            "boolean",
	KindBigInt:             "bigint",
	KindDate:               "date",
	KindNull:               "null",
	KindUndefined:          "undefined",
	KindLiteral:            "literal",
	KindObject:             "object",
	KindArray:              "array",
	KindUnion:              "union",
	KindDiscriminatedUnion: "discriminatedUnion",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Primitive reports whether k is a primitive (leaf, non-literal) kind.
func (k Kind) Primitive() bool { return k <= KindUndefined }

// ObjectField is one declared field of an object schema.
type ObjectField struct {
	Name   string
	Schema *Schema
}

// Field declares an object field for Object.
func Field(name string, s *Schema) ObjectField { return ObjectField{Name: name, Schema: s} }

// Schema is an immutable description of a type. Every builder, modifier and
// constraint returns a new *Schema; compiled validators are cached per pointer.
type Schema struct {
	kind    Kind
	message string // replaces the node's own failure message
	coerce  bool
	refines []refinement

	literal       any
	fields        []ObjectField
	elem          *Schema
	branches      []*Schema
	discriminator string
	index         map[any]*Schema // literal key -> branch

	depth int
}

func newSchema(k Kind) *Schema { return &Schema{kind: k, depth: 1} }

// String returns a string schema.
func String() *Schema { return newSchema(KindString) }

// Number returns a number schema. Every Go integer and float type is a number;
// NaN is not.
func Number() *Schema { return newSchema(KindNumber) }

// Boolean returns a boolean schema.
func Boolean() *Schema { return newSchema(KindBoolean) }

// BigInt returns a schema accepting non-nil *big.Int values.
func BigInt() *Schema { return newSchema(KindBigInt) }

// Date returns a schema accepting time.Time values.
func Date() *Schema { return newSchema(KindDate) }

// Null returns a schema accepting only nil.
func Null() *Schema { return newSchema(KindNull) }

// Undefined returns a schema accepting only Absent, i.e. a missing field.
func Undefined() *Schema { return newSchema(KindUndefined) }

// Literal returns a schema accepting exactly v. Only strings, booleans, nil and
// numbers can be literals; numbers compare by value across Go types.
func Literal(v any) *Schema {
	if _, ok := literalKey(v); !ok {
		constructionPanic("Literal", fmt.Sprintf("unsupported literal value of type %T", v))
	}
	s := newSchema(KindLiteral)
	s.literal = v
	return s
}

// Object returns an object schema whose fields are checked in declaration order.
func Object(fields ...ObjectField) *Schema {
	s := newSchema(KindObject)
	s.fields = make([]ObjectField, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			constructionPanic("Object", "empty field name")
		}
		if f.Schema == nil {
			constructionPanic("Object", fmt.Sprintf("field %q has a nil schema", f.Name))
		}
		if _, dup := seen[f.Name]; dup {
			constructionPanic("Object", fmt.Sprintf("duplicate field %q", f.Name))
		}
		seen[f.Name] = struct{}{}
		s.fields = append(s.fields, f)
		s.depth = max(s.depth, f.Schema.depth+1)
	}
	return s
}

// Array returns an array schema whose elements are checked in index order.
func Array(elem *Schema) *Schema {
	if elem == nil {
		constructionPanic("Array", "nil element schema")
	}
	s := newSchema(KindArray)
	s.elem = elem
	s.depth = elem.depth + 1
	return s
}

// Union returns a schema accepting a value when any branch accepts it. Branches
// are tried in order and the first acceptance wins.
func Union(branches ...*Schema) *Schema {
	s := newSchema(KindUnion)
	s.branches = make([]*Schema, 0, len(branches))
	for i, b := range branches {
		if b == nil {
			constructionPanic("Union", fmt.Sprintf("branch %d is nil", i))
		}
		s.branches = append(s.branches, b)
		s.depth = max(s.depth, b.depth+1)
	}
	return s
}

// Optional accepts s or a missing value.
func Optional(s *Schema) *Schema { return Union(s, Undefined()) }

// Nullable accepts s or nil.
func Nullable(s *Schema) *Schema { return Union(s, Null()) }

// clone returns a shallow copy whose slices can be appended to without
// touching the original.
func (s *Schema) clone() *Schema {
	c := *s
	c.refines = slices.Clip(s.refines)
	return &c
}

// WithMessage returns a copy of s whose own failures (kind mismatch, union and
// discriminator failures) report msg. Children and refinements keep theirs.
func (s *Schema) WithMessage(msg string) *Schema {
	c := s.clone()
	c.message = msg
	return c
}

// Coerce returns a copy of s that converts compatible inputs before checking:
// numbers and booleans to string, numeric strings to number, whole numbers and
// decimal strings to bigint, RFC 3339 strings to date. A converted value is
// reported through Result.Coerced.
func (s *Schema) Coerce() *Schema {
	switch s.kind {
	case KindString, KindNumber, KindBigInt, KindDate:
	default:
		constructionPanic("Coerce", fmt.Sprintf("not applicable to %s schema", s.kind))
	}
	c := s.clone()
	c.coerce = true
	return c
}

// Kind returns the schema variant.
func (s *Schema) Kind() Kind { return s.kind }

// Depth returns the height of the schema tree; a leaf has depth 1.
func (s *Schema) Depth() int { return s.depth }

// Fields returns a copy of the declared object fields.
func (s *Schema) Fields() []ObjectField { return slices.Clone(s.fields) }

// Element returns the element schema of an array schema.
func (s *Schema) Element() *Schema { return s.elem }

// Branches returns a copy of the union branches.
func (s *Schema) Branches() []*Schema { return slices.Clone(s.branches) }

// Discriminator returns the discriminator key of a discriminated union.
func (s *Schema) Discriminator() string { return s.discriminator }

// LiteralValue returns the value of a literal schema.
func (s *Schema) LiteralValue() any { return s.literal }

// Refinements returns the number of refinements composed onto s.
func (s *Schema) Refinements() int { return len(s.refines) }

func (s *Schema) field(name string) (*Schema, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f.Schema, true
		}
	}
	return nil, false
}
