package skema

import (
	"errors"
	"strings"

	"github.com/reoring/skema/internal/pathctx"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType          = "invalid_type"
	CodeInvalidLiteral       = "invalid_literal"
	CodeTooSmall             = "too_small"
	CodeTooBig               = "too_big"
	CodeInvalidFormat        = "invalid_format"
	CodeNotMultipleOf        = "not_multiple_of"
	CodeNotInteger           = "not_integer"
	CodeNotFinite            = "not_finite"
	CodeUnrecognizedKeys     = "unrecognized_keys"
	CodeInvalidUnion         = "invalid_union"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorInvalid = "discriminator_invalid"
	CodeCustom               = "custom"
	// Decoding failures of the JSON/YAML entry points.
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
)

// Category groups issue codes into the failure taxonomy.
type Category int

const (
	TypeMismatch        Category = iota // The base kind check failed.
	ConstraintViolation                 // A refinement failed after the kind check passed.
	UnionNoMatch                        // No union branch accepted the value.
	DiscriminatorMissing
	DiscriminatorInvalid
	DecodeFailure // Input could not be decoded before validation.
)

func (c Category) String() string {
	switch c {
	case TypeMismatch:
		return "TypeMismatch"
	case ConstraintViolation:
		return "ConstraintViolation"
	case UnionNoMatch:
		return "UnionNoMatch"
	case DiscriminatorMissing:
		return "DiscriminatorMissing"
	case DiscriminatorInvalid:
		return "DiscriminatorInvalid"
	case DecodeFailure:
		return "DecodeFailure"
	}
	return "Unknown"
}

// Path is an ordered list of string field names and int element indexes.
type Path = pathctx.Path

// Issue is the single failure reported for a value. Message never carries the
// path; Error renders both.
type Issue struct {
	Code    string
	Path    Path
	Message string
}

// Error renders "path: message", or just the message at the root.
func (i Issue) Error() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	return i.Path.String() + ": " + i.Message
}

// Category maps the issue code onto the failure taxonomy.
func (i Issue) Category() Category {
	switch i.Code {
	case CodeInvalidType, CodeInvalidLiteral:
		return TypeMismatch
	case CodeInvalidUnion:
		return UnionNoMatch
	case CodeDiscriminatorMissing:
		return DiscriminatorMissing
	case CodeDiscriminatorInvalid:
		return DiscriminatorInvalid
	case CodeParseError, CodeDuplicateKey:
		return DecodeFailure
	}
	return ConstraintViolation
}

// prefixed returns a copy of i with seg in front of its path.
func (i *Issue) prefixed(seg any) *Issue {
	return &Issue{Code: i.Code, Path: i.Path.Prepend(seg), Message: i.Message}
}

// Issues is a collection of validation errors that implements error.
// Validators report at most one issue; decoding helpers use the same type so
// callers can unwrap every failure with AsIssues.
type Issues []Issue

// Error joins the rendered issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	b := &strings.Builder{}
	for i, it := range iss {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(it.Error())
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

var (
	// ErrNilSchema is wrapped when a nil schema is compiled or composed.
	ErrNilSchema = errors.New("skema: nil schema")
	// ErrMaxDepth is wrapped when a schema tree is deeper than the configured limit.
	ErrMaxDepth = errors.New("skema: schema tree exceeds max depth")
)

// ConstructionError reports a static authoring mistake detected while a schema
// or a validator is being built. Builders panic with it; functions that return
// an error return it.
type ConstructionError struct {
	Op     string // builder or constraint that failed, e.g. "DiscriminatedUnion"
	Reason string
	Err    error // optional sentinel
}

func (e *ConstructionError) Error() string {
	return "skema: " + e.Op + ": " + e.Reason
}

func (e *ConstructionError) Unwrap() error { return e.Err }

func constructionPanic(op, reason string) {
	panic(&ConstructionError{Op: op, Reason: reason})
}
