// Package middleware validates JSON request bodies with a compiled validator
// before they reach a handler.
package middleware

import (
	"context"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reoring/skema"
)

// DefaultMaxBytes caps request bodies read by ValidateJSON.
const DefaultMaxBytes = 1 << 20

type ctxKeyValue struct{}

// validated boxes the value so that a body validating to JSON null is still
// found.
type validated struct{ v any }

// ContextWithValue attaches a validated value to the context.
func ContextWithValue(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyValue{}, validated{v: v})
}

// ValueFromContext retrieves the value stored by ContextWithValue.
func ValueFromContext(ctx context.Context) (any, bool) {
	b, ok := ctx.Value(ctxKeyValue{}).(validated)
	return b.v, ok
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []skema.Issue) map[string]any {
	out := make([]map[string]any, len(issues))
	for i, it := range issues {
		out[i] = map[string]any{"code": it.Code, "path": it.Path.Pointer(), "message": it.Message}
	}
	return map[string]any{"issues": out}
}

// ReadBody reads at most maxBytes from r and validates it as JSON with v. A
// body over the limit is reported as a parse_error issue.
func ReadBody(r io.Reader, v *skema.Validator, maxBytes int64) (any, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, skema.Issues{{Code: skema.CodeParseError, Message: err.Error()}}
	}
	if int64(len(data)) > maxBytes {
		return nil, skema.Issues{{Code: skema.CodeParseError, Message: "max bytes exceeded"}}
	}
	return v.ParseJSON(data)
}

// ValidateJSON validates the request body with v and stores the effective
// value in the request context. Failures are answered with 400 and the issues.
func ValidateJSON(v *skema.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			val, err := ReadBody(r.Body, v, DefaultMaxBytes)
			if err != nil {
				WriteIssues(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithValue(r.Context(), val)))
		})
	}
}

// WriteIssues writes err as a 400 JSON response.
func WriteIssues(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if iss, ok := skema.AsIssues(err); ok {
		_ = json.NewEncoder(w).Encode(ErrorPayload(iss))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error()})
}
