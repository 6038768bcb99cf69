package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/reoring/skema"
	"github.com/reoring/skema/middleware"
)

func handler(t *testing.T) http.Handler {
	v := skema.MustCompile(skema.Object(
		skema.Field("name", skema.String().MinLength(1)),
		skema.Field("age", skema.Number().Int()),
	))
	return middleware.ValidateJSON(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		val, ok := middleware.ValueFromContext(r.Context())
		if !ok {
			t.Errorf("validated value missing from context")
		}
		m := val.(map[string]any)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(m["name"].(string)))
	}))
}

func TestValidateJSON_OK(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice","age":30}`))
	handler(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status got=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "alice" {
		t.Fatalf("body got=%q", rec.Body.String())
	}
}

func TestValidateJSON_Rejects(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice","age":1.5}`))
	handler(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status got=%d", rec.Code)
	}
	var body struct {
		Issues []struct {
			Code    string `json:"code"`
			Path    string `json:"path"`
			Message string `json:"message"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Issues) != 1 || body.Issues[0].Code != skema.CodeNotInteger || body.Issues[0].Path != "/age" {
		t.Fatalf("unexpected issues: %+v", body.Issues)
	}
}

func TestReadBody_MaxBytes(t *testing.T) {
	v := skema.MustCompile(skema.String())
	_, err := middleware.ReadBody(strings.NewReader(`"0123456789"`), v, 4)
	iss, ok := skema.AsIssues(err)
	if !ok || iss[0].Code != skema.CodeParseError {
		t.Fatalf("expected parse_error, got %v", err)
	}
}

func TestValidateJSON_NullBodyIsFound(t *testing.T) {
	v := skema.MustCompile(skema.Nullable(skema.String()), skema.WithCache(nil))
	var (
		got   any
		found bool
	)
	h := middleware.ValidateJSON(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = middleware.ValueFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`null`)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status got=%d body=%s", rec.Code, rec.Body.String())
	}
	if !found || got != nil {
		t.Fatalf("got=%v found=%v", got, found)
	}
}

func TestValueFromContext_Missing(t *testing.T) {
	if _, ok := middleware.ValueFromContext(context.Background()); ok {
		t.Fatalf("empty context must not report a value")
	}
}
