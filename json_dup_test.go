package skema_test

import (
	"testing"

	"github.com/reoring/skema"
)

func TestParseJSON_DuplicateKey(t *testing.T) {
	s := skema.Object(skema.Field("items", skema.Array(skema.Object(skema.Field("id", skema.Number())))))
	_, err := skema.ParseJSON(s, []byte(`{"items":[{"id":1},{"id":2,"id":3}]}`))
	iss, ok := skema.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", err)
	}
	if iss[0].Code != skema.CodeDuplicateKey {
		t.Fatalf("expected duplicate_key, got %s", iss[0].Code)
	}
	if got := iss[0].Path.String(); got != "items[1].id" {
		t.Fatalf("path got=%q", got)
	}
	if iss[0].Category() != skema.DecodeFailure {
		t.Fatalf("category got=%v", iss[0].Category())
	}
}

func TestParseJSON_NoDuplicate(t *testing.T) {
	s := skema.Object(skema.Field("a", skema.Number()), skema.Field("b", skema.Object(skema.Field("a", skema.Number()))))
	if _, err := skema.ParseJSON(s, []byte(`{"a":1,"b":{"a":2}}`)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
