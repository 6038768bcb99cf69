package skema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
)

func TestObject_NestedPath(t *testing.T) {
	s := skema.Object(skema.Field("a", skema.Object(skema.Field("b", skema.String()))))
	r := checkBoth(t, s, map[string]any{"a": map[string]any{"b": 42}})
	require.NotNil(t, r.Issue)
	assert.Equal(t, skema.Path{"a", "b"}, r.Issue.Path)
	assert.Equal(t, "Expected string, received number", r.Issue.Message)
	assert.Equal(t, "a.b: Expected string, received number", r.Issue.Error())
}

func TestObject_MissingFieldIsRequired(t *testing.T) {
	s := skema.Object(skema.Field("name", skema.String()), skema.Field("age", skema.Number()))
	r := checkBoth(t, s, map[string]any{"age": 3})
	require.NotNil(t, r.Issue)
	assert.Equal(t, "name", r.Issue.Path.String())
	assert.Equal(t, "Required", r.Issue.Message)
}

func TestObject_FieldsCheckedInDeclarationOrder(t *testing.T) {
	s := skema.Object(skema.Field("z", skema.Number()), skema.Field("a", skema.Number()))
	r := checkBoth(t, s, map[string]any{"a": "x", "z": "y"})
	require.NotNil(t, r.Issue)
	assert.Equal(t, "z", r.Issue.Path.String())
}

func TestObject_UnknownKeysPassThrough(t *testing.T) {
	s := skema.Object(skema.Field("a", skema.Number()))
	in := map[string]any{"a": 1, "extra": true}
	r := checkBoth(t, s, in)
	require.Nil(t, r.Issue)
	assert.Equal(t, in, r.Value)
}

func TestObject_CoercionCopiesInput(t *testing.T) {
	s := skema.Object(
		skema.Field("n", skema.Number().Coerce()),
		skema.Field("tags", skema.Array(skema.String().Coerce())),
	)
	tags := []any{"a", 2}
	in := map[string]any{"n": "12", "tags": tags, "keep": "me"}
	r := checkBoth(t, s, in)
	require.Nil(t, r.Issue)
	assert.True(t, r.Coerced)
	assert.Equal(t, map[string]any{"n": 12.0, "tags": []any{"a", "2"}, "keep": "me"}, r.Value)

	assert.Equal(t, "12", in["n"])
	assert.Equal(t, 2, tags[1])
}

func TestObject_NoCoercionReturnsInput(t *testing.T) {
	s := skema.Object(skema.Field("n", skema.Number().Coerce()))
	in := map[string]any{"n": 1}
	r := checkBoth(t, s, in)
	require.Nil(t, r.Issue)
	assert.False(t, r.Coerced)
	assert.Equal(t, in, r.Value)
}

func TestObject_NotAnObject(t *testing.T) {
	s := skema.Object()
	for name, in := range map[string]any{"array": []any{}, "null": nil, "string": "x", "undefined": skema.Absent{}} {
		r := checkBoth(t, s, in)
		require.NotNil(t, r.Issue, name)
		assert.Equal(t, skema.CodeInvalidType, r.Issue.Code, name)
	}
	r := checkBoth(t, s, map[int]any{1: "x"})
	require.NotNil(t, r.Issue)
	assert.Equal(t, "Expected object, received unknown", r.Issue.Message)
}

type account struct {
	ID      int    `json:"id"`
	Name    string `skema:"name=display" json:"name"`
	Email   string `json:"email,omitempty"`
	Secret  string `json:"-"`
	Plain   bool
	private string
}

func TestObject_StructInput(t *testing.T) {
	s := skema.Object(
		skema.Field("id", skema.Number().Positive()),
		skema.Field("display", skema.String().MinLength(1)),
		skema.Field("email", skema.Optional(skema.String())),
		skema.Field("Plain", skema.Boolean()),
		skema.Field("Secret", skema.Undefined()),
		skema.Field("private", skema.Undefined()),
	).Strict()

	in := account{ID: 1, Name: "Ann", Email: "a@b.co", Secret: "s", private: "p"}
	r := checkBoth(t, s, in)
	require.Nil(t, r.Issue)
	assert.Equal(t, in, r.Value)

	r = checkBoth(t, s, account{ID: 0, Name: "Ann"})
	require.NotNil(t, r.Issue)
	assert.Equal(t, "id", r.Issue.Path.String())

	r = checkBoth(t, s, &account{ID: 1})
	require.NotNil(t, r.Issue)
	assert.Equal(t, skema.CodeInvalidType, r.Issue.Code, "pointers to structs are not objects")
}

func TestObject_TypedMapsAndSlices(t *testing.T) {
	s := skema.Object(skema.Field("scores", skema.Array(skema.Number().Max(10))))
	assert.Nil(t, checkBoth(t, s, map[string][]int{"scores": {1, 2}}).Issue)

	r := checkBoth(t, s, map[string][]float64{"scores": {1, 20}})
	require.NotNil(t, r.Issue)
	assert.Equal(t, skema.Path{"scores", 1}, r.Issue.Path)

	arr := skema.Array(skema.String())
	assert.Nil(t, checkBoth(t, arr, [2]string{"a", "b"}).Issue)
}

func TestArray_CompiledIndexIsPerCall(t *testing.T) {
	v := skema.MustCompile(skema.Array(skema.Array(skema.Number())), skema.WithCache(nil))
	r1 := v.Validate([]any{[]any{1}, []any{1, "x"}})
	r2 := v.Validate([]any{[]any{"y"}})
	require.NotNil(t, r1.Issue)
	require.NotNil(t, r2.Issue)
	assert.Equal(t, "[1][1]", r1.Issue.Path.String())
	assert.Equal(t, "[0][0]", r2.Issue.Path.String())
}
