package skema

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/google/cel-go/cel"
)

// The value under test is bound to the CEL variable "value". Numbers of
// different Go types compare with each other the way they do in kind checks.
var exprEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("value", cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
})

// RefineExpr returns a new schema that runs a CEL predicate over the effective
// value after every check of base has passed, e.g. `value.size() > 2` or
// `value.start < value.end`. The expression must evaluate to a bool; an
// evaluation error counts as a failure. message replaces the default text.
func RefineExpr(base *Schema, expr, message string) (*Schema, error) {
	if base == nil {
		return nil, &ConstructionError{Op: "RefineExpr", Reason: "nil base schema", Err: ErrNilSchema}
	}
	env, err := exprEnv()
	if err != nil {
		return nil, &ConstructionError{Op: "RefineExpr", Reason: "cel environment", Err: err}
	}
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, &ConstructionError{Op: "RefineExpr", Reason: fmt.Sprintf("compile %q", expr), Err: iss.Err()}
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, &ConstructionError{Op: "RefineExpr", Reason: fmt.Sprintf("expression %q yields %s, want bool", expr, out)}
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, &ConstructionError{Op: "RefineExpr", Reason: fmt.Sprintf("program %q", expr), Err: err}
	}
	return base.withRefinement(refinement{op: opExpr, name: "RefineExpr", target: base.kind, str: expr, prog: prg, message: message}), nil
}

// MustRefineExpr is RefineExpr that panics on error.
func MustRefineExpr(base *Schema, expr, message string) *Schema {
	s, err := RefineExpr(base, expr, message)
	if err != nil {
		panic(err)
	}
	return s
}

func exprHolds(prg cel.Program, v any) bool {
	out, _, err := prg.Eval(map[string]any{"value": exprValue(v)})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// exprValue maps values CEL has no native adapter for.
func exprValue(v any) any {
	switch x := v.(type) {
	case *big.Int:
		if x.IsInt64() {
			return x.Int64()
		}
		return x.String()
	case Absent:
		return nil
	}
	return v
}
