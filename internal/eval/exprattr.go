package eval

import (
	"context"

	"github.com/nucleus/agentlang/internal/expr"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/txn"
)

// recomputeExprAttrs implements the expression-attribute recomputer
// (spec.md §4.5): iterate @expr attributes in declaration order, each
// evaluated against the current attribute map and assigned; then
// re-apply any user-provided literals for those same attributes,
// overwriting the computed value. Because step 1 runs before step 2, a
// dependent @expr attribute sees the expr-computed value of an earlier
// @expr attribute even when the user also supplied a literal for it —
// only the final stored value reflects the user's override.
func recomputeExprAttrs(ctx context.Context, e *Evaluator, env *txn.Environment, entity *model.Entity, attrs *model.Attrs) error {
	exprAttrs := entity.ExprAttrs()
	if len(exprAttrs) == 0 {
		return nil
	}

	userLiterals := map[string]any{}
	for _, a := range exprAttrs {
		if v, ok := attrs.Get(a.Name); ok {
			userLiterals[a.Name] = v
		}
	}

	for _, a := range exprAttrs {
		this := attrs.Map()
		v, err := expr.CompileAndEval(a.Expr, map[string]any{"this": this})
		if err != nil {
			return err
		}
		attrs.Set(a.Name, v)
	}

	for name, v := range userLiterals {
		attrs.Set(name, v)
	}
	return nil
}
