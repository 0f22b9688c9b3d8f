package eval

import (
	"context"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/txn"
)

// evalIf runs a block-structured conditional (spec.md §4.4 rule 7). Each
// branch gets its own child Environment so an @as binding made inside the
// branch never leaks to the statement that follows the If (spec.md §8
// scenario 6).
func (e *Evaluator) evalIf(ctx context.Context, env *txn.Environment, s *ast.If) (any, error) {
	cond, err := e.EvalExpr(ctx, env, s.Cond)
	if err != nil {
		return nil, err
	}
	b, _ := cond.(bool)
	if b {
		return e.EvalBody(ctx, env.Child(), s.Then)
	}
	if s.Else == nil {
		return false, nil
	}
	return e.EvalBody(ctx, env.Child(), s.Else)
}

// evalForEach evaluates Source as an array, runs Body once per element with
// Var bound in a fresh child Environment, and collects the per-element
// results (spec.md §4.4 rule 6).
func (e *Evaluator) evalForEach(ctx context.Context, env *txn.Environment, s *ast.ForEach) (any, error) {
	src, err := e.EvalExpr(ctx, env, s.Source)
	if err != nil {
		return nil, err
	}
	arr, ok := toArray(src)
	if !ok {
		return nil, agerrors.NewTypeMismatch("for-each source", "array", src)
	}
	results := make([]any, 0, len(arr))
	for _, elem := range arr {
		child := env.Child()
		child.SetBinding(s.Var, elem)
		v, err := e.EvalBody(ctx, child, s.Body)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}
