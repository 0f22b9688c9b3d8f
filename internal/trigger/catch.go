package trigger

import (
	"context"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/txn"
)

// PatternEvaluator evaluates a single recovery statement with err bound as
// `err` in scope, returning the statement's result (spec.md §4.7:
// "evaluate the pattern with the exception bound as err"). Implemented by
// the pattern evaluator; catch does not depend on it directly.
type PatternEvaluator interface {
	EvalRecovery(ctx context.Context, env *txn.Environment, pattern ast.Statement, caught *agerrors.Error) (any, error)
}

// HandleCatch matches raised against hints.Catch in declaration order and,
// on the first matching clause, evaluates its recovery pattern (spec.md
// §4.7: "@catch { <kind> <pattern>, ... } on a statement: on exception,
// match the kind ... to its recovery pattern"). handled is false when no
// clause matched raised's kind, meaning the caller must re-raise raised
// unchanged.
func HandleCatch(ctx context.Context, env *txn.Environment, hints ast.Hints, raised error, evalr PatternEvaluator) (result any, handled bool, err error) {
	caught, ok := agerrors.As(raised)
	if !ok {
		return nil, false, nil
	}
	catchKind := caught.Kind.CatchKind()
	for _, clause := range hints.Catch {
		if clause.Kind != catchKind && clause.Kind != string(caught.Kind) {
			continue
		}
		out, evalErr := evalr.EvalRecovery(ctx, env, clause.Pattern, caught)
		if evalErr != nil {
			return nil, true, evalErr
		}
		return out, true, nil
	}
	return nil, false, nil
}
