package eval

import (
	"context"

	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/txn"
)

// InvokeWorkflow implements trigger.WorkflowInvoker: it runs w's body in a
// child Environment with the triggering event bound under w.EventEntry,
// the same parameter-binding convention workflows use when invoked
// directly (spec.md §4.4 GLOSSARY, §4.7).
func (e *Evaluator) InvokeWorkflow(ctx context.Context, env *txn.Environment, w *ast.Workflow, eventInstance *model.Instance) (any, error) {
	child := env.Child()
	child.ActiveModule = w.Module

	if v, ok := eventInstance.Attributes.Get(w.EventEntry); ok {
		child.SetBinding(w.EventEntry, v)
	} else {
		child.SetBinding(w.EventEntry, eventInstance)
	}

	return e.EvalBody(ctx, child, w.Body)
}
