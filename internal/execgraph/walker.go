package execgraph

import (
	"context"

	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/eval"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/txn"
)

// Walker drives a Graph against a live Evaluator. It never re-implements
// EvalBody/evalIf/evalForEach: every statement still runs through
// Evaluator.EvalStatement, so graph semantics stay identical to the direct
// interpreter except for what a Suspender installed on the context does
// with a SUSPEND.
type Walker struct {
	Evaluator *eval.Evaluator
}

// NewWalker wraps ev.
func NewWalker(ev *eval.Evaluator) *Walker {
	return &Walker{Evaluator: ev}
}

func bindEvent(env *txn.Environment, wf *ast.Workflow, eventInstance *model.Instance) *txn.Environment {
	child := env.Child()
	child.ActiveModule = wf.Module
	if v, ok := eventInstance.Attributes.Get(wf.EventEntry); ok {
		child.SetBinding(wf.EventEntry, v)
	} else {
		child.SetBinding(wf.EventEntry, eventInstance)
	}
	return child
}

// RunBlocking drives g's body to completion in env, parking on sus across
// any SUSPEND at any nesting depth. Use this from a long-lived worker
// goroutine that can afford to block for the lifetime of the suspension.
func (w *Walker) RunBlocking(ctx context.Context, env *txn.Environment, g *Graph, sus *BlockingSuspender) (any, error) {
	ctx = eval.WithSuspender(ctx, sus)
	return w.Evaluator.EvalBody(ctx, env, g.Workflow.Body)
}

// InvokeBlocking binds eventInstance the same way eval.Evaluator.InvokeWorkflow
// does, then drives the graph with RunBlocking.
func (w *Walker) InvokeBlocking(ctx context.Context, env *txn.Environment, g *Graph, eventInstance *model.Instance, sus *BlockingSuspender) (any, error) {
	return w.RunBlocking(ctx, bindEvent(env, g.Workflow, eventInstance), g, sus)
}

// Checkpoint is the durable resume point RunToCheckpoint returns when a
// top-level statement raises SUSPEND. Only the top level is tracked:
// Bindings is a flat snapshot of env's own scope at the moment of
// suspension (env.Bindings()), which is enough to rebuild the Environment
// a later, stateless activity invocation resumes in, since a workflow
// body's event parameter and every @as alias bind directly into that top
// scope. A SUSPEND nested inside an If/ForEach branch unwinds through this
// same path, and ResumeIndex is then the index after the enclosing
// top-level statement: a durable resume continues with the next top-level
// statement, and the rest of the enclosing If/ForEach is not run — spec.md
// §9 flags the execution-graph/direct-interpreter SUSPEND divergence as an
// open question, and this is this package's deliberately narrower
// resolution for the Temporal-backed, restart-surviving path (RunBlocking
// above is the full-fidelity answer for a single live process).
type Checkpoint struct {
	Module       string
	Workflow     string
	SuspensionID string
	ResumeIndex  int
	ActiveUser   string
	Bindings     map[string]any
	Partial      any
}

// RunToCheckpoint walks g.Workflow.Body starting at fromIndex, one
// top-level statement at a time, using an unwindSuspender so a SUSPEND
// anywhere beneath a given top-level statement returns immediately instead
// of blocking. It reports the workflow's value on normal completion
// (reaching the end of body, or a Return firing), or a Checkpoint if one
// of the remaining statements suspends.
func (w *Walker) RunToCheckpoint(ctx context.Context, env *txn.Environment, g *Graph, fromIndex int, activeUser string) (result any, cp *Checkpoint, err error) {
	cctx := eval.WithSuspender(ctx, unwindSuspender{})
	body := g.Workflow.Body
	for i := fromIndex; i < len(body); i++ {
		v, serr := w.Evaluator.EvalStatement(cctx, env, body[i])
		if serr != nil {
			if sig, ok := asSuspendSignal(serr); ok {
				return nil, &Checkpoint{
					Module:       g.Workflow.Module,
					Workflow:     g.Workflow.Name,
					SuspensionID: sig.id,
					ResumeIndex:  i + 1,
					ActiveUser:   activeUser,
					Bindings:     env.Bindings(),
					Partial:      sig.partial,
				}, nil
			}
			return nil, nil, serr
		}
		if rv, ok := eval.AsReturn(v); ok {
			return rv, nil, nil
		}
		result = v
	}
	return result, nil, nil
}

// InvokeToCheckpoint binds eventInstance the way InvokeWorkflow does, then
// drives the graph with RunToCheckpoint from statement 0.
func (w *Walker) InvokeToCheckpoint(ctx context.Context, env *txn.Environment, g *Graph, eventInstance *model.Instance) (any, *Checkpoint, error) {
	child := bindEvent(env, g.Workflow, eventInstance)
	return w.RunToCheckpoint(ctx, child, g, 0, child.ActiveUser)
}

// ResumeFromCheckpoint rebuilds the Environment cp describes on top of
// root (a fresh root Environment with the right resolvers wired in) and
// continues RunToCheckpoint from cp.ResumeIndex. resumeValue stands in for
// the value the original SUSPEND statement would have produced had it not
// unwound — it becomes the resumed Environment's last-result register, the
// same place Evaluator.EvalStatement would have left it.
func (w *Walker) ResumeFromCheckpoint(ctx context.Context, root *txn.Environment, g *Graph, cp *Checkpoint, resumeValue any) (any, *Checkpoint, error) {
	env := root.Child()
	env.ActiveModule = cp.Module
	env.ActiveUser = cp.ActiveUser
	env.RestoreBindings(cp.Bindings)
	env.LastResult = resumeValue
	return w.RunToCheckpoint(ctx, env, g, cp.ResumeIndex, cp.ActiveUser)
}
