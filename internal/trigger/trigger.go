// Package trigger implements the before/after/catch engine (spec.md
// §4.7): entity-level @before/@after workflow hooks run around CRUD
// resolver calls, and @catch clauses recover from exceptions raised while
// evaluating a statement.
package trigger

import (
	"context"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/registry"
	"github.com/nucleus/agentlang/internal/txn"
)

// WorkflowInvoker runs a workflow body within env, with the triggering
// event instance keyed under the entity's simple name (spec.md §4.7: "the
// evaluator ... constructs an event instance carrying the subject
// instance ... and invokes the named workflow within the current
// environment"). Implemented by the pattern evaluator; trigger does not
// depend on it directly to avoid an import cycle.
type WorkflowInvoker interface {
	InvokeWorkflow(ctx context.Context, env *txn.Environment, w *ast.Workflow, eventInstance *model.Instance) (any, error)
}

// AgentInvoker runs an agent-typed event (spec.md §4.10 "Delegates
// execution of agent-typed events to an external LLM adapter"). A
// WorkflowInvoker that does not also implement this cannot trigger
// agent-handled before/after hooks; Engine.run reports that plainly
// rather than silently skipping the trigger.
type AgentInvoker interface {
	InvokeAgent(ctx context.Context, env *txn.Environment, a *ast.Agent, eventInstance *model.Instance) (any, error)
}

// Engine runs before/after triggers for an entity operation.
type Engine struct {
	Invoker  WorkflowInvoker
	Registry *registry.Registry
}

// NewEngine returns a trigger Engine bound to invoker and reg.
func NewEngine(invoker WorkflowInvoker, reg *registry.Registry) *Engine {
	return &Engine{Invoker: invoker, Registry: reg}
}

// RunBefore runs every @before trigger entity declares for op, in
// declaration order. A before-trigger's failure aborts the operation
// (spec.md §4.7: "A before-trigger's failure aborts the operation").
func (e *Engine) RunBefore(ctx context.Context, env *txn.Environment, entity *model.Entity, op ast.Op, subject *model.Instance) error {
	return e.run(ctx, env, entity, ast.Before, op, subject)
}

// RunAfter runs every @after trigger entity declares for op, in
// declaration order. An after-trigger's failure aborts the whole workflow
// unless caught by an enclosing @catch (spec.md §4.7).
func (e *Engine) RunAfter(ctx context.Context, env *txn.Environment, entity *model.Entity, op ast.Op, subject *model.Instance) error {
	return e.run(ctx, env, entity, ast.After, op, subject)
}

func (e *Engine) run(ctx context.Context, env *txn.Environment, entity *model.Entity, when ast.TriggerWhen, op ast.Op, subject *model.Instance) error {
	triggers := registry.Triggers(entity, when, op)
	for _, t := range triggers {
		if w, err := e.Registry.ResolveWorkflow(t.Workflow, entity.Module); err == nil {
			eventInst := model.NewInstance(w.Module, entity.Name, nil)
			eventInst.Attributes.Set(entity.Name, subject)
			if _, err := e.Invoker.InvokeWorkflow(ctx, env, w, eventInst); err != nil {
				return agerrors.Wrap(agerrors.KindOf(err), fqTriggerName(when, entity, op), err)
			}
			continue
		}

		a, err := e.Registry.ResolveAgent(t.Workflow, entity.Module)
		if err != nil {
			return agerrors.New(agerrors.ValidationError, "unknown trigger handler: "+t.Workflow)
		}
		agentInvoker, ok := e.Invoker.(AgentInvoker)
		if !ok {
			return agerrors.New(agerrors.ValidationError, "trigger handler "+t.Workflow+" is an agent but the invoker does not support agent-typed events")
		}
		eventInst := model.NewInstance(a.Module, entity.Name, nil)
		eventInst.Attributes.Set(entity.Name, subject)
		if _, err := agentInvoker.InvokeAgent(ctx, env, a, eventInst); err != nil {
			return agerrors.Wrap(agerrors.KindOf(err), fqTriggerName(when, entity, op), err)
		}
	}
	return nil
}

func fqTriggerName(when ast.TriggerWhen, entity *model.Entity, op ast.Op) string {
	verb := "after"
	if when == ast.Before {
		verb = "before"
	}
	return "@" + verb + " trigger on " + entity.FQName() + " (" + string(op) + ")"
}
