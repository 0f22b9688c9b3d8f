package eval

import (
	"context"

	"github.com/nucleus/agentlang/internal/agent"
	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/txn"
)

// InvokeAgent implements trigger.AgentInvoker: it runs a's invocation
// within a child Environment, the triggering event's attributes passed
// through as call arguments the same way InvokeWorkflow binds the event
// entry for an ast.Workflow (spec.md §4.10).
func (e *Evaluator) InvokeAgent(ctx context.Context, env *txn.Environment, a *ast.Agent, eventInstance *model.Instance) (any, error) {
	child := env.Child()
	child.ActiveModule = a.Module

	return e.callAgent(ctx, child, a, eventInstance.Attributes.Map())
}

// evalAgentInvoke resolves s.Agent, evaluates s.Args into a Request, and
// delegates to the installed agent.Provider (spec.md §4.10, the "AGENT
// sub-graph" walking-node row of §4.9).
func (e *Evaluator) evalAgentInvoke(ctx context.Context, env *txn.Environment, s *ast.AgentInvoke) (any, error) {
	a, err := e.Registry.ResolveAgent(s.Agent, env.ActiveModule)
	if err != nil {
		return nil, err
	}

	args := make(map[string]any, len(s.Args))
	for _, entry := range s.Args {
		v, err := e.EvalExpr(ctx, env, entry.Value)
		if err != nil {
			return nil, err
		}
		args[entry.Name] = v
	}

	return e.callAgent(ctx, env, a, args)
}

// callAgent invokes the installed Provider and, if it produced
// statements instead of a direct result, runs them transactionally in
// env (spec.md §4.10: "their effects are transactional like any other
// statement").
func (e *Evaluator) callAgent(ctx context.Context, env *txn.Environment, a *ast.Agent, args map[string]any) (any, error) {
	if e.AgentProvider == nil {
		return nil, agerrors.New(agerrors.ValidationError, "agent "+a.FQName()+" invoked but no agent.Provider is installed")
	}

	resp, err := e.AgentProvider.Invoke(ctx, agent.Request{
		Agent:      a,
		Args:       args,
		ActiveUser: env.ActiveUser,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Statements) == 0 {
		return resp.Result, nil
	}
	return e.EvalBody(ctx, env, resp.Statements)
}
