// Package agent implements the Agent Invocation Hook (spec.md §4.10): the
// evaluator never calls an LLM directly. It hands an external Provider a
// description of the agent being invoked plus the bound call arguments,
// and the provider either answers directly or returns statements for the
// evaluator to run in the caller's own environment.
//
// No pack example wires an actual LLM client — spec.md §1 places "LLM
// provider adapters (consumed via an agent-invocation hook)" outside the
// core entirely, so this package defines only the boundary and a couple
// of deterministic Providers useful for composing and testing workflows
// that invoke agents, the way internal/resolver's Memory backend stands
// in for a real database.
package agent

import (
	"context"

	"github.com/nucleus/agentlang/internal/ast"
)

// Request is what the evaluator hands a Provider for one AgentInvoke
// statement (spec.md §4.10).
type Request struct {
	Agent      *ast.Agent
	Args       map[string]any
	ActiveUser string
}

// Response is a Provider's answer to a Request. Exactly one of Statements
// or Result is meaningful: when Statements is non-empty the evaluator
// compiles and runs them transactionally in the invoking environment
// (spec.md §4.9's "AGENT sub-graph" walking-node row); otherwise Result
// is used directly as the AgentInvoke statement's value.
type Response struct {
	Statements []ast.Statement
	Result     any
}

// Provider is the external LLM adapter boundary. internal/eval depends
// only on this interface; a concrete provider (an HTTP client against a
// model API, a scripted test double, ...) is injected by whatever
// assembles the Evaluator, mirroring how internal/resolver.Resolver lets
// the evaluator stay storage-agnostic.
type Provider interface {
	Invoke(ctx context.Context, req Request) (Response, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, req Request) (Response, error)

func (f ProviderFunc) Invoke(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
