// Package eval implements the pattern evaluator (spec.md §4.4): the
// direct interpreter that walks a workflow's statement tree, classifies
// and runs CRUD/join/delete patterns against resolvers, recomputes
// @expr attributes, fires before/after triggers, and enforces RBAC.
package eval

import (
	"context"

	"github.com/google/uuid"

	"github.com/nucleus/agentlang/internal/agent"
	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/rbac"
	"github.com/nucleus/agentlang/internal/registry"
	"github.com/nucleus/agentlang/internal/resolver"
	"github.com/nucleus/agentlang/internal/trigger"
	"github.com/nucleus/agentlang/internal/txn"
)

// defaultResolverName is the resolver name entities with no explicit
// mapping use (spec.md §4.3).
const defaultResolverName = "memory"

// Suspender implements the pause/resume side of a SUSPEND statement (spec.md
// §4.9, §9). It is carried on the context (not the Evaluator) so that a
// single shared Evaluator stays safe for concurrent workflow runs, each with
// its own Suspender. internal/execgraph installs one; the direct-interpreter
// path run without one, where SUSPEND simply fails with SuspensionRequested.
type Suspender interface {
	// Await is called with the evaluated inner pattern's value. It returns
	// the value execution should resume with, or a non-nil error to unwind
	// (e.g. a sentinel the caller recognizes as "suspended, stop here").
	Await(ctx context.Context, suspensionID string, partial any) (resume any, err error)
}

type suspenderKey struct{}

// WithSuspender attaches s to ctx for the duration of a graph-driven run.
func WithSuspender(ctx context.Context, s Suspender) context.Context {
	return context.WithValue(ctx, suspenderKey{}, s)
}

func suspenderFrom(ctx context.Context) (Suspender, bool) {
	s, ok := ctx.Value(suspenderKey{}).(Suspender)
	return s, ok
}

// Func is a registered plug-in function (spec.md §4.4 rule 1: "Function
// calls are resolved against a registered plug-in function table and
// receive the environment as their last argument").
type Func func(ctx context.Context, env *txn.Environment, args []any) (any, error)

// Evaluator is the direct interpreter (spec.md §4.4). It is the concrete
// type that satisfies trigger.WorkflowInvoker, trigger.PatternEvaluator
// and rbac.RoleLookup, wiring those packages together without any of them
// depending on eval directly.
type Evaluator struct {
	Registry  *registry.Registry
	Triggers  *trigger.Engine
	RBAC      *rbac.Gate
	Functions map[string]Func

	// AuthEnv is the kernel-mode root Environment RolesFor/IsAdmin run
	// their auth-module lookups against (spec.md §4.8: "Lookups must use
	// the kernel/admin identity to avoid recursive gating"). Set via
	// SetAuthEnvironment once the resolver wiring is ready; left nil,
	// RBAC lookups see every user as roleless and non-admin.
	AuthEnv *txn.Environment

	// AgentProvider is the external LLM adapter AgentInvoke statements
	// delegate to (spec.md §4.10). Left nil, AgentInvoke fails with
	// ValidationError rather than silently no-op'ing.
	AgentProvider agent.Provider
}

// SetAgentProvider installs the Provider AgentInvoke statements call out
// to.
func (e *Evaluator) SetAgentProvider(p agent.Provider) {
	e.AgentProvider = p
}

// SetAuthEnvironment installs the kernel Environment used for auth-module
// role lookups. env.Kernel should be true.
func (e *Evaluator) SetAuthEnvironment(env *txn.Environment) {
	e.AuthEnv = env
}

// New builds an Evaluator over reg. The trigger engine and RBAC gate are
// wired to this same Evaluator (RunBefore/RunAfter call back into
// InvokeWorkflow/InvokeAgent; RBAC role lookups call back into
// RolesFor/IsAdmin, which query the auth module through AuthEnv).
func New(reg *registry.Registry) *Evaluator {
	e := &Evaluator{Registry: reg, Functions: map[string]Func{}}
	e.Triggers = trigger.NewEngine(e, reg)
	e.RBAC = rbac.NewGate(e, reg)
	return e
}

// RegisterFunc installs a plug-in function under name.
func (e *Evaluator) RegisterFunc(name string, fn Func) {
	e.Functions[name] = fn
}

// resolverFor resolves the resolver.Resolver + started transaction for
// the entity named fqName, consulting the registry's explicit mapping
// (spec.md §4.3) and falling back to the default resolver.
func (e *Evaluator) resolverFor(ctx context.Context, env *txn.Environment, fqName string) (resolver.Resolver, resolver.TxnID, error) {
	name := e.Registry.ResolverFor(fqName)
	if name == "" {
		name = defaultResolverName
	}
	return env.Resolver(ctx, name)
}

// authInfo builds the AuthInfo a resolver call carries, given the current
// environment's active user and the operation's for-update/for-delete
// framing.
func authInfo(env *txn.Environment, forUpdate, forDelete bool) resolver.AuthInfo {
	return resolver.AuthInfo{UserID: env.ActiveUser, ReadForUpdate: forUpdate, ReadForDelete: forDelete}
}

// EvalStatement evaluates one top-level (or nested) statement, applying
// alias binding afterward (spec.md §4.4 "Alias binding").
func (e *Evaluator) EvalStatement(ctx context.Context, env *txn.Environment, stmt ast.Statement) (any, error) {
	result, hints, alias, err := e.evalDispatch(ctx, env, stmt)
	if err != nil {
		if hints != nil && len(hints.Catch) > 0 {
			recovered, handled, catchErr := trigger.HandleCatch(ctx, env, *hints, err, e)
			if handled {
				if catchErr != nil {
					return nil, catchErr
				}
				result, err = recovered, nil
			}
		}
		if err != nil {
			return nil, err
		}
	}
	env.LastResult = result
	bindAlias(env, alias, result)
	return result, nil
}

// EvalRecovery implements trigger.PatternEvaluator: evaluates a @catch
// clause's recovery pattern with caught bound as `err` in scope (spec.md
// §4.7: "evaluate the pattern with the exception bound as err"). The
// binding goes through the normal @as bindings map, so `err.kind` and
// `err.message` resolve the same way any other bound root does.
func (e *Evaluator) EvalRecovery(ctx context.Context, env *txn.Environment, pattern ast.Statement, caught *agerrors.Error) (any, error) {
	child := env.Child()
	errEnv := map[string]any{
		"kind":    string(caught.Kind),
		"message": caught.Message,
	}
	child.LastResult = errEnv
	child.SetBinding("err", errEnv)
	return e.EvalStatement(ctx, child, pattern)
}

func (e *Evaluator) evalDispatch(ctx context.Context, env *txn.Environment, stmt ast.Statement) (any, *ast.Hints, *ast.Alias, error) {
	switch s := stmt.(type) {
	case *ast.ExprStatement:
		v, err := e.EvalExpr(ctx, env, s.Expr)
		return v, s.Hints, s.Alias, err
	case *ast.CRUDPattern:
		v, err := e.evalCRUD(ctx, env, s)
		return v, s.Hints, s.Alias, err
	case *ast.DeletePattern:
		v, err := e.evalDelete(ctx, env, s)
		return v, s.Hints, s.Alias, err
	case *ast.JoinPattern:
		v, err := e.evalJoin(ctx, env, s)
		return v, nil, s.Alias, err
	case *ast.FullTextSearch:
		v, err := e.evalFullTextSearch(ctx, env, s)
		return v, nil, s.Alias, err
	case *ast.If:
		v, err := e.evalIf(ctx, env, s)
		return v, s.Hints, s.Alias, err
	case *ast.ForEach:
		v, err := e.evalForEach(ctx, env, s)
		return v, s.Hints, s.Alias, err
	case *ast.Return:
		v, err := e.evalReturn(ctx, env, s)
		// Return's dispatch value is a returnSignal wrapper EvalBody unwraps
		// downstream; bind the alias against the carried value directly here
		// rather than against the wrapper, then suppress the caller's own
		// binding pass by returning a nil alias.
		if err == nil {
			if rs, ok := v.(returnSignal); ok {
				bindAlias(env, s.Alias, rs.value)
			}
		}
		return v, s.Hints, nil, err
	case *ast.Suspend:
		v, err := e.evalSuspend(ctx, env, s)
		return v, s.Hints, s.Alias, err
	case *ast.AgentInvoke:
		v, err := e.evalAgentInvoke(ctx, env, s)
		return v, s.Hints, s.Alias, err
	default:
		return nil, nil, nil, agerrors.New(agerrors.ValidationError, "unknown statement kind")
	}
}

// EvalBody runs statements in order, returning the last statement's value
// unless an explicit return fired (spec.md §4.4 "Pattern precedence and
// ordering"). Return is modeled as returnSignal, unwrapped here.
func (e *Evaluator) EvalBody(ctx context.Context, env *txn.Environment, body []ast.Statement) (any, error) {
	var result any
	for _, stmt := range body {
		v, err := e.EvalStatement(ctx, env, stmt)
		if err != nil {
			return nil, err
		}
		if rs, ok := v.(returnSignal); ok {
			return rs.value, nil
		}
		result = v
	}
	return result, nil
}

// returnSignal marks a Return statement's value so EvalBody can stop
// walking the remainder of the enclosing body (spec.md §4.4 rule 8).
type returnSignal struct{ value any }

// AsReturn reports whether v is the result of a Return statement, and its
// carried value — used by internal/execgraph, which walks a workflow body
// one top-level statement at a time rather than through EvalBody.
func AsReturn(v any) (any, bool) {
	rs, ok := v.(returnSignal)
	if !ok {
		return nil, false
	}
	return rs.value, true
}

func (e *Evaluator) evalReturn(ctx context.Context, env *txn.Environment, r *ast.Return) (any, error) {
	v, err := e.EvalStatement(ctx, env, r.Inner)
	if err != nil {
		return nil, err
	}
	return returnSignal{value: v}, nil
}

func (e *Evaluator) evalSuspend(ctx context.Context, env *txn.Environment, s *ast.Suspend) (any, error) {
	partial, err := e.EvalStatement(ctx, env, s.Inner)
	if err != nil {
		return nil, err
	}
	suspender, ok := suspenderFrom(ctx)
	if !ok {
		// Only the compiled execution graph (internal/execgraph) implements
		// pause/resume (spec.md §9: "prefer the execution-graph semantics
		// and deprecate the direct path").
		return nil, agerrors.New(agerrors.SuspensionRequested, "SUSPEND requires the compiled execution graph; see internal/execgraph").
			WithDetails("partial", partial)
	}
	return suspender.Await(ctx, uuid.NewString(), partial)
}

func bindAlias(env *txn.Environment, alias *ast.Alias, result any) {
	if alias.IsZero() {
		return
	}
	if alias.Name != "" {
		env.SetBinding(alias.Name, result)
		return
	}
	// Destructuring bindings are resolved the same way: callers look up
	// elements through Ref against the array result bound under each
	// element's name. The concrete name->value map lives on the
	// Environment via a dedicated binding store, set here.
	arr, ok := toArray(result)
	if !ok {
		return
	}
	idx := 0
	for _, elem := range alias.Destructure {
		if elem.Remainder {
			var rest []any
			if idx < len(arr) {
				rest = arr[idx:]
			}
			env.SetBinding(elem.Name, rest)
			break
		}
		var v any
		if idx < len(arr) {
			v = arr[idx]
		}
		if !elem.Skip {
			env.SetBinding(elem.Name, v)
		}
		idx++
	}
}

func toArray(v any) ([]any, bool) {
	arr, ok := v.([]any)
	if ok {
		return arr, true
	}
	switch t := v.(type) {
	case []*model.Instance:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = x
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = x
		}
		return out, true
	}
	return nil, false
}
