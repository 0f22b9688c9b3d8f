package trigger

import (
	"context"
	"testing"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/registry"
	"github.com/nucleus/agentlang/internal/resolver"
	"github.com/nucleus/agentlang/internal/txn"
)

type recordingInvoker struct {
	invoked []string
	fail    bool
}

func (r *recordingInvoker) InvokeWorkflow(ctx context.Context, env *txn.Environment, w *ast.Workflow, eventInstance *model.Instance) (any, error) {
	r.invoked = append(r.invoked, w.FQName())
	if r.fail {
		return nil, agerrors.New(agerrors.ValidationError, "boom")
	}
	return nil, nil
}

func newSalesModule(t *testing.T) (*registry.Registry, *model.Entity) {
	t.Helper()
	reg := registry.New()
	mod := registry.NewModule("Sales")
	user := model.NewEntity("Sales", "User", []model.AttrDef{{Name: "name", Type: model.TypeString}})
	if err := mod.AddEntity(user); err != nil {
		t.Fatalf("AddEntity failed: %v", err)
	}
	if err := mod.AddWorkflow(&ast.Workflow{Module: "Sales", Name: "Welcome"}); err != nil {
		t.Fatalf("AddWorkflow failed: %v", err)
	}
	registry.AddTrigger(user, ast.Trigger{When: ast.Before, Op: ast.OpCreate, Workflow: "Sales/Welcome"})
	reg.AddModule(mod)
	return reg, user
}

func TestRunBeforeInvokesDeclaredWorkflow(t *testing.T) {
	reg, user := newSalesModule(t)
	invoker := &recordingInvoker{}
	engine := NewEngine(invoker, reg)
	env := txn.New("Sales", "u1", map[string]resolver.Resolver{})
	subject := model.NewInstance("Sales", "User", map[string]any{"name": "Joe"})

	if err := engine.RunBefore(context.Background(), env, user, ast.OpCreate, subject); err != nil {
		t.Fatalf("RunBefore failed: %v", err)
	}
	if len(invoker.invoked) != 1 || invoker.invoked[0] != "Sales/Welcome" {
		t.Fatalf("expected Sales/Welcome invoked once, got %v", invoker.invoked)
	}
}

func TestRunBeforeFailureAbortsOperation(t *testing.T) {
	reg, user := newSalesModule(t)
	invoker := &recordingInvoker{fail: true}
	engine := NewEngine(invoker, reg)
	env := txn.New("Sales", "u1", map[string]resolver.Resolver{})
	subject := model.NewInstance("Sales", "User", map[string]any{"name": "Joe"})

	err := engine.RunBefore(context.Background(), env, user, ast.OpCreate, subject)
	if err == nil {
		t.Fatal("expected before-trigger failure to propagate")
	}
}

func TestRunAfterNoTriggersIsNoop(t *testing.T) {
	reg, user := newSalesModule(t)
	invoker := &recordingInvoker{}
	engine := NewEngine(invoker, reg)
	env := txn.New("Sales", "u1", map[string]resolver.Resolver{})
	subject := model.NewInstance("Sales", "User", map[string]any{"name": "Joe"})

	if err := engine.RunAfter(context.Background(), env, user, ast.OpCreate, subject); err != nil {
		t.Fatalf("RunAfter should be a no-op without @after triggers: %v", err)
	}
	if len(invoker.invoked) != 0 {
		t.Fatalf("expected no invocations, got %v", invoker.invoked)
	}
}

type recordingAgentInvoker struct {
	recordingInvoker
	invokedAgents []string
}

func (r *recordingAgentInvoker) InvokeAgent(ctx context.Context, env *txn.Environment, a *ast.Agent, eventInstance *model.Instance) (any, error) {
	r.invokedAgents = append(r.invokedAgents, a.FQName())
	return nil, nil
}

func TestRunBeforeDispatchesToAgentTrigger(t *testing.T) {
	reg := registry.New()
	mod := registry.NewModule("Sales")
	user := model.NewEntity("Sales", "User", []model.AttrDef{{Name: "name", Type: model.TypeString}})
	if err := mod.AddEntity(user); err != nil {
		t.Fatalf("AddEntity failed: %v", err)
	}
	if err := mod.AddAgent(&ast.Agent{Module: "Sales", Name: "Greeter", Role: "greeter"}); err != nil {
		t.Fatalf("AddAgent failed: %v", err)
	}
	registry.AddTrigger(user, ast.Trigger{When: ast.Before, Op: ast.OpCreate, Workflow: "Sales/Greeter"})
	reg.AddModule(mod)

	invoker := &recordingAgentInvoker{}
	engine := NewEngine(invoker, reg)
	env := txn.New("Sales", "u1", map[string]resolver.Resolver{})
	subject := model.NewInstance("Sales", "User", map[string]any{"name": "Joe"})

	if err := engine.RunBefore(context.Background(), env, user, ast.OpCreate, subject); err != nil {
		t.Fatalf("RunBefore failed: %v", err)
	}
	if len(invoker.invokedAgents) != 1 || invoker.invokedAgents[0] != "Sales/Greeter" {
		t.Fatalf("expected Sales/Greeter invoked once, got %v", invoker.invokedAgents)
	}
}

func TestRunBeforeAgentTriggerFailsWithoutAgentInvoker(t *testing.T) {
	reg := registry.New()
	mod := registry.NewModule("Sales")
	user := model.NewEntity("Sales", "User", []model.AttrDef{{Name: "name", Type: model.TypeString}})
	if err := mod.AddEntity(user); err != nil {
		t.Fatalf("AddEntity failed: %v", err)
	}
	if err := mod.AddAgent(&ast.Agent{Module: "Sales", Name: "Greeter", Role: "greeter"}); err != nil {
		t.Fatalf("AddAgent failed: %v", err)
	}
	registry.AddTrigger(user, ast.Trigger{When: ast.Before, Op: ast.OpCreate, Workflow: "Sales/Greeter"})
	reg.AddModule(mod)

	invoker := &recordingInvoker{}
	engine := NewEngine(invoker, reg)
	env := txn.New("Sales", "u1", map[string]resolver.Resolver{})
	subject := model.NewInstance("Sales", "User", map[string]any{"name": "Joe"})

	if err := engine.RunBefore(context.Background(), env, user, ast.OpCreate, subject); err == nil {
		t.Fatal("expected an error when the invoker cannot handle agent-typed events")
	}
}

type fakeRecoveryEvaluator struct {
	result any
}

func (f *fakeRecoveryEvaluator) EvalRecovery(ctx context.Context, env *txn.Environment, pattern ast.Statement, caught *agerrors.Error) (any, error) {
	return f.result, nil
}

func TestHandleCatchMatchesNotFoundKind(t *testing.T) {
	env := txn.New("Sales", "u1", map[string]resolver.Resolver{})
	hints := ast.Hints{Catch: []ast.CatchClause{{Kind: "not_found", Pattern: &ast.Return{}}}}
	raised := agerrors.NewNotFound("Sales/User", "u1")
	evalr := &fakeRecoveryEvaluator{result: "recovered"}

	result, handled, err := HandleCatch(context.Background(), env, hints, raised, evalr)
	if err != nil || !handled {
		t.Fatalf("expected handled=true, err=nil, got handled=%v err=%v", handled, err)
	}
	if result != "recovered" {
		t.Fatalf("expected recovered result, got %v", result)
	}
}

func TestHandleCatchUnmatchedKindReraises(t *testing.T) {
	env := txn.New("Sales", "u1", map[string]resolver.Resolver{})
	hints := ast.Hints{Catch: []ast.CatchClause{{Kind: "not_found", Pattern: &ast.Return{}}}}
	raised := agerrors.New(agerrors.UniqueViolation, "dup")
	evalr := &fakeRecoveryEvaluator{result: "recovered"}

	_, handled, err := HandleCatch(context.Background(), env, hints, raised, evalr)
	if handled || err != nil {
		t.Fatalf("expected unmatched kind to not be handled, got handled=%v err=%v", handled, err)
	}
}

func TestHandleCatchMatchesCustomKindName(t *testing.T) {
	env := txn.New("Sales", "u1", map[string]resolver.Resolver{})
	hints := ast.Hints{Catch: []ast.CatchClause{{Kind: "UniqueViolation", Pattern: &ast.Return{}}}}
	raised := agerrors.New(agerrors.UniqueViolation, "dup")
	evalr := &fakeRecoveryEvaluator{result: "recovered"}

	_, handled, err := HandleCatch(context.Background(), env, hints, raised, evalr)
	if !handled || err != nil {
		t.Fatalf("expected custom kind name match to be handled, got handled=%v err=%v", handled, err)
	}
}
