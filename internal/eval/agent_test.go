package eval

import (
	"context"
	"testing"

	"github.com/nucleus/agentlang/internal/agent"
	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/registry"
)

func newGreeterModule(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	mod := registry.NewModule("Sales")
	if err := mod.AddAgent(&ast.Agent{
		Module: "Sales", Name: "Greeter", Role: "greeter", Instruction: "say hi",
	}); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	reg.AddModule(mod)
	return reg
}

func TestEvalAgentInvokeWithoutProviderFails(t *testing.T) {
	reg := newGreeterModule(t)
	ev, env := newRootEnv(reg)
	env.ActiveModule = "Sales"

	stmt := &ast.AgentInvoke{Agent: "Sales/Greeter"}
	_, err := ev.EvalStatement(context.Background(), env, stmt)
	if err == nil {
		t.Fatal("expected an error with no agent.Provider installed")
	}
	if agerrors.KindOf(err) != agerrors.ValidationError {
		t.Fatalf("expected ValidationError, got %v", agerrors.KindOf(err))
	}
}

func TestEvalAgentInvokeReturnsProviderResult(t *testing.T) {
	reg := newGreeterModule(t)
	ev, env := newRootEnv(reg)
	env.ActiveModule = "Sales"
	ev.SetAgentProvider(agent.Echo{})

	stmt := &ast.AgentInvoke{
		Agent: "Sales/Greeter",
		Args:  []ast.AttrEntry{{Name: "name", Value: literal("Joe")}},
	}
	v, err := ev.EvalStatement(context.Background(), env, stmt)
	if err != nil {
		t.Fatalf("EvalStatement: %v", err)
	}
	if v != "say hi" {
		t.Fatalf("expected agent's instruction echoed back, got %v", v)
	}
}

func TestEvalAgentInvokeRunsGeneratedStatementsTransactionally(t *testing.T) {
	reg := registry.New()
	mod := registry.NewModule("Sec")
	entity := model.NewEntity("Sec", "Doc", []model.AttrDef{
		{Name: "id", Type: model.TypeInt, ID: true},
	})
	if err := mod.AddEntity(entity); err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	if err := mod.AddAgent(&ast.Agent{Module: "Sec", Name: "Drafter"}); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	reg.AddModule(mod)

	ev, env := newRootEnv(reg)
	env.ActiveModule = "Sec"

	generated := []ast.Statement{
		&ast.CRUDPattern{
			Module: "Sec", Entry: "Doc",
			Attrs: []ast.AttrEntry{{Name: "id", Value: literal(1)}},
			Hints: &ast.Hints{}, Alias: &ast.Alias{},
		},
	}
	provider := agent.NewScripted(map[string][]agent.Response{
		"Sec/Drafter": {{Statements: generated}},
	})
	ev.SetAgentProvider(provider)

	stmt := &ast.AgentInvoke{Agent: "Sec/Drafter"}
	v, err := ev.EvalStatement(context.Background(), env, stmt)
	if err != nil {
		t.Fatalf("EvalStatement: %v", err)
	}
	inst, ok := v.(*model.Instance)
	if !ok {
		t.Fatalf("expected the generated CRUD pattern's instance result, got %T", v)
	}
	id, _ := inst.Attributes.Get("id")
	if id != 1 {
		t.Fatalf("expected created Doc id=1, got %v", id)
	}
}
