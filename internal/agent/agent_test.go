package agent

import (
	"context"
	"testing"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
)

func TestScriptedInvokeConsumesTurnsInOrder(t *testing.T) {
	a := &ast.Agent{Module: "Sales", Name: "Greeter"}
	p := NewScripted(map[string][]Response{
		"Sales/Greeter": {
			{Result: "first"},
			{Result: "second"},
		},
	})

	r1, err := p.Invoke(context.Background(), Request{Agent: a})
	if err != nil || r1.Result != "first" {
		t.Fatalf("expected first turn, got %v err=%v", r1.Result, err)
	}
	r2, err := p.Invoke(context.Background(), Request{Agent: a})
	if err != nil || r2.Result != "second" {
		t.Fatalf("expected second turn, got %v err=%v", r2.Result, err)
	}
	if _, err := p.Invoke(context.Background(), Request{Agent: a}); agerrors.KindOf(err) != agerrors.NotFound {
		t.Fatalf("expected NotFound once turns are exhausted, got %v", err)
	}
}

func TestEchoReturnsAgentInstruction(t *testing.T) {
	a := &ast.Agent{Module: "Sales", Name: "Greeter", Instruction: "say hi"}
	resp, err := Echo{}.Invoke(context.Background(), Request{Agent: a})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Result != "say hi" {
		t.Fatalf("expected instruction echoed back, got %v", resp.Result)
	}
}
