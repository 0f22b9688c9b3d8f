package eval

import (
	"context"
	"testing"

	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/registry"
)

func TestEvalIfBranchBindingConfinedToThenBranch(t *testing.T) {
	reg := registry.New()
	ev, env := newRootEnv(reg)
	ctx := context.Background()
	env.SetBinding("e", 1)

	ifStmt := &ast.If{
		Cond: &ast.BinaryOp{Op: "==", Left: literal(1), Right: literal(1)},
		Then: []ast.Statement{
			&ast.ExprStatement{Expr: literal(100), Alias: &ast.Alias{Name: "e"}, Hints: &ast.Hints{}},
		},
	}
	if _, err := ev.EvalStatement(ctx, env, ifStmt); err != nil {
		t.Fatalf("if failed: %v", err)
	}

	v, ok := env.Lookup("e")
	if !ok || v != 1 {
		t.Fatalf("expected outer e to remain 1, got %v (ok=%v)", v, ok)
	}
}

func TestEvalIfElseBranch(t *testing.T) {
	reg := registry.New()
	ev, env := newRootEnv(reg)
	ctx := context.Background()

	ifStmt := &ast.If{
		Cond: &ast.BinaryOp{Op: "==", Left: literal(1), Right: literal(2)},
		Then: []ast.Statement{&ast.ExprStatement{Expr: literal("then"), Alias: &ast.Alias{}, Hints: &ast.Hints{}}},
		Else: []ast.Statement{&ast.ExprStatement{Expr: literal("else"), Alias: &ast.Alias{}, Hints: &ast.Hints{}}},
	}
	result, err := ev.EvalStatement(ctx, env, ifStmt)
	if err != nil {
		t.Fatalf("if failed: %v", err)
	}
	if result != "else" {
		t.Fatalf("expected else branch result, got %v", result)
	}
}

func TestEvalIfBindsResultUnderAsAlias(t *testing.T) {
	reg := registry.New()
	ev, env := newRootEnv(reg)
	ctx := context.Background()

	ifStmt := &ast.If{
		Cond:  &ast.BinaryOp{Op: "==", Left: literal(1), Right: literal(2)},
		Then:  []ast.Statement{&ast.ExprStatement{Expr: literal("then"), Alias: &ast.Alias{}, Hints: &ast.Hints{}}},
		Else:  []ast.Statement{&ast.ExprStatement{Expr: literal("else"), Alias: &ast.Alias{}, Hints: &ast.Hints{}}},
		Alias: &ast.Alias{Name: "r"},
	}
	result, err := ev.EvalStatement(ctx, env, ifStmt)
	if err != nil {
		t.Fatalf("if failed: %v", err)
	}
	if result != "else" {
		t.Fatalf("expected else branch result, got %v", result)
	}
	bound, ok := env.Lookup("r")
	if !ok || bound != "else" {
		t.Fatalf("expected @as r to bind the taken branch's result, got %v (ok=%v)", bound, ok)
	}
}

func TestEvalForEachCollectsPerElementResults(t *testing.T) {
	reg := registry.New()
	ev, env := newRootEnv(reg)
	ctx := context.Background()

	forEach := &ast.ForEach{
		Var:    "n",
		Source: &ast.ArrayLit{Elems: []ast.Expr{literal(1), literal(2), literal(3)}},
		Body: []ast.Statement{
			&ast.ExprStatement{
				Expr:  &ast.BinaryOp{Op: "*", Left: &ast.Ref{Path: []string{"n"}}, Right: literal(10)},
				Alias: &ast.Alias{}, Hints: &ast.Hints{},
			},
		},
	}
	result, err := ev.EvalStatement(ctx, env, forEach)
	if err != nil {
		t.Fatalf("for-each failed: %v", err)
	}
	results, ok := result.([]any)
	if !ok || len(results) != 3 {
		t.Fatalf("expected 3 collected results, got %#v", result)
	}
	if results[0] != 10.0 || results[1] != 20.0 || results[2] != 30.0 {
		t.Fatalf("unexpected per-element results: %v", results)
	}
}

func TestEvalReturnShortCircuitsBody(t *testing.T) {
	reg := registry.New()
	ev, env := newRootEnv(reg)
	ctx := context.Background()

	body := []ast.Statement{
		&ast.Return{Inner: &ast.ExprStatement{Expr: literal("early"), Alias: &ast.Alias{}, Hints: &ast.Hints{}}},
		&ast.ExprStatement{Expr: literal("unreached"), Alias: &ast.Alias{}, Hints: &ast.Hints{}},
	}
	result, err := ev.EvalBody(ctx, env, body)
	if err != nil {
		t.Fatalf("body failed: %v", err)
	}
	if result != "early" {
		t.Fatalf("expected early return value, got %v", result)
	}
}
