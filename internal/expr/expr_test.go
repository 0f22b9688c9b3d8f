package expr

import (
	"testing"

	"github.com/nucleus/agentlang/internal/agerrors"
)

func TestCompileAndEvalArithmetic(t *testing.T) {
	out, err := CompileAndEval("this.qty * this.price", map[string]any{
		"this": map[string]any{"qty": 3, "price": 2.5},
	})
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if out != 7.5 {
		t.Fatalf("expected 7.5, got %v", out)
	}
}

func TestEvalBoolForWherePredicate(t *testing.T) {
	prog, err := Compile(`auth.role == "admin" || this.ownerId == auth.userId`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	ok, err := prog.EvalBool(map[string]any{
		"auth": map[string]any{"role": "user", "userId": "u1"},
		"this": map[string]any{"ownerId": "u1"},
	})
	if err != nil || !ok {
		t.Fatalf("expected true, got %v, %v", ok, err)
	}
}

func TestEvalBoolRejectsNonBoolResult(t *testing.T) {
	prog, err := Compile("1 + 1")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	_, err = prog.EvalBool(map[string]any{})
	if !agerrors.Is(err, agerrors.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}

func TestCompileUndefinedVariablesAllowed(t *testing.T) {
	prog, err := Compile("this.missing == nil")
	if err != nil {
		t.Fatalf("compile should allow undefined variables, got: %v", err)
	}
	out, err := prog.Eval(map[string]any{"this": map[string]any{}})
	if err != nil || out != true {
		t.Fatalf("expected true, got %v, %v", out, err)
	}
}

func TestCompileParseErrorWrapsAsParseError(t *testing.T) {
	_, err := Compile("this..bad..syntax((")
	if !agerrors.Is(err, agerrors.ParseError) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}
