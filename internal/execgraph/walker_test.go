package execgraph

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/eval"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/registry"
	"github.com/nucleus/agentlang/internal/resolver"
	"github.com/nucleus/agentlang/internal/txn"
)

func literal(v any) ast.Expr { return &ast.Literal{Value: v} }

func newRootEnv() (*eval.Evaluator, *txn.Environment) {
	reg := registry.New()
	ev := eval.New(reg)
	mem := resolver.NewMemory()
	env := txn.New("Acme", "u1", map[string]resolver.Resolver{"memory": mem})
	return ev, env
}

// simpleSuspendWorkflow is `SUSPEND(req @as x); x * 2 @as y`.
func simpleSuspendWorkflow() *ast.Workflow {
	return &ast.Workflow{
		Module:     "Acme",
		Name:       "Approve",
		EventEntry: "req",
		Body: []ast.Statement{
			&ast.Suspend{
				Inner: &ast.ExprStatement{
					Expr:  &ast.Ref{Path: []string{"req"}},
					Alias: &ast.Alias{Name: "x"},
					Hints: &ast.Hints{},
				},
			},
			&ast.ExprStatement{
				Expr:  &ast.BinaryOp{Op: "*", Left: &ast.Ref{Path: []string{"x"}}, Right: literal(2.0)},
				Alias: &ast.Alias{Name: "y"},
				Hints: &ast.Hints{},
			},
		},
	}
}

func TestBlockingSuspenderResumesNestedWorkflow(t *testing.T) {
	ev, env := newRootEnv()
	g := Compile(simpleSuspendWorkflow())
	w := NewWalker(ev)
	sus := NewBlockingSuspender()

	eventInst := model.NewInstance("Acme", "req", map[string]any{"req": 21.0})

	var result any
	var runErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		result, runErr = w.InvokeBlocking(context.Background(), env, g, eventInst, sus)
	}()

	deadline := time.Now().Add(2 * time.Second)
	var suspensionID string
	for time.Now().Before(deadline) {
		sus.mu.Lock()
		for id := range sus.pending {
			suspensionID = id
		}
		sus.mu.Unlock()
		if suspensionID != "" {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if suspensionID == "" {
		t.Fatal("expected a pending suspension to appear")
	}
	partial, ok := sus.Pending(suspensionID)
	if !ok || partial != 21.0 {
		t.Fatalf("expected partial result 21.0, got %v (ok=%v)", partial, ok)
	}

	if !sus.Resume(suspensionID, 21.0) {
		t.Fatal("expected Resume to find the pending suspension")
	}
	wg.Wait()

	if runErr != nil {
		t.Fatalf("InvokeBlocking: %v", runErr)
	}
	if result != 42.0 {
		t.Fatalf("expected resumed workflow result 42.0, got %v", result)
	}
}

func TestRunToCheckpointSuspendsAtTopLevelThenResumes(t *testing.T) {
	ev, env := newRootEnv()
	g := Compile(simpleSuspendWorkflow())
	w := NewWalker(ev)

	eventInst := model.NewInstance("Acme", "req", map[string]any{"req": 10.0})

	value, cp, err := w.InvokeToCheckpoint(context.Background(), env, g, eventInst)
	if err != nil {
		t.Fatalf("InvokeToCheckpoint: %v", err)
	}
	if cp == nil {
		t.Fatal("expected a Checkpoint, run completed instead")
	}
	if value != nil {
		t.Fatalf("expected nil value on suspension, got %v", value)
	}
	if cp.ResumeIndex != 1 {
		t.Fatalf("expected ResumeIndex 1, got %d", cp.ResumeIndex)
	}
	if cp.Partial != 10.0 {
		t.Fatalf("expected partial 10.0, got %v", cp.Partial)
	}
	if cp.Bindings["x"] != 10.0 {
		t.Fatalf("expected bindings to capture x=10.0, got %v", cp.Bindings)
	}

	final, next, err := w.ResumeFromCheckpoint(context.Background(), env, g, cp, 10.0)
	if err != nil {
		t.Fatalf("ResumeFromCheckpoint: %v", err)
	}
	if next != nil {
		t.Fatalf("expected the run to finish, got another checkpoint: %+v", next)
	}
	if final != 20.0 {
		t.Fatalf("expected final result 20.0, got %v", final)
	}
}

func TestRunToCheckpointCompletesWithoutSuspendWhenNoSuspendStatement(t *testing.T) {
	ev, env := newRootEnv()
	wf := &ast.Workflow{
		Module:     "Acme",
		Name:       "NoSuspend",
		EventEntry: "n",
		Body: []ast.Statement{
			&ast.ExprStatement{
				Expr:  &ast.BinaryOp{Op: "+", Left: &ast.Ref{Path: []string{"n"}}, Right: literal(1.0)},
				Alias: &ast.Alias{}, Hints: &ast.Hints{},
			},
		},
	}
	g := Compile(wf)
	w := NewWalker(ev)
	eventInst := model.NewInstance("Acme", "n", map[string]any{"n": 4.0})

	value, cp, err := w.InvokeToCheckpoint(context.Background(), env, g, eventInst)
	if err != nil {
		t.Fatalf("InvokeToCheckpoint: %v", err)
	}
	if cp != nil {
		t.Fatalf("expected no checkpoint, got %+v", cp)
	}
	if value != 5.0 {
		t.Fatalf("expected 5.0, got %v", value)
	}
}
