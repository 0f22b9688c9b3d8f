package execgraph

import (
	"context"
	"testing"

	"github.com/nucleus/agentlang/internal/agerrors"
)

func TestMemoryStorePutTakeRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	cp := &Checkpoint{SuspensionID: "s1", ResumeIndex: 2, Bindings: map[string]any{"x": 1.0}}

	if err := s.Put(ctx, cp); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Take(ctx, "s1")
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if got.ResumeIndex != 2 || got.Bindings["x"] != 1.0 {
		t.Fatalf("unexpected checkpoint: %+v", got)
	}

	if _, err := s.Take(ctx, "s1"); agerrors.KindOf(err) != agerrors.NotFound {
		t.Fatalf("expected NotFound on a second Take, got %v", err)
	}
}
