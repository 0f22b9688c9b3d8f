package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/resolver"
)

// failingCommitResolver wraps a working Memory resolver but fails every
// commit, used to exercise the partial-commit path deterministically.
type failingCommitResolver struct {
	*resolver.Memory
}

func (f *failingCommitResolver) CommitTransaction(ctx context.Context, txn resolver.TxnID) error {
	return agerrors.New(agerrors.ResolverUnavailable, "boom")
}

func TestChildInheritsActiveModuleAndUser(t *testing.T) {
	root := New("Sales", "u1", map[string]resolver.Resolver{"memory": resolver.NewMemory()})
	child := root.Child()
	if child.ActiveModule != "Sales" || child.ActiveUser != "u1" {
		t.Fatalf("child did not inherit active module/user: %+v", child)
	}
	if child.IsRoot() {
		t.Fatal("child must not report itself as root")
	}
}

func TestResolverStartsTransactionOnceAndSharesAcrossChildren(t *testing.T) {
	mem := resolver.NewMemory()
	root := New("Sales", "u1", map[string]resolver.Resolver{"memory": mem})
	ctx := context.Background()

	_, txn1, err := root.Resolver(ctx, "memory")
	if err != nil {
		t.Fatalf("Resolver failed: %v", err)
	}
	child := root.Child()
	_, txn2, err := child.Resolver(ctx, "memory")
	if err != nil {
		t.Fatalf("Resolver failed on child: %v", err)
	}
	if txn1 != txn2 {
		t.Fatalf("expected the same txn id shared between parent and child, got %v != %v", txn1, txn2)
	}
}

func TestCommitOnlyAllowedOnRoot(t *testing.T) {
	root := New("Sales", "u1", map[string]resolver.Resolver{"memory": resolver.NewMemory()})
	child := root.Child()
	if err := child.Commit(context.Background()); err == nil {
		t.Fatal("expected Commit on a non-root Environment to fail")
	}
}

func TestCommitCommitsEveryUsedResolver(t *testing.T) {
	mem := resolver.NewMemory()
	root := New("Sales", "u1", map[string]resolver.Resolver{"memory": mem})
	ctx := context.Background()
	if _, _, err := root.Resolver(ctx, "memory"); err != nil {
		t.Fatalf("Resolver failed: %v", err)
	}
	if err := root.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
}

func TestCommitPartialFailureReturnsPartialCommitError(t *testing.T) {
	ok := resolver.NewMemory()
	bad := &failingCommitResolver{Memory: resolver.NewMemory()}
	root := New("Sales", "u1", map[string]resolver.Resolver{"a_ok": ok, "b_bad": bad})
	ctx := context.Background()
	if _, _, err := root.Resolver(ctx, "a_ok"); err != nil {
		t.Fatalf("Resolver a_ok failed: %v", err)
	}
	if _, _, err := root.Resolver(ctx, "b_bad"); err != nil {
		t.Fatalf("Resolver b_bad failed: %v", err)
	}

	err := root.Commit(ctx)
	if err == nil {
		t.Fatal("expected Commit to fail once b_bad's commit errors")
	}
	var pce *PartialCommitError
	if !errors.As(err, &pce) {
		t.Fatalf("expected *PartialCommitError, got %T: %v", err, err)
	}
	if len(pce.Committed) != 1 || pce.Committed[0] != "a_ok" {
		t.Fatalf("expected a_ok recorded as already committed, got %v", pce.Committed)
	}
	if pce.Failed != "b_bad" {
		t.Fatalf("expected b_bad recorded as the failing resolver, got %q", pce.Failed)
	}
	if agerrors.KindOf(err) != agerrors.ResolverUnavailable {
		t.Fatalf("expected KindOf to still see ResolverUnavailable through the wrap chain, got %v", agerrors.KindOf(err))
	}
}

func TestCommitFirstResolverFailureIsNotPartial(t *testing.T) {
	bad := &failingCommitResolver{Memory: resolver.NewMemory()}
	root := New("Sales", "u1", map[string]resolver.Resolver{"only": bad})
	ctx := context.Background()
	if _, _, err := root.Resolver(ctx, "only"); err != nil {
		t.Fatalf("Resolver failed: %v", err)
	}

	err := root.Commit(ctx)
	var pce *PartialCommitError
	if errors.As(err, &pce) {
		t.Fatalf("expected a bare error when nothing had committed yet, got *PartialCommitError: %v", pce)
	}
	if agerrors.KindOf(err) != agerrors.ResolverUnavailable {
		t.Fatalf("expected ResolverUnavailable, got %v", agerrors.KindOf(err))
	}
}

func TestWithParentPathDoesNotMutateParent(t *testing.T) {
	root := New("Sales", "u1", map[string]resolver.Resolver{"memory": resolver.NewMemory()})
	child := root.WithParentPath(model.Path("/Sales/User/u1"))
	if root.ParentPath != "" {
		t.Fatalf("expected root ParentPath to remain empty, got %q", root.ParentPath)
	}
	if child.ParentPath != model.Path("/Sales/User/u1") {
		t.Fatalf("expected child ParentPath to be set, got %q", child.ParentPath)
	}
}

func TestWithBetweenCarriesContextToChildOnly(t *testing.T) {
	root := New("Sales", "u1", map[string]resolver.Resolver{"memory": resolver.NewMemory()})
	rel := &model.Relationship{Module: "Sales", Name: "UserPost", Kind: model.Between}
	left := model.NewInstance("Sales", "User", map[string]any{model.SysID: "u1"})
	child := root.WithBetween(rel, left)
	if root.Between != nil {
		t.Fatal("expected root Between to remain nil")
	}
	if child.Between == nil || child.Between.Relationship != rel || child.Between.Left != left {
		t.Fatalf("expected child Between to carry rel and left instance, got %+v", child.Between)
	}
}

func TestResolverUnknownNameIsResolverUnavailable(t *testing.T) {
	root := New("Sales", "u1", map[string]resolver.Resolver{})
	_, _, err := root.Resolver(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for unknown resolver")
	}
	if !agerrors.Is(err, agerrors.ResolverUnavailable) {
		t.Fatalf("expected ResolverUnavailable, got %v", err)
	}
}
