package resolver

import (
	"context"
	"testing"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/model"
)

func TestMemoryCreateAndQuery(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	inst := model.NewInstance("Sales", "User", map[string]any{model.SysID: "u1", "name": "Joe"})
	if _, err := m.CreateInstance(ctx, "", AuthInfo{}, inst); err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	q := model.NewQueryInstance("Sales", "User", nil, map[string]any{"name": "Joe"}, map[string]model.QueryOp{"name": model.OpEq})
	results, err := m.QueryInstances(ctx, "", AuthInfo{}, q, false)
	if err != nil || len(results) != 1 {
		t.Fatalf("QueryInstances = %v, %v", results, err)
	}
}

func TestMemoryCreateCollisionIsUniqueViolation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	inst := model.NewInstance("Sales", "User", map[string]any{model.SysID: "u1"})
	if _, err := m.CreateInstance(ctx, "", AuthInfo{}, inst); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := m.CreateInstance(ctx, "", AuthInfo{}, inst)
	if !agerrors.Is(err, agerrors.UniqueViolation) {
		t.Fatalf("expected UniqueViolation, got %v", err)
	}
}

func TestMemoryUpsertIdempotent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	inst := model.NewInstance("Sales", "User", map[string]any{model.SysID: "u1", "name": "Joe"})
	if _, err := m.UpsertInstance(ctx, "", AuthInfo{}, inst); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if _, err := m.UpsertInstance(ctx, "", AuthInfo{}, inst); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	q := model.NewQueryInstance("Sales", "User", nil, map[string]any{model.SysID: "u1"}, map[string]model.QueryOp{model.SysID: model.OpEq})
	results, _ := m.QueryInstances(ctx, "", AuthInfo{}, q, false)
	if len(results) != 1 {
		t.Fatalf("expected exactly one row after repeated upsert, got %d", len(results))
	}
}

func TestMemoryUpdateZeroMatchesIsEmptyNotError(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	q := model.NewQueryInstance("Sales", "User", map[string]any{"name": "X"}, map[string]any{model.SysID: "ghost"}, map[string]model.QueryOp{model.SysID: model.OpEq})
	updated, err := m.UpdateInstance(ctx, "", AuthInfo{}, q, model.NewAttrs(map[string]any{"name": "X"}))
	if err != nil {
		t.Fatalf("update with no matches must not error: %v", err)
	}
	if updated != nil {
		t.Fatalf("expected nil result for zero matches, got %+v", updated)
	}
}

func TestMemoryDeleteIsSoftByDefault(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	inst := model.NewInstance("Sales", "User", map[string]any{model.SysID: "u1"})
	m.CreateInstance(ctx, "", AuthInfo{}, inst)
	q := model.NewQueryInstance("Sales", "User", nil, map[string]any{model.SysID: "u1"}, map[string]model.QueryOp{model.SysID: model.OpEq})
	deleted, err := m.DeleteInstance(ctx, "", AuthInfo{}, q, false)
	if err != nil || len(deleted) != 1 {
		t.Fatalf("DeleteInstance = %v, %v", deleted, err)
	}
	results, _ := m.QueryInstances(ctx, "", AuthInfo{}, q, false)
	if len(results) != 0 {
		t.Fatal("soft-deleted row must not be returned by subsequent queries")
	}
}

func TestMemoryChildQueryByPathPrefix(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	parentPath := model.Path("/Sales/User/u1")
	child := model.NewInstance("Sales", "Post", map[string]any{model.SysID: 1, model.SysPath: parentPath.Join("UserPost", "Post", 1)})
	m.CreateInstance(ctx, "", AuthInfo{}, child)
	sibling := model.NewInstance("Sales", "Post", map[string]any{model.SysID: 2, model.SysPath: model.Path("/Sales/User/u2/UserPost/Post/2")})
	m.CreateInstance(ctx, "", AuthInfo{}, sibling)

	q := model.NewQueryInstance("Sales", "Post", nil, nil, nil)
	results, err := m.QueryChildInstances(ctx, "", AuthInfo{}, parentPath, q)
	if err != nil || len(results) != 1 {
		t.Fatalf("QueryChildInstances = %v, %v", results, err)
	}
}
