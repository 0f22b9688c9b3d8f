package rbac

import (
	"context"
	"testing"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/registry"
)

type fakeRoles struct {
	admins map[string]bool
	roles  map[string][]string
}

func (f *fakeRoles) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return f.admins[userID], nil
}

func (f *fakeRoles) RolesFor(ctx context.Context, userID string) ([]string, error) {
	return f.roles[userID], nil
}

func newEntityWithRules(t *testing.T, rules []ast.RBACRule) *model.Entity {
	t.Helper()
	e := model.NewEntity("Sales", "Order", []model.AttrDef{
		{Name: "ownerId", Type: model.TypeString},
		{Name: "status", Type: model.TypeString},
	})
	registry.SetRBACRules(e, rules)
	return e
}

func TestAdminAlwaysAllowed(t *testing.T) {
	e := newEntityWithRules(t, nil)
	roles := &fakeRoles{admins: map[string]bool{"root": true}}
	gate := NewGate(roles, registry.New())
	inst := model.NewInstance("Sales", "Order", map[string]any{"ownerId": "u2"})
	if err := gate.Check(context.Background(), e, ast.OpDelete, "root", inst); err != nil {
		t.Fatalf("admin should always be allowed, got %v", err)
	}
}

func TestNoMatchingRuleIsUnauthorised(t *testing.T) {
	e := newEntityWithRules(t, []ast.RBACRule{
		{Roles: []string{"manager"}, Allow: []ast.Op{ast.OpRead}},
	})
	roles := &fakeRoles{roles: map[string][]string{"u1": {"clerk"}}}
	gate := NewGate(roles, registry.New())
	inst := model.NewInstance("Sales", "Order", map[string]any{"ownerId": "u1"})
	err := gate.Check(context.Background(), e, ast.OpRead, "u1", inst)
	if !agerrors.Is(err, agerrors.Unauthorised) {
		t.Fatalf("expected Unauthorised, got %v", err)
	}
}

func TestUniversalRoleGrantsUnconditionalAllow(t *testing.T) {
	e := newEntityWithRules(t, []ast.RBACRule{
		{Roles: []string{"*"}, Allow: []ast.Op{ast.OpRead}},
	})
	roles := &fakeRoles{roles: map[string][]string{"u1": {}}}
	gate := NewGate(roles, registry.New())
	inst := model.NewInstance("Sales", "Order", map[string]any{"ownerId": "u9"})
	if err := gate.Check(context.Background(), e, ast.OpRead, "u1", inst); err != nil {
		t.Fatalf("expected universal-role rule to allow read, got %v", err)
	}
}

func TestWherePredicateGatesWrite(t *testing.T) {
	e := newEntityWithRules(t, []ast.RBACRule{
		{Roles: []string{"*"}, Allow: []ast.Op{ast.OpUpdate}, Where: `this.ownerId == auth.user`},
	})
	roles := &fakeRoles{roles: map[string][]string{"u1": {}}}
	gate := NewGate(roles, registry.New())

	owned := model.NewInstance("Sales", "Order", map[string]any{"ownerId": "u1"})
	if err := gate.Check(context.Background(), e, ast.OpUpdate, "u1", owned); err != nil {
		t.Fatalf("owner should be allowed to update, got %v", err)
	}

	notOwned := model.NewInstance("Sales", "Order", map[string]any{"ownerId": "u2"})
	err := gate.Check(context.Background(), e, ast.OpUpdate, "u1", notOwned)
	if !agerrors.Is(err, agerrors.Unauthorised) {
		t.Fatalf("expected Unauthorised for non-owner write, got %v", err)
	}
}

func TestFilterReadsDropsRowsFailingWhere(t *testing.T) {
	e := newEntityWithRules(t, []ast.RBACRule{
		{Roles: []string{"*"}, Allow: []ast.Op{ast.OpRead}, Where: `this.ownerId == auth.user`},
	})
	roles := &fakeRoles{roles: map[string][]string{"u1": {}}}
	gate := NewGate(roles, registry.New())

	candidates := []*model.Instance{
		model.NewInstance("Sales", "Order", map[string]any{"ownerId": "u1"}),
		model.NewInstance("Sales", "Order", map[string]any{"ownerId": "u2"}),
	}
	filtered, err := gate.FilterReads(context.Background(), e, "u1", candidates)
	if err != nil {
		t.Fatalf("FilterReads failed: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("expected exactly 1 row to survive filtering, got %d", len(filtered))
	}
}

func TestAdminRoleShortCircuits(t *testing.T) {
	e := newEntityWithRules(t, nil)
	roles := &fakeRoles{roles: map[string][]string{"u1": {"admin"}}}
	gate := NewGate(roles, registry.New())
	inst := model.NewInstance("Sales", "Order", map[string]any{"ownerId": "u2"})
	if err := gate.Check(context.Background(), e, ast.OpDelete, "u1", inst); err != nil {
		t.Fatalf("role 'admin' should short-circuit allow, got %v", err)
	}
}
