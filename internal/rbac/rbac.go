// Package rbac implements the RBAC gate (spec.md §4.8): every
// resolver-bound operation is checked against the target entity's @rbac
// rules before it runs.
package rbac

import (
	"context"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/expr"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/registry"
)

// RoleLookup resolves a user id to its set of roles, via the auth module's
// entities looked up under the kernel identity (spec.md §4.8: "Lookups
// must use the kernel/admin identity to avoid recursive gating"). The
// evaluator supplies the concrete implementation, backed by the same
// pattern evaluator the rest of the system uses.
type RoleLookup interface {
	RolesFor(ctx context.Context, userID string) ([]string, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Gate evaluates @rbac rules for the active user against a target entity.
type Gate struct {
	Roles    RoleLookup
	Registry *registry.Registry
}

// NewGate returns an RBAC Gate backed by roles.
func NewGate(roles RoleLookup, reg *registry.Registry) *Gate {
	return &Gate{Roles: roles, Registry: reg}
}

// universalRole is the implicit role every user carries (spec.md §4.8
// step 2: "The user always has the implicit role *").
const universalRole = "*"

// adminRole short-circuits to allow (spec.md §4.8 step 3).
const adminRole = "admin"

// Check enforces the gate for a write (create/update/delete) on a single
// candidate instance, returning Unauthorised when no rule allows it
// (spec.md §4.8 step 4, "On writes, the operation fails with
// Unauthorised").
func (g *Gate) Check(ctx context.Context, entity *model.Entity, op ast.Op, userID string, candidate *model.Instance) error {
	allowed, err := g.evaluate(ctx, entity, op, userID, candidate)
	if err != nil {
		return err
	}
	if !allowed {
		return agerrors.NewUnauthorised(string(op), entity.FQName())
	}
	return nil
}

// FilterReads applies the gate to a batch of read results, silently
// dropping rows that fail a matching rule's `where` predicate (spec.md
// §4.8 step 4: "On reads, rows that fail where are filtered out silently
// (empty result)"). It returns Unauthorised only when no rule grants read
// access at all.
func (g *Gate) FilterReads(ctx context.Context, entity *model.Entity, userID string, candidates []*model.Instance) ([]*model.Instance, error) {
	granted, rule, err := g.grantingRule(ctx, entity, ast.OpRead, userID)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, agerrors.NewUnauthorised(string(ast.OpRead), entity.FQName())
	}
	if rule == nil || rule.Where == "" {
		return candidates, nil
	}
	prog, err := expr.Compile(rule.Where)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Instance, 0, len(candidates))
	for _, inst := range candidates {
		ok, err := prog.EvalBool(bindEnv(inst, userID))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (g *Gate) evaluate(ctx context.Context, entity *model.Entity, op ast.Op, userID string, candidate *model.Instance) (bool, error) {
	granted, rule, err := g.grantingRule(ctx, entity, op, userID)
	if err != nil || !granted {
		return false, err
	}
	if rule == nil || rule.Where == "" {
		return true, nil
	}
	prog, err := expr.Compile(rule.Where)
	if err != nil {
		return false, err
	}
	return prog.EvalBool(bindEnv(candidate, userID))
}

// grantingRule finds the first @rbac rule that grants op to userID,
// following spec.md §4.8's five-step algorithm. rule is nil when access is
// granted unconditionally (admin short-circuit), non-nil when a `where`
// predicate still needs to be checked by the caller.
func (g *Gate) grantingRule(ctx context.Context, entity *model.Entity, op ast.Op, userID string) (bool, *ast.RBACRule, error) {
	isAdmin, err := g.Roles.IsAdmin(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	if isAdmin {
		return true, nil, nil
	}
	roles, err := g.Roles.RolesFor(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	roleSet := map[string]bool{universalRole: true}
	for _, r := range roles {
		roleSet[r] = true
		if r == adminRole {
			return true, nil, nil
		}
	}
	for _, rule := range registry.RBACRules(entity) {
		if !rolesIntersect(rule.Roles, roleSet) {
			continue
		}
		if !allowsOp(rule.Allow, op) {
			continue
		}
		return true, &rule, nil
	}
	return false, nil, nil
}

func rolesIntersect(ruleRoles []string, have map[string]bool) bool {
	for _, r := range ruleRoles {
		if r == universalRole || have[r] {
			return true
		}
	}
	return false
}

func allowsOp(allow []ast.Op, op ast.Op) bool {
	for _, a := range allow {
		if a == op {
			return true
		}
	}
	return false
}

func bindEnv(inst *model.Instance, userID string) map[string]any {
	this := map[string]any{}
	if inst != nil {
		this = inst.Attributes.Map()
	}
	return map[string]any{
		"this": this,
		"auth": map[string]any{"user": userID, "userId": userID},
	}
}
