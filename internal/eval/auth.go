package eval

import (
	"context"

	"github.com/nucleus/agentlang/internal/model"
)

// authModule and userEntity name the bootstrapped entity RolesFor/IsAdmin
// consult (spec.md §4.8: "Role and permission data is stored as regular
// entities in the auth core module"). auth/User carries at least `id`,
// `roles` (array of strings) and `admin` (bool) attributes.
const (
	authModule = "auth"
	userEntity = "User"
)

// RolesFor implements rbac.RoleLookup. It is the evaluator's own kernel
// lookup against auth/User, so it never recurses back into the RBAC gate
// it backs.
func (e *Evaluator) RolesFor(ctx context.Context, userID string) ([]string, error) {
	user, err := e.lookupAuthUser(ctx, userID)
	if err != nil || user == nil {
		return nil, err
	}
	roles, _ := user.Attributes.Get("roles")
	return toStringSlice(roles), nil
}

// IsAdmin implements rbac.RoleLookup.
func (e *Evaluator) IsAdmin(ctx context.Context, userID string) (bool, error) {
	user, err := e.lookupAuthUser(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	admin, _ := user.Attributes.Get("admin")
	b, _ := admin.(bool)
	return b, nil
}

func (e *Evaluator) lookupAuthUser(ctx context.Context, userID string) (*model.Instance, error) {
	if e.AuthEnv == nil || userID == "" {
		return nil, nil
	}
	entity, err := e.Registry.ResolveEntity(userEntity, authModule)
	if err != nil {
		// The auth module isn't wired into this deployment; every user is
		// roleless and non-admin rather than an error.
		return nil, nil
	}
	query := model.NewQueryInstance(authModule, userEntity, nil,
		map[string]any{"id": userID}, map[string]model.QueryOp{"id": model.OpEq})
	rows, err := e.read(ctx, e.AuthEnv.Child(), entity, query)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func toStringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
