package eval

import (
	"context"
	"fmt"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/txn"
)

// instancePath builds the __path__ an instance of entity with the given id
// should carry: a contains-child composes its parent's path via Path.Join
// (spec.md §4.4.1), while a root instance (no contains-parent) is rooted
// at its own entity-name/id so it still has something for a descendant's
// path to carry as a literal prefix.
func instancePath(env *txn.Environment, entity *model.Entity, id any) model.Path {
	if env.ParentPath != "" {
		return env.ParentPath.Join(env.ParentRelName(), entity.Name, id)
	}
	return model.Path(fmt.Sprintf("%s/%v", entity.Name, id))
}

// evalCRUD runs one CRUD map pattern (spec.md §4.4 rule 2): classifies it
// as create/read/update, runs before/after triggers, enforces RBAC,
// recomputes @expr attributes, issues the resolver call, and recurses
// into nested relationship entries.
func (e *Evaluator) evalCRUD(ctx context.Context, env *txn.Environment, p *ast.CRUDPattern) (any, error) {
	module := p.Module
	if module == "" {
		module = env.ActiveModule
	}
	entity, err := e.Registry.ResolveEntity(p.Entry, module)
	if err != nil {
		return nil, err
	}

	inst, err := e.buildInstance(ctx, env, entity.Module, entity.Name, p)
	if err != nil {
		return nil, err
	}

	var result any
	switch {
	case p.IsCreate():
		result, err = e.create(ctx, env, entity, inst, p)
	case p.IsUpdate():
		result, err = e.update(ctx, env, entity, inst)
	default:
		result, err = e.read(ctx, env, entity, inst)
	}
	if err != nil {
		return nil, err
	}

	if err := e.evalRelationships(ctx, env, entity, p, result); err != nil {
		return nil, err
	}
	return result, nil
}

// buildInstance evaluates a CRUD pattern's attribute entries into a
// model.Instance, applying @from materialization first (spec.md §4.4
// rule 2, §9's "@from interacts with @expr" open question: the map
// value is treated as a user literal).
func (e *Evaluator) buildInstance(ctx context.Context, env *txn.Environment, module, entry string, p *ast.CRUDPattern) (*model.Instance, error) {
	setAttrs := map[string]any{}
	queryAttrs := map[string]any{}
	ops := map[string]model.QueryOp{}

	if p.Hints != nil && p.Hints.From != nil {
		v, err := e.EvalExpr(ctx, env, p.Hints.From)
		if err != nil {
			return nil, err
		}
		if m, ok := v.(map[string]any); ok {
			for k, val := range m {
				setAttrs[k] = val
			}
		}
	}

	for _, a := range p.Attrs {
		v, err := e.EvalExpr(ctx, env, a.Value)
		if err != nil {
			return nil, err
		}
		if a.Query {
			queryAttrs[a.Name] = v
			op := a.Op
			if op == "" {
				op = model.OpEq
			}
			ops[a.Name] = op
		} else {
			setAttrs[a.Name] = v
		}
	}

	inst := model.NewQueryInstance(module, entry, setAttrs, queryAttrs, ops)
	inst.QueryAll = p.QueryAll
	inst.AuthContext = env.ActiveUser
	return inst, nil
}

func (e *Evaluator) create(ctx context.Context, env *txn.Environment, entity *model.Entity, inst *model.Instance, p *ast.CRUDPattern) (*model.Instance, error) {
	if !env.Kernel {
		if err := e.RBAC.Check(ctx, entity, ast.OpCreate, env.ActiveUser, inst); err != nil {
			return nil, err
		}
	}
	if err := e.Triggers.RunBefore(ctx, env, entity, ast.OpCreate, inst); err != nil {
		return nil, err
	}

	// Every instance carries a __path__, rooted at itself when it has no
	// contains-parent (spec.md §4.4.1): a root instance's path is its own
	// entity-name/id, so a later Contains child still composes a full
	// ancestor-qualified path via Path.Join, and a cascade delete still has
	// something to HasPrefix-match against even for a top-level parent.
	// A caller-supplied id lets the path be derived up front; entities
	// relying on a resolver-generated id get it finalized below.
	if idAttr, ok := entity.IDAttr(); ok {
		if idVal, has := inst.Attributes.Get(idAttr.Name); has {
			inst.Attributes.Set(model.SysPath, instancePath(env, entity, idVal))
		}
	}

	if env.Between != nil && env.Between.Relationship.LinkOwnsRef() {
		leftID, _ := env.Between.Left.Attributes.Get(model.SysID)
		inst.Attributes.Set(env.Between.Relationship.RefColumn(), leftID)
	}

	if err := recomputeExprAttrs(ctx, e, env, entity, inst.Attributes); err != nil {
		return nil, err
	}

	r, txnID, err := e.resolverFor(ctx, env, entity.FQName())
	if err != nil {
		return nil, err
	}
	auth := authInfo(env, false, false)

	var created *model.Instance
	if p.Hints != nil && p.Hints.Upsert {
		created, err = r.UpsertInstance(ctx, txnID, auth, inst)
	} else {
		created, err = r.CreateInstance(ctx, txnID, auth, inst)
	}
	if err != nil {
		return nil, err
	}

	if idAttr, ok := entity.IDAttr(); ok {
		if _, has := created.Attributes.Get(model.SysPath); !has {
			if idVal, hasID := created.Attributes.Get(idAttr.Name); hasID {
				created.Attributes.Set(model.SysPath, instancePath(env, entity, idVal))
			}
		}
	}

	if env.Between != nil && !env.Between.Relationship.LinkOwnsRef() {
		if _, err := r.ConnectInstances(ctx, txnID, auth, env.Between.Left, created, env.Between.Relationship, false); err != nil {
			return nil, err
		}
	}

	if err := e.Triggers.RunAfter(ctx, env, entity, ast.OpCreate, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (e *Evaluator) read(ctx context.Context, env *txn.Environment, entity *model.Entity, inst *model.Instance) ([]*model.Instance, error) {
	r, txnID, err := e.resolverFor(ctx, env, entity.FQName())
	if err != nil {
		return nil, err
	}
	auth := authInfo(env, false, false)

	var rows []*model.Instance
	if env.ParentPath != "" {
		rows, err = r.QueryChildInstances(ctx, txnID, auth, env.ParentPath, inst)
	} else if env.Between != nil {
		rows, err = r.QueryConnectedInstances(ctx, txnID, auth, env.Between.Relationship, env.Between.Left, inst)
	} else {
		rows, err = r.QueryInstances(ctx, txnID, auth, inst, inst.QueryAll)
	}
	if err != nil {
		return nil, err
	}
	if env.Kernel {
		return rows, nil
	}
	return e.RBAC.FilterReads(ctx, entity, env.ActiveUser, rows)
}

func (e *Evaluator) update(ctx context.Context, env *txn.Environment, entity *model.Entity, inst *model.Instance) ([]*model.Instance, error) {
	r, txnID, err := e.resolverFor(ctx, env, entity.FQName())
	if err != nil {
		return nil, err
	}
	auth := authInfo(env, true, false)

	if !env.Kernel {
		candidates, err := r.QueryInstances(ctx, txnID, auth, &model.Instance{
			Module: inst.Module, Entry: inst.Entry,
			QueryAttributes: inst.QueryAttributes, QueryOps: inst.QueryOps,
		}, false)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			if err := e.RBAC.Check(ctx, entity, ast.OpUpdate, env.ActiveUser, c); err != nil {
				return nil, err
			}
		}
	}

	if err := e.Triggers.RunBefore(ctx, env, entity, ast.OpUpdate, inst); err != nil {
		return nil, err
	}
	if err := recomputeExprAttrs(ctx, e, env, entity, inst.Attributes); err != nil {
		return nil, err
	}

	updated, err := r.UpdateInstance(ctx, txnID, auth, inst, inst.Attributes)
	if err != nil {
		return nil, err
	}
	var out []*model.Instance
	if updated != nil {
		out = []*model.Instance{updated}
	}
	if err := e.Triggers.RunAfter(ctx, env, entity, ast.OpUpdate, inst); err != nil {
		return nil, err
	}
	return out, nil
}

// evalDelete runs a DeletePattern (spec.md §4.4 rule 5): before-delete
// triggers, the delete/purge call, a cascade down the contains subtree
// rooted at each deleted row's path (cascadeDeleteDescendants), then
// after-delete triggers.
func (e *Evaluator) evalDelete(ctx context.Context, env *txn.Environment, d *ast.DeletePattern) ([]*model.Instance, error) {
	module := d.Inner.Module
	if module == "" {
		module = env.ActiveModule
	}
	entity, err := e.Registry.ResolveEntity(d.Inner.Entry, module)
	if err != nil {
		return nil, err
	}
	inst, err := e.buildInstance(ctx, env, entity.Module, entity.Name, d.Inner)
	if err != nil {
		return nil, err
	}

	if !env.Kernel {
		r, txnID, err := e.resolverFor(ctx, env, entity.FQName())
		if err != nil {
			return nil, err
		}
		candidates, err := r.QueryInstances(ctx, txnID, authInfo(env, false, true), inst, inst.QueryAll)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			if err := e.RBAC.Check(ctx, entity, ast.OpDelete, env.ActiveUser, c); err != nil {
				return nil, err
			}
		}
	}

	if err := e.Triggers.RunBefore(ctx, env, entity, ast.OpDelete, inst); err != nil {
		return nil, err
	}

	r, txnID, err := e.resolverFor(ctx, env, entity.FQName())
	if err != nil {
		return nil, err
	}
	deleted, err := r.DeleteInstance(ctx, txnID, authInfo(env, false, true), inst, d.Purge)
	if err != nil {
		return nil, err
	}

	for _, parent := range deleted {
		parentPath, ok := parent.Path()
		if !ok {
			continue
		}
		if err := e.cascadeDeleteDescendants(ctx, env, entity, parentPath, d.Purge); err != nil {
			return nil, err
		}
	}

	if err := e.Triggers.RunAfter(ctx, env, entity, ast.OpDelete, inst); err != nil {
		return nil, err
	}
	return deleted, nil
}

// cascadeDeleteDescendants deletes every instance still rooted under
// parentPath, across every entity type the containment graph reaches from
// entity (spec.md §3: "deleting the parent cascades"; §4.4 rule 5). It
// walks the Contains graph entity-type by entity-type rather than relying
// on a single path-prefix delete, since a deep contains subtree can mix
// several distinct entity types, each stored (and possibly resolved)
// separately.
func (e *Evaluator) cascadeDeleteDescendants(ctx context.Context, env *txn.Environment, entity *model.Entity, parentPath model.Path, purge bool) error {
	mod, ok := e.Registry.Module(entity.Module)
	if !ok {
		return nil
	}
	for _, edge := range mod.Graph().ContainsChildren(entity.Name) {
		child, ok := mod.Entity(edge.Relationship.To)
		if !ok {
			continue
		}
		r, txnID, err := e.resolverFor(ctx, env, child.FQName())
		if err != nil {
			return err
		}
		auth := authInfo(env, false, true)
		all := model.NewQueryInstance(child.Module, child.Name, nil, nil, nil)
		rows, err := r.QueryChildInstances(ctx, txnID, auth, parentPath, all)
		if err != nil {
			return err
		}

		idAttr, hasID := child.IDAttr()
		for _, row := range rows {
			if !hasID {
				continue
			}
			id, ok := row.ID(idAttr.Name)
			if !ok {
				continue
			}
			del := model.NewQueryInstance(child.Module, child.Name, nil,
				map[string]any{idAttr.Name: id}, map[string]model.QueryOp{idAttr.Name: model.OpEq})
			if _, err := r.DeleteInstance(ctx, txnID, auth, del, purge); err != nil {
				return err
			}
		}

		// descendant path prefixes survive regardless of which entity type
		// owns them, so recurse with the same parentPath.
		if err := e.cascadeDeleteDescendants(ctx, env, child, parentPath, purge); err != nil {
			return err
		}
	}
	return nil
}

// evalRelationships recurses into a CRUD pattern's nested relationship
// entries (spec.md §4.4 rule 3), attaching results to every parent
// instance result produced.
func (e *Evaluator) evalRelationships(ctx context.Context, env *txn.Environment, entity *model.Entity, p *ast.CRUDPattern, result any) error {
	if len(p.Relationships) == 0 {
		return nil
	}
	parents := asInstanceSlice(result)
	for _, parent := range parents {
		for _, rentry := range p.Relationships {
			relationship, found := e.lookupRelationship(entity.Module, rentry.RelName)
			if !found {
				return agerrors.New(agerrors.ValidationError, "unknown relationship: "+rentry.RelName)
			}
			for _, child := range rentry.Children {
				childEnv := e.childEnvFor(env, relationship, parent, rentry.RelName)
				childResult, err := e.evalCRUD(ctx, childEnv, child)
				if err != nil {
					return err
				}
				for _, ci := range asInstanceSlice(childResult) {
					parent.AttachRelated(rentry.RelName, ci)
				}
			}
		}
	}
	return nil
}

func (e *Evaluator) lookupRelationship(module, name string) (*model.Relationship, bool) {
	m, ok := e.Registry.Module(module)
	if !ok {
		return nil, false
	}
	return m.Relationship(name)
}

func (e *Evaluator) childEnvFor(env *txn.Environment, rel *model.Relationship, parent *model.Instance, relName string) *txn.Environment {
	if rel.Kind == model.Contains {
		parentPath, _ := parent.Path()
		child := env.WithParentPath(parentPath)
		child.SetBinding("__parentRel", relName)
		return child
	}
	child := env.WithBetween(rel, parent)
	child.SetBinding("__parentRel", relName)
	return child
}

func asInstanceSlice(v any) []*model.Instance {
	switch t := v.(type) {
	case *model.Instance:
		return []*model.Instance{t}
	case []*model.Instance:
		return t
	default:
		return nil
	}
}
