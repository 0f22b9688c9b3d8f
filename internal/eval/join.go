package eval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/query"
	"github.com/nucleus/agentlang/internal/txn"
)

// joinRow is one row of the in-process join planner's accumulator: entity
// simple name -> that entity's attribute map for this row. A left/right/
// full join may leave an entity's slot nil when no matching row exists.
type joinRow map[string]map[string]any

// evalJoin runs a join/aggregation pattern (spec.md §4.4 rule 4) entirely
// in-process rather than delegating to a resolver's queryByJoin, mirroring
// how internal/resolver.Memory defers this planning to the evaluator
// (see internal/resolver/memory.go's QueryByJoin).
func (e *Evaluator) evalJoin(ctx context.Context, env *txn.Environment, p *ast.JoinPattern) ([]map[string]any, error) {
	srcEntity, err := e.Registry.ResolveEntity(p.Entry, firstNonEmpty(p.Module, env.ActiveModule))
	if err != nil {
		return nil, err
	}
	srcAttrs, srcOps := map[string]any{}, map[string]model.QueryOp{}
	for _, a := range p.Query {
		v, err := e.EvalExpr(ctx, env, a.Value)
		if err != nil {
			return nil, err
		}
		op := a.Op
		if op == "" {
			op = model.OpEq
		}
		srcAttrs[a.Name], srcOps[a.Name] = v, op
	}
	srcQuery := model.NewQueryInstance(srcEntity.Module, srcEntity.Name, nil, srcAttrs, srcOps)
	srcRows, err := e.read(ctx, env, srcEntity, srcQuery)
	if err != nil {
		return nil, err
	}

	rows := make([]joinRow, 0, len(srcRows))
	for _, r := range srcRows {
		rows = append(rows, joinRow{srcEntity.Name: r.Attributes.Map()})
	}

	for _, jc := range p.Joins {
		rows, err = e.applyJoinClause(ctx, env, rows, jc)
		if err != nil {
			return nil, err
		}
	}

	filtered := rows
	if len(p.Where) > 0 {
		filtered = nil
		for _, row := range rows {
			ok, err := e.matchesWhere(ctx, env, row, p.Where)
			if err != nil {
				return nil, err
			}
			if ok {
				filtered = append(filtered, row)
			}
		}
	}

	projected, err := project(filtered, p.Into, p.GroupBy)
	if err != nil {
		return nil, err
	}
	projected = orderBy(projected, p.OrderBy)
	if p.Distinct {
		projected = distinct(projected)
	}
	return projected, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// applyJoinClause joins the accumulated rows against jc.Module/jc.Entry on
// the single equality condition jc.LocalAttr == jc.RemoteAttr (spec.md
// §4.4 rule 4: "Each join clause takes exactly one equality condition").
func (e *Evaluator) applyJoinClause(ctx context.Context, env *txn.Environment, rows []joinRow, jc ast.JoinClause) ([]joinRow, error) {
	other, err := e.Registry.ResolveEntity(jc.Entry, firstNonEmpty(jc.Module, env.ActiveModule))
	if err != nil {
		return nil, err
	}
	otherRows, err := e.read(ctx, env, other, model.NewQueryInstance(other.Module, other.Name, nil, nil, nil))
	if err != nil {
		return nil, err
	}

	matched := make(map[int]bool, len(otherRows))
	var out []joinRow
	for _, row := range rows {
		localVal := resolveJoinRef(row, jc.LocalAttr)
		anyMatch := false
		for oi, orow := range otherRows {
			remoteVal, _ := orow.Attributes.Get(jc.RemoteAttr)
			if localVal == nil || remoteVal == nil || localVal != remoteVal {
				continue
			}
			anyMatch = true
			matched[oi] = true
			combined := cloneJoinRow(row)
			combined[other.Name] = orow.Attributes.Map()
			out = append(out, combined)
		}
		if !anyMatch && (jc.Kind == ast.LeftJoin || jc.Kind == ast.FullJoin) {
			combined := cloneJoinRow(row)
			combined[other.Name] = nil
			out = append(out, combined)
		}
	}
	if jc.Kind == ast.RightJoin || jc.Kind == ast.FullJoin {
		for oi, orow := range otherRows {
			if matched[oi] {
				continue
			}
			out = append(out, joinRow{other.Name: orow.Attributes.Map()})
		}
	}
	return out, nil
}

func cloneJoinRow(row joinRow) joinRow {
	out := make(joinRow, len(row)+1)
	for k, v := range row {
		out[k] = v
	}
	return out
}

// resolveJoinRef resolves a dotted "Entity.attr" or bare "attr" reference
// against a joinRow; a bare ref is matched against every entity slot.
func resolveJoinRef(row joinRow, ref string) any {
	if dot := strings.Index(ref, "."); dot >= 0 {
		entity, attr := ref[:dot], ref[dot+1:]
		m := row[entity]
		if m == nil {
			return nil
		}
		return m[attr]
	}
	for _, m := range row {
		if m == nil {
			continue
		}
		if v, ok := m[ref]; ok {
			return v
		}
	}
	return nil
}

func (e *Evaluator) matchesWhere(ctx context.Context, env *txn.Environment, row joinRow, where []ast.WhereTerm) (bool, error) {
	for _, w := range where {
		want, err := e.EvalExpr(ctx, env, w.Value)
		if err != nil {
			return false, err
		}
		got := resolveJoinRef(row, w.Ref)
		if !query.Match(model.OpEq, got, want) {
			return false, nil
		}
	}
	return true, nil
}

// project applies @into: with no groupBy and no aggregate term, each row
// is projected directly; otherwise rows are bucketed by the groupBy key
// (one bucket for all rows when groupBy is empty) and each @into term is
// either a plain ref (first row in the bucket's value) or an aggregate
// function over the bucket.
func project(rows []joinRow, into []ast.IntoTerm, groupBy []string) ([]map[string]any, error) {
	if len(groupBy) == 0 && !anyAggregate(into) {
		out := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			out = append(out, projectRow(row, into))
		}
		return out, nil
	}

	buckets := map[string][]joinRow{}
	var order []string
	for _, row := range rows {
		key := groupKey(row, groupBy)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], row)
	}

	out := make([]map[string]any, 0, len(buckets))
	for _, key := range order {
		bucket := buckets[key]
		projected := map[string]any{}
		for _, term := range into {
			if term.Agg == "" {
				projected[term.Alias] = resolveJoinRef(bucket[0], term.Ref)
				continue
			}
			projected[term.Alias] = aggregate(bucket, term.Ref, term.Agg)
		}
		out = append(out, projected)
	}
	return out, nil
}

func anyAggregate(into []ast.IntoTerm) bool {
	for _, t := range into {
		if t.Agg != "" {
			return true
		}
	}
	return false
}

func projectRow(row joinRow, into []ast.IntoTerm) map[string]any {
	out := map[string]any{}
	for _, term := range into {
		out[term.Alias] = resolveJoinRef(row, term.Ref)
	}
	return out
}

func groupKey(row joinRow, groupBy []string) string {
	var b strings.Builder
	for _, g := range groupBy {
		b.WriteString(toKeyString(resolveJoinRef(row, g)))
		b.WriteByte('\x1f')
	}
	return b.String()
}

func aggregate(bucket []joinRow, ref string, fn ast.AggFunc) any {
	switch fn {
	case ast.AggCount:
		return len(bucket)
	}
	var sum float64
	var count int
	var first any
	var min, max float64
	for i, row := range bucket {
		v := resolveJoinRef(row, ref)
		f, ok := toFloat(v)
		if !ok {
			continue
		}
		if i == 0 || count == 0 {
			first, min, max = v, f, f
		}
		sum += f
		count++
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	switch fn {
	case ast.AggSum:
		return sum
	case ast.AggAvg:
		if count == 0 {
			return 0.0
		}
		return sum / float64(count)
	case ast.AggMin:
		return min
	case ast.AggMax:
		return max
	default:
		return first
	}
}

func orderBy(rows []map[string]any, terms []ast.OrderTerm) []map[string]any {
	if len(terms) == 0 {
		return rows
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, t := range terms {
			vi, vj := rows[i][t.Ref], rows[j][t.Ref]
			cmp := compareAny(vi, vj)
			if cmp == 0 {
				continue
			}
			if t.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		// Tie-break by id ascending (spec.md §4.4.2).
		return compareAny(rows[i]["id"], rows[j]["id"]) < 0
	})
	return rows
}

func compareAny(a, b any) int {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	as, bs := toKeyString(a), toKeyString(b)
	return strings.Compare(as, bs)
}

func toKeyString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func distinct(rows []map[string]any) []map[string]any {
	seen := map[string]bool{}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		key := rowKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

func rowKey(row map[string]any) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(toKeyString(row[k]))
		b.WriteByte('\x1f')
	}
	return b.String()
}

// evalFullTextSearch runs a full-text search pattern (spec.md §4.4 rule
// 10), routing directly to the resolver's FullTextSearch.
func (e *Evaluator) evalFullTextSearch(ctx context.Context, env *txn.Environment, f *ast.FullTextSearch) ([]*model.Instance, error) {
	module := f.Module
	if module == "" {
		module = env.ActiveModule
	}
	entity, err := e.Registry.ResolveEntity(f.Entry, module)
	if err != nil {
		return nil, err
	}
	r, txnID, err := e.resolverFor(ctx, env, entity.FQName())
	if err != nil {
		return nil, err
	}
	rows, err := r.FullTextSearch(ctx, txnID, authInfo(env, false, false), entity.Module, entity.Name, f.Query, f.Options)
	if err != nil {
		return nil, err
	}
	if env.Kernel {
		return rows, nil
	}
	return e.RBAC.FilterReads(ctx, entity, env.ActiveUser, rows)
}
