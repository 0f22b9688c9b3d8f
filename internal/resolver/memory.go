package resolver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/query"
)

// Memory is a process-local, map-backed Resolver. It is the default
// resolver for tests and for entities with no explicit resolver mapping
// when no external store is configured — the in-memory analogue of the
// "default SQL-ish resolver" spec.md §4.3 describes.
type Memory struct {
	mu   sync.Mutex
	rows map[string][]*model.Instance // keyed by "Module/Entry"
	txns map[TxnID]bool
}

// NewMemory returns an empty Memory resolver.
func NewMemory() *Memory {
	return &Memory{rows: map[string][]*model.Instance{}, txns: map[TxnID]bool{}}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) StartTransaction(ctx context.Context) (TxnID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := TxnID(uuid.New().String())
	m.txns[id] = true
	return id, nil
}

func (m *Memory) CommitTransaction(ctx context.Context, txn TxnID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.txns, txn)
	return nil
}

func (m *Memory) RollbackTransaction(ctx context.Context, txn TxnID) error {
	// Memory has no undo log; per-statement mutation is applied
	// immediately, matching the teacher's "best effort" stance toward
	// in-process stores that back tests rather than production storage.
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.txns, txn)
	return nil
}

func key(module, entry string) string { return module + "/" + entry }

func (m *Memory) CreateInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance) (*model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(inst.Module, inst.Entry)
	idVal, _ := inst.Attributes.Get(model.SysID)
	for _, existing := range m.rows[k] {
		if existing.Deleted() {
			continue
		}
		eid, _ := existing.Attributes.Get(model.SysID)
		if eid == idVal {
			return nil, agerrors.NewUniqueViolation(inst.FQName(), []string{model.SysID})
		}
	}
	stored := inst.Clone()
	m.rows[k] = append(m.rows[k], stored)
	return stored.Clone(), nil
}

func (m *Memory) UpsertInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance) (*model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(inst.Module, inst.Entry)
	idVal, _ := inst.Attributes.Get(model.SysID)
	for i, existing := range m.rows[k] {
		eid, _ := existing.Attributes.Get(model.SysID)
		if eid == idVal {
			merged := existing.Clone()
			merged.Attributes.Merge(inst.Attributes)
			m.rows[k][i] = merged
			return merged.Clone(), nil
		}
	}
	stored := inst.Clone()
	m.rows[k] = append(m.rows[k], stored)
	return stored.Clone(), nil
}

func (m *Memory) UpdateInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, newAttrs *model.Attrs) (*model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(inst.Module, inst.Entry)
	var matched []*model.Instance
	for i, existing := range m.rows[k] {
		if existing.Deleted() {
			continue
		}
		if !query.MatchesAll(existing.Attributes, inst.QueryAttributes, inst.QueryOps) {
			continue
		}
		merged := existing.Clone()
		merged.Attributes.Merge(newAttrs)
		m.rows[k][i] = merged
		matched = append(matched, merged.Clone())
	}
	if len(matched) == 0 {
		return nil, nil
	}
	return matched[0], nil
}

func (m *Memory) QueryInstances(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, queryAll bool) ([]*model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(inst.Module, inst.Entry)
	var out []*model.Instance
	for _, existing := range m.rows[k] {
		if existing.Deleted() {
			continue
		}
		if !queryAll && !query.MatchesAll(existing.Attributes, inst.QueryAttributes, inst.QueryOps) {
			continue
		}
		out = append(out, existing.Clone())
	}
	sortByID(out)
	return out, nil
}

func (m *Memory) QueryChildInstances(ctx context.Context, txn TxnID, auth AuthInfo, parentPath model.Path, inst *model.Instance) ([]*model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(inst.Module, inst.Entry)
	var out []*model.Instance
	for _, existing := range m.rows[k] {
		if existing.Deleted() {
			continue
		}
		p, ok := existing.Path()
		if !ok || !p.HasPrefix(parentPath) {
			continue
		}
		if !query.MatchesAll(existing.Attributes, inst.QueryAttributes, inst.QueryOps) {
			continue
		}
		out = append(out, existing.Clone())
	}
	sortByID(out)
	return out, nil
}

func (m *Memory) QueryConnectedInstances(ctx context.Context, txn TxnID, auth AuthInfo, rel *model.Relationship, connected *model.Instance, inst *model.Instance) ([]*model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(inst.Module, inst.Entry)
	connectedID, _ := connected.Attributes.Get(model.SysID)
	refCol := rel.RefColumn()
	var out []*model.Instance
	for _, existing := range m.rows[k] {
		if existing.Deleted() {
			continue
		}
		ref, _ := existing.Attributes.Get(refCol)
		if ref != connectedID {
			continue
		}
		if !query.MatchesAll(existing.Attributes, inst.QueryAttributes, inst.QueryOps) {
			continue
		}
		out = append(out, existing.Clone())
	}
	sortByID(out)
	return out, nil
}

func (m *Memory) QueryByJoin(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, joins []JoinClause, into IntoSpec, distinct bool, where []WhereClause) ([]map[string]any, error) {
	return nil, agerrors.New(agerrors.JoinPlanningError, "Memory resolver does not implement queryByJoin; see internal/eval/join.go for the in-process planner used instead")
}

func (m *Memory) DeleteInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, purge bool) ([]*model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(inst.Module, inst.Entry)
	var deleted []*model.Instance
	kept := m.rows[k][:0]
	for _, existing := range m.rows[k] {
		if existing.Deleted() || !query.MatchesAll(existing.Attributes, inst.QueryAttributes, inst.QueryOps) {
			kept = append(kept, existing)
			continue
		}
		if purge {
			deleted = append(deleted, existing.Clone())
			continue
		}
		existing.Attributes.Set(model.SysDeleted, true)
		deleted = append(deleted, existing.Clone())
		kept = append(kept, existing)
	}
	m.rows[k] = kept
	return deleted, nil
}

func (m *Memory) ConnectInstances(ctx context.Context, txn TxnID, auth AuthInfo, a, b *model.Instance, rel *model.Relationship, orUpdate bool) (*model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	linkEntry := fmt.Sprintf("__link_%s", rel.Name)
	k := key(rel.Module, linkEntry)
	aID, _ := a.Attributes.Get(model.SysID)
	bID, _ := b.Attributes.Get(model.SysID)
	if !orUpdate {
		for _, existing := range m.rows[k] {
			eA, _ := existing.Attributes.Get("a")
			eB, _ := existing.Attributes.Get("b")
			if eA == aID && eB == bID {
				return nil, agerrors.New(agerrors.ConstraintViolation, "link already exists for "+rel.Name)
			}
		}
	}
	link := model.NewInstance(rel.Module, linkEntry, map[string]any{"a": aID, "b": bID})
	m.rows[k] = append(m.rows[k], link)
	return link.Clone(), nil
}

func (m *Memory) FullTextSearch(ctx context.Context, txn TxnID, auth AuthInfo, module, entry, searchText string, opts map[string]any) ([]*model.Instance, error) {
	return nil, agerrors.New(agerrors.SearchUnavailable, "Memory resolver does not implement full-text search")
}

func sortByID(out []*model.Instance) {
	sort.SliceStable(out, func(i, j int) bool {
		return fmt.Sprint(idOf(out[i])) < fmt.Sprint(idOf(out[j]))
	})
}

func idOf(inst *model.Instance) any {
	v, _ := inst.Attributes.Get(model.SysID)
	return v
}

var _ Resolver = (*Memory)(nil)
