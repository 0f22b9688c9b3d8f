// Package registry implements the Module Registry (spec.md §4.1): the
// in-memory catalog of modules, records, relationships, workflows and
// agents, plus the relationship-graph builder.
package registry

import (
	"fmt"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
)

// metaRBAC/metaBefore/metaAfter/metaConfig are the Meta keys a Record
// carries its RBAC rules, triggers, and "this is the configuration entity"
// tag under.
const (
	metaRBAC   = "rbac"
	metaBefore = "before"
	metaAfter  = "after"
	metaConfig = "config"
)

// Module is `(name, records, entities, relationships, workflows, agents,
// resolvers, standaloneInitStatements)` (spec.md §3).
type Module struct {
	Name string

	records       map[string]*model.Record
	entities      map[string]*model.Entity
	relationships map[string]*model.Relationship
	workflows     map[string]*ast.Workflow
	agents        map[string]*ast.Agent

	// Resolvers maps an unqualified entity name in this module to a
	// resolver name; absent entries use the default resolver.
	Resolvers map[string]string

	StandaloneInit []ast.Statement

	graph *RelationshipGraph
}

// NewModule returns an empty module ready to receive definitions.
func NewModule(name string) *Module {
	return &Module{
		Name:          name,
		records:       map[string]*model.Record{},
		entities:      map[string]*model.Entity{},
		relationships: map[string]*model.Relationship{},
		workflows:     map[string]*ast.Workflow{},
		agents:        map[string]*ast.Agent{},
		Resolvers:     map[string]string{},
	}
}

// AddRecord adds a non-persistent Record. Names are unique within a module.
func (m *Module) AddRecord(r *model.Record) error {
	if err := r.Validate(); err != nil {
		return agerrors.Wrap(agerrors.ValidationError, "invalid record", err)
	}
	if _, exists := m.records[r.Name]; exists {
		return agerrors.New(agerrors.ValidationError, fmt.Sprintf("record %s already declared in module %s", r.Name, m.Name))
	}
	m.records[r.Name] = r
	return nil
}

// AddEntity adds a persistent Entity.
func (m *Module) AddEntity(e *model.Entity) error {
	if err := e.Validate(); err != nil {
		return agerrors.Wrap(agerrors.ValidationError, "invalid entity", err)
	}
	if _, exists := m.entities[e.Name]; exists {
		return agerrors.New(agerrors.ValidationError, fmt.Sprintf("entity %s already declared in module %s", e.Name, m.Name))
	}
	m.entities[e.Name] = e
	m.graph = nil
	return nil
}

// AddEvent adds a Record marked as an event (spec.md §3).
func (m *Module) AddEvent(e *model.Entity) error {
	e.IsEvent = true
	return m.AddRecord(&e.Record)
}

// AddRelationship adds a Contains/Between edge; both endpoints must already
// be registered entities in this module.
func (m *Module) AddRelationship(r *model.Relationship) error {
	if _, ok := m.entities[r.From]; !ok {
		return agerrors.New(agerrors.ValidationError, fmt.Sprintf("relationship %s: unknown entity %q", r.Name, r.From))
	}
	if _, ok := m.entities[r.To]; !ok {
		return agerrors.New(agerrors.ValidationError, fmt.Sprintf("relationship %s: unknown entity %q", r.Name, r.To))
	}
	if _, exists := m.relationships[r.Name]; exists {
		return agerrors.New(agerrors.ValidationError, fmt.Sprintf("relationship %s already declared in module %s", r.Name, m.Name))
	}
	m.relationships[r.Name] = r
	m.graph = nil
	return nil
}

// AddWorkflow registers a workflow definition.
func (m *Module) AddWorkflow(w *ast.Workflow) error {
	if _, exists := m.workflows[w.Name]; exists {
		return agerrors.New(agerrors.ValidationError, fmt.Sprintf("workflow %s already declared in module %s", w.Name, m.Name))
	}
	m.workflows[w.Name] = w
	return nil
}

// AddAgent registers an agent definition.
func (m *Module) AddAgent(a *ast.Agent) error {
	if _, exists := m.agents[a.Name]; exists {
		return agerrors.New(agerrors.ValidationError, fmt.Sprintf("agent %s already declared in module %s", a.Name, m.Name))
	}
	m.agents[a.Name] = a
	return nil
}

// Entity looks up an entity by its unqualified name.
func (m *Module) Entity(name string) (*model.Entity, bool) {
	e, ok := m.entities[name]
	return e, ok
}

// Record looks up a record (entity or plain) by unqualified name.
func (m *Module) Record(name string) (*model.Record, bool) {
	if e, ok := m.entities[name]; ok {
		return &e.Record, true
	}
	r, ok := m.records[name]
	return r, ok
}

// Relationship looks up a relationship by unqualified name.
func (m *Module) Relationship(name string) (*model.Relationship, bool) {
	r, ok := m.relationships[name]
	return r, ok
}

// Workflow looks up a workflow by unqualified name.
func (m *Module) Workflow(name string) (*ast.Workflow, bool) {
	w, ok := m.workflows[name]
	return w, ok
}

// Agent looks up an agent by unqualified name.
func (m *Module) Agent(name string) (*ast.Agent, bool) {
	a, ok := m.agents[name]
	return a, ok
}

// Entities enumerates all entities in declaration-map order (unordered;
// callers that need stable order should sort by name).
func (m *Module) Entities() []*model.Entity {
	out := make([]*model.Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}
	return out
}

// RelationshipsTouching returns every relationship with entityName as
// either From or To.
func (m *Module) RelationshipsTouching(entityName string) []*model.Relationship {
	var out []*model.Relationship
	for _, r := range m.relationships {
		if r.From == entityName || r.To == entityName {
			out = append(out, r)
		}
	}
	return out
}

// ConfigEntity returns the entity tagged as the module's configuration
// entity via Meta["config"] = true, if any.
func (m *Module) ConfigEntity() (*model.Entity, bool) {
	for _, e := range m.entities {
		if v, ok := e.Meta[metaConfig]; ok {
			if b, _ := v.(bool); b {
				return e, true
			}
		}
	}
	return nil, false
}

// RBACRules returns the entity's @rbac rule list (spec.md §4.8), empty if
// none declared.
func RBACRules(e *model.Entity) []ast.RBACRule {
	rules, _ := e.Meta[metaRBAC].([]ast.RBACRule)
	return rules
}

// SetRBACRules attaches the entity's @rbac rule list.
func SetRBACRules(e *model.Entity, rules []ast.RBACRule) {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[metaRBAC] = rules
}

// Triggers returns the entity's @before or @after trigger list for op.
func Triggers(e *model.Entity, when ast.TriggerWhen, op ast.Op) []ast.Trigger {
	key := metaAfter
	if when == ast.Before {
		key = metaBefore
	}
	all, _ := e.Meta[key].([]ast.Trigger)
	var out []ast.Trigger
	for _, t := range all {
		if t.Op == op {
			out = append(out, t)
		}
	}
	return out
}

// AddTrigger attaches a @before/@after trigger to the entity's meta.
func AddTrigger(e *model.Entity, t ast.Trigger) {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	key := metaAfter
	if t.When == ast.Before {
		key = metaBefore
	}
	list, _ := e.Meta[key].([]ast.Trigger)
	e.Meta[key] = append(list, t)
}

// Graph builds (once, caching until the next mutation) and returns the
// module's relationship graph (spec.md §3 "Relationship Graph").
func (m *Module) Graph() *RelationshipGraph {
	if m.graph == nil {
		m.graph = buildGraph(m)
	}
	return m.graph
}
