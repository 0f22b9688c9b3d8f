package registry

import (
	"strings"
	"sync"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
)

// Registry is the process-wide module catalog (spec.md §3 "A process-wide
// registry holds all loaded modules; reload replaces."). All mutations are
// process-local; callers are expected to serialize registry mutations
// outside request handling (spec.md §4.1, §5 shared-resource policy).
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{modules: map[string]*Module{}}
}

// AddModule installs m, replacing any module of the same name (reload
// semantics, spec.md §3).
func (r *Registry) AddModule(m *Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[m.Name] = m
}

// RemoveModule unloads a module.
func (r *Registry) RemoveModule(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.modules, name)
}

// Module looks up a loaded module by name.
func (r *Registry) Module(name string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// Modules enumerates all loaded modules.
func (r *Registry) Modules() []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Module, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	return out
}

// splitFQName splits "Module/Entry" into its two parts; ok is false for an
// unqualified name.
func splitFQName(name string) (moduleName, entry string, ok bool) {
	i := strings.LastIndex(name, "/")
	if i < 0 {
		return "", name, false
	}
	return name[:i], name[i+1:], true
}

// ResolveEntity resolves a name to an entity. Qualified names (`Mod/Ent`)
// bypass the active module; unqualified names resolve against
// activeModule (spec.md §4.1 "Name resolution is two-level").
func (r *Registry) ResolveEntity(name, activeModule string) (*model.Entity, error) {
	modName, entry, qualified := splitFQName(name)
	if !qualified {
		modName, entry = activeModule, name
	}
	m, ok := r.Module(modName)
	if !ok {
		return nil, agerrors.New(agerrors.ValidationError, "unknown module: "+modName)
	}
	e, ok := m.Entity(entry)
	if !ok {
		return nil, agerrors.New(agerrors.ValidationError, "unknown entity: "+name)
	}
	return e, nil
}

// ResolveRecord is ResolveEntity's generalization to plain (non-entity)
// records.
func (r *Registry) ResolveRecord(name, activeModule string) (*model.Record, error) {
	modName, entry, qualified := splitFQName(name)
	if !qualified {
		modName, entry = activeModule, name
	}
	m, ok := r.Module(modName)
	if !ok {
		return nil, agerrors.New(agerrors.ValidationError, "unknown module: "+modName)
	}
	rec, ok := m.Record(entry)
	if !ok {
		return nil, agerrors.New(agerrors.ValidationError, "unknown record: "+name)
	}
	return rec, nil
}

// ResolveWorkflow resolves a fully-qualified or unqualified workflow name.
func (r *Registry) ResolveWorkflow(name, activeModule string) (*ast.Workflow, error) {
	modName, entry, qualified := splitFQName(name)
	if !qualified {
		modName, entry = activeModule, name
	}
	m, ok := r.Module(modName)
	if !ok {
		return nil, agerrors.New(agerrors.ValidationError, "unknown module: "+modName)
	}
	w, ok := m.Workflow(entry)
	if !ok {
		return nil, agerrors.New(agerrors.ValidationError, "unknown workflow: "+name)
	}
	return w, nil
}

// ResolveAgent resolves a fully-qualified or unqualified agent name.
func (r *Registry) ResolveAgent(name, activeModule string) (*ast.Agent, error) {
	modName, entry, qualified := splitFQName(name)
	if !qualified {
		modName, entry = activeModule, name
	}
	m, ok := r.Module(modName)
	if !ok {
		return nil, agerrors.New(agerrors.ValidationError, "unknown module: "+modName)
	}
	a, ok := m.Agent(entry)
	if !ok {
		return nil, agerrors.New(agerrors.ValidationError, "unknown agent: "+name)
	}
	return a, nil
}

// RelationshipsTouching finds every relationship touching the named
// entity, across the entity's own module.
func (r *Registry) RelationshipsTouching(fqName string) ([]*model.Relationship, error) {
	modName, entry, qualified := splitFQName(fqName)
	if !qualified {
		return nil, agerrors.New(agerrors.ValidationError, "RelationshipsTouching requires a fully-qualified name")
	}
	m, ok := r.Module(modName)
	if !ok {
		return nil, agerrors.New(agerrors.ValidationError, "unknown module: "+modName)
	}
	return m.RelationshipsTouching(entry), nil
}

// Graph fetches (building if necessary) the relationship graph for module.
func (r *Registry) Graph(moduleName string) (*RelationshipGraph, error) {
	m, ok := r.Module(moduleName)
	if !ok {
		return nil, agerrors.New(agerrors.ValidationError, "unknown module: "+moduleName)
	}
	return m.Graph(), nil
}

// ResolverFor returns the resolver name bound to a fully-qualified entity
// name, or "" when no explicit mapping exists (the default resolver
// applies, spec.md §4.3).
func (r *Registry) ResolverFor(fqName string) string {
	modName, entry, qualified := splitFQName(fqName)
	if !qualified {
		return ""
	}
	m, ok := r.Module(modName)
	if !ok {
		return ""
	}
	return m.Resolvers[entry]
}
