package registry

import "github.com/nucleus/agentlang/internal/model"

// GraphEdge is a directed relationship edge in a module's relationship
// graph: nodes are entities, edges are typed by the connecting
// relationship (spec.md §3).
type GraphEdge struct {
	Relationship *model.Relationship
	// InverseAlias is the scalar "inverse alias" column name created on the
	// owning side for one_one/one_many Between relationships (spec.md
	// §4.1 key decision); empty for many_many and Contains edges.
	InverseAlias string
}

// RelationshipGraph is the relationship-graph builder's output: the basis
// for path construction (contains edges), join planning (between edges),
// and cascade rules (spec.md §3, §4.1).
type RelationshipGraph struct {
	// outEdges[fromEntity] -> edges where that entity is the From side.
	outEdges map[string][]*GraphEdge
	// inEdges[toEntity] -> edges where that entity is the To side.
	inEdges map[string][]*GraphEdge
}

func buildGraph(m *Module) *RelationshipGraph {
	g := &RelationshipGraph{
		outEdges: map[string][]*GraphEdge{},
		inEdges:  map[string][]*GraphEdge{},
	}
	for _, r := range m.relationships {
		edge := &GraphEdge{Relationship: r}
		if r.LinkOwnsRef() {
			edge.InverseAlias = r.RefColumn()
		}
		g.outEdges[r.From] = append(g.outEdges[r.From], edge)
		g.inEdges[r.To] = append(g.inEdges[r.To], edge)
	}
	return g
}

// OutEdges returns the relationships in which entityName is the owning
// (From / Parent) side.
func (g *RelationshipGraph) OutEdges(entityName string) []*GraphEdge {
	return g.outEdges[entityName]
}

// InEdges returns the relationships in which entityName is the owned
// (To / Child) side.
func (g *RelationshipGraph) InEdges(entityName string) []*GraphEdge {
	return g.inEdges[entityName]
}

// EdgeNamed returns the relationship named relName touching entityName, on
// either side.
func (g *RelationshipGraph) EdgeNamed(entityName, relName string) (*GraphEdge, bool) {
	for _, e := range g.outEdges[entityName] {
		if e.Relationship.Name == relName {
			return e, true
		}
	}
	for _, e := range g.inEdges[entityName] {
		if e.Relationship.Name == relName {
			return e, true
		}
	}
	return nil, false
}

// ContainsChildren returns the Contains edges where entityName is the
// parent — the set of relationships path construction and cascade-delete
// walk (spec.md §4.4.1).
func (g *RelationshipGraph) ContainsChildren(entityName string) []*GraphEdge {
	var out []*GraphEdge
	for _, e := range g.outEdges[entityName] {
		if e.Relationship.Kind == model.Contains {
			out = append(out, e)
		}
	}
	return out
}
