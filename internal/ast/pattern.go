package ast

import "github.com/nucleus/agentlang/internal/model"

// AttrEntry is one `k v` / `k? v` / `k?op v` entry of a CRUD map (spec.md
// §4.4 rule 2). Query==false means "set" (create/update value); Query==true
// means "query" (match condition), with Op defaulting to `=`.
type AttrEntry struct {
	Name  string
	Value Expr
	Query bool
	Op    model.QueryOp
}

// RelationshipEntry is a nested `RelName { ChildPattern }` or
// `RelName [ p1, p2, ... ]` entry inside a CRUD map (spec.md §4.4 rule 3).
type RelationshipEntry struct {
	RelName  string
	Children []*CRUDPattern // one element for the singular `{ }` form
}

// CRUDPattern is the `{FQName {attr v, ...}, <relationships>, <hints>}`
// pattern — the sole syntactic form for create/read/update (spec.md §4.4
// rule 2). Delete/purge wrap an inner CRUDPattern via DeletePattern.
type CRUDPattern struct {
	Module string
	Entry  string

	// QueryAll is the entity-level `Mod/Ent?` form with an empty body.
	QueryAll bool

	Attrs         []AttrEntry
	Relationships []RelationshipEntry

	Alias *Alias
	Hints *Hints
}

func (*CRUDPattern) statementNode() {}

func (p *CRUDPattern) FQName() string { return p.Module + "/" + p.Entry }

// IsCreate reports whether p has no query attributes and no entity-level
// `?` — the create case of spec.md §4.4 rule 2.
func (p *CRUDPattern) IsCreate() bool {
	if p.QueryAll {
		return false
	}
	for _, a := range p.Attrs {
		if a.Query {
			return false
		}
	}
	return true
}

// IsPureRead reports whether every attribute present is a query attribute
// (or the pattern is the entity-level `?` form) — spec.md §4.4 rule 2's
// read case.
func (p *CRUDPattern) IsPureRead() bool {
	if p.QueryAll {
		return true
	}
	if len(p.Attrs) == 0 {
		return false
	}
	for _, a := range p.Attrs {
		if !a.Query {
			return false
		}
	}
	return true
}

// IsUpdate reports whether p mixes query and set attributes.
func (p *CRUDPattern) IsUpdate() bool {
	hasQuery, hasSet := false, false
	for _, a := range p.Attrs {
		if a.Query {
			hasQuery = true
		} else {
			hasSet = true
		}
	}
	return hasQuery && hasSet
}

// DeletePattern wraps an inner CRUD pattern with delete (soft,
// `__deleted__=true`) or purge (hard, row removal) semantics (spec.md §4.4
// rule 5).
type DeletePattern struct {
	Inner *CRUDPattern
	Purge bool
	Alias *Alias
	Hints *Hints
}

func (*DeletePattern) statementNode() {}

// FullTextSearch is the `{FQName? "<text>" <options>}` pattern (spec.md
// §4.4 rule 10).
type FullTextSearch struct {
	Module  string
	Entry   string
	Query   string
	Options map[string]any
	Alias   *Alias
}

func (*FullTextSearch) statementNode() {}
