package model

import "fmt"

// AttrDef is a single attribute declaration within a Record (spec.md §3).
type AttrDef struct {
	Name     string
	Type     AttrType
	ID       bool   // this attribute is the record's @id
	Unique   bool   // @with_unique participant or standalone @unique
	Optional bool
	Indexed  bool

	// Default describes a default-value source: a literal, "uuid()",
	// "now()", or "autoincrement()".
	Default any

	Enum  []any  // enum(...) allowed values
	OneOf string // oneof(entity.attr) — value must exist in the referenced column
	Ref   string // ref(entity.attr) — foreign-key target

	// Expr holds the source text of an @expr(...) expression. Non-empty
	// marks this as a derived attribute recomputed per §4.5.
	Expr string

	Comment string
}

// Record is an ordered named schema of typed attributes (spec.md §3).
type Record struct {
	Module  string
	Name    string
	Attrs   []AttrDef
	Meta    map[string]any // arbitrary record-level metadata (e.g. @rbac, config tag)
	byName  map[string]int
}

// FQName returns the fully-qualified "Module/Name" form.
func (r *Record) FQName() string {
	return r.Module + "/" + r.Name
}

// Attr looks up an attribute declaration by name.
func (r *Record) Attr(name string) (AttrDef, bool) {
	r.ensureIndex()
	i, ok := r.byName[name]
	if !ok {
		return AttrDef{}, false
	}
	return r.Attrs[i], true
}

// IDAttr returns the record's id attribute. Entities always have exactly
// one (invariant 1 of spec.md §3): an explicit @id, or the generated
// "__id__" UUID column added by NewEntity when none is declared.
func (r *Record) IDAttr() (AttrDef, bool) {
	for _, a := range r.Attrs {
		if a.ID {
			return a, true
		}
	}
	return AttrDef{}, false
}

// ExprAttrs returns @expr-tagged attributes in declaration order, the
// iteration order the recomputer in §4.5 depends on.
func (r *Record) ExprAttrs() []AttrDef {
	var out []AttrDef
	for _, a := range r.Attrs {
		if a.Expr != "" {
			out = append(out, a)
		}
	}
	return out
}

// UniqueAttrSets returns attribute-name groups that together form a unique
// constraint: each single @unique attribute as a singleton set, plus any
// composite @with_unique tuples recorded in Meta["with_unique"].
func (r *Record) UniqueAttrSets() [][]string {
	var sets [][]string
	for _, a := range r.Attrs {
		if a.Unique {
			sets = append(sets, []string{a.Name})
		}
	}
	if composite, ok := r.Meta["with_unique"].([][]string); ok {
		sets = append(sets, composite...)
	}
	return sets
}

func (r *Record) ensureIndex() {
	if r.byName != nil {
		return
	}
	r.byName = make(map[string]int, len(r.Attrs))
	for i, a := range r.Attrs {
		r.byName[a.Name] = i
	}
}

// Entity is a Record whose instances are persistent (spec.md §3). It is
// represented as a Record with the `IsEntity` marker plus the two
// system-generated attributes every entity instance carries.
type Entity struct {
	Record
	IsEvent bool // events are Records that trigger workflows rather than persist
}

const (
	// SysID is the generated id attribute name used when no @id is declared.
	SysID = "__id__"
	// SysPath is the immutable containment-path attribute name (spec.md §3).
	SysPath = "__path__"
	// SysDeleted is the soft-delete flag attribute name.
	SysDeleted = "__deleted__"
)

// NewEntity builds an Entity, adding a generated "__id__" UUID attribute
// when the declaration supplies no explicit @id (invariant 1).
func NewEntity(module, name string, attrs []AttrDef) *Entity {
	hasID := false
	for _, a := range attrs {
		if a.ID {
			hasID = true
			break
		}
	}
	if !hasID {
		attrs = append([]AttrDef{{Name: SysID, Type: TypeUUID, ID: true, Default: "uuid()"}}, attrs...)
	}
	return &Entity{Record: Record{Module: module, Name: name, Attrs: attrs, Meta: map[string]any{}}}
}

// Validate reports declaration-time schema errors (spec §7 ValidationError
// territory): duplicate attribute names, more than one @id.
func (r *Record) Validate() error {
	seen := map[string]bool{}
	idCount := 0
	for _, a := range r.Attrs {
		if seen[a.Name] {
			return fmt.Errorf("duplicate attribute %q in %s", a.Name, r.FQName())
		}
		seen[a.Name] = true
		if a.ID {
			idCount++
		}
	}
	if idCount > 1 {
		return fmt.Errorf("%s declares %d @id attributes, exactly one is required", r.FQName(), idCount)
	}
	return nil
}
