package model

// QueryOp is one of the comparison operators spec.md §6 lists for
// attribute-level queries: ?, ?<=, ?>=, ?<, ?>, ?=, ?!=, ?<>, ?like, ?in,
// ?between.
type QueryOp string

const (
	OpEq      QueryOp = "="
	OpNeq     QueryOp = "!="
	OpLt      QueryOp = "<"
	OpLte     QueryOp = "<="
	OpGt      QueryOp = ">"
	OpGte     QueryOp = ">="
	OpIn      QueryOp = "in"
	OpLike    QueryOp = "like"
	OpBetween QueryOp = "between"
)

// Instance is a value of a record type, in memory or at the resolver
// boundary (spec.md §3, §4.2).
type Instance struct {
	Module string
	Entry  string // record/entity simple name

	Attributes *Attrs

	// QueryAttributes/QueryOps are present when this Instance represents a
	// query pattern rather than a concrete value (spec.md §3).
	QueryAttributes *Attrs
	QueryOps        map[string]QueryOp
	QueryAll        bool // entity-level "?" with an empty body

	// RelatedInstances maps relationship name to the child/related
	// instances attached while evaluating a nested CRUD pattern. Append-only
	// within a single evaluation pass (§4.2 invariant).
	RelatedInstances map[string][]*Instance

	// AuthContext is the acting user id for the session this instance was
	// constructed under (spec.md §3).
	AuthContext string
}

// NewInstance constructs a plain (non-query) instance.
func NewInstance(module, entry string, attrs map[string]any) *Instance {
	return &Instance{Module: module, Entry: entry, Attributes: NewAttrs(attrs)}
}

// NewQueryInstance constructs a query-pattern instance.
func NewQueryInstance(module, entry string, setAttrs map[string]any, queryAttrs map[string]any, ops map[string]QueryOp) *Instance {
	inst := &Instance{
		Module:          module,
		Entry:           entry,
		Attributes:      NewAttrs(setAttrs),
		QueryAttributes: NewAttrs(queryAttrs),
		QueryOps:        ops,
	}
	return inst
}

// FQName returns "Module/Entry".
func (i *Instance) FQName() string { return i.Module + "/" + i.Entry }

// IsCreate reports whether this pattern has no query attributes and no
// entity-level "?" — the create case of spec.md §4.4 rule 2.
func (i *Instance) IsCreate() bool {
	return !i.QueryAll && i.QueryAttributes.Len() == 0
}

// IsRead reports whether every supplied attribute is a query attribute (or
// the entity-level "?" form), the read case of spec.md §4.4 rule 2.
func (i *Instance) IsRead() bool {
	if i.QueryAll {
		return true
	}
	return i.QueryAttributes.Len() > 0 && i.Attributes.Len() == 0
}

// IsUpdate reports whether the pattern mixes query and set attributes.
func (i *Instance) IsUpdate() bool {
	return i.QueryAttributes.Len() > 0 && i.Attributes.Len() > 0
}

// Len reports the number of attributes present; nil-safe.
func (a *Attrs) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// ID returns the instance's id attribute value, if the entity's id
// attribute is present in Attributes.
func (i *Instance) ID(idAttr string) (any, bool) {
	return i.Attributes.Get(idAttr)
}

// Path returns the instance's __path__ attribute, if set.
func (i *Instance) Path() (Path, bool) {
	v, ok := i.Attributes.Get(SysPath)
	if !ok {
		return "", false
	}
	p, ok := v.(Path)
	if ok {
		return p, true
	}
	if s, ok := v.(string); ok {
		return Path(s), true
	}
	return "", false
}

// Deleted reports the __deleted__ soft-delete flag.
func (i *Instance) Deleted() bool {
	v, ok := i.Attributes.Get(SysDeleted)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// AttachRelated appends child to the named relationship slot. Append-only,
// per the §4.2 invariant.
func (i *Instance) AttachRelated(relName string, child *Instance) {
	if i.RelatedInstances == nil {
		i.RelatedInstances = make(map[string][]*Instance)
	}
	i.RelatedInstances[relName] = append(i.RelatedInstances[relName], child)
}

// Related returns the attached instances for a relationship name.
func (i *Instance) Related(relName string) []*Instance {
	return i.RelatedInstances[relName]
}

// Projection emits a plain-data view: user attributes (system columns
// elided) followed by related instances recursively (spec.md §4.2).
func (i *Instance) Projection() map[string]any {
	out := make(map[string]any)
	for _, k := range i.Attributes.Keys() {
		if k == SysDeleted {
			continue
		}
		v, _ := i.Attributes.Get(k)
		out[k] = v
	}
	for rel, children := range i.RelatedInstances {
		list := make([]map[string]any, 0, len(children))
		for _, c := range children {
			list = append(list, c.Projection())
		}
		out[rel] = list
	}
	return out
}

// Clone returns a deep-enough copy safe to mutate independently (attribute
// map is cloned; related instances are the same pointers, matching the
// append-only sharing model).
func (i *Instance) Clone() *Instance {
	out := &Instance{
		Module:      i.Module,
		Entry:       i.Entry,
		Attributes:  i.Attributes.Clone(),
		AuthContext: i.AuthContext,
	}
	if i.RelatedInstances != nil {
		out.RelatedInstances = make(map[string][]*Instance, len(i.RelatedInstances))
		for k, v := range i.RelatedInstances {
			cp := make([]*Instance, len(v))
			copy(cp, v)
			out.RelatedInstances[k] = cp
		}
	}
	return out
}
