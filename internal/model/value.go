// Package model defines the Agentlang data model: typed attributes,
// records, entities, relationships and instances (spec.md §3).
package model

import (
	"fmt"
	"sort"
)

// AttrType enumerates the primitive attribute types spec.md §3 lists.
type AttrType string

const (
	TypeString   AttrType = "String"
	TypeInt      AttrType = "Int"
	TypeNumber   AttrType = "Number"
	TypeDecimal  AttrType = "Decimal"
	TypeFloat    AttrType = "Float"
	TypeBoolean  AttrType = "Boolean"
	TypeUUID     AttrType = "UUID"
	TypeEmail    AttrType = "Email"
	TypeURL      AttrType = "URL"
	TypePassword AttrType = "Password"
	TypeDate     AttrType = "Date"
	TypeTime     AttrType = "Time"
	TypeDateTime AttrType = "DateTime"
	TypeMap      AttrType = "Map"
	TypeAny      AttrType = "Any"
	TypePath     AttrType = "Path"
	TypeArray    AttrType = "Array"
	TypeRef      AttrType = "Reference"
)

// Reference is a pointer to another instance by fully-qualified name and id.
type Reference struct {
	FQName string
	ID     any
}

func (r Reference) String() string {
	return fmt.Sprintf("%s/%v", r.FQName, r.ID)
}

// Path encodes an instance's position in the contains-hierarchy.
type Path string

// Join appends a relationship-name/entity-name/id segment, as spec.md §4.4.1
// describes: child.__path__ = parent.__path__ + "/" + R + "/" + C + "/" + i.
func (p Path) Join(relName, entityName string, id any) Path {
	return Path(fmt.Sprintf("%s/%s/%s/%v", p, relName, entityName, id))
}

// HasPrefix reports whether p is p2 or a descendant of p2 in the
// contains-hierarchy, mirroring the resolver's "parent_path LIKE P + '/%'"
// matching rule (spec.md §4.4.1).
func (p Path) HasPrefix(p2 Path) bool {
	if p == p2 {
		return true
	}
	return len(p) > len(p2) && p[:len(p2)] == p2 && p[len(p2)] == '/'
}

// Attrs is an ordered map of attribute name to value; order of insertion is
// preserved for deterministic @expr recomputation and projection output.
type Attrs struct {
	keys   []string
	values map[string]any
}

// NewAttrs builds an Attrs from an unordered map, sorting keys for
// determinism when no declared order is supplied by the caller.
func NewAttrs(m map[string]any) *Attrs {
	a := &Attrs{values: make(map[string]any, len(m))}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.Set(k, m[k])
	}
	return a
}

// EmptyAttrs returns an empty, ready-to-use Attrs.
func EmptyAttrs() *Attrs {
	return &Attrs{values: make(map[string]any)}
}

// Get returns the value bound to name and whether it was present.
func (a *Attrs) Get(name string) (any, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.values[name]
	return v, ok
}

// Set assigns name to value, appending to the key order on first use.
func (a *Attrs) Set(name string, value any) {
	if _, exists := a.values[name]; !exists {
		a.keys = append(a.keys, name)
	}
	a.values[name] = value
}

// Delete removes name from the attribute map.
func (a *Attrs) Delete(name string) {
	if _, exists := a.values[name]; !exists {
		return
	}
	delete(a.values, name)
	for i, k := range a.keys {
		if k == name {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// Keys returns attribute names in declaration/insertion order.
func (a *Attrs) Keys() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Clone returns a shallow copy preserving key order.
func (a *Attrs) Clone() *Attrs {
	if a == nil {
		return EmptyAttrs()
	}
	out := &Attrs{values: make(map[string]any, len(a.values))}
	for _, k := range a.keys {
		out.Set(k, a.values[k])
	}
	return out
}

// Map returns a plain map[string]any copy, for resolver/JSON boundaries.
func (a *Attrs) Map() map[string]any {
	if a == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// Merge overlays other's keys onto a, in other's order, overwriting
// existing values. Used by the expression-attribute recomputer (§4.5) to
// re-apply user-literal overrides after @expr evaluation.
func (a *Attrs) Merge(other *Attrs) {
	for _, k := range other.Keys() {
		v, _ := other.Get(k)
		a.Set(k, v)
	}
}
