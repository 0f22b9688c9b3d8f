package model

import "testing"

func TestNewEntityGeneratesIDWhenAbsent(t *testing.T) {
	e := NewEntity("Mod", "Thing", []AttrDef{{Name: "name", Type: TypeString}})
	id, ok := e.IDAttr()
	if !ok {
		t.Fatal("expected a generated id attribute")
	}
	if id.Name != SysID || id.Type != TypeUUID {
		t.Fatalf("generated id = %+v, want __id__/UUID", id)
	}
}

func TestNewEntityRespectsExplicitID(t *testing.T) {
	e := NewEntity("Mod", "User", []AttrDef{
		{Name: "email", Type: TypeEmail, ID: true},
		{Name: "name", Type: TypeString},
	})
	id, ok := e.IDAttr()
	if !ok || id.Name != "email" {
		t.Fatalf("IDAttr() = %+v, %v; want email", id, ok)
	}
}

func TestRecordValidateDuplicateAttr(t *testing.T) {
	r := &Record{Module: "Mod", Name: "E", Attrs: []AttrDef{
		{Name: "x", Type: TypeInt},
		{Name: "x", Type: TypeInt},
	}}
	if err := r.Validate(); err == nil {
		t.Fatal("expected duplicate-attribute error")
	}
}

func TestRecordValidateMultipleIDs(t *testing.T) {
	r := &Record{Module: "Mod", Name: "E", Attrs: []AttrDef{
		{Name: "a", Type: TypeInt, ID: true},
		{Name: "b", Type: TypeInt, ID: true},
	}}
	if err := r.Validate(); err == nil {
		t.Fatal("expected multiple-id error")
	}
}

func TestExprAttrsDeclarationOrder(t *testing.T) {
	r := &Record{Attrs: []AttrDef{
		{Name: "x", Type: TypeInt},
		{Name: "y", Type: TypeInt, Expr: "x*10"},
		{Name: "z", Type: TypeInt, Expr: "y+1"},
	}}
	exprs := r.ExprAttrs()
	if len(exprs) != 2 || exprs[0].Name != "y" || exprs[1].Name != "z" {
		t.Fatalf("ExprAttrs() = %+v, want [y z] in order", exprs)
	}
}

func TestUniqueAttrSets(t *testing.T) {
	r := &Record{
		Attrs: []AttrDef{
			{Name: "email", Type: TypeEmail, Unique: true},
			{Name: "name", Type: TypeString},
		},
		Meta: map[string]any{"with_unique": [][]string{{"name", "email"}}},
	}
	sets := r.UniqueAttrSets()
	if len(sets) != 2 {
		t.Fatalf("UniqueAttrSets() = %v, want 2 sets", sets)
	}
}
