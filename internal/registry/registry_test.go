package registry

import (
	"testing"

	"github.com/nucleus/agentlang/internal/model"
)

func sampleModule(t *testing.T) *Module {
	t.Helper()
	m := NewModule("Sales")
	user := model.NewEntity("Sales", "User", []model.AttrDef{
		{Name: "email", Type: model.TypeEmail, ID: true},
		{Name: "name", Type: model.TypeString},
	})
	post := model.NewEntity("Sales", "Post", []model.AttrDef{
		{Name: "id", Type: model.TypeInt, ID: true},
		{Name: "title", Type: model.TypeString},
	})
	if err := m.AddEntity(user); err != nil {
		t.Fatalf("AddEntity(User) failed: %v", err)
	}
	if err := m.AddEntity(post); err != nil {
		t.Fatalf("AddEntity(Post) failed: %v", err)
	}
	rel := &model.Relationship{
		Module: "Sales", Name: "UserPost", Kind: model.Between,
		From: "User", To: "Post", Cardinality: model.OneMany,
	}
	if err := m.AddRelationship(rel); err != nil {
		t.Fatalf("AddRelationship failed: %v", err)
	}
	return m
}

func TestAddEntityRejectsDuplicate(t *testing.T) {
	m := sampleModule(t)
	dup := model.NewEntity("Sales", "User", []model.AttrDef{{Name: "x", Type: model.TypeInt, ID: true}})
	if err := m.AddEntity(dup); err == nil {
		t.Fatal("expected duplicate-entity error")
	}
}

func TestAddRelationshipUnknownEntity(t *testing.T) {
	m := sampleModule(t)
	rel := &model.Relationship{Module: "Sales", Name: "Bad", Kind: model.Contains, From: "User", To: "Ghost"}
	if err := m.AddRelationship(rel); err == nil {
		t.Fatal("expected unknown-entity error")
	}
}

func TestRegistryResolveEntityQualifiedAndUnqualified(t *testing.T) {
	r := New()
	r.AddModule(sampleModule(t))

	e, err := r.ResolveEntity("Sales/User", "")
	if err != nil || e.Name != "User" {
		t.Fatalf("qualified resolve failed: %v, %+v", err, e)
	}
	e2, err := r.ResolveEntity("User", "Sales")
	if err != nil || e2.Name != "User" {
		t.Fatalf("unqualified resolve failed: %v, %+v", err, e2)
	}
}

func TestRegistryResolveUnknownModule(t *testing.T) {
	r := New()
	if _, err := r.ResolveEntity("Ghost/User", ""); err == nil {
		t.Fatal("expected error for unknown module")
	}
}

func TestGraphEdgesBetweenRelationship(t *testing.T) {
	m := sampleModule(t)
	g := m.Graph()
	out := g.OutEdges("User")
	if len(out) != 1 || out[0].Relationship.Name != "UserPost" {
		t.Fatalf("OutEdges(User) = %+v", out)
	}
	in := g.InEdges("Post")
	if len(in) != 1 || in[0].Relationship.Name != "UserPost" {
		t.Fatalf("InEdges(Post) = %+v", in)
	}
}

func TestGraphInvalidatedOnMutation(t *testing.T) {
	m := sampleModule(t)
	g1 := m.Graph()
	comment := model.NewEntity("Sales", "Comment", []model.AttrDef{{Name: "id", Type: model.TypeInt, ID: true}})
	if err := m.AddEntity(comment); err != nil {
		t.Fatalf("AddEntity failed: %v", err)
	}
	rel := &model.Relationship{Module: "Sales", Name: "PostComment", Kind: model.Contains, From: "Post", To: "Comment"}
	if err := m.AddRelationship(rel); err != nil {
		t.Fatalf("AddRelationship failed: %v", err)
	}
	g2 := m.Graph()
	if g1 == g2 {
		t.Fatal("graph should be rebuilt after a relationship is added")
	}
	if len(g2.ContainsChildren("Post")) != 1 {
		t.Fatalf("ContainsChildren(Post) = %+v", g2.ContainsChildren("Post"))
	}
}

func TestConfigEntityTag(t *testing.T) {
	m := NewModule("Sys")
	cfg := model.NewEntity("Sys", "Config", []model.AttrDef{{Name: "id", Type: model.TypeInt, ID: true}})
	cfg.Meta[metaConfig] = true
	if err := m.AddEntity(cfg); err != nil {
		t.Fatalf("AddEntity failed: %v", err)
	}
	found, ok := m.ConfigEntity()
	if !ok || found.Name != "Config" {
		t.Fatalf("ConfigEntity() = %+v, %v", found, ok)
	}
}
