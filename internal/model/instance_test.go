package model

import "testing"

func TestInstanceIsCreate(t *testing.T) {
	inst := NewInstance("Mod", "User", map[string]any{"email": "j@b.com", "name": "Joe"})
	if !inst.IsCreate() {
		t.Fatal("expected create pattern")
	}
	if inst.IsRead() || inst.IsUpdate() {
		t.Fatal("create pattern must not also be read or update")
	}
}

func TestInstanceIsRead(t *testing.T) {
	inst := NewQueryInstance("Mod", "User", nil, map[string]any{"email": "j@b.com"}, map[string]QueryOp{"email": OpEq})
	if !inst.IsRead() {
		t.Fatal("expected read pattern")
	}
	if inst.IsCreate() || inst.IsUpdate() {
		t.Fatal("read pattern must not also be create or update")
	}
}

func TestInstanceIsUpdate(t *testing.T) {
	inst := NewQueryInstance("Mod", "E", map[string]any{"x": 7}, map[string]any{"id": 1}, map[string]QueryOp{"id": OpEq})
	if !inst.IsUpdate() {
		t.Fatal("expected update pattern")
	}
	if inst.IsCreate() || inst.IsRead() {
		t.Fatal("update pattern must not also be create or read")
	}
}

func TestInstanceQueryAllIsRead(t *testing.T) {
	inst := &Instance{Module: "Mod", Entry: "User", Attributes: EmptyAttrs(), QueryAll: true}
	if !inst.IsRead() {
		t.Fatal("entity-level query-all must be a read")
	}
}

func TestAttachRelatedAppendOnly(t *testing.T) {
	parent := NewInstance("Mod", "User", map[string]any{"email": "j@b.com"})
	child1 := NewInstance("Mod", "Post", map[string]any{"id": 1})
	child2 := NewInstance("Mod", "Post", map[string]any{"id": 2})
	parent.AttachRelated("UserPost", child1)
	parent.AttachRelated("UserPost", child2)
	related := parent.Related("UserPost")
	if len(related) != 2 {
		t.Fatalf("Related() = %d items, want 2", len(related))
	}
	if related[0] != child1 || related[1] != child2 {
		t.Fatal("attachment order not preserved")
	}
}

func TestProjectionElidesDeletedFlagAndNestsRelated(t *testing.T) {
	parent := NewInstance("Mod", "User", map[string]any{"email": "j@b.com", SysDeleted: false})
	child := NewInstance("Mod", "Post", map[string]any{"id": 1, "title": "hi"})
	parent.AttachRelated("UserPost", child)

	proj := parent.Projection()
	if _, ok := proj[SysDeleted]; ok {
		t.Fatal("projection must elide __deleted__")
	}
	posts, ok := proj["UserPost"].([]map[string]any)
	if !ok || len(posts) != 1 {
		t.Fatalf("projection UserPost = %v", proj["UserPost"])
	}
	if posts[0]["title"] != "hi" {
		t.Fatalf("nested projection incorrect: %v", posts[0])
	}
}

func TestInstanceDeletedFlag(t *testing.T) {
	inst := NewInstance("Mod", "E", map[string]any{SysDeleted: true})
	if !inst.Deleted() {
		t.Fatal("expected Deleted() true")
	}
}

func TestInstanceCloneIndependentAttrs(t *testing.T) {
	orig := NewInstance("Mod", "E", map[string]any{"x": 1})
	clone := orig.Clone()
	clone.Attributes.Set("x", 2)
	if v, _ := orig.Attributes.Get("x"); v != 1 {
		t.Fatalf("mutating clone affected original: %v", v)
	}
}
