package model

import "testing"

func TestAttrsOrderPreserved(t *testing.T) {
	a := EmptyAttrs()
	a.Set("z", 1)
	a.Set("a", 2)
	a.Set("m", 3)
	keys := a.Keys()
	want := []string{"z", "a", "m"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("Keys()[%d] = %q, want %q", i, keys[i], k)
		}
	}
}

func TestAttrsSetOverwriteKeepsPosition(t *testing.T) {
	a := EmptyAttrs()
	a.Set("x", 1)
	a.Set("y", 2)
	a.Set("x", 99)
	keys := a.Keys()
	if len(keys) != 2 || keys[0] != "x" || keys[1] != "y" {
		t.Fatalf("unexpected key order after overwrite: %v", keys)
	}
	v, ok := a.Get("x")
	if !ok || v != 99 {
		t.Fatalf("Get(x) = %v, %v; want 99, true", v, ok)
	}
}

func TestAttrsDelete(t *testing.T) {
	a := EmptyAttrs()
	a.Set("a", 1)
	a.Set("b", 2)
	a.Delete("a")
	if _, ok := a.Get("a"); ok {
		t.Fatal("expected a to be deleted")
	}
	if keys := a.Keys(); len(keys) != 1 || keys[0] != "b" {
		t.Fatalf("Keys() = %v, want [b]", keys)
	}
}

func TestAttrsMerge(t *testing.T) {
	a := EmptyAttrs()
	a.Set("x", 1)
	a.Set("y", 2)
	other := EmptyAttrs()
	other.Set("y", 99)
	other.Set("z", 3)
	a.Merge(other)
	if v, _ := a.Get("y"); v != 99 {
		t.Fatalf("y = %v, want 99 (overridden)", v)
	}
	if v, _ := a.Get("z"); v != 3 {
		t.Fatalf("z = %v, want 3", v)
	}
	if v, _ := a.Get("x"); v != 1 {
		t.Fatalf("x = %v, want 1 (untouched)", v)
	}
}

func TestPathJoinAndHasPrefix(t *testing.T) {
	root := Path("/Mod/Parent/p1")
	child := root.Join("Children", "Child", "c1")
	if child != "/Mod/Parent/p1/Children/Child/c1" {
		t.Fatalf("Join produced %q", child)
	}
	if !child.HasPrefix(root) {
		t.Fatal("child should have root as prefix")
	}
	if !root.HasPrefix(root) {
		t.Fatal("a path is its own prefix")
	}
	sibling := Path("/Mod/Parent/p10")
	if root.HasPrefix(sibling) || sibling.HasPrefix(root) {
		t.Fatal("p1 and p10 must not be treated as prefix-related")
	}
}

func TestNewAttrsDeterministicOrder(t *testing.T) {
	a := NewAttrs(map[string]any{"c": 1, "a": 2, "b": 3})
	keys := a.Keys()
	want := []string{"a", "b", "c"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("Keys()[%d] = %q, want %q", i, keys[i], k)
		}
	}
}
