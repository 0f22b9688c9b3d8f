package query

import (
	"testing"

	"github.com/nucleus/agentlang/internal/model"
)

func TestMatchNumericComparison(t *testing.T) {
	if !Match(model.OpLt, 3, 5) {
		t.Fatal("3 < 5 should match")
	}
	if Match(model.OpLt, 5, 3) {
		t.Fatal("5 < 3 should not match")
	}
	if !Match(model.OpGte, 5, 5) {
		t.Fatal("5 >= 5 should match")
	}
}

func TestMatchStringFallback(t *testing.T) {
	if !Match(model.OpEq, "joe", "joe") {
		t.Fatal("string equality should match")
	}
	if !Match(model.OpLt, "a", "b") {
		t.Fatal("lexicographic fallback should order a < b")
	}
}

func TestMatchIn(t *testing.T) {
	set := []any{1, 2, 3}
	if !Match(model.OpIn, 2, set) {
		t.Fatal("2 should be in [1,2,3]")
	}
	if Match(model.OpIn, 4, set) {
		t.Fatal("4 should not be in [1,2,3]")
	}
}

func TestMatchLikeWildcard(t *testing.T) {
	if !Match(model.OpLike, "joe@b.com", "%@b.com") {
		t.Fatal("suffix wildcard should match")
	}
	if !Match(model.OpLike, "joe@b.com", "joe%") {
		t.Fatal("prefix wildcard should match")
	}
	if Match(model.OpLike, "tom@b.com", "joe%") {
		t.Fatal("prefix wildcard should not match a different prefix")
	}
}

func TestMatchBetween(t *testing.T) {
	if !Match(model.OpBetween, 5, []any{1, 10}) {
		t.Fatal("5 should be between 1 and 10")
	}
	if Match(model.OpBetween, 15, []any{1, 10}) {
		t.Fatal("15 should not be between 1 and 10")
	}
}

func TestMatchesAllEmptyQueryIsQueryAll(t *testing.T) {
	attrs := model.NewAttrs(map[string]any{"email": "j@b.com"})
	if !MatchesAll(attrs, model.EmptyAttrs(), nil) {
		t.Fatal("an empty query-attribute set should match everything")
	}
}

func TestMatchesAllMissingAttrFails(t *testing.T) {
	attrs := model.NewAttrs(map[string]any{"email": "j@b.com"})
	q := model.NewAttrs(map[string]any{"name": "Joe"})
	if MatchesAll(attrs, q, map[string]model.QueryOp{"name": model.OpEq}) {
		t.Fatal("a query attribute absent from the instance must not match")
	}
}

func TestMatchesAllDefaultOpIsEq(t *testing.T) {
	attrs := model.NewAttrs(map[string]any{"id": 5})
	q := model.NewAttrs(map[string]any{"id": 5})
	if !MatchesAll(attrs, q, map[string]model.QueryOp{}) {
		t.Fatal("default operator should be equality")
	}
}
