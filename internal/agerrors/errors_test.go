package agerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesKind(t *testing.T) {
	err := NewNotFound("User", "u1")
	if !Is(err, NotFound) {
		t.Fatal("expected Is(err, NotFound) to be true")
	}
	if Is(err, UniqueViolation) {
		t.Fatal("expected Is(err, UniqueViolation) to be false")
	}
}

func TestIsLooksThroughWrap(t *testing.T) {
	inner := NewResolverUnavailable("postgres", errors.New("dial tcp: timeout"))
	wrapped := fmt.Errorf("create failed: %w", inner)
	if !Is(wrapped, ResolverUnavailable) {
		t.Fatal("Is should see through fmt.Errorf wrapping")
	}
}

func TestCatchKindMapsNotFoundSpecially(t *testing.T) {
	if NotFound.CatchKind() != "not_found" {
		t.Fatalf("CatchKind() = %q, want not_found", NotFound.CatchKind())
	}
	if UniqueViolation.CatchKind() != "error" {
		t.Fatalf("CatchKind() = %q, want error", UniqueViolation.CatchKind())
	}
}

func TestWithDetails(t *testing.T) {
	err := NewTypeMismatch("age", "Int", "abc")
	if err.Details["want"] != "Int" || err.Details["got"] != "abc" {
		t.Fatalf("Details = %v", err.Details)
	}
}

func TestKindOfNonAgentlangError(t *testing.T) {
	if KindOf(errors.New("plain")) != "" {
		t.Fatal("KindOf on a plain error should return empty Kind")
	}
}
