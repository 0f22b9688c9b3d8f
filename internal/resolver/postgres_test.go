package resolver

import (
	"context"
	"os"
	"testing"

	"github.com/nucleus/agentlang/internal/model"
)

// TestPostgresCRUDRoundTrip is an integration test: set
// AGENTLANG_TEST_DATABASE_URL to a live Postgres DSN to run it, mirroring
// the teacher's METADATA_DATABASE_URL-gated connector tests.
func TestPostgresCRUDRoundTrip(t *testing.T) {
	dsn := os.Getenv("AGENTLANG_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("skipping integration test: AGENTLANG_TEST_DATABASE_URL not set")
	}

	p, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	ctx := context.Background()

	inst := model.NewInstance("IT", "Widget", map[string]any{"__id__": "w1", "name": "gizmo"})
	if _, err := p.CreateInstance(ctx, "", AuthInfo{}, inst); err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}

	query := model.NewQueryInstance("IT", "Widget", nil, map[string]any{"__id__": "w1"}, map[string]model.QueryOp{"__id__": model.OpEq})
	rows, err := p.QueryInstances(ctx, "", AuthInfo{}, query, false)
	if err != nil {
		t.Fatalf("QueryInstances: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	deleted, err := p.DeleteInstance(ctx, "", AuthInfo{}, query, true)
	if err != nil {
		t.Fatalf("DeleteInstance: %v", err)
	}
	if len(deleted) != 1 {
		t.Fatalf("expected 1 deleted row, got %d", len(deleted))
	}
}

func TestStringTagsCollectsTopLevelStrings(t *testing.T) {
	tags := stringTags(map[string]any{"name": "Ann", "age": 30, "city": "NYC"})
	if len(tags) != 2 {
		t.Fatalf("expected 2 string tags, got %v", tags)
	}
}
