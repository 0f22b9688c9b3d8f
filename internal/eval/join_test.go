package eval

import (
	"context"
	"testing"

	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/registry"
	"github.com/nucleus/agentlang/internal/resolver"
	"github.com/nucleus/agentlang/internal/txn"
)

func newOrdersModule(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	mod := registry.NewModule("Shop")
	customer := model.NewEntity("Shop", "Customer", []model.AttrDef{
		{Name: "id", Type: model.TypeInt, ID: true},
		{Name: "name", Type: model.TypeString},
	})
	order := model.NewEntity("Shop", "Order", []model.AttrDef{
		{Name: "id", Type: model.TypeInt, ID: true},
		{Name: "customerId", Type: model.TypeInt},
		{Name: "amount", Type: model.TypeInt},
	})
	if err := mod.AddEntity(customer); err != nil {
		t.Fatalf("AddEntity Customer: %v", err)
	}
	if err := mod.AddEntity(order); err != nil {
		t.Fatalf("AddEntity Order: %v", err)
	}
	reg.AddModule(mod)
	return reg
}

func seedOrdersFixture(t *testing.T, ev *Evaluator, env *txn.Environment) {
	t.Helper()
	ctx := context.Background()
	customers := []map[string]any{{"id": 1, "name": "Ann"}, {"id": 2, "name": "Bo"}}
	for _, c := range customers {
		p := &ast.CRUDPattern{Module: "Shop", Entry: "Customer", Hints: &ast.Hints{}, Alias: &ast.Alias{}}
		for k, v := range c {
			p.Attrs = append(p.Attrs, ast.AttrEntry{Name: k, Value: literal(v)})
		}
		if _, err := ev.EvalStatement(ctx, env, p); err != nil {
			t.Fatalf("seed customer failed: %v", err)
		}
	}
	orders := []map[string]any{
		{"id": 10, "customerId": 1, "amount": 30},
		{"id": 11, "customerId": 1, "amount": 70},
		{"id": 12, "customerId": 2, "amount": 20},
	}
	for _, o := range orders {
		p := &ast.CRUDPattern{Module: "Shop", Entry: "Order", Hints: &ast.Hints{}, Alias: &ast.Alias{}}
		for k, v := range o {
			p.Attrs = append(p.Attrs, ast.AttrEntry{Name: k, Value: literal(v)})
		}
		if _, err := ev.EvalStatement(ctx, env, p); err != nil {
			t.Fatalf("seed order failed: %v", err)
		}
	}
}

func TestEvalJoinInnerJoinProjectsMatchedRows(t *testing.T) {
	reg := newOrdersModule(t)
	ev := New(reg)
	mem := resolver.NewMemory()
	env := txn.New("Shop", "u1", map[string]resolver.Resolver{"memory": mem})
	env.Kernel = true
	seedOrdersFixture(t, ev, env)

	join := &ast.JoinPattern{
		Module: "Shop", Entry: "Customer",
		Joins: []ast.JoinClause{
			{Kind: ast.InnerJoin, Module: "Shop", Entry: "Order", LocalAttr: "id", RemoteAttr: "customerId"},
		},
		Into: []ast.IntoTerm{
			{Alias: "name", Ref: "Customer.name"},
			{Alias: "amount", Ref: "Order.amount"},
		},
	}
	rows, err := ev.evalJoin(context.Background(), env, join)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 joined rows (2 for Ann, 1 for Bo), got %d: %#v", len(rows), rows)
	}
}

func TestEvalJoinGroupByWithSumAggregate(t *testing.T) {
	reg := newOrdersModule(t)
	ev := New(reg)
	mem := resolver.NewMemory()
	env := txn.New("Shop", "u1", map[string]resolver.Resolver{"memory": mem})
	env.Kernel = true
	seedOrdersFixture(t, ev, env)

	join := &ast.JoinPattern{
		Module: "Shop", Entry: "Customer",
		Joins: []ast.JoinClause{
			{Kind: ast.InnerJoin, Module: "Shop", Entry: "Order", LocalAttr: "id", RemoteAttr: "customerId"},
		},
		Into: []ast.IntoTerm{
			{Alias: "name", Ref: "Customer.name"},
			{Alias: "total", Ref: "Order.amount", Agg: ast.AggSum},
		},
		GroupBy: []string{"Customer.name"},
		OrderBy: []ast.OrderTerm{{Ref: "total", Desc: true}},
	}
	rows, err := ev.evalJoin(context.Background(), env, join)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 grouped rows, got %d: %#v", len(rows), rows)
	}
	if rows[0]["name"] != "Ann" || rows[0]["total"] != 100.0 {
		t.Fatalf("expected Ann with total 100 first, got %#v", rows[0])
	}
	if rows[1]["name"] != "Bo" || rows[1]["total"] != 20.0 {
		t.Fatalf("expected Bo with total 20 second, got %#v", rows[1])
	}
}

func TestEvalJoinLeftJoinKeepsUnmatchedLeftRow(t *testing.T) {
	reg := newOrdersModule(t)
	ev := New(reg)
	mem := resolver.NewMemory()
	env := txn.New("Shop", "u1", map[string]resolver.Resolver{"memory": mem})
	env.Kernel = true
	ctx := context.Background()

	create := &ast.CRUDPattern{
		Module: "Shop", Entry: "Customer", Hints: &ast.Hints{}, Alias: &ast.Alias{},
		Attrs: []ast.AttrEntry{{Name: "id", Value: literal(1)}, {Name: "name", Value: literal("Solo")}},
	}
	if _, err := ev.EvalStatement(ctx, env, create); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	join := &ast.JoinPattern{
		Module: "Shop", Entry: "Customer",
		Joins: []ast.JoinClause{
			{Kind: ast.LeftJoin, Module: "Shop", Entry: "Order", LocalAttr: "id", RemoteAttr: "customerId"},
		},
		Into: []ast.IntoTerm{{Alias: "name", Ref: "Customer.name"}},
	}
	rows, err := ev.evalJoin(ctx, env, join)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if len(rows) != 1 || rows[0]["name"] != "Solo" {
		t.Fatalf("expected left join to keep the unmatched customer row, got %#v", rows)
	}
}
