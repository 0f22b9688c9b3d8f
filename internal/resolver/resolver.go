// Package resolver defines the storage/service backend contract (spec.md
// §4.3), its concrete resolvers (an in-memory default, a Postgres-backed
// one, and Remote, a gRPC client for an out-of-process resolver), and the
// Policy wrapper around them.
package resolver

import (
	"context"

	"github.com/nucleus/agentlang/internal/model"
)

// AuthInfo accompanies every resolver call: the acting user id, and flags
// indicating whether a read is really a read-for-update or read-for-delete
// (spec.md §4.3).
type AuthInfo struct {
	UserID        string
	ReadForUpdate bool
	ReadForDelete bool
}

// JoinClause is one equality join condition a queryByJoin call must honor.
// Kind mirrors ast.JoinKind but the resolver package does not import ast to
// keep the dependency direction leaf-ward; the evaluator translates.
type JoinClause struct {
	Kind       string // "inner_join" | "left_join" | "right_join" | "full_join"
	Module     string
	Entry      string
	LocalAttr  string
	RemoteAttr string
}

// IntoSpec describes the projection of a join/aggregation query.
type IntoSpec struct {
	Terms   []IntoTerm
	GroupBy []string
	OrderBy []OrderTerm
}

// IntoTerm is one projected column: a plain reference, or an aggregate
// function applied to one.
type IntoTerm struct {
	Alias string
	Ref   string
	Agg   string // "" | "sum" | "count" | "avg" | "min" | "max"
}

// OrderTerm is one ORDER BY term.
type OrderTerm struct {
	Ref  string
	Desc bool
}

// WhereClause is a post-join filter condition.
type WhereClause struct {
	Ref   string
	Value any
}

// TxnID is an opaque resolver-assigned transaction handle.
type TxnID string

// Resolver is the contract every storage/service backend implements
// (spec.md §4.3). All operations are given ctx for cancellation/timeout
// (spec.md §5) and carry an explicit TxnID once one has been started.
type Resolver interface {
	Name() string

	StartTransaction(ctx context.Context) (TxnID, error)
	CommitTransaction(ctx context.Context, txn TxnID) error
	RollbackTransaction(ctx context.Context, txn TxnID) error

	CreateInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance) (*model.Instance, error)
	UpsertInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance) (*model.Instance, error)
	UpdateInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, newAttrs *model.Attrs) (*model.Instance, error)

	QueryInstances(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, queryAll bool) ([]*model.Instance, error)
	QueryChildInstances(ctx context.Context, txn TxnID, auth AuthInfo, parentPath model.Path, inst *model.Instance) ([]*model.Instance, error)
	QueryConnectedInstances(ctx context.Context, txn TxnID, auth AuthInfo, rel *model.Relationship, connected *model.Instance, inst *model.Instance) ([]*model.Instance, error)
	QueryByJoin(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, joins []JoinClause, into IntoSpec, distinct bool, where []WhereClause) ([]map[string]any, error)

	DeleteInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, purge bool) ([]*model.Instance, error)
	ConnectInstances(ctx context.Context, txn TxnID, auth AuthInfo, a, b *model.Instance, rel *model.Relationship, orUpdate bool) (*model.Instance, error)

	FullTextSearch(ctx context.Context, txn TxnID, auth AuthInfo, module, entry, searchText string, opts map[string]any) ([]*model.Instance, error)
}
