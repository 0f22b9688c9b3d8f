package resolver

import (
	"context"
	"testing"

	"google.golang.org/grpc"

	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/resolverpb"
)

// loopbackClient implements resolverpb.ResolverServiceClient by calling a
// RemoteServer's methods directly, letting tests exercise the Remote/
// RemoteServer translation layer without a real network dial.
type loopbackClient struct {
	srv *RemoteServer
}

func (l *loopbackClient) StartTransaction(ctx context.Context, in *resolverpb.StartTransactionRequest, _ ...grpc.CallOption) (*resolverpb.StartTransactionResponse, error) {
	return l.srv.StartTransaction(ctx, in)
}
func (l *loopbackClient) CommitTransaction(ctx context.Context, in *resolverpb.CommitTransactionRequest, _ ...grpc.CallOption) (*resolverpb.CommitTransactionResponse, error) {
	return l.srv.CommitTransaction(ctx, in)
}
func (l *loopbackClient) RollbackTransaction(ctx context.Context, in *resolverpb.RollbackTransactionRequest, _ ...grpc.CallOption) (*resolverpb.RollbackTransactionResponse, error) {
	return l.srv.RollbackTransaction(ctx, in)
}
func (l *loopbackClient) CreateInstance(ctx context.Context, in *resolverpb.CreateInstanceRequest, _ ...grpc.CallOption) (*resolverpb.CreateInstanceResponse, error) {
	return l.srv.CreateInstance(ctx, in)
}
func (l *loopbackClient) UpsertInstance(ctx context.Context, in *resolverpb.UpsertInstanceRequest, _ ...grpc.CallOption) (*resolverpb.UpsertInstanceResponse, error) {
	return l.srv.UpsertInstance(ctx, in)
}
func (l *loopbackClient) UpdateInstance(ctx context.Context, in *resolverpb.UpdateInstanceRequest, _ ...grpc.CallOption) (*resolverpb.UpdateInstanceResponse, error) {
	return l.srv.UpdateInstance(ctx, in)
}
func (l *loopbackClient) QueryInstances(ctx context.Context, in *resolverpb.QueryInstancesRequest, _ ...grpc.CallOption) (*resolverpb.QueryInstancesResponse, error) {
	return l.srv.QueryInstances(ctx, in)
}
func (l *loopbackClient) QueryChildInstances(ctx context.Context, in *resolverpb.QueryChildInstancesRequest, _ ...grpc.CallOption) (*resolverpb.QueryChildInstancesResponse, error) {
	return l.srv.QueryChildInstances(ctx, in)
}
func (l *loopbackClient) QueryConnectedInstances(ctx context.Context, in *resolverpb.QueryConnectedInstancesRequest, _ ...grpc.CallOption) (*resolverpb.QueryConnectedInstancesResponse, error) {
	return l.srv.QueryConnectedInstances(ctx, in)
}
func (l *loopbackClient) QueryByJoin(ctx context.Context, in *resolverpb.QueryByJoinRequest, _ ...grpc.CallOption) (*resolverpb.QueryByJoinResponse, error) {
	return l.srv.QueryByJoin(ctx, in)
}
func (l *loopbackClient) DeleteInstance(ctx context.Context, in *resolverpb.DeleteInstanceRequest, _ ...grpc.CallOption) (*resolverpb.DeleteInstanceResponse, error) {
	return l.srv.DeleteInstance(ctx, in)
}
func (l *loopbackClient) ConnectInstances(ctx context.Context, in *resolverpb.ConnectInstancesRequest, _ ...grpc.CallOption) (*resolverpb.ConnectInstancesResponse, error) {
	return l.srv.ConnectInstances(ctx, in)
}
func (l *loopbackClient) FullTextSearch(ctx context.Context, in *resolverpb.FullTextSearchRequest, _ ...grpc.CallOption) (*resolverpb.FullTextSearchResponse, error) {
	return l.srv.FullTextSearch(ctx, in)
}

var _ resolverpb.ResolverServiceClient = (*loopbackClient)(nil)

func TestInstanceRoundTripsThroughWireMessage(t *testing.T) {
	inst := model.NewQueryInstance("IT", "Widget",
		map[string]any{"name": "gizmo"},
		map[string]any{"__id__": "w1"},
		map[string]model.QueryOp{"__id__": model.OpEq},
	)
	inst.AuthContext = "u1"

	msg := instanceToMsg(inst)
	back, err := msgToInstance(msg)
	if err != nil {
		t.Fatalf("msgToInstance: %v", err)
	}

	if back.Module != inst.Module || back.Entry != inst.Entry {
		t.Fatalf("module/entry did not round-trip: %+v", back)
	}
	if back.AuthContext != "u1" {
		t.Fatalf("expected AuthContext to round-trip, got %q", back.AuthContext)
	}
	v, ok := back.Attributes.Get("name")
	if !ok || v != "gizmo" {
		t.Fatalf("expected attribute name=gizmo to round-trip, got %v, %v", v, ok)
	}
	qv, ok := back.QueryAttributes.Get("__id__")
	if !ok || qv != "w1" {
		t.Fatalf("expected query attribute __id__=w1 to round-trip, got %v, %v", qv, ok)
	}
	if back.QueryOps["__id__"] != model.OpEq {
		t.Fatalf("expected query op to round-trip, got %v", back.QueryOps)
	}
}

func TestRelationshipRoundTripsThroughWireMessage(t *testing.T) {
	rel := &model.Relationship{
		Module:      "IT",
		Name:        "WidgetParts",
		Kind:        model.Between,
		From:        "Widget",
		To:          "Part",
		Cardinality: model.ManyMany,
	}
	back := msgToRel(relToMsg(rel))
	if back.Module != rel.Module || back.Name != rel.Name || back.Kind != rel.Kind ||
		back.From != rel.From || back.To != rel.To || back.Cardinality != rel.Cardinality {
		t.Fatalf("relationship did not round-trip: %+v", back)
	}
	if back.RefColumn() != rel.RefColumn() {
		t.Fatalf("expected RefColumn to agree after round-trip, got %q vs %q", back.RefColumn(), rel.RefColumn())
	}
}

// TestRemoteServerDelegatesToBackend exercises RemoteServer directly
// (skipping an actual gRPC dial) against a Memory backend, confirming the
// wire-message translation layer preserves CRUD semantics end to end.
func TestRemoteServerDelegatesToBackend(t *testing.T) {
	backend := NewMemory()
	srv := NewRemoteServer(backend)
	ctx := context.Background()

	client := &Remote{name: "in-process", client: &loopbackClient{srv: srv}}

	inst := model.NewInstance("IT", "Widget", map[string]any{"__id__": "w1", "name": "gizmo"})
	created, err := client.CreateInstance(ctx, "", AuthInfo{}, inst)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	if created.Module != "IT" || created.Entry != "Widget" {
		t.Fatalf("unexpected created instance: %+v", created)
	}

	query := model.NewQueryInstance("IT", "Widget", nil, map[string]any{"__id__": "w1"}, map[string]model.QueryOp{"__id__": model.OpEq})
	rows, err := client.QueryInstances(ctx, "", AuthInfo{}, query, false)
	if err != nil {
		t.Fatalf("QueryInstances: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	deleted, err := client.DeleteInstance(ctx, "", AuthInfo{}, query, true)
	if err != nil {
		t.Fatalf("DeleteInstance: %v", err)
	}
	if len(deleted) != 1 {
		t.Fatalf("expected 1 deleted row, got %d", len(deleted))
	}
}
