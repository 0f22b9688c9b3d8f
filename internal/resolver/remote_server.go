package resolver

import (
	"context"

	"github.com/nucleus/agentlang/internal/resolverpb"
)

// RemoteServer adapts any concrete Resolver (Memory, Postgres) to the
// ResolverServiceServer contract, so it can be hosted behind a grpc.Server
// for a peer's Remote client to call into (spec.md §4.3's RemoteResolver,
// grounded on the teacher's pattern of wrapping a storage backend behind a
// generated service interface in its cmd/server entrypoint).
type RemoteServer struct {
	resolverpb.UnimplementedResolverServiceServer
	backend Resolver
}

// NewRemoteServer wraps backend for gRPC hosting.
func NewRemoteServer(backend Resolver) *RemoteServer {
	return &RemoteServer{backend: backend}
}

func (s *RemoteServer) StartTransaction(ctx context.Context, req *resolverpb.StartTransactionRequest) (*resolverpb.StartTransactionResponse, error) {
	txn, err := s.backend.StartTransaction(ctx)
	if err != nil {
		return nil, err
	}
	return &resolverpb.StartTransactionResponse{TxnId: string(txn)}, nil
}

func (s *RemoteServer) CommitTransaction(ctx context.Context, req *resolverpb.CommitTransactionRequest) (*resolverpb.CommitTransactionResponse, error) {
	if err := s.backend.CommitTransaction(ctx, TxnID(req.TxnId)); err != nil {
		return nil, err
	}
	return &resolverpb.CommitTransactionResponse{}, nil
}

func (s *RemoteServer) RollbackTransaction(ctx context.Context, req *resolverpb.RollbackTransactionRequest) (*resolverpb.RollbackTransactionResponse, error) {
	if err := s.backend.RollbackTransaction(ctx, TxnID(req.TxnId)); err != nil {
		return nil, err
	}
	return &resolverpb.RollbackTransactionResponse{}, nil
}

func (s *RemoteServer) CreateInstance(ctx context.Context, req *resolverpb.CreateInstanceRequest) (*resolverpb.CreateInstanceResponse, error) {
	inst, err := msgToInstance(req.Instance)
	if err != nil {
		return nil, err
	}
	out, err := s.backend.CreateInstance(ctx, TxnID(req.TxnId), msgToAuth(req.Auth), inst)
	if err != nil {
		return nil, err
	}
	return &resolverpb.CreateInstanceResponse{Instance: instanceToMsg(out)}, nil
}

func (s *RemoteServer) UpsertInstance(ctx context.Context, req *resolverpb.UpsertInstanceRequest) (*resolverpb.UpsertInstanceResponse, error) {
	inst, err := msgToInstance(req.Instance)
	if err != nil {
		return nil, err
	}
	out, err := s.backend.UpsertInstance(ctx, TxnID(req.TxnId), msgToAuth(req.Auth), inst)
	if err != nil {
		return nil, err
	}
	return &resolverpb.UpsertInstanceResponse{Instance: instanceToMsg(out)}, nil
}

func (s *RemoteServer) UpdateInstance(ctx context.Context, req *resolverpb.UpdateInstanceRequest) (*resolverpb.UpdateInstanceResponse, error) {
	inst, err := msgToInstance(req.Instance)
	if err != nil {
		return nil, err
	}
	newAttrs, err := decodeAttrsJSON(req.NewAttrsJson)
	if err != nil {
		return nil, err
	}
	out, err := s.backend.UpdateInstance(ctx, TxnID(req.TxnId), msgToAuth(req.Auth), inst, newAttrs)
	if err != nil {
		return nil, err
	}
	return &resolverpb.UpdateInstanceResponse{Instance: instanceToMsg(out)}, nil
}

func (s *RemoteServer) QueryInstances(ctx context.Context, req *resolverpb.QueryInstancesRequest) (*resolverpb.QueryInstancesResponse, error) {
	inst, err := msgToInstance(req.Instance)
	if err != nil {
		return nil, err
	}
	rows, err := s.backend.QueryInstances(ctx, TxnID(req.TxnId), msgToAuth(req.Auth), inst, req.QueryAll)
	if err != nil {
		return nil, err
	}
	return &resolverpb.QueryInstancesResponse{Instances: instancesToMsgs(rows)}, nil
}

func (s *RemoteServer) QueryChildInstances(ctx context.Context, req *resolverpb.QueryChildInstancesRequest) (*resolverpb.QueryChildInstancesResponse, error) {
	inst, err := msgToInstance(req.Instance)
	if err != nil {
		return nil, err
	}
	rows, err := s.backend.QueryChildInstances(ctx, TxnID(req.TxnId), msgToAuth(req.Auth), parentPathOf(req.ParentPath), inst)
	if err != nil {
		return nil, err
	}
	return &resolverpb.QueryChildInstancesResponse{Instances: instancesToMsgs(rows)}, nil
}

func (s *RemoteServer) QueryConnectedInstances(ctx context.Context, req *resolverpb.QueryConnectedInstancesRequest) (*resolverpb.QueryConnectedInstancesResponse, error) {
	connected, err := msgToInstance(req.Connected)
	if err != nil {
		return nil, err
	}
	inst, err := msgToInstance(req.Instance)
	if err != nil {
		return nil, err
	}
	rows, err := s.backend.QueryConnectedInstances(ctx, TxnID(req.TxnId), msgToAuth(req.Auth), msgToRel(req.Relationship), connected, inst)
	if err != nil {
		return nil, err
	}
	return &resolverpb.QueryConnectedInstancesResponse{Instances: instancesToMsgs(rows)}, nil
}

func (s *RemoteServer) QueryByJoin(ctx context.Context, req *resolverpb.QueryByJoinRequest) (*resolverpb.QueryByJoinResponse, error) {
	inst, err := msgToInstance(req.Instance)
	if err != nil {
		return nil, err
	}
	where, err := msgToWhere(req.Where)
	if err != nil {
		return nil, err
	}
	rows, err := s.backend.QueryByJoin(ctx, TxnID(req.TxnId), msgToAuth(req.Auth), inst, msgToJoins(req.Joins), msgToInto(req.Into), req.Distinct, where)
	if err != nil {
		return nil, err
	}
	rowsJSON, err := encodeRowsJSON(rows)
	if err != nil {
		return nil, err
	}
	return &resolverpb.QueryByJoinResponse{RowsJson: rowsJSON}, nil
}

func (s *RemoteServer) DeleteInstance(ctx context.Context, req *resolverpb.DeleteInstanceRequest) (*resolverpb.DeleteInstanceResponse, error) {
	inst, err := msgToInstance(req.Instance)
	if err != nil {
		return nil, err
	}
	rows, err := s.backend.DeleteInstance(ctx, TxnID(req.TxnId), msgToAuth(req.Auth), inst, req.Purge)
	if err != nil {
		return nil, err
	}
	return &resolverpb.DeleteInstanceResponse{Instances: instancesToMsgs(rows)}, nil
}

func (s *RemoteServer) ConnectInstances(ctx context.Context, req *resolverpb.ConnectInstancesRequest) (*resolverpb.ConnectInstancesResponse, error) {
	a, err := msgToInstance(req.A)
	if err != nil {
		return nil, err
	}
	b, err := msgToInstance(req.B)
	if err != nil {
		return nil, err
	}
	out, err := s.backend.ConnectInstances(ctx, TxnID(req.TxnId), msgToAuth(req.Auth), a, b, msgToRel(req.Relationship), req.OrUpdate)
	if err != nil {
		return nil, err
	}
	return &resolverpb.ConnectInstancesResponse{Instance: instanceToMsg(out)}, nil
}

func (s *RemoteServer) FullTextSearch(ctx context.Context, req *resolverpb.FullTextSearchRequest) (*resolverpb.FullTextSearchResponse, error) {
	opts, err := decodeOptsJSON(req.OptsJson)
	if err != nil {
		return nil, err
	}
	rows, err := s.backend.FullTextSearch(ctx, TxnID(req.TxnId), msgToAuth(req.Auth), req.Module, req.Entry, req.SearchText, opts)
	if err != nil {
		return nil, err
	}
	return &resolverpb.FullTextSearchResponse{Instances: instancesToMsgs(rows)}, nil
}

var _ resolverpb.ResolverServiceServer = (*RemoteServer)(nil)
