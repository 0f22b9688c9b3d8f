package resolver

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/resolverpb"
)

// Remote is a Resolver that delegates every call over gRPC to a peer
// running a ResolverServiceServer (spec.md §4.3's RemoteResolver), via the
// hand-rolled wire protocol in internal/resolverpb.
type Remote struct {
	name   string
	client resolverpb.ResolverServiceClient
}

// NewRemote wraps an already-dialed gRPC connection. Callers should dial
// with grpc.WithDefaultCallOptions(grpc.CallContentSubtype(resolverpb.Name))
// so calls ride the package's JSON codec.
func NewRemote(name string, cc grpc.ClientConnInterface) *Remote {
	return &Remote{name: name, client: resolverpb.NewResolverServiceClient(cc)}
}

func (r *Remote) Name() string { return r.name }

func (r *Remote) unavailable(err error) error {
	if err == nil {
		return nil
	}
	return agerrors.NewResolverUnavailable(r.name, err)
}

func (r *Remote) StartTransaction(ctx context.Context) (TxnID, error) {
	resp, err := r.client.StartTransaction(ctx, &resolverpb.StartTransactionRequest{})
	if err != nil {
		return "", r.unavailable(err)
	}
	return TxnID(resp.TxnId), nil
}

func (r *Remote) CommitTransaction(ctx context.Context, txn TxnID) error {
	_, err := r.client.CommitTransaction(ctx, &resolverpb.CommitTransactionRequest{TxnId: string(txn)})
	return r.unavailable(err)
}

func (r *Remote) RollbackTransaction(ctx context.Context, txn TxnID) error {
	_, err := r.client.RollbackTransaction(ctx, &resolverpb.RollbackTransactionRequest{TxnId: string(txn)})
	return r.unavailable(err)
}

func (r *Remote) CreateInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance) (*model.Instance, error) {
	req := &resolverpb.CreateInstanceRequest{
		TxnId:    string(txn),
		Auth:     authToMsg(auth),
		Instance: instanceToMsg(inst),
	}
	resp, err := r.client.CreateInstance(ctx, req)
	if err != nil {
		return nil, r.unavailable(err)
	}
	return msgToInstance(resp.Instance)
}

func (r *Remote) UpsertInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance) (*model.Instance, error) {
	req := &resolverpb.UpsertInstanceRequest{
		TxnId:    string(txn),
		Auth:     authToMsg(auth),
		Instance: instanceToMsg(inst),
	}
	resp, err := r.client.UpsertInstance(ctx, req)
	if err != nil {
		return nil, r.unavailable(err)
	}
	return msgToInstance(resp.Instance)
}

func (r *Remote) UpdateInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, newAttrs *model.Attrs) (*model.Instance, error) {
	attrsJSON, err := json.Marshal(newAttrs.Map())
	if err != nil {
		return nil, agerrors.NewValidationError("encode new attrs: " + err.Error())
	}
	req := &resolverpb.UpdateInstanceRequest{
		TxnId:        string(txn),
		Auth:         authToMsg(auth),
		Instance:     instanceToMsg(inst),
		NewAttrsJson: attrsJSON,
	}
	resp, err := r.client.UpdateInstance(ctx, req)
	if err != nil {
		return nil, r.unavailable(err)
	}
	return msgToInstance(resp.Instance)
}

func (r *Remote) QueryInstances(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, queryAll bool) ([]*model.Instance, error) {
	req := &resolverpb.QueryInstancesRequest{
		TxnId:    string(txn),
		Auth:     authToMsg(auth),
		Instance: instanceToMsg(inst),
		QueryAll: queryAll,
	}
	resp, err := r.client.QueryInstances(ctx, req)
	if err != nil {
		return nil, r.unavailable(err)
	}
	return msgsToInstances(resp.Instances)
}

func (r *Remote) QueryChildInstances(ctx context.Context, txn TxnID, auth AuthInfo, parentPath model.Path, inst *model.Instance) ([]*model.Instance, error) {
	req := &resolverpb.QueryChildInstancesRequest{
		TxnId:      string(txn),
		Auth:       authToMsg(auth),
		ParentPath: string(parentPath),
		Instance:   instanceToMsg(inst),
	}
	resp, err := r.client.QueryChildInstances(ctx, req)
	if err != nil {
		return nil, r.unavailable(err)
	}
	return msgsToInstances(resp.Instances)
}

func (r *Remote) QueryConnectedInstances(ctx context.Context, txn TxnID, auth AuthInfo, rel *model.Relationship, connected *model.Instance, inst *model.Instance) ([]*model.Instance, error) {
	req := &resolverpb.QueryConnectedInstancesRequest{
		TxnId:        string(txn),
		Auth:         authToMsg(auth),
		Relationship: relToMsg(rel),
		Connected:    instanceToMsg(connected),
		Instance:     instanceToMsg(inst),
	}
	resp, err := r.client.QueryConnectedInstances(ctx, req)
	if err != nil {
		return nil, r.unavailable(err)
	}
	return msgsToInstances(resp.Instances)
}

func (r *Remote) QueryByJoin(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, joins []JoinClause, into IntoSpec, distinct bool, where []WhereClause) ([]map[string]any, error) {
	req := &resolverpb.QueryByJoinRequest{
		TxnId:    string(txn),
		Auth:     authToMsg(auth),
		Instance: instanceToMsg(inst),
		Joins:    joinsToMsg(joins),
		Into:     intoToMsg(into),
		Distinct: distinct,
	}
	for _, w := range where {
		valueJSON, err := json.Marshal(w.Value)
		if err != nil {
			return nil, agerrors.NewValidationError("encode where value: " + err.Error())
		}
		req.Where = append(req.Where, &resolverpb.WhereClauseMsg{Ref: w.Ref, ValueJson: valueJSON})
	}
	resp, err := r.client.QueryByJoin(ctx, req)
	if err != nil {
		return nil, r.unavailable(err)
	}
	var rows []map[string]any
	if len(resp.RowsJson) > 0 {
		if err := json.Unmarshal(resp.RowsJson, &rows); err != nil {
			return nil, agerrors.NewValidationError("decode join rows: " + err.Error())
		}
	}
	return rows, nil
}

func (r *Remote) DeleteInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, purge bool) ([]*model.Instance, error) {
	req := &resolverpb.DeleteInstanceRequest{
		TxnId:    string(txn),
		Auth:     authToMsg(auth),
		Instance: instanceToMsg(inst),
		Purge:    purge,
	}
	resp, err := r.client.DeleteInstance(ctx, req)
	if err != nil {
		return nil, r.unavailable(err)
	}
	return msgsToInstances(resp.Instances)
}

func (r *Remote) ConnectInstances(ctx context.Context, txn TxnID, auth AuthInfo, a, b *model.Instance, rel *model.Relationship, orUpdate bool) (*model.Instance, error) {
	req := &resolverpb.ConnectInstancesRequest{
		TxnId:        string(txn),
		Auth:         authToMsg(auth),
		A:            instanceToMsg(a),
		B:            instanceToMsg(b),
		Relationship: relToMsg(rel),
		OrUpdate:     orUpdate,
	}
	resp, err := r.client.ConnectInstances(ctx, req)
	if err != nil {
		return nil, r.unavailable(err)
	}
	return msgToInstance(resp.Instance)
}

func (r *Remote) FullTextSearch(ctx context.Context, txn TxnID, auth AuthInfo, module, entry, searchText string, opts map[string]any) ([]*model.Instance, error) {
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, agerrors.NewValidationError("encode search opts: " + err.Error())
	}
	req := &resolverpb.FullTextSearchRequest{
		TxnId:      string(txn),
		Auth:       authToMsg(auth),
		Module:     module,
		Entry:      entry,
		SearchText: searchText,
		OptsJson:   optsJSON,
	}
	resp, err := r.client.FullTextSearch(ctx, req)
	if err != nil {
		return nil, r.unavailable(err)
	}
	return msgsToInstances(resp.Instances)
}

var _ Resolver = (*Remote)(nil)
