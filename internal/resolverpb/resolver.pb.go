// Code generated manually for bootstrap. Replace with protoc-generated code
// for production.
//
// resolverpb carries the resolver.Resolver contract (spec.md §4.3) across a
// process boundary, the wire protocol for spec.md §5's RemoteResolver. It
// follows the teacher's own hand-rolled service pattern: plain structs with
// protobuf-shaped field tags, a client stub wrapping grpc.ClientConnInterface
// via cc.Invoke, and a grpc.ServiceDesc wiring method names to handlers.
//
// model.Instance carries dynamically-typed attributes rather than fixed
// proto fields, so InstanceMsg represents Attributes/QueryAttributes/
// QueryOps as JSON-encoded byte blobs instead of per-entity message types.
package resolverpb

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
)

// InstanceMsg is the wire form of model.Instance.
type InstanceMsg struct {
	Module          string `protobuf:"bytes,1,opt,name=module,proto3" json:"module,omitempty"`
	Entry           string `protobuf:"bytes,2,opt,name=entry,proto3" json:"entry,omitempty"`
	AttrsJson       []byte `protobuf:"bytes,3,opt,name=attrs_json,json=attrsJson,proto3" json:"attrs_json,omitempty"`
	QueryAttrsJson  []byte `protobuf:"bytes,4,opt,name=query_attrs_json,json=queryAttrsJson,proto3" json:"query_attrs_json,omitempty"`
	QueryOpsJson    []byte `protobuf:"bytes,5,opt,name=query_ops_json,json=queryOpsJson,proto3" json:"query_ops_json,omitempty"`
	QueryAll        bool   `protobuf:"varint,6,opt,name=query_all,json=queryAll,proto3" json:"query_all,omitempty"`
	AuthContext     string `protobuf:"bytes,7,opt,name=auth_context,json=authContext,proto3" json:"auth_context,omitempty"`
}

// AuthInfoMsg is the wire form of resolver.AuthInfo.
type AuthInfoMsg struct {
	UserId        string `protobuf:"bytes,1,opt,name=user_id,json=userId,proto3" json:"user_id,omitempty"`
	ReadForUpdate bool   `protobuf:"varint,2,opt,name=read_for_update,json=readForUpdate,proto3" json:"read_for_update,omitempty"`
	ReadForDelete bool   `protobuf:"varint,3,opt,name=read_for_delete,json=readForDelete,proto3" json:"read_for_delete,omitempty"`
}

// RelationshipMsg is the wire form of model.Relationship. Only the fields a
// resolver needs to act (Module/Name identify it; Kind/From/To/Cardinality
// let the server reconstruct enough of the struct to call RefColumn and
// LinkOwnsRef) cross the wire.
type RelationshipMsg struct {
	Module      string `protobuf:"bytes,1,opt,name=module,proto3" json:"module,omitempty"`
	Name        string `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Kind        string `protobuf:"bytes,3,opt,name=kind,proto3" json:"kind,omitempty"`
	From        string `protobuf:"bytes,4,opt,name=from,proto3" json:"from,omitempty"`
	To          string `protobuf:"bytes,5,opt,name=to,proto3" json:"to,omitempty"`
	Cardinality string `protobuf:"bytes,6,opt,name=cardinality,proto3" json:"cardinality,omitempty"`
}

// JoinClauseMsg is the wire form of resolver.JoinClause.
type JoinClauseMsg struct {
	Kind       string `protobuf:"bytes,1,opt,name=kind,proto3" json:"kind,omitempty"`
	Module     string `protobuf:"bytes,2,opt,name=module,proto3" json:"module,omitempty"`
	Entry      string `protobuf:"bytes,3,opt,name=entry,proto3" json:"entry,omitempty"`
	LocalAttr  string `protobuf:"bytes,4,opt,name=local_attr,json=localAttr,proto3" json:"local_attr,omitempty"`
	RemoteAttr string `protobuf:"bytes,5,opt,name=remote_attr,json=remoteAttr,proto3" json:"remote_attr,omitempty"`
}

// IntoTermMsg is the wire form of resolver.IntoTerm.
type IntoTermMsg struct {
	Alias string `protobuf:"bytes,1,opt,name=alias,proto3" json:"alias,omitempty"`
	Ref   string `protobuf:"bytes,2,opt,name=ref,proto3" json:"ref,omitempty"`
	Agg   string `protobuf:"bytes,3,opt,name=agg,proto3" json:"agg,omitempty"`
}

// OrderTermMsg is the wire form of resolver.OrderTerm.
type OrderTermMsg struct {
	Ref  string `protobuf:"bytes,1,opt,name=ref,proto3" json:"ref,omitempty"`
	Desc bool   `protobuf:"varint,2,opt,name=desc,proto3" json:"desc,omitempty"`
}

// WhereClauseMsg is the wire form of resolver.WhereClause; Value is carried
// JSON-encoded since it is an arbitrary comparison literal.
type WhereClauseMsg struct {
	Ref       string `protobuf:"bytes,1,opt,name=ref,proto3" json:"ref,omitempty"`
	ValueJson []byte `protobuf:"bytes,2,opt,name=value_json,json=valueJson,proto3" json:"value_json,omitempty"`
}

// IntoSpecMsg is the wire form of resolver.IntoSpec.
type IntoSpecMsg struct {
	Terms   []*IntoTermMsg  `protobuf:"bytes,1,rep,name=terms,proto3" json:"terms,omitempty"`
	GroupBy []string        `protobuf:"bytes,2,rep,name=group_by,json=groupBy,proto3" json:"group_by,omitempty"`
	OrderBy []*OrderTermMsg `protobuf:"bytes,3,rep,name=order_by,json=orderBy,proto3" json:"order_by,omitempty"`
}

type StartTransactionRequest struct{}
type StartTransactionResponse struct {
	TxnId string `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
}

type CommitTransactionRequest struct {
	TxnId string `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
}
type CommitTransactionResponse struct{}

type RollbackTransactionRequest struct {
	TxnId string `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
}
type RollbackTransactionResponse struct{}

type CreateInstanceRequest struct {
	TxnId    string       `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
	Auth     *AuthInfoMsg `protobuf:"bytes,2,opt,name=auth,proto3" json:"auth,omitempty"`
	Instance *InstanceMsg `protobuf:"bytes,3,opt,name=instance,proto3" json:"instance,omitempty"`
}
type CreateInstanceResponse struct {
	Instance *InstanceMsg `protobuf:"bytes,1,opt,name=instance,proto3" json:"instance,omitempty"`
}

type UpsertInstanceRequest struct {
	TxnId    string       `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
	Auth     *AuthInfoMsg `protobuf:"bytes,2,opt,name=auth,proto3" json:"auth,omitempty"`
	Instance *InstanceMsg `protobuf:"bytes,3,opt,name=instance,proto3" json:"instance,omitempty"`
}
type UpsertInstanceResponse struct {
	Instance *InstanceMsg `protobuf:"bytes,1,opt,name=instance,proto3" json:"instance,omitempty"`
}

type UpdateInstanceRequest struct {
	TxnId        string       `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
	Auth         *AuthInfoMsg `protobuf:"bytes,2,opt,name=auth,proto3" json:"auth,omitempty"`
	Instance     *InstanceMsg `protobuf:"bytes,3,opt,name=instance,proto3" json:"instance,omitempty"`
	NewAttrsJson []byte       `protobuf:"bytes,4,opt,name=new_attrs_json,json=newAttrsJson,proto3" json:"new_attrs_json,omitempty"`
}
type UpdateInstanceResponse struct {
	Instance *InstanceMsg `protobuf:"bytes,1,opt,name=instance,proto3" json:"instance,omitempty"`
}

type QueryInstancesRequest struct {
	TxnId    string       `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
	Auth     *AuthInfoMsg `protobuf:"bytes,2,opt,name=auth,proto3" json:"auth,omitempty"`
	Instance *InstanceMsg `protobuf:"bytes,3,opt,name=instance,proto3" json:"instance,omitempty"`
	QueryAll bool         `protobuf:"varint,4,opt,name=query_all,json=queryAll,proto3" json:"query_all,omitempty"`
}
type QueryInstancesResponse struct {
	Instances []*InstanceMsg `protobuf:"bytes,1,rep,name=instances,proto3" json:"instances,omitempty"`
}

type QueryChildInstancesRequest struct {
	TxnId      string       `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
	Auth       *AuthInfoMsg `protobuf:"bytes,2,opt,name=auth,proto3" json:"auth,omitempty"`
	ParentPath string       `protobuf:"bytes,3,opt,name=parent_path,json=parentPath,proto3" json:"parent_path,omitempty"`
	Instance   *InstanceMsg `protobuf:"bytes,4,opt,name=instance,proto3" json:"instance,omitempty"`
}
type QueryChildInstancesResponse struct {
	Instances []*InstanceMsg `protobuf:"bytes,1,rep,name=instances,proto3" json:"instances,omitempty"`
}

type QueryConnectedInstancesRequest struct {
	TxnId        string           `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
	Auth         *AuthInfoMsg     `protobuf:"bytes,2,opt,name=auth,proto3" json:"auth,omitempty"`
	Relationship *RelationshipMsg `protobuf:"bytes,3,opt,name=relationship,proto3" json:"relationship,omitempty"`
	Connected    *InstanceMsg     `protobuf:"bytes,4,opt,name=connected,proto3" json:"connected,omitempty"`
	Instance     *InstanceMsg     `protobuf:"bytes,5,opt,name=instance,proto3" json:"instance,omitempty"`
}
type QueryConnectedInstancesResponse struct {
	Instances []*InstanceMsg `protobuf:"bytes,1,rep,name=instances,proto3" json:"instances,omitempty"`
}

type QueryByJoinRequest struct {
	TxnId    string            `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
	Auth     *AuthInfoMsg      `protobuf:"bytes,2,opt,name=auth,proto3" json:"auth,omitempty"`
	Instance *InstanceMsg      `protobuf:"bytes,3,opt,name=instance,proto3" json:"instance,omitempty"`
	Joins    []*JoinClauseMsg  `protobuf:"bytes,4,rep,name=joins,proto3" json:"joins,omitempty"`
	Into     *IntoSpecMsg      `protobuf:"bytes,5,opt,name=into,proto3" json:"into,omitempty"`
	Distinct bool              `protobuf:"varint,6,opt,name=distinct,proto3" json:"distinct,omitempty"`
	Where    []*WhereClauseMsg `protobuf:"bytes,7,rep,name=where,proto3" json:"where,omitempty"`
}
type QueryByJoinResponse struct {
	RowsJson []byte `protobuf:"bytes,1,opt,name=rows_json,json=rowsJson,proto3" json:"rows_json,omitempty"`
}

type DeleteInstanceRequest struct {
	TxnId    string       `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
	Auth     *AuthInfoMsg `protobuf:"bytes,2,opt,name=auth,proto3" json:"auth,omitempty"`
	Instance *InstanceMsg `protobuf:"bytes,3,opt,name=instance,proto3" json:"instance,omitempty"`
	Purge    bool         `protobuf:"varint,4,opt,name=purge,proto3" json:"purge,omitempty"`
}
type DeleteInstanceResponse struct {
	Instances []*InstanceMsg `protobuf:"bytes,1,rep,name=instances,proto3" json:"instances,omitempty"`
}

type ConnectInstancesRequest struct {
	TxnId        string           `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
	Auth         *AuthInfoMsg     `protobuf:"bytes,2,opt,name=auth,proto3" json:"auth,omitempty"`
	A            *InstanceMsg     `protobuf:"bytes,3,opt,name=a,proto3" json:"a,omitempty"`
	B            *InstanceMsg     `protobuf:"bytes,4,opt,name=b,proto3" json:"b,omitempty"`
	Relationship *RelationshipMsg `protobuf:"bytes,5,opt,name=relationship,proto3" json:"relationship,omitempty"`
	OrUpdate     bool             `protobuf:"varint,6,opt,name=or_update,json=orUpdate,proto3" json:"or_update,omitempty"`
}
type ConnectInstancesResponse struct {
	Instance *InstanceMsg `protobuf:"bytes,1,opt,name=instance,proto3" json:"instance,omitempty"`
}

type FullTextSearchRequest struct {
	TxnId      string       `protobuf:"bytes,1,opt,name=txn_id,json=txnId,proto3" json:"txn_id,omitempty"`
	Auth       *AuthInfoMsg `protobuf:"bytes,2,opt,name=auth,proto3" json:"auth,omitempty"`
	Module     string       `protobuf:"bytes,3,opt,name=module,proto3" json:"module,omitempty"`
	Entry      string       `protobuf:"bytes,4,opt,name=entry,proto3" json:"entry,omitempty"`
	SearchText string       `protobuf:"bytes,5,opt,name=search_text,json=searchText,proto3" json:"search_text,omitempty"`
	OptsJson   []byte       `protobuf:"bytes,6,opt,name=opts_json,json=optsJson,proto3" json:"opts_json,omitempty"`
}
type FullTextSearchResponse struct {
	Instances []*InstanceMsg `protobuf:"bytes,1,rep,name=instances,proto3" json:"instances,omitempty"`
}

// Client API

type ResolverServiceClient interface {
	StartTransaction(ctx context.Context, in *StartTransactionRequest, opts ...grpc.CallOption) (*StartTransactionResponse, error)
	CommitTransaction(ctx context.Context, in *CommitTransactionRequest, opts ...grpc.CallOption) (*CommitTransactionResponse, error)
	RollbackTransaction(ctx context.Context, in *RollbackTransactionRequest, opts ...grpc.CallOption) (*RollbackTransactionResponse, error)
	CreateInstance(ctx context.Context, in *CreateInstanceRequest, opts ...grpc.CallOption) (*CreateInstanceResponse, error)
	UpsertInstance(ctx context.Context, in *UpsertInstanceRequest, opts ...grpc.CallOption) (*UpsertInstanceResponse, error)
	UpdateInstance(ctx context.Context, in *UpdateInstanceRequest, opts ...grpc.CallOption) (*UpdateInstanceResponse, error)
	QueryInstances(ctx context.Context, in *QueryInstancesRequest, opts ...grpc.CallOption) (*QueryInstancesResponse, error)
	QueryChildInstances(ctx context.Context, in *QueryChildInstancesRequest, opts ...grpc.CallOption) (*QueryChildInstancesResponse, error)
	QueryConnectedInstances(ctx context.Context, in *QueryConnectedInstancesRequest, opts ...grpc.CallOption) (*QueryConnectedInstancesResponse, error)
	QueryByJoin(ctx context.Context, in *QueryByJoinRequest, opts ...grpc.CallOption) (*QueryByJoinResponse, error)
	DeleteInstance(ctx context.Context, in *DeleteInstanceRequest, opts ...grpc.CallOption) (*DeleteInstanceResponse, error)
	ConnectInstances(ctx context.Context, in *ConnectInstancesRequest, opts ...grpc.CallOption) (*ConnectInstancesResponse, error)
	FullTextSearch(ctx context.Context, in *FullTextSearchRequest, opts ...grpc.CallOption) (*FullTextSearchResponse, error)
}

type resolverServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewResolverServiceClient(cc grpc.ClientConnInterface) ResolverServiceClient {
	return &resolverServiceClient{cc}
}

func (c *resolverServiceClient) StartTransaction(ctx context.Context, in *StartTransactionRequest, opts ...grpc.CallOption) (*StartTransactionResponse, error) {
	out := new(StartTransactionResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/StartTransaction", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverServiceClient) CommitTransaction(ctx context.Context, in *CommitTransactionRequest, opts ...grpc.CallOption) (*CommitTransactionResponse, error) {
	out := new(CommitTransactionResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/CommitTransaction", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverServiceClient) RollbackTransaction(ctx context.Context, in *RollbackTransactionRequest, opts ...grpc.CallOption) (*RollbackTransactionResponse, error) {
	out := new(RollbackTransactionResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/RollbackTransaction", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverServiceClient) CreateInstance(ctx context.Context, in *CreateInstanceRequest, opts ...grpc.CallOption) (*CreateInstanceResponse, error) {
	out := new(CreateInstanceResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/CreateInstance", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverServiceClient) UpsertInstance(ctx context.Context, in *UpsertInstanceRequest, opts ...grpc.CallOption) (*UpsertInstanceResponse, error) {
	out := new(UpsertInstanceResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/UpsertInstance", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverServiceClient) UpdateInstance(ctx context.Context, in *UpdateInstanceRequest, opts ...grpc.CallOption) (*UpdateInstanceResponse, error) {
	out := new(UpdateInstanceResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/UpdateInstance", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverServiceClient) QueryInstances(ctx context.Context, in *QueryInstancesRequest, opts ...grpc.CallOption) (*QueryInstancesResponse, error) {
	out := new(QueryInstancesResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/QueryInstances", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverServiceClient) QueryChildInstances(ctx context.Context, in *QueryChildInstancesRequest, opts ...grpc.CallOption) (*QueryChildInstancesResponse, error) {
	out := new(QueryChildInstancesResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/QueryChildInstances", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverServiceClient) QueryConnectedInstances(ctx context.Context, in *QueryConnectedInstancesRequest, opts ...grpc.CallOption) (*QueryConnectedInstancesResponse, error) {
	out := new(QueryConnectedInstancesResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/QueryConnectedInstances", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverServiceClient) QueryByJoin(ctx context.Context, in *QueryByJoinRequest, opts ...grpc.CallOption) (*QueryByJoinResponse, error) {
	out := new(QueryByJoinResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/QueryByJoin", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverServiceClient) DeleteInstance(ctx context.Context, in *DeleteInstanceRequest, opts ...grpc.CallOption) (*DeleteInstanceResponse, error) {
	out := new(DeleteInstanceResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/DeleteInstance", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverServiceClient) ConnectInstances(ctx context.Context, in *ConnectInstancesRequest, opts ...grpc.CallOption) (*ConnectInstancesResponse, error) {
	out := new(ConnectInstancesResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/ConnectInstances", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverServiceClient) FullTextSearch(ctx context.Context, in *FullTextSearchRequest, opts ...grpc.CallOption) (*FullTextSearchResponse, error) {
	out := new(FullTextSearchResponse)
	if err := c.cc.Invoke(ctx, "/agentlang.ResolverService/FullTextSearch", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Server API

type ResolverServiceServer interface {
	StartTransaction(context.Context, *StartTransactionRequest) (*StartTransactionResponse, error)
	CommitTransaction(context.Context, *CommitTransactionRequest) (*CommitTransactionResponse, error)
	RollbackTransaction(context.Context, *RollbackTransactionRequest) (*RollbackTransactionResponse, error)
	CreateInstance(context.Context, *CreateInstanceRequest) (*CreateInstanceResponse, error)
	UpsertInstance(context.Context, *UpsertInstanceRequest) (*UpsertInstanceResponse, error)
	UpdateInstance(context.Context, *UpdateInstanceRequest) (*UpdateInstanceResponse, error)
	QueryInstances(context.Context, *QueryInstancesRequest) (*QueryInstancesResponse, error)
	QueryChildInstances(context.Context, *QueryChildInstancesRequest) (*QueryChildInstancesResponse, error)
	QueryConnectedInstances(context.Context, *QueryConnectedInstancesRequest) (*QueryConnectedInstancesResponse, error)
	QueryByJoin(context.Context, *QueryByJoinRequest) (*QueryByJoinResponse, error)
	DeleteInstance(context.Context, *DeleteInstanceRequest) (*DeleteInstanceResponse, error)
	ConnectInstances(context.Context, *ConnectInstancesRequest) (*ConnectInstancesResponse, error)
	FullTextSearch(context.Context, *FullTextSearchRequest) (*FullTextSearchResponse, error)
}

type UnimplementedResolverServiceServer struct{}

func (*UnimplementedResolverServiceServer) StartTransaction(context.Context, *StartTransactionRequest) (*StartTransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method StartTransaction not implemented")
}
func (*UnimplementedResolverServiceServer) CommitTransaction(context.Context, *CommitTransactionRequest) (*CommitTransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CommitTransaction not implemented")
}
func (*UnimplementedResolverServiceServer) RollbackTransaction(context.Context, *RollbackTransactionRequest) (*RollbackTransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RollbackTransaction not implemented")
}
func (*UnimplementedResolverServiceServer) CreateInstance(context.Context, *CreateInstanceRequest) (*CreateInstanceResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateInstance not implemented")
}
func (*UnimplementedResolverServiceServer) UpsertInstance(context.Context, *UpsertInstanceRequest) (*UpsertInstanceResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UpsertInstance not implemented")
}
func (*UnimplementedResolverServiceServer) UpdateInstance(context.Context, *UpdateInstanceRequest) (*UpdateInstanceResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UpdateInstance not implemented")
}
func (*UnimplementedResolverServiceServer) QueryInstances(context.Context, *QueryInstancesRequest) (*QueryInstancesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method QueryInstances not implemented")
}
func (*UnimplementedResolverServiceServer) QueryChildInstances(context.Context, *QueryChildInstancesRequest) (*QueryChildInstancesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method QueryChildInstances not implemented")
}
func (*UnimplementedResolverServiceServer) QueryConnectedInstances(context.Context, *QueryConnectedInstancesRequest) (*QueryConnectedInstancesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method QueryConnectedInstances not implemented")
}
func (*UnimplementedResolverServiceServer) QueryByJoin(context.Context, *QueryByJoinRequest) (*QueryByJoinResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method QueryByJoin not implemented")
}
func (*UnimplementedResolverServiceServer) DeleteInstance(context.Context, *DeleteInstanceRequest) (*DeleteInstanceResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeleteInstance not implemented")
}
func (*UnimplementedResolverServiceServer) ConnectInstances(context.Context, *ConnectInstancesRequest) (*ConnectInstancesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ConnectInstances not implemented")
}
func (*UnimplementedResolverServiceServer) FullTextSearch(context.Context, *FullTextSearchRequest) (*FullTextSearchResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method FullTextSearch not implemented")
}

func RegisterResolverServiceServer(s *grpc.Server, srv ResolverServiceServer) {
	s.RegisterService(&_ResolverService_serviceDesc, srv)
}

func _ResolverService_StartTransaction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StartTransactionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).StartTransaction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/StartTransaction"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).StartTransaction(ctx, req.(*StartTransactionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ResolverService_CommitTransaction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CommitTransactionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).CommitTransaction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/CommitTransaction"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).CommitTransaction(ctx, req.(*CommitTransactionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ResolverService_RollbackTransaction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RollbackTransactionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).RollbackTransaction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/RollbackTransaction"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).RollbackTransaction(ctx, req.(*RollbackTransactionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ResolverService_CreateInstance_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateInstanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).CreateInstance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/CreateInstance"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).CreateInstance(ctx, req.(*CreateInstanceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ResolverService_UpsertInstance_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpsertInstanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).UpsertInstance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/UpsertInstance"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).UpsertInstance(ctx, req.(*UpsertInstanceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ResolverService_UpdateInstance_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpdateInstanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).UpdateInstance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/UpdateInstance"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).UpdateInstance(ctx, req.(*UpdateInstanceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ResolverService_QueryInstances_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QueryInstancesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).QueryInstances(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/QueryInstances"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).QueryInstances(ctx, req.(*QueryInstancesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ResolverService_QueryChildInstances_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QueryChildInstancesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).QueryChildInstances(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/QueryChildInstances"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).QueryChildInstances(ctx, req.(*QueryChildInstancesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ResolverService_QueryConnectedInstances_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QueryConnectedInstancesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).QueryConnectedInstances(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/QueryConnectedInstances"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).QueryConnectedInstances(ctx, req.(*QueryConnectedInstancesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ResolverService_QueryByJoin_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QueryByJoinRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).QueryByJoin(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/QueryByJoin"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).QueryByJoin(ctx, req.(*QueryByJoinRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ResolverService_DeleteInstance_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DeleteInstanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).DeleteInstance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/DeleteInstance"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).DeleteInstance(ctx, req.(*DeleteInstanceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ResolverService_ConnectInstances_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ConnectInstancesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).ConnectInstances(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/ConnectInstances"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).ConnectInstances(ctx, req.(*ConnectInstancesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ResolverService_FullTextSearch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(FullTextSearchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServiceServer).FullTextSearch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/agentlang.ResolverService/FullTextSearch"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServiceServer).FullTextSearch(ctx, req.(*FullTextSearchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var _ResolverService_serviceDesc = grpc.ServiceDesc{
	ServiceName: "agentlang.ResolverService",
	HandlerType: (*ResolverServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StartTransaction", Handler: _ResolverService_StartTransaction_Handler},
		{MethodName: "CommitTransaction", Handler: _ResolverService_CommitTransaction_Handler},
		{MethodName: "RollbackTransaction", Handler: _ResolverService_RollbackTransaction_Handler},
		{MethodName: "CreateInstance", Handler: _ResolverService_CreateInstance_Handler},
		{MethodName: "UpsertInstance", Handler: _ResolverService_UpsertInstance_Handler},
		{MethodName: "UpdateInstance", Handler: _ResolverService_UpdateInstance_Handler},
		{MethodName: "QueryInstances", Handler: _ResolverService_QueryInstances_Handler},
		{MethodName: "QueryChildInstances", Handler: _ResolverService_QueryChildInstances_Handler},
		{MethodName: "QueryConnectedInstances", Handler: _ResolverService_QueryConnectedInstances_Handler},
		{MethodName: "QueryByJoin", Handler: _ResolverService_QueryByJoin_Handler},
		{MethodName: "DeleteInstance", Handler: _ResolverService_DeleteInstance_Handler},
		{MethodName: "ConnectInstances", Handler: _ResolverService_ConnectInstances_Handler},
		{MethodName: "FullTextSearch", Handler: _ResolverService_FullTextSearch_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "resolver.proto",
}
