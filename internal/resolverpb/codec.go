package resolverpb

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec marshals the plain structs in this package over the wire. The
// request/response types here are hand-rolled rather than protoc-generated,
// so they do not implement proto.Message and cannot ride grpc-go's default
// codec; registering a named codec is the documented extension point for
// exactly this case.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return Name
}

// Name is the codec name clients and servers in this package must dial/serve
// with, via grpc.WithDefaultCallOptions(grpc.CallContentSubtype(Name)) or the
// server-side grpc.CustomCodec equivalent of registering the codec globally.
const Name = "agentlang-json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
