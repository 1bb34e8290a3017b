// Package graphrpc exposes resolver runs over gRPC (spec §9 domain
// stack): a Resolve RPC taking a serialized catalog document, feature
// list, and remap rules, returning a request ID and the dependency order.
// The response does not carry a graph export.
//
// The teacher's engine module RPCs (cmd/engine-module-server,
// cmd/engine-module-client) are generated from .proto files via
// protoc-gen-go-grpc, but no .proto or generated .pb.go file exists
// anywhere in this module's reference corpus to regenerate from.
// Fabricating hand-written "generated" code would misrepresent itself
// as protoc output without the wire-format guarantees that tooling
// provides, so this package instead hand-writes the grpc.ServiceDesc
// protoc-gen-go-grpc itself would emit, carrying
// google.golang.org/protobuf/types/known/structpb.Struct payloads — a
// real, stable proto.Message from the protobuf module already in the
// dependency graph, just not a custom-compiled one.
package graphrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName = "resourcegraph.GraphService"
	resolveName = "/resourcegraph.GraphService/Resolve"
)

// Server is the service implementation contract, analogous to a
// protoc-gen-go-grpc UnimplementedGraphServiceServer's embedding
// interface.
type Server interface {
	Resolve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc is the hand-wired equivalent of what protoc-gen-go-grpc
// would generate for a single-method GraphService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Resolve",
			Handler:    resolveHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "graphrpc/service.proto",
}

func resolveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).Resolve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: resolveName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).Resolve(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterServer registers srv against s using ServiceDesc, mirroring
// the generated RegisterXxxServer functions protoc-gen-go-grpc emits.
func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client is the client-side contract, analogous to a generated
// GraphServiceClient interface.
type Client interface {
	Resolve(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type client struct {
	cc grpc.ClientConnInterface
}

// NewClient builds a Client over an existing connection, mirroring a
// generated NewGraphServiceClient constructor.
func NewClient(cc grpc.ClientConnInterface) Client {
	return &client{cc: cc}
}

func (c *client) Resolve(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, resolveName, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
