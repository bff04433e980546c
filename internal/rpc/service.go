// Package rpc exposes the classic ciphers as the gRPC service
// classic.v1.Cipher. Requests and responses are google.protobuf.Struct
// messages so the service needs no generated code.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "classic.v1.Cipher"

// CipherServer is the server API for the classic.v1.Cipher service.
type CipherServer interface {
	Encode(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Decode(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Analyse(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Detect(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(CipherServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodHandler(name string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CipherServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CipherServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes classic.v1.Cipher for grpc.ServiceRegistrar.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CipherServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Encode", Handler: methodHandler("Encode", CipherServer.Encode)},
		{MethodName: "Decode", Handler: methodHandler("Decode", CipherServer.Decode)},
		{MethodName: "Analyse", Handler: methodHandler("Analyse", CipherServer.Analyse)},
		{MethodName: "Detect", Handler: methodHandler("Detect", CipherServer.Detect)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "classic/v1/cipher.proto",
}

// RegisterCipherServer registers srv with a gRPC server.
func RegisterCipherServer(s grpc.ServiceRegistrar, srv CipherServer) {
	s.RegisterService(&ServiceDesc, srv)
}
