package rpc

import (
	"context"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/classic/internal/observability/metrics"
)

// UnaryServerInterceptor records request counts, errors and latency for
// unary gRPC handlers.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		_, method := splitMethod(info.FullMethod)
		method = strings.ToLower(method)
		kind := ""
		if in, ok := req.(*structpb.Struct); ok {
			kind = stringField(in, "cipher")
		}

		resp, err := handler(ctx, req)
		code := status.Code(err).String()
		metrics.RecordRequest("grpc", kind, method)
		metrics.ObserveRequestLatency("grpc", method, code, time.Since(start))
		if err != nil {
			metrics.RecordError("grpc", kind, method, code)
		}
		return resp, err
	}
}

func splitMethod(full string) (string, string) {
	full = strings.TrimPrefix(full, "/")
	parts := strings.Split(full, "/")
	if len(parts) != 2 {
		return full, ""
	}
	return parts[0], parts[1]
}
