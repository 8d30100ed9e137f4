package interceptors

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingUnary returns a unary server interceptor that writes one structured log line per RPC.
// skipMethods is the set of full method names to not log (e.g. health checks).
func LoggingUnary(log zerolog.Logger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if skipMethods[info.FullMethod] {
			return resp, err
		}
		code := status.Code(err)
		ev := log.Info()
		switch code {
		case codes.OK, codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied,
			codes.ResourceExhausted, codes.NotFound:
		default:
			ev = log.Warn()
		}
		ev.Str("method", info.FullMethod).
			Str("code", code.String()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("client_ip", ClientIP(ctx)).
			Msg("grpc request")
		return resp, err
	}
}
