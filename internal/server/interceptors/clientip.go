package interceptors

import (
	"context"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

// ClientIPUnary resolves the caller's address once per RPC and stores it with WithClientIP.
// x-forwarded-for (first hop) and x-real-ip are honoured only when trustProxyHeaders is set, which is only
// correct when every request arrives through a proxy that overwrites those headers. Otherwise the
// transport peer is used, so a client cannot choose the address recorded in the audit log.
func ClientIPUnary(trustProxyHeaders bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if trustProxyHeaders {
			if ip := forwardedIP(ctx); ip != "" {
				return handler(WithClientIP(ctx, ip), req)
			}
		}
		return handler(WithClientIP(ctx, peerIP(ctx)), req)
	}
}

// ClientIP returns the address stored with WithClientIP, then the peer address. Returns "unknown" if
// neither is available.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return peerIP(ctx)
}

func forwardedIP(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get("x-forwarded-for"); len(vals) > 0 {
		s := vals[0]
		if i := strings.Index(s, ","); i >= 0 {
			s = s[:i]
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	if vals := md.Get("x-real-ip"); len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

func peerIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
		return host
	}
	return p.Addr.String()
}
