package server

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	adminv1 "github.com/Reyansh-Niranjan/CogniSecure/api/admin/v1"
	assistantv1 "github.com/Reyansh-Niranjan/CogniSecure/api/assistant/v1"
	_ "github.com/Reyansh-Niranjan/CogniSecure/api/codec"
	sessionv1 "github.com/Reyansh-Niranjan/CogniSecure/api/session/v1"
	adminhandler "github.com/Reyansh-Niranjan/CogniSecure/internal/admin/handler"
	assistanthandler "github.com/Reyansh-Niranjan/CogniSecure/internal/assistant/handler"
	sessionhandler "github.com/Reyansh-Niranjan/CogniSecure/internal/session/handler"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/server/interceptors"
)

// Gateway is everything the gRPC services need from the query gateway.
type Gateway interface {
	assistanthandler.Gateway
	adminhandler.OfficerAdmin
	sessionhandler.Logouter
}

// Deps holds service dependencies for gRPC handlers.
type Deps struct {
	// Gateway serves assistant, session and admin RPCs.
	Gateway Gateway
	// Health is the standard health server, updated by the health checker. If nil, grpc.health.v1 is not registered.
	Health *health.Server
}

// PublicMethods need no bearer token.
var PublicMethods = map[string]bool{
	healthpb.Health_Check_FullMethodName: true,
	healthpb.Health_Watch_FullMethodName: true,
}

// NewGRPCServer builds a server with OpenTelemetry stats, client address resolution, bearer extraction
// and request logging. trustProxyHeaders is passed to interceptors.ClientIPUnary.
func NewGRPCServer(log zerolog.Logger, trustProxyHeaders bool, opts ...grpc.ServerOption) *grpc.Server {
	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.ClientIPUnary(trustProxyHeaders),
			interceptors.LoggingUnary(log, PublicMethods),
			interceptors.AuthUnary(PublicMethods),
		),
	}
	return grpc.NewServer(append(base, opts...)...)
}

// RegisterServices registers all gRPC services with the given server.
//
// Service → handler mapping:
//   - AssistantService → internal/assistant/handler
//   - SessionService   → internal/session/handler
//   - AdminService     → internal/admin/handler
//   - grpc.health.v1   → google.golang.org/grpc/health, fed by internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	assistantv1.RegisterAssistantServiceServer(s, assistanthandler.NewServer(deps.Gateway))
	sessionv1.RegisterSessionServiceServer(s, sessionhandler.NewServer(deps.Gateway))
	adminv1.RegisterAdminServiceServer(s, adminhandler.NewServer(deps.Gateway))
	if deps.Health != nil {
		healthpb.RegisterHealthServer(s, deps.Health)
	}
}
