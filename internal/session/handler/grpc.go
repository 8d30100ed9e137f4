package handler

import (
	"context"

	sessionv1 "github.com/Reyansh-Niranjan/CogniSecure/api/session/v1"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/platform/grpcerr"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/server/interceptors"
)

// Logouter ends the session identified by a token.
type Logouter interface {
	Logout(ctx context.Context, token string) error
}

// Server implements SessionService for session lifecycle.
type Server struct {
	gw Logouter
}

// NewServer returns a new Session gRPC server.
func NewServer(gw Logouter) *Server {
	return &Server{gw: gw}
}

// Logout revokes the caller's own session. Logging out an unknown or already revoked session succeeds.
func (s *Server) Logout(ctx context.Context, _ *sessionv1.LogoutRequest) (*sessionv1.LogoutResponse, error) {
	token, _ := interceptors.GetSessionToken(ctx)
	if err := s.gw.Logout(ctx, token); err != nil {
		return nil, grpcerr.FromError(ctx, err)
	}
	return &sessionv1.LogoutResponse{}, nil
}
