package handler

import (
	"context"

	adminv1 "github.com/Reyansh-Niranjan/CogniSecure/api/admin/v1"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/gateway"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/platform/grpcerr"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/server/interceptors"
)

// OfficerAdmin is the subset of *gateway.Gateway used by the admin service.
type OfficerAdmin interface {
	SetOfficerActive(ctx context.Context, req gateway.SetOfficerActiveRequest) error
}

// Server implements AdminService for officer account management.
type Server struct {
	gw OfficerAdmin
}

// NewServer returns a new Admin gRPC server.
func NewServer(gw OfficerAdmin) *Server {
	return &Server{gw: gw}
}

// SetOfficerActive activates or deactivates an officer. Deactivation revokes the officer's sessions.
func (s *Server) SetOfficerActive(ctx context.Context, req *adminv1.SetOfficerActiveRequest) (*adminv1.SetOfficerActiveResponse, error) {
	token, _ := interceptors.GetSessionToken(ctx)
	err := s.gw.SetOfficerActive(ctx, gateway.SetOfficerActiveRequest{
		SessionToken: token,
		OfficerID:    req.OfficerId,
		Active:       req.Active,
	})
	if err != nil {
		return nil, grpcerr.FromError(ctx, err)
	}
	return &adminv1.SetOfficerActiveResponse{OfficerId: req.OfficerId, Active: req.Active}, nil
}
