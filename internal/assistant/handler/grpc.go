package handler

import (
	"context"

	assistantv1 "github.com/Reyansh-Niranjan/CogniSecure/api/assistant/v1"
	auditdomain "github.com/Reyansh-Niranjan/CogniSecure/internal/audit/domain"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/gateway"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/platform/grpcerr"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/server/interceptors"
)

// Gateway is the subset of *gateway.Gateway used by the assistant service.
type Gateway interface {
	Query(ctx context.Context, req gateway.QueryRequest) (*gateway.QueryResult, error)
	RetryQuery(ctx context.Context, req gateway.RetryRequest) (*gateway.QueryResult, error)
	ListQueryLogs(ctx context.Context, req gateway.ListLogsRequest) (*gateway.LogPage, error)
}

// Server implements AssistantService on top of the query gateway.
type Server struct {
	gw Gateway
}

// NewServer returns a new Assistant gRPC server.
func NewServer(gw Gateway) *Server {
	return &Server{gw: gw}
}

// Query answers a question about the alerts listed in the request.
func (s *Server) Query(ctx context.Context, req *assistantv1.QueryRequest) (*assistantv1.QueryResponse, error) {
	token, _ := interceptors.GetSessionToken(ctx)
	res, err := s.gw.Query(ctx, gateway.QueryRequest{
		SessionToken:     token,
		Query:            req.Query,
		ContextRecordIDs: req.ContextRecordIds,
		ClientIP:         interceptors.ClientIP(ctx),
	})
	if err != nil {
		return nil, grpcerr.FromError(ctx, err)
	}
	return resultToProto(res), nil
}

// RetryQuery re-runs one of the caller's failed queries.
func (s *Server) RetryQuery(ctx context.Context, req *assistantv1.RetryQueryRequest) (*assistantv1.QueryResponse, error) {
	token, _ := interceptors.GetSessionToken(ctx)
	res, err := s.gw.RetryQuery(ctx, gateway.RetryRequest{
		SessionToken: token,
		EntryID:      req.EntryId,
		ClientIP:     interceptors.ClientIP(ctx),
	})
	if err != nil {
		return nil, grpcerr.FromError(ctx, err)
	}
	return resultToProto(res), nil
}

// ListQueryLogs returns a page of AI audit entries, newest first.
func (s *Server) ListQueryLogs(ctx context.Context, req *assistantv1.ListQueryLogsRequest) (*assistantv1.ListQueryLogsResponse, error) {
	token, _ := interceptors.GetSessionToken(ctx)
	page, err := s.gw.ListQueryLogs(ctx, gateway.ListLogsRequest{
		SessionToken: token,
		OfficerID:    req.OfficerId,
		PageSize:     req.PageSize,
		PageToken:    req.PageToken,
	})
	if err != nil {
		return nil, grpcerr.FromError(ctx, err)
	}
	logs := make([]*assistantv1.QueryLog, len(page.Entries))
	for i, e := range page.Entries {
		logs[i] = EntryToProto(e)
	}
	return &assistantv1.ListQueryLogsResponse{Logs: logs, NextPageToken: page.NextPageToken}, nil
}

func resultToProto(res *gateway.QueryResult) *assistantv1.QueryResponse {
	ids := res.ContextIDs
	if ids == nil {
		ids = []string{}
	}
	return &assistantv1.QueryResponse{
		Success:          true,
		Answer:           res.Answer,
		Model:            res.Model,
		TokensUsed:       int32(res.TokensUsed),
		AuditEntryId:     res.AuditEntryID,
		ContextRecordIds: ids,
	}
}

// EntryToProto converts an audit entry to its API shape.
func EntryToProto(e *auditdomain.Entry) *assistantv1.QueryLog {
	if e == nil {
		return nil
	}
	return &assistantv1.QueryLog{
		Id:               e.ID,
		OfficerId:        e.OfficerID,
		SessionId:        e.SessionID,
		Query:            e.Query,
		Response:         e.Response,
		ContextRecordIds: e.ContextIDs,
		Model:            e.Model,
		TokensUsed:       int32(e.TokensUsed),
		LatencyMs:        e.LatencyMs,
		CreatedAt:        e.CreatedAt,
		Blocked:          e.Blocked,
		BlockReason:      e.BlockReason,
		Stage:            string(e.Stage),
		RetryOf:          e.RetryOf,
		IpAddress:        e.IPAddress,
	}
}
