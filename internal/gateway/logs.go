package gateway

import (
	"context"
	"strconv"
	"strings"

	auditdomain "github.com/Reyansh-Niranjan/CogniSecure/internal/audit/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// ListLogsRequest pages through the AI audit log. OfficerID filters by officer; only roles allowed to list
// every officer's logs may name someone other than themselves.
type ListLogsRequest struct {
	SessionToken string
	OfficerID    string
	PageSize     int32
	PageToken    string
}

// LogPage is one page of audit entries, newest first. NextPageToken is empty on the last page.
type LogPage struct {
	Entries       []*auditdomain.Entry
	NextPageToken string
}

// ListQueryLogs returns the caller's own audit entries, or any officer's for roles with ListAllLogs.
func (g *Gateway) ListQueryLogs(ctx context.Context, req ListLogsRequest) (*LogPage, error) {
	ident, err := g.authenticate(ctx, req.SessionToken)
	if err != nil {
		return nil, err
	}
	decision, err := g.policy.Evaluate(ctx, ident.Role)
	if err != nil {
		g.log.Error().Err(err).Msg("policy evaluation for log listing")
		return nil, newError(KindInternal, msgInternal, false)
	}

	officerID := strings.TrimSpace(req.OfficerID)
	if !decision.ListAllLogs {
		if officerID != "" && officerID != ident.OfficerID {
			return nil, newError(KindPermissionDenied, "you may only list your own query logs", true)
		}
		officerID = ident.OfficerID
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := parsePageToken(req.PageToken)
	if err != nil {
		return nil, newError(KindInvalidArgument, "invalid page token", false)
	}

	// One extra row tells whether another page exists.
	entries, err := g.auditLogs.List(ctx, officerID, limit+1, offset)
	if err != nil {
		g.log.Error().Err(err).Msg("list audit entries")
		return nil, newError(KindInternal, msgInternal, false)
	}
	page := &LogPage{Entries: entries}
	if int32(len(entries)) > limit {
		page.Entries = entries[:limit]
		page.NextPageToken = strconv.FormatInt(int64(offset)+int64(limit), 10)
	}
	return page, nil
}

func parsePageToken(token string) (int32, error) {
	if token == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(token, 10, 32)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return int32(n), nil
}
