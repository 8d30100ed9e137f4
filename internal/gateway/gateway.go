// Package gateway is the only path from an officer's question to the completion provider.
//
// A query runs through a fixed pipeline: request shape, session, role, quota, sanitizer, context, completion.
// The first failing stage ends the request. Every request that gets past session validation leaves exactly one
// entry in the AI audit log, written before the call returns.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/audit"
	auditdomain "github.com/Reyansh-Niranjan/CogniSecure/internal/audit/domain"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/completion"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/policy/engine"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/promptcontext"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/quota"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/sanitize"
	sessionservice "github.com/Reyansh-Niranjan/CogniSecure/internal/session/service"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/telemetry"
)

const (
	blockedResponse = "Query blocked"
	blockedModel    = "none"
	failedModel     = "unknown"
)

// Sessions validates and manages officer sessions.
type Sessions interface {
	Validate(ctx context.Context, token string) (*sessionservice.Identity, error)
	Logout(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, officerID string) error
}

// ContextResolver turns caller-listed alert ids into the prompt context.
type ContextResolver interface {
	Resolve(ctx context.Context, ids []string) (*promptcontext.Resolved, error)
}

// AuditReader is the read half of the audit repository.
type AuditReader interface {
	GetByID(ctx context.Context, id string) (*auditdomain.Entry, error)
	List(ctx context.Context, officerID string, limit, offset int32) ([]*auditdomain.Entry, error)
}

// OfficerStatus activates and deactivates officers. SetActive reports false when the officer does not exist.
type OfficerStatus interface {
	SetActive(ctx context.Context, id string, active bool) (bool, error)
}

// Deps are the collaborators of a Gateway. Events and MeterProvider are optional.
type Deps struct {
	Sessions  Sessions
	Policy    engine.Evaluator
	Quota     quota.Ledger
	Context   ContextResolver
	Completer completion.Completer
	Audit     audit.Recorder
	AuditLogs AuditReader
	Officers  OfficerStatus

	Events        telemetry.EventEmitter
	MeterProvider metric.MeterProvider
	Log           zerolog.Logger

	// MaxContextRecords bounds how many alert ids one query may reference. Non-positive uses
	// promptcontext.DefaultMaxIDs.
	MaxContextRecords int
	// Now is the clock; nil uses time.Now in UTC.
	Now func() time.Time
}

// Gateway orchestrates assistant queries. It holds no per-request state and is safe for concurrent use.
type Gateway struct {
	sessions  Sessions
	policy    engine.Evaluator
	quota     quota.Ledger
	context   ContextResolver
	completer completion.Completer
	audit     audit.Recorder
	auditLogs AuditReader
	officers  OfficerStatus
	events    telemetry.EventEmitter
	metrics   *metrics
	log       zerolog.Logger
	maxIDs    int
	now       func() time.Time
}

// New returns a Gateway wired to d.
func New(d Deps) *Gateway {
	maxIDs := d.MaxContextRecords
	if maxIDs <= 0 {
		maxIDs = promptcontext.DefaultMaxIDs
	}
	now := d.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Gateway{
		sessions:  d.Sessions,
		policy:    d.Policy,
		quota:     d.Quota,
		context:   d.Context,
		completer: d.Completer,
		audit:     d.Audit,
		auditLogs: d.AuditLogs,
		officers:  d.Officers,
		events:    d.Events,
		metrics:   newMetrics(d.MeterProvider),
		log:       d.Log.With().Str("component", "gateway").Logger(),
		maxIDs:    maxIDs,
		now:       now,
	}
}

// QueryRequest is one assistant question.
type QueryRequest struct {
	SessionToken     string
	Query            string
	ContextRecordIDs []string
	ClientIP         string
}

// RetryRequest re-runs a failed query from the audit log.
type RetryRequest struct {
	SessionToken string
	EntryID      string
	ClientIP     string
}

// QueryResult is a successful answer.
type QueryResult struct {
	Answer       string
	Model        string
	TokensUsed   int
	AuditEntryID string
	// ContextIDs are the alert ids that were found and given to the model, in request order.
	ContextIDs []string
}

// attempt is the input of the pipeline after the caller is identified.
type attempt struct {
	query    string
	ids      []string
	clientIP string
	retryOf  string
}

// Query answers an officer's question from the alerts they listed.
// Errors are *Error values.
func (g *Gateway) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	start := g.now()
	if strings.TrimSpace(req.Query) == "" {
		return nil, g.reject(ctx, newError(KindInvalidArgument, "query is required", false))
	}
	ids := promptcontext.NormalizeIDs(req.ContextRecordIDs)
	if len(ids) > g.maxIDs {
		return nil, g.reject(ctx, newError(KindInvalidArgument,
			fmt.Sprintf("at most %d context records may be referenced", g.maxIDs), false))
	}
	ident, err := g.authenticate(ctx, req.SessionToken)
	if err != nil {
		return nil, g.reject(ctx, err)
	}
	return g.process(ctx, ident, attempt{query: req.Query, ids: ids, clientIP: req.ClientIP}, start)
}

// RetryQuery re-runs a query that failed while being processed (context or upstream stage). The caller must own
// the entry. The retry goes through the full pipeline, including quota, and is audited with RetryOf set.
func (g *Gateway) RetryQuery(ctx context.Context, req RetryRequest) (*QueryResult, error) {
	start := g.now()
	entryID := strings.TrimSpace(req.EntryID)
	if entryID == "" {
		return nil, g.reject(ctx, newError(KindInvalidArgument, "entry id is required", false))
	}
	ident, err := g.authenticate(ctx, req.SessionToken)
	if err != nil {
		return nil, g.reject(ctx, err)
	}
	prev, err := g.auditLogs.GetByID(ctx, entryID)
	if err != nil {
		g.log.Error().Err(err).Str("entry_id", entryID).Msg("load audit entry for retry")
		return nil, g.reject(ctx, newError(KindInternal, msgInternal, false))
	}
	// Entries of other officers are reported as missing.
	if prev == nil || prev.OfficerID != ident.OfficerID {
		return nil, g.reject(ctx, newError(KindNotFound, "query log entry not found", false))
	}
	if !prev.Stage.Retryable() {
		return nil, g.reject(ctx, newError(KindInvalidArgument, "only queries that failed while processing can be retried", false))
	}
	return g.process(ctx, ident, attempt{
		query:    prev.Query,
		ids:      prev.ContextIDs,
		clientIP: req.ClientIP,
		retryOf:  prev.ID,
	}, start)
}

// authenticate validates the session token on every call. Nothing is cached.
func (g *Gateway) authenticate(ctx context.Context, token string) (*sessionservice.Identity, error) {
	ident, err := g.sessions.Validate(ctx, token)
	switch {
	case err == nil:
		return ident, nil
	case errors.Is(err, sessionservice.ErrSessionNotFound),
		errors.Is(err, sessionservice.ErrSessionInvalidated),
		errors.Is(err, sessionservice.ErrSessionExpired):
		return nil, newError(KindUnauthenticated, msgInvalidSession, true)
	case errors.Is(err, sessionservice.ErrOfficerInactive),
		errors.Is(err, sessionservice.ErrOfficerNotFound):
		return nil, newError(KindPermissionDenied, msgInactive, true)
	default:
		g.log.Error().Err(err).Msg("session validation failed")
		return nil, newError(KindInternal, msgInternal, false)
	}
}

// process runs the audited part of the pipeline for an identified caller.
func (g *Gateway) process(ctx context.Context, ident *sessionservice.Identity, at attempt, start time.Time) (*QueryResult, error) {
	cleaned := sanitize.Clean(at.query)
	entry := &auditdomain.Entry{
		OfficerID:  ident.OfficerID,
		SessionID:  ident.SessionID,
		Query:      cleaned,
		ContextIDs: at.ids,
		RetryOf:    at.retryOf,
		IPAddress:  at.clientIP,
	}

	decision, err := g.policy.Evaluate(ctx, ident.Role)
	if err != nil {
		return nil, g.fail(ctx, entry, start, auditdomain.StageAuthorization,
			fmt.Errorf("policy evaluation: %w", err), newError(KindInternal, msgInternal, false))
	}
	if !decision.AllowQuery {
		return nil, g.refuse(ctx, entry, start, auditdomain.StageAuthorization,
			fmt.Sprintf("Role %q is not permitted to query the assistant", ident.Role),
			newError(KindPermissionDenied, msgRoleDenied, true))
	}

	adm, err := g.quota.Admit(ctx, ident.OfficerID, start)
	if err != nil {
		return nil, g.fail(ctx, entry, start, auditdomain.StageQuota,
			fmt.Errorf("quota ledger: %w", err), newError(KindInternal, msgInternal, false))
	}
	if !adm.Admitted {
		return nil, g.refuse(ctx, entry, start, auditdomain.StageQuota,
			fmt.Sprintf("Rate limit exceeded (%d/%d queries this hour)", adm.Count, adm.Ceiling),
			newError(KindRateLimited,
				fmt.Sprintf("Rate limit exceeded. You can make %d more queries this hour.", adm.Remaining()), true))
	}

	if cleaned == "" {
		return nil, g.refuse(ctx, entry, start, auditdomain.StageSanitize,
			"Query is empty after removing disallowed content",
			newError(KindInvalidArgument, "query contains no permitted content", true))
	}

	resolved, err := g.context.Resolve(ctx, at.ids)
	if err != nil {
		return nil, g.fail(ctx, entry, start, auditdomain.StageContext,
			fmt.Errorf("resolve context: %w", err), newError(KindInternal, msgFailed, false))
	}
	entry.ContextIDs = resolved.IDs

	comp, err := g.completer.Complete(ctx, cleaned, resolved.Text)
	if err != nil {
		return nil, g.fail(ctx, entry, start, auditdomain.StageUpstream, err, newError(KindInternal, msgFailed, false))
	}

	entry.Response = comp.Answer
	entry.Model = comp.Model
	entry.TokensUsed = comp.TokensUsed
	g.finish(ctx, entry, start)
	return &QueryResult{
		Answer:       comp.Answer,
		Model:        comp.Model,
		TokensUsed:   comp.TokensUsed,
		AuditEntryID: entry.ID,
		ContextIDs:   resolved.IDs,
	}, nil
}

// refuse ends a request the gateway declined to serve.
func (g *Gateway) refuse(ctx context.Context, e *auditdomain.Entry, start time.Time, stage auditdomain.Stage, reason string, gerr *Error) error {
	e.Blocked = true
	e.Stage = stage
	e.BlockReason = reason
	e.Response = blockedResponse
	e.Model = blockedModel
	g.finish(ctx, e, start)
	return gerr
}

// fail ends a request that could not be processed. The cause is kept in the audit entry and the log,
// never in the returned error.
func (g *Gateway) fail(ctx context.Context, e *auditdomain.Entry, start time.Time, stage auditdomain.Stage, cause error, gerr *Error) error {
	e.Blocked = true
	e.Stage = stage
	e.BlockReason = cause.Error()
	e.Response = "Error: " + cause.Error()
	e.Model = failedModel
	g.log.Warn().Err(cause).
		Str("officer_id", e.OfficerID).
		Str("stage", string(stage)).
		Msg("assistant query failed")
	g.finish(ctx, e, start)
	return gerr
}

// finish writes the audit entry and reports the outcome. An audit write failure is logged by the writer
// and does not change the caller's result.
func (g *Gateway) finish(ctx context.Context, e *auditdomain.Entry, start time.Time) {
	e.LatencyMs = g.now().Sub(start).Milliseconds()
	_ = g.audit.Record(ctx, e)

	outcome := outcomeFor(e)
	g.metrics.record(ctx, outcome, string(e.Stage), e.LatencyMs)
	telemetry.EmitAsync(g.events, g.log, eventFor(e, outcome))
}

// reject reports a failure that happened before the caller was identified. Nothing is audited.
func (g *Gateway) reject(ctx context.Context, err error) error {
	kind := KindInternal
	if gerr, ok := AsError(err); ok {
		kind = gerr.Kind
	}
	g.metrics.rejected(ctx, kind)
	return err
}
