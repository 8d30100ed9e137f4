package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	alertdomain "github.com/Reyansh-Niranjan/CogniSecure/internal/alert/domain"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/audit"
	auditdomain "github.com/Reyansh-Niranjan/CogniSecure/internal/audit/domain"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/completion"
	officerdomain "github.com/Reyansh-Niranjan/CogniSecure/internal/officer/domain"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/policy/engine"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/promptcontext"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/quota"
	sessionservice "github.com/Reyansh-Niranjan/CogniSecure/internal/session/service"
)

var testNow = time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)

// fakeSessions maps tokens to identities or validation errors. Like the real service it re-reads the
// officer's active flag on every call.
type fakeSessions struct {
	mu       sync.Mutex
	byToken  map[string]*sessionservice.Identity
	errs     map[string]error
	isActive func(officerID string) bool
	revoked  []string
	logouts  []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		byToken: map[string]*sessionservice.Identity{},
		errs:    map[string]error{},
	}
}

func (f *fakeSessions) add(token, officerID string, role officerdomain.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byToken[token] = &sessionservice.Identity{OfficerID: officerID, SessionID: "s-" + token, Role: role}
}

func (f *fakeSessions) Validate(_ context.Context, token string) (*sessionservice.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[token]; ok {
		return nil, err
	}
	id, ok := f.byToken[token]
	if !ok {
		return nil, sessionservice.ErrSessionNotFound
	}
	if f.isActive != nil && !f.isActive(id.OfficerID) {
		return nil, sessionservice.ErrOfficerInactive
	}
	cp := *id
	return &cp, nil
}

func (f *fakeSessions) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts = append(f.logouts, token)
	f.errs[token] = sessionservice.ErrSessionInvalidated
	return nil
}

func (f *fakeSessions) RevokeAll(_ context.Context, officerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, officerID)
	return nil
}

type staticPolicy struct {
	err error
}

func (p staticPolicy) Evaluate(_ context.Context, role officerdomain.Role) (engine.Decision, error) {
	if p.err != nil {
		return engine.Decision{}, p.err
	}
	admin := role == officerdomain.RoleAdmin
	return engine.Decision{AllowQuery: role.Valid(), ListAllLogs: admin, ManageOfficers: admin}, nil
}

type failingLedger struct{}

func (failingLedger) Admit(context.Context, string, time.Time) (quota.Admission, error) {
	return quota.Admission{}, errors.New("redis: connection refused")
}

type memAlerts struct {
	byID map[string]*alertdomain.Alert
	err  error
}

func (m *memAlerts) GetByID(_ context.Context, id string) (*alertdomain.Alert, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byID[id], nil
}

type fakeCompleter struct {
	mu       sync.Mutex
	calls    int
	queries  []string
	contexts []string
	err      error
	answer   string
}

func (c *fakeCompleter) Complete(_ context.Context, query, contextText string) (*completion.Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.queries = append(c.queries, query)
	c.contexts = append(c.contexts, contextText)
	if c.err != nil {
		return nil, c.err
	}
	answer := c.answer
	if answer == "" {
		answer = "Two alerts are pending review."
	}
	return &completion.Completion{Answer: answer, Model: "openai/gpt-4-turbo", TokensUsed: 42}, nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*auditdomain.Entry
	err     error
}

func (r *memAuditRepo) Create(_ context.Context, e *auditdomain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memAuditRepo) GetByID(_ context.Context, id string) (*auditdomain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAuditRepo) List(_ context.Context, officerID string, limit, offset int32) ([]*auditdomain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auditdomain.Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if officerID == "" || r.entries[i].OfficerID == officerID {
			out = append(out, r.entries[i])
		}
	}
	if int(offset) >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > int(limit) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memAuditRepo) all() []*auditdomain.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*auditdomain.Entry(nil), r.entries...)
}

type memOfficers struct {
	mu     sync.Mutex
	active map[string]bool
}

func (m *memOfficers) SetActive(_ context.Context, id string, active bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[id]; !ok {
		return false, nil
	}
	m.active[id] = active
	return true, nil
}

// isActive treats officers the test never registered as active.
func (m *memOfficers) isActive(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.active[id]
	return !ok || a
}

type harness struct {
	gw        *Gateway
	sessions  *fakeSessions
	alerts    *memAlerts
	completer *fakeCompleter
	auditRepo *memAuditRepo
	officers  *memOfficers
	ledger    *quota.MemoryLedger
}

func newHarness(t *testing.T, opts ...func(*Deps)) *harness {
	t.Helper()
	h := &harness{
		sessions: newFakeSessions(),
		alerts: &memAlerts{byID: map[string]*alertdomain.Alert{
			"a1": {ID: "a1", DeviceID: "cam-07", Status: "pending", Location: "Gate 4", Notes: "two people"},
			"a2": {ID: "a2", DeviceID: "cam-12", Status: "resolved", Notes: "SECRET-A2"},
		}},
		completer: &fakeCompleter{},
		auditRepo: &memAuditRepo{},
		officers:  &memOfficers{active: map[string]bool{"o1": true, "admin": true}},
		ledger:    quota.NewMemoryLedger(quota.DefaultCeiling, quota.DefaultRetention),
	}
	h.sessions.isActive = h.officers.isActive
	h.sessions.add("tok-o1", "o1", officerdomain.RoleOfficer)
	h.sessions.add("tok-admin", "admin", officerdomain.RoleAdmin)

	d := Deps{
		Sessions:  h.sessions,
		Policy:    staticPolicy{},
		Quota:     h.ledger,
		Context:   promptcontext.NewResolver(h.alerts),
		Completer: h.completer,
		Audit:     audit.NewWriter(h.auditRepo, zerolog.Nop()),
		AuditLogs: h.auditRepo,
		Officers:  h.officers,
		Log:       zerolog.Nop(),
		Now:       func() time.Time { return testNow },
	}
	for _, o := range opts {
		o(&d)
	}
	h.gw = New(d)
	return h
}

func requireGatewayError(t *testing.T, err error, kind Kind, blocked bool) *Error {
	t.Helper()
	gerr, ok := AsError(err)
	require.True(t, ok, "want *gateway.Error, got %v", err)
	assert.Equal(t, kind, gerr.Kind)
	assert.Equal(t, blocked, gerr.Blocked)
	return gerr
}

// Scenario A: no ids means the model is told no alerts were provided.
func TestQuery_NoContextIDs(t *testing.T) {
	h := newHarness(t)

	res, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-o1", Query: "What is pending?"})
	require.NoError(t, err)
	assert.Equal(t, "Two alerts are pending review.", res.Answer)
	assert.Equal(t, 42, res.TokensUsed)
	assert.Empty(t, res.ContextIDs)
	require.Len(t, h.completer.contexts, 1)
	assert.Equal(t, promptcontext.NoAlertsProvided, h.completer.contexts[0])

	entries := h.auditRepo.all()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Blocked)
	assert.Equal(t, auditdomain.StageNone, entries[0].Stage)
	assert.Equal(t, res.AuditEntryID, entries[0].ID)
	assert.Equal(t, "openai/gpt-4-turbo", entries[0].Model)
	assert.Equal(t, "s-tok-o1", entries[0].SessionID)
}

// Scenario B: a full bucket is refused with zero remaining and audited as blocked.
func TestQuery_QuotaExhausted(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < quota.DefaultCeiling; i++ {
		adm, err := h.ledger.Admit(context.Background(), "o1", testNow)
		require.NoError(t, err)
		require.True(t, adm.Admitted)
	}

	_, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-o1", Query: "status?"})
	gerr := requireGatewayError(t, err, KindRateLimited, true)
	assert.Equal(t, "Rate limit exceeded. You can make 0 more queries this hour.", gerr.Message)
	assert.Zero(t, h.completer.calls)

	entries := h.auditRepo.all()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Blocked)
	assert.Equal(t, auditdomain.StageQuota, entries[0].Stage)
	assert.Equal(t, "Rate limit exceeded (50/50 queries this hour)", entries[0].BlockReason)
	assert.Equal(t, "Query blocked", entries[0].Response)
	assert.Equal(t, "none", entries[0].Model)
}

func TestQuery_RemainingAllowanceInMessage(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.Quota = quota.NewMemoryLedger(2, time.Hour) })

	for i := 0; i < 2; i++ {
		_, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-o1", Query: "q"})
		require.NoError(t, err)
	}
	_, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-o1", Query: "q"})
	requireGatewayError(t, err, KindRateLimited, true)
	assert.Len(t, h.auditRepo.all(), 3)
}

// Scenario C and context minimization: only listed, existing alerts reach the model.
func TestQuery_MissingContextIDIsDropped(t *testing.T) {
	h := newHarness(t)

	res, err := h.gw.Query(context.Background(), QueryRequest{
		SessionToken:     "tok-o1",
		Query:            "Summarize",
		ContextRecordIDs: []string{"a1", "missing"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, res.ContextIDs)

	require.Len(t, h.completer.contexts, 1)
	sent := h.completer.contexts[0]
	assert.Contains(t, sent, "cam-07")
	assert.NotContains(t, sent, "SECRET-A2")
	assert.NotContains(t, sent, "cam-12")

	entries := h.auditRepo.all()
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"a1"}, entries[0].ContextIDs)
}

// Scenario D: markup is stripped before the query goes upstream and into the audit log.
func TestQuery_SanitizesBeforeUpstream(t *testing.T) {
	h := newHarness(t)

	_, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-o1", Query: "<script>alert(1)</script>Hello"})
	require.NoError(t, err)
	require.Equal(t, []string{"Hello"}, h.completer.queries)
	assert.Equal(t, "Hello", h.auditRepo.all()[0].Query)
}

func TestQuery_EmptyAfterSanitize(t *testing.T) {
	h := newHarness(t)

	_, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-o1", Query: "<script>x</script>"})
	requireGatewayError(t, err, KindInvalidArgument, true)
	assert.Zero(t, h.completer.calls)

	entries := h.auditRepo.all()
	require.Len(t, entries, 1)
	assert.Equal(t, auditdomain.StageSanitize, entries[0].Stage)
	assert.True(t, entries[0].Blocked)
}

// Scenario E: an upstream timeout is generic to the caller and detailed in the audit log.
func TestQuery_UpstreamTimeout(t *testing.T) {
	h := newHarness(t)
	h.completer.err = &completion.UpstreamError{Message: "context deadline exceeded", Err: context.DeadlineExceeded}

	_, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-o1", Query: "status?"})
	gerr := requireGatewayError(t, err, KindInternal, false)
	assert.Equal(t, "Failed to process query. Please try again.", gerr.Message)
	assert.NotContains(t, gerr.Message, "deadline")

	entries := h.auditRepo.all()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Blocked)
	assert.Equal(t, auditdomain.StageUpstream, entries[0].Stage)
	assert.Equal(t, "upstream: context deadline exceeded", entries[0].BlockReason)
	assert.Equal(t, "Error: upstream: context deadline exceeded", entries[0].Response)
	assert.Equal(t, "unknown", entries[0].Model)
}

func TestQuery_ContextStoreFailure(t *testing.T) {
	h := newHarness(t)
	h.alerts.err = errors.New("db: connection reset")

	_, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-o1", Query: "q", ContextRecordIDs: []string{"a1"}})
	requireGatewayError(t, err, KindInternal, false)
	assert.Zero(t, h.completer.calls)

	entries := h.auditRepo.all()
	require.Len(t, entries, 1)
	assert.Equal(t, auditdomain.StageContext, entries[0].Stage)
	assert.Contains(t, entries[0].BlockReason, "connection reset")
	assert.Equal(t, []string{"a1"}, entries[0].ContextIDs)
}

func TestQuery_LedgerFailureFailsClosed(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.Quota = failingLedger{} })

	_, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-o1", Query: "q"})
	requireGatewayError(t, err, KindInternal, false)
	assert.Zero(t, h.completer.calls)

	entries := h.auditRepo.all()
	require.Len(t, entries, 1)
	assert.Equal(t, auditdomain.StageQuota, entries[0].Stage)
	assert.True(t, entries[0].Blocked)
}

func TestQuery_RoleNotPermitted(t *testing.T) {
	h := newHarness(t)
	h.sessions.add("tok-citizen", "c1", officerdomain.Role("citizen"))

	_, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-citizen", Query: "q"})
	requireGatewayError(t, err, KindPermissionDenied, true)

	entries := h.auditRepo.all()
	require.Len(t, entries, 1)
	assert.Equal(t, auditdomain.StageAuthorization, entries[0].Stage)
	assert.Equal(t, 0, h.ledger.Len(), "a refused role must not consume quota")
}

func TestQuery_PolicyErrorIsInternal(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.Policy = staticPolicy{err: errors.New("opa: eval failed")} })

	_, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-o1", Query: "q"})
	requireGatewayError(t, err, KindInternal, false)
	entries := h.auditRepo.all()
	require.Len(t, entries, 1)
	assert.Equal(t, auditdomain.StageAuthorization, entries[0].Stage)
}

func TestQuery_RejectedBeforeAudit(t *testing.T) {
	h := newHarness(t)
	h.sessions.errs["tok-expired"] = sessionservice.ErrSessionExpired
	h.sessions.errs["tok-broken"] = fmt.Errorf("session lookup: %w", errors.New("db down"))
	h.sessions.add("tok-inactive", "o9", officerdomain.RoleOfficer)
	h.officers.active["o9"] = false

	testCases := []struct {
		name    string
		req     QueryRequest
		kind    Kind
		blocked bool
	}{
		{"missing query", QueryRequest{SessionToken: "tok-o1", Query: "   "}, KindInvalidArgument, false},
		{"too many ids", QueryRequest{SessionToken: "tok-o1", Query: "q", ContextRecordIDs: manyIDs(26)}, KindInvalidArgument, false},
		{"no token", QueryRequest{Query: "q"}, KindUnauthenticated, true},
		{"unknown token", QueryRequest{SessionToken: "nope", Query: "q"}, KindUnauthenticated, true},
		{"expired", QueryRequest{SessionToken: "tok-expired", Query: "q"}, KindUnauthenticated, true},
		{"inactive officer", QueryRequest{SessionToken: "tok-inactive", Query: "q"}, KindPermissionDenied, true},
		{"store failure", QueryRequest{SessionToken: "tok-broken", Query: "q"}, KindInternal, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.gw.Query(context.Background(), tc.req)
			requireGatewayError(t, err, tc.kind, tc.blocked)
		})
	}
	assert.Empty(t, h.auditRepo.all(), "requests that fail before session validation are not audited")
	assert.Zero(t, h.completer.calls)
}

func TestQuery_DuplicateIDsCountOnce(t *testing.T) {
	h := newHarness(t)
	ids := append(manyIDs(25), "id-0", " id-1 ", "")
	_, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-o1", Query: "q", ContextRecordIDs: ids})
	require.NoError(t, err)
}

// A session that was valid a moment ago is rejected as soon as it is invalidated or its officer deactivated.
func TestQuery_RevalidatesEverySession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.gw.Query(ctx, QueryRequest{SessionToken: "tok-o1", Query: "q"})
	require.NoError(t, err)

	require.NoError(t, h.gw.SetOfficerActive(ctx, SetOfficerActiveRequest{SessionToken: "tok-admin", OfficerID: "o1", Active: false}))

	_, err = h.gw.Query(ctx, QueryRequest{SessionToken: "tok-o1", Query: "q"})
	requireGatewayError(t, err, KindPermissionDenied, true)
	assert.Equal(t, []string{"o1"}, h.sessions.revoked)

	require.NoError(t, h.gw.Logout(ctx, "tok-admin"))
	_, err = h.gw.Query(ctx, QueryRequest{SessionToken: "tok-admin", Query: "q"})
	requireGatewayError(t, err, KindUnauthenticated, true)
}

// Every query past session validation writes exactly one audit entry, whichever stage ends it.
func TestQuery_ExactlyOneAuditEntryPerAttempt(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.Quota = quota.NewMemoryLedger(5, time.Hour) })
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = h.gw.Query(ctx, QueryRequest{SessionToken: "tok-o1", Query: "q"})
		}()
	}
	wg.Wait()

	entries := h.auditRepo.all()
	require.Len(t, entries, 12)
	var answered, blocked int
	for _, e := range entries {
		if e.Blocked {
			blocked++
			assert.Equal(t, auditdomain.StageQuota, e.Stage)
		} else {
			answered++
		}
	}
	assert.Equal(t, 5, answered)
	assert.Equal(t, 7, blocked)
	assert.Equal(t, 5, h.completer.calls)
}

func TestQuery_AuditWriteFailureDoesNotChangeResult(t *testing.T) {
	h := newHarness(t)
	h.auditRepo.err = errors.New("disk full")

	res, err := h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-o1", Query: "q"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Answer)
}

func TestRetryQuery(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.completer.err = &completion.UpstreamError{StatusCode: 502, Message: "bad gateway"}

	_, err := h.gw.Query(ctx, QueryRequest{SessionToken: "tok-o1", Query: "Summarize", ContextRecordIDs: []string{"a1"}})
	requireGatewayError(t, err, KindInternal, false)
	failed := h.auditRepo.all()[0]

	h.completer.err = nil
	res, err := h.gw.RetryQuery(ctx, RetryRequest{SessionToken: "tok-o1", EntryID: failed.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, res.ContextIDs)
	assert.Equal(t, []string{"Summarize", "Summarize"}, h.completer.queries)

	entries := h.auditRepo.all()
	require.Len(t, entries, 2)
	assert.Equal(t, failed.ID, entries[1].RetryOf)
	assert.False(t, entries[1].Blocked)

	adm, err := h.ledger.Admit(ctx, "o1", testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, adm.Count, "both the failed attempt and the retry consumed quota")
}

func TestRetryQuery_Rejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.sessions.add("tok-o2", "o2", officerdomain.RoleOfficer)

	_, err := h.gw.Query(ctx, QueryRequest{SessionToken: "tok-o1", Query: "ok"})
	require.NoError(t, err)
	answered := h.auditRepo.all()[0]

	h.completer.err = &completion.UpstreamError{Message: "boom"}
	_, err = h.gw.Query(ctx, QueryRequest{SessionToken: "tok-o1", Query: "fails"})
	require.Error(t, err)
	failed := h.auditRepo.all()[1]

	testCases := []struct {
		name string
		req  RetryRequest
		kind Kind
	}{
		{"missing id", RetryRequest{SessionToken: "tok-o1"}, KindInvalidArgument},
		{"unknown entry", RetryRequest{SessionToken: "tok-o1", EntryID: "nope"}, KindNotFound},
		{"other officer's entry", RetryRequest{SessionToken: "tok-o2", EntryID: failed.ID}, KindNotFound},
		{"successful entry", RetryRequest{SessionToken: "tok-o1", EntryID: answered.ID}, KindInvalidArgument},
		{"bad session", RetryRequest{SessionToken: "nope", EntryID: failed.ID}, KindUnauthenticated},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.gw.RetryQuery(ctx, tc.req)
			gerr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, gerr.Kind)
		})
	}
	assert.Len(t, h.auditRepo.all(), 2)
}

func TestListQueryLogs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.sessions.add("tok-o2", "o2", officerdomain.RoleOfficer)
	for i := 0; i < 3; i++ {
		_, err := h.gw.Query(ctx, QueryRequest{SessionToken: "tok-o1", Query: fmt.Sprintf("o1 q%d", i)})
		require.NoError(t, err)
	}
	_, err := h.gw.Query(ctx, QueryRequest{SessionToken: "tok-o2", Query: "o2 q"})
	require.NoError(t, err)

	page, err := h.gw.ListQueryLogs(ctx, ListLogsRequest{SessionToken: "tok-o1", PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, "o1 q2", page.Entries[0].Query, "newest first")
	assert.Equal(t, "2", page.NextPageToken)

	page, err = h.gw.ListQueryLogs(ctx, ListLogsRequest{SessionToken: "tok-o1", PageSize: 2, PageToken: page.NextPageToken})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Empty(t, page.NextPageToken)

	page, err = h.gw.ListQueryLogs(ctx, ListLogsRequest{SessionToken: "tok-admin"})
	require.NoError(t, err)
	assert.Len(t, page.Entries, 4)

	page, err = h.gw.ListQueryLogs(ctx, ListLogsRequest{SessionToken: "tok-admin", OfficerID: "o2"})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "o2", page.Entries[0].OfficerID)

	_, err = h.gw.ListQueryLogs(ctx, ListLogsRequest{SessionToken: "tok-o1", OfficerID: "o2"})
	requireGatewayError(t, err, KindPermissionDenied, true)

	_, err = h.gw.ListQueryLogs(ctx, ListLogsRequest{SessionToken: "tok-o1", PageToken: "abc"})
	requireGatewayError(t, err, KindInvalidArgument, false)

	_, err = h.gw.ListQueryLogs(ctx, ListLogsRequest{SessionToken: "nope"})
	requireGatewayError(t, err, KindUnauthenticated, true)
}

func TestParsePageToken(t *testing.T) {
	n, err := parsePageToken("")
	require.NoError(t, err)
	assert.Equal(t, int32(0), n)
	n, err = parsePageToken("150")
	require.NoError(t, err)
	assert.Equal(t, int32(150), n)
	_, err = parsePageToken("-1")
	assert.Error(t, err)
}

func TestSetOfficerActive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.gw.SetOfficerActive(ctx, SetOfficerActiveRequest{SessionToken: "tok-o1", OfficerID: "admin", Active: false})
	requireGatewayError(t, err, KindPermissionDenied, true)

	err = h.gw.SetOfficerActive(ctx, SetOfficerActiveRequest{SessionToken: "tok-admin", OfficerID: "ghost", Active: false})
	requireGatewayError(t, err, KindNotFound, false)

	err = h.gw.SetOfficerActive(ctx, SetOfficerActiveRequest{SessionToken: "tok-admin", OfficerID: "admin", Active: false})
	requireGatewayError(t, err, KindInvalidArgument, false)

	require.NoError(t, h.gw.SetOfficerActive(ctx, SetOfficerActiveRequest{SessionToken: "tok-admin", OfficerID: "o1", Active: false}))
	assert.False(t, h.officers.active["o1"])
	require.NoError(t, h.gw.SetOfficerActive(ctx, SetOfficerActiveRequest{SessionToken: "tok-admin", OfficerID: "o1", Active: true}))
	assert.True(t, h.officers.active["o1"])
	assert.Equal(t, []string{"o1"}, h.sessions.revoked, "reactivation revokes nothing")
}

func TestQuery_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	h := newHarness(t, func(d *Deps) { d.MeterProvider = provider })
	ctx := context.Background()

	_, err := h.gw.Query(ctx, QueryRequest{SessionToken: "tok-o1", Query: "q"})
	require.NoError(t, err)
	_, err = h.gw.Query(ctx, QueryRequest{SessionToken: "nope", Query: "q"})
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	got := make([]string, 0, len(names))
	for n := range names {
		got = append(got, n)
	}
	sort.Strings(got)
	assert.Equal(t, []string{
		"cognisecure.gateway.duration",
		"cognisecure.gateway.queries",
		"cognisecure.gateway.rejected",
	}, got)
}

func TestQuery_WithOPAPolicy(t *testing.T) {
	opa, err := engine.NewOPAEvaluator(context.Background())
	require.NoError(t, err)
	h := newHarness(t, func(d *Deps) { d.Policy = opa })
	h.sessions.add("tok-sup", "sup", officerdomain.RoleSupervisor)
	h.sessions.add("tok-unknown", "x", officerdomain.Role("dispatcher"))

	_, err = h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-sup", Query: "q"})
	require.NoError(t, err)
	_, err = h.gw.Query(context.Background(), QueryRequest{SessionToken: "tok-unknown", Query: "q"})
	requireGatewayError(t, err, KindPermissionDenied, true)
}

func manyIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%d", i)
	}
	return ids
}
