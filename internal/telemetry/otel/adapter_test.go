package otel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/telemetry/domain"
)

type recordCapture struct {
	embedded.Logger
	mu      sync.Mutex
	records []otellog.Record
}

func (c *recordCapture) Emit(_ context.Context, r otellog.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
}

func (c *recordCapture) Enabled(context.Context, otellog.EnabledParameters) bool { return true }

func attrs(r otellog.Record) map[string]otellog.Value {
	out := map[string]otellog.Value{}
	r.WalkAttributes(func(kv otellog.KeyValue) bool {
		out[kv.Key] = kv.Value
		return true
	})
	return out
}

func TestNewEventEmitter_NilProviderIsNoop(t *testing.T) {
	em := NewEventEmitter(nil)
	assert.NoError(t, em.Emit(context.Background(), &domain.Event{EventType: "x"}))
	assert.NoError(t, NewEventEmitterWithLogger(nil).Emit(context.Background(), &domain.Event{}))
}

func TestOtelEmitter_Emit(t *testing.T) {
	capture := &recordCapture{}
	em := NewEventEmitterWithLogger(capture)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := em.Emit(context.Background(), &domain.Event{
		EventType:    domain.EventTypeAssistantQuery,
		Outcome:      domain.OutcomeBlocked,
		Stage:        "quota",
		OfficerID:    "officer-1",
		AuditEntryID: "entry-1",
		LatencyMs:    12,
		ContextCount: 2,
		CreatedAt:    at,
	})
	require.NoError(t, err)
	require.Len(t, capture.records, 1)

	rec := capture.records[0]
	assert.True(t, rec.Timestamp().Equal(at))
	assert.Equal(t, domain.EventTypeAssistantQuery, rec.EventName())
	assert.Equal(t, otellog.SeverityInfo, rec.Severity())

	a := attrs(rec)
	assert.Equal(t, "blocked", a["outcome"].AsString())
	assert.Equal(t, "quota", a["stage"].AsString())
	assert.Equal(t, "officer-1", a["officer_id"].AsString())
	assert.Equal(t, int64(12), a["latency_ms"].AsInt64())
	assert.Equal(t, int64(2), a["context_count"].AsInt64())
	_, hasSession := a["session_id"]
	assert.False(t, hasSession, "empty fields are not emitted")
}

func TestOtelEmitter_FailedOutcomeIsWarn(t *testing.T) {
	capture := &recordCapture{}
	em := NewEventEmitterWithLogger(capture)
	require.NoError(t, em.Emit(context.Background(), &domain.Event{Outcome: domain.OutcomeFailed}))
	require.Len(t, capture.records, 1)
	assert.Equal(t, otellog.SeverityWarn, capture.records[0].Severity())
	assert.False(t, capture.records[0].Timestamp().IsZero())
}

func TestOtelEmitter_NilEvent(t *testing.T) {
	capture := &recordCapture{}
	require.NoError(t, NewEventEmitterWithLogger(capture).Emit(context.Background(), nil))
	assert.Empty(t, capture.records)
}
