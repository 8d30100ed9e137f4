package gateway

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	auditdomain "github.com/Reyansh-Niranjan/CogniSecure/internal/audit/domain"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/telemetry/domain"
)

const meterName = "github.com/Reyansh-Niranjan/CogniSecure/internal/gateway"

type metrics struct {
	queries  metric.Int64Counter
	rejects  metric.Int64Counter
	duration metric.Int64Histogram
}

// newMetrics creates the gateway instruments on mp, or on the global provider when mp is nil.
// Instrument creation errors leave a no-op instrument in place.
func newMetrics(mp metric.MeterProvider) *metrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)
	queries, _ := meter.Int64Counter("cognisecure.gateway.queries",
		metric.WithDescription("Audited assistant queries by outcome and terminating stage."))
	rejects, _ := meter.Int64Counter("cognisecure.gateway.rejected",
		metric.WithDescription("Requests rejected before the caller was identified."))
	duration, _ := meter.Int64Histogram("cognisecure.gateway.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("End-to-end latency of audited assistant queries."))
	return &metrics{queries: queries, rejects: rejects, duration: duration}
}

func (m *metrics) record(ctx context.Context, outcome, stage string, latencyMs int64) {
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("stage", stage),
	)
	if m.queries != nil {
		m.queries.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, latencyMs, attrs)
	}
}

func (m *metrics) rejected(ctx context.Context, kind Kind) {
	if m.rejects != nil {
		m.rejects.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))
	}
}

func outcomeFor(e *auditdomain.Entry) string {
	switch {
	case !e.Blocked:
		return domain.OutcomeAnswered
	case e.Response == blockedResponse:
		return domain.OutcomeBlocked
	default:
		return domain.OutcomeFailed
	}
}

func eventFor(e *auditdomain.Entry, outcome string) *domain.Event {
	return &domain.Event{
		EventType:    domain.EventTypeAssistantQuery,
		Source:       "gateway",
		Outcome:      outcome,
		Stage:        string(e.Stage),
		OfficerID:    e.OfficerID,
		SessionID:    e.SessionID,
		AuditEntryID: e.ID,
		RetryOf:      e.RetryOf,
		Model:        e.Model,
		TokensUsed:   e.TokensUsed,
		LatencyMs:    e.LatencyMs,
		ContextCount: len(e.ContextIDs),
		CreatedAt:    e.CreatedAt,
	}
}
