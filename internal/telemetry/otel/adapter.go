package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/telemetry"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/telemetry/domain"
)

const instrumentationName = "cognisecure.gateway"

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger(instrumentationName)}
}

// NewEventEmitterWithLogger returns an EventEmitter writing to logger directly. Used by tests.
func NewEventEmitterWithLogger(logger otellog.Logger) telemetry.EventEmitter {
	if logger == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.Event) error { return nil }

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the event to an OTel log record and emits it.
func (e *otelEmitter) Emit(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if !event.CreatedAt.IsZero() {
		rec.SetTimestamp(event.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetEventName(event.EventType)
	rec.SetBody(otellog.StringValue(event.Outcome))
	if event.Outcome == domain.OutcomeFailed {
		rec.SetSeverity(otellog.SeverityWarn)
	} else {
		rec.SetSeverity(otellog.SeverityInfo)
	}
	rec.AddAttributes(
		otellog.String("event_type", event.EventType),
		otellog.String("outcome", event.Outcome),
		otellog.Int64("latency_ms", event.LatencyMs),
		otellog.Int("tokens_used", event.TokensUsed),
		otellog.Int("context_count", event.ContextCount),
	)
	for _, kv := range []struct{ key, val string }{
		{"source", event.Source},
		{"stage", event.Stage},
		{"officer_id", event.OfficerID},
		{"session_id", event.SessionID},
		{"audit_entry_id", event.AuditEntryID},
		{"retry_of", event.RetryOf},
		{"model", event.Model},
	} {
		if kv.val != "" {
			rec.AddAttributes(otellog.String(kv.key, kv.val))
		}
	}
	e.logger.Emit(ctx, rec)
	return nil
}
