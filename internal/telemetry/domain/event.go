package domain

import "time"

// EventTypeAssistantQuery is the event type for every completed gateway invocation.
const EventTypeAssistantQuery = "assistant.query"

// Outcomes of an assistant query.
const (
	OutcomeAnswered = "answered"
	OutcomeBlocked  = "blocked"
	OutcomeFailed   = "failed"
)

// Event is a gateway telemetry event. It carries metadata only: never the query text, the answer or the
// alert context.
type Event struct {
	EventType    string    `json:"event_type"`
	Source       string    `json:"source"`
	Outcome      string    `json:"outcome"`
	Stage        string    `json:"stage,omitempty"`
	OfficerID    string    `json:"officer_id,omitempty"`
	SessionID    string    `json:"session_id,omitempty"`
	AuditEntryID string    `json:"audit_entry_id,omitempty"`
	RetryOf      string    `json:"retry_of,omitempty"`
	Model        string    `json:"model,omitempty"`
	TokensUsed   int       `json:"tokens_used"`
	LatencyMs    int64     `json:"latency_ms"`
	ContextCount int       `json:"context_count"`
	CreatedAt    time.Time `json:"created_at"`
}
