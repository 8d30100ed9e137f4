// Package assistantv1 defines cognisecure.assistant.v1.AssistantService: messages, server and client.
// Messages travel with the JSON codec from api/codec.
package assistantv1

import "time"

// QueryRequest asks the assistant a question about the listed alerts.
type QueryRequest struct {
	Query            string   `json:"query"`
	ContextRecordIds []string `json:"context_record_ids,omitempty"`
}

// RetryQueryRequest re-runs a previously failed query.
type RetryQueryRequest struct {
	EntryId string `json:"entry_id"`
}

// QueryResponse is a successful answer.
type QueryResponse struct {
	Success          bool     `json:"success"`
	Answer           string   `json:"answer"`
	Model            string   `json:"model"`
	TokensUsed       int32    `json:"tokens_used"`
	AuditEntryId     string   `json:"audit_entry_id"`
	ContextRecordIds []string `json:"context_record_ids"`
}

// ListQueryLogsRequest pages through the AI audit log.
type ListQueryLogsRequest struct {
	OfficerId string `json:"officer_id,omitempty"`
	PageSize  int32  `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

// QueryLog is one audit log entry.
type QueryLog struct {
	Id               string    `json:"id"`
	OfficerId        string    `json:"officer_id"`
	SessionId        string    `json:"session_id"`
	Query            string    `json:"query"`
	Response         string    `json:"response"`
	ContextRecordIds []string  `json:"context_record_ids"`
	Model            string    `json:"model"`
	TokensUsed       int32     `json:"tokens_used"`
	LatencyMs        int64     `json:"latency_ms"`
	CreatedAt        time.Time `json:"created_at"`
	Blocked          bool      `json:"blocked"`
	BlockReason      string    `json:"block_reason,omitempty"`
	Stage            string    `json:"stage,omitempty"`
	RetryOf          string    `json:"retry_of,omitempty"`
	IpAddress        string    `json:"ip_address,omitempty"`
}

// ListQueryLogsResponse is one page of logs, newest first.
type ListQueryLogsResponse struct {
	Logs          []*QueryLog `json:"logs"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}
