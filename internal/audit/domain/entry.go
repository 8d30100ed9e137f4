package domain

import "time"

// Stage names the pipeline stage that terminated a request. Empty for a successful query.
type Stage string

const (
	StageNone          Stage = ""
	StageAuthorization Stage = "authorization"
	StageQuota         Stage = "quota"
	StageSanitize      Stage = "sanitize"
	StageContext       Stage = "context"
	StageUpstream      Stage = "upstream"
)

// Retryable reports whether an entry that failed at s may be re-run with RetryQuery.
func (s Stage) Retryable() bool {
	return s == StageContext || s == StageUpstream
}

// Entry is one immutable record of an assistant query attempt.
type Entry struct {
	ID          string
	OfficerID   string
	SessionID   string
	Query       string
	Response    string
	ContextIDs  []string
	Model       string
	TokensUsed  int
	LatencyMs   int64
	CreatedAt   time.Time
	Blocked     bool
	BlockReason string
	Stage       Stage
	RetryOf     string // id of the failed entry this attempt re-ran; empty otherwise
	IPAddress   string
}
