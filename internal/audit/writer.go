// Package audit records every assistant query attempt in the append-only AI audit log.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/audit/domain"
)

// Creator is the write half of the audit repository.
type Creator interface {
	Create(ctx context.Context, e *domain.Entry) error
}

// Recorder persists one audit entry before the caller returns. Record is best-effort: failures are
// logged and reported, never turned into a different outcome for the query.
type Recorder interface {
	Record(ctx context.Context, e *domain.Entry) error
}

// Writer implements Recorder on top of the audit repository.
type Writer struct {
	repo Creator
	log  zerolog.Logger
	now  func() time.Time
}

// NewWriter returns a Writer that persists to repo.
func NewWriter(repo Creator, log zerolog.Logger) *Writer {
	return &Writer{
		repo: repo,
		log:  log.With().Str("component", "audit").Logger(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Record assigns ID and CreatedAt when unset and writes the entry synchronously.
// The write is detached from ctx cancellation so a client disconnect cannot drop the record.
func (w *Writer) Record(ctx context.Context, e *domain.Entry) error {
	if w.repo == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = w.now()
	}
	if e.ContextIDs == nil {
		e.ContextIDs = []string{}
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := w.repo.Create(writeCtx, e); err != nil {
		w.log.Error().Err(err).
			Str("entry_id", e.ID).
			Str("officer_id", e.OfficerID).
			Str("stage", string(e.Stage)).
			Bool("blocked", e.Blocked).
			Msg("failed to write AI audit entry")
		return err
	}
	return nil
}
