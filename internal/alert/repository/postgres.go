package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/alert/domain"
)

const (
	getAlertSQL = `SELECT id, recorded_at, sent_at, received_at, delay_ms, device_id, location, status,
       photo_url, video_url, notes, acknowledged_by, resolved_by
FROM alerts WHERE id = $1`

	createAlertSQL = `INSERT INTO alerts (id, recorded_at, sent_at, received_at, delay_ms, device_id, location, status,
       photo_url, video_url, notes, acknowledged_by, resolved_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an alert repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the alert for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	var a domain.Alert
	var location, notes, ackedBy, resolvedBy sql.NullString
	err := r.db.QueryRowContext(ctx, getAlertSQL, id).Scan(
		&a.ID, &a.RecordedAt, &a.SentAt, &a.ReceivedAt, &a.DelayMs, &a.DeviceID, &location, &a.Status,
		&a.PhotoURL, &a.VideoURL, &notes, &ackedBy, &resolvedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	a.Location = location.String
	a.Notes = notes.String
	a.AcknowledgedBy = ackedBy.String
	a.ResolvedBy = resolvedBy.String
	return &a, nil
}

// Create persists the alert. The alert must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Alert) error {
	_, err := r.db.ExecContext(ctx, createAlertSQL,
		a.ID, a.RecordedAt, a.SentAt, a.ReceivedAt, a.DelayMs, a.DeviceID, nullString(a.Location), a.Status,
		a.PhotoURL, a.VideoURL, nullString(a.Notes), nullString(a.AcknowledgedBy), nullString(a.ResolvedBy))
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
