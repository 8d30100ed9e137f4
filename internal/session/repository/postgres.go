package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/session/domain"
)

const (
	getSessionByTokenHashSQL = `SELECT id, officer_id, token_hash, created_at, expires_at, valid, ip_address, user_agent
FROM officer_sessions WHERE token_hash = $1`

	createSessionSQL = `INSERT INTO officer_sessions (id, officer_id, token_hash, created_at, expires_at, valid, ip_address, user_agent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	invalidateSessionSQL           = `UPDATE officer_sessions SET valid = FALSE WHERE id = $1`
	invalidateSessionsByOfficerSQL = `UPDATE officer_sessions SET valid = FALSE WHERE officer_id = $1 AND valid`
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByTokenHash looks the session up through the unique token_hash index.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRowContext(ctx, getSessionByTokenHashSQL, tokenHash).Scan(
		&s.ID, &s.OfficerID, &s.TokenHash, &s.CreatedAt, &s.ExpiresAt, &s.Valid, &s.IPAddress, &s.UserAgent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Create persists the session. The session must have ID and TokenHash set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx, createSessionSQL,
		s.ID, s.OfficerID, s.TokenHash, s.CreatedAt, s.ExpiresAt, s.Valid, s.IPAddress, s.UserAgent)
	return err
}

func (r *PostgresRepository) Invalidate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, invalidateSessionSQL, id)
	return err
}

func (r *PostgresRepository) InvalidateAllByOfficer(ctx context.Context, officerID string) error {
	_, err := r.db.ExecContext(ctx, invalidateSessionsByOfficerSQL, officerID)
	return err
}
