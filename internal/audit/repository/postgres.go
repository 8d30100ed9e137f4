package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/audit/domain"
)

const (
	entryColumns = `id, officer_id, session_id, query, response, context_ids, model, tokens_used, latency_ms,
       created_at, blocked, block_reason, stage, retry_of, ip_address`

	createEntrySQL = `INSERT INTO ai_audit_log (` + entryColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	getEntrySQL = `SELECT ` + entryColumns + ` FROM ai_audit_log WHERE id = $1`

	listEntriesSQL = `SELECT ` + entryColumns + ` FROM ai_audit_log
WHERE ($1::text = '' OR officer_id = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends the entry. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Entry) error {
	contextIDs := e.ContextIDs
	if contextIDs == nil {
		contextIDs = []string{}
	}
	_, err := r.db.ExecContext(ctx, createEntrySQL,
		e.ID, e.OfficerID, e.SessionID, e.Query, e.Response, contextIDs, e.Model, e.TokensUsed, e.LatencyMs,
		e.CreatedAt, e.Blocked, nullString(e.BlockReason), string(e.Stage), nullString(e.RetryOf), e.IPAddress)
	return err
}

// GetByID returns the entry for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	e, err := scanEntry(pgtype.NewMap(), r.db.QueryRowContext(ctx, getEntrySQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context, officerID string, limit, offset int32) ([]*domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx, listEntriesSQL, officerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	// pgtype.Map caches scan plans and is not safe for concurrent use; one per call.
	types := pgtype.NewMap()
	var out []*domain.Entry
	for rows.Next() {
		e, err := scanEntry(types, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(types *pgtype.Map, row rowScanner) (*domain.Entry, error) {
	var (
		e                    domain.Entry
		stage                string
		blockReason, retryOf sql.NullString
	)
	err := row.Scan(&e.ID, &e.OfficerID, &e.SessionID, &e.Query, &e.Response, types.SQLScanner(&e.ContextIDs),
		&e.Model, &e.TokensUsed, &e.LatencyMs, &e.CreatedAt, &e.Blocked, &blockReason, &stage, &retryOf, &e.IPAddress)
	if err != nil {
		return nil, err
	}
	e.Stage = domain.Stage(stage)
	e.BlockReason = blockReason.String
	e.RetryOf = retryOf.String
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
