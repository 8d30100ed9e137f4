package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/officer/domain"
)

const (
	selectOfficerColumns = `SELECT id, badge_number, name, role, active, created_at, updated_at FROM officers`

	getOfficerSQL        = selectOfficerColumns + ` WHERE id = $1`
	getOfficerByBadgeSQL = selectOfficerColumns + ` WHERE badge_number = $1`

	createOfficerSQL = `INSERT INTO officers (id, badge_number, name, role, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	setOfficerActiveSQL = `UPDATE officers SET active = $2, updated_at = $3 WHERE id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an officer repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the officer for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Officer, error) {
	return r.getOne(ctx, getOfficerSQL, id)
}

// GetByBadgeNumber returns the officer with the given badge number, or nil if not found.
func (r *PostgresRepository) GetByBadgeNumber(ctx context.Context, badge string) (*domain.Officer, error) {
	return r.getOne(ctx, getOfficerByBadgeSQL, badge)
}

// Create persists the officer. The officer must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Officer) error {
	if err := o.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, createOfficerSQL,
		o.ID, o.BadgeNumber, o.Name, string(o.Role), o.Active, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, setOfficerActiveSQL, id, active, time.Now().UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query, arg string) (*domain.Officer, error) {
	var (
		o    domain.Officer
		role string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&o.ID, &o.BadgeNumber, &o.Name, &role, &o.Active, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Role = domain.Role(role)
	return &o, nil
}
