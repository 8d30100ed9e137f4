package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	incrementBucketSQL = `UPDATE ai_quota_buckets SET query_count = query_count + 1
WHERE officer_id = $1 AND hour_key = $2 AND query_count < $3
RETURNING query_count`

	insertBucketSQL = `INSERT INTO ai_quota_buckets (officer_id, hour_key, query_count) VALUES ($1, $2, 1)
ON CONFLICT (officer_id, hour_key) DO NOTHING`

	bucketCountSQL = `SELECT query_count FROM ai_quota_buckets WHERE officer_id = $1 AND hour_key = $2`

	purgeBucketsSQL = `DELETE FROM ai_quota_buckets WHERE hour_key < $1`
)

// PostgresLedger keeps buckets in the ai_quota_buckets table. The conditional UPDATE is atomic per row and
// INSERT ... ON CONFLICT DO NOTHING on the (officer_id, hour_key) primary key makes bucket creation race-safe.
type PostgresLedger struct {
	db        *sql.DB
	ceiling   int
	retention time.Duration
}

// NewPostgresLedger returns a Postgres-backed ledger.
func NewPostgresLedger(db *sql.DB, ceiling int, retention time.Duration) *PostgresLedger {
	return &PostgresLedger{
		db:        db,
		ceiling:   normalizeCeiling(ceiling),
		retention: normalizeRetention(retention),
	}
}

func (l *PostgresLedger) Admit(ctx context.Context, officerID string, at time.Time) (Admission, error) {
	if officerID == "" {
		return Admission{}, ErrInvalidOfficer
	}
	hk := HourKey(at)
	deny := func(count int) Admission {
		return Admission{Admitted: false, Count: count, Ceiling: l.ceiling, HourKey: hk}
	}
	admit := func(count int) Admission {
		return Admission{Admitted: true, Count: count, Ceiling: l.ceiling, HourKey: hk}
	}

	count, ok, err := l.increment(ctx, officerID, hk)
	if err != nil {
		return Admission{}, err
	}
	if ok {
		return admit(count), nil
	}

	// No row was below the ceiling: either the bucket is new or it is full.
	res, err := l.db.ExecContext(ctx, insertBucketSQL, officerID, hk)
	if err != nil {
		return Admission{}, fmt.Errorf("quota: create bucket: %w", err)
	}
	created, err := res.RowsAffected()
	if err != nil {
		return Admission{}, fmt.Errorf("quota: create bucket: %w", err)
	}
	if created == 1 {
		return admit(1), nil
	}

	// Lost the creation race, or the bucket already existed at the ceiling.
	count, ok, err = l.increment(ctx, officerID, hk)
	if err != nil {
		return Admission{}, err
	}
	if ok {
		return admit(count), nil
	}
	if err := l.db.QueryRowContext(ctx, bucketCountSQL, officerID, hk).Scan(&count); err != nil {
		return Admission{}, fmt.Errorf("quota: read bucket: %w", err)
	}
	return deny(count), nil
}

// PurgeBefore deletes buckets whose hour started more than the retention window before now.
// Returns the number of buckets removed.
func (l *PostgresLedger) PurgeBefore(ctx context.Context, now time.Time) (int64, error) {
	cutoff := HourKey(now) - l.retention.Milliseconds()
	res, err := l.db.ExecContext(ctx, purgeBucketsSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("quota: purge buckets: %w", err)
	}
	return res.RowsAffected()
}

func (l *PostgresLedger) increment(ctx context.Context, officerID string, hk int64) (int, bool, error) {
	var count int
	err := l.db.QueryRowContext(ctx, incrementBucketSQL, officerID, hk, l.ceiling).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("quota: increment bucket: %w", err)
	}
	return count, true, nil
}
