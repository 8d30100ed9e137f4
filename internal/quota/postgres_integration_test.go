//go:build integration

package quota

import (
	"context"
	"testing"
	"time"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/db/dbtest"
)

func TestPostgresLedger_Ceiling(t *testing.T) {
	pool := dbtest.Start(t)
	exerciseCeiling(t, NewPostgresLedger(pool, 3, 48*time.Hour))
}

func TestPostgresLedger_ConcurrentFirstQueryOfHour(t *testing.T) {
	pool := dbtest.Start(t)
	exerciseConcurrentCeiling(t, NewPostgresLedger(pool, 50, 48*time.Hour), 50, 120)
}

func TestPostgresLedger_PurgeBefore(t *testing.T) {
	pool := dbtest.Start(t)
	l := NewPostgresLedger(pool, 5, 2*time.Hour)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := l.Admit(ctx, "o1", now.Add(-5*time.Hour)); err != nil {
		t.Fatalf("Admit old: %v", err)
	}
	if _, err := l.Admit(ctx, "o1", now); err != nil {
		t.Fatalf("Admit current: %v", err)
	}
	n, err := l.PurgeBefore(ctx, now)
	if err != nil {
		t.Fatalf("PurgeBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d buckets, want 1", n)
	}
	a, err := l.Admit(ctx, "o1", now)
	if err != nil || a.Count != 2 {
		t.Errorf("current bucket = %+v, %v; want count 2 after purge", a, err)
	}
}

func TestPostgresLedger_ExistingFullBucketDenies(t *testing.T) {
	pool := dbtest.Start(t)
	l := NewPostgresLedger(pool, 2, 48*time.Hour)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	if _, err := pool.ExecContext(ctx,
		`INSERT INTO ai_quota_buckets (officer_id, hour_key, query_count) VALUES ($1, $2, 2)`,
		"o1", HourKey(now)); err != nil {
		t.Fatalf("insert full bucket: %v", err)
	}

	// The conditional UPDATE misses and the INSERT conflicts; neither is an error.
	a, err := l.Admit(ctx, "o1", now)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if a.Admitted || a.Count != 2 || a.Remaining() != 0 {
		t.Errorf("admission = %+v, want denied at 2/2", a)
	}

	// A different officer in the same hour gets a fresh bucket.
	a, err = l.Admit(ctx, "o2", now)
	if err != nil || !a.Admitted || a.Count != 1 {
		t.Errorf("o2 admission = %+v, %v; want admitted at 1", a, err)
	}
}
