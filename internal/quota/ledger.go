// Package quota enforces the per-officer hourly ceiling on assistant queries.
//
// Every backend admits a query by atomically incrementing the (officer, hour) bucket only while its count is
// below the ceiling, so concurrent requests from one officer can never push a bucket past the ceiling.
package quota

import (
	"context"
	"errors"
	"time"
)

// DefaultCeiling is the number of queries an officer may make per hour bucket when none is configured.
const DefaultCeiling = 50

// DefaultRetention is how long buckets are kept before they may be garbage-collected.
const DefaultRetention = 48 * time.Hour

const hourMillis int64 = 3_600_000

// ErrInvalidOfficer is returned by Admit for an empty officer id.
var ErrInvalidOfficer = errors.New("quota: officer id is required")

// Admission is the outcome of a single Admit call.
type Admission struct {
	Admitted bool
	// Count is the bucket count after the increment when admitted, or the current count when denied.
	Count   int
	Ceiling int
	HourKey int64
}

// Remaining is how many more queries fit in the bucket. Never negative.
func (a Admission) Remaining() int {
	if r := a.Ceiling - a.Count; r > 0 {
		return r
	}
	return 0
}

// Ledger admits or denies one query for an officer at a point in time.
// A returned error means the ledger could not decide; callers must not treat it as admitted.
type Ledger interface {
	Admit(ctx context.Context, officerID string, at time.Time) (Admission, error)
}

// HourKey returns the bucket key for at: epoch milliseconds floored to the start of the hour.
func HourKey(at time.Time) int64 {
	return at.UnixMilli() / hourMillis * hourMillis
}

func normalizeCeiling(ceiling int) int {
	if ceiling < 1 {
		return DefaultCeiling
	}
	return ceiling
}

func normalizeRetention(retention time.Duration) time.Duration {
	if retention < time.Hour {
		return DefaultRetention
	}
	return retention
}
