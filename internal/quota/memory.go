package quota

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const memoryShards = 32

type bucketKey struct {
	officerID string
	hourKey   int64
}

type memoryShard struct {
	mu        sync.Mutex
	buckets   map[bucketKey]int
	lastSweep int64
}

// MemoryLedger keeps buckets in process memory. It is correct for a single instance only.
type MemoryLedger struct {
	ceiling   int
	retention time.Duration
	shards    [memoryShards]*memoryShard
}

// NewMemoryLedger returns an in-memory ledger. Non-positive ceiling and retention use the defaults.
func NewMemoryLedger(ceiling int, retention time.Duration) *MemoryLedger {
	l := &MemoryLedger{
		ceiling:   normalizeCeiling(ceiling),
		retention: normalizeRetention(retention),
	}
	for i := range l.shards {
		l.shards[i] = &memoryShard{buckets: make(map[bucketKey]int)}
	}
	return l
}

func (l *MemoryLedger) Admit(ctx context.Context, officerID string, at time.Time) (Admission, error) {
	if officerID == "" {
		return Admission{}, ErrInvalidOfficer
	}
	if err := ctx.Err(); err != nil {
		return Admission{}, err
	}
	hk := HourKey(at)
	key := bucketKey{officerID: officerID, hourKey: hk}
	sh := l.shard(officerID)

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.lastSweep != hk {
		sh.sweep(hk - l.retention.Milliseconds())
		sh.lastSweep = hk
	}
	count := sh.buckets[key]
	if count >= l.ceiling {
		return Admission{Admitted: false, Count: count, Ceiling: l.ceiling, HourKey: hk}, nil
	}
	count++
	sh.buckets[key] = count
	return Admission{Admitted: true, Count: count, Ceiling: l.ceiling, HourKey: hk}, nil
}

// Len returns the number of live buckets across all shards.
func (l *MemoryLedger) Len() int {
	n := 0
	for _, sh := range l.shards {
		sh.mu.Lock()
		n += len(sh.buckets)
		sh.mu.Unlock()
	}
	return n
}

func (l *MemoryLedger) shard(officerID string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(officerID))
	return l.shards[h.Sum32()%memoryShards]
}

// sweep drops buckets whose hour started before cutoff. Caller holds mu.
func (s *memoryShard) sweep(cutoff int64) {
	for k := range s.buckets {
		if k.hourKey < cutoff {
			delete(s.buckets, k)
		}
	}
}
