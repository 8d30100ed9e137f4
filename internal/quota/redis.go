package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces quota keys.
const DefaultRedisPrefix = "cognisecure:quota:"

// admitScript increments the bucket only while it is below the ceiling. KEYS[1] bucket, ARGV[1] ceiling,
// ARGV[2] ttl in milliseconds. Returns {admitted, count}.
var admitScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
  return {0, current}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {1, current}
`)

// RedisLedger keeps buckets in Redis, shared by every gateway instance. The check and increment run in one
// Lua script, so Redis serializes them per key.
type RedisLedger struct {
	Client    redis.UniversalClient
	Prefix    string
	ceiling   int
	retention time.Duration
}

// NewRedisLedger returns a Redis-backed ledger. Keys expire after the retention window.
func NewRedisLedger(client redis.UniversalClient, ceiling int, retention time.Duration) *RedisLedger {
	return &RedisLedger{
		Client:    client,
		Prefix:    DefaultRedisPrefix,
		ceiling:   normalizeCeiling(ceiling),
		retention: normalizeRetention(retention),
	}
}

func (l *RedisLedger) Admit(ctx context.Context, officerID string, at time.Time) (Admission, error) {
	if officerID == "" {
		return Admission{}, ErrInvalidOfficer
	}
	if l.Client == nil {
		return Admission{}, fmt.Errorf("quota: redis client not configured")
	}
	hk := HourKey(at)
	key := l.Prefix + officerID + ":" + strconv.FormatInt(hk, 10)

	res, err := admitScript.Run(ctx, l.Client, []string{key}, l.ceiling, l.retention.Milliseconds()).Result()
	if err != nil {
		return Admission{}, fmt.Errorf("quota: redis admit: %w", err)
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return Admission{}, fmt.Errorf("quota: unexpected script result %v", res)
	}
	admitted, ok1 := vals[0].(int64)
	count, ok2 := vals[1].(int64)
	if !ok1 || !ok2 {
		return Admission{}, fmt.Errorf("quota: unexpected script result %v", res)
	}
	return Admission{
		Admitted: admitted == 1,
		Count:    int(count),
		Ceiling:  l.ceiling,
		HourKey:  hk,
	}, nil
}
