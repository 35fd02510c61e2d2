package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the sorted set to the window, refuses when full and
// otherwise records the attempt. Returns 1 when allowed.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
if redis.call("ZCARD", key) >= limit then
  return 0
end
redis.call("ZADD", key, now, ARGV[4])
redis.call("PEXPIRE", key, window)
return 1
`)

// RedisLimiter shares sliding windows across instances through Redis sorted sets.
// Keys expire with their window so no sweeping is needed.
type RedisLimiter struct {
	rdb   redis.Scripter
	rules Rules
	now   func() time.Time
}

// NewRedisLimiter returns a limiter backed by rdb.
func NewRedisLimiter(rdb redis.Scripter, rules Rules) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, rules: rules, now: time.Now}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, userID string, action Action) (bool, error) {
	rule, ok := l.rules[action]
	if !ok || rule.Max <= 0 {
		return true, nil
	}
	key := fmt.Sprintf("ratelimit:%s:%s", action, userID)
	now := l.now().UnixMilli()
	res, err := slidingWindow.Run(ctx, l.rdb, []string{key},
		now, rule.Window.Milliseconds(), rule.Max, uuid.NewString()).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return res == 1, nil
}
