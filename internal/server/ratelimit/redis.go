package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow prunes, counts and conditionally records in one atomic step.
// KEYS[1] = window key; ARGV = now_ms, window_ms, cutoff_ms, limit, member.
// Returns {allowed, retry_after_ms}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[3])

local count = redis.call('ZCARD', key)
if count >= limit then
  local retry = 0
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  if oldest[2] then
    retry = tonumber(oldest[2]) + window - now
  end
  return {0, retry}
end

redis.call('ZADD', key, ARGV[1], ARGV[5])
redis.call('PEXPIRE', key, ARGV[2])
return {1, 0}
`)

// RedisLimiter keeps each window in a sorted set scored by request time in
// milliseconds. Keys expire one window after their last admitted request.
type RedisLimiter struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

type RedisOption func(*RedisLimiter)

func WithPrefix(prefix string) RedisOption {
	return func(r *RedisLimiter) {
		if p := strings.Trim(prefix, ":"); p != "" {
			r.prefix = p
		}
	}
}

// WithRedisClock replaces time.Now, for tests.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(r *RedisLimiter) { r.now = now }
}

func NewRedisLimiter(rdb redis.UniversalClient, opts ...RedisOption) *RedisLimiter {
	r := &RedisLimiter{
		rdb:    rdb,
		prefix: "ratelimit",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Check has the same semantics as Limiter.Check. Redis errors are returned
// as-is; the caller decides whether to fail open.
func (r *RedisLimiter) Check(ctx context.Context, client string, p Policy) (Decision, error) {
	now := r.now().UnixMilli()
	windowMs := p.Window.Milliseconds()
	if windowMs <= 0 {
		windowMs = 1
	}

	res, err := slidingWindow.Run(ctx, r.rdb,
		[]string{r.prefix + ":" + p.Key(client)},
		strconv.FormatInt(now, 10),
		strconv.FormatInt(windowMs, 10),
		strconv.FormatInt(now-windowMs, 10),
		p.MaxRequests,
		strconv.FormatInt(now, 10)+"-"+uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("redis rate limit: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("redis rate limit: unexpected reply %v", res)
	}

	if res[0] == 1 {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, RetryAfter: time.Duration(res[1]) * time.Millisecond}, nil
}
