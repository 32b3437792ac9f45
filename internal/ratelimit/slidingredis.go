package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims entries older than the window, admits the event only while under the
// limit, and reports the moment the oldest admitted entry leaves the window. Scores are unix
// milliseconds.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, window)

local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
	reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// SlidingRedis is a sliding window limiter over a Redis sorted set per key. Rejected events are
// not recorded, so a client hammering a closed window does not extend it.
type SlidingRedis struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

func (l SlidingRedis) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l SlidingRedis) Allow(ctx context.Context, key string, window time.Duration, max int) (Decision, error) {
	now := l.now()
	if l.Client == nil || max <= 0 || window < time.Millisecond {
		return Decision{Allowed: true, Remaining: max, ResetAt: now.Add(window)}, nil
	}

	res, err := slidingWindow.Run(ctx, l.Client, []string{l.Prefix + key},
		now.UnixMilli(), window.Milliseconds(), max, uuid.NewString()).Int64Slice()
	if err != nil {
		return Decision{ResetAt: now.Add(window)}, fmt.Errorf("sliding window %q: %w", key, err)
	}
	if len(res) != 3 {
		return Decision{ResetAt: now.Add(window)}, fmt.Errorf("sliding window %q: unexpected reply %v", key, res)
	}
	return Decision{
		Allowed:   res[0] == 1,
		Remaining: max - int(res[1]),
		ResetAt:   time.UnixMilli(res[2]),
	}, nil
}
