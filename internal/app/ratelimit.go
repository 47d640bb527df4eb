/**
 * @description
 * Redis-backed fixed-window rate limiting for the public enrollment
 * endpoints.
 */
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var enrollmentRateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// EnrollmentRateLimiter implements distributed rate limiting using Redis.
type EnrollmentRateLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int64
	window time.Duration
}

// NewEnrollmentRateLimiter creates a limiter allowing limit requests per
// window per key.
func NewEnrollmentRateLimiter(client redis.UniversalClient, prefix string, limit int64, window time.Duration) *EnrollmentRateLimiter {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "protonmedicare:rate_limit"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	return &EnrollmentRateLimiter{
		client: client,
		prefix: trimmedPrefix,
		limit:  limit,
		window: window,
	}
}

// Allow reports whether the key may proceed, and when to retry if not.
func (l *EnrollmentRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	raw, err := enrollmentRateLimitScript.Run(ctx, l.client, []string{redisKey}, l.window.Milliseconds()).Result()
	if err != nil {
		return false, 0, err
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected rate limit script result: %v", raw)
	}
	current, ok := values[0].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected rate limit counter: %v", values[0])
	}
	ttlMillis, ok := values[1].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected rate limit ttl: %v", values[1])
	}

	if current > l.limit {
		return false, time.Duration(ttlMillis) * time.Millisecond, nil
	}
	return true, 0, nil
}
