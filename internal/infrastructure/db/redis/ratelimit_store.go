package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "ratelimit"

// incrWindow counts one hit and starts the window on the first one. Plain
// PEXPIRE keeps it working on servers older than 7.0, which lack EXPIRE NX.
var incrWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RateLimitStore is a fixed-window counter shared by every API replica.
// Each identifier gets points requests per window; the window starts with
// the first request and the key expires with it.
//
// It satisfies echo's middleware.RateLimiterStore.
type RateLimitStore struct {
	client  redis.Scripter
	points  int64
	window  time.Duration
	prefix  string
	timeout time.Duration
}

func NewRateLimitStore(client redis.Scripter, points int, window time.Duration) *RateLimitStore {
	return &RateLimitStore{
		client:  client,
		points:  int64(points),
		window:  window,
		prefix:  defaultKeyPrefix,
		timeout: defaultTimeout,
	}
}

// WithPrefix namespaces the keys, e.g. per route group.
func (s *RateLimitStore) WithPrefix(prefix string) *RateLimitStore {
	clone := *s
	clone.prefix = prefix
	return &clone
}

// Allow counts one request for identifier and reports whether it is within
// the allowance.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	count, err := incrWindow.Run(ctx, s.client, []string{s.key(identifier)}, s.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", identifier, err)
	}

	return count <= s.points, nil
}

func (s *RateLimitStore) key(identifier string) string {
	return s.prefix + ":" + identifier
}
