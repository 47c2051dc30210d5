// Package ratelimit provides fixed-window request limiting for Gin routes.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter increments the hit count of key within a fixed window.
// It returns the count after the increment and the time left in the window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

// Lua script: atomic INCR + PEXPIRE on the first hit of a window
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RedisCounter shares windows across every process using the same Redis.
type RedisCounter struct {
	rdb *redis.Client
}

// NewRedisCounter returns a Counter backed by rdb.
func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

// Incr implements Counter.
func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	res, err := incrExpireScript.Run(ctx, r.rdb, []string{key}, window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit script reply: %v", res)
	}
	ttl := time.Duration(toInt(res[1])) * time.Millisecond
	if ttl < 0 {
		ttl = 0
	}
	return toInt(res[0]), ttl, nil
}

// MemoryCounter keeps windows in process memory. It is used when Redis is not configured.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	count     int
	lastReset time.Time
}

// NewMemoryCounter returns an empty in-process Counter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Incr implements Counter.
func (m *MemoryCounter) Incr(_ context.Context, key string, interval time.Duration) (int, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	// interval を過ぎたらカウントリセット
	if !ok || now.Sub(w.lastReset) >= interval {
		w = &window{lastReset: now}
		m.windows[key] = w
		m.sweep(now, interval)
	}
	w.count++
	return w.count, interval - now.Sub(w.lastReset), nil
}

// sweep drops expired windows so the map does not grow without bound.
func (m *MemoryCounter) sweep(now time.Time, interval time.Duration) {
	for k, w := range m.windows {
		if now.Sub(w.lastReset) >= interval {
			delete(m.windows, k)
		}
	}
}

func toInt(v any) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
