// Package lock guards the booking critical section. The conditional update
// on appointment_blocks.is_booked remains the authoritative concurrency
// control; the lock only narrows the window in which two requests race the
// same slot.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotAcquired = errors.New("slot lock not acquired")

// BlockLocker serializes work per block key.
type BlockLocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type redisBlockLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a locker backed by a per-key Redis SETNX entry.
// The token-checked release keeps an expired holder from deleting a lock it
// no longer owns.
func NewRedisLocker(client *redis.Client, ttl time.Duration) BlockLocker {
	return &redisBlockLocker{client: client, ttl: ttl}
}

func (l *redisBlockLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(lockCtx)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisBlockLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

type localBlockLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker is the single-process fallback used when Redis is not
// configured. Same try-lock semantics as the Redis variant.
func NewLocalLocker() BlockLocker {
	return &localBlockLocker{held: make(map[string]struct{})}
}

func (l *localBlockLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	if _, taken := l.held[key]; taken {
		l.mu.Unlock()
		return ErrNotAcquired
	}
	l.held[key] = struct{}{}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}()

	return fn(ctx)
}
