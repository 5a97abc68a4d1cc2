// Package lock provides a distributed mutual-exclusion lock backed by Redis. It is used
// to keep scheduler runs on different replicas from overlapping.
package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/allisson/postflow/internal/errors"
)

// ErrNotAcquired indicates the lock is currently held by another owner.
var ErrNotAcquired = errors.Wrap(errors.ErrConflict, "lock not acquired")

// releaseScript deletes the key only when it still holds our token, so an expired lock
// taken over by another owner is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReleaseFunc releases a held lock.
type ReleaseFunc func(ctx context.Context) error

// RedisLocker acquires short-lived locks with SET NX PX.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisLocker creates a new RedisLocker. Every key is namespaced with prefix.
func NewRedisLocker(client redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: prefix,
	}
}

// Acquire takes the lock named key for at most ttl. It returns ErrNotAcquired when the
// lock is held elsewhere.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire lock")
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			return errors.Wrap(err, "failed to release lock")
		}
		return nil
	}
	return release, nil
}
