package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewRedisLocker(client, "postflow:lock:"), mr
}

func TestRedisLocker_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_AcquireAndRelease", func(t *testing.T) {
		locker, mr := setupLocker(t)

		release, err := locker.Acquire(ctx, "scheduler", time.Minute)
		require.NoError(t, err)
		assert.True(t, mr.Exists("postflow:lock:scheduler"))
		assert.Equal(t, time.Minute, mr.TTL("postflow:lock:scheduler"))

		require.NoError(t, release(ctx))
		assert.False(t, mr.Exists("postflow:lock:scheduler"))

		release, err = locker.Acquire(ctx, "scheduler", time.Minute)
		require.NoError(t, err)
		require.NoError(t, release(ctx))
	})

	t.Run("Error_AlreadyHeld", func(t *testing.T) {
		locker, _ := setupLocker(t)

		release, err := locker.Acquire(ctx, "scheduler", time.Minute)
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, release(ctx))
		}()

		second, err := locker.Acquire(ctx, "scheduler", time.Minute)
		assert.Nil(t, second)
		assert.ErrorIs(t, err, ErrNotAcquired)
	})

	t.Run("Success_ExpiredLockIsNotReleasedByPreviousOwner", func(t *testing.T) {
		locker, mr := setupLocker(t)

		staleRelease, err := locker.Acquire(ctx, "scheduler", time.Second)
		require.NoError(t, err)

		mr.FastForward(2 * time.Second)

		release, err := locker.Acquire(ctx, "scheduler", time.Minute)
		require.NoError(t, err)

		require.NoError(t, staleRelease(ctx))
		assert.True(t, mr.Exists("postflow:lock:scheduler"))

		require.NoError(t, release(ctx))
		assert.False(t, mr.Exists("postflow:lock:scheduler"))
	})

	t.Run("Error_ConnectionFailure", func(t *testing.T) {
		locker, mr := setupLocker(t)
		mr.Close()

		release, err := locker.Acquire(ctx, "scheduler", time.Minute)
		assert.Nil(t, release)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotAcquired)
	})
}
