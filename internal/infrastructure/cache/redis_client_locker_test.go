package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fiado/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis connects to FIADO_TEST_REDIS_ADDR or skips the test
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("FIADO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FIADO_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisClientLocker_Lock(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	prefix := "fiado:test:" + uuid.NewString() + ":"
	locker := NewRedisClientLocker(client,
		WithKeyPrefix(prefix),
		WithLockTTL(time.Second),
		WithRetryInterval(5*time.Millisecond),
	)

	t.Run("second holder waits until release", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "c1")
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, "c1")
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		require.NoError(t, unlock(ctx))
		again, err := locker.Lock(ctx, "c1")
		require.NoError(t, err)
		require.NoError(t, again(ctx))
	})

	t.Run("stale token does not release a newer lease", func(t *testing.T) {
		short := NewRedisClientLocker(client, WithKeyPrefix(prefix), WithLockTTL(20*time.Millisecond))
		unlock, err := short.Lock(ctx, "c2")
		require.NoError(t, err)
		time.Sleep(40 * time.Millisecond)

		newer, err := locker.Lock(ctx, "c2")
		require.NoError(t, err)

		assert.ErrorIs(t, unlock(ctx), ErrLockNotHeld)
		exists, err := client.Exists(ctx, prefix+"c2").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
		require.NoError(t, newer(ctx))
	})
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, config.RedisConfig{Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestLockerFactory_CreateLocker(t *testing.T) {
	ctx := context.Background()
	unreachable := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	t.Run("redis disabled uses memory", func(t *testing.T) {
		locker, closeFn, err := NewLockerFactory(config.RedisConfig{}, config.LedgerConfig{}).CreateLocker(ctx)
		require.NoError(t, err)
		assert.IsType(t, &MemoryClientLocker{}, locker)
		assert.NoError(t, closeFn())
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		locker, _, err := NewLockerFactory(unreachable, config.LedgerConfig{}).CreateLocker(ctx)
		require.NoError(t, err)
		assert.IsType(t, &MemoryClientLocker{}, locker)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		_, _, err := NewLockerFactory(unreachable, config.LedgerConfig{}, WithInMemoryFallback(false)).CreateLocker(ctx)
		require.Error(t, err)
	})
}
