package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fiado/backend/internal/application/ledger"
	"github.com/fiado/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockKeyPrefix = "fiado:lock:client:"
	defaultLockTTL       = 30 * time.Second
	defaultRetryInterval = 25 * time.Millisecond
)

// ErrLockNotHeld is returned by an unlock whose token no longer owns the key,
// usually because the TTL expired and another holder took it.
var ErrLockNotHeld = errors.New("client lock not held")

// releaseScript deletes the key only when it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisClientLocker implements ledger.ClientLocker with a SET NX PX lease per
// client. It serializes writers across process instances sharing one Redis.
type RedisClientLocker struct {
	client        redis.UniversalClient
	keyPrefix     string
	ttl           time.Duration
	retryInterval time.Duration
}

// RedisLockerOption configures a RedisClientLocker
type RedisLockerOption func(*RedisClientLocker)

// WithLockTTL sets the lease duration of a held lock
func WithLockTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisClientLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithRetryInterval sets the pause between acquisition attempts
func WithRetryInterval(d time.Duration) RedisLockerOption {
	return func(l *RedisClientLocker) {
		if d > 0 {
			l.retryInterval = d
		}
	}
}

// WithKeyPrefix sets the prefix of lock keys
func WithKeyPrefix(prefix string) RedisLockerOption {
	return func(l *RedisClientLocker) {
		if prefix != "" {
			l.keyPrefix = prefix
		}
	}
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisClientLocker creates a locker on an existing Redis client
func NewRedisClientLocker(client redis.UniversalClient, opts ...RedisLockerOption) *RedisClientLocker {
	l := &RedisClientLocker{
		client:        client,
		keyPrefix:     defaultLockKeyPrefix,
		ttl:           defaultLockTTL,
		retryInterval: defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock blocks until the client's lease is acquired or ctx is done
func (l *RedisClientLocker) Lock(ctx context.Context, clientID string) (ledger.Unlock, error) {
	key := l.keyPrefix + clientID
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return l.unlocker(key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisClientLocker) unlocker(key, token string) ledger.Unlock {
	return func(ctx context.Context) error {
		released, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
		if err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		if released == 0 {
			return ErrLockNotHeld
		}
		return nil
	}
}

var _ ledger.ClientLocker = (*RedisClientLocker)(nil)
