package cache

import (
	"context"
	"fmt"

	"github.com/fiado/backend/internal/application/ledger"
	"github.com/fiado/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LockerFactory creates client lockers based on configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	ledgerConfig          config.LedgerConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-process locker. Default is true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(redisCfg config.RedisConfig, ledgerCfg config.LedgerConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           redisCfg,
		ledgerConfig:          ledgerCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateLocker returns a Redis locker when Redis is enabled and reachable.
// The returned close function releases the Redis connection, if any.
func (f *LockerFactory) CreateLocker(ctx context.Context) (ledger.ClientLocker, func() error, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory client locker")
		return NewMemoryClientLocker(), func() error { return nil }, nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis client locker", zap.String("addr", f.redisConfig.Addr()))
		return f.newRedisLocker(client), client.Close, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("Redis required for client locking but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory client locker. "+
		"Writes from other instances will not be serialized.",
		zap.Error(err),
	)
	return NewMemoryClientLocker(), func() error { return nil }, nil
}

func (f *LockerFactory) newRedisLocker(client redis.UniversalClient) *RedisClientLocker {
	return NewRedisClientLocker(client,
		WithKeyPrefix(f.redisConfig.KeyPrefix),
		WithLockTTL(f.ledgerConfig.LockTTL),
	)
}
