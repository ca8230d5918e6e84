package lock

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix    = "hiresync:lock:progression:"
	defaultLeaseTTL  = 30 * time.Second
	acquirePollDelay = 50 * time.Millisecond
)

// RedisLocker implements Locker with Redis SET NX leases, so mutations on
// one progression stay serialized across processes. The lease expires on
// its own if a holder dies without releasing.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisLocker creates a Redis-backed locker.
func NewRedisLocker(client *redis.Client, logger *slog.Logger) *RedisLocker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLocker{
		client: client,
		ttl:    defaultLeaseTTL,
		logger: logger,
	}
}

// Acquire polls SET NX until the lease is obtained or the context ends.
func (l *RedisLocker) Acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	key := lockKeyPrefix + id.String()
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(acquirePollDelay):
		}
	}

	release := func() {
		// Only delete the lease if we still own it.
		const script = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
		if err := l.client.Eval(context.Background(), script, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release progression lock", "key", key, "error", err)
		}
	}
	return release, nil
}
