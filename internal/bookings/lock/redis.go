package lock

import (
	"context"
	"fmt"
	"time"

	"officehub/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client        redis.Cmdable
	ttl           time.Duration
	retryInterval time.Duration
	prefix        string
	log           *logger.Logger
}

func NewRedisLocker(client redis.Cmdable, ttl, retryInterval time.Duration, log *logger.Logger) *RedisLocker {
	return &RedisLocker{
		client:        client,
		ttl:           ttl,
		retryInterval: retryInterval,
		prefix:        "officehub:",
		log:           log,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, roomID string) (ReleaseFunc, error) {
	key := l.prefix + lockID(roomID)
	token := uuid.NewString()
	wait := l.retryInterval

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to set room lock: %w", err)
		}
		if ok {
			return once(func() { l.release(key, token) }), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: room %s: %w", ErrNotAcquired, roomID, ctx.Err())
		case <-time.After(wait):
		}
		wait = min(wait*2, maxRetryInterval)
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.log.Warn("Failed to release room lock", "key", key, "error", err)
	}
}
