package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("sender lock not acquired")

// Locker serializes conversation turns per sender. Two messages from the
// same WhatsApp number must never read the same stale conversation state.
type Locker interface {
	WithSenderLock(ctx context.Context, senderKey string, fn func(ctx context.Context) error) error
}

type redisSenderLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSenderLocker creates a locker that uses a per sender Redis key
func NewRedisSenderLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisSenderLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisSenderLocker) WithSenderLock(ctx context.Context, senderKey string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:sender:%s", senderKey)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire sender lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisSenderLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release sender lock: %w", err)
	}
	return nil
}
