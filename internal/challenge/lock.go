package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 5 * time.Minute

// ErrSubmissionLocked is returned while another submission of the same user is in flight.
var ErrSubmissionLocked = errors.New("submission already in progress")

// Locker serializes submissions per user across API instances.
type Locker interface {
	Acquire(ctx context.Context, userID uuid.UUID) (func() error, error)
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker is a SETNX lock keyed by user.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire takes the user's submission lock. The lock expires after the TTL
// even if release is never called.
func (l *RedisLocker) Acquire(ctx context.Context, userID uuid.UUID) (func() error, error) {
	key := fmt.Sprintf("submission:lock:%s", userID.String())
	token := uuid.New().String()

	acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, ErrSubmissionLocked
	}

	release := func() error {
		// the request context may already be canceled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}
	return release, nil
}
