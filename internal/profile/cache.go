package profile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codecrafters-dev/platform/internal/db/repository"
)

const defaultCacheTTL = 5 * time.Minute

// Cache holds user rows keyed by username. Get returns nil on a miss.
type Cache interface {
	Get(ctx context.Context, username string) (*repository.User, error)
	Set(ctx context.Context, user repository.User) error
	Delete(ctx context.Context, username string) error
}

// RedisCache is a JSON read-through cache for profile rows.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) key(username string) string {
	return "profile:" + username
}

func (c *RedisCache) Get(ctx context.Context, username string) (*repository.User, error) {
	data, err := c.client.Get(ctx, c.key(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var user repository.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *RedisCache) Set(ctx context.Context, user repository.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(user.Username), data, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, username string) error {
	return c.client.Del(ctx, c.key(username)).Err()
}
