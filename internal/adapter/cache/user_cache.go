package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-api-service/internal/domain/user"
	"user-api-service/pkg/logger"
)

const keyPrefix = "usuarios:user:"

// UserCache is a read-through cache of public user records keyed by id.
// Cached entries never carry the password hash.
type UserCache interface {
	// Get returns the cached user, or nil on a miss.
	Get(ctx context.Context, id int64) (*domain.User, error)
	Set(ctx context.Context, u *domain.User) error
	// Invalidate drops the entries for ids. Missing keys are ignored.
	Invalidate(ctx context.Context, ids ...int64) error
}

// entry is the stored form of a user.
type entry struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RedisUserCache implements UserCache on top of Redis string keys with a TTL.
type RedisUserCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client redis.Cmdable, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log.Named("user_cache"),
	}
}

// Key returns the Redis key holding user id.
func Key(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

// Get implements UserCache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %d: %w", id, err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		// a corrupt entry is dropped and treated as a miss
		logger.WithContext(ctx, c.log).Warn("discarding unreadable cache entry", zap.Int64("id", id), zap.Error(err))
		_ = c.client.Del(ctx, Key(id)).Err()
		return nil, nil
	}

	return &domain.User{ID: e.ID, Name: e.Name, Email: e.Email}, nil
}

// Set implements UserCache.
func (c *RedisUserCache) Set(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("cache set: nil user")
	}

	data, err := json.Marshal(entry{ID: u.ID, Name: u.Name, Email: u.Email})
	if err != nil {
		return fmt.Errorf("cache set %d: %w", u.ID, err)
	}
	if err := c.client.Set(ctx, Key(u.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %d: %w", u.ID, err)
	}
	return nil
}

// Invalidate implements UserCache.
func (c *RedisUserCache) Invalidate(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
