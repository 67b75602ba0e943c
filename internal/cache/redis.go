package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func buildKey(userID int64, model string, limit int) string {
	return fmt.Sprintf("rec:user:%d:model:%s:limit:%d", userID, model, limit)
}

// Get returns a cached ranking, reporting whether the key was present.
func (c *Cache) Get(ctx context.Context, userID int64, model string, limit int) ([]domain.Candidate, bool, error) {
	key := buildKey(userID, model, limit)
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var recs []domain.Candidate
	if err := json.Unmarshal([]byte(val), &recs); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached recommendations %s: %w", key, err)
	}
	return recs, true, nil
}

// Set stores a ranking under the user/model/limit key.
func (c *Cache) Set(ctx context.Context, userID int64, model string, limit int, recs []domain.Candidate) error {
	key := buildKey(userID, model, limit)
	val, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// ClearUser drops all cached rankings for one user, across models and
// limits. Used when the user's interaction history changes.
func (c *Cache) ClearUser(ctx context.Context, userID int64) error {
	pattern := fmt.Sprintf("rec:user:%d:model:*", userID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
