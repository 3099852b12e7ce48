package question

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 10 * time.Minute

// Cache keeps category question lists in Redis to offload Postgres.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ListCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(categoryID string) string {
	return "questions:category:" + categoryID
}

// Get returns (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, categoryID string) ([]Question, error) {
	data, err := c.client.Get(ctx, c.key(categoryID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, err
	}
	return qs, nil
}

func (c *Cache) Set(ctx context.Context, categoryID string, qs []Question) error {
	data, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(categoryID), data, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, categoryID string) error {
	return c.client.Del(ctx, c.key(categoryID)).Err()
}
