package translation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 24 * time.Hour

// Cache is the Redis tier in front of the translations table.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(questionID, lang string) string {
	return "translation:" + questionID + ":" + lang
}

// Get returns ok=false on a miss.
func (c *Cache) Get(ctx context.Context, questionID, lang string) (Result, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(questionID, lang)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, false, err
	}
	return r, true, nil
}

func (c *Cache) Set(ctx context.Context, questionID, lang string, r Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(questionID, lang), data, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, questionID, lang string) error {
	return c.client.Del(ctx, cacheKey(questionID, lang)).Err()
}
