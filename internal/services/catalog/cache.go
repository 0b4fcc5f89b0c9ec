package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"pos-system/internal/models"
)

// ErrCacheMiss is returned when the requested product is not cached
var ErrCacheMiss = errors.New("cache miss")

// ProductCache caches individual product lookups
type ProductCache interface {
	Get(ctx context.Context, id int) (*models.Product, error)
	Set(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int) error
}

// RedisProductCache caches products in Redis with a jittered TTL so entries
// do not expire in lockstep
type RedisProductCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewRedisProductCache creates a product cache on the given Redis client
func NewRedisProductCache(client *redis.Client) *RedisProductCache {
	return &RedisProductCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (c *RedisProductCache) Get(ctx context.Context, id int) (*models.Product, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err)
	}

	return &product, nil
}

func (c *RedisProductCache) Set(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := c.client.Set(ctx, productKey(product.ID), data, c.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *RedisProductCache) Delete(ctx context.Context, id int) error {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}
