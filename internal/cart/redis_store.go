package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"pos-system/internal/models"
)

// RedisStore persists carts in Redis, one key per device. Carts are kept
// without a TTL so they survive session restarts until cleared.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a cart store backed by the given Redis client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, deviceID string) (*models.Cart, error) {
	data, err := s.client.Get(ctx, storeKey(deviceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	return &cart, nil
}

func (s *RedisStore) Save(ctx context.Context, deviceID string, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := s.client.Set(ctx, storeKey(deviceID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, deviceID string) error {
	if err := s.client.Del(ctx, storeKey(deviceID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func storeKey(deviceID string) string {
	return fmt.Sprintf("cart:%s", deviceID)
}
