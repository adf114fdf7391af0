package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/config"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	"github.com/redis/go-redis/v9"
)

type redisCartCache struct {
	client redis.Cmdable
	cfg    *config.CacheConfig
}

func NewRedisCartCache(client redis.Cmdable, cfg *config.CacheConfig) CartCache {
	return &redisCartCache{
		client: client,
		cfg:    cfg,
	}
}

func (r *redisCartCache) Load(ctx context.Context, sessionID string) (*models.CartSnapshot, bool, error) {

	key := Key(CartKeyPrefix, sessionID)

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {

		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("failed to get key %s from redis: %w", key, err)

	}

	var snapshot models.CartSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cart snapshot for key %s: %w", key, err)
	}

	return &snapshot, true, nil
}

// Save refreshes the TTL on every write, so carts expire after inactivity.
func (r *redisCartCache) Save(ctx context.Context, snapshot *models.CartSnapshot) error {

	key := Key(CartKeyPrefix, snapshot.SessionID)

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal cart snapshot for key %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, data, r.cfg.DefaultTTL).Err(); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}

	return nil

}

func (r *redisCartCache) Delete(ctx context.Context, sessionID string) error {

	key := Key(CartKeyPrefix, sessionID)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}

	return nil

}
