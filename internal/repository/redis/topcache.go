package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/martinmiralles/mar-pokemart/internal/domain"
)

const topProductsKey = "pokemart:products:top"

// TopProductsCache holds the serialized top-rated listing.
type TopProductsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTopProductsCache creates a cache whose entries expire after ttl.
func NewTopProductsCache(client *redis.Client, ttl time.Duration) *TopProductsCache {
	return &TopProductsCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached listing. ok is false on a miss.
func (c *TopProductsCache) Get(ctx context.Context) (products []domain.Product, ok bool, err error) {
	data, err := c.client.Get(ctx, topProductsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get top products: %w", err)
	}

	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, fmt.Errorf("unmarshal top products: %w", err)
	}

	return products, true, nil
}

// Set stores the listing with the configured TTL.
func (c *TopProductsCache) Set(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal top products: %w", err)
	}

	if err := c.client.Set(ctx, topProductsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set top products: %w", err)
	}

	return nil
}

// Invalidate drops the cached listing.
func (c *TopProductsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, topProductsKey).Err(); err != nil {
		return fmt.Errorf("redis del top products: %w", err)
	}
	return nil
}
