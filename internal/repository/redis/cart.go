package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/OrderDeskGo/internal/domain"
	apperrors "github.com/utafrali/OrderDeskGo/internal/pkg/errors"
)

const keyPrefix = "orderdesk:cart:"

// CartRepository implements repository.CartRepository using Redis.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a Redis-backed cart snapshot repository. The TTL
// matches the session TTL so orphaned snapshots expire on their own.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the cart snapshot for a parent record.
func (r *CartRepository) Get(ctx context.Context, parentID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, keyPrefix+parentID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", parentID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return &cart, nil
}

// Save persists a cart snapshot with the configured TTL.
func (r *CartRepository) Save(ctx context.Context, parentID string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+parentID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Delete removes the cart snapshot for a parent record.
func (r *CartRepository) Delete(ctx context.Context, parentID string) error {
	if err := r.client.Del(ctx, keyPrefix+parentID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
