package cart

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/threadlinehq/threadline-backend/pkg/redis"
)

// Storage persists serialized cart state keyed by customer. Implementations
// return ("", nil) when no cart exists for the customer.
type Storage interface {
	Get(ctx context.Context, customerID string) (string, error)
	Set(ctx context.Context, customerID string, value string) error
	Del(ctx context.Context, customerID string) error
}

// RedisStorage keeps carts in redis under the cart key namespace with a
// sliding TTL refreshed on every write.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage builds a redis-backed cart Storage.
func NewRedisStorage(client *redis.Client, ttl time.Duration) (*RedisStorage, error) {
	if client == nil {
		return nil, stderrors.New("cart: redis client is required")
	}
	if ttl <= 0 {
		return nil, stderrors.New("cart: ttl must be positive")
	}
	return &RedisStorage{client: client, ttl: ttl}, nil
}

func (s *RedisStorage) Get(ctx context.Context, customerID string) (string, error) {
	value, err := s.client.Get(ctx, s.client.CartKey(customerID))
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (s *RedisStorage) Set(ctx context.Context, customerID string, value string) error {
	return s.client.Set(ctx, s.client.CartKey(customerID), value, s.ttl)
}

func (s *RedisStorage) Del(ctx context.Context, customerID string) error {
	return s.client.Del(ctx, s.client.CartKey(customerID))
}
