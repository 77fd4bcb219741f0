package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/rocketcart/internal/domain"
	"github.com/nikolayk812/rocketcart/internal/port"
	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	client *redis.Client
	key    string
}

// NewRedis keeps the JSON snapshot at key without expiry.
func NewRedis(client *redis.Client, key string) (port.CartRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &redisRepository{
		client: client,
		key:    key,
	}, nil
}

func (r *redisRepository) Load(ctx context.Context) ([]domain.LineItem, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.LineItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("client.Get: %w", err)
	}

	return decodeSnapshot(data)
}

func (r *redisRepository) Save(ctx context.Context, items []domain.LineItem) error {
	data, err := encodeSnapshot(items)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}
