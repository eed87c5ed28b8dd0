package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores each configuration as a JSON string under its ID.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedis stores entries without expiry when ttl is zero.
func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Save(ctx context.Context, cfg Config) error {
	data, err := encode(cfg)
	if err != nil {
		return err
	}

	created, err := r.client.SetNX(ctx, cfg.ID, data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: redis set %s: %v", ErrUnavailable, cfg.ID, err)
	}
	if !created {
		return fmt.Errorf("%w: %s", ErrConflict, cfg.ID)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id string) (Config, error) {
	data, err := r.client.Get(ctx, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Config{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: redis get %s: %v", ErrUnavailable, id, err)
	}
	return decode(id, data)
}
