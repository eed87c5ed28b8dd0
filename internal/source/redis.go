package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jacoelho/rowmap/internal/value"
)

// RedisFetcher reads a JSON document stored as a string value.
type RedisFetcher struct {
	client redis.Cmdable
}

func NewRedisFetcher(client redis.Cmdable) *RedisFetcher {
	return &RedisFetcher{client: client}
}

func (f *RedisFetcher) Fetch(ctx context.Context, key string) (any, error) {
	if f.client == nil {
		return nil, fmt.Errorf("%w: redis is not configured", ErrUnavailable)
	}

	data, err := f.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: redis key %q", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis: %v", ErrUnavailable, err)
	}

	doc, err := value.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: redis key %q: %w", ErrInvalidDocument, key, err)
	}
	return doc, nil
}
