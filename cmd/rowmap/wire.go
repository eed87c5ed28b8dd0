package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jacoelho/rowmap/internal/config"
	"github.com/jacoelho/rowmap/internal/ratelimit"
	"github.com/jacoelho/rowmap/internal/source"
	"github.com/jacoelho/rowmap/internal/store"
)

// components holds the collaborators shared by serve and apply.
type components struct {
	resolver *source.Resolver
	store    store.Store
	closers  []func() error
}

func (c *components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
	})
}

func newResolver(cfg *config.Config, client redis.Cmdable, logger *slog.Logger) (*source.Resolver, error) {
	httpClient, err := cfg.HTTPClient()
	if err != nil {
		return nil, err
	}

	s3, err := source.NewS3Fetcher(cfg.S3Source(), cfg.Fetch.MaxBodyBytes)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.NewKeyed(cfg.Fetch.RateLimit, 1)

	return source.NewResolver(logger).
		Register(source.URL, source.NewHTTPFetcher(httpClient, limiter, cfg.Fetch.MaxBodyBytes)).
		Register(source.Redis, source.NewRedisFetcher(client)).
		Register(source.S3, s3), nil
}

// newComponents wires sources and the configuration store. With withStore false
// only the resolver is built.
func newComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger, withStore bool) (*components, error) {
	c := &components{}

	client := newRedisClient(cfg)
	c.closers = append(c.closers, client.Close)

	resolver, err := newResolver(cfg, client, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.resolver = resolver

	if !withStore {
		return c, nil
	}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		c.store = store.NewMemory()
	case config.DriverSQLite:
		db, err := store.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.closers = append(c.closers, db.Close)
		c.store = store.NewTiered(db, store.NewMemory(), logger)
	case config.DriverRedis:
		c.store = store.NewTiered(store.NewRedis(client, cfg.Store.TTL), store.NewMemory(), logger)
	default:
		_ = c.Close()
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return c, nil
}
