package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jacoelho/rowmap/internal/metrics"
)

// Tiered writes to a primary store and falls back to a secondary one when the
// primary fails with anything but ErrConflict. Reads consult the fallback when
// the primary is unavailable or does not know the ID, so configurations saved
// during an outage stay reachable.
type Tiered struct {
	primary  Store
	fallback Store
	logger   *slog.Logger
}

func NewTiered(primary, fallback Store, logger *slog.Logger) *Tiered {
	if fallback == nil {
		fallback = NewMemory()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tiered{primary: primary, fallback: fallback, logger: logger}
}

func (t *Tiered) Save(ctx context.Context, cfg Config) error {
	if t.primary != nil {
		err := t.primary.Save(ctx, cfg)
		if err == nil || errors.Is(err, ErrConflict) {
			return err
		}
		t.logger.WarnContext(ctx, "primary store save failed, using fallback",
			slog.String("config_id", cfg.ID),
			slog.Any("error", err))
	}

	metrics.StoreFallbackTotal.WithLabelValues("save").Inc()
	return t.fallback.Save(ctx, cfg)
}

func (t *Tiered) Get(ctx context.Context, id string) (Config, error) {
	if t.primary != nil {
		cfg, err := t.primary.Get(ctx, id)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrUnavailable) {
			return Config{}, err
		}
		if errors.Is(err, ErrUnavailable) {
			t.logger.WarnContext(ctx, "primary store get failed, using fallback",
				slog.String("config_id", id),
				slog.Any("error", err))
		}
	}

	metrics.StoreFallbackTotal.WithLabelValues("get").Inc()
	cfg, err := t.fallback.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Config{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cfg, err
}
