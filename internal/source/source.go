// Package source fetches JSON documents from the places a mapping can point at:
// HTTP URLs, Redis keys and S3 objects.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jacoelho/rowmap/internal/metrics"
	"github.com/jacoelho/rowmap/internal/sanitizer"
)

// Type names where a document lives.
type Type string

const (
	URL   Type = "url"
	Redis Type = "redis"
	S3    Type = "s3"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrUnavailable       = errors.New("source unavailable")
	ErrUnsupportedSource = errors.New("unsupported source type")
	ErrInvalidSource     = errors.New("invalid source")
	ErrInvalidDocument   = errors.New("invalid document")
	ErrFetch             = errors.New("fetch failed")
)

// Source identifies a document: a URL, a Redis key or an S3 "bucket/key".
type Source struct {
	Type  Type   `json:"type"`
	Value string `json:"value"`
}

func (s Source) String() string {
	return string(s.Type) + ":" + s.Value
}

// Redacted is String with credentials in URL values hashed, for logging.
func (s Source) Redacted() string {
	return string(s.Type) + ":" + sanitizer.URL(s.Value)
}

// Validate checks the type is known and the value is present.
func (s Source) Validate() error {
	switch s.Type {
	case URL, Redis, S3:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedSource, s.Type)
	}
	if strings.TrimSpace(s.Value) == "" {
		return fmt.Errorf("%w: %s value is required", ErrInvalidSource, s.Type)
	}
	return nil
}

// Fetcher loads and decodes the document addressed by value.
type Fetcher interface {
	Fetch(ctx context.Context, value string) (any, error)
}

// Resolver dispatches a Source to the fetcher registered for its type.
type Resolver struct {
	fetchers map[Type]Fetcher
	logger   *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		fetchers: make(map[Type]Fetcher),
		logger:   logger,
	}
}

// Register installs f for t, replacing any previous fetcher.
func (r *Resolver) Register(t Type, f Fetcher) *Resolver {
	r.fetchers[t] = f
	return r
}

// Fetch returns the decoded document for src.
func (r *Resolver) Fetch(ctx context.Context, src Source) (any, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	f, ok := r.fetchers[src.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not configured", ErrUnsupportedSource, src.Type)
	}

	doc, err := f.Fetch(ctx, src.Value)
	metrics.FetchTotal.WithLabelValues(string(src.Type), outcome(err)).Inc()
	if err != nil {
		r.logger.WarnContext(ctx, "fetch failed",
			slog.String("source", src.Redacted()),
			slog.Any("error", err))
		return nil, err
	}

	return doc, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrInvalidDocument):
		return "invalid"
	default:
		return "error"
	}
}
