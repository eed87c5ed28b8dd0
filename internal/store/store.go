// Package store persists saved mapping configurations.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jacoelho/rowmap/internal/mapping"
	"github.com/jacoelho/rowmap/internal/source"
	"github.com/jacoelho/rowmap/internal/value"
)

const idPrefix = "mapping:"

var (
	// ErrNotFound is returned when no configuration is stored under an ID.
	ErrNotFound = errors.New("configuration not found")
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
	// ErrInvalidID is returned for IDs that are not "mapping:<unix ms>".
	ErrInvalidID = errors.New("invalid configuration id")
	// ErrConflict is returned by Save when the ID is already taken.
	ErrConflict = errors.New("configuration id already exists")
)

// Config is a saved mapping: where the document comes from and how to shape it.
type Config struct {
	ID        string         `json:"id"`
	Source    source.Source  `json:"source"`
	Mapping   mapping.Rules  `json:"mapping"`
	Filter    *mapping.Query `json:"filter,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Plan compiles the saved rules.
func (c Config) Plan() (*mapping.Plan, error) {
	return mapping.Compile(c.Mapping, c.Filter)
}

func encode(cfg Config) ([]byte, error) {
	data, err := value.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config %s: %w", cfg.ID, err)
	}
	return data, nil
}

func decode(id string, data []byte) (Config, error) {
	var cfg Config
	if err := value.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", id, err)
	}
	return cfg, nil
}

// Store saves and loads configurations by ID. Save never overwrites: an existing
// ID fails with ErrConflict.
type Store interface {
	Save(ctx context.Context, cfg Config) error
	Get(ctx context.Context, id string) (Config, error)
}

// ValidateID checks id has the "mapping:<unix ms>" shape.
func ValidateID(id string) error {
	rest, ok := strings.CutPrefix(id, idPrefix)
	if !ok || rest == "" {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if _, err := strconv.ParseUint(rest, 10, 63); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// IDGenerator hands out "mapping:<unix ms>" identifiers. Within one generator the
// millisecond part strictly increases, even for calls within the same millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a new ID and the time it encodes.
func (g *IDGenerator) Next() (string, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms

	return idPrefix + strconv.FormatInt(ms, 10), time.UnixMilli(ms).UTC()
}
