package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps configurations for the lifetime of the process.
type Memory struct {
	mu      sync.RWMutex
	configs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{configs: make(map[string][]byte)}
}

// Save stores an encoded copy so later mutation of cfg does not leak in.
func (m *Memory) Save(_ context.Context, cfg Config) error {
	data, err := encode(cfg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.configs[cfg.ID]; ok {
		return fmt.Errorf("%w: %s", ErrConflict, cfg.ID)
	}
	m.configs[cfg.ID] = data
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (Config, error) {
	m.mu.RLock()
	data, ok := m.configs[id]
	m.mu.RUnlock()

	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return decode(id, data)
}

// Len returns the number of stored configurations.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
