package cache

import (
	"context"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// MemoryConfig sizes the in-memory store.
type MemoryConfig struct {
	// MaxCost is the budget in bytes of cached data.
	MaxCost int64
	// NumCounters is the number of admission counters, about 10x the
	// expected number of entries.
	NumCounters int64
	BufferItems int64
}

// DefaultMemoryConfig fits a few thousand option lists.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		MaxCost:     64 << 20,
		NumCounters: 1e5,
		BufferItems: 64,
	}
}

// MemoryStore keeps entries in a ristretto cache. Ristretto cannot enumerate
// keys, so Clear resets the whole cache.
type MemoryStore struct {
	mu     sync.RWMutex
	store  *ristretto.Cache
	closed bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a MemoryStore. A zero config uses the defaults.
func NewMemoryStore(cfg MemoryConfig) (*MemoryStore, error) {
	if cfg.MaxCost <= 0 || cfg.NumCounters <= 0 {
		cfg = DefaultMemoryConfig()
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryStore{store: store}, nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Entry{}, false, ErrClosed
	}
	value, ok := m.store.Get(key)
	if !ok {
		return Entry{}, false, nil
	}
	entry, ok := value.(Entry)
	return entry, ok, nil
}

// Set writes the entry and waits until it is visible to Get.
func (m *MemoryStore) Set(ctx context.Context, key string, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	cost := int64(len(entry.Data))
	if cost == 0 {
		cost = 1
	}
	m.store.Set(key, entry, cost)
	m.store.Wait()
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	for _, key := range keys {
		m.store.Del(key)
	}
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	m.store.Clear()
	return nil
}

// Close releases the ristretto goroutines.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		m.store.Close()
	}
	return nil
}
