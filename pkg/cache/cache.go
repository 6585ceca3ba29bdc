// Package cache keeps catalog option lists on the local machine between
// sessions. Entries expire 24 hours after they were written; expiry is
// checked on read and expired entries are removed.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTTL is the lifetime of a catalog entry.
const DefaultTTL = 24 * time.Hour

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("cache: store closed")

// Entry is one cached payload and the time it was written.
type Entry struct {
	Timestamp time.Time
	Data      json.RawMessage
}

// Store persists entries. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Remove(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}

// Clock returns the current time.
type Clock func() time.Time

// Cache applies the TTL on top of a Store.
type Cache struct {
	store  Store
	ttl    time.Duration
	now    Clock
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source used for writes and expiry checks.
func WithClock(clock Clock) Option {
	return func(c *Cache) {
		if clock != nil {
			c.now = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New wraps store.
func New(store Store, options ...Option) *Cache {
	c := &Cache{
		store:  store,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the data stored under key when it is younger than the TTL.
// Expired entries are removed.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	if age := c.now().Sub(entry.Timestamp); age >= c.ttl {
		c.logger.DebugContext(ctx, "cache: entry expired", "key", key, "age", age)
		if err := c.store.Remove(ctx, key); err != nil {
			c.logger.WarnContext(ctx, "cache: remove expired entry", "key", key, "error", err)
		}
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores data under key stamped with the current time.
func (c *Cache) Set(ctx context.Context, key string, data json.RawMessage) error {
	if err := c.store.Set(ctx, key, Entry{Timestamp: c.now(), Data: data}); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes a fresh entry into out.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value and stores it under key.
func (c *Cache) SetJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return c.Set(ctx, key, data)
}

// Remove drops keys.
func (c *Cache) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.store.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("cache: remove: %w", err)
	}
	return nil
}

// Clear drops every entry.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	return nil
}
