package cache

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newMemory(t *testing.T) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(MemoryConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"sqlite":  newSQLite(t),
		"memory":  newMemory(t),
		"layered": NewLayered(newMemory(t), newSQLite(t)),
	}
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
			c := New(store, WithClock(clock.Now))

			require.NoError(t, c.Set(ctx, "cache_division", json.RawMessage(`[{"id":"7","nombre":"Norte"}]`)))

			clock.Advance(DefaultTTL - time.Minute)
			data, ok, err := c.Get(ctx, "cache_division")
			require.NoError(t, err)
			require.True(t, ok)
			assert.JSONEq(t, `[{"id":"7","nombre":"Norte"}]`, string(data))

			clock.Advance(time.Minute)
			_, ok, err = c.Get(ctx, "cache_division")
			require.NoError(t, err)
			assert.False(t, ok, "entry must expire at 24h")

			_, ok, err = store.Get(ctx, "cache_division")
			require.NoError(t, err)
			assert.False(t, ok, "expired entry must be removed")
		})
	}
}

func TestCache_RemoveAndClear(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := New(store)

			require.NoError(t, c.SetJSON(ctx, "a", []string{"1"}))
			require.NoError(t, c.SetJSON(ctx, "b", []string{"2"}))
			require.NoError(t, c.SetJSON(ctx, "c", []string{"3"}))

			require.NoError(t, c.Remove(ctx, "a", "b"))
			var got []string
			ok, err := c.GetJSON(ctx, "a", &got)
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = c.GetJSON(ctx, "c", &got)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []string{"3"}, got)

			require.NoError(t, c.Clear(ctx))
			ok, err = c.GetJSON(ctx, "c", &got)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	stamp := time.Unix(1_700_000_000, 0)
	require.NoError(t, first.Set(ctx, "cache_subsecretaria", Entry{Timestamp: stamp, Data: json.RawMessage(`[]`)}))
	require.NoError(t, first.Set(ctx, "cache_subsecretaria", Entry{Timestamp: stamp.Add(time.Hour), Data: json.RawMessage(`[1]`)}))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	entry, ok, err := second.Get(ctx, "cache_subsecretaria")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stamp.Add(time.Hour).Unix(), entry.Timestamp.Unix())
	assert.Equal(t, `[1]`, string(entry.Data))

	keys, err := second.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cache_subsecretaria"}, keys)
}

func TestLayered_RefillsFront(t *testing.T) {
	ctx := context.Background()
	front, back := newMemory(t), newSQLite(t)
	require.NoError(t, back.Set(ctx, "k", Entry{Timestamp: time.Now(), Data: json.RawMessage(`"v"`)}))

	l := NewLayered(front, back)
	_, ok, err := l.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = front.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "back hit must refill the front store")
}

func TestMemoryStore_ClosedRejectsUse(t *testing.T) {
	store, err := NewMemoryStore(DefaultMemoryConfig())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, _, err = store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}
