package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formwizard/pkg/cache"
	"github.com/goliatone/go-formwizard/pkg/engine"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

var (
	_ engine.OptionSource = (*Service)(nil)
	_ engine.Invalidator  = (*Service)(nil)
)

type counter struct {
	hits, misses, errors atomic.Int32
}

func (c *counter) CatalogHit()   { c.hits.Add(1) }
func (c *counter) CatalogMiss()  { c.misses.Add(1) }
func (c *counter) CatalogError() { c.errors.Add(1) }

func memoryCache(t *testing.T, options ...cache.Option) *cache.Cache {
	t.Helper()
	store, err := cache.NewMemoryStore(cache.MemoryConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return cache.New(store, options...)
}

var divisions = []schema.Option{{ID: "7", Name: "Norte"}, {ID: "8", Name: "Sur"}}

func TestService_CachesByKey(t *testing.T) {
	var calls atomic.Int32
	fetch := FetcherFunc(func(context.Context, string) ([]schema.Option, error) {
		calls.Add(1)
		return divisions, nil
	})
	rec := &counter{}
	svc := New(fetch, WithCache(memoryCache(t)), WithRecorder(rec))
	ctx := context.Background()

	for range 3 {
		got, err := svc.Options(ctx, "/divisiones", "cache_division")
		require.NoError(t, err)
		assert.Equal(t, divisions, got)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(2), rec.hits.Load())

	_, err := svc.Options(ctx, "/divisiones?parent=1", "")
	require.NoError(t, err)
	_, err = svc.Options(ctx, "/divisiones?parent=1", "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load(), "uncached lookups always fetch")

	require.NoError(t, svc.Invalidate(ctx, "cache_division"))
	_, err = svc.Options(ctx, "/divisiones", "cache_division")
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestService_RefetchesAfterTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	var calls atomic.Int32
	fetch := FetcherFunc(func(context.Context, string) ([]schema.Option, error) {
		calls.Add(1)
		return divisions, nil
	})
	svc := New(fetch, WithCache(memoryCache(t, cache.WithClock(func() time.Time { return now }))))
	ctx := context.Background()

	_, err := svc.Options(ctx, "/divisiones", "cache_division")
	require.NoError(t, err)
	now = now.Add(cache.DefaultTTL)
	_, err = svc.Options(ctx, "/divisiones", "cache_division")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestService_CollapsesConcurrentFetches(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := FetcherFunc(func(context.Context, string) ([]schema.Option, error) {
		calls.Add(1)
		<-release
		return divisions, nil
	})
	svc := New(fetch, WithCache(memoryCache(t)))

	const callers = 8
	var wg sync.WaitGroup
	var started sync.WaitGroup
	results := make([][]schema.Option, callers)
	for i := range callers {
		wg.Add(1)
		started.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			results[i], _ = svc.Options(context.Background(), "/divisiones", "cache_division")
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, got := range results {
		assert.Equal(t, divisions, got)
	}
}

func TestService_FetchErrorsAreNotCached(t *testing.T) {
	fail := true
	fetch := FetcherFunc(func(context.Context, string) ([]schema.Option, error) {
		if fail {
			return nil, errors.New("backend down")
		}
		return divisions, nil
	})
	rec := &counter{}
	svc := New(fetch, WithCache(memoryCache(t)), WithRecorder(rec))
	ctx := context.Background()

	_, err := svc.Options(ctx, "/divisiones", "cache_division")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog: fetch /divisiones")
	assert.Equal(t, int32(1), rec.errors.Load())

	fail = false
	got, err := svc.Options(ctx, "/divisiones", "cache_division")
	require.NoError(t, err)
	assert.Equal(t, divisions, got)
}
