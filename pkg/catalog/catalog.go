// Package catalog serves option lists for remote combos, cache first.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-formwizard/pkg/cache"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Fetcher retrieves an option list from the backend.
type Fetcher interface {
	Options(ctx context.Context, endpoint string) ([]schema.Option, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, endpoint string) ([]schema.Option, error)

func (fn FetcherFunc) Options(ctx context.Context, endpoint string) ([]schema.Option, error) {
	return fn(ctx, endpoint)
}

// Recorder observes cache lookups.
type Recorder interface {
	CatalogHit()
	CatalogMiss()
	CatalogError()
}

type nopRecorder struct{}

func (nopRecorder) CatalogHit()   {}
func (nopRecorder) CatalogMiss()  {}
func (nopRecorder) CatalogError() {}

// Service resolves option lists. Lists fetched under a cache key are stored
// for the cache TTL; uncached lookups always hit the backend. Concurrent
// lookups of the same endpoint and key share one fetch.
type Service struct {
	fetcher  Fetcher
	cache    *cache.Cache
	recorder Recorder
	logger   *slog.Logger
	group    singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables caching. Without it every lookup is fetched.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds a Service over fetcher.
func New(fetcher Fetcher, options ...Option) *Service {
	s := &Service{
		fetcher:  fetcher,
		recorder: nopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Options returns the list behind endpoint. An empty cacheKey bypasses the
// cache. Empty lists are not cached.
func (s *Service) Options(ctx context.Context, endpoint, cacheKey string) ([]schema.Option, error) {
	if opts, ok := s.cached(ctx, cacheKey); ok {
		s.recorder.CatalogHit()
		return opts, nil
	}

	value, err, shared := s.group.Do(cacheKey+"\x00"+endpoint, func() (any, error) {
		s.recorder.CatalogMiss()
		opts, err := s.fetcher.Options(ctx, endpoint)
		if err != nil {
			s.recorder.CatalogError()
			return nil, fmt.Errorf("catalog: fetch %s: %w", endpoint, err)
		}
		s.store(ctx, cacheKey, opts)
		return opts, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "catalog: shared fetch", "endpoint", endpoint, "cache_key", cacheKey)
	}
	return cloneOptions(value.([]schema.Option)), nil
}

// Invalidate drops cached lists so the next lookup refetches them.
func (s *Service) Invalidate(ctx context.Context, keys ...string) error {
	if s.cache == nil || len(keys) == 0 {
		return nil
	}
	s.logger.DebugContext(ctx, "catalog: invalidate", "keys", keys)
	return s.cache.Remove(ctx, keys...)
}

// Clear drops every cached list.
func (s *Service) Clear(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

func (s *Service) cached(ctx context.Context, key string) ([]schema.Option, bool) {
	if s.cache == nil || key == "" {
		return nil, false
	}
	var opts []schema.Option
	ok, err := s.cache.GetJSON(ctx, key, &opts)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog: cache read failed", "cache_key", key, "error", err)
		return nil, false
	}
	if !ok || len(opts) == 0 {
		return nil, false
	}
	return opts, true
}

func (s *Service) store(ctx context.Context, key string, opts []schema.Option) {
	if s.cache == nil || key == "" || len(opts) == 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, key, opts); err != nil {
		s.logger.WarnContext(ctx, "catalog: cache write failed", "cache_key", key, "error", err)
	}
}

func cloneOptions(opts []schema.Option) []schema.Option {
	if opts == nil {
		return []schema.Option{}
	}
	return append([]schema.Option(nil), opts...)
}
