package engine

import (
	"context"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// OptionSource fetches option lists. cacheKey is empty for uncached loads.
type OptionSource interface {
	Options(ctx context.Context, endpoint, cacheKey string) ([]schema.Option, error)
}

// OptionSourceFunc adapts a function into an OptionSource.
type OptionSourceFunc func(ctx context.Context, endpoint, cacheKey string) ([]schema.Option, error)

func (fn OptionSourceFunc) Options(ctx context.Context, endpoint, cacheKey string) ([]schema.Option, error) {
	return fn(ctx, endpoint, cacheKey)
}

// RecordStore performs record reads and writes against the backend.
type RecordStore interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// VariantLoader loads the schema document of a grafted variant.
type VariantLoader interface {
	LoadVariant(ctx context.Context, ref string) (*schema.Document, error)
}

// VariantLoaderFunc adapts a function into a VariantLoader.
type VariantLoaderFunc func(ctx context.Context, ref string) (*schema.Document, error)

func (fn VariantLoaderFunc) LoadVariant(ctx context.Context, ref string) (*schema.Document, error) {
	return fn(ctx, ref)
}

// SiblingLoader resolves variant refs relative to the base document source.
type SiblingLoader struct {
	Loader schema.Loader
	Base   schema.Source
}

func (l SiblingLoader) LoadVariant(ctx context.Context, ref string) (*schema.Document, error) {
	return schema.Load(ctx, l.Loader, schema.Sibling(l.Base, ref))
}

// Identity exposes the signed-in user to the engine.
type Identity interface {
	UserID() string
	IsAdmin() bool
}

// Invalidator drops catalog cache entries after mutations.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}
