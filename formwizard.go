// Package formwizard is the entry point for building schema-driven record
// wizards. It wires a schema loader, the engine defaults, and variant lookup
// relative to the base document.
package formwizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formwizard/internal/loader"
	"github.com/goliatone/go-formwizard/pkg/compose"
	"github.com/goliatone/go-formwizard/pkg/engine"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Document aliases schema.Document for callers that only need the facade.
type Document = schema.Document

// Engine aliases engine.Engine.
type Engine = engine.Engine

// Option configures the engine built by New and Open.
type Option = engine.Option

// DefaultPoolSize bounds concurrent background work of engines built here.
const DefaultPoolSize = engine.DefaultPoolSize

// NewLoader constructs a schema loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return loader.New(schema.NewLoaderOptions(options...))
}

// LoadSchema fetches and validates one document.
func LoadSchema(ctx context.Context, src schema.Source, options ...schema.LoaderOption) (*schema.Document, error) {
	return schema.Load(ctx, NewLoader(options...), src)
}

// ComposeCategories selects the per-category assessment composer.
const ComposeCategories = "categories"

// New builds an engine with a queue dispatcher, a pool of DefaultPoolSize and
// the composer named by the document. Later options override the defaults.
func New(doc *schema.Document, opts ...Option) (*engine.Engine, error) {
	if doc == nil {
		return nil, errors.New("formwizard: document is nil")
	}
	base := []Option{
		engine.WithDispatcher(engine.NewQueueDispatcher()),
		engine.WithPool(engine.NewPool(DefaultPoolSize)),
	}
	switch doc.Compose {
	case "":
	case ComposeCategories:
		base = append(base, engine.WithComposer(compose.NewCategoryComposer()))
	default:
		return nil, fmt.Errorf("formwizard: unknown composer %q", doc.Compose)
	}
	return engine.New(doc, append(base, opts...)...)
}

// Open loads the document behind src and builds its engine. Variant schemas
// are resolved as siblings of src through the same loader.
func Open(ctx context.Context, l schema.Loader, src schema.Source, opts ...Option) (*engine.Engine, error) {
	if l == nil {
		l = NewLoader()
	}
	doc, err := schema.Load(ctx, l, src)
	if err != nil {
		return nil, err
	}
	variants := engine.WithVariantLoader(engine.SiblingLoader{Loader: l, Base: src})
	return New(doc, append([]Option{variants}, opts...)...)
}
