package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader resolves a Source into raw document bytes.
type Loader interface {
	Load(ctx context.Context, src Source) ([]byte, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem enables loading from an abstract filesystem; SourceFromFS
	// sources fail when nil.
	FileSystem fs.FS

	// HTTPClient allows callers to inject custom HTTP behaviour. Nil means
	// HTTP sources are disabled unless AllowHTTPFallback is true.
	HTTPClient *http.Client

	// AllowHTTPFallback toggles a default HTTP client when no client is
	// supplied.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS implementation for SourceFromFS lookups.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote schema documents.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and an optional
// timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// NewLoaderOptions applies a set of LoaderOption values and returns the
// resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Load fetches and parses a document. Any failure is wrapped in
// ErrInvalidSchema when it concerns the document content.
func Load(ctx context.Context, loader Loader, src Source) (*Document, error) {
	if loader == nil {
		return nil, errors.New("schema: loader is nil")
	}
	if src == nil {
		return nil, errors.New("schema: source is nil")
	}
	data, err := loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("schema: load %s: %w", src.Location(), err)
	}
	return Parse(data, src.Location())
}

// Parse decodes a JSON or YAML document and validates it. JSON is tried first;
// YAML is the fallback.
func Parse(data []byte, source string) (*Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: file %s is empty", ErrInvalidSchema, source)
	}

	var doc Document
	if jsonErr := json.Unmarshal(data, &doc); jsonErr != nil {
		doc = Document{}
		if yamlErr := yaml.Unmarshal(data, &doc); yamlErr != nil {
			return nil, fmt.Errorf("%w: parse %s: invalid JSON or YAML", ErrInvalidSchema, source)
		}
	}
	doc.source = source

	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
