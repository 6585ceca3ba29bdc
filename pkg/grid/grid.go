package grid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/client"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Backend performs requests against the record API.
type Backend interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// OptionSource loads filter option lists.
type OptionSource interface {
	Options(ctx context.Context, endpoint, cacheKey string) ([]schema.Option, error)
}

// Invalidator drops cached catalogs after a delete.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Query selects one page. Filters are keyed by filter id; empty values are
// not sent.
type Query struct {
	Page    int
	Search  string
	Filters map[string]string
}

// Page is one loaded page of the grid.
type Page struct {
	Number     int
	Pages      int
	Total      int
	Items      []map[string]any
	Rows       [][]string
	IDs        []string
	Indicators map[string]string
}

// Label renders the pager text.
func (p Page) Label() string {
	return fmt.Sprintf("Página %d de %d", p.Number, p.Pages)
}

// Grid loads and mutates the records of one Config.
type Grid struct {
	cfg         *Config
	backend     Backend
	options     OptionSource
	invalidator Invalidator
	logger      *slog.Logger
}

// Option configures a Grid.
type Option func(*Grid)

// WithOptionSource enables FilterOptions.
func WithOptionSource(src OptionSource) Option {
	return func(g *Grid) {
		g.options = src
	}
}

// WithInvalidator sets who drops cached catalogs after a delete.
func WithInvalidator(inv Invalidator) Option {
	return func(g *Grid) {
		g.invalidator = inv
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Grid) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New builds a Grid for cfg.
func New(cfg *Config, backend Backend, options ...Option) *Grid {
	g := &Grid{cfg: cfg, backend: backend, logger: slog.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the grid config.
func (g *Grid) Config() *Config {
	return g.cfg
}

// URL builds <list>?page=&size= followed by the search and filter params in
// config order.
func (g *Grid) URL(q Query) string {
	page := q.Page
	if page < 1 {
		page = 1
	}
	var b strings.Builder
	b.WriteString(g.cfg.Endpoints.List)
	if strings.Contains(g.cfg.Endpoints.List, "?") {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	b.WriteString("page=" + strconv.Itoa(page))
	b.WriteString("&size=" + strconv.Itoa(g.cfg.PageSize))
	if g.cfg.Search != nil && strings.TrimSpace(q.Search) != "" {
		b.WriteString("&" + url.QueryEscape(g.cfg.Search.Param) + "=" + url.QueryEscape(strings.TrimSpace(q.Search)))
	}
	for _, f := range g.cfg.Filters {
		value := strings.TrimSpace(q.Filters[f.ID])
		if value == "" {
			continue
		}
		b.WriteString("&" + url.QueryEscape(f.Param) + "=" + url.QueryEscape(value))
	}
	return b.String()
}

// Load fetches one page and, when configured, the indicator counters.
func (g *Grid) Load(ctx context.Context, q Query) (Page, error) {
	var raw json.RawMessage
	if err := g.backend.Do(ctx, http.MethodGet, g.URL(q), nil, &raw); err != nil {
		return Page{}, fmt.Errorf("grid: load %s: %w", g.cfg.ID, err)
	}
	listed, err := client.DecodePage(raw)
	if err != nil {
		return Page{}, fmt.Errorf("grid: load %s: %w", g.cfg.ID, err)
	}

	page := Page{
		Number: max(q.Page, 1),
		Pages:  listed.Pages,
		Total:  listed.Total,
		Items:  listed.Items,
		Rows:   make([][]string, 0, len(listed.Items)),
		IDs:    make([]string, 0, len(listed.Items)),
	}
	for _, item := range listed.Items {
		page.Rows = append(page.Rows, g.row(item))
		page.IDs = append(page.IDs, schema.NormalizeID(item[g.cfg.IDField]))
	}

	if g.cfg.Endpoints.Indicators != "" {
		indicators, err := g.indicators(ctx)
		if err != nil {
			g.logger.WarnContext(ctx, "grid: indicators unavailable", "grid", g.cfg.ID, "error", err)
		}
		page.Indicators = indicators
	}
	return page, nil
}

func (g *Grid) row(item map[string]any) []string {
	row := make([]string, len(g.cfg.Columns))
	for i, col := range g.cfg.Columns {
		row[i] = g.cell(item[col.Key])
	}
	return row
}

func (g *Grid) cell(value any) string {
	switch v := value.(type) {
	case nil:
		return g.cfg.NullValue
	case bool:
		if v {
			return "Sí"
		}
		return "No"
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, g.cell(item))
		}
		return strings.Join(parts, ", ")
	default:
		return schema.NormalizeID(v)
	}
}

func (g *Grid) indicators(ctx context.Context) (map[string]string, error) {
	var data map[string]any
	if err := g.backend.Do(ctx, http.MethodGet, g.cfg.Endpoints.Indicators, nil, &data); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(g.cfg.Indicators))
	for _, ind := range g.cfg.Indicators {
		value, ok := data[ind.Key]
		if !ok || value == nil {
			out[ind.Key] = "0"
			continue
		}
		out[ind.Key] = schema.NormalizeID(value)
	}
	return out, nil
}

// FilterOptions loads the option list of every filter with an endpoint.
// Failures are logged and leave that filter without options.
func (g *Grid) FilterOptions(ctx context.Context) map[string][]schema.Option {
	out := make(map[string][]schema.Option, len(g.cfg.Filters))
	if g.options == nil {
		return out
	}
	for _, f := range g.cfg.Filters {
		if f.Endpoint == "" {
			continue
		}
		opts, err := g.options.Options(ctx, f.Endpoint, f.CacheKey)
		if err != nil {
			g.logger.WarnContext(ctx, "grid: filter options unavailable", "filter", f.ID, "error", err)
			continue
		}
		out[f.ID] = opts
	}
	return out
}

// Delete removes record id and invalidates the configured cache keys.
func (g *Grid) Delete(ctx context.Context, id string) error {
	if g.cfg.Endpoints.Delete == "" {
		return fmt.Errorf("grid: %s has no delete endpoint", g.cfg.ID)
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("grid: delete %s: empty id", g.cfg.ID)
	}
	path := strings.ReplaceAll(g.cfg.Endpoints.Delete, schema.IDPlaceholder, url.PathEscape(id))
	if err := g.backend.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("grid: delete %s: %w", path, err)
	}
	if g.invalidator != nil && len(g.cfg.Invalidates) > 0 {
		if err := g.invalidator.Invalidate(ctx, g.cfg.Invalidates...); err != nil {
			g.logger.WarnContext(ctx, "grid: invalidate after delete", "keys", g.cfg.Invalidates, "error", err)
		}
	}
	return nil
}
