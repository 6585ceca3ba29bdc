package grid

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

type call struct {
	Method, Path string
}

type stubBackend struct {
	calls     []call
	responses map[string]string
	fail      error
}

func (b *stubBackend) Do(_ context.Context, method, path string, _ any, out any) error {
	b.calls = append(b.calls, call{method, path})
	if b.fail != nil {
		return b.fail
	}
	body, ok := b.responses[path]
	if !ok || out == nil {
		return nil
	}
	return json.Unmarshal([]byte(body), out)
}

type invalidations []string

func (i *invalidations) Invalidate(_ context.Context, keys ...string) error {
	*i = append(*i, keys...)
	return nil
}

func loadConfig(t *testing.T) *Config {
	t.Helper()
	data, err := os.ReadFile("testdata/rats.yaml")
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	cfg, err := Parse(data, "rats.yaml")
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func TestParse_SortsAndDefaults(t *testing.T) {
	cfg := loadConfig(t)

	if diff := cmp.Diff([]string{"Nombre", "División", "Estado"}, cfg.Headers()); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
	if cfg.PageSize != DefaultPageSize || cfg.IDField != "id" || cfg.NullValue != DefaultNullValue {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Filters[0].ID != "division" {
		t.Fatalf("filters not sorted by order: %+v", cfg.Filters)
	}
}

func TestParse_ReportsEveryProblem(t *testing.T) {
	_, err := Parse([]byte(`{"endpoints": {"delete": "/rats"}, "columns": [{"key": "a"}, {"key": "a"}]}`), "bad.json")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	for _, want := range []string{"endpoints.list is required", "must contain {id}", `duplicate key "a"`} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestGrid_URL(t *testing.T) {
	g := New(loadConfig(t), &stubBackend{})

	cases := []struct {
		name string
		q    Query
		want string
	}{
		{"defaults", Query{}, "/rats?page=1&size=10"},
		{"search and filters in order", Query{Page: 3, Search: " nómina ", Filters: map[string]string{"estado": "ENVIADO", "division": "7"}}, "/rats?page=3&size=10&q=n%C3%B3mina&division_id=7&estado=ENVIADO"},
		{"empty filters skipped", Query{Page: 2, Filters: map[string]string{"estado": ""}}, "/rats?page=2&size=10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.URL(tc.q); got != tc.want {
				t.Fatalf("URL() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGrid_LoadRendersNullCells(t *testing.T) {
	backend := &stubBackend{responses: map[string]string{
		"/rats?page=1&size=10": `{"items": [{"id": 4, "nombre": "Nómina", "division": null, "estado": "ENVIADO"}, {"id": "5", "nombre": "Becas", "estado": null}], "pages": 2}`,
		"/rats/indicadores":    `{"total": 12}`,
	}}
	g := New(loadConfig(t), backend)

	page, err := g.Load(context.Background(), Query{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantRows := [][]string{
		{"Nómina", "—", "ENVIADO"},
		{"Becas", "—", "—"},
	}
	if diff := cmp.Diff(wantRows, page.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"4", "5"}, page.IDs); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"total": "12", "aprobados": "0"}, page.Indicators); diff != "" {
		t.Fatalf("indicators mismatch (-want +got):\n%s", diff)
	}
	if page.Label() != "Página 1 de 2" {
		t.Fatalf("unexpected label %q", page.Label())
	}
}

func TestGrid_DeleteInvalidates(t *testing.T) {
	backend := &stubBackend{}
	var inv invalidations
	g := New(loadConfig(t), backend, WithInvalidator(&inv))

	if err := g.Delete(context.Background(), "4"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if diff := cmp.Diff([]call{{"DELETE", "/rats/4"}}, backend.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(invalidations{"cache_rat_catalogo"}, inv); diff != "" {
		t.Fatalf("invalidations mismatch (-want +got):\n%s", diff)
	}

	backend.fail = errors.New("409 conflict")
	inv = nil
	if err := g.Delete(context.Background(), "4"); err == nil {
		t.Fatalf("expected delete failure")
	}
	if len(inv) != 0 {
		t.Fatalf("failed delete must not invalidate: %v", inv)
	}
}

func TestGrid_FilterOptions(t *testing.T) {
	var requested []string
	src := optionFunc(func(_ context.Context, endpoint, key string) ([]schema.Option, error) {
		requested = append(requested, endpoint+"|"+key)
		return []schema.Option{{ID: "7", Name: "Norte"}}, nil
	})
	g := New(loadConfig(t), &stubBackend{}, WithOptionSource(src))

	got := g.FilterOptions(context.Background())
	if diff := cmp.Diff(map[string][]schema.Option{"division": {{ID: "7", Name: "Norte"}}}, got); diff != "" {
		t.Fatalf("filter options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/divisiones|cache_division"}, requested); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
}

type optionFunc func(ctx context.Context, endpoint, key string) ([]schema.Option, error)

func (fn optionFunc) Options(ctx context.Context, endpoint, key string) ([]schema.Option, error) {
	return fn(ctx, endpoint, key)
}
