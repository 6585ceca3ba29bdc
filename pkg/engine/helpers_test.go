package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-formwizard/pkg/controls"
	"github.com/goliatone/go-formwizard/pkg/engine"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
)

func loadDoc(t testing.TB, name string) *schema.Document {
	t.Helper()
	return testsupport.LoadDocument(t, filepath.Join("testdata", name))
}

func readDoc(name string) (*schema.Document, error) {
	return testsupport.LoadDocumentFromPath(filepath.Join("testdata", name))
}

var testdataVariants = engine.VariantLoaderFunc(func(_ context.Context, ref string) (*schema.Document, error) {
	return readDoc(ref)
})

// fakeOptions serves option lists by endpoint and records every request.
type fakeOptions struct {
	mu       sync.Mutex
	lists    map[string][]schema.Option
	failing  map[string]error
	requests []string
	keys     map[string]string
}

func newFakeOptions() *fakeOptions {
	return &fakeOptions{
		lists: map[string][]schema.Option{
			"/subsecretarias":      {{ID: "42", Name: "Subsecretaría de Salud"}, {ID: "43", Name: "Subsecretaría de Redes"}},
			"/divisions?parent=42": {{ID: "7", Name: "División Jurídica"}, {ID: "8", Name: "División TI"}},
			"/divisions?parent=43": {{ID: "9", Name: "División Redes"}},
			"/catalog/a":           {{ID: "a-1", Name: "Catálogo A"}},
		},
		failing: map[string]error{},
		keys:    map[string]string{},
	}
}

func (f *fakeOptions) Options(_ context.Context, endpoint, cacheKey string) ([]schema.Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, endpoint)
	f.keys[endpoint] = cacheKey
	if err, ok := f.failing[endpoint]; ok {
		return nil, err
	}
	return f.lists[endpoint], nil
}

func (f *fakeOptions) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.requests...)
	sort.Strings(out)
	return out
}

func (f *fakeOptions) Fail(endpoint string) {
	f.mu.Lock()
	f.failing[endpoint] = errors.New("backend unavailable")
	f.mu.Unlock()
}

type storeCall struct {
	Method string
	Path   string
	Body   any
}

// fakeStore serves records for GET and answers writes with a new id.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]map[string]any
	failing map[string]error
	calls   []storeCall
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]map[string]any{}, failing: map[string]error{}}
}

func (s *fakeStore) Do(_ context.Context, method, path string, body, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, storeCall{Method: method, Path: path, Body: body})
	if err, ok := s.failing[method+" "+path]; ok {
		return err
	}
	var response any = map[string]any{"id": 99}
	if method == "GET" {
		record, ok := s.records[path]
		if !ok {
			return fmt.Errorf("GET %s: 404", path)
		}
		response = record
	}
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *fakeStore) Calls() []storeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storeCall(nil), s.calls...)
}

type identity struct {
	id    string
	admin bool
}

func (i identity) UserID() string { return i.id }
func (i identity) IsAdmin() bool  { return i.admin }

// recordingObserver counts notifications.
type recordingObserver struct {
	engine.NopObserver
	loaded   int
	failures []error
	last     engine.NavState
}

func (o *recordingObserver) Loaded()                              { o.loaded++ }
func (o *recordingObserver) LoadFailed(err error)                 { o.failures = append(o.failures, err) }
func (o *recordingObserver) NavigationChanged(ns engine.NavState) { o.last = ns }

type harness struct {
	engine   *engine.Engine
	options  *fakeOptions
	store    *fakeStore
	observer *recordingObserver
}

func newHarness(t testing.TB, docName string, opts ...engine.Option) *harness {
	t.Helper()
	h, err := buildHarness(docName, opts...)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return h
}

func buildHarness(docName string, opts ...engine.Option) (*harness, error) {
	h := &harness{options: newFakeOptions(), store: newFakeStore(), observer: &recordingObserver{}}
	doc, err := readDoc(docName)
	if err != nil {
		return nil, err
	}
	clock := controls.WithClock(func() time.Time { return time.Time{} })
	base := []engine.Option{
		engine.WithOptionSource(h.options),
		engine.WithRecordStore(h.store),
		engine.WithVariantLoader(testdataVariants),
		engine.WithObserver(h.observer),
		engine.WithControls(controls.NewRegistry(clock)),
	}
	h.engine, err = engine.New(doc, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("engine.New: %w", err)
	}
	return h, nil
}

func (h *harness) start() {
	h.engine.Start(context.Background())
	h.engine.Settle()
}

func (h *harness) set(t testing.TB, key string, value any) {
	t.Helper()
	if err := h.engine.Set(key, value); err != nil {
		t.Fatalf("Set(%s, %v): %v", key, value, err)
	}
}

func sectionTitles(e *engine.Engine) string {
	var titles []string
	for _, s := range e.Sections() {
		titles = append(titles, s.Title)
	}
	return strings.Join(titles, ",")
}

func optionIDs(t testing.TB, e *engine.Engine, key string) []string {
	t.Helper()
	c, ok := e.Lookup(key)
	if !ok {
		t.Fatalf("%s not registered", key)
	}
	sel, ok := c.(*controls.Select)
	if !ok {
		t.Fatalf("%s is %T, not a select", key, c)
	}
	ids := []string{}
	for _, opt := range sel.Options() {
		ids = append(ids, opt.ID)
	}
	return ids
}
