package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

const form = `{"endpoint": "/activos", "sections": [{"title": "Datos", "fields": [{"key": "nombre", "type": "text"}]}]}`

func TestLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activo.json")
	if err := os.WriteFile(path, []byte(form), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := New(schema.NewLoaderOptions()).Load(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != form {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestLoader_FS(t *testing.T) {
	files := fstest.MapFS{"forms/activo.json": {Data: []byte(form)}}
	l := New(schema.NewLoaderOptions(schema.WithFileSystem(files)))

	data, err := l.Load(context.Background(), schema.SourceFromFS("forms/activo.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != form {
		t.Fatalf("unexpected payload %q", data)
	}

	if _, err := New(schema.NewLoaderOptions()).Load(context.Background(), schema.SourceFromFS("forms/activo.json")); err == nil {
		t.Fatalf("expected an error without a file system")
	}
}

func TestLoader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept"), "application/json") {
			t.Errorf("unexpected accept header %q", r.Header.Get("Accept"))
		}
		if r.URL.Path == "/missing.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(form))
	}))
	defer srv.Close()

	l := New(schema.NewLoaderOptions(schema.WithHTTPFallback(time.Second)))
	data, err := l.Load(context.Background(), schema.SourceFromURL(srv.URL+"/activo.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != form {
		t.Fatalf("unexpected payload %q", data)
	}

	if _, err := l.Load(context.Background(), schema.SourceFromURL(srv.URL+"/missing.json")); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected a status error, got %v", err)
	}
}

func TestLoader_HTTPDisabled(t *testing.T) {
	_, err := New(schema.NewLoaderOptions()).Load(context.Background(), schema.SourceFromURL("http://example.invalid/a.json"))
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected http support to be disabled, got %v", err)
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(schema.NewLoaderOptions()).Load(ctx, schema.SourceFromFile("x.json")); err == nil {
		t.Fatalf("expected the cancelled context to be reported")
	}
}

func TestLoader_ParsesThroughSchema(t *testing.T) {
	files := fstest.MapFS{"activo.json": {Data: []byte(form)}}
	doc, err := schema.Load(context.Background(), New(schema.NewLoaderOptions(schema.WithFileSystem(files))), schema.SourceFromFS("activo.json"))
	if err != nil {
		t.Fatalf("schema.Load: %v", err)
	}
	if doc.Endpoint != "/activos" || len(doc.Sections) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}
}
