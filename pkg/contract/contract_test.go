package contract

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/grid"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

func loadSpec(t *testing.T) *Spec {
	t.Helper()
	data, err := os.ReadFile("testdata/backend.yaml")
	if err != nil {
		t.Fatalf("read spec: %v", err)
	}
	spec, err := Load(context.Background(), data)
	if err != nil {
		t.Fatalf("load spec: %v", err)
	}
	return spec
}

func TestLoad_IndexesPaths(t *testing.T) {
	spec := loadSpec(t)
	want := []string{"/divisions", "/rats", "/rats/{rat_id}", "/rats/{rat_id}/estado", "/rats/{rat_id}/full", "/subsecretarias"}
	if diff := cmp.Diff(want, spec.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if spec.Title() != "Registros API" {
		t.Fatalf("unexpected title %q", spec.Title())
	}
}

func TestLoad_RejectsEmptyDocument(t *testing.T) {
	_, err := Load(context.Background(), []byte(`{"openapi": "3.0.3", "info": {"title": "x", "version": "1"}, "paths": {}}`))
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestCheck_DocumentReferences(t *testing.T) {
	data, err := os.ReadFile("testdata/wizard.json")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	doc, err := schema.Parse(data, "wizard.json")
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}

	got := loadSpec(t).Check(FromDocument(doc, "wizard.json"))
	want := []Violation{
		{Reference: Reference{Origin: "wizard.json:submission.steps.detalle", Method: "PUT", Path: "/rats/{id}/detalle"}, Message: "path not declared"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_MethodAndPath(t *testing.T) {
	spec := loadSpec(t)
	refs := []Reference{
		{Origin: "a", Method: "get", Path: "/divisions?parent={value}"},
		{Origin: "b", Method: "PATCH", Path: "/rats/{id}"},
		{Origin: "c", Method: "GET", Path: "/activos"},
		{Origin: "d", Path: "/subsecretarias/"},
	}
	want := []Violation{
		{Reference: refs[1], Message: "method PATCH not declared"},
		{Reference: refs[2], Message: "path not declared"},
	}
	if diff := cmp.Diff(want, spec.Check(refs)); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestFromGrid(t *testing.T) {
	cfg := &grid.Config{
		Endpoints: grid.Endpoints{List: "/rats", Delete: "/rats/{id}"},
		Filters:   []grid.Filter{{ID: "division", Param: "division_id", Endpoint: "/divisiones"}, {ID: "estado", Param: "estado"}},
	}
	want := []Reference{
		{Origin: "rats.yaml:endpoints.list", Method: "GET", Path: "/rats"},
		{Origin: "rats.yaml:endpoints.delete", Method: "DELETE", Path: "/rats/{id}"},
		{Origin: "rats.yaml:filters.division", Method: "GET", Path: "/divisiones"},
	}
	if diff := cmp.Diff(want, FromGrid(cfg, "rats.yaml")); diff != "" {
		t.Fatalf("refs mismatch (-want +got):\n%s", diff)
	}
}
