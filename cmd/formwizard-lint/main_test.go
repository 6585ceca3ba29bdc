package main

import (
	"context"
	"strings"
	"testing"
)

const (
	backend = "../../pkg/contract/testdata/backend.yaml"
	wizard  = "../../pkg/contract/testdata/wizard.json"
	rats    = "../../pkg/grid/testdata/rats.yaml"
)

func TestLint_SchemaAndGrid(t *testing.T) {
	violations, err := lint(context.Background(), backend, []string{wizard, rats})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	var lines []string
	for _, v := range violations {
		lines = append(lines, v.String())
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"/rats/{id}/detalle", "/divisiones", "/rats/indicadores"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected a violation for %s, got:\n%s", want, joined)
		}
	}
	if len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %d:\n%s", len(violations), joined)
	}
}

func TestLint_RejectsUnknownFiles(t *testing.T) {
	if _, err := lint(context.Background(), backend, []string{backend}); err == nil {
		t.Fatalf("expected an error for a file that is neither a schema nor a grid")
	}
}

func TestLint_BundledExamplesAreClean(t *testing.T) {
	violations, err := lint(context.Background(), "../../api/openapi.yaml", []string{"../../schemas"})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	for _, v := range violations {
		t.Errorf("unexpected violation: %s", v)
	}
}
