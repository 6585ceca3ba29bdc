package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/visibility"
)

func TestRegistry_RemoveReportsOrphanedEdges(t *testing.T) {
	r := newRegistry()
	r.addBlock(&block{key: "anexo", shown: true})
	r.addBlock(&block{key: "flag"})
	r.addBlock(&block{key: "flag_detalle"})
	r.addVisibility("anexo", schema.Rule{Field: "flag", Value: "si"})
	r.addVisibility("flag_detalle", schema.Rule{Field: "flag", Value: "si"})

	orphaned := r.remove("flag", "flag_detalle")

	var targets []string
	for _, edge := range orphaned {
		targets = append(targets, edge.target)
	}
	if diff := cmp.Diff([]string{"anexo"}, targets); diff != "" {
		t.Fatalf("orphaned targets (-want +got):\n%s", diff)
	}
	if len(r.VisibilityTargets("flag")) != 0 {
		t.Fatalf("removed source kept its edges")
	}
}

func TestEngine_RemoveKeysResetsGatedBlocks(t *testing.T) {
	e := &Engine{registry: newRegistry(), evaluator: visibility.Equality}
	e.registry.addBlock(&block{key: "anexo", shown: true})
	e.registry.addBlock(&block{key: "opcional", shown: false})
	e.registry.addBlock(&block{key: "flag"})
	e.registry.addVisibility("anexo", schema.Rule{Field: "flag", Value: "si"})
	e.registry.addVisibility("opcional", schema.Rule{Field: "flag", Value: ""})

	e.removeKeys("flag")

	if e.Visible("anexo") {
		t.Fatalf("block gated on a removed source must fall back to hidden")
	}
	if !e.Visible("opcional") {
		t.Fatalf("block whose rule matches an unset value must show")
	}
}
