package submit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/controls"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

type call struct {
	Method string
	Path   string
	Body   any
}

type stubDoer struct {
	calls   []call
	failOn  string
	created string
}

func (s *stubDoer) Do(_ context.Context, method, path string, body, out any) error {
	s.calls = append(s.calls, call{Method: method, Path: path, Body: body})
	if s.failOn != "" && method+" "+path == s.failOn {
		return fmt.Errorf("backend said no")
	}
	if target, ok := out.(*map[string]any); ok {
		*target = map[string]any{"id": float64(17)}
	}
	return nil
}

func TestGeneric_UntouchedTextIsNull(t *testing.T) {
	reg := controls.NewRegistry()
	name, err := reg.Build(schema.Field{Key: "nombre", Type: schema.FieldTypeText, Required: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	notes, err := reg.Build(schema.Field{Key: "observaciones", Type: schema.FieldTypeText})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := name.SetValue("  Registro  "); err != nil {
		t.Fatalf("set: %v", err)
	}

	got := Generic([]controls.Control{name, notes}, "", "u-1")
	want := map[string]any{
		"nombre":            "Registro",
		"observaciones":     nil,
		DefaultCreatorField: "u-1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got["observaciones"]; !ok {
		t.Fatalf("untouched field must be present as null")
	}
}

func declared() *schema.Submission {
	return &schema.Submission{
		CreatorField: "creado_por",
		Create: &schema.Call{
			Name:   "create",
			Method: "POST",
			Path:   "/rats",
			Fields: []schema.Mapping{{Target: "nombre", Source: "nombre_tratamiento"}},
		},
		Steps: []schema.Call{
			{
				Name:   "institucional",
				Method: "PUT",
				Path:   "/rats/{id}/institucional",
				Fields: []schema.Mapping{{Target: "usa_ia", Source: "usa_ia", Transform: "bool"}},
			},
			{
				Name:    "ia",
				Method:  "PUT",
				Path:    "/rats/{id}/ia",
				Variant: "ia",
				Fields:  []schema.Mapping{{Target: "modelos", Source: "modelos", Transform: "list"}},
			},
			{
				Name:    "conclusion",
				Method:  "PUT",
				Path:    "/rats/{id}/conclusion",
				WhenAny: []string{"conclusion"},
			},
		},
	}
}

func TestBuildPlan_FiltersVariant(t *testing.T) {
	plan, err := BuildPlan(declared(), PlanOptions{Variant: "institucional"})
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if diff := cmp.Diff([]string{"create", "institucional", "conclusion"}, plan.Names()); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}

	plan, err = BuildPlan(declared(), PlanOptions{Variant: "IA", Editing: true})
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if diff := cmp.Diff([]string{"update", "institucional", "ia", "conclusion"}, plan.Names()); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
	if plan.Steps[0].Method != "PUT" || plan.Steps[0].Path != "/rats/{id}" {
		t.Fatalf("derived update = %s %s", plan.Steps[0].Method, plan.Steps[0].Path)
	}
}

func TestBuildPlan_RejectsUnknownTransform(t *testing.T) {
	sub := declared()
	sub.Steps[0].Fields[0].Transform = "uppercase"
	if _, err := BuildPlan(sub, PlanOptions{}); !errors.Is(err, ErrUnknownTransform) {
		t.Fatalf("expected ErrUnknownTransform, got %v", err)
	}
}

func TestExecutor_OrderedCallsSubstituteID(t *testing.T) {
	plan, err := BuildPlan(declared(), PlanOptions{Variant: "ia"})
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	doer := &stubDoer{}
	values := map[string]any{
		"nombre_tratamiento": "Nómina",
		"usa_ia":             "si",
		"modelos":            "gpt, bert",
		"creado_por":         "u-9",
	}

	out, err := NewExecutor(doer).Execute(context.Background(), plan, values, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := []call{
		{Method: "POST", Path: "/rats", Body: map[string]any{"nombre": "Nómina", "creado_por": "u-9"}},
		{Method: "PUT", Path: "/rats/17/institucional", Body: map[string]any{"usa_ia": true}},
		{Method: "PUT", Path: "/rats/17/ia", Body: map[string]any{"modelos": []string{"gpt", "bert"}}},
	}
	if diff := cmp.Diff(want, doer.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if out.ID != "17" {
		t.Fatalf("expected captured id 17, got %q", out.ID)
	}
	if diff := cmp.Diff([]string{"conclusion"}, out.Skipped); diff != "" {
		t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
	}
}

func TestExecutor_PartialFailureWithoutCompensation(t *testing.T) {
	plan, _ := BuildPlan(declared(), PlanOptions{})
	doer := &stubDoer{failOn: "PUT /rats/17/institucional"}

	_, err := NewExecutor(doer).Execute(context.Background(), plan, map[string]any{}, "")

	var perr *PartialError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PartialError, got %T %v", err, err)
	}
	if perr.Failed != "institucional" || !perr.Partial() {
		t.Fatalf("unexpected partial error: %+v", perr)
	}
	if diff := cmp.Diff([]string{"create"}, perr.Completed); diff != "" {
		t.Fatalf("completed mismatch (-want +got):\n%s", diff)
	}
	if len(doer.calls) != 2 {
		t.Fatalf("executor must stop at the first failure, made %d calls", len(doer.calls))
	}
}

type recorder map[string]int

func (r recorder) ObserveStep(_ string, outcome string) { r[outcome]++ }

func TestExecutor_CompensationDeletesCreatedPrimary(t *testing.T) {
	plan, _ := BuildPlan(declared(), PlanOptions{})
	doer := &stubDoer{failOn: "PUT /rats/17/institucional"}
	rec := recorder{}

	_, err := NewExecutor(doer, WithCompensation(true), WithRecorder(rec)).
		Execute(context.Background(), plan, map[string]any{}, "")

	var perr *PartialError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PartialError, got %v", err)
	}
	if diff := cmp.Diff([]string{"create"}, perr.Compensated); diff != "" {
		t.Fatalf("compensated mismatch (-want +got):\n%s", diff)
	}
	if perr.Partial() {
		t.Fatalf("fully compensated run must not be partial")
	}
	last := doer.calls[len(doer.calls)-1]
	if last.Method != "DELETE" || last.Path != "/rats/17" {
		t.Fatalf("expected DELETE /rats/17, got %s %s", last.Method, last.Path)
	}
	if diff := cmp.Diff(recorder{OutcomeOK: 1, OutcomeFailed: 1, OutcomeCompensated: 1}, rec); diff != "" {
		t.Fatalf("recorded outcomes (-want +got):\n%s", diff)
	}
}

func TestExecutor_MissingIDWhenEditing(t *testing.T) {
	plan, _ := BuildPlan(declared(), PlanOptions{Editing: true})
	_, err := NewExecutor(&stubDoer{}).Execute(context.Background(), plan, nil, "")
	if !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}

func TestTransforms(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want any
	}{
		{"bool", "Sí", true},
		{"bool", "no", false},
		{"bool", nil, false},
		{"list", []any{"a", float64(2)}, []string{"a", "2"}},
		{"list", nil, []string{}},
		{"string", []string{"a", "b"}, "a, b"},
		{"json", map[string]any{"k": 1}, `{"k":1}`},
	}
	for _, tc := range cases {
		got, err := transforms[tc.name](tc.in)
		if err != nil {
			t.Fatalf("%s(%v): %v", tc.name, tc.in, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s(%v) (-want +got):\n%s", tc.name, tc.in, diff)
		}
	}
}
