package controls

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name   string
		field  schema.Field
		expect string
	}{
		{"text", schema.Field{Key: "a", Type: schema.FieldTypeText}, FactoryText},
		{"calendar control", schema.Field{Key: "a", Type: schema.FieldTypeText, Control: schema.ControlCalendar}, FactoryDate},
		{"date", schema.Field{Key: "a", Type: schema.FieldTypeDate}, FactoryDate},
		{"remote combo", schema.Field{Key: "a", Type: schema.FieldTypeCombo, Source: "/x"}, FactorySelect},
		{"static combo", schema.Field{Key: "a", Type: schema.FieldTypeComboStatic}, FactorySelect},
		{"multiple combo", schema.Field{Key: "a", Type: schema.FieldTypeCombo, Multiple: true}, FactoryMultiSelect},
		{"file", schema.Field{Key: "a", Type: schema.FieldTypeFile}, FactoryFile},
		{"file text", schema.Field{Key: "a", Type: schema.FieldTypeFileText}, FactoryFileText},
		{"matrix", schema.Field{Key: "a", Type: schema.FieldTypeRiskMatrix}, FactoryRiskMatrix},
		{"textarea", schema.Field{Key: "a", Type: schema.FieldTypeTextArea}, FactoryTextArea},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.Resolve(tc.field)
			if !ok || got != tc.expect {
				t.Fatalf("expected %q, got %q (ok=%v)", tc.expect, got, ok)
			}
		})
	}
}

func TestRegister_PriorityOverridesBuiltin(t *testing.T) {
	reg := NewRegistry()
	reg.Register("upper-text", 200, func(field schema.Field) bool {
		return field.Key == "codigo"
	}, func(field schema.Field, _ Env) Control {
		return NewTextArea(field)
	})

	ctrl, err := reg.Build(schema.Field{Key: "codigo", Type: schema.FieldTypeText})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ctrl.Kind() != KindTextArea {
		t.Fatalf("expected custom factory, got %s", ctrl.Kind())
	}
}

func TestBuild_GroupHasNoControl(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Build(schema.Field{Key: "g", Type: schema.FieldTypeGroup}); !errors.Is(err, ErrNoFactory) {
		t.Fatalf("expected ErrNoFactory, got %v", err)
	}
}

func TestBuild_DateStartsOnInjectedClock(t *testing.T) {
	day := time.Date(2024, 3, 9, 15, 4, 0, 0, time.UTC)
	reg := NewRegistry(WithClock(func() time.Time { return day }))
	ctrl, err := reg.Build(schema.Field{Key: "fecha", Type: schema.FieldTypeDate})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := Payload(ctrl); got != "2024-03-09" {
		t.Fatalf("expected ISO date, got %v", got)
	}
	if ctrl.(*Date).Display() != "09-03-2024" {
		t.Fatalf("unexpected display %q", ctrl.(*Date).Display())
	}
}
