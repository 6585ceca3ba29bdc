// Package controls implements the live input controls bound to schema fields.
//
// Each field type maps to one concrete variant (Text, Date, Select,
// MultiSelect, FilePicker, FileText, RiskMatrix). All variants satisfy
// Control, so engines read and write values without inspecting widget
// classes; variant-specific behaviour is reached through a type switch.
package controls

import (
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Kind identifies a control variant.
type Kind string

const (
	KindText        Kind = "text"
	KindTextArea    Kind = "textarea"
	KindDate        Kind = "date"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multiselect"
	KindFile        Kind = "file"
	KindFileText    Kind = "file_text"
	KindRiskMatrix  Kind = "risk_matrix"
)

// Control is a live input bound to one leaf field.
type Control interface {
	Key() string
	Kind() Kind
	Field() schema.Field

	// Value returns the current value in its natural shape.
	Value() any
	// SetValue assigns a value. Select variants return ErrNoMatch when the
	// value is not among the loaded options.
	SetValue(value any) error
	// IsEmpty applies the variant's emptiness rule.
	IsEmpty() bool
	// Clear resets the control to its empty state.
	Clear()

	Enabled() bool
	SetEnabled(enabled bool)

	// OnChange registers a listener fired after every effective value change.
	OnChange(fn func(Control))
}

type base struct {
	field     schema.Field
	disabled  bool
	listeners []func(Control)
}

func newBase(field schema.Field) base {
	return base{field: field}
}

func (b *base) Key() string {
	return b.field.Key
}

func (b *base) Field() schema.Field {
	return b.field
}

func (b *base) Enabled() bool {
	return !b.disabled
}

func (b *base) SetEnabled(enabled bool) {
	b.disabled = !enabled
}

func (b *base) OnChange(fn func(Control)) {
	if fn != nil {
		b.listeners = append(b.listeners, fn)
	}
}

func (b *base) notify(self Control) {
	for _, fn := range b.listeners {
		fn(self)
	}
}
