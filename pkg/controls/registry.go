package controls

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Built-in factory identifiers.
const (
	FactoryRiskMatrix  = "risk-matrix"
	FactoryFileText    = "file-text"
	FactoryFile        = "file"
	FactoryDate        = "date"
	FactoryMultiSelect = "multiselect"
	FactorySelect      = "select"
	FactoryTextArea    = "textarea"
	FactoryText        = "text"
)

// Matcher decides whether a factory should handle the supplied field.
type Matcher func(field schema.Field) bool

// Factory builds a control for a field.
type Factory func(field schema.Field, env Env) Control

// Env carries collaborators factories may need.
type Env struct {
	Now func() time.Time
}

type rule struct {
	name     string
	priority int
	match    Matcher
	build    Factory
	order    int
}

// Registry selects control factories for fields based on registered matchers.
// Higher priority wins; ties fall back to registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
	env   Env
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock overrides the clock date controls start from.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.env.Now = now
		}
	}
}

// NewRegistry constructs a registry with the built-in factories registered.
func NewRegistry(options ...RegistryOption) *Registry {
	reg := &Registry{env: Env{Now: time.Now}}
	for _, opt := range options {
		if opt != nil {
			opt(reg)
		}
	}
	reg.registerBuiltins()
	return reg
}

// Register adds a factory with the provided name and priority.
func (r *Registry) Register(name string, priority int, matcher Matcher, factory Factory) {
	if r == nil || matcher == nil || factory == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		build:    factory,
		order:    len(r.rules),
	})
}

// Resolve returns the factory name chosen for a field.
func (r *Registry) Resolve(field schema.Field) (string, bool) {
	entry, ok := r.resolve(field)
	if !ok {
		return "", false
	}
	return entry.name, true
}

// Build instantiates the control for a leaf field.
func (r *Registry) Build(field schema.Field) (Control, error) {
	if field.IsGroup() {
		return nil, fmt.Errorf("%w: %q is a group", ErrNoFactory, field.Key)
	}
	entry, ok := r.resolve(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q (type %s)", ErrNoFactory, field.Key, field.Type)
	}
	return entry.build(field, r.env), nil
}

func (r *Registry) resolve(field schema.Field) (rule, bool) {
	if r == nil {
		return rule{}, false
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry, true
		}
	}
	return rule{}, false
}

func isCombo(field schema.Field) bool {
	return field.Type == schema.FieldTypeCombo || field.Type == schema.FieldTypeComboStatic
}

func (r *Registry) registerBuiltins() {
	r.Register(FactoryRiskMatrix, 100, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeRiskMatrix
	}, func(field schema.Field, _ Env) Control {
		return NewRiskMatrix(field)
	})

	r.Register(FactoryFileText, 90, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeFileText
	}, func(field schema.Field, _ Env) Control {
		return NewFileText(field)
	})

	r.Register(FactoryFile, 85, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeFile
	}, func(field schema.Field, _ Env) Control {
		return NewFilePicker(field)
	})

	r.Register(FactoryDate, 80, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeDate || field.Control == schema.ControlCalendar
	}, func(field schema.Field, env Env) Control {
		var today time.Time
		if env.Now != nil {
			today = env.Now()
		}
		return NewDate(field, today)
	})

	r.Register(FactoryMultiSelect, 70, func(field schema.Field) bool {
		return isCombo(field) && field.Multiple
	}, func(field schema.Field, _ Env) Control {
		return NewMultiSelect(field)
	})

	r.Register(FactorySelect, 60, isCombo, func(field schema.Field, _ Env) Control {
		return NewSelect(field)
	})

	r.Register(FactoryTextArea, 50, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeTextArea
	}, func(field schema.Field, _ Env) Control {
		return NewTextArea(field)
	})

	r.Register(FactoryText, 10, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeText || field.Type == ""
	}, func(field schema.Field, _ Env) Control {
		return NewText(field)
	})
}
