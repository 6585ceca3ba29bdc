// Package compose converts between nested multi-resource records and the
// flat field-key space the form engine edits.
package compose

import (
	"strings"
)

// Category is one evaluated domain of an assessment. Code is the backend
// identifier, Prefix the flat key prefix, Name the display text used as the
// matrix row label.
type Category struct {
	Code   string
	Prefix string
	Name   string
}

// CategoryTable resolves categories by code or display name.
type CategoryTable struct {
	categories []Category
	byCode     map[string]Category
	byName     map[string]Category
}

// NewCategoryTable builds a table; codes are matched case-insensitively.
func NewCategoryTable(categories ...Category) *CategoryTable {
	t := &CategoryTable{
		categories: append([]Category(nil), categories...),
		byCode:     make(map[string]Category, len(categories)),
		byName:     make(map[string]Category, len(categories)),
	}
	for _, cat := range categories {
		t.byCode[strings.ToUpper(cat.Code)] = cat
		t.byName[cat.Name] = cat
	}
	return t
}

// DefaultCategories returns the nine assessment domains.
func DefaultCategories() *CategoryTable {
	return NewCategoryTable(
		Category{Code: "LICITUD", Prefix: "licitud", Name: "Licitud y Lealtad"},
		Category{Code: "FINALIDAD", Prefix: "finalidad", Name: "Finalidad"},
		Category{Code: "PROPORCIONABILIDAD", Prefix: "proporcionabilidad", Name: "Proporcionabilidad"},
		Category{Code: "CALIDAD", Prefix: "calidad", Name: "Calidad"},
		Category{Code: "RESPONSABILIDAD", Prefix: "responsabilidad", Name: "Responsabilidad"},
		Category{Code: "SEGURIDAD", Prefix: "seguridad", Name: "Seguridad"},
		Category{Code: "TRANSPARENCIA", Prefix: "transparencia", Name: "Transparencia e Información"},
		Category{Code: "CONFIDENCIALIDAD", Prefix: "confidencialidad", Name: "Confidencialidad"},
		Category{Code: "COORDINACION", Prefix: "coordinacion", Name: "Coordinación"},
	)
}

// All returns the categories in declaration order.
func (t *CategoryTable) All() []Category {
	return append([]Category(nil), t.categories...)
}

// Names returns the display names in declaration order.
func (t *CategoryTable) Names() []string {
	out := make([]string, 0, len(t.categories))
	for _, cat := range t.categories {
		out = append(out, cat.Name)
	}
	return out
}

// ByCode looks a category up by backend code.
func (t *CategoryTable) ByCode(code string) (Category, bool) {
	cat, ok := t.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return cat, ok
}

// ByName looks a category up by display name.
func (t *CategoryTable) ByName(name string) (Category, bool) {
	cat, ok := t.byName[strings.TrimSpace(name)]
	return cat, ok
}
