// Package variants resolves discriminator ids to the schema variant grafted
// onto a base wizard.
package variants

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Variant is one graftable record shape.
type Variant struct {
	Name   string
	Kind   string
	IDs    []string
	Schema string
}

// Table maps discriminator ids to variants by exact id.
type Table struct {
	Discriminator string
	BaseSections  int
	Variants      []Variant

	byID map[string]int
}

// New builds a table. Ids must be unique across variants.
func New(discriminator string, baseSections int, variants ...Variant) (*Table, error) {
	t := &Table{
		Discriminator: discriminator,
		BaseSections:  baseSections,
		Variants:      append([]Variant(nil), variants...),
		byID:          make(map[string]int),
	}
	for idx, v := range t.Variants {
		for _, id := range v.IDs {
			id = strings.TrimSpace(id)
			if prev, ok := t.byID[id]; ok {
				return nil, fmt.Errorf("variants: id %q mapped to both %s and %s", id, t.Variants[prev].Name, v.Name)
			}
			t.byID[id] = idx
		}
	}
	return t, nil
}

// FromExpansion builds a table from a schema expansion block. A nil block
// yields a nil table.
func FromExpansion(exp *schema.Expansion) (*Table, error) {
	if exp == nil {
		return nil, nil
	}
	vs := make([]Variant, 0, len(exp.Variants))
	for _, ref := range exp.Variants {
		vs = append(vs, Variant{Name: ref.Name, Kind: ref.Kind, IDs: ref.IDs, Schema: ref.Schema})
	}
	return New(exp.Discriminator, exp.BaseSections, vs...)
}

// Resolve returns the variant for a discriminator id. Labels are never
// matched; an empty or unknown id resolves to no variant.
func (t *Table) Resolve(id string) (Variant, bool) {
	if t == nil {
		return Variant{}, false
	}
	idx, ok := t.byID[strings.TrimSpace(id)]
	if !ok {
		return Variant{}, false
	}
	return t.Variants[idx], true
}
