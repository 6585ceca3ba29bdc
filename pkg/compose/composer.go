package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/controls"
)

// Unmapped records a nested entry whose category code has no known prefix.
type Unmapped struct {
	Collection string
	Index      int
	Code       string
}

func (u Unmapped) String() string {
	return fmt.Sprintf("%s[%d]=%q", u.Collection, u.Index, u.Code)
}

// Result is the outcome of flattening a record.
type Result struct {
	Values   map[string]any
	Unmapped []Unmapped
}

// Composer converts records between their backend and flat shapes.
type Composer interface {
	Flatten(ctx context.Context, record map[string]any) Result
	Unflatten(ctx context.Context, values map[string]any) (map[string]any, []Unmapped)
}

// Identity passes records through unchanged.
type Identity struct{}

func (Identity) Flatten(_ context.Context, record map[string]any) Result {
	return Result{Values: copyMap(record)}
}

func (Identity) Unflatten(_ context.Context, values map[string]any) (map[string]any, []Unmapped) {
	return copyMap(values), nil
}

// CategoryComposer flattens per-category evaluation lists (ambitos) and matrix rows
// (riesgos) into prefixed flat keys, and back.
type CategoryComposer struct {
	table  *CategoryTable
	logger *slog.Logger

	evaluationsKey string
	risksKey       string
	matrixKey      string
	referenceKey   string
	referenceField string
}

// CategoryOption configures a CategoryComposer.
type CategoryOption func(*CategoryComposer)

// WithTable overrides the category table.
func WithTable(table *CategoryTable) CategoryOption {
	return func(c *CategoryComposer) {
		if table != nil {
			c.table = table
		}
	}
}

// WithLogger sets the logger used to flag unmapped codes.
func WithLogger(logger *slog.Logger) CategoryOption {
	return func(c *CategoryComposer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReference maps a backend reference key onto a form field, e.g.
// rat_id onto identificacion_rat_catalogo.
func WithReference(backendKey, formKey string) CategoryOption {
	return func(c *CategoryComposer) {
		c.referenceKey, c.referenceField = backendKey, formKey
	}
}

// NewCategoryComposer builds the assessment composer with default keys.
func NewCategoryComposer(options ...CategoryOption) *CategoryComposer {
	c := &CategoryComposer{
		table:          DefaultCategories(),
		logger:         slog.Default(),
		evaluationsKey: "ambitos",
		risksKey:       "riesgos",
		matrixKey:      "matriz_riesgos",
		referenceKey:   "rat_id",
		referenceField: "identificacion_rat_catalogo",
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Table returns the category table in use.
func (c *CategoryComposer) Table() *CategoryTable {
	return c.table
}

// Flatten maps nested entries to flat keys. Entries with unknown codes are
// excluded from the flat values, reported in Result.Unmapped and logged.
func (c *CategoryComposer) Flatten(ctx context.Context, record map[string]any) Result {
	flat := copyMap(record)
	delete(flat, c.evaluationsKey)
	delete(flat, c.risksKey)

	var unmapped []Unmapped
	for idx, entry := range entries(record[c.evaluationsKey]) {
		code := codeOf(entry)
		cat, ok := c.table.ByCode(code)
		if !ok {
			unmapped = append(unmapped, Unmapped{Collection: c.evaluationsKey, Index: idx, Code: code})
			continue
		}
		flat[cat.Prefix+"_criterios"] = entry["criterios_evaluacion"]
		flat[cat.Prefix+"_resumen"] = entry["resumen"]
		flat[cat.Prefix+"_probabilidad"] = entry["probabilidad"]
		flat[cat.Prefix+"_impacto"] = entry["impacto"]
	}

	rows := make([]any, 0)
	for idx, entry := range entries(record[c.risksKey]) {
		code := codeOf(entry)
		cat, ok := c.table.ByCode(code)
		if !ok {
			unmapped = append(unmapped, Unmapped{Collection: c.risksKey, Index: idx, Code: code})
			continue
		}
		row := copyMap(entry)
		row[controls.MatrixLabelColumn] = cat.Name
		rows = append(rows, row)
	}
	flat[c.matrixKey] = rows

	if c.referenceKey != "" {
		if ref, ok := record[c.referenceKey]; ok {
			flat[c.referenceField] = ref
		}
	}

	for _, u := range unmapped {
		c.logger.WarnContext(ctx, "compose: unmapped category code", "entry", u.String())
	}
	return Result{Values: flat, Unmapped: unmapped}
}

// Unflatten rebuilds {<reference>, ambitos[], riesgos[]} from flat values.
// Every table category is emitted, empty or not, in table order. Matrix rows
// without data are omitted. nivel is derived from probability × impact.
func (c *CategoryComposer) Unflatten(ctx context.Context, values map[string]any) (map[string]any, []Unmapped) {
	evaluations := make([]any, 0)
	for _, cat := range c.table.All() {
		criterios := stringOf(values[cat.Prefix+"_criterios"])
		resumen := stringOf(values[cat.Prefix+"_resumen"])
		prob := stringOf(values[cat.Prefix+"_probabilidad"])
		impact := stringOf(values[cat.Prefix+"_impacto"])
		level := RiskLevel(prob, impact)
		if level == "" {
			level = DefaultLevel
		}
		evaluations = append(evaluations, map[string]any{
			"ambito_codigo":        strings.ToLower(cat.Code),
			"criterios_evaluacion": criterios,
			"resumen":              resumen,
			"probabilidad":         nilIfEmpty(prob),
			"impacto":              nilIfEmpty(impact),
			"nivel":                level,
		})
	}

	var unmapped []Unmapped
	risks := make([]any, 0)
	for idx, row := range entries(values[c.matrixKey]) {
		if !rowHasData(row) {
			continue
		}
		name := stringOf(row[controls.MatrixLabelColumn])
		cat, ok := c.table.ByName(name)
		if !ok {
			unmapped = append(unmapped, Unmapped{Collection: c.matrixKey, Index: idx, Code: name})
			continue
		}
		risk := map[string]any{"ambito_codigo": strings.ToLower(cat.Code)}
		for _, col := range controls.DefaultMatrixColumns {
			risk[col] = stringOf(row[col])
		}
		risks = append(risks, risk)
	}
	for _, u := range unmapped {
		c.logger.WarnContext(ctx, "compose: matrix row without category", "entry", u.String())
	}

	out := map[string]any{
		c.evaluationsKey: evaluations,
		c.risksKey:       risks,
	}
	if c.referenceKey != "" {
		out[c.referenceKey] = values[c.referenceField]
	}
	return out, unmapped
}

// ApplyAliases copies backend keys onto form keys (backend → form) without
// removing the originals.
func ApplyAliases(record map[string]any, aliases map[string]string) map[string]any {
	out := copyMap(record)
	for from, to := range aliases {
		if value, ok := record[from]; ok {
			out[to] = value
		}
	}
	return out
}

func entries(value any) []map[string]any {
	switch v := value.(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func codeOf(entry map[string]any) string {
	return strings.ToUpper(strings.TrimSpace(stringOf(entry["ambito_codigo"])))
}

func rowHasData(row map[string]any) bool {
	for _, col := range controls.DefaultMatrixColumns {
		if strings.TrimSpace(stringOf(row[col])) != "" {
			return true
		}
	}
	return false
}

func stringOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
