package controls

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// MatrixLabelColumn keys the row label in matrix values.
const MatrixLabelColumn = "ambito"

// DefaultMatrixColumns lists the editable columns of a risk matrix row.
var DefaultMatrixColumns = []string{
	"descripcion",
	"nivel_desarrollo",
	"riesgo_transversal",
	"probabilidad",
	"impacto",
	"nivel_riesgo",
}

// RiskMatrix is a grid with one row per evaluated category.
type RiskMatrix struct {
	base
	columns []string
	rows    []map[string]string
}

// NewRiskMatrix builds a matrix preloaded with one row per field.Rows entry.
func NewRiskMatrix(field schema.Field) *RiskMatrix {
	c := &RiskMatrix{
		base:    newBase(field),
		columns: append([]string(nil), DefaultMatrixColumns...),
	}
	c.rows = c.preset()
	return c
}

func (c *RiskMatrix) Kind() Kind {
	return KindRiskMatrix
}

// Columns returns the editable column keys.
func (c *RiskMatrix) Columns() []string {
	return append([]string(nil), c.columns...)
}

// Len returns the number of rows.
func (c *RiskMatrix) Len() int {
	return len(c.rows)
}

// Label returns the label of row i.
func (c *RiskMatrix) Label(i int) string {
	if i < 0 || i >= len(c.rows) {
		return ""
	}
	return c.rows[i][MatrixLabelColumn]
}

// Cell returns one cell.
func (c *RiskMatrix) Cell(row int, column string) string {
	if row < 0 || row >= len(c.rows) {
		return ""
	}
	return c.rows[row][column]
}

// SetCell writes one cell.
func (c *RiskMatrix) SetCell(row int, column, value string) error {
	if row < 0 || row >= len(c.rows) {
		return fmt.Errorf("%w: row %d out of range on %s", ErrInvalidValue, row, c.Key())
	}
	if !c.hasColumn(column) {
		return fmt.Errorf("%w: unknown column %q on %s", ErrInvalidValue, column, c.Key())
	}
	if c.rows[row][column] == value {
		return nil
	}
	c.rows[row][column] = value
	c.notify(c)
	return nil
}

// Value returns every row as a map including the label column.
func (c *RiskMatrix) Value() any {
	out := make([]map[string]any, 0, len(c.rows))
	for _, row := range c.rows {
		entry := make(map[string]any, len(c.columns)+1)
		entry[MatrixLabelColumn] = row[MatrixLabelColumn]
		for _, col := range c.columns {
			entry[col] = row[col]
		}
		out = append(out, entry)
	}
	return out
}

// SetValue accepts a list of row maps. Rows are matched to preset rows by
// label; unmatched labels are appended.
func (c *RiskMatrix) SetValue(value any) error {
	items, err := rowMaps(value)
	if err != nil {
		return fmt.Errorf("%w on %s", err, c.Key())
	}
	rows := c.preset()
	for _, item := range items {
		label := stringField(item, MatrixLabelColumn)
		target := -1
		for i, row := range rows {
			if row[MatrixLabelColumn] == label {
				target = i
				break
			}
		}
		if target < 0 {
			rows = append(rows, map[string]string{MatrixLabelColumn: label})
			target = len(rows) - 1
		}
		for _, col := range c.columns {
			rows[target][col] = stringField(item, col)
		}
	}
	c.rows = rows
	c.notify(c)
	return nil
}

// IsEmpty reports whether no row carries data beyond its label.
func (c *RiskMatrix) IsEmpty() bool {
	for _, row := range c.rows {
		for _, col := range c.columns {
			if strings.TrimSpace(row[col]) != "" {
				return false
			}
		}
	}
	return true
}

func (c *RiskMatrix) Clear() {
	c.rows = c.preset()
	c.notify(c)
}

func (c *RiskMatrix) preset() []map[string]string {
	rows := make([]map[string]string, 0, len(c.field.Rows))
	for _, label := range c.field.Rows {
		rows = append(rows, map[string]string{MatrixLabelColumn: label})
	}
	return rows
}

func (c *RiskMatrix) hasColumn(column string) bool {
	for _, col := range c.columns {
		if col == column {
			return true
		}
	}
	return false
}

func rowMaps(value any) ([]map[string]any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		return v, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: matrix row of type %T", ErrInvalidValue, item)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: matrix of type %T", ErrInvalidValue, value)
	}
}
