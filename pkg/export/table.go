// Package export writes the displayed tabular data and single records as CSV
// or a styled HTML report, and converts reports to PDF through an external
// tool.
package export

import (
	"errors"
	"time"

	"github.com/goliatone/go-formwizard/pkg/grid"
)

// ErrShape is returned when a row does not match the header width.
var ErrShape = errors.New("export: row width does not match headers")

// Table is the data currently displayed by a list view.
type Table struct {
	Title       string
	Subtitle    string
	Headers     []string
	Rows        [][]string
	GeneratedAt time.Time
}

// FromPage builds a table from a loaded grid page.
func FromPage(cfg *grid.Config, page grid.Page) Table {
	return Table{
		Title:    cfg.Title,
		Subtitle: page.Label(),
		Headers:  cfg.Headers(),
		Rows:     page.Rows,
	}
}

func (t Table) validate() error {
	for _, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return ErrShape
		}
	}
	return nil
}
