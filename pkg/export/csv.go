package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// utf8BOM makes spreadsheet tools detect the encoding of accented text.
const utf8BOM = "\ufeff"

// CSVOptions tune CSV output.
type CSVOptions struct {
	Comma rune
	BOM   bool
}

// WriteCSV writes a header row followed by the table rows.
func WriteCSV(w io.Writer, t Table, opts CSVOptions) error {
	if err := t.validate(); err != nil {
		return err
	}
	cw, err := newWriter(w, opts)
	if err != nil {
		return err
	}
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("export: csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("export: csv rows: %w", err)
	}
	return nil
}

// WriteRecordCSV writes one record as campo,valor pairs. Keys listed in order
// come first; the rest follow sorted. Nil values are written empty.
func WriteRecordCSV(w io.Writer, values map[string]any, order []string, opts CSVOptions) error {
	cw, err := newWriter(w, opts)
	if err != nil {
		return err
	}
	rows := [][]string{{"campo", "valor"}}
	seen := make(map[string]bool, len(values))
	for _, key := range order {
		if value, ok := values[key]; ok && !seen[key] {
			rows = append(rows, []string{key, cellText(value)})
			seen[key] = true
		}
	}
	rest := make([]string, 0, len(values))
	for key := range values {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	for _, key := range rest {
		rows = append(rows, []string{key, cellText(values[key])})
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("export: csv record: %w", err)
	}
	return nil
}

func newWriter(w io.Writer, opts CSVOptions) (*csv.Writer, error) {
	if opts.BOM {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return nil, fmt.Errorf("export: csv bom: %w", err)
		}
	}
	cw := csv.NewWriter(w)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}
	return cw, nil
}

func cellText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, cellText(item))
		}
		return strings.Join(parts, ", ")
	default:
		return schema.NormalizeID(v)
	}
}
