package controls

import "strings"

// Payload extracts the value sent to the backend for a control: trimmed text
// or nil, ISO dates, selected ids, {file, text} composites and matrix rows.
func Payload(c Control) any {
	switch v := c.(type) {
	case *Text:
		return trimmedOrNil(v.Text())
	case *Date:
		return v.Value()
	case *Select:
		return v.Value()
	case *MultiSelect:
		return v.IDs()
	case *FilePicker:
		return trimmedOrNil(v.Path())
	case *FileText:
		file, text := v.Parts()
		return map[string]any{"file": strings.TrimSpace(file), "text": strings.TrimSpace(text)}
	case *RiskMatrix:
		return v.Value()
	case nil:
		return nil
	default:
		return c.Value()
	}
}

// Live returns the value visibility rules compare against: the selected id
// for selects, the checked ids for multi-selects, the raw value otherwise.
func Live(c Control) any {
	switch v := c.(type) {
	case *Select:
		return v.SelectedID()
	case *MultiSelect:
		return v.IDs()
	case *Text:
		return strings.TrimSpace(v.Text())
	case nil:
		return nil
	default:
		return c.Value()
	}
}

func trimmedOrNil(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return trimmed
}
