package controls

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Select is a single-choice combo over static or remote options.
type Select struct {
	base
	options  []schema.Option
	selected int
}

// NewSelect builds a select seeded with the field's inline options.
func NewSelect(field schema.Field) *Select {
	return &Select{
		base:     newBase(field),
		options:  append([]schema.Option(nil), field.Options...),
		selected: -1,
	}
}

func (c *Select) Kind() Kind {
	return KindSelect
}

// Options returns a copy of the loaded options.
func (c *Select) Options() []schema.Option {
	return append([]schema.Option(nil), c.options...)
}

// SetOptions replaces the option list entirely. Any previous selection is
// dropped; listeners fire when a selection was lost.
func (c *Select) SetOptions(options []schema.Option) {
	hadSelection := c.selected >= 0
	c.options = append([]schema.Option(nil), options...)
	c.selected = -1
	if hadSelection {
		c.notify(c)
	}
}

// Index returns the selected index, -1 when nothing is selected.
func (c *Select) Index() int {
	return c.selected
}

// SelectedID returns the selected option id, "" when nothing is selected.
func (c *Select) SelectedID() string {
	if c.selected < 0 || c.selected >= len(c.options) {
		return ""
	}
	return c.options[c.selected].ID
}

// SelectedName returns the selected option's display text.
func (c *Select) SelectedName() string {
	if c.selected < 0 || c.selected >= len(c.options) {
		return ""
	}
	return c.options[c.selected].Name
}

// Select picks an option by index; -1 clears the selection.
func (c *Select) Select(index int) error {
	if index < -1 || index >= len(c.options) {
		return fmt.Errorf("%w: index %d out of range on %s", ErrInvalidValue, index, c.Key())
	}
	if index == c.selected {
		return nil
	}
	c.selected = index
	c.notify(c)
	return nil
}

// Value returns the selected id, or nil when nothing is selected.
func (c *Select) Value() any {
	if c.selected < 0 {
		return nil
	}
	return c.SelectedID()
}

// SetValue matches by option id first and falls back to the display text.
// Nil or "" clears the selection.
func (c *Select) SetValue(value any) error {
	want := schema.NormalizeID(value)
	if want == "" {
		return c.Select(-1)
	}
	idx := matchOption(c.options, want)
	if idx < 0 {
		return fmt.Errorf("%w: %q on %s", ErrNoMatch, want, c.Key())
	}
	return c.Select(idx)
}

func (c *Select) IsEmpty() bool {
	return c.selected < 0
}

func (c *Select) Clear() {
	_ = c.Select(-1)
}

// MultiSelect is a checkable combo allowing several choices.
type MultiSelect struct {
	base
	options []schema.Option
	checked map[string]struct{}
}

// NewMultiSelect builds a multi-select seeded with the field's inline options.
func NewMultiSelect(field schema.Field) *MultiSelect {
	return &MultiSelect{
		base:    newBase(field),
		options: append([]schema.Option(nil), field.Options...),
		checked: make(map[string]struct{}),
	}
}

func (c *MultiSelect) Kind() Kind {
	return KindMultiSelect
}

// Options returns a copy of the loaded options.
func (c *MultiSelect) Options() []schema.Option {
	return append([]schema.Option(nil), c.options...)
}

// SetOptions replaces the options, keeping checked ids that still exist.
func (c *MultiSelect) SetOptions(options []schema.Option) {
	c.options = append([]schema.Option(nil), options...)
	kept := make(map[string]struct{}, len(c.checked))
	for _, opt := range c.options {
		if _, ok := c.checked[opt.ID]; ok {
			kept[opt.ID] = struct{}{}
		}
	}
	changed := len(kept) != len(c.checked)
	c.checked = kept
	if changed {
		c.notify(c)
	}
}

// IDs returns the checked ids in option order.
func (c *MultiSelect) IDs() []string {
	out := make([]string, 0, len(c.checked))
	for _, opt := range c.options {
		if _, ok := c.checked[opt.ID]; ok {
			out = append(out, opt.ID)
		}
	}
	return out
}

// Text returns the checked display names joined with ", ".
func (c *MultiSelect) Text() string {
	var names []string
	for _, opt := range c.options {
		if _, ok := c.checked[opt.ID]; ok {
			names = append(names, opt.Name)
		}
	}
	return strings.Join(names, ", ")
}

// Toggle flips one option by index.
func (c *MultiSelect) Toggle(index int) error {
	if index < 0 || index >= len(c.options) {
		return fmt.Errorf("%w: index %d out of range on %s", ErrInvalidValue, index, c.Key())
	}
	id := c.options[index].ID
	if _, ok := c.checked[id]; ok {
		delete(c.checked, id)
	} else {
		c.checked[id] = struct{}{}
	}
	c.notify(c)
	return nil
}

// Value returns the checked ids.
func (c *MultiSelect) Value() any {
	return c.IDs()
}

// SetValue accepts a list of ids or names, or a comma separated string.
// Known entries are applied even when some are missing; ErrNoMatch reports
// the missing ones so callers can retry after options load.
func (c *MultiSelect) SetValue(value any) error {
	wanted := listOf(value)
	next := make(map[string]struct{}, len(wanted))
	var missing []string
	for _, raw := range wanted {
		idx := matchOption(c.options, raw)
		if idx < 0 {
			missing = append(missing, raw)
			continue
		}
		next[c.options[idx].ID] = struct{}{}
	}
	if !sameSet(next, c.checked) {
		c.checked = next
		c.notify(c)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s on %s", ErrNoMatch, strings.Join(missing, ","), c.Key())
	}
	return nil
}

// IsEmpty reports whether the backing text is empty.
func (c *MultiSelect) IsEmpty() bool {
	return strings.TrimSpace(c.Text()) == ""
}

func (c *MultiSelect) Clear() {
	if len(c.checked) == 0 {
		return
	}
	c.checked = make(map[string]struct{})
	c.notify(c)
}

func matchOption(options []schema.Option, want string) int {
	for i, opt := range options {
		if opt.ID == want {
			return i
		}
	}
	for i, opt := range options {
		if opt.Name == want {
			return i
		}
	}
	return -1
}

func listOf(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if id := schema.NormalizeID(item); id != "" {
				out = append(out, id)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	default:
		return []string{schema.NormalizeID(v)}
	}
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
