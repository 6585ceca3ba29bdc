package controls

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Text is a single or multi-line text input.
type Text struct {
	base
	multiline bool
	text      string
}

// NewText builds a single-line text control.
func NewText(field schema.Field) *Text {
	return &Text{base: newBase(field)}
}

// NewTextArea builds a multi-line text control.
func NewTextArea(field schema.Field) *Text {
	return &Text{base: newBase(field), multiline: true}
}

func (c *Text) Kind() Kind {
	if c.multiline {
		return KindTextArea
	}
	return KindText
}

// Text returns the raw, untrimmed text.
func (c *Text) Text() string {
	return c.text
}

func (c *Text) Value() any {
	return c.text
}

// SetValue accepts strings and scalars. Lists are joined with ", " and maps
// are rendered as JSON, matching how referenced records are shown read-only.
func (c *Text) SetValue(value any) error {
	c.setText(textOf(value))
	return nil
}

func (c *Text) IsEmpty() bool {
	return strings.TrimSpace(c.text) == ""
}

func (c *Text) Clear() {
	c.setText("")
}

func (c *Text) setText(text string) {
	if text == c.text {
		return
	}
	c.text = text
	c.notify(c)
}

func textOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return schema.NormalizeID(v)
	}
}
