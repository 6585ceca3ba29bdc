package controls

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// FilePicker holds a local file path.
type FilePicker struct {
	base
	path string
}

// NewFilePicker builds an empty file picker.
func NewFilePicker(field schema.Field) *FilePicker {
	return &FilePicker{base: newBase(field)}
}

func (c *FilePicker) Kind() Kind {
	return KindFile
}

// Path returns the selected path.
func (c *FilePicker) Path() string {
	return c.path
}

func (c *FilePicker) Value() any {
	return c.path
}

func (c *FilePicker) SetValue(value any) error {
	switch v := value.(type) {
	case nil:
		c.setPath("")
	case string:
		c.setPath(v)
	default:
		return fmt.Errorf("%w: path of type %T on %s", ErrInvalidValue, value, c.Key())
	}
	return nil
}

func (c *FilePicker) IsEmpty() bool {
	return strings.TrimSpace(c.path) == ""
}

func (c *FilePicker) Clear() {
	c.setPath("")
}

func (c *FilePicker) setPath(path string) {
	if path == c.path {
		return
	}
	c.path = path
	c.notify(c)
}

// FileText is a file path paired with free text.
type FileText struct {
	base
	file string
	text string
}

// NewFileText builds an empty file+text composite.
func NewFileText(field schema.Field) *FileText {
	return &FileText{base: newBase(field)}
}

func (c *FileText) Kind() Kind {
	return KindFileText
}

// Parts returns the file path and the text.
func (c *FileText) Parts() (file, text string) {
	return c.file, c.text
}

// SetParts assigns both parts.
func (c *FileText) SetParts(file, text string) {
	if file == c.file && text == c.text {
		return
	}
	c.file, c.text = file, text
	c.notify(c)
}

// Value returns {"file": ..., "text": ...}.
func (c *FileText) Value() any {
	return map[string]any{"file": c.file, "text": c.text}
}

// SetValue accepts a {file, text} map or a plain string treated as text.
func (c *FileText) SetValue(value any) error {
	switch v := value.(type) {
	case nil:
		c.SetParts("", "")
	case map[string]any:
		c.SetParts(stringField(v, "file"), stringField(v, "text"))
	case map[string]string:
		c.SetParts(v["file"], v["text"])
	case string:
		c.SetParts(c.file, v)
	default:
		return fmt.Errorf("%w: file text of type %T on %s", ErrInvalidValue, value, c.Key())
	}
	return nil
}

// IsEmpty reports whether no file path is set.
func (c *FileText) IsEmpty() bool {
	return strings.TrimSpace(c.file) == ""
}

func (c *FileText) Clear() {
	c.SetParts("", "")
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
