package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldType enumerates the control kinds a field may declare.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextArea    FieldType = "textarea"
	FieldTypeCombo       FieldType = "combo"
	FieldTypeComboStatic FieldType = "combo_static"
	FieldTypeDate        FieldType = "date"
	FieldTypeFile        FieldType = "file"
	FieldTypeFileText    FieldType = "file_textarea"
	FieldTypeRiskMatrix  FieldType = "risk_matrix"
	FieldTypeGroup       FieldType = "group"
)

// ControlCalendar marks a text field rendered as a date picker.
const ControlCalendar = "calendar"

// ValuePlaceholder is substituted with the trigger's selected identifier when
// resolving dependency endpoint templates.
const ValuePlaceholder = "{value}"

// IDPlaceholder is substituted with the record identifier in endpoint paths.
const IDPlaceholder = "{id}"

// Document is a parsed form schema describing one record shape.
type Document struct {
	TitleNew         string            `json:"title_new" yaml:"title_new"`
	TitleEdit        string            `json:"title_edit" yaml:"title_edit"`
	Width            int               `json:"width,omitempty" yaml:"width,omitempty"`
	Height           int               `json:"height,omitempty" yaml:"height,omitempty"`
	Endpoint         string            `json:"endpoint" yaml:"endpoint"`
	EndpointEditFull bool              `json:"endpoint_edit_full,omitempty" yaml:"endpoint_edit_full,omitempty"`
	Sections         []Section         `json:"sections" yaml:"sections"`
	Aliases          map[string]string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Compose          string            `json:"compose,omitempty" yaml:"compose,omitempty"`
	Expansion        *Expansion        `json:"expansion,omitempty" yaml:"expansion,omitempty"`
	Workflow         *Workflow         `json:"workflow,omitempty" yaml:"workflow,omitempty"`
	Submission       *Submission       `json:"submission,omitempty" yaml:"submission,omitempty"`
	Prefill          []PrefillRule     `json:"prefill,omitempty" yaml:"prefill,omitempty"`

	source string
}

// Source reports the location the document was parsed from.
func (d *Document) Source() string {
	if d == nil {
		return ""
	}
	return d.source
}

// Title returns the dialog title for the requested mode.
func (d *Document) Title(editing bool) string {
	if d == nil {
		return ""
	}
	if editing && d.TitleEdit != "" {
		return d.TitleEdit
	}
	return d.TitleNew
}

// Section is one wizard step.
type Section struct {
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Field is either a leaf control or a group of nested fields.
type Field struct {
	Key                        string    `json:"key" yaml:"key"`
	Label                      string    `json:"label,omitempty" yaml:"label,omitempty"`
	Description                string    `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder                string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Type                       FieldType `json:"type" yaml:"type"`
	Control                    string    `json:"control,omitempty" yaml:"control,omitempty"`
	Required                   bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Options                    []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	Source                     string    `json:"source,omitempty" yaml:"source,omitempty"`
	CacheKey                   string    `json:"cache_key,omitempty" yaml:"cache_key,omitempty"`
	Multiple                   bool      `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	DependsOn                  string    `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	TriggersReload             []string  `json:"triggers_reload,omitempty" yaml:"triggers_reload,omitempty"`
	DependencyEndpointTemplate string    `json:"dependency_endpoint_template,omitempty" yaml:"dependency_endpoint_template,omitempty"`
	VisibleIf                  *Rule     `json:"visible_if,omitempty" yaml:"visible_if,omitempty"`
	Rows                       []string  `json:"rows,omitempty" yaml:"rows,omitempty"`
	Fields                     []Field   `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// IsGroup reports whether the field clusters nested fields.
func (f Field) IsGroup() bool {
	return f.Type == FieldTypeGroup
}

// IsRemoteCombo reports whether the field loads its options from a source
// endpoint during initial population. Dependent combos are excluded.
func (f Field) IsRemoteCombo() bool {
	return f.Type == FieldTypeCombo && strings.TrimSpace(f.Source) != "" && strings.TrimSpace(f.DependsOn) == ""
}

// EffectiveCacheKey returns the catalog cache key for the field, defaulting to
// cache_<key>.
func (f Field) EffectiveCacheKey() string {
	if key := strings.TrimSpace(f.CacheKey); key != "" {
		return key
	}
	return "cache_" + f.Key
}

// Option is one selectable entry. Backends send the display text as
// "nombre"; "name" is accepted as an alias.
type Option struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"nombre" yaml:"nombre"`
}

// UnmarshalJSON accepts numeric or string ids.
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     any    `json:"id"`
		Nombre string `json:"nombre"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.ID = NormalizeID(raw.ID)
	o.Name = raw.Nombre
	if o.Name == "" {
		o.Name = raw.Name
	}
	return nil
}

// NormalizeID renders an identifier as a string; nil becomes "".
func NormalizeID(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Rule is a single equality visibility predicate.
type Rule struct {
	Field string `json:"field" yaml:"field"`
	Value any    `json:"value" yaml:"value"`
}

// Expansion declares the discriminator driving section graft/prune.
type Expansion struct {
	Discriminator string       `json:"discriminator" yaml:"discriminator"`
	BaseSections  int          `json:"base_sections" yaml:"base_sections"`
	Variants      []VariantRef `json:"variants" yaml:"variants"`
}

// VariantRef maps a set of discriminator ids to a variant schema file.
type VariantRef struct {
	Name   string   `json:"name" yaml:"name"`
	Kind   string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	IDs    []string `json:"ids" yaml:"ids"`
	Schema string   `json:"schema" yaml:"schema"`
}

// Workflow declares the record lifecycle states that gate editing.
type Workflow struct {
	StateKey       string   `json:"state_key,omitempty" yaml:"state_key,omitempty"`
	EditableState  string   `json:"editable_state,omitempty" yaml:"editable_state,omitempty"`
	ReviewState    string   `json:"review_state,omitempty" yaml:"review_state,omitempty"`
	LockedStates   []string `json:"locked_states,omitempty" yaml:"locked_states,omitempty"`
	StatusEndpoint string   `json:"status_endpoint,omitempty" yaml:"status_endpoint,omitempty"`
}

// Submission declares how a record is written back to the backend.
type Submission struct {
	IDField      string   `json:"id_field,omitempty" yaml:"id_field,omitempty"`
	CreatorField string   `json:"creator_field,omitempty" yaml:"creator_field,omitempty"`
	Create       *Call    `json:"create,omitempty" yaml:"create,omitempty"`
	Update       *Call    `json:"update,omitempty" yaml:"update,omitempty"`
	Steps        []Call   `json:"steps,omitempty" yaml:"steps,omitempty"`
	Invalidates  []string `json:"invalidates,omitempty" yaml:"invalidates,omitempty"`
}

// Call is one backend write.
type Call struct {
	Name      string         `json:"name" yaml:"name"`
	Method    string         `json:"method" yaml:"method"`
	Path      string         `json:"path" yaml:"path"`
	Variant   string         `json:"variant,omitempty" yaml:"variant,omitempty"`
	WhenAny   []string       `json:"when_any,omitempty" yaml:"when_any,omitempty"`
	Fields    []Mapping      `json:"fields,omitempty" yaml:"fields,omitempty"`
	Constants map[string]any `json:"constants,omitempty" yaml:"constants,omitempty"`
}

// Mapping copies a form value into a payload key.
type Mapping struct {
	Target    string `json:"target" yaml:"target"`
	Source    string `json:"source" yaml:"source"`
	Transform string `json:"transform,omitempty" yaml:"transform,omitempty"`
}

// PrefillRule copies values from a referenced record when its trigger changes.
type PrefillRule struct {
	Trigger  string            `json:"trigger" yaml:"trigger"`
	Endpoint string            `json:"endpoint" yaml:"endpoint"`
	Fields   map[string]string `json:"fields" yaml:"fields"`
	Lock     bool              `json:"lock,omitempty" yaml:"lock,omitempty"`
}
