// Package grid loads paginated record lists described by a declarative grid
// config and turns them into display rows.
package grid

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every config validation failure.
var ErrInvalidConfig = errors.New("grid: invalid config")

// DefaultPageSize applies when a config omits page_size.
const DefaultPageSize = 10

// DefaultNullValue is rendered for null cells.
const DefaultNullValue = "—"

// Config describes one list view.
type Config struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Endpoints   Endpoints   `json:"endpoints" yaml:"endpoints"`
	IDField     string      `json:"id_field,omitempty" yaml:"id_field,omitempty"`
	NullValue   string      `json:"null_value,omitempty" yaml:"null_value,omitempty"`
	PageSize    int         `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	Columns     []Column    `json:"columns" yaml:"columns"`
	Filters     []Filter    `json:"filters,omitempty" yaml:"filters,omitempty"`
	Search      *Search     `json:"search,omitempty" yaml:"search,omitempty"`
	Indicators  []Indicator `json:"indicators,omitempty" yaml:"indicators,omitempty"`
	Schema      string      `json:"schema,omitempty" yaml:"schema,omitempty"`
	Invalidates []string    `json:"invalidates,omitempty" yaml:"invalidates,omitempty"`
}

// Endpoints names the backend paths of a grid. Delete carries an {id}
// placeholder.
type Endpoints struct {
	List       string `json:"list" yaml:"list"`
	Delete     string `json:"delete,omitempty" yaml:"delete,omitempty"`
	Indicators string `json:"indicators,omitempty" yaml:"indicators,omitempty"`
}

// Column maps a response key to a header.
type Column struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Order int    `json:"order,omitempty" yaml:"order,omitempty"`
}

// Filter is a combo whose selected id is sent as a query parameter.
type Filter struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Param    string `json:"param" yaml:"param"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	CacheKey string `json:"cache_key,omitempty" yaml:"cache_key,omitempty"`
	Order    int    `json:"order,omitempty" yaml:"order,omitempty"`
}

// Search is a free-text query parameter.
type Search struct {
	Param       string `json:"param" yaml:"param"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// Indicator is a summary counter read from the indicators endpoint.
type Indicator struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Parse decodes a JSON or YAML grid config, applies defaults and validates it.
func Parse(data []byte, source string) (*Config, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidConfig, source)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		cfg = Config{}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: invalid JSON or YAML", ErrInvalidConfig, source)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w (%s)", err, source)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.IDField == "" {
		c.IDField = "id"
	}
	if c.NullValue == "" {
		c.NullValue = DefaultNullValue
	}
	slices.SortStableFunc(c.Columns, func(a, b Column) int { return a.Order - b.Order })
	slices.SortStableFunc(c.Filters, func(a, b Filter) int { return a.Order - b.Order })
}

// Validate reports every structural problem at once.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Endpoints.List) == "" {
		problems = append(problems, "endpoints.list is required")
	}
	if c.Endpoints.Delete != "" && !strings.Contains(c.Endpoints.Delete, "{id}") {
		problems = append(problems, "endpoints.delete must contain {id}")
	}
	if len(c.Columns) == 0 {
		problems = append(problems, "at least one column is required")
	}
	seen := map[string]bool{}
	for i, col := range c.Columns {
		if col.Key == "" {
			problems = append(problems, fmt.Sprintf("columns[%d]: key is required", i))
			continue
		}
		if seen[col.Key] {
			problems = append(problems, fmt.Sprintf("columns[%d]: duplicate key %q", i, col.Key))
		}
		seen[col.Key] = true
	}
	for i, f := range c.Filters {
		if f.Param == "" {
			problems = append(problems, fmt.Sprintf("filters[%d]: param is required", i))
		}
	}
	if c.Search != nil && c.Search.Param == "" {
		problems = append(problems, "search.param is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Headers returns the column labels in display order.
func (c *Config) Headers() []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Label
		if out[i] == "" {
			out[i] = col.Key
		}
	}
	return out
}
