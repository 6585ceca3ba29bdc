package export

import (
	"embed"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.tpl
var templatesFS embed.FS

const reportTemplate = "templates/report.tpl"

var (
	setOnce sync.Once
	set     *pongo2.TemplateSet
	report  *pongo2.Template
	setErr  error

	textPolicy = bluemonday.StrictPolicy()
)

// HTMLOptions style the report.
type HTMLOptions struct {
	// Theme supplies CSS custom properties for the report palette.
	Theme *theme.RendererConfig
	// Now stamps the report when Table.GeneratedAt is zero.
	Now func() time.Time
}

// HTML renders t as a standalone styled HTML document.
func HTML(w io.Writer, t Table, opts HTMLOptions) error {
	if err := t.validate(); err != nil {
		return err
	}
	tmpl, err := reportTmpl()
	if err != nil {
		return err
	}

	generated := t.GeneratedAt
	if generated.IsZero() {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		generated = now()
	}

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = sanitizeAll(row)
	}
	ctx := pongo2.Context{
		"title":     clean(t.Title),
		"subtitle":  clean(t.Subtitle),
		"headers":   sanitizeAll(t.Headers),
		"rows":      rows,
		"generated": generated.Format("02/01/2006 15:04"),
		"css_vars":  cssVars(opts.Theme),
		"theme":     themeName(opts.Theme),
	}
	if err := tmpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("export: render html: %w", err)
	}
	return nil
}

func reportTmpl() (*pongo2.Template, error) {
	setOnce.Do(func() {
		set = pongo2.NewSet("export", pongo2.NewFSLoader(templatesFS))
		report, setErr = set.FromFile(reportTemplate)
		if setErr != nil {
			setErr = fmt.Errorf("export: load %s: %w", reportTemplate, setErr)
		}
	})
	return report, setErr
}

// clean strips markup and returns plain text; the template escapes it.
func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func sanitizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = clean(s)
	}
	return out
}

func themeName(cfg *theme.RendererConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.Theme
}

// cssVars renders the theme CSS variables as declarations inside :root.
// Values containing characters that could close the block are skipped.
func cssVars(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		value := cfg.CSSVars[key]
		if !strings.HasPrefix(key, "--") || strings.ContainsAny(key+value, "{}<>;") {
			continue
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString(";\n")
	}
	return b.String()
}
