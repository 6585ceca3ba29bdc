package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-formwizard/pkg/export"
	"github.com/goliatone/go-formwizard/pkg/grid"
)

func (a *app) list(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	search := fs.String("search", "", "free-text search")
	filters := fs.StringToString("filter", nil, "filter values by filter id, e.g. --filter estado=ENVIADO")
	format := fs.String("format", "table", "table, csv, html or pdf")
	out := fs.StringP("out", "o", "", "output file (stdout if empty)")
	themeName := fs.String("theme", "", "report theme name for html and pdf")
	themeVars := fs.StringToString("theme-var", nil, "report CSS variables, e.g. --theme-var --accent=#0b5")
	remove := fs.String("delete", "", "delete this record id before loading")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: formwizard list [flags] <grid>")
	}

	path := resolve(a.cfg.Schemas.Dir, fs.Arg(0))
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg, err := grid.Parse(data, path)
	if err != nil {
		return err
	}
	g := grid.New(cfg, a.client,
		grid.WithOptionSource(a.catalog),
		grid.WithInvalidator(a.catalog),
		grid.WithLogger(a.logger),
	)

	if *remove != "" {
		if err := g.Delete(ctx, *remove); err != nil {
			return err
		}
		a.logger.Info("record deleted", "grid", cfg.ID, "id", *remove)
	}

	loaded, err := g.Load(ctx, grid.Query{Page: *page, Search: *search, Filters: *filters})
	if err != nil {
		return err
	}
	table := export.FromPage(cfg, loaded)

	w := io.Writer(os.Stdout)
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	html := export.HTMLOptions{}
	if *themeName != "" || len(*themeVars) > 0 {
		html.Theme = &theme.RendererConfig{Theme: *themeName, CSSVars: *themeVars}
	}

	switch strings.ToLower(*format) {
	case "table":
		return printTable(w, cfg, table, loaded)
	case "csv":
		return export.WriteCSV(w, table, export.CSVOptions{BOM: *out != ""})
	case "html":
		return export.HTML(w, table, html)
	case "pdf":
		if *out == "" {
			return fmt.Errorf("pdf output needs --out")
		}
		return export.PDFConverter{}.PDF(ctx, w, table, html)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

func printTable(w io.Writer, cfg *grid.Config, t export.Table, page grid.Page) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", t.Title, t.Subtitle)
	fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if len(page.Indicators) > 0 {
		fmt.Fprintln(tw)
		for _, ind := range cfg.Indicators {
			fmt.Fprintf(tw, "%s\t%s\n", ind.Label, page.Indicators[ind.Key])
		}
	}
	return tw.Flush()
}
