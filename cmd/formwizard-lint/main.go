package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/goliatone/go-formwizard/pkg/contract"
	"github.com/goliatone/go-formwizard/pkg/grid"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

func main() {
	fs := pflag.NewFlagSet("formwizard-lint", pflag.ExitOnError)
	openapi := fs.String("openapi", "api/openapi.yaml", "backend OpenAPI document")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s --openapi <doc> [files or dirs...]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "\nCheck that every endpoint referenced by wizard schemas and grid configs is declared by the backend.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"schemas"}
	}

	ctx := context.Background()
	violations, err := lint(ctx, *openapi, paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lint: %v\n", err)
		os.Exit(2)
	}
	for _, v := range violations {
		fmt.Fprintln(os.Stderr, v.String())
	}
	if len(violations) > 0 {
		os.Exit(1)
	}
}

func lint(ctx context.Context, openapi string, paths []string) ([]contract.Violation, error) {
	raw, err := os.ReadFile(openapi)
	if err != nil {
		return nil, fmt.Errorf("read openapi: %w", err)
	}
	spec, err := contract.Load(ctx, raw)
	if err != nil {
		return nil, err
	}

	files, err := collect(paths)
	if err != nil {
		return nil, err
	}
	var refs []contract.Reference
	for _, file := range files {
		found, err := references(file)
		if err != nil {
			return nil, err
		}
		refs = append(refs, found...)
	}
	return spec.Check(refs), nil
}

// references decodes file as a wizard schema, falling back to a grid config.
func references(file string) ([]contract.Reference, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	doc, docErr := schema.Parse(data, file)
	if docErr == nil {
		return contract.FromDocument(doc, file), nil
	}
	cfg, gridErr := grid.Parse(data, file)
	if gridErr == nil {
		return contract.FromGrid(cfg, file), nil
	}
	return nil, fmt.Errorf("%s is neither a schema nor a grid config: %w", file, errors.Join(docErr, gridErr))
}

func collect(paths []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(p)) {
			case ".json", ".yaml", ".yml":
				out = append(out, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
