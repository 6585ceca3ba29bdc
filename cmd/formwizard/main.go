package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/goliatone/go-formwizard/internal/config"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
)

const usage = `Usage: formwizard [flags] <command> [args]

Commands:
  fill <schema>    open a record wizard (--id edits an existing record)
  list <grid>      load one page of a list view and print or export it
  cache clear      drop every cached catalog

Flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, tui.ErrAborted) || errors.Is(err, pflag.ErrHelp) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "formwizard: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("formwizard", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	config.RegisterFlags(fs)
	email := fs.String("email", "", "login email; prompted when empty")
	token := fs.String("token", os.Getenv("FORMWIZARD_TOKEN"), "use this access token instead of logging in")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return pflag.ErrHelp
	}

	cfg, err := config.LoadOnce(fs)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	switch rest[0] {
	case "cache":
		if len(rest) < 2 || rest[1] != "clear" {
			return errors.New("usage: formwizard cache clear")
		}
		if err := a.catalog.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("catalog cache cleared")
		return nil
	case "fill", "list":
	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}

	if err := a.authenticate(ctx, *email, *token); err != nil {
		return err
	}
	if rest[0] == "fill" {
		return a.fill(ctx, rest[1:])
	}
	return a.list(ctx, rest[1:])
}

// resolve treats bare names as files under the schemas directory.
func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return filepath.Join(dir, name)
}
