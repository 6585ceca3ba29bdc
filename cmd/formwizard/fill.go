package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/goliatone/go-formwizard"
	"github.com/goliatone/go-formwizard/pkg/engine"
	"github.com/goliatone/go-formwizard/pkg/export"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

func (a *app) fill(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("fill", pflag.ContinueOnError)
	id := fs.String("id", "", "record id to edit; empty creates a new record")
	compensate := fs.Bool("compensate", false, "delete a freshly created record when a later step fails")
	recordCSV := fs.String("record-csv", "", "write the saved field values to this CSV file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: formwizard fill [--id ID] <schema>")
	}

	src := schema.SourceFromFile(resolve(a.cfg.Schemas.Dir, fs.Arg(0)))
	opts := []engine.Option{
		engine.WithOptionSource(a.catalog),
		engine.WithInvalidator(a.catalog),
		engine.WithRecordStore(a.client),
		engine.WithIdentity(a.client.Session()),
		engine.WithPool(engine.NewPool(a.cfg.Pool.Size)),
		engine.WithLogger(a.logger),
		engine.WithRecorder(a.metrics),
		engine.WithRecordID(*id),
		engine.WithCompensation(*compensate),
	}
	eng, err := formwizard.Open(ctx, nil, src, opts...)
	if err != nil {
		return err
	}
	defer eng.Close()

	runner, err := tui.New(eng,
		tui.WithPromptDriver(a.driver),
		tui.WithLogger(a.logger),
		tui.WithConfirmSend(true),
	)
	if err != nil {
		return err
	}
	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if res.Outcome.ID == "" || *recordCSV == "" {
		return nil
	}

	f, err := os.Create(*recordCSV)
	if err != nil {
		return err
	}
	defer f.Close()
	order := schema.Keys(eng.Sections()...)
	if err := export.WriteRecordCSV(f, eng.Values(), order, export.CSVOptions{BOM: true}); err != nil {
		return err
	}
	a.logger.Info("record exported", "path", *recordCSV, "id", res.Outcome.ID)
	return f.Close()
}
