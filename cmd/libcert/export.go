package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dd0wney/libcert/pkg/export"
	"github.com/dd0wney/libcert/pkg/logging"
)

type exportFlags struct {
	csv         string
	snapshotDir string
	scale       float64
}

func newExportCmd(a *app) *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "export [library files or globs...]",
		Short: "Parse libraries and write their tables to the configured sinks",
		Long: `export parses every library and writes the flattened tables to each
configured sink: a CSV of table points, compressed model snapshots, a
Postgres point store and an S3 bucket for the produced files.`,
		Example: `  libcert export -c run.yaml
  libcert export -d nominal --csv points.csv --snapshot-dir snapshots 'libs/*.lib'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("csv") {
				a.cfg.Export.CSV = f.csv
			}
			if flags.Changed("snapshot-dir") {
				a.cfg.Export.SnapshotDir = f.snapshotDir
			}
			if flags.Changed("scale") {
				a.cfg.Scale = f.scale
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runExport(cmd, args)
		},
	}
	cmd.Flags().StringVar(&f.csv, "csv", "", "write table points to this CSV file")
	cmd.Flags().StringVar(&f.snapshotDir, "snapshot-dir", "", "write compressed model snapshots to this directory")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "multiply exported values by this factor (default 1e3)")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ec := a.cfg.Export

	opts := export.Options{
		Config:  ec,
		Scale:   a.cfg.Scale,
		Logger:  a.logger,
		Metrics: a.metrics,
	}
	if ec.Postgres.Enabled() {
		sink, err := export.NewPGSink(ctx, ec.Postgres)
		if err != nil {
			return fmt.Errorf("postgres sink: %w", err)
		}
		defer sink.Close()
		opts.Store = sink
	}
	if ec.S3.Enabled() {
		pub, err := export.NewS3Publisher(ctx, ec.S3)
		if err != nil {
			return fmt.Errorf("s3 publisher: %w", err)
		}
		opts.Publisher = pub
	}

	results, err := a.parseBatch(cmd, args)
	if err != nil {
		return err
	}

	run := export.NewRun(a.cfg.Dialect)
	a.logger.Info("export started", logging.RunID(run.ID), logging.Count(results.Succeeded()))
	report, exportErr := export.NewExporter(opts).Export(ctx, run, results)
	if err := writeReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	return errors.Join(batchError(results), exportErr)
}

func writeReport(w io.Writer, r export.Report) error {
	if _, err := fmt.Fprintf(w, "run %s: %d files exported\n", r.Run.ID, r.Sources); err != nil {
		return err
	}
	for _, sink := range []string{export.SinkCSV, export.SinkSnapshot, export.SinkPostgres, export.SinkS3} {
		if n, ok := r.Rows[sink]; ok {
			if _, err := fmt.Fprintf(w, "  %-9s %d\n", sink, n); err != nil {
				return err
			}
		}
	}
	for _, key := range r.Uploaded {
		if _, err := fmt.Fprintf(w, "  uploaded  %s\n", key); err != nil {
			return err
		}
	}
	return nil
}
