package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dd0wney/libcert/pkg/parallel"
)

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [library files or globs...]",
		Short: "Parse libraries and print a per-file table summary",
		Example: `  libcert parse -d nominal cells.lib
  libcert parse -d variation --class constraint 'libs/*_ocv.lib'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.parseBatch(cmd, args)
			if err != nil {
				return err
			}
			if err := writeSummary(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			return batchError(results)
		},
	}
}

// parseBatch expands the configured and positional file patterns and
// parses every file.
func (a *app) parseBatch(cmd *cobra.Command, args []string) (parallel.BatchResult, error) {
	files, err := a.cfg.ExpandFiles(args...)
	if err != nil {
		return nil, err
	}
	p, err := a.newParser()
	if err != nil {
		return nil, err
	}

	return parallel.ParseBatch(cmd.Context(), p, files, parallel.BatchOptions{
		Workers: a.cfg.EffectiveWorkers(),
		Logger:  a.logger,
		Metrics: a.metrics,
	})
}

func writeSummary(w io.Writer, results parallel.BatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tCELLS\tTABLES\tSKIPPED\tDUPLICATES\tSHAPE_MISMATCH\tSTATUS")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t%v\n", r.Path, r.Err)
			continue
		}
		st := r.Result.Stats
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\tok\n",
			r.Path, len(r.Result.Model.Cells()), st.TablesExtracted, st.Skipped(), st.Duplicates, st.ShapeHintMismatches)
	}
	return tw.Flush()
}

// batchError reports failed files as a single error.
func batchError(results parallel.BatchResult) error {
	failed := len(results) - results.Succeeded()
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d files failed: %w", failed, len(results), results.Err())
}
