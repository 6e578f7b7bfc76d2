package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/libcert/pkg/liberty"
)

var errCountQuery = errors.New("specify either --sigma or both --cell and --arc")

type countFlags struct {
	sigma string
	cell  string
	arc   string
}

func newCountCmd(a *app) *cobra.Command {
	var f countFlags
	cmd := &cobra.Command{
		Use:   "count <library file>",
		Short: "Count tables by sigma type or by cell and arc type",
		Example: `  libcert count -d variation --sigma early lib_ocv.lib
  libcert count -d nominal --cell NAND2 --arc delay cells.lib`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bySigma := f.sigma != ""
			byCell := f.cell != "" || f.arc != ""
			if bySigma == byCell || (byCell && (f.cell == "" || f.arc == "")) {
				return errCountQuery
			}
			var arc liberty.ArcType
			if byCell {
				var err error
				if arc, err = liberty.ParseArcType(f.arc); err != nil {
					return err
				}
			}

			res, err := a.parseOne(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var n int
			if bySigma {
				n = res.Model.CountSigmaTables(f.sigma)
			} else {
				n = res.Model.CountTablesForCell(f.cell, arc)
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.sigma, "sigma", "", "count tables holding this sigma type (early, late or none)")
	cmd.Flags().StringVar(&f.cell, "cell", "", "cell to count tables for")
	cmd.Flags().StringVar(&f.arc, "arc", "", "arc type: delay, slew or constraint")
	return cmd
}
