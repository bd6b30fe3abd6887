package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newColumnsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "List the columns and row count of the CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := root.context(cmd.Context())
			if err != nil {
				return err
			}

			a, err := root.loadAdapter(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, c := range a.Columns() {
				fmt.Fprintf(out, "%d. %s\n", i+1, c)
			}
			fmt.Fprintf(out, "%d rows\n", a.RowCount())
			return nil
		},
	}
}
