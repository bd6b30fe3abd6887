package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/pkg/formatter"
	"github.com/spf13/cobra"
)

func newQueryCmd(root *rootOptions) *cobra.Command {
	var (
		asJSON bool
		export string
	)

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Answer a question about the CSV file",
		Example: `  chatq query --file data.csv "top 3 amount"
  chatq query -f sales.csv --export top.pdf "top 5 sales by region"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := root.context(cmd.Context())
			if err != nil {
				return err
			}

			a, err := root.loadAdapter(ctx)
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")
			result, err := a.RunQuery(ctx, question)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
			} else {
				fmt.Fprintln(out, strings.TrimRight(result.Reply, "\n"))
			}

			if export == "" {
				return nil
			}
			if !result.HasChart() {
				return fmt.Errorf("%w: nothing to export", entity.ErrNoResult)
			}
			return exportResult(export, question, result)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().StringVar(&export, "export", "", "also write the ranking to this .md, .pdf or .docx file")
	return cmd
}

func exportResult(path, question string, result *entity.QueryResult) error {
	format := entity.ExportFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	f, err := formatter.NewFactory().Create(format)
	if err != nil {
		return err
	}

	data, err := f.Format(&formatter.Report{
		Query:       question,
		Result:      result,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("format %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
