package main

import (
	"context"
	"fmt"
	"os"

	"github.com/futig/dash-chat/internal/adapter/csvadapter"
	"github.com/futig/dash-chat/internal/config"
	"github.com/futig/dash-chat/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	file    string
	maxSize int64
	debug   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "chatq",
		Short:         "Ask Top-N questions about a CSV file",
		Long:          `chatq loads a CSV file and answers questions such as "top 5 sales by region" the same way the chat backend does.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "CSV file to load (required)")
	cmd.PersistentFlags().Int64Var(&opts.maxSize, "max-size", 50<<20, "maximum CSV size in bytes")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging to stderr")
	_ = cmd.MarkPersistentFlagRequired("file")

	cmd.AddCommand(newQueryCmd(opts), newColumnsCmd(opts))
	return cmd
}

// context returns a context carrying a logger that writes to stderr in
// debug mode and discards otherwise.
func (o *rootOptions) context(parent context.Context) (context.Context, error) {
	logger := zap.NewNop()
	if o.debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("setup logger: %w", err)
		}
		logger = l
	}
	return ctxzap.ToContext(parent, logger), nil
}

// loadAdapter reads the CSV file into a fresh CSV adapter.
func (o *rootOptions) loadAdapter(ctx context.Context) (*csvadapter.Adapter, error) {
	v := validator.NewFileValidator(config.FileUploadConfig{MaxFileSize: o.maxSize, MaxUploadSize: o.maxSize})
	if err := v.ValidateCSVFilename(o.file); err != nil {
		return nil, err
	}

	f, err := os.Open(o.file)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	data, err := v.ReadCSV(o.file, f)
	if err != nil {
		return nil, err
	}

	a := csvadapter.New()
	info := a.LoadText(string(data))
	ctxzap.Debug(ctx, "csv loaded",
		zap.String("file", o.file),
		zap.Int("columns", len(info.Columns)),
		zap.Int("rows", info.RowCount),
	)
	return a, nil
}
