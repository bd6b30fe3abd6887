// Package csvadapter answers top-N queries against a CSV file held in memory.
package csvadapter

import (
	"context"
	"fmt"
	"io"

	"github.com/futig/dash-chat/internal/adapter"
	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/pkg/interpreter"
	"github.com/futig/dash-chat/internal/pkg/tabular"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const Name = "CSV"

const noDataReply = "No CSV loaded. Use the CSV upload control."

var _ adapter.Adapter = (*Adapter)(nil)

type Adapter struct {
	table *tabular.Table
}

func New() *Adapter {
	return &Adapter{table: tabular.NewTable()}
}

func (a *Adapter) Name() string {
	return Name
}

// Init always succeeds: the CSV adapter needs no remote setup.
func (a *Adapter) Init(_ context.Context) bool {
	return true
}

// LoadText replaces the table with the parsed CSV text.
func (a *Adapter) LoadText(raw string) entity.TableInfo {
	return a.table.Load(raw)
}

// LoadReader reads UTF-8 CSV text from r and replaces the table.
func (a *Adapter) LoadReader(r io.Reader) (entity.TableInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return entity.TableInfo{}, fmt.Errorf("read csv: %w", err)
	}
	return a.LoadText(string(data)), nil
}

func (a *Adapter) Columns() []string {
	return a.table.Columns()
}

func (a *Adapter) RowCount() int {
	return a.table.RowCount()
}

// RunQuery answers a top-N query against the loaded table.
func (a *Adapter) RunQuery(ctx context.Context, text string) (*entity.QueryResult, error) {
	if !interpreter.IsTopQuery(text) {
		return entity.Advisory(adapter.UnsupportedQueryReply), nil
	}

	snap := a.table.Snapshot()
	if snap.RowCount() == 0 {
		return adapter.Advise(noDataReply), nil
	}

	intent := adapter.Intent(text)
	ctxzap.Debug(ctx, "running csv top-n query",
		zap.Int("count", intent.Count),
		zap.String("measure", intent.Measure),
		zap.String("dimension", intent.Dimension),
		zap.Bool("has_dimension", intent.HasDimension()),
		zap.Int("rows", snap.RowCount()),
	)

	return adapter.Rank(intent, snap, "CSV")
}
