// Package dashadapter answers top-N queries against the worksheets of a
// remote dashboard.
package dashadapter

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/futig/dash-chat/internal/adapter"
	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/pkg/interpreter"
	pkgRetry "github.com/futig/dash-chat/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const Name = "Dashboard"

const (
	noWorksheetReply = "No matching worksheet found."
	readFailedReply  = "Failed to read dashboard data."
)

const (
	defaultProbeTimeout = 400 * time.Millisecond
	defaultProbeMaxRows = 1
	defaultDataMaxRows  = 5000
)

var errNotReady = errors.New("dashboard not ready")

var _ adapter.Adapter = (*Adapter)(nil)

type Options struct {
	ProbeTimeout time.Duration
	ProbeMaxRows int
	DataMaxRows  int
	Retry        *pkgRetry.RetryConfig
}

type Adapter struct {
	conn  Connector
	opts  Options
	ready atomic.Bool
}

func New(conn Connector, opts Options) *Adapter {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = defaultProbeTimeout
	}
	if opts.ProbeMaxRows <= 0 {
		opts.ProbeMaxRows = defaultProbeMaxRows
	}
	if opts.DataMaxRows <= 0 {
		opts.DataMaxRows = defaultDataMaxRows
	}
	if opts.Retry == nil {
		opts.Retry = pkgRetry.DefaultRetryConfig()
	}
	return &Adapter{conn: conn, opts: opts}
}

func (a *Adapter) Name() string {
	return Name
}

// Init connects to the dashboard. Any failure means the adapter is not
// available; the error is logged and never surfaced.
func (a *Adapter) Init(ctx context.Context) bool {
	err := a.opts.Retry.Do(ctx, func() error {
		resp, err := a.conn.Initialize(ctx)
		if err != nil {
			return err
		}
		if !resp.Ready {
			return errNotReady
		}
		return nil
	})
	if err != nil {
		ctxzap.Warn(ctx, "dashboard adapter init failed", zap.Error(err))
		a.ready.Store(false)
		return false
	}

	a.ready.Store(true)
	return true
}

func (a *Adapter) Ready() bool {
	return a.ready.Load()
}

// RunQuery picks the worksheet that best matches the query and ranks its rows.
func (a *Adapter) RunQuery(ctx context.Context, text string) (*entity.QueryResult, error) {
	if !interpreter.IsTopQuery(text) {
		return entity.Advisory(adapter.UnsupportedQueryReply), nil
	}
	if !a.Ready() {
		return adapter.Advise(noWorksheetReply), nil
	}

	intent := adapter.Intent(text)

	worksheet, err := a.autoSelectWorksheet(ctx, text)
	if err != nil {
		return a.readFailure(ctx, err)
	}

	ctxzap.Debug(ctx, "running dashboard top-n query",
		zap.String("worksheet", worksheet),
		zap.Int("count", intent.Count),
		zap.String("measure", intent.Measure),
		zap.Bool("has_dimension", intent.HasDimension()),
	)

	table, err := a.conn.SummaryData(ctx, worksheet, a.opts.DataMaxRows)
	if err != nil {
		return a.readFailure(ctx, err)
	}

	return adapter.Rank(intent, newWorksheetSource(table), "worksheet")
}

func (a *Adapter) readFailure(ctx context.Context, err error) (*entity.QueryResult, error) {
	if errors.Is(err, entity.ErrNoWorksheet) {
		return adapter.Advise(noWorksheetReply), nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	ctxzap.Error(ctx, "failed to read dashboard data", zap.Error(err))
	return adapter.Advise(readFailedReply), nil
}

type probeResult struct {
	index int
	score int
}

// autoSelectWorksheet probes every worksheet concurrently and scores it by
// how many of its field names occur in the query. It waits until all probes
// are in or the probe timeout elapses, whichever comes first. The highest
// positive score wins; ties go to the worksheet listed first.
func (a *Adapter) autoSelectWorksheet(ctx context.Context, query string) (string, error) {
	sheets, err := a.conn.Worksheets(ctx)
	if err != nil {
		return "", err
	}
	if len(sheets) == 0 {
		return "", entity.ErrNoWorksheet
	}

	lower := strings.ToLower(query)

	// Buffered so late probes never block after we stop listening.
	results := make(chan probeResult, len(sheets))
	for i, ws := range sheets {
		go func(index int, name string) {
			table, err := a.conn.SummaryData(ctx, name, a.opts.ProbeMaxRows)
			if err != nil {
				ctxzap.Debug(ctx, "worksheet probe failed", zap.String("worksheet", name), zap.Error(err))
				results <- probeResult{index: index}
				return
			}
			results <- probeResult{index: index, score: scoreColumns(table.Columns, lower)}
		}(i, ws.Name)
	}

	timer := time.NewTimer(a.opts.ProbeTimeout)
	defer timer.Stop()

	scores := make([]int, len(sheets))
collect:
	for received := 0; received < len(sheets); received++ {
		select {
		case r := <-results:
			scores[r.index] = r.score
		case <-timer.C:
			ctxzap.Debug(ctx, "worksheet probe deadline reached",
				zap.Int("received", received),
				zap.Int("worksheet_count", len(sheets)),
			)
			break collect
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	best, bestScore := -1, 0
	for i, s := range scores {
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return "", entity.ErrNoWorksheet
	}
	return sheets[best].Name, nil
}

func scoreColumns(columns []entity.DataColumn, lowerQuery string) int {
	score := 0
	for _, c := range columns {
		if c.FieldName != "" && strings.Contains(lowerQuery, strings.ToLower(c.FieldName)) {
			score++
		}
	}
	return score
}
