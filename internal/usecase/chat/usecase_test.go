package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/dash-chat/internal/adapter"
	"github.com/futig/dash-chat/internal/adapter/dashadapter"
	"github.com/futig/dash-chat/internal/config"
	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/pkg/formatter"
	"github.com/futig/dash-chat/internal/pkg/validator"
	"github.com/futig/dash-chat/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDashboard struct {
	initErr error
	table   *entity.DataTable
}

func (f *fakeDashboard) Initialize(_ context.Context) (*entity.DashboardInitResponse, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &entity.DashboardInitResponse{Dashboard: "test", Ready: true}, nil
}

func (f *fakeDashboard) Worksheets(_ context.Context) ([]entity.Worksheet, error) {
	return []entity.Worksheet{{Name: "Sheet"}}, nil
}

func (f *fakeDashboard) SummaryData(_ context.Context, _ string, maxRows int) (*entity.DataTable, error) {
	rows := f.table.Data
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	return &entity.DataTable{Columns: f.table.Columns, Data: rows}, nil
}

type fakeLLM struct {
	mu      sync.Mutex
	answer  string
	err     error
	block   chan struct{}
	started chan struct{}
	prompts []string
	keys    []string
}

func (f *fakeLLM) Ask(_ context.Context, req *entity.LLMRequest) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.keys = append(f.keys, req.APIKey)
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.answer, f.err
}

func newUsecase(t *testing.T, adapters []string, dash dashadapter.Connector, llm LLMConnector) (*ChatUsecase, *repository.MessageMemory) {
	t.Helper()
	repo := repository.NewMessageMemory()
	uc := NewUsecase(
		Options{
			Adapters:        adapters,
			SessionTTL:      time.Hour,
			CleanupInterval: time.Hour,
			Dashboard:       dashadapter.Options{ProbeTimeout: 200 * time.Millisecond},
		},
		repo,
		validator.NewFileValidator(config.FileUploadConfig{MaxFileSize: 1 << 20, MaxUploadSize: 1 << 21}),
		formatter.NewFactory(),
		dash,
		llm,
		zap.NewNop(),
	)
	return uc, repo
}

func texts(msgs []*entity.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

func salesSheet() *entity.DataTable {
	return &entity.DataTable{
		Columns: []entity.DataColumn{
			{FieldName: "Region", DataType: "string"},
			{FieldName: "Sales", DataType: "float"},
		},
		Data: [][]entity.DataValue{
			{{Value: "West", FormattedValue: "West"}, {Value: 5.0}},
			{{Value: "East", FormattedValue: "East"}, {Value: 9.0}},
		},
	}
}

func TestCreateSession_DashboardReady(t *testing.T) {
	uc, _ := newUsecase(t, []string{config.AdapterDashboard, config.AdapterCSV}, &fakeDashboard{table: salesSheet()}, nil)

	resp, err := uc.CreateSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Detecting environment...",
		`Adapter ready — Dashboard. Try: "Top 5 sales"`,
	}, texts(resp.Messages))
	assert.Equal(t, "Dashboard", resp.Session.Adapter)
	assert.Equal(t, "Adapter: Dashboard (ready)", resp.Session.Status)

	reply, err := uc.SubmitQuery(context.Background(), resp.Session.ID, "top 1 sales by region")
	require.NoError(t, err)
	assert.Equal(t, entity.ReplySourceAdapter, reply.Source)
	require.NotNil(t, reply.Result)
	assert.Equal(t, []string{"East"}, reply.Result.Labels)
}

func TestLoadCSV_SwitchesFromDashboardWithoutLeakage(t *testing.T) {
	uc, _ := newUsecase(t, []string{config.AdapterDashboard, config.AdapterCSV}, &fakeDashboard{table: salesSheet()}, nil)
	ctx := context.Background()

	created, err := uc.CreateSession(ctx)
	require.NoError(t, err)
	id := created.Session.ID
	require.Equal(t, "Dashboard", created.Session.Adapter)

	before, err := uc.SubmitQuery(ctx, id, "top 2 sales by region")
	require.NoError(t, err)
	require.NotNil(t, before.Result)
	assert.Equal(t, []string{"East", "West"}, before.Result.Labels)

	_, err = uc.LoadCSV(ctx, id, "cities.csv", strings.NewReader("region,sales\nOslo,3\n"))
	require.NoError(t, err)

	after, err := uc.SubmitQuery(ctx, id, "top 2 sales by region")
	require.NoError(t, err)
	require.NotNil(t, after.Result)
	assert.Equal(t, entity.ReplySourceAdapter, after.Source)
	assert.Equal(t, []string{"Oslo"}, after.Result.Labels)
	assert.Equal(t, []float64{3}, after.Result.Values)

	session, err := uc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "CSV", session.Adapter)
	assert.Equal(t, "Adapter: CSV (ready)", session.Status)
}

func TestCreateSession_DashboardFailsFallsBackToCSV(t *testing.T) {
	uc, _ := newUsecase(t, []string{config.AdapterDashboard, config.AdapterCSV}, &fakeDashboard{initErr: errors.New("down")}, nil)

	resp, err := uc.CreateSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Detecting environment...",
		"Adapter Dashboard not available.",
		`Adapter ready — CSV. Try: "Top 5 sales"`,
		"No dashboard detected — upload a CSV to use the CSV adapter.",
	}, texts(resp.Messages))
	assert.Equal(t, "Adapter: CSV (ready)", resp.Session.Status)
}

func TestCreateSession_NoAdapter(t *testing.T) {
	uc, _ := newUsecase(t, []string{config.AdapterDashboard}, nil, &fakeLLM{answer: "hi"})

	resp, err := uc.CreateSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Detecting environment...",
		"Adapter Dashboard not available.",
		"No adapter available.",
	}, texts(resp.Messages))
	assert.Equal(t, "Adapter: none (not ready)", resp.Session.Status)
	assert.False(t, resp.Session.Ready)

	// Without an adapter every query goes to the language model.
	_, err = uc.SetAPIKey(context.Background(), resp.Session.ID, "sk-1")
	require.NoError(t, err)
	reply, err := uc.SubmitQuery(context.Background(), resp.Session.ID, "top 5 sales")
	require.NoError(t, err)
	assert.Equal(t, entity.ReplySourceLLM, reply.Source)
	assert.Equal(t, []string{"top 5 sales", "hi"}, texts(reply.Messages))
}

func TestLoadCSVAndQuery(t *testing.T) {
	uc, repo := newUsecase(t, []string{config.AdapterCSV}, nil, nil)
	ctx := context.Background()

	created, err := uc.CreateSession(ctx)
	require.NoError(t, err)
	id := created.Session.ID

	reply, err := uc.SubmitQuery(ctx, id, "top 5 sales")
	require.NoError(t, err)
	assert.Equal(t, "⚠️ No CSV loaded. Use the CSV upload control.", reply.Result.Reply)

	loaded, err := uc.LoadCSV(ctx, id, "data.csv", strings.NewReader("name,amount\nA,100\nB,\"2,500\"\nC,abc\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "amount"}, loaded.Columns)
	assert.Equal(t, 3, loaded.RowCount)
	assert.Equal(t, []string{`Adapter ready — CSV. Try: "Top 5 sales"`}, texts(loaded.Messages))

	reply, err = uc.SubmitQuery(ctx, id, "  top 2 amount  ")
	require.NoError(t, err)
	assert.Equal(t, entity.ReplySourceAdapter, reply.Source)
	assert.Equal(t, []string{"B", "A"}, reply.Result.Labels)
	assert.Equal(t, []float64{2500, 100}, reply.Result.Values)
	assert.Equal(t, []string{"top 2 amount", "📊 Top 2 by amount:\n1. B: 2500\n2. A: 100\n"}, texts(reply.Messages))

	session, err := uc.GetSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, session.File)
	assert.Equal(t, "data.csv", session.File.Name)
	assert.NotNil(t, session.LastQueryAt)

	all, err := repo.ListBySession(ctx, id)
	require.NoError(t, err)
	assert.Len(t, all, len(created.Messages)+2+1+2)
}

func TestLoadCSV_Rejected(t *testing.T) {
	uc, _ := newUsecase(t, []string{config.AdapterCSV}, nil, nil)
	ctx := context.Background()
	created, err := uc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = uc.LoadCSV(ctx, created.Session.ID, "data.xlsx", strings.NewReader("a,b"))
	require.ErrorIs(t, err, entity.ErrInvalidExtension)

	msgs, err := uc.ListMessages(ctx, created.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Failed to load CSV file.", msgs[len(msgs)-1].Text)
}

func TestSubmitQuery_NotTopGoesThroughAdapter(t *testing.T) {
	uc, _ := newUsecase(t, []string{config.AdapterCSV}, nil, &fakeLLM{answer: "llm"})
	ctx := context.Background()
	created, err := uc.CreateSession(ctx)
	require.NoError(t, err)

	reply, err := uc.SubmitQuery(ctx, created.Session.ID, "how are you?")
	require.NoError(t, err)
	assert.Equal(t, entity.ReplySourceAdapter, reply.Source)
	assert.Equal(t, adapter.UnsupportedQueryReply, reply.Result.Reply)
}

func TestSubmitQuery_LLMAdvisories(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		llm    *fakeLLM
		setKey bool
		want   string
	}{
		{name: "no key", llm: &fakeLLM{answer: "x"}, want: "⚠️ Please set your API key first."},
		{name: "provider error", llm: &fakeLLM{err: errors.New("401")}, setKey: true, want: "⚠️ Failed to connect to the language model API."},
		{name: "empty answer", llm: &fakeLLM{answer: "  "}, setKey: true, want: "No response from AI."},
		{name: "answer", llm: &fakeLLM{answer: "Sales are fine."}, setKey: true, want: "Sales are fine."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := newUsecase(t, nil, nil, tt.llm)
			created, err := uc.CreateSession(ctx)
			require.NoError(t, err)
			if tt.setKey {
				saved, err := uc.SetAPIKey(ctx, created.Session.ID, "sk-test")
				require.NoError(t, err)
				assert.Equal(t, []string{"✅ API key saved!"}, texts(saved.Messages))
			}

			reply, err := uc.SubmitQuery(ctx, created.Session.ID, "tell me something")
			require.NoError(t, err)
			assert.Equal(t, entity.ReplySourceLLM, reply.Source)
			assert.Nil(t, reply.Result)
			assert.Equal(t, tt.want, reply.Messages[len(reply.Messages)-1].Text)
		})
	}
}

func TestSubmitQuery_DefaultAPIKey(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	uc, _ := newUsecase(t, nil, nil, llm)
	uc.opts.DefaultAPIKey = "env-key"
	ctx := context.Background()

	created, err := uc.CreateSession(ctx)
	require.NoError(t, err)
	_, err = uc.SubmitQuery(ctx, created.Session.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"env-key"}, llm.keys)

	_, err = uc.SetAPIKey(ctx, created.Session.ID, "own-key")
	require.NoError(t, err)
	_, err = uc.SubmitQuery(ctx, created.Session.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"env-key", "own-key"}, llm.keys)
}

type failingAdapter struct{}

func (failingAdapter) Name() string {
	return "Broken"
}

func (failingAdapter) Init(_ context.Context) bool {
	return true
}

func (failingAdapter) RunQuery(_ context.Context, _ string) (*entity.QueryResult, error) {
	return nil, errors.New("worksheet vanished")
}

func TestSubmitQuery_AdapterErrorIsSurfaced(t *testing.T) {
	uc, _ := newUsecase(t, []string{config.AdapterCSV}, nil, nil)
	ctx := context.Background()
	created, err := uc.CreateSession(ctx)
	require.NoError(t, err)

	s, err := uc.session(created.Session.ID)
	require.NoError(t, err)
	s.activate(failingAdapter{}, true)

	reply, err := uc.SubmitQuery(ctx, created.Session.ID, "top 5 sales")
	require.NoError(t, err)
	assert.Equal(t, entity.ReplySourceError, reply.Source)
	assert.Equal(t, "Error: worksheet vanished", reply.Messages[len(reply.Messages)-1].Text)
}

func TestSubmitQuery_BusyGuard(t *testing.T) {
	llm := &fakeLLM{answer: "done", block: make(chan struct{}), started: make(chan struct{})}
	uc, _ := newUsecase(t, nil, nil, llm)
	uc.opts.DefaultAPIKey = "k"
	ctx := context.Background()

	created, err := uc.CreateSession(ctx)
	require.NoError(t, err)
	id := created.Session.ID

	done := make(chan error, 1)
	go func() {
		_, err := uc.SubmitQuery(ctx, id, "first")
		done <- err
	}()
	<-llm.started

	_, err = uc.SubmitQuery(ctx, id, "second")
	assert.ErrorIs(t, err, entity.ErrSessionBusy)

	close(llm.block)
	require.NoError(t, <-done)

	llm.block = nil
	llm.started = nil
	_, err = uc.SubmitQuery(ctx, id, "third")
	assert.NoError(t, err)
}

func TestSubmitQuery_Validation(t *testing.T) {
	uc, _ := newUsecase(t, []string{config.AdapterCSV}, nil, nil)

	_, err := uc.SubmitQuery(context.Background(), "missing", "top 5")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	created, err := uc.CreateSession(context.Background())
	require.NoError(t, err)
	_, err = uc.SubmitQuery(context.Background(), created.Session.ID, "   ")
	assert.ErrorIs(t, err, entity.ErrMissingField)

	_, err = uc.SetAPIKey(context.Background(), created.Session.ID, " ")
	assert.ErrorIs(t, err, entity.ErrMissingField)
}

func TestExportResult(t *testing.T) {
	uc, _ := newUsecase(t, []string{config.AdapterCSV}, nil, nil)
	ctx := context.Background()
	created, err := uc.CreateSession(ctx)
	require.NoError(t, err)
	id := created.Session.ID

	_, err = uc.ExportResult(ctx, id, entity.FormatMarkdown)
	require.ErrorIs(t, err, entity.ErrNoResult)

	_, err = uc.LoadCSV(ctx, id, "s.csv", strings.NewReader("region,sales\nWest,5\nEast,7\n"))
	require.NoError(t, err)
	_, err = uc.SubmitQuery(ctx, id, "top 2 sales")
	require.NoError(t, err)

	file, err := uc.ExportResult(ctx, id, entity.FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "top-2-sales.md", file.Filename)
	assert.Contains(t, string(file.Content), "| 1 | East | 7 |")

	_, err = uc.ExportResult(ctx, id, "xlsx")
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)
}

func TestDeleteSession(t *testing.T) {
	uc, repo := newUsecase(t, []string{config.AdapterCSV}, nil, nil)
	ctx := context.Background()
	created, err := uc.CreateSession(ctx)
	require.NoError(t, err)
	id := created.Session.ID

	require.NoError(t, uc.DeleteSession(ctx, id))

	_, err = uc.GetSession(ctx, id)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
	assert.ErrorIs(t, uc.DeleteSession(ctx, id), entity.ErrSessionNotFound)

	msgs, err := repo.ListBySession(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
