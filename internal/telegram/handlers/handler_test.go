package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/telegram/render"
	"github.com/futig/dash-chat/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	fileURL  string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(_ string) (string, error) {
	return f.fileURL, nil
}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) last() tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

type fakeChat struct {
	created  int
	deleted  []string
	queryErr error
	result   *entity.QueryResult
	csv      string
	key      string
	format   entity.ExportFormat
}

func botMsg(text string) []*entity.Message {
	return []*entity.Message{{Role: entity.MessageRoleBot, Text: text}}
}

func (f *fakeChat) CreateSession(_ context.Context) (*entity.CreateSessionResponse, error) {
	f.created++
	id := "s" + string(rune('0'+f.created))
	return &entity.CreateSessionResponse{
		Session:  &entity.SessionDTO{ID: id, Adapter: "CSV"},
		Messages: append(botMsg("Detecting environment..."), botMsg(`Adapter ready — CSV. Try: "Top 5 sales"`)...),
	}, nil
}

func (f *fakeChat) DeleteSession(_ context.Context, sessionID string) error {
	f.deleted = append(f.deleted, sessionID)
	return nil
}

func (f *fakeChat) SubmitQuery(_ context.Context, _, text string) (*entity.ChatReply, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &entity.ChatReply{
		Messages: append([]*entity.Message{{Role: entity.MessageRoleUser, Text: text}}, botMsg("📊 Top 1 by sales:\n1. West: 10")...),
		Result:   f.result,
		Source:   entity.ReplySourceAdapter,
	}, nil
}

func (f *fakeChat) LoadCSV(_ context.Context, _, filename string, r io.Reader) (*entity.LoadCSVResponse, error) {
	data, _ := io.ReadAll(r)
	f.csv = string(data)
	return &entity.LoadCSVResponse{FileName: filename, Messages: botMsg("Loaded " + filename)}, nil
}

func (f *fakeChat) SetAPIKey(_ context.Context, _, key string) (*entity.SetAPIKeyResponse, error) {
	f.key = key
	return &entity.SetAPIKeyResponse{Messages: botMsg("✅ API key saved!")}, nil
}

func (f *fakeChat) ExportResult(_ context.Context, _ string, format entity.ExportFormat) (*entity.ExportedFile, error) {
	f.format = format
	if f.result == nil {
		return nil, entity.ErrNoResult
	}
	return &entity.ExportedFile{Filename: "top-1-sales.md", Content: []byte("# Top 1 by sales")}, nil
}

func newTestHandler(api *fakeAPI, uc *fakeChat) *Handler {
	states := state.NewManager(state.NewMemoryStorage(time.Hour, time.Hour))
	return NewHandler(api, uc, states, http.DefaultClient, 1024, zap.NewNop())
}

func TestHandle_QueryWithoutSession(t *testing.T) {
	api := &fakeAPI{}
	h := newTestHandler(api, &fakeChat{})

	require.NoError(t, h.Handle(context.Background(), &Message{ChatID: 1, Text: "top 5 sales"}))
	assert.Equal(t, []string{render.MsgNoSession}, api.texts())
}

func TestHandle_StartReplacesPreviousSession(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	uc := &fakeChat{}
	h := newTestHandler(api, uc)

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: "start"}))
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: "start"}))

	assert.Equal(t, 2, uc.created)
	assert.Equal(t, []string{"s1"}, uc.deleted)
	require.Len(t, api.texts(), 2)
	assert.Equal(t, "Detecting environment...\n\nAdapter ready — CSV. Try: \"Top 5 sales\"", api.texts()[0])
}

func TestHandle_QueryAttachesExportKeyboard(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	uc := &fakeChat{result: &entity.QueryResult{Labels: []string{"West"}, Values: []float64{10}}}
	h := newTestHandler(api, uc)

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: "start"}))
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Text: "top 1 sales"}))

	msg, ok := api.last().(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, "📊 Top 1 by sales:\n1. West: 10", msg.Text)
	assert.IsType(t, tgbotapi.InlineKeyboardMarkup{}, msg.ReplyMarkup)
}

func TestHandle_QueryBusy(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	h := newTestHandler(api, &fakeChat{queryErr: entity.ErrSessionBusy})

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: "start"}))
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Text: "top 1 sales"}))

	texts := api.texts()
	assert.Equal(t, render.MsgBusy, texts[len(texts)-1])
}

func TestHandle_ExpiredSessionIsUnbound(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	h := newTestHandler(api, &fakeChat{queryErr: entity.ErrSessionNotFound})

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: "start"}))
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Text: "top 1 sales"}))

	_, err := h.states.SessionID(ctx, 1)
	assert.ErrorIs(t, err, state.ErrNoSession)
}

func TestHandle_KeyCommand(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	uc := &fakeChat{}
	h := newTestHandler(api, uc)

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: "start"}))
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, MessageID: 7, Command: "key", Args: "  sk-test "}))

	assert.Equal(t, "sk-test", uc.key)
	texts := api.texts()
	assert.Equal(t, "✅ API key saved!", texts[len(texts)-1])

	var deleted bool
	for _, r := range api.requests {
		if d, ok := r.(tgbotapi.DeleteMessageConfig); ok && d.MessageID == 7 {
			deleted = true
		}
	}
	assert.True(t, deleted)

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: "key"}))
	texts = api.texts()
	assert.Equal(t, render.MsgKeyUsage, texts[len(texts)-1])
}

func TestHandle_Export(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	uc := &fakeChat{}
	h := newTestHandler(api, uc)
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: "start"}))

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: "export", Args: "xlsx"}))
	texts := api.texts()
	assert.Equal(t, render.MsgBadFormat, texts[len(texts)-1])

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: "export", Args: "pdf"}))
	texts = api.texts()
	assert.Equal(t, render.MsgNoResult, texts[len(texts)-1])

	uc.result = &entity.QueryResult{Labels: []string{"West"}, Values: []float64{10}}
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, CallbackID: "cb", CallbackData: "export:md"}))
	assert.Equal(t, entity.FormatMarkdown, uc.format)

	doc, ok := api.last().(tgbotapi.DocumentConfig)
	require.True(t, ok)
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "top-1-sales.md", file.Name)
}

func TestHandle_Document(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Region,Sales\nWest,10\n")
	}))
	defer srv.Close()

	ctx := context.Background()
	api := &fakeAPI{fileURL: srv.URL + "/file"}
	uc := &fakeChat{}
	h := newTestHandler(api, uc)
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: "start"}))

	doc := &tgbotapi.Document{FileID: "f1", FileName: "sales.csv", FileSize: 21}
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Document: doc}))
	assert.Equal(t, "Region,Sales\nWest,10\n", uc.csv)
	texts := api.texts()
	assert.Equal(t, "Loaded sales.csv", texts[len(texts)-1])

	big := &tgbotapi.Document{FileID: "f2", FileName: "big.csv", FileSize: 4096}
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Document: big}))
	texts = api.texts()
	assert.Equal(t, render.MsgFileTooLarge, texts[len(texts)-1])
}

func TestHandle_UnknownCommand(t *testing.T) {
	api := &fakeAPI{}
	h := newTestHandler(api, &fakeChat{})

	require.NoError(t, h.Handle(context.Background(), &Message{ChatID: 1, Command: "frobnicate"}))
	assert.Equal(t, []string{render.MsgUnknownCmd}, api.texts())
}
