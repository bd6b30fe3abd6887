package csvadapter

import (
	"context"
	"strings"
	"testing"

	"github.com/futig/dash-chat/internal/adapter"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const amounts = "name,amount\nA,100\nB,\"2,500\"\nC,abc\n"

func TestRunQuery_TopAmount(t *testing.T) {
	a := New()
	info := a.LoadText(amounts)
	require.Equal(t, 3, info.RowCount)

	res, err := a.RunQuery(context.Background(), "top 2 amount")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, res.Labels)
	assert.Equal(t, []float64{2500, 100}, res.Values)
	assert.Equal(t, "amount", res.Measure)
	assert.Equal(t, "📊 Top 2 by amount:\n1. B: 2500\n2. A: 100\n", res.Reply)

	res, err = a.RunQuery(context.Background(), "Top 3 amount")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, res.Labels)
	assert.Equal(t, []float64{2500, 100, 0}, res.Values)
}

func TestRunQuery_DefaultsToFiveRows(t *testing.T) {
	a := New()
	a.LoadText("k,sales\na,1\nb,2\nc,3\nd,4\ne,5\nf,6\ng,7\n")

	res, err := a.RunQuery(context.Background(), "what are the top sales?")
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "f", "e", "d", "c"}, res.Labels)
}

func TestRunQuery_NotATopQuery(t *testing.T) {
	a := New()
	a.LoadText(amounts)

	res, err := a.RunQuery(context.Background(), "how are sales doing?")
	require.NoError(t, err)
	assert.Equal(t, adapter.UnsupportedQueryReply, res.Reply)
	assert.False(t, res.HasChart())

	empty := New()
	res, err = empty.RunQuery(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, adapter.UnsupportedQueryReply, res.Reply)
}

func TestRunQuery_EmptyTable(t *testing.T) {
	a := New()
	a.LoadText("name,amount\n")

	res, err := a.RunQuery(context.Background(), "top 5 amount")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Reply, adapter.AdvisoryPrefix))
	assert.Empty(t, res.Labels)
	assert.Empty(t, res.Values)
}

func TestRunQuery_NoNumericColumn(t *testing.T) {
	a := New()
	a.LoadText("name,city\nA,Oslo\n")

	res, err := a.RunQuery(context.Background(), "top 5 sales")
	require.NoError(t, err)
	assert.Equal(t, "⚠️ No numeric measure detected in CSV.", res.Reply)
	assert.False(t, res.HasChart())
}

func TestLoadReader(t *testing.T) {
	a := New()
	info, err := a.LoadReader(strings.NewReader("region,sales\r\nWest,5\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "sales"}, info.Columns)
	assert.Equal(t, 1, a.RowCount())
	assert.Equal(t, Name, a.Name())
	assert.True(t, a.Init(context.Background()))
}

func TestRunQuery_LogsIntent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ctxzap.ToContext(context.Background(), zap.New(core))

	a := New()
	a.LoadText("region,sales\nWest,5\nEast,9\n")

	_, err := a.RunQuery(ctx, "top 1 sales by region")
	require.NoError(t, err)
	_, err = a.RunQuery(ctx, "top 1 sales")
	require.NoError(t, err)

	entries := logs.FilterMessage("running csv top-n query").All()
	require.Len(t, entries, 2)
	assert.Equal(t, true, entries[0].ContextMap()["has_dimension"])
	assert.Equal(t, "region", entries[0].ContextMap()["dimension"])
	assert.Equal(t, false, entries[1].ContextMap()["has_dimension"])
}
