package ranking_test

import (
	"math"
	"testing"

	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/pkg/ranking"
	"github.com/futig/dash-chat/internal/pkg/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, raw string) *tabular.Snapshot {
	t.Helper()
	tbl := tabular.NewTable()
	tbl.Load(raw)
	return tbl.Snapshot()
}

func TestRankTopN_RoundTrip(t *testing.T) {
	src := load(t, "name,amount\nA,100\nB,\"2,500\"\nC,abc\n")

	res, err := ranking.RankTopN(entity.QueryIntent{Count: 2, Measure: "amount"}, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, res.Labels)
	assert.Equal(t, []float64{2500, 100}, res.Values)
	assert.Equal(t, "amount", res.Measure)

	res, err = ranking.RankTopN(entity.QueryIntent{Count: 3, Measure: "amount"}, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, res.Labels)
	assert.Equal(t, []float64{2500, 100, 0}, res.Values)
}

func TestRankTopN_Reply(t *testing.T) {
	src := load(t, "region,sales\nWest,10.5\nEast,20\n")

	res, err := ranking.RankTopN(entity.QueryIntent{Count: 5, Measure: "sales"}, src)
	require.NoError(t, err)
	assert.Equal(t, "📊 Top 5 by sales:\n1. East: 20\n2. West: 10.5\n", res.Reply)
	assert.Equal(t, entity.ChartBar, res.Chart)
	assert.Equal(t, "#4ade80", res.Color)
}

func TestRankTopN_NeverExceedsCountOrRows(t *testing.T) {
	src := load(t, "k,v\na,1\nb,2\nc,3\nd,4\n")

	for count := 1; count <= 10; count++ {
		res, err := ranking.RankTopN(entity.QueryIntent{Count: count}, src)
		require.NoError(t, err)
		assert.Len(t, res.Labels, min(count, 4))
		for i := 1; i < len(res.Values); i++ {
			assert.GreaterOrEqual(t, res.Values[i-1], res.Values[i])
		}
	}
}

func TestRankTopN_HugeCountKeepsEveryRow(t *testing.T) {
	src := load(t, "k,v\na,1\nb,2\n")

	res, err := ranking.RankTopN(entity.QueryIntent{Count: math.MaxInt}, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, res.Labels)
	assert.Contains(t, res.Reply, "Top 9223372036854775807 by v:")
}

func TestRankTopN_StableOnTies(t *testing.T) {
	src := load(t, "k,v\nfirst,5\nsecond,5\nthird,7\nfourth,5\n")

	res, err := ranking.RankTopN(entity.QueryIntent{Count: 4}, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "first", "second", "fourth"}, res.Labels)
}

func TestRankTopN_MeasureFallsBackToFirstNumeric(t *testing.T) {
	src := load(t, "city,trips,fare\nOslo,3,40\nRome,9,10\n")

	res, err := ranking.RankTopN(entity.QueryIntent{Count: 5, Measure: "sales"}, src)
	require.NoError(t, err)
	assert.Equal(t, "trips", res.Measure)
	assert.Equal(t, []string{"Rome", "Oslo"}, res.Labels)
}

func TestRankTopN_MeasureMatchIsCaseInsensitiveSubstring(t *testing.T) {
	src := load(t, "Region,Total Trips,Total Fare\nN,3,40\nS,9,10\n")

	res, err := ranking.RankTopN(entity.QueryIntent{Count: 5, Measure: "fare"}, src)
	require.NoError(t, err)
	assert.Equal(t, "Total Fare", res.Measure)
	assert.Equal(t, []string{"N", "S"}, res.Labels)
}

func TestRankTopN_BlankLabels(t *testing.T) {
	src := load(t, "region,sales\n,5\nWest,3\n")

	res, err := ranking.RankTopN(entity.QueryIntent{Count: 5}, src)
	require.NoError(t, err)
	assert.Equal(t, []string{ranking.BlankLabel, "West"}, res.Labels)
}

func TestRankTopN_SingleColumnUsesMeasureAsDimension(t *testing.T) {
	src := load(t, "sales\n10\n30\n")

	res, err := ranking.RankTopN(entity.QueryIntent{Count: 5, Measure: "sales"}, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"30", "10"}, res.Labels)
}

func TestRankTopN_Failures(t *testing.T) {
	_, err := ranking.RankTopN(entity.QueryIntent{Count: 5}, load(t, "a,b\n"))
	assert.ErrorIs(t, err, entity.ErrNoData)

	_, err = ranking.RankTopN(entity.QueryIntent{Count: 5}, load(t, "a,b\nx,y\n"))
	assert.ErrorIs(t, err, entity.ErrNoMeasure)

	_, err = ranking.RankTopN(entity.QueryIntent{Count: 0}, load(t, "a,b\nx,1\n"))
	assert.ErrorIs(t, err, entity.ErrNoRows)
}

func TestResolveColumns_DimensionIsFirstNonMeasure(t *testing.T) {
	src := load(t, "sales,region,segment\n1,W,A\n")

	sel, err := ranking.ResolveColumns(src, "sales")
	require.NoError(t, err)
	assert.Equal(t, "sales", sel.Measure)
	assert.Equal(t, "region", sel.Dimension)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "2500", ranking.FormatValue(2500))
	assert.Equal(t, "2.5", ranking.FormatValue(2.5))
	assert.Equal(t, "-7", ranking.FormatValue(-7))
	assert.Equal(t, "0", ranking.FormatValue(0))
}
