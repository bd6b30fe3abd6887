// Package adapter holds what the CSV and dashboard adapters share: the top-N
// dispatch rule and the conversion of ranking failures into advisory replies.
package adapter

import (
	"context"
	"errors"

	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/pkg/interpreter"
	"github.com/futig/dash-chat/internal/pkg/ranking"
)

// AdvisoryPrefix marks replies that signal an unmet precondition.
const AdvisoryPrefix = "⚠️ "

// UnsupportedQueryReply is returned by every adapter for queries without "top".
const UnsupportedQueryReply = `This adapter currently supports Top-N queries only. Try: "Top 5 sales".`

// Adapter is the capability surface the chat usecase composes over.
type Adapter interface {
	Name() string
	Init(ctx context.Context) bool
	RunQuery(ctx context.Context, text string) (*entity.QueryResult, error)
}

// Advise prefixes a message with the advisory marker.
func Advise(msg string) *entity.QueryResult {
	return entity.Advisory(AdvisoryPrefix + msg)
}

// Intent analyzes the query and applies the conventional default measure.
func Intent(text string) entity.QueryIntent {
	intent := interpreter.Analyze(text)
	intent.Measure = intent.MeasureOr(interpreter.DefaultMeasure)
	return intent
}

// Rank runs the ranking and turns its failure conditions into advisory
// replies. noun names the source in messages, e.g. "CSV" or "worksheet".
func Rank(intent entity.QueryIntent, src ranking.Source, noun string) (*entity.QueryResult, error) {
	res, err := ranking.RankTopN(intent, src)
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, entity.ErrNoData), errors.Is(err, entity.ErrNoRows):
		return Advise("No data available."), nil
	case errors.Is(err, entity.ErrNoMeasure):
		return Advise("No numeric measure detected in " + noun + "."), nil
	default:
		return nil, err
	}
}
