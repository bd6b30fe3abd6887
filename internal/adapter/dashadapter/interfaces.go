package dashadapter

import (
	"context"

	"github.com/futig/dash-chat/internal/entity"
)

type Connector interface {
	Initialize(ctx context.Context) (*entity.DashboardInitResponse, error)
	Worksheets(ctx context.Context) ([]entity.Worksheet, error)
	SummaryData(ctx context.Context, worksheet string, maxRows int) (*entity.DataTable, error)
}
