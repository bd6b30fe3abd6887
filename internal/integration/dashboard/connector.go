package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/futig/dash-chat/internal/config"
	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/integration/common"
	pkghttp "github.com/futig/dash-chat/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector talks to the dashboard bridge that exposes the embedding
// dashboard's worksheets over HTTP.
type Connector struct {
	config    config.DashboardConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.DashboardConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector("dashboard", cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Initialize checks that a dashboard is reachable and ready.
// GET {init_endpoint}
func (c *Connector) Initialize(ctx context.Context) (*entity.DashboardInitResponse, error) {
	ctxzap.Debug(ctx, "initializing dashboard connection")

	var resp entity.DashboardInitResponse
	if err := c.connector.DoRequest(ctx, http.MethodGet, c.config.InitEndpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("initialize dashboard: %w", err)
	}

	ctxzap.Info(ctx, "dashboard connection initialized",
		zap.String("dashboard", resp.Dashboard),
		zap.Bool("ready", resp.Ready),
	)
	return &resp, nil
}

// Worksheets lists the dashboard's worksheets in display order.
// GET {worksheets_endpoint}
func (c *Connector) Worksheets(ctx context.Context) ([]entity.Worksheet, error) {
	var resp entity.WorksheetsResponse
	if err := c.connector.DoRequest(ctx, http.MethodGet, c.config.WorksheetsEndpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("list worksheets: %w", err)
	}

	ctxzap.Debug(ctx, "worksheets listed", zap.Int("worksheet_count", len(resp.Worksheets)))
	return resp.Worksheets, nil
}

// SummaryData reads up to maxRows rows of a worksheet's summary data.
// GET {data_endpoint}?max_rows={n} with {worksheet} substituted
func (c *Connector) SummaryData(ctx context.Context, worksheet string, maxRows int) (*entity.DataTable, error) {
	endpoint := strings.Replace(c.config.DataEndpoint, "{worksheet}", url.PathEscape(worksheet), 1)

	var table entity.DataTable
	err := c.connector.DoRequest(ctx, http.MethodGet, endpoint, nil, &table,
		pkghttp.WithQuery("max_rows", strconv.Itoa(maxRows)),
	)
	if err != nil {
		if pkghttp.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", entity.ErrNoWorksheet, worksheet)
		}
		return nil, fmt.Errorf("read summary data of %q: %w", worksheet, err)
	}

	ctxzap.Debug(ctx, "summary data read",
		zap.String("worksheet", worksheet),
		zap.Int("column_count", len(table.Columns)),
		zap.Int("row_count", len(table.Data)),
	)
	return &table, nil
}
