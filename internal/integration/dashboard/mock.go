package dashboard

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/futig/dash-chat/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sampleFixture []byte

// Fixture is the YAML document the mock connector serves.
type Fixture struct {
	Dashboard  string             `yaml:"dashboard"`
	Worksheets []FixtureWorksheet `yaml:"worksheets"`
}

type FixtureWorksheet struct {
	Name    string               `yaml:"name"`
	Columns []entity.DataColumn  `yaml:"columns"`
	Data    [][]entity.DataValue `yaml:"data"`
}

// MockConnector serves worksheets from a fixture instead of a live dashboard.
type MockConnector struct {
	fixture Fixture
	logger  *zap.Logger
}

// NewMockConnector loads the fixture at path, or the built-in sample when
// path is empty.
func NewMockConnector(path string, logger *zap.Logger) (*MockConnector, error) {
	data := sampleFixture
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read dashboard fixture: %w", err)
		}
		data = raw
	}

	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse dashboard fixture: %w", err)
	}

	return &MockConnector{fixture: fx, logger: logger}, nil
}

func (m *MockConnector) Initialize(ctx context.Context) (*entity.DashboardInitResponse, error) {
	ctxzap.Info(ctx, "[MOCK] initializing dashboard", zap.String("dashboard", m.fixture.Dashboard))
	return &entity.DashboardInitResponse{
		Dashboard: m.fixture.Dashboard,
		Ready:     len(m.fixture.Worksheets) > 0,
	}, nil
}

func (m *MockConnector) Worksheets(ctx context.Context) ([]entity.Worksheet, error) {
	sheets := make([]entity.Worksheet, len(m.fixture.Worksheets))
	for i, ws := range m.fixture.Worksheets {
		sheets[i] = entity.Worksheet{Name: ws.Name}
	}
	ctxzap.Debug(ctx, "[MOCK] worksheets listed", zap.Int("worksheet_count", len(sheets)))
	return sheets, nil
}

func (m *MockConnector) SummaryData(ctx context.Context, worksheet string, maxRows int) (*entity.DataTable, error) {
	for _, ws := range m.fixture.Worksheets {
		if ws.Name != worksheet {
			continue
		}

		rows := ws.Data
		if maxRows >= 0 && len(rows) > maxRows {
			rows = rows[:maxRows]
		}
		ctxzap.Debug(ctx, "[MOCK] summary data read",
			zap.String("worksheet", worksheet),
			zap.Int("row_count", len(rows)),
		)
		return &entity.DataTable{Columns: ws.Columns, Data: rows}, nil
	}
	return nil, fmt.Errorf("%w: %s", entity.ErrNoWorksheet, worksheet)
}
