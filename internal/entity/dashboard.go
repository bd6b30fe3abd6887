package entity

// Worksheet is a sheet of the remote dashboard.
type Worksheet struct {
	Name string `json:"name" yaml:"name"`
}

// DataColumn describes a column of a worksheet summary.
type DataColumn struct {
	FieldName string `json:"field_name" yaml:"field_name"`
	DataType  string `json:"data_type" yaml:"data_type"`
}

// DataValue is one cell of a worksheet summary.
type DataValue struct {
	Value          any    `json:"value" yaml:"value"`
	FormattedValue string `json:"formatted_value" yaml:"formatted_value"`
}

// DataTable is the summary data of a worksheet.
type DataTable struct {
	Columns []DataColumn  `json:"columns" yaml:"columns"`
	Data    [][]DataValue `json:"data" yaml:"data"`
}

type DashboardInitResponse struct {
	Dashboard string `json:"dashboard"`
	Ready     bool   `json:"ready"`
}

type WorksheetsResponse struct {
	Worksheets []Worksheet `json:"worksheets"`
}
