package core

import "time"

// DashboardReport is the single-day overview shown on the dashboard.
type DashboardReport struct {
	TotalPieces int64                `json:"totalPecasHoje"`
	Hourly      []HourlyCount        `json:"producaoHora"`
	Materials   []AggregatedCategory `json:"materiais"`
	Colors      []AggregatedCategory `json:"cores"`
	Sizes       []AggregatedCategory `json:"tamanhos"`
}

// FilteredReport summarizes a date range per day.
type FilteredReport struct {
	TotalPeriod int64                     `json:"totalPeriodo"`
	ByMaterial  []DailyAggregatedCategory `json:"producaoPorMaterial"`
	BySize      []DailyAggregatedCategory `json:"producaoPorTamanho"`
}

// CategoryKind names a categorical dimension of a production record.
type CategoryKind string

const (
	CategoryMaterial CategoryKind = "material"
	CategoryColor    CategoryKind = "cor"
	CategorySize     CategoryKind = "tamanho"
)

// TotalQuantity sums quantities; used to check count conservation.
func TotalQuantity(rows []AggregatedCategory) int64 {
	var total int64
	for _, r := range rows {
		total += r.Quantity
	}
	return total
}

// Report kinds, used in events, logs and metrics.
const (
	ReportDashboard      = "dashboard"
	ReportFull           = "full_report"
	ReportFiltered       = "filtered_report"
	ReportLatest         = "latest_activities"
	ReportTestConnection = "test_connection"
)

// Report outcomes.
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeConnectionError = "connection_error"
	OutcomeQueryError      = "query_error"
	OutcomeError           = "error"
)

// ReportEvent records one generated report for auditing. It never carries
// credentials.
type ReportEvent struct {
	Kind       string    `json:"kind"`
	Addr       string    `json:"addr"`
	Start      string    `json:"start,omitempty"`
	End        string    `json:"end,omitempty"`
	Rows       int       `json:"rows"`
	DurationMs int64     `json:"duration_ms"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
