package storage

import (
	"time"

	"prodboard/internal/core"
)

// Query operation names, used in errors, logs and metrics.
const (
	OpTotalCount          = "total_count"
	OpHourlyCounts        = "hourly_counts"
	OpMaterialCounts      = "material_counts"
	OpColorCounts         = "color_counts"
	OpSizeCounts          = "size_counts"
	OpProductionRecords   = "production_records"
	OpDailyMaterialCounts = "daily_material_counts"
	OpDailySizeCounts     = "daily_size_counts"
	OpLatestActivities    = "latest_activities"
)

// Queries holds the SQL text of every report read. Range queries take the
// start and end dates (YYYY-MM-DD) as their two parameters, in that order.
type Queries struct {
	TotalCount          string
	HourlyCounts        string
	MaterialCounts      string
	ColorCounts         string
	SizeCounts          string
	ProductionRecords   string
	DailyMaterialCounts string
	DailySizeCounts     string
	LatestActivities    string
}

// Options are deployment-level connection settings.
type Options struct {
	// Database is the logical database name, fixed per deployment.
	Database       string
	ConnectTimeout time.Duration
}

// Dialect adapts the connector to one SQL engine.
type Dialect interface {
	Name() string
	DriverName() string
	DSN(cfg core.ConnectionConfig, opts Options) (string, error)
	// InitStatements run once on every new session before any query.
	InitStatements() []string
	Queries() Queries
}
