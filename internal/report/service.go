// Package report builds the dashboard reports. Every call validates its input,
// opens one storage session for the request, runs its reads sequentially and
// passes categorical rows through normalization, aggregation and display
// formatting before returning.
package report

import (
	"context"
	"errors"
	"time"

	"prodboard/internal/aggregate"
	"prodboard/internal/core"
	"prodboard/internal/log"
	"prodboard/internal/metrics"
	"prodboard/internal/normalize"
	"prodboard/internal/storage"
)

const (
	DefaultLatestLimit = 10
	DefaultMaxLatest   = 100
)

// EventPublisher receives an audit event after every report.
type EventPublisher interface {
	PublishReportEvent(ctx context.Context, event core.ReportEvent) error
}

type Options struct {
	// Database is the logical database name used for every request.
	Database string
	// DefaultPort replaces a port the client left out.
	DefaultPort int
	// QueryTimeout bounds a whole report, connection included. Zero disables it.
	QueryTimeout time.Duration
	MaxLatest    int
	Publisher    EventPublisher
	Logger       *log.Logger
}

type Service struct {
	connector  storage.Connector
	normalizer *normalize.Normalizer
	formatter  aggregate.Formatter
	opts       Options
	logger     *log.Logger
}

func NewService(connector storage.Connector, normalizer *normalize.Normalizer, formatter aggregate.Formatter, opts Options) *Service {
	if normalizer == nil {
		normalizer = normalize.NewDefault()
	}
	if opts.MaxLatest <= 0 {
		opts.MaxLatest = DefaultMaxLatest
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Service{
		connector:  connector,
		normalizer: normalizer,
		formatter:  formatter,
		opts:       opts,
		logger:     logger.WithComponent(log.ComponentReport),
	}
}

// TestConnection opens and closes a session without reading anything.
func (s *Service) TestConnection(ctx context.Context, cfg core.ConnectionConfig) error {
	return s.run(ctx, core.ReportTestConnection, cfg, nil, func(context.Context, storage.Session) (int, error) {
		return 0, nil
	})
}

// Dashboard reports a single day: total pieces, the hourly series and the
// material, color and size breakdowns.
func (s *Service) Dashboard(ctx context.Context, cfg core.ConnectionConfig, date core.Date) (*core.DashboardReport, error) {
	if err := date.Validate(); err != nil {
		s.reject(ctx, core.ReportDashboard, cfg, err)
		return nil, err
	}
	r := core.SingleDay(date)

	var report *core.DashboardReport
	err := s.run(ctx, core.ReportDashboard, cfg, &r, func(ctx context.Context, sess storage.Session) (int, error) {
		total, err := sess.TotalCount(ctx, r)
		if err != nil {
			return 0, err
		}
		hourly, err := sess.HourlyCounts(ctx, r)
		if err != nil {
			return 0, err
		}
		materials, err := sess.MaterialCounts(ctx, r)
		if err != nil {
			return 0, err
		}
		colors, err := sess.ColorCounts(ctx, r)
		if err != nil {
			return 0, err
		}
		sizes, err := sess.SizeCounts(ctx, r)
		if err != nil {
			return 0, err
		}

		report = &core.DashboardReport{
			TotalPieces: total,
			Hourly:      hourly,
			Materials:   s.categories(core.CategoryMaterial, materials),
			Colors:      s.categories(core.CategoryColor, colors),
			Sizes:       s.categories(core.CategorySize, sizes),
		}
		return len(hourly) + len(report.Materials) + len(report.Colors) + len(report.Sizes), nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// FullReport lists every production record in the range, newest first.
func (s *Service) FullReport(ctx context.Context, cfg core.ConnectionConfig, r core.DateRange) ([]core.ProductionRecord, error) {
	if err := r.Validate(); err != nil {
		s.reject(ctx, core.ReportFull, cfg, err)
		return nil, err
	}

	var records []core.ProductionRecord
	err := s.run(ctx, core.ReportFull, cfg, &r, func(ctx context.Context, sess storage.Session) (int, error) {
		var err error
		records, err = sess.ProductionRecords(ctx, r)
		return len(records), err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FilteredReport summarizes a range per day by material and size.
func (s *Service) FilteredReport(ctx context.Context, cfg core.ConnectionConfig, r core.DateRange) (*core.FilteredReport, error) {
	if err := r.Validate(); err != nil {
		s.reject(ctx, core.ReportFiltered, cfg, err)
		return nil, err
	}

	var report *core.FilteredReport
	err := s.run(ctx, core.ReportFiltered, cfg, &r, func(ctx context.Context, sess storage.Session) (int, error) {
		total, err := sess.TotalCount(ctx, r)
		if err != nil {
			return 0, err
		}
		materials, err := sess.DailyMaterialCounts(ctx, r)
		if err != nil {
			return 0, err
		}
		sizes, err := sess.DailySizeCounts(ctx, r)
		if err != nil {
			return 0, err
		}

		report = &core.FilteredReport{
			TotalPeriod: total,
			ByMaterial:  s.daily(core.CategoryMaterial, materials),
			BySize:      s.daily(core.CategorySize, sizes),
		}
		return len(report.ByMaterial) + len(report.BySize), nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// LatestActivities returns the most recent records. A zero limit means
// DefaultLatestLimit and limits above the configured maximum are capped.
func (s *Service) LatestActivities(ctx context.Context, cfg core.ConnectionConfig, limit int) ([]core.ProductionRecord, error) {
	limit, err := s.latestLimit(limit)
	if err != nil {
		s.reject(ctx, core.ReportLatest, cfg, err)
		return nil, err
	}

	var records []core.ProductionRecord
	err = s.run(ctx, core.ReportLatest, cfg, nil, func(ctx context.Context, sess storage.Session) (int, error) {
		var err error
		records, err = sess.LatestActivities(ctx, limit)
		if err != nil {
			return 0, err
		}
		for i := range records {
			records[i].Material = s.formatter.Label(core.CategoryMaterial, records[i].Material)
			records[i].Color = s.formatter.Label(core.CategoryColor, records[i].Color)
			records[i].Size = s.formatter.Label(core.CategorySize, records[i].Size)
		}
		return len(records), nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) latestLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, core.ErrInvalidLimit
	case limit == 0:
		limit = DefaultLatestLimit
	}
	return min(limit, s.opts.MaxLatest), nil
}

func (s *Service) categories(kind core.CategoryKind, rows []core.CategoryCount) []core.AggregatedCategory {
	out := aggregate.Aggregate(rows, s.normalizer)
	metrics.RecordCollapsed(string(kind), len(rows), len(out))
	return s.formatter.Format(kind, out)
}

func (s *Service) daily(kind core.CategoryKind, rows []core.DailyCategoryCount) []core.DailyAggregatedCategory {
	out := aggregate.AggregateDaily(rows, s.normalizer)
	metrics.RecordCollapsed(string(kind), len(rows), len(out))
	return s.formatter.FormatDaily(kind, out)
}

// prepare applies the default port and the deployment database name.
func (s *Service) prepare(cfg core.ConnectionConfig) core.ConnectionConfig {
	if cfg.Port == 0 && s.opts.DefaultPort > 0 {
		cfg.Port = s.opts.DefaultPort
	}
	cfg = cfg.WithDefaults()
	cfg.Database = s.opts.Database
	return cfg
}

// run validates the connection parameters, then holds one session for fn.
// Nothing fn produced survives a failure.
func (s *Service) run(ctx context.Context, kind string, cfg core.ConnectionConfig, r *core.DateRange, fn func(context.Context, storage.Session) (int, error)) error {
	start := time.Now()
	cfg = s.prepare(cfg)
	if err := cfg.Validate(); err != nil {
		s.finish(ctx, kind, cfg, r, 0, start, err)
		return err
	}

	if s.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.QueryTimeout)
		defer cancel()
	}

	var rows int
	err := storage.WithSession(ctx, s.connector, cfg, func(sess storage.Session) error {
		var err error
		rows, err = fn(ctx, sess)
		return err
	})
	if err != nil {
		rows = 0
	}
	s.finish(ctx, kind, cfg, r, rows, start, err)
	return err
}

func (s *Service) reject(ctx context.Context, kind string, cfg core.ConnectionConfig, err error) {
	s.finish(ctx, kind, s.prepare(cfg), nil, 0, time.Now(), err)
}

func (s *Service) finish(ctx context.Context, kind string, cfg core.ConnectionConfig, r *core.DateRange, rows int, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := Outcome(err)
	metrics.RecordReport(kind, err)

	fields := log.NewFields().
		WithOperation(kind).
		WithReport(outcome, rows, elapsed.Milliseconds()).
		WithError(err)
	fields[log.FieldDBAddr] = cfg.Address()
	if r != nil {
		fields.WithRange(r.Start.String(), r.End.String())
	}

	logger := log.FromContextOr(ctx, s.logger).WithComponent(log.ComponentReport)
	switch outcome {
	case core.OutcomeSuccess:
		logger.InfoContext(ctx, "Report generated", fields.ToSlice()...)
	case core.OutcomeValidationError:
		logger.WarnContext(ctx, "Report rejected", fields.ToSlice()...)
	default:
		logger.ErrorContext(ctx, "Report failed", fields.ToSlice()...)
	}

	if s.opts.Publisher == nil {
		return
	}
	event := core.ReportEvent{
		Kind:       kind,
		Addr:       cfg.Address(),
		Rows:       rows,
		DurationMs: elapsed.Milliseconds(),
		Outcome:    outcome,
		Timestamp:  time.Now().UTC(),
	}
	if r != nil {
		event.Start = r.Start.String()
		event.End = r.End.String()
	}
	if err != nil {
		event.Error = err.Error()
	}
	if perr := s.opts.Publisher.PublishReportEvent(context.WithoutCancel(ctx), event); perr != nil {
		logger.WarnContext(ctx, "Failed to publish report event",
			log.FieldOperation, kind,
			log.FieldError, perr.Error())
	}
}

// Outcome classifies a report error for events, logs and metrics.
func Outcome(err error) string {
	var connErr *storage.ConnectionError
	var queryErr *storage.QueryError
	switch {
	case err == nil:
		return core.OutcomeSuccess
	case errors.Is(err, core.ErrValidation):
		return core.OutcomeValidationError
	case errors.As(err, &connErr):
		return core.OutcomeConnectionError
	case errors.As(err, &queryErr):
		return core.OutcomeQueryError
	default:
		return core.OutcomeError
	}
}
