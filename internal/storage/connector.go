package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"prodboard/internal/core"
	"prodboard/internal/log"
	"prodboard/internal/metrics"
)

// Connector opens one session per request from per-request parameters.
type Connector interface {
	Connect(ctx context.Context, cfg core.ConnectionConfig) (Session, error)
}

// Session is a single storage connection. Reads are sequential and Close must
// be called exactly once; use WithSession to get that for free.
type Session interface {
	TotalCount(ctx context.Context, r core.DateRange) (int64, error)
	HourlyCounts(ctx context.Context, r core.DateRange) ([]core.HourlyCount, error)
	MaterialCounts(ctx context.Context, r core.DateRange) ([]core.CategoryCount, error)
	ColorCounts(ctx context.Context, r core.DateRange) ([]core.CategoryCount, error)
	SizeCounts(ctx context.Context, r core.DateRange) ([]core.CategoryCount, error)
	ProductionRecords(ctx context.Context, r core.DateRange) ([]core.ProductionRecord, error)
	DailyMaterialCounts(ctx context.Context, r core.DateRange) ([]core.DailyCategoryCount, error)
	DailySizeCounts(ctx context.Context, r core.DateRange) ([]core.DailyCategoryCount, error)
	LatestActivities(ctx context.Context, limit int) ([]core.ProductionRecord, error)
	Close() error
}

// WithSession acquires a session, runs fn and releases the session on every
// exit path, including panics. A failed Close is logged and does not replace
// the result of fn.
func WithSession(ctx context.Context, c Connector, cfg core.ConnectionConfig, fn func(Session) error) error {
	s, err := c.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			log.FromContext(ctx).WithComponent(log.ComponentStorage).WarnContext(ctx, "Failed to close database session",
				log.FieldDBAddr, cfg.Address(),
				log.FieldError, cerr.Error())
		}
	}()
	return fn(s)
}

// SQLConnector opens a dedicated database/sql connection for each request.
type SQLConnector struct {
	dialect Dialect
	opts    Options
}

func NewSQLConnector(dialect Dialect, opts Options) *SQLConnector {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	return &SQLConnector{dialect: dialect, opts: opts}
}

// Dialect returns the configured dialect.
func (c *SQLConnector) Dialect() Dialect {
	return c.dialect
}

func (c *SQLConnector) Connect(ctx context.Context, cfg core.ConnectionConfig) (Session, error) {
	s, err := c.connect(ctx, cfg)
	metrics.RecordConnect(c.dialect.Name(), err)
	if err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentStorage).ErrorContext(ctx, "Database connection failed",
			log.FieldDialect, c.dialect.Name(),
			log.FieldDBAddr, cfg.Address(),
			log.FieldError, err.Error())
		return nil, &ConnectionError{Addr: cfg.Address(), Err: err}
	}
	metrics.DBOpenSessions.Inc()
	return s, nil
}

func (c *SQLConnector) connect(ctx context.Context, cfg core.ConnectionConfig) (*sqlSession, error) {
	dsn, err := c.dialect.DSN(cfg, c.opts)
	if err != nil {
		return nil, fmt.Errorf("build dsn: %w", err)
	}

	db, err := sql.Open(c.dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	cctx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()

	conn, err := db.Conn(cctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if err := conn.PingContext(cctx); err != nil {
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, stmt := range c.dialect.InitStatements() {
		if _, err := conn.ExecContext(cctx, stmt); err != nil {
			conn.Close()
			db.Close()
			return nil, fmt.Errorf("init session %q: %w", stmt, err)
		}
	}

	return &sqlSession{db: db, conn: conn, queries: c.dialect.Queries()}, nil
}
