package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"prodboard/internal/core"
	"prodboard/internal/metrics"
)

type sqlSession struct {
	db      *sql.DB
	conn    *sql.Conn
	queries Queries
	closed  bool
}

func (s *sqlSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	metrics.DBOpenSessions.Dec()

	var errs []error
	if err := s.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close connection: %w", err))
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

// query runs q and hands every row to scan, timing the whole read.
func (s *sqlSession) query(ctx context.Context, op, q string, scan func(*sql.Rows) error, args ...any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordQuery(op, time.Since(start), err)
		if err != nil {
			err = &QueryError{Op: op, Err: err}
		}
	}()

	rows, err := s.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
	}
	return rows.Err()
}

func rangeArgs(r core.DateRange) []any {
	return []any{r.Start.String(), r.End.String()}
}

func (s *sqlSession) TotalCount(ctx context.Context, r core.DateRange) (int64, error) {
	var total int64
	err := s.query(ctx, OpTotalCount, s.queries.TotalCount, func(rows *sql.Rows) error {
		return rows.Scan(&total)
	}, rangeArgs(r)...)
	return total, err
}

func (s *sqlSession) HourlyCounts(ctx context.Context, r core.DateRange) ([]core.HourlyCount, error) {
	out := []core.HourlyCount{}
	err := s.query(ctx, OpHourlyCounts, s.queries.HourlyCounts, func(rows *sql.Rows) error {
		var h core.HourlyCount
		if err := rows.Scan(&h.Hour, &h.Quantity); err != nil {
			return err
		}
		out = append(out, h)
		return nil
	}, rangeArgs(r)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *sqlSession) categoryCounts(ctx context.Context, op, q string, r core.DateRange) ([]core.CategoryCount, error) {
	out := []core.CategoryCount{}
	err := s.query(ctx, op, q, func(rows *sql.Rows) error {
		var label sql.NullString
		var c core.CategoryCount
		if err := rows.Scan(&label, &c.Quantity); err != nil {
			return err
		}
		c.Label = nullableLabel(label)
		out = append(out, c)
		return nil
	}, rangeArgs(r)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *sqlSession) MaterialCounts(ctx context.Context, r core.DateRange) ([]core.CategoryCount, error) {
	return s.categoryCounts(ctx, OpMaterialCounts, s.queries.MaterialCounts, r)
}

func (s *sqlSession) ColorCounts(ctx context.Context, r core.DateRange) ([]core.CategoryCount, error) {
	return s.categoryCounts(ctx, OpColorCounts, s.queries.ColorCounts, r)
}

func (s *sqlSession) SizeCounts(ctx context.Context, r core.DateRange) ([]core.CategoryCount, error) {
	return s.categoryCounts(ctx, OpSizeCounts, s.queries.SizeCounts, r)
}

func (s *sqlSession) dailyCounts(ctx context.Context, op, q string, r core.DateRange) ([]core.DailyCategoryCount, error) {
	out := []core.DailyCategoryCount{}
	err := s.query(ctx, op, q, func(rows *sql.Rows) error {
		var day dbTime
		var label sql.NullString
		var c core.DailyCategoryCount
		if err := rows.Scan(&day, &label, &c.Quantity); err != nil {
			return err
		}
		c.Day = day.Format(DayLabelLayout)
		c.Label = nullableLabel(label)
		out = append(out, c)
		return nil
	}, rangeArgs(r)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *sqlSession) DailyMaterialCounts(ctx context.Context, r core.DateRange) ([]core.DailyCategoryCount, error) {
	return s.dailyCounts(ctx, OpDailyMaterialCounts, s.queries.DailyMaterialCounts, r)
}

func (s *sqlSession) DailySizeCounts(ctx context.Context, r core.DateRange) ([]core.DailyCategoryCount, error) {
	return s.dailyCounts(ctx, OpDailySizeCounts, s.queries.DailySizeCounts, r)
}

func (s *sqlSession) records(ctx context.Context, op, q string, args ...any) ([]core.ProductionRecord, error) {
	out := []core.ProductionRecord{}
	err := s.query(ctx, op, q, func(rows *sql.Rows) error {
		var rec core.ProductionRecord
		var ts dbTime
		var color, material, size sql.NullString
		if err := rows.Scan(&rec.ID, &ts, &color, &material, &size); err != nil {
			return err
		}
		rec.Timestamp = ts.Time
		rec.Color = color.String
		rec.Material = material.String
		rec.Size = size.String
		out = append(out, rec)
		return nil
	}, args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *sqlSession) ProductionRecords(ctx context.Context, r core.DateRange) ([]core.ProductionRecord, error) {
	return s.records(ctx, OpProductionRecords, s.queries.ProductionRecords, rangeArgs(r)...)
}

func (s *sqlSession) LatestActivities(ctx context.Context, limit int) ([]core.ProductionRecord, error) {
	return s.records(ctx, OpLatestActivities, s.queries.LatestActivities, limit)
}
