package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the wire format of every date accepted by the API.
	DateLayout = "2006-01-02"

	// DefaultDBPort is used when a request omits the port.
	DefaultDBPort = 3306
)

type (
	Date struct {
		time.Time
	}

	// DateRange is inclusive on both ends.
	DateRange struct {
		Start Date
		End   Date
	}

	// ConnectionConfig is supplied per request. Database is fixed per deployment
	// and filled in by the server, never by the client.
	ConnectionConfig struct {
		Host     string
		Port     int
		User     string
		Password string
		Database string
	}

	// CategoryCount is one row as returned by storage: a partial sum grouped by
	// a database identifier whose display text may vary. A nil Label means the
	// column was NULL.
	CategoryCount struct {
		Label    *string
		Quantity int64
	}

	// AggregatedCategory is one canonical group after normalization. Reports
	// serialize it under the field name of its category.
	AggregatedCategory struct {
		Label    string
		Quantity int64
	}

	HourlyCount struct {
		Hour     int   `json:"hora"`
		Quantity int64 `json:"quantidade"`
	}

	// DailyCategoryCount is a raw per-day row; Day is formatted dd/mm.
	DailyCategoryCount struct {
		Day      string
		Label    *string
		Quantity int64
	}

	DailyAggregatedCategory struct {
		Day      string
		Label    string
		Quantity int64
	}

	// ProductionRecord is one joined tb_prod row. Its tags are the latest
	// activities shape; the full report uses FullReport.
	ProductionRecord struct {
		ID        int64     `json:"id"`
		Timestamp time.Time `json:"timestamp"`
		Color     string    `json:"cor"`
		Material  string    `json:"material"`
		Size      string    `json:"tamanho"`
	}
)

var (
	// ErrValidation marks client-side input problems detected before any
	// storage access.
	ErrValidation = errors.New("validation error")

	ErrMissingDate      = fmt.Errorf("%w: date is required", ErrValidation)
	ErrMissingDateRange = fmt.Errorf("%w: start and end dates are required", ErrValidation)
	ErrInvalidRange     = fmt.Errorf("%w: end date is before start date", ErrValidation)
	ErrMissingHost      = fmt.Errorf("%w: host is required", ErrValidation)
	ErrInvalidPort      = fmt.Errorf("%w: port must be between 1 and 65535", ErrValidation)
	ErrInvalidLimit     = fmt.Errorf("%w: limit must be positive", ErrValidation)
)

// ParseDate parses a YYYY-MM-DD string. Empty input yields ErrMissingDate.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrMissingDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return Date{Time: t}, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// String formats the date the way queries expect it.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// ParseDateRange parses both ends; a missing end is reported as a missing range.
func ParseDateRange(start, end string) (DateRange, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return DateRange{}, ErrMissingDateRange
	}
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	r := DateRange{Start: s, End: e}
	return r, r.Validate()
}

// SingleDay returns the range covering only d.
func SingleDay(d Date) DateRange {
	return DateRange{Start: d, End: d}
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrMissingDateRange
	}
	if r.End.Before(r.Start.Time) {
		return ErrInvalidRange
	}
	return nil
}

// WithDefaults fills the port when the client omitted it.
func (c ConnectionConfig) WithDefaults() ConnectionConfig {
	if c.Port == 0 {
		c.Port = DefaultDBPort
	}
	c.Host = strings.TrimSpace(c.Host)
	return c
}

func (c ConnectionConfig) Validate() error {
	if c.Host == "" {
		return ErrMissingHost
	}
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}
	return nil
}

// Address returns host:port.
func (c ConnectionConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewLabel is a helper for building CategoryCount values.
func NewLabel(s string) *string {
	return &s
}

// LabelOrEmpty dereferences a nullable label.
func LabelOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
