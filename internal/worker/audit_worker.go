package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"prodboard/internal/amqp"
	"prodboard/internal/core"
	"prodboard/internal/log"
	"prodboard/internal/metrics"
)

// DefaultSlowReport is the duration above which a report is logged as slow.
const DefaultSlowReport = 5 * time.Second

// KindStats is the running tally for one report kind.
type KindStats struct {
	Kind     string
	Total    int
	Failures int
	Rows     int64
	MaxMs    int64
}

// AuditWorker records report events consumed from the broker.
type AuditWorker struct {
	logger     *log.Logger
	slowReport time.Duration

	mu    sync.Mutex
	stats map[string]*KindStats
}

func NewAuditWorker(logger *log.Logger, slowReport time.Duration) *AuditWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if slowReport <= 0 {
		slowReport = DefaultSlowReport
	}
	return &AuditWorker{
		logger:     logger.WithComponent(log.ComponentWorker),
		slowReport: slowReport,
		stats:      make(map[string]*KindStats),
	}
}

// HandleReportEvent logs one event and updates counters. Events without an
// outcome are rejected so the consumer can drop them.
func (w *AuditWorker) HandleReportEvent(ctx context.Context, msg *amqp.ReportEventMessage) error {
	e := msg.Event
	if e.Outcome == "" {
		return errors.New("report event without outcome")
	}

	metrics.ReportEventsConsumed.WithLabelValues(e.Kind, e.Outcome).Inc()
	w.record(e)

	fields := log.NewFields().
		WithOperation(log.OpConsume).
		WithReport(e.Outcome, e.Rows, e.DurationMs)
	fields[log.FieldReportKind] = e.Kind
	fields[log.FieldDBAddr] = e.Addr
	if e.Start != "" {
		fields.WithRange(e.Start, e.End)
	}
	if e.Error != "" {
		fields[log.FieldError] = e.Error
	}

	switch {
	case e.Outcome != core.OutcomeSuccess:
		w.logger.WarnContext(ctx, "Report failed", fields.ToSlice()...)
	case time.Duration(e.DurationMs)*time.Millisecond > w.slowReport:
		w.logger.WarnContext(ctx, "Slow report", fields.ToSlice()...)
	default:
		w.logger.InfoContext(ctx, "Report audited", fields.ToSlice()...)
	}
	return nil
}

func (w *AuditWorker) record(e core.ReportEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.stats[e.Kind]
	if !ok {
		s = &KindStats{Kind: e.Kind}
		w.stats[e.Kind] = s
	}
	s.Total++
	if e.Outcome != core.OutcomeSuccess {
		s.Failures++
	}
	s.Rows += int64(e.Rows)
	s.MaxMs = max(s.MaxMs, e.DurationMs)
}

// Stats returns a snapshot sorted by kind.
func (w *AuditWorker) Stats() []KindStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]KindStats, 0, len(w.stats))
	for _, s := range w.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// LogSummary writes one line per report kind seen so far.
func (w *AuditWorker) LogSummary(ctx context.Context) {
	for _, s := range w.Stats() {
		w.logger.InfoContext(ctx, "Report summary",
			log.FieldReportKind, s.Kind,
			"total", s.Total,
			"failures", s.Failures,
			log.FieldRows, s.Rows,
			"max_duration_ms", s.MaxMs)
	}
}

// RunSummaries calls LogSummary every interval until ctx is done.
func (w *AuditWorker) RunSummaries(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.LogSummary(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			w.LogSummary(ctx)
		}
	}
}
