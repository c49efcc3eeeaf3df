package report

import (
	"context"
	"errors"
	"sync"

	"prodboard/internal/core"
	"prodboard/internal/log"
	"prodboard/internal/metrics"
)

// DefaultEventQueueSize bounds the events waiting for the broker.
const DefaultEventQueueSize = 256

var (
	ErrEventQueueFull  = errors.New("report event queue is full")
	ErrPublisherClosed = errors.New("report event publisher is closed")
)

// AsyncPublisher hands events to another publisher from a single background
// goroutine, so a report never waits on the broker. Events are dropped when
// the queue is full.
type AsyncPublisher struct {
	next   EventPublisher
	logger *log.Logger
	queue  chan core.ReportEvent
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewAsyncPublisher(next EventPublisher, size int, logger *log.Logger) *AsyncPublisher {
	if size <= 0 {
		size = DefaultEventQueueSize
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	p := &AsyncPublisher{
		next:   next,
		logger: logger.WithComponent(log.ComponentAMQP),
		queue:  make(chan core.ReportEvent, size),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// PublishReportEvent enqueues event without blocking.
func (p *AsyncPublisher) PublishReportEvent(_ context.Context, event core.ReportEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	select {
	case p.queue <- event:
		return nil
	default:
		metrics.ReportEventsDropped.Inc()
		return ErrEventQueueFull
	}
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for event := range p.queue {
		err := p.next.PublishReportEvent(context.Background(), event)
		metrics.RecordEventPublish(err)
		if err != nil {
			p.logger.Warn("Failed to publish report event",
				log.FieldOperation, log.OpPublish,
				log.FieldReportKind, event.Kind,
				log.FieldError, err.Error())
		}
	}
}

// Close stops accepting events and waits until the queued ones were handed
// over or ctx ends.
func (p *AsyncPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
