package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"civreg/internal/platform/metrics"
	id "civreg/pkg/domain"
)

// Sink receives a copy of every recorded entry, typically for streaming to an
// external system. Sinks are best-effort: a sink failure never fails the
// recording itself.
type Sink interface {
	Publish(ctx context.Context, entry Entry) error
	Close()
}

// Publisher records activity entries. In sync mode Emit appends directly; with
// an async buffer Emit enqueues and a background goroutine drains, dropping
// events when the buffer is full rather than blocking request handling.
type Publisher struct {
	store   Store
	sink    Sink
	logger  *slog.Logger
	metrics *metrics.Metrics

	inbox chan Entry
	wg    sync.WaitGroup
	once  sync.Once

	// mu orders Emit sends against Close closing the inbox; an Emit holding
	// the read lock can never race the channel close.
	mu     sync.RWMutex
	closed bool
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer switches the publisher to buffered async mode.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.inbox = make(chan Entry, size)
		}
	}
}

// WithSink attaches a streaming sink fed after each successful append.
func WithSink(sink Sink) PublisherOption {
	return func(p *Publisher) {
		p.sink = sink
	}
}

// WithMetrics counts recorded entries.
func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithLogger sets the logger used for background failures.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records one entry, stamping ID and CreatedAt when unset.
func (p *Publisher) Emit(ctx context.Context, entry Entry) error {
	if entry.ID.IsNil() {
		entry.ID = id.NewActivityID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("activity publisher closed, dropping entry", "action", entry.Action)
		return nil
	}

	if p.inbox == nil {
		return p.deliver(ctx, entry)
	}

	select {
	case p.inbox <- entry:
		return nil
	default:
		// Buffer full: drop rather than stall the caller.
		p.logger.Warn("activity buffer full, dropping entry", "action", entry.Action)
		return nil
	}
}

// List exposes the stored trail for handlers.
func (p *Publisher) List(ctx context.Context) ([]Entry, error) {
	return p.store.List(ctx)
}

func (p *Publisher) deliver(ctx context.Context, entry Entry) error {
	if err := p.store.Append(ctx, entry); err != nil {
		return err
	}
	p.metrics.IncrementActivityRecorded()
	if p.sink != nil {
		if err := p.sink.Publish(ctx, entry); err != nil {
			p.logger.Warn("activity sink publish failed", "action", entry.Action, "error", err)
		}
	}
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	ctx := context.Background()
	for entry := range p.inbox {
		if err := p.deliver(ctx, entry); err != nil {
			p.logger.Error("activity append failed", "action", entry.Action, "error", err)
		}
	}
}

// Close drains any buffered entries and shuts down the sink.
func (p *Publisher) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		if p.inbox != nil {
			close(p.inbox)
		}
		p.mu.Unlock()
		p.wg.Wait()
		if p.sink != nil {
			p.sink.Close()
		}
	})
}
