// Package publisher delivers audit events to a store, either inline or through
// a bounded background buffer.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "peerhelp/pkg/domain"
	audit "peerhelp/pkg/platform/audit"
)

// ErrBufferFull is returned by Emit in async mode when the buffer cannot
// accept another event.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher captures structured audit events. In async mode Emit enqueues and
// a single worker appends to the store; Close drains what is queued.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	bufferSize int
	queue      chan audit.Event
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous delivery with a buffer of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.queue = make(chan audit.Event, p.bufferSize)
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit records an event, stamping it if the caller left Timestamp empty.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if p.queue == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// List reads events back when the store supports it.
func (p *Publisher) List(ctx context.Context, accountID id.AccountID) ([]audit.Event, error) {
	lister, ok := p.store.(audit.Lister)
	if !ok {
		return nil, errors.New("audit store does not support listing")
	}
	return lister.ListByAccount(ctx, accountID)
}

// Close stops accepting events and waits for queued ones to be written.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		if p.queue != nil {
			close(p.queue)
		}
	})
	p.wg.Wait()
	return nil
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for event := range p.queue {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"action", event.Action,
				"account_id", event.AccountID.String(),
				"error", err,
			)
		}
	}
}
