// Package dispatcher fans a notification event out to the in-app feed, browser
// push and the recipient's trusted direct-message channel.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"peerhelp/internal/notification/channel/push"
	"peerhelp/internal/notification/metrics"
	"peerhelp/internal/notification/models"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/platform/audit"
	"peerhelp/pkg/platform/sentinel"
	"peerhelp/pkg/requestcontext"
)

//go:generate mockgen -source=dispatcher.go -destination=mocks/mocks.go -package=mocks FeedWriter,RecipientLookup,SubscriptionStore,PushSender,DirectSender

const (
	defaultDirectTimeout   = 5 * time.Second
	defaultPushConcurrency = 4
)

// ErrDirectUnavailable is returned by DeliverDirect when no direct channel is configured.
var ErrDirectUnavailable = errors.New("direct message channel not configured")

// FeedWriter persists the in-app record.
type FeedWriter interface {
	Insert(ctx context.Context, n *models.Notification) error
}

// RecipientLookup resolves routing data for an account.
type RecipientLookup interface {
	Recipient(ctx context.Context, accountID id.AccountID) (*models.Recipient, error)
}

type SubscriptionStore interface {
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]models.Subscription, error)
	DeleteSubscription(ctx context.Context, accountID id.AccountID, endpoint string) error
}

type PushSender interface {
	Send(ctx context.Context, sub models.Subscription, p push.Payload) error
}

type DirectSender interface {
	Send(ctx context.Context, chatID, text string) error
}

// Dispatcher delivers events. The in-app write is the channel of record and
// must succeed; push and direct delivery are best-effort.
type Dispatcher struct {
	feed       FeedWriter
	recipients RecipientLookup

	subs            SubscriptionStore
	push            PushSender
	pushConcurrency int

	direct        DirectSender
	directTimeout time.Duration
	inflight      sync.WaitGroup

	logger  *slog.Logger
	auditor audit.Emitter
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Dispatcher)

// WithPush enables browser push through sender for subscriptions in subs.
func WithPush(subs SubscriptionStore, sender PushSender) Option {
	return func(d *Dispatcher) {
		d.subs = subs
		d.push = sender
	}
}

// WithPushConcurrency bounds concurrent sends across one recipient's subscriptions.
func WithPushConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.pushConcurrency = n
		}
	}
}

// WithDirect enables the direct-message channel. Each send is bounded by timeout.
func WithDirect(sender DirectSender, timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.direct = sender
		if timeout > 0 {
			d.directTimeout = timeout
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithAuditPublisher(emitter audit.Emitter) Option {
	return func(d *Dispatcher) {
		d.auditor = emitter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = t
	}
}

func New(feed FeedWriter, recipients RecipientLookup, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		feed:            feed,
		recipients:      recipients,
		pushConcurrency: defaultPushConcurrency,
		directTimeout:   defaultDirectTimeout,
		logger:          slog.Default(),
		tracer:          otel.Tracer("peerhelp/notification"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch stores the in-app record, then fans out to push and direct
// channels. Only validation, recipient lookup and the in-app write can fail
// the call. Identical events are not deduplicated.
func (d *Dispatcher) Dispatch(ctx context.Context, ev models.Event) (*models.DispatchResult, error) {
	ctx, span := d.tracer.Start(ctx, "notification.Dispatch", trace.WithAttributes(
		attribute.String("notification.category", string(ev.Category)),
	))
	defer span.End()
	start := time.Now()
	if d.metrics != nil {
		defer d.metrics.ObserveDispatch(start)
	}

	body := strings.TrimSpace(ev.Body)
	if body == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "notification body is required")
	}
	if !ev.Category.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown notification category")
	}

	recipient, err := d.recipients.Recipient(ctx, ev.Recipient)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recipient lookup failed")
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "recipient not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve recipient")
	}

	n := &models.Notification{
		ID:          id.NewNotificationID(),
		RecipientID: recipient.ID,
		SenderID:    ev.Sender,
		Body:        body,
		Category:    ev.Category,
		URL:         ev.URL,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := d.feed.Insert(ctx, n); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "in-app write failed")
		d.record(models.ChannelInApp, models.OutcomeFailed)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store notification")
	}
	d.record(models.ChannelInApp, models.OutcomeDelivered)

	payload := push.Payload{
		Title:     n.Category.Title(),
		Body:      n.Body,
		URL:       n.URL,
		CreatedAt: n.CreatedAt,
	}
	direct := d.queueDirect(ctx, recipient, payload)
	pushed := d.pushAll(ctx, recipient.ID, payload)

	result := &models.DispatchResult{
		Notification: n,
		Channels: []models.ChannelResult{
			{Channel: models.ChannelInApp, Outcome: models.OutcomeDelivered},
			pushed,
			direct,
		},
	}
	span.SetAttributes(
		attribute.String("notification.push", string(pushed.Outcome)),
		attribute.String("notification.direct", string(direct.Outcome)),
	)
	return result, nil
}

func (d *Dispatcher) pushAll(ctx context.Context, accountID id.AccountID, payload push.Payload) models.ChannelResult {
	res := models.ChannelResult{Channel: models.ChannelPush, Outcome: models.OutcomeSkipped}
	if d.push == nil || d.subs == nil {
		return res
	}

	subs, err := d.subs.ListByAccount(ctx, accountID)
	if err != nil {
		d.logger.WarnContext(ctx, "failed to load push subscriptions",
			"account_id", accountID.String(),
			"error", err,
		)
		res.Outcome, res.Err = models.OutcomeFailed, err
		d.record(models.ChannelPush, res.Outcome)
		return res
	}
	if len(subs) == 0 {
		return res
	}

	var delivered atomic.Int32
	errs := make([]error, len(subs))
	var g errgroup.Group
	g.SetLimit(d.pushConcurrency)
	for i, sub := range subs {
		g.Go(func() error {
			err := d.push.Send(ctx, sub, payload)
			if err == nil {
				delivered.Add(1)
				return nil
			}
			errs[i] = err
			if errors.Is(err, push.ErrSubscriptionGone) {
				d.removeSubscription(ctx, sub)
				return nil
			}
			d.logger.WarnContext(ctx, "push delivery failed",
				"account_id", accountID.String(),
				"endpoint_host", endpointHost(sub.Endpoint),
				"error", err,
			)
			return nil
		})
	}
	_ = g.Wait()

	if delivered.Load() > 0 {
		res.Outcome = models.OutcomeDelivered
	} else {
		res.Outcome, res.Err = models.OutcomeFailed, errors.Join(errs...)
	}
	d.record(models.ChannelPush, res.Outcome)
	return res
}

func (d *Dispatcher) removeSubscription(ctx context.Context, sub models.Subscription) {
	if err := d.subs.DeleteSubscription(ctx, sub.AccountID, sub.Endpoint); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		d.logger.WarnContext(ctx, "failed to remove gone push subscription",
			"account_id", sub.AccountID.String(),
			"error", err,
		)
		return
	}
	if d.metrics != nil {
		d.metrics.IncSubscriptionRemoved()
	}
	audit.LogAudit(ctx, d.logger, d.auditor, audit.EventPushSubscriptionRemoved,
		"account_id", sub.AccountID.String(),
		"subject", endpointHost(sub.Endpoint),
		"reason", "push service reported endpoint gone",
	)
}

// queueDirect starts a fire-and-forget send. The send outlives the request
// but is bounded by directTimeout and tracked for Drain.
func (d *Dispatcher) queueDirect(ctx context.Context, r *models.Recipient, payload push.Payload) models.ChannelResult {
	res := models.ChannelResult{Channel: models.ChannelDirect, Outcome: models.OutcomeSkipped}
	if d.direct == nil || r.TrustedChannelID == "" {
		return res
	}

	text := FormatDirect(payload)
	detached := context.WithoutCancel(ctx)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		sendCtx, cancel := context.WithTimeout(detached, d.directTimeout)
		defer cancel()
		if err := d.direct.Send(sendCtx, r.TrustedChannelID, text); err != nil {
			d.logger.WarnContext(detached, "direct message delivery failed",
				"account_id", r.ID.String(),
				"error", err,
			)
			d.record(models.ChannelDirect, models.OutcomeFailed)
			return
		}
		d.record(models.ChannelDirect, models.OutcomeDelivered)
	}()

	res.Outcome = models.OutcomeQueued
	return res
}

// DeliverDirect sends text synchronously, bounded by the direct timeout. It
// bypasses the feed and is used for one-off secrets such as confirmation codes.
func (d *Dispatcher) DeliverDirect(ctx context.Context, chatID, text string) error {
	if d.direct == nil {
		return ErrDirectUnavailable
	}
	ctx, span := d.tracer.Start(ctx, "notification.DeliverDirect")
	defer span.End()

	sendCtx, cancel := context.WithTimeout(ctx, d.directTimeout)
	defer cancel()
	if err := d.direct.Send(sendCtx, chatID, text); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "direct send failed")
		d.record(models.ChannelDirect, models.OutcomeFailed)
		return fmt.Errorf("deliver direct message: %w", err)
	}
	d.record(models.ChannelDirect, models.OutcomeDelivered)
	return nil
}

// Drain waits for queued direct sends or until ctx is done.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FormatDirect renders the direct-message text. It echoes the in-app
// timestamp so every channel reports the same event time.
func FormatDirect(p push.Payload) string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString("\n\n")
	b.WriteString(p.Body)
	b.WriteString("\n\n")
	b.WriteString(p.CreatedAt.UTC().Format(time.RFC3339))
	return b.String()
}

func (d *Dispatcher) record(ch models.Channel, outcome models.Outcome) {
	if d.metrics != nil {
		d.metrics.IncDelivery(string(ch), string(outcome))
	}
}

func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}
