// Package service implements the ban lifecycle: issuing and lifting bans on
// accounts, with audit, metrics and a notification to the affected account.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	accountmodels "peerhelp/internal/account/models"
	"peerhelp/internal/moderation/metrics"
	"peerhelp/internal/moderation/models"
	notificationmodels "peerhelp/internal/notification/models"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/platform/audit"
	"peerhelp/pkg/platform/sentinel"
	"peerhelp/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AccountStore,Notifier

const appealURL = "/appeal"

// AccountStore is the serialized mutation entry point of the account store.
type AccountStore interface {
	Execute(ctx context.Context, accountID id.AccountID, validate func(*accountmodels.Account) error, mutate func(*accountmodels.Account)) (*accountmodels.Account, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, ev notificationmodels.Event) (*notificationmodels.DispatchResult, error)
}

type Service struct {
	store    AccountStore
	notifier Notifier
	logger   *slog.Logger
	auditor  audit.Emitter
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(emitter audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = emitter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(store AccountStore, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		logger:   slog.Default(),
		tracer:   otel.Tracer("peerhelp/moderation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueBan sets the target's ban record, replacing any previous one. A nil
// duration bans permanently. Checks run in order: role, input, target.
func (s *Service) IssueBan(ctx context.Context, actor accountmodels.Actor, target id.AccountID, reason string, duration *time.Duration) (*accountmodels.BanRecord, error) {
	kind := models.BanPermanent
	if duration != nil {
		kind = models.BanTemporary
	}
	ctx, span := s.tracer.Start(ctx, "moderation.IssueBan", trace.WithAttributes(
		attribute.String("account.id", target.String()),
		attribute.String("ban.kind", string(kind)),
	))
	defer span.End()

	if !actor.CanModerate() {
		return nil, s.deny(ctx, span, actor, target, "ban")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "ban reason is required")
	}
	if duration != nil && *duration <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "ban duration must be positive")
	}

	now := requestcontext.Now(ctx)
	ban := accountmodels.BanRecord{Reason: reason, IssuedBy: actor.ID, IssuedAt: now}
	if duration != nil {
		expires := now.Add(*duration)
		ban.ExpiresAt = &expires
	}

	var stale *accountmodels.BanRecord
	_, err := s.store.Execute(ctx, target, nil, func(a *accountmodels.Account) {
		stale = a.ClearStaleBan(now)
		record := ban
		a.Ban = &record
		a.UpdatedAt = now
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ban failed")
		return nil, translate(err, "failed to issue ban")
	}

	if stale != nil {
		s.clearedStale(ctx, actor, target, stale)
	}
	s.logAudit(ctx, audit.EventBanIssued,
		"account_id", target.String(),
		"actor_id", actor.ID.String(),
		"subject", string(kind),
		"reason", reason,
	)
	if s.metrics != nil {
		s.metrics.IncBanIssued(string(kind))
	}

	s.notify(ctx, notificationmodels.Event{
		Recipient: target,
		Body:      banMessage(ban),
		Category:  notificationmodels.CategoryBanIssued,
		URL:       appealURL,
	})
	return &ban, nil
}

// LiftBan removes the ban record whether or not it is still in effect. An
// account without a record is left alone and nobody is notified.
func (s *Service) LiftBan(ctx context.Context, actor accountmodels.Actor, target id.AccountID) (*models.LiftResult, error) {
	ctx, span := s.tracer.Start(ctx, "moderation.LiftBan", trace.WithAttributes(
		attribute.String("account.id", target.String()),
	))
	defer span.End()

	if !actor.CanModerate() {
		return nil, s.deny(ctx, span, actor, target, "unban")
	}

	now := requestcontext.Now(ctx)
	var previous *accountmodels.BanRecord
	_, err := s.store.Execute(ctx, target, nil, func(a *accountmodels.Account) {
		previous = a.Ban
		if previous == nil {
			return
		}
		a.Ban = nil
		a.UpdatedAt = now
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unban failed")
		return nil, translate(err, "failed to lift ban")
	}
	if previous == nil {
		span.SetAttributes(attribute.Bool("ban.present", false))
		return &models.LiftResult{}, nil
	}

	result := &models.LiftResult{Lifted: true, WasInEffect: previous.InEffect(now)}
	subject := "in_effect"
	if !result.WasInEffect {
		subject = "elapsed"
	}
	s.logAudit(ctx, audit.EventBanLifted,
		"account_id", target.String(),
		"actor_id", actor.ID.String(),
		"subject", subject,
		"reason", previous.Reason,
	)
	if s.metrics != nil {
		s.metrics.IncBanLifted()
	}

	s.notify(ctx, notificationmodels.Event{
		Recipient: target,
		Body:      "Your account restriction has been lifted. Thank you for your patience.",
		Category:  notificationmodels.CategoryBanLifted,
	})
	return result, nil
}

// ClearStaleBan drops an elapsed ban record as a side effect of some other
// administrative action on the account. A ban still in effect is kept. It
// returns the cleared record, or nil when nothing was stale.
func (s *Service) ClearStaleBan(ctx context.Context, actor accountmodels.Actor, target id.AccountID) (*accountmodels.BanRecord, error) {
	if !actor.CanModerate() {
		return nil, dErrors.New(dErrors.CodeForbidden, "moderator or admin role required")
	}
	now := requestcontext.Now(ctx)
	var stale *accountmodels.BanRecord
	_, err := s.store.Execute(ctx, target, nil, func(a *accountmodels.Account) {
		if stale = a.ClearStaleBan(now); stale != nil {
			a.UpdatedAt = now
		}
	})
	if err != nil {
		return nil, translate(err, "failed to clear stale ban")
	}
	if stale != nil {
		s.clearedStale(ctx, actor, target, stale)
	}
	return stale, nil
}

func (s *Service) deny(ctx context.Context, span trace.Span, actor accountmodels.Actor, target id.AccountID, action string) error {
	span.SetStatus(codes.Error, "permission denied")
	if s.metrics != nil {
		s.metrics.IncDenied(action)
	}
	s.logAudit(ctx, audit.EventModerationDenied,
		"account_id", target.String(),
		"actor_id", actor.ID.String(),
		"subject", action,
	)
	return dErrors.New(dErrors.CodeForbidden, "moderator or admin role required")
}

func (s *Service) clearedStale(ctx context.Context, actor accountmodels.Actor, target id.AccountID, stale *accountmodels.BanRecord) {
	if s.metrics != nil {
		s.metrics.IncStaleCleared()
	}
	s.logAudit(ctx, audit.EventBanExpiredClear,
		"account_id", target.String(),
		"actor_id", actor.ID.String(),
		"reason", stale.Reason,
	)
}

// notify runs after the mutation committed, so failures are logged only.
func (s *Service) notify(ctx context.Context, ev notificationmodels.Event) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Dispatch(ctx, ev); err != nil {
		if s.metrics != nil {
			s.metrics.IncNotifyFailure()
		}
		s.logger.WarnContext(ctx, "moderation notification failed",
			"account_id", ev.Recipient.String(),
			"category", string(ev.Category),
			"error", err,
		)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attrs ...any) {
	audit.LogAudit(ctx, s.logger, s.auditor, event, attrs...)
}

func banMessage(b accountmodels.BanRecord) string {
	if b.IsPermanent() {
		return fmt.Sprintf("Your account has been permanently banned. Reason: %s", b.Reason)
	}
	return fmt.Sprintf("Your account has been banned until %s. Reason: %s",
		b.ExpiresAt.UTC().Format(time.RFC3339), b.Reason)
}

func translate(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "account not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
