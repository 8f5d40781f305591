package service

import (
	"context"
	"errors"
	"log/slog"

	accountmodels "peerhelp/internal/account/models"
	"peerhelp/internal/notification/metrics"
	"peerhelp/internal/notification/models"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/platform/audit"
	"peerhelp/pkg/platform/sentinel"
	"peerhelp/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Dispatcher,StaleBanClearer

// Store is the feed and subscription persistence the service needs.
type Store interface {
	List(ctx context.Context, q models.ListQuery) (*models.Page, error)
	SetRead(ctx context.Context, recipientID id.AccountID, notificationID id.NotificationID, read bool) (*models.Notification, error)
	MarkAllRead(ctx context.Context, recipientID id.AccountID) (int, error)
	DeleteByRecipient(ctx context.Context, recipientID id.AccountID) error
	Upsert(ctx context.Context, sub models.Subscription) error
	DeleteSubscription(ctx context.Context, accountID id.AccountID, endpoint string) error
	DeleteSubscriptionsByAccount(ctx context.Context, accountID id.AccountID) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, ev models.Event) (*models.DispatchResult, error)
}

// StaleBanClearer removes an elapsed ban record when an admin acts on an account.
type StaleBanClearer interface {
	ClearStaleBan(ctx context.Context, actor accountmodels.Actor, target id.AccountID) (*accountmodels.BanRecord, error)
}

// Service exposes a recipient's feed and push subscriptions, and lets admins
// message an account.
type Service struct {
	store      Store
	dispatcher Dispatcher
	logger     *slog.Logger
	auditor    audit.Emitter
	metrics    *metrics.Metrics
	bans       StaleBanClearer
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

// WithStaleBanClearer lets admin messages clean up elapsed ban records.
func WithStaleBanClearer(c StaleBanClearer) Option {
	return func(s *Service) {
		s.bans = c
	}
}

func New(store Store, dispatcher Dispatcher, opts ...Option) *Service {
	s := &Service{store: store, dispatcher: dispatcher, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns a page of the recipient's feed, newest first.
func (s *Service) List(ctx context.Context, q models.ListQuery) (*models.Page, error) {
	if q.Limit <= 0 {
		q.Limit = models.DefaultPageSize
	}
	q.Limit = min(q.Limit, models.MaxPageSize)
	q.Offset = max(q.Offset, 0)

	page, err := s.store.List(ctx, q)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	s.count("list")
	return page, nil
}

// MarkRead sets the read flag. Notifications addressed to someone else
// look the same as missing ones.
func (s *Service) MarkRead(ctx context.Context, recipientID id.AccountID, notificationID id.NotificationID, read bool) (*models.Notification, error) {
	n, err := s.store.SetRead(ctx, recipientID, notificationID, read)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "notification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update notification")
	}
	s.count("mark_read")
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID id.AccountID) (int, error) {
	changed, err := s.store.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	s.count("mark_all_read")
	return changed, nil
}

// Subscribe registers a browser push endpoint for the account.
func (s *Service) Subscribe(ctx context.Context, accountID id.AccountID, req models.SubscribeRequest) (*models.Subscription, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sub := models.Subscription{
		ID:        id.NewSubscriptionID(),
		AccountID: accountID,
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Upsert(ctx, sub); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save push subscription")
	}
	return &sub, nil
}

func (s *Service) Unsubscribe(ctx context.Context, accountID id.AccountID, endpoint string) error {
	if err := s.store.DeleteSubscription(ctx, accountID, endpoint); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "push subscription not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove push subscription")
	}
	return nil
}

// SendAdminMessage dispatches an admin-authored message with the admin as sender.
func (s *Service) SendAdminMessage(ctx context.Context, actor accountmodels.Actor, recipientID id.AccountID, req models.AdminMessageRequest) (*models.DispatchResult, error) {
	if !actor.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "admin role required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sender := actor.ID
	result, err := s.dispatcher.Dispatch(ctx, models.Event{
		Recipient: recipientID,
		Sender:    &sender,
		Body:      req.Body,
		Category:  models.CategoryAdminMessage,
		URL:       req.URL,
	})
	if err != nil {
		return nil, err
	}
	audit.LogAudit(ctx, s.logger, s.auditor, audit.EventAdminMessageSent,
		"account_id", recipientID.String(),
		"actor_id", actor.ID.String(),
		"subject", result.Notification.ID.String(),
	)
	if s.bans != nil {
		if _, err := s.bans.ClearStaleBan(ctx, actor, recipientID); err != nil {
			s.logger.WarnContext(ctx, "stale ban cleanup after admin message failed",
				"account_id", recipientID.String(),
				"error", err,
			)
		}
	}
	return result, nil
}

// PurgeAccount removes the account's feed and push subscriptions.
func (s *Service) PurgeAccount(ctx context.Context, accountID id.AccountID) error {
	if err := s.store.DeleteByRecipient(ctx, accountID); err != nil {
		return err
	}
	return s.store.DeleteSubscriptionsByAccount(ctx, accountID)
}

func (s *Service) count(op string) {
	if s.metrics != nil {
		s.metrics.IncFeedOperation(op)
	}
}
