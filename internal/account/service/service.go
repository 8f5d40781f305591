package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"peerhelp/internal/account/metrics"
	"peerhelp/internal/account/models"
	"peerhelp/internal/scoring"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/platform/audit"
	"peerhelp/pkg/platform/sentinel"
	"peerhelp/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,DataPurger

// Store persists accounts. Execute must serialize calls for the same account.
type Store interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	Execute(ctx context.Context, accountID id.AccountID, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error)
	Delete(ctx context.Context, accountID id.AccountID) error
}

// SignalCollector gathers the registration signal bundle.
type SignalCollector interface {
	Collect(ctx context.Context, ip, userAgent string) *scoring.Signals
}

// DataPurger removes data other modules own for an account being deleted.
type DataPurger interface {
	PurgeAccount(ctx context.Context, accountID id.AccountID) error
}

// Service owns account registration, trust status and trusted-channel linking.
type Service struct {
	store     Store
	scorer    *scoring.Engine
	collector SignalCollector
	purgers   []DataPurger
	logger    *slog.Logger
	auditor   audit.Emitter
	metrics   *metrics.Metrics
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

func WithScorer(e *scoring.Engine) Option {
	return func(s *Service) {
		s.scorer = e
	}
}

func WithSignalCollector(c SignalCollector) Option {
	return func(s *Service) {
		s.collector = c
	}
}

// WithDataPurger registers a module whose account data is removed on deletion.
func WithDataPurger(p DataPurger) Option {
	return func(s *Service) {
		s.purgers = append(s.purgers, p)
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		scorer: scoring.NewEngine(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account, scores its registration signals once and
// stores the result. New accounts hold the user role and start read-only.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.Account, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var signals *scoring.Signals
	if s.collector != nil {
		signals = s.collector.Collect(ctx, req.ClientIP, req.UserAgent)
	}
	result := s.scorer.Score(signals)

	account := &models.Account{
		ID:             id.NewAccountID(),
		DisplayName:    req.DisplayName,
		Email:          req.Email,
		Roles:          []models.Role{models.RoleUser},
		SuspicionScore: result.Score,
		SuspicionLog:   make([]models.SuspicionEntry, 0, len(result.Log)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, e := range result.Log {
		account.SuspicionLog = append(account.SuspicionLog, models.SuspicionEntry{
			RuleID:     e.RuleID,
			Reason:     e.Reason,
			Points:     e.Points,
			RecordedAt: now,
		})
	}

	if err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "account already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	s.logAudit(ctx, audit.EventAccountRegistered,
		"account_id", account.ID.String(),
	)
	s.logAudit(ctx, audit.EventSuspicionScored,
		"account_id", account.ID.String(),
		"subject", strconv.Itoa(result.Score),
		"rules_fired", len(result.Log),
	)
	if s.metrics != nil {
		s.metrics.IncRegistered(result.Score)
	}
	return account, nil
}

// Get loads an account.
func (s *Service) Get(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	a, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return nil, translate(err, "failed to load account")
	}
	return a, nil
}

// TrustStatus returns the current state and capability banner.
func (s *Service) TrustStatus(ctx context.Context, accountID id.AccountID) (*models.TrustStatus, error) {
	a, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	status := models.StatusOf(a, requestcontext.Now(ctx))
	return &status, nil
}

// RequireCapability returns a forbidden error when the account's current
// state does not permit capability. Expiry is evaluated here, lazily.
func (s *Service) RequireCapability(ctx context.Context, accountID id.AccountID, capability models.Capability) error {
	a, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}
	state := models.ComputeState(a, requestcontext.Now(ctx))
	if state.Allows(capability) {
		return nil
	}

	if s.metrics != nil {
		s.metrics.IncCapabilityDenied(string(capability), string(state))
	}
	s.logAudit(ctx, audit.EventCapabilityDenied,
		"account_id", accountID.String(),
		"subject", string(capability),
		"reason", string(state),
	)
	if state.IsBanned() {
		return dErrors.New(dErrors.CodeForbidden, "account is banned")
	}
	return dErrors.New(dErrors.CodeForbidden, "account is read-only until a trusted channel is linked")
}

// LinkTrustedChannel records the chat id confirmed by the verification flow.
// Relinking replaces the previous id.
func (s *Service) LinkTrustedChannel(ctx context.Context, accountID id.AccountID, chatID string) (*models.Account, error) {
	if err := models.ValidateChatID(chatID); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	a, err := s.store.Execute(ctx, accountID, nil, func(a *models.Account) {
		a.TrustedChannelID = chatID
		a.UpdatedAt = now
	})
	if err != nil {
		return nil, translate(err, "failed to link trusted channel")
	}

	s.logAudit(ctx, audit.EventTrustedChannelLinked, "account_id", accountID.String())
	if s.metrics != nil {
		s.metrics.IncChannelChange("link")
	}
	return a, nil
}

// UnlinkTrustedChannel clears the trusted channel. Only the account holder or
// an admin may do this; an admin touching the account also clears an elapsed
// ban record.
func (s *Service) UnlinkTrustedChannel(ctx context.Context, actor models.Actor, accountID id.AccountID) (*models.Account, error) {
	if actor.ID != accountID && !actor.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the account holder or an admin may unlink the trusted channel")
	}

	now := requestcontext.Now(ctx)
	var cleared *models.BanRecord
	a, err := s.store.Execute(ctx, accountID, nil, func(a *models.Account) {
		a.TrustedChannelID = ""
		if actor.IsAdmin() {
			cleared = a.ClearStaleBan(now)
		}
		a.UpdatedAt = now
	})
	if err != nil {
		return nil, translate(err, "failed to unlink trusted channel")
	}

	if cleared != nil {
		s.logAudit(ctx, audit.EventBanExpiredClear,
			"account_id", accountID.String(),
			"actor_id", actor.ID.String(),
			"reason", cleared.Reason,
		)
	}
	s.logAudit(ctx, audit.EventTrustedChannelRemoved,
		"account_id", accountID.String(),
		"actor_id", actor.ID.String(),
	)
	if s.metrics != nil {
		s.metrics.IncChannelChange("unlink")
	}
	return a, nil
}

// AdminView exposes score, log and ban details to moderators and admins.
func (s *Service) AdminView(ctx context.Context, actor models.Actor, accountID id.AccountID) (*models.AdminView, error) {
	if !actor.CanModerate() {
		return nil, dErrors.New(dErrors.CodeForbidden, "moderator or admin role required")
	}
	a, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	state := models.ComputeState(a, requestcontext.Now(ctx))
	return &models.AdminView{Account: a, State: state, Capabilities: state.Capabilities()}, nil
}

// DeleteAccount irreversibly removes the account and the data other modules
// hold for it. Callers must have completed the confirmation workflow.
func (s *Service) DeleteAccount(ctx context.Context, accountID id.AccountID) error {
	if _, err := s.Get(ctx, accountID); err != nil {
		return err
	}
	for _, p := range s.purgers {
		if err := p.PurgeAccount(ctx, accountID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to purge account data")
		}
	}
	if err := s.store.Delete(ctx, accountID); err != nil {
		return translate(err, "failed to delete account")
	}

	s.logAudit(ctx, audit.EventAccountDeleted, "account_id", accountID.String())
	if s.metrics != nil {
		s.metrics.IncDeleted()
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attrs ...any) {
	audit.LogAudit(ctx, s.logger, s.auditor, event, attrs...)
}

// translate maps store facts onto domain errors. Coded errors pass through.
func translate(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "account not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "account was modified concurrently")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
