// Package service implements the confirmation-code workflow that guards
// irreversible account deletion.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	accountmodels "peerhelp/internal/account/models"
	"peerhelp/internal/deletion/code"
	"peerhelp/internal/deletion/metrics"
	"peerhelp/internal/deletion/models"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/platform/audit"
	"peerhelp/pkg/platform/sentinel"
	"peerhelp/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AccountReader,Messenger

const (
	defaultCodeTTL     = 10 * time.Minute
	defaultMaxAttempts = 3
)

// Store holds at most one pending request per account.
type Store interface {
	Replace(ctx context.Context, req *models.PendingDeletionRequest, retain time.Duration) error
	Apply(ctx context.Context, accountID id.AccountID, decide func(*models.PendingDeletionRequest) (models.Change, error)) error
	Delete(ctx context.Context, accountID id.AccountID) error
}

type AccountReader interface {
	FindByID(ctx context.Context, accountID id.AccountID) (*accountmodels.Account, error)
}

// Messenger sends a direct message to a trusted channel and waits for the result.
type Messenger interface {
	DeliverDirect(ctx context.Context, chatID, text string) error
}

type Service struct {
	store       Store
	accounts    AccountReader
	messenger   Messenger
	hasher      code.Hasher
	generate    func() (string, error)
	codeTTL     time.Duration
	maxAttempts int
	logger      *slog.Logger
	auditor     audit.Emitter
	metrics     *metrics.Metrics
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

func WithCodeTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.codeTTL = ttl
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithHashCost sets the bcrypt cost for stored codes.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hasher = code.NewHasher(cost)
	}
}

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.generate = fn
	}
}

func New(store Store, accounts AccountReader, messenger Messenger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		accounts:    accounts,
		messenger:   messenger,
		hasher:      code.NewHasher(0),
		generate:    code.Generate,
		codeTTL:     defaultCodeTTL,
		maxAttempts: defaultMaxAttempts,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestDeletion issues a fresh code, replacing any earlier request, and
// sends it to the account's trusted channel. Accounts without a linked
// channel are rejected before anything is stored. A failed send leaves the
// request in place and is reported through Delivered.
func (s *Service) RequestDeletion(ctx context.Context, accountID id.AccountID) (*models.RequestResult, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, translate(err, "failed to load account")
	}
	if !account.HasTrustedChannel() {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "link a trusted channel before requesting account deletion")
	}

	plain, err := s.generate()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue confirmation code")
	}
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue confirmation code")
	}

	now := requestcontext.Now(ctx)
	req := &models.PendingDeletionRequest{
		AccountID:         accountID,
		CodeHash:          hash,
		IssuedAt:          now,
		ExpiresAt:         now.Add(s.codeTTL),
		AttemptsRemaining: s.maxAttempts,
	}
	if err := s.store.Replace(ctx, req, 2*s.codeTTL); err != nil {
		return nil, translate(err, "failed to store deletion request")
	}

	delivered := s.deliver(ctx, account, plain)
	if s.metrics != nil {
		s.metrics.IncIssued(delivered)
	}
	subject := "delivered"
	if !delivered {
		subject = "undelivered"
	}
	s.logAudit(ctx, audit.EventDeletionRequested,
		"account_id", accountID.String(),
		"subject", subject,
	)

	return &models.RequestResult{
		ExpiresAt:         req.ExpiresAt,
		AttemptsRemaining: req.AttemptsRemaining,
		Delivered:         delivered,
	}, nil
}

// ConfirmDeletion checks submitted against the pending request. Expiry is
// checked before the attempt budget, then the code. A nil error means the
// request was consumed and the caller may delete the account.
func (s *Service) ConfirmDeletion(ctx context.Context, accountID id.AccountID, submitted string) error {
	if !code.WellFormed(submitted) {
		s.countConfirmation("invalid")
		return dErrors.New(dErrors.CodeInvalidInput, "code must be exactly 6 digits")
	}

	now := requestcontext.Now(ctx)
	outcome := ""
	remaining := 0
	err := s.store.Apply(ctx, accountID, func(p *models.PendingDeletionRequest) (models.Change, error) {
		switch p.StatusAt(now) {
		case models.StatusExpired:
			outcome = "expired"
			return models.Change{}, dErrors.New(dErrors.CodeExpired, "confirmation code expired; request a new one")
		case models.StatusExhausted:
			outcome = "exhausted"
			return models.Change{}, dErrors.New(dErrors.CodeExhausted, "no attempts remaining; request a new code")
		}

		err := s.hasher.Verify(submitted, p.CodeHash)
		switch {
		case errors.Is(err, code.ErrMismatch):
			outcome = "mismatch"
			next := *p
			next.AttemptsRemaining--
			remaining = next.AttemptsRemaining
			return models.Change{Save: &next},
				dErrors.New(dErrors.CodeMismatch, fmt.Sprintf("code does not match; %d attempts remaining", remaining))
		case err != nil:
			return models.Change{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify code")
		}
		outcome = "confirmed"
		return models.Change{Delete: true}, nil
	})

	switch {
	case outcome == "confirmed" && err == nil:
		s.countConfirmation(outcome)
		s.logAudit(ctx, audit.EventDeletionConfirmed, "account_id", accountID.String())
		return nil
	case outcome == "mismatch" && dErrors.HasCode(err, dErrors.CodeMismatch):
		s.countConfirmation(outcome)
		s.logAudit(ctx, audit.EventDeletionRejected,
			"account_id", accountID.String(),
			"subject", outcome,
			"reason", fmt.Sprintf("%d attempts remaining", remaining),
		)
		return err
	case outcome == "expired" || outcome == "exhausted":
		s.countConfirmation(outcome)
		s.logAudit(ctx, audit.EventDeletionRejected,
			"account_id", accountID.String(),
			"subject", outcome,
		)
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		s.countConfirmation("missing")
		return dErrors.Wrap(err, dErrors.CodeNotFound, "no pending deletion request")
	case errors.Is(err, sentinel.ErrConflict):
		s.countConfirmation("conflict")
		return dErrors.Wrap(err, dErrors.CodeConflict, "deletion request changed; try again with the latest code")
	default:
		return translate(err, "failed to confirm deletion")
	}
}

// PurgeAccount drops any pending request when the account itself is removed.
func (s *Service) PurgeAccount(ctx context.Context, accountID id.AccountID) error {
	if err := s.store.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("purge pending deletion: %w", err)
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, account *accountmodels.Account, plain string) bool {
	if s.messenger == nil {
		s.logger.WarnContext(ctx, "no direct channel configured; deletion code not sent",
			"account_id", account.ID.String(),
		)
		return false
	}
	text := fmt.Sprintf(
		"Your PeerHelp account deletion code is %s. It expires in %s. If you did not ask to delete your account, ignore this message.",
		plain, s.codeTTL.Round(time.Minute))
	if err := s.messenger.DeliverDirect(ctx, account.TrustedChannelID, text); err != nil {
		s.logger.WarnContext(ctx, "deletion code delivery failed",
			"account_id", account.ID.String(),
			"error", err,
		)
		return false
	}
	return true
}

func (s *Service) countConfirmation(outcome string) {
	if s.metrics != nil {
		s.metrics.IncConfirmation(outcome)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attrs ...any) {
	audit.LogAudit(ctx, s.logger, s.auditor, event, attrs...)
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
