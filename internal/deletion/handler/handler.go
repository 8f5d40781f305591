package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"peerhelp/internal/deletion/models"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/platform/httputil"
	"peerhelp/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/deletion-mocks.go -package=mocks Service,AccountDeleter

type Service interface {
	RequestDeletion(ctx context.Context, accountID id.AccountID) (*models.RequestResult, error)
	ConfirmDeletion(ctx context.Context, accountID id.AccountID, code string) error
}

// AccountDeleter performs the irreversible removal once a code is confirmed.
type AccountDeleter interface {
	DeleteAccount(ctx context.Context, accountID id.AccountID) error
}

type Handler struct {
	service  Service
	accounts AccountDeleter
	logger   *slog.Logger
}

func New(service Service, accounts AccountDeleter, logger *slog.Logger) *Handler {
	return &Handler{service: service, accounts: accounts, logger: logger}
}

// RegisterSelf mounts the deletion routes for the authenticated account.
func (h *Handler) RegisterSelf(r chi.Router) {
	r.Post("/me/deletion-request", h.handleRequest)
	r.Post("/me/deletion-request/confirm", h.handleConfirm)
}

type RequestResponse struct {
	ExpiresAt         time.Time `json:"expires_at"`
	AttemptsRemaining int       `json:"attempts_remaining"`
	Delivered         bool      `json:"delivered"`
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := h.principal(w, r)
	if !ok {
		return
	}

	res, err := h.service.RequestDeletion(ctx, accountID)
	if err != nil {
		h.logger.WarnContext(ctx, "deletion request failed",
			"request_id", requestcontext.RequestID(ctx),
			"account_id", accountID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, RequestResponse{
		ExpiresAt:         res.ExpiresAt,
		AttemptsRemaining: res.AttemptsRemaining,
		Delivered:         res.Delivered,
	})
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	accountID, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.ConfirmRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.ConfirmDeletion(ctx, accountID, req.Code); err != nil {
		h.logger.WarnContext(ctx, "deletion confirmation rejected",
			"request_id", requestID,
			"account_id", accountID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if err := h.accounts.DeleteAccount(ctx, accountID); err != nil {
		h.logger.ErrorContext(ctx, "account deletion failed after confirmation",
			"request_id", requestID,
			"account_id", accountID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (id.AccountID, bool) {
	accountID := requestcontext.AccountID(r.Context())
	if accountID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.AccountID{}, false
	}
	return accountID, true
}
