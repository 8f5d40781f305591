package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	accountmodels "peerhelp/internal/account/models"
	"peerhelp/internal/moderation/models"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/platform/httputil"
	"peerhelp/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/moderation-mocks.go -package=mocks Service

// Service defines the moderation operations exposed over HTTP.
type Service interface {
	IssueBan(ctx context.Context, actor accountmodels.Actor, target id.AccountID, reason string, duration *time.Duration) (*accountmodels.BanRecord, error)
	LiftBan(ctx context.Context, actor accountmodels.Actor, target id.AccountID) (*models.LiftResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts ban routes; the caller is expected to sit behind auth.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/accounts/{id}/ban", h.handleIssueBan)
	r.Delete("/admin/accounts/{id}/ban", h.handleLiftBan)
}

func (h *Handler) handleIssueBan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, target, ok := h.parse(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.IssueBanRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	duration, err := req.ParseDuration()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ban, err := h.service.IssueBan(ctx, actor, target, req.Reason, duration)
	if err != nil {
		h.logger.WarnContext(ctx, "issue ban failed",
			"request_id", requestID,
			"account_id", target.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toBanResponse(target, ban))
}

func (h *Handler) handleLiftBan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, target, ok := h.parse(w, r)
	if !ok {
		return
	}

	res, err := h.service.LiftBan(ctx, actor, target)
	if err != nil {
		h.logger.WarnContext(ctx, "lift ban failed",
			"request_id", requestcontext.RequestID(ctx),
			"account_id", target.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LiftResponse{Lifted: res.Lifted, WasInEffect: res.WasInEffect})
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) (accountmodels.Actor, id.AccountID, bool) {
	ctx := r.Context()
	accountID := requestcontext.AccountID(ctx)
	if accountID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return accountmodels.Actor{}, id.AccountID{}, false
	}
	target, err := id.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return accountmodels.Actor{}, id.AccountID{}, false
	}
	return accountmodels.Actor{ID: accountID, Roles: requestcontext.Roles(ctx)}, target, true
}
