package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peerhelp/internal/account/models"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/platform/httputil"
	"peerhelp/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/account-mocks.go -package=mocks Service

// Service defines the account operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.Account, error)
	TrustStatus(ctx context.Context, accountID id.AccountID) (*models.TrustStatus, error)
	RequireCapability(ctx context.Context, accountID id.AccountID, capability models.Capability) error
	LinkTrustedChannel(ctx context.Context, accountID id.AccountID, chatID string) (*models.Account, error)
	UnlinkTrustedChannel(ctx context.Context, actor models.Actor, accountID id.AccountID) (*models.Account, error)
	AdminView(ctx context.Context, actor models.Actor, accountID id.AccountID) (*models.AdminView, error)
}

// Handler serves account endpoints. Route groups are registered separately
// so the router can put each behind its own authentication.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterInternal mounts service-to-service routes (admin token).
func (h *Handler) RegisterInternal(r chi.Router) {
	r.Post("/internal/accounts", h.handleRegister)
	r.Put("/internal/accounts/{id}/trusted-channel", h.handleLinkChannel)
	r.Get("/internal/accounts/{id}/capabilities/{capability}", h.handleCheckCapability)
}

// RegisterSelf mounts routes acting on the authenticated account.
func (h *Handler) RegisterSelf(r chi.Router) {
	r.Get("/me/trust", h.handleGetTrust)
	r.Delete("/me/trusted-channel", h.handleUnlinkOwnChannel)
}

// RegisterAdmin mounts moderator/admin routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/accounts/{id}", h.handleAdminView)
	r.Delete("/admin/accounts/{id}/trusted-channel", h.handleAdminUnlinkChannel)
}

// RequireCapability gates downstream handlers on the acting account's trust state.
func (h *Handler) RequireCapability(capability models.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			accountID := requestcontext.AccountID(ctx)
			if accountID.IsNil() {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			if err := h.service.RequireCapability(ctx, accountID, capability); err != nil {
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	account, err := h.service.Register(ctx, *req)
	if err != nil {
		h.logger.ErrorContext(ctx, "account registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRegisterResponse(account))
}

func (h *Handler) handleLinkChannel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountID, err := id.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.LinkChannelRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	account, err := h.service.LinkTrustedChannel(ctx, accountID, req.ChatID)
	if err != nil {
		h.logger.ErrorContext(ctx, "link trusted channel failed",
			"request_id", requestID,
			"account_id", accountID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTrustResponse(models.StatusOf(account, requestcontext.Now(ctx))))
}

// handleCheckCapability lets the request and chat services ask for a gate
// decision without holding account state. 204 means allowed.
func (h *Handler) handleCheckCapability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := id.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	capability, err := models.ParseCapability(chi.URLParam(r, "capability"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RequireCapability(ctx, accountID, capability); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetTrust(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	status, err := h.service.TrustStatus(ctx, actor.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "trust status lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTrustResponse(*status))
}

func (h *Handler) handleUnlinkOwnChannel(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	h.unlink(w, r, actor, actor.ID)
}

func (h *Handler) handleAdminUnlinkChannel(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	target, err := id.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.unlink(w, r, actor, target)
}

func (h *Handler) unlink(w http.ResponseWriter, r *http.Request, actor models.Actor, target id.AccountID) {
	ctx := r.Context()
	account, err := h.service.UnlinkTrustedChannel(ctx, actor, target)
	if err != nil {
		h.logger.ErrorContext(ctx, "unlink trusted channel failed",
			"request_id", requestcontext.RequestID(ctx),
			"account_id", target.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTrustResponse(models.StatusOf(account, requestcontext.Now(ctx))))
}

func (h *Handler) handleAdminView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	target, err := id.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.AdminView(ctx, actor, target)
	if err != nil {
		h.logger.WarnContext(ctx, "admin account view failed",
			"request_id", requestcontext.RequestID(ctx),
			"account_id", target.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAdminResponse(view))
}

// actor reads the principal set by the auth middleware.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	ctx := r.Context()
	accountID := requestcontext.AccountID(ctx)
	if accountID.IsNil() {
		h.logger.ErrorContext(ctx, "account id missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return models.Actor{}, false
	}
	return models.Actor{ID: accountID, Roles: requestcontext.Roles(ctx)}, true
}
