package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	accountmodels "peerhelp/internal/account/models"
	"peerhelp/internal/notification/models"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/platform/httputil"
	"peerhelp/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/notification-mocks.go -package=mocks Service

type Service interface {
	List(ctx context.Context, q models.ListQuery) (*models.Page, error)
	MarkRead(ctx context.Context, recipientID id.AccountID, notificationID id.NotificationID, read bool) (*models.Notification, error)
	MarkAllRead(ctx context.Context, recipientID id.AccountID) (int, error)
	Subscribe(ctx context.Context, accountID id.AccountID, req models.SubscribeRequest) (*models.Subscription, error)
	Unsubscribe(ctx context.Context, accountID id.AccountID, endpoint string) error
	SendAdminMessage(ctx context.Context, actor accountmodels.Actor, recipientID id.AccountID, req models.AdminMessageRequest) (*models.DispatchResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterSelf mounts the authenticated account's feed and push routes.
func (h *Handler) RegisterSelf(r chi.Router) {
	r.Get("/me/notifications", h.handleList)
	r.Patch("/me/notifications/{id}", h.handleMarkRead)
	r.Post("/me/notifications/read-all", h.handleMarkAllRead)
	r.Post("/me/push-subscriptions", h.handleSubscribe)
	r.Delete("/me/push-subscriptions", h.handleUnsubscribe)
}

// RegisterAdmin mounts admin messaging.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/accounts/{id}/notifications", h.handleAdminMessage)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := h.principal(w, r)
	if !ok {
		return
	}
	q, err := models.ParseListQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	q.RecipientID = accountID

	page, err := h.service.List(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "list notifications failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(page, q))
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	accountID, ok := h.principal(w, r)
	if !ok {
		return
	}
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.MarkReadRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	n, err := h.service.MarkRead(ctx, accountID, notificationID, *req.Read)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toNotificationResponse(*n))
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := h.principal(w, r)
	if !ok {
		return
	}
	changed, err := h.service.MarkAllRead(ctx, accountID)
	if err != nil {
		h.logger.ErrorContext(ctx, "mark all read failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MarkAllReadResponse{Updated: changed})
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	accountID, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.SubscribeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub, err := h.service.Subscribe(ctx, accountID, *req)
	if err != nil {
		h.logger.ErrorContext(ctx, "push subscribe failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, SubscriptionResponse{
		ID:        sub.ID.String(),
		Endpoint:  sub.Endpoint,
		CreatedAt: sub.CreatedAt,
	})
}

func (h *Handler) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	accountID, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UnsubscribeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.Unsubscribe(ctx, accountID, req.Endpoint); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAdminMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	target, err := id.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.AdminMessageRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	actor := accountmodels.Actor{ID: actorID, Roles: requestcontext.Roles(ctx)}
	result, err := h.service.SendAdminMessage(ctx, actor, target, *req)
	if err != nil {
		h.logger.WarnContext(ctx, "admin message failed",
			"request_id", requestID,
			"account_id", target.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toDispatchResponse(result))
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (id.AccountID, bool) {
	accountID := requestcontext.AccountID(r.Context())
	if accountID.IsNil() {
		h.logger.ErrorContext(r.Context(), "account id missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.AccountID{}, false
	}
	return accountID, true
}
