// Package httptransport assembles the chi router. Handlers stay in their
// bounded contexts; this package only decides which middleware guards which
// route group.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	accounthandler "peerhelp/internal/account/handler"
	deletionhandler "peerhelp/internal/deletion/handler"
	moderationhandler "peerhelp/internal/moderation/handler"
	notificationhandler "peerhelp/internal/notification/handler"
	"peerhelp/internal/platform/metrics"
	"peerhelp/pkg/platform/httputil"
	adminmw "peerhelp/pkg/platform/middleware/admin"
	authmw "peerhelp/pkg/platform/middleware/auth"
	"peerhelp/pkg/platform/middleware/metadata"
	request "peerhelp/pkg/platform/middleware/request"
	"peerhelp/pkg/platform/middleware/requesttime"
)

const defaultRequestTimeout = 30 * time.Second

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handlers groups the per-context HTTP handlers.
type Handlers struct {
	Accounts      *accounthandler.Handler
	Moderation    *moderationhandler.Handler
	Notifications *notificationhandler.Handler
	Deletion      *deletionhandler.Handler
}

type Config struct {
	Logger         *slog.Logger
	Validator      authmw.JWTValidator
	AdminToken     string
	Registry       *prometheus.Registry
	HTTPMetrics    *metrics.HTTPMetrics
	Health         map[string]HealthCheck
	RequestTimeout time.Duration
}

func NewRouter(cfg Config, h Handlers) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Middleware)
	}

	if cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.Registry))
	}
	r.Get("/healthz", healthHandler(cfg.Health))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Use(adminmw.RequireAdminToken(cfg.AdminToken, cfg.Logger))
		h.Accounts.RegisterInternal(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Use(authmw.RequireAuth(cfg.Validator, cfg.Logger))
		h.Accounts.RegisterSelf(r)
		h.Notifications.RegisterSelf(r)
		h.Deletion.RegisterSelf(r)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAnyRole(cfg.Logger, "moderator", "admin"))
			h.Accounts.RegisterAdmin(r)
			h.Moderation.RegisterAdmin(r)
			h.Notifications.RegisterAdmin(r)
		})
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
