// Package requesttime stamps each request with a single "now" so ban expiry,
// code expiry and notification timestamps within one request agree.
package requesttime

import (
	"net/http"
	"time"

	"peerhelp/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
