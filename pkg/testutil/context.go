package testutil

import (
	"net/http"
	"time"

	id "peerhelp/pkg/domain"
	"peerhelp/pkg/requestcontext"
)

// WithPrincipal simulates what the auth middleware does for an authenticated
// request: the acting account and its roles land in the request context.
func WithPrincipal(req *http.Request, accountID id.AccountID, roles ...string) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), accountID, roles)
	return req.WithContext(ctx)
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
