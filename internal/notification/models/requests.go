package models

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	dErrors "peerhelp/pkg/domain-errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	maxBodyLength   = 2000
)

// ParseListQuery reads limit, offset and unread from query parameters.
func ParseListQuery(q url.Values) (ListQuery, error) {
	out := ListQuery{Limit: DefaultPageSize}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return out, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer")
		}
		out.Limit = min(n, MaxPageSize)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return out, dErrors.New(dErrors.CodeInvalidInput, "offset must be a non-negative integer")
		}
		out.Offset = n
	}
	if v := q.Get("unread"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return out, dErrors.New(dErrors.CodeInvalidInput, "unread must be a boolean")
		}
		out.UnreadOnly = b
	}
	return out, nil
}

// MarkReadRequest is the {read: boolean} mutation.
type MarkReadRequest struct {
	Read *bool `json:"read"`
}

func (r *MarkReadRequest) Validate() error {
	if r.Read == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "read is required")
	}
	return nil
}

type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// SubscribeRequest mirrors the browser PushSubscription JSON.
type SubscribeRequest struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

func (r *SubscribeRequest) Normalize() {
	r.Endpoint = strings.TrimSpace(r.Endpoint)
	r.Keys.P256dh = strings.TrimSpace(r.Keys.P256dh)
	r.Keys.Auth = strings.TrimSpace(r.Keys.Auth)
}

func (r *SubscribeRequest) Validate() error {
	u, err := url.Parse(r.Endpoint)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "endpoint must be an https URL")
	}
	if r.Keys.P256dh == "" || r.Keys.Auth == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "keys.p256dh and keys.auth are required")
	}
	return nil
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func (r *UnsubscribeRequest) Normalize() {
	r.Endpoint = strings.TrimSpace(r.Endpoint)
}

func (r *UnsubscribeRequest) Validate() error {
	if r.Endpoint == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "endpoint is required")
	}
	return nil
}

// AdminMessageRequest is an admin-authored message to one account.
type AdminMessageRequest struct {
	Body string `json:"body"`
	URL  string `json:"url"`
}

func (r *AdminMessageRequest) Normalize() {
	r.Body = strings.TrimSpace(r.Body)
	r.URL = strings.TrimSpace(r.URL)
}

func (r *AdminMessageRequest) Validate() error {
	if r.Body == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "body is required")
	}
	if utf8.RuneCountInString(r.Body) > maxBodyLength {
		return dErrors.New(dErrors.CodeInvalidInput, "body is too long")
	}
	if r.URL != "" && !strings.HasPrefix(r.URL, "/") {
		return dErrors.New(dErrors.CodeInvalidInput, "url must be a site-relative path")
	}
	return nil
}
