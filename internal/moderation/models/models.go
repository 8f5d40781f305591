package models

import (
	"strings"
	"time"

	dErrors "peerhelp/pkg/domain-errors"
)

// BanKind labels bans for metrics and responses.
type BanKind string

const (
	BanTemporary BanKind = "temporary"
	BanPermanent BanKind = "permanent"
)

// IssueBanRequest is the moderator's ban form. An empty Duration means permanent.
type IssueBanRequest struct {
	Reason   string `json:"reason"`
	Duration string `json:"duration,omitempty"`
}

func (r *IssueBanRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
	r.Duration = strings.TrimSpace(r.Duration)
}

func (r *IssueBanRequest) Validate() error {
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "reason is required")
	}
	_, err := r.ParseDuration()
	return err
}

// ParseDuration returns nil for a permanent ban.
func (r *IssueBanRequest) ParseDuration() (*time.Duration, error) {
	if r.Duration == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(r.Duration)
	if err != nil || d <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "duration must be a positive Go duration such as 1h or 72h")
	}
	return &d, nil
}

// LiftResult reports whether a lift removed a record.
type LiftResult struct {
	Lifted      bool
	WasInEffect bool
}
