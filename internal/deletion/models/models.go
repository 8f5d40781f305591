package models

import (
	"strings"
	"time"

	"peerhelp/internal/deletion/code"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
)

// Status is derived from a pending request at a point in time.
type Status string

const (
	StatusPending   Status = "pending"
	StatusExpired   Status = "expired"
	StatusExhausted Status = "exhausted"
)

// PendingDeletionRequest is the single live deletion attempt of an account.
// Only the bcrypt hash of the code is kept.
type PendingDeletionRequest struct {
	AccountID         id.AccountID `json:"account_id"`
	CodeHash          []byte       `json:"code_hash"`
	IssuedAt          time.Time    `json:"issued_at"`
	ExpiresAt         time.Time    `json:"expires_at"`
	AttemptsRemaining int          `json:"attempts_remaining"`
}

// StatusAt checks expiry before the attempt budget.
func (p *PendingDeletionRequest) StatusAt(now time.Time) Status {
	if now.After(p.ExpiresAt) {
		return StatusExpired
	}
	if p.AttemptsRemaining <= 0 {
		return StatusExhausted
	}
	return StatusPending
}

// Change is what a confirmation decides to do with the stored record.
// The zero value writes nothing.
type Change struct {
	Save   *PendingDeletionRequest
	Delete bool
}

// RequestResult is returned to the account holder after a code is issued.
type RequestResult struct {
	ExpiresAt         time.Time
	AttemptsRemaining int
	Delivered         bool
}

type ConfirmRequest struct {
	Code string `json:"code"`
}

func (r *ConfirmRequest) Normalize() {
	r.Code = strings.TrimSpace(r.Code)
}

func (r *ConfirmRequest) Validate() error {
	if !code.WellFormed(r.Code) {
		return dErrors.New(dErrors.CodeInvalidInput, "code must be exactly 6 digits")
	}
	return nil
}
