package handler

import (
	"time"

	accountmodels "peerhelp/internal/account/models"
	"peerhelp/internal/moderation/models"
	id "peerhelp/pkg/domain"
)

type BanResponse struct {
	AccountID string         `json:"account_id"`
	Kind      models.BanKind `json:"kind"`
	Reason    string         `json:"reason"`
	IssuedBy  string         `json:"issued_by"`
	IssuedAt  time.Time      `json:"issued_at"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

type LiftResponse struct {
	Lifted      bool `json:"lifted"`
	WasInEffect bool `json:"was_in_effect"`
}

func toBanResponse(target id.AccountID, b *accountmodels.BanRecord) BanResponse {
	kind := models.BanTemporary
	if b.IsPermanent() {
		kind = models.BanPermanent
	}
	return BanResponse{
		AccountID: target.String(),
		Kind:      kind,
		Reason:    b.Reason,
		IssuedBy:  b.IssuedBy.String(),
		IssuedAt:  b.IssuedAt,
		ExpiresAt: b.ExpiresAt,
	}
}
