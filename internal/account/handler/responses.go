package handler

import (
	"time"

	"peerhelp/internal/account/models"
)

type RegisterResponse struct {
	AccountID      string            `json:"account_id"`
	State          models.TrustState `json:"state"`
	SuspicionScore int               `json:"suspicion_score"`
}

type TrustResponse struct {
	State        models.TrustState   `json:"state"`
	Capabilities []models.Capability `json:"capabilities"`
	Ban          *models.BanBanner   `json:"ban,omitempty"`
}

type BanResponse struct {
	Reason    string     `json:"reason"`
	IssuedBy  string     `json:"issued_by"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	InEffect  bool       `json:"in_effect"`
}

type AdminAccountResponse struct {
	AccountID      string                  `json:"account_id"`
	DisplayName    string                  `json:"display_name"`
	Roles          []models.Role           `json:"roles"`
	TrustedChannel bool                    `json:"trusted_channel_linked"`
	State          models.TrustState       `json:"state"`
	Capabilities   []models.Capability     `json:"capabilities"`
	SuspicionScore int                     `json:"suspicion_score"`
	SuspicionLog   []models.SuspicionEntry `json:"suspicion_log"`
	Ban            *BanResponse            `json:"ban,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

func toRegisterResponse(a *models.Account) RegisterResponse {
	return RegisterResponse{
		AccountID:      a.ID.String(),
		State:          models.ComputeState(a, a.CreatedAt),
		SuspicionScore: a.SuspicionScore,
	}
}

func toTrustResponse(s models.TrustStatus) TrustResponse {
	return TrustResponse{State: s.State, Capabilities: s.Capabilities, Ban: s.Ban}
}

func toAdminResponse(v *models.AdminView) AdminAccountResponse {
	a := v.Account
	resp := AdminAccountResponse{
		AccountID:      a.ID.String(),
		DisplayName:    a.DisplayName,
		Roles:          a.Roles,
		TrustedChannel: a.HasTrustedChannel(),
		State:          v.State,
		Capabilities:   v.Capabilities,
		SuspicionScore: a.SuspicionScore,
		SuspicionLog:   a.SuspicionLog,
		CreatedAt:      a.CreatedAt,
	}
	if resp.SuspicionLog == nil {
		resp.SuspicionLog = []models.SuspicionEntry{}
	}
	if a.Ban != nil {
		resp.Ban = &BanResponse{
			Reason:    a.Ban.Reason,
			IssuedBy:  a.Ban.IssuedBy.String(),
			IssuedAt:  a.Ban.IssuedAt,
			ExpiresAt: a.Ban.ExpiresAt,
			InEffect:  v.State.IsBanned(),
		}
	}
	return resp
}
