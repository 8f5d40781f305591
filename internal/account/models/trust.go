package models

import (
	"fmt"
	"time"

	dErrors "peerhelp/pkg/domain-errors"
)

// TrustState is derived from an account snapshot; it is never stored.
type TrustState string

const (
	StateActive          TrustState = "ACTIVE"
	StateReadOnly        TrustState = "READ_ONLY"
	StateBannedTemporary TrustState = "BANNED_TEMPORARY"
	StateBannedPermanent TrustState = "BANNED_PERMANENT"
)

// IsBanned reports whether s is one of the banned states.
func (s TrustState) IsBanned() bool {
	return s == StateBannedTemporary || s == StateBannedPermanent
}

// ComputeState is a pure read of the ban record and trusted channel at now.
// An elapsed temporary ban is ignored here; clearing the stale record is the
// job of the next administrative action on the account.
func ComputeState(a *Account, now time.Time) TrustState {
	if a.Ban != nil && a.Ban.InEffect(now) {
		if a.Ban.IsPermanent() {
			return StateBannedPermanent
		}
		return StateBannedTemporary
	}
	if !a.HasTrustedChannel() {
		return StateReadOnly
	}
	return StateActive
}

// Capability names an action gated by trust state.
type Capability string

const (
	CapabilityBrowse         Capability = "browse"
	CapabilityEditProfile    Capability = "edit_profile"
	CapabilityLinkChannel    Capability = "link_channel"
	CapabilityPostRequest    Capability = "post_request"
	CapabilityRespondRequest Capability = "respond_request"
	CapabilitySendMessage    Capability = "send_message"
	CapabilityAppeal         Capability = "appeal"
)

// AllCapabilities lists capabilities in a stable order for responses.
var AllCapabilities = []Capability{
	CapabilityBrowse,
	CapabilityEditProfile,
	CapabilityLinkChannel,
	CapabilityPostRequest,
	CapabilityRespondRequest,
	CapabilitySendMessage,
	CapabilityAppeal,
}

// ParseCapability validates a capability name.
func ParseCapability(s string) (Capability, error) {
	for _, c := range AllCapabilities {
		if string(c) == s {
			return c, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown capability %q", s))
}

// IsWrite reports whether c produces content other users see.
func (c Capability) IsWrite() bool {
	switch c {
	case CapabilityPostRequest, CapabilityRespondRequest, CapabilitySendMessage:
		return true
	}
	return false
}

// Allows reports whether state s permits capability c.
//
//	ACTIVE     everything
//	READ_ONLY  browse, profile edits and channel linking (to reach verification), appeal
//	BANNED_*   browse and appeal only
func (s TrustState) Allows(c Capability) bool {
	switch {
	case c == CapabilityBrowse || c == CapabilityAppeal:
		return true
	case c.IsWrite():
		return s == StateActive
	default:
		return !s.IsBanned()
	}
}

// Capabilities returns the capabilities s permits, in AllCapabilities order.
func (s TrustState) Capabilities() []Capability {
	out := make([]Capability, 0, len(AllCapabilities))
	for _, c := range AllCapabilities {
		if s.Allows(c) {
			out = append(out, c)
		}
	}
	return out
}

// BanBanner is what the UI shows a banned account.
type BanBanner struct {
	Reason    string     `json:"reason"`
	Permanent bool       `json:"permanent"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// TrustStatus is the read model behind the capability banner.
type TrustStatus struct {
	State        TrustState   `json:"state"`
	Capabilities []Capability `json:"capabilities"`
	Ban          *BanBanner   `json:"ban,omitempty"`
}

// StatusOf builds the banner read model. The ban banner appears only while
// the ban is in effect.
func StatusOf(a *Account, now time.Time) TrustStatus {
	state := ComputeState(a, now)
	status := TrustStatus{State: state, Capabilities: state.Capabilities()}
	if state.IsBanned() {
		status.Ban = &BanBanner{
			Reason:    a.Ban.Reason,
			Permanent: a.Ban.IsPermanent(),
			ExpiresAt: a.Ban.ExpiresAt,
		}
	}
	return status
}

// AdminView is the moderator read of an account.
type AdminView struct {
	Account      *Account
	State        TrustState
	Capabilities []Capability
}
