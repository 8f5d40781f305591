package models

import (
	"slices"
	"time"

	id "peerhelp/pkg/domain"
)

// Role is one of the platform roles. Several may co-exist on one account.
type Role string

const (
	RoleUser      Role = "user"
	RoleHelper    Role = "helper"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleHelper, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller as asserted by the session layer.
type Actor struct {
	ID    id.AccountID
	Roles []string
}

// HasRole reports whether the actor holds r.
func (a Actor) HasRole(r Role) bool {
	return slices.Contains(a.Roles, string(r))
}

// CanModerate reports whether the actor may issue or lift bans.
func (a Actor) CanModerate() bool {
	return a.HasRole(RoleModerator) || a.HasRole(RoleAdmin)
}

func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// SuspicionEntry is one fired scoring rule, stamped when it was recorded.
type SuspicionEntry struct {
	RuleID     string    `json:"rule_id"`
	Reason     string    `json:"reason"`
	Points     int       `json:"points"`
	RecordedAt time.Time `json:"recorded_at"`
}

// BanRecord is set and cleared only by the moderation service.
// A nil ExpiresAt means the ban is permanent.
type BanRecord struct {
	Reason    string
	IssuedBy  id.AccountID
	IssuedAt  time.Time
	ExpiresAt *time.Time
}

// IsPermanent reports whether the ban has no expiry.
func (b *BanRecord) IsPermanent() bool {
	return b.ExpiresAt == nil
}

// InEffect reports whether the ban still restricts the account at now.
func (b *BanRecord) InEffect(now time.Time) bool {
	return b.ExpiresAt == nil || b.ExpiresAt.After(now)
}

// Account is the trust-relevant slice of a platform account.
type Account struct {
	ID               id.AccountID
	DisplayName      string
	Email            string
	Roles            []Role
	TrustedChannelID string
	SuspicionScore   int
	SuspicionLog     []SuspicionEntry
	Ban              *BanRecord
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasTrustedChannel reports whether a verified out-of-band channel is linked.
func (a *Account) HasTrustedChannel() bool {
	return a.TrustedChannelID != ""
}

// ClearStaleBan drops a ban record whose expiry has passed. It returns the
// cleared record, or nil when there was nothing stale to clear.
func (a *Account) ClearStaleBan(now time.Time) *BanRecord {
	if a.Ban == nil || a.Ban.InEffect(now) {
		return nil
	}
	stale := a.Ban
	a.Ban = nil
	return stale
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	out := *a
	out.Roles = slices.Clone(a.Roles)
	out.SuspicionLog = slices.Clone(a.SuspicionLog)
	if a.Ban != nil {
		ban := *a.Ban
		if a.Ban.ExpiresAt != nil {
			exp := *a.Ban.ExpiresAt
			ban.ExpiresAt = &exp
		}
		out.Ban = &ban
	}
	return &out
}
