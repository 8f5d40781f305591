package models

import (
	"time"

	id "peerhelp/pkg/domain"
)

// Category classifies a notification for rendering and filtering.
type Category string

const (
	CategoryBanIssued    Category = "ban_issued"
	CategoryBanLifted    Category = "ban_lifted"
	CategoryAdminMessage Category = "admin_message"
	CategorySystem       Category = "system"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryBanIssued, CategoryBanLifted, CategoryAdminMessage, CategorySystem:
		return true
	}
	return false
}

// Title is the heading used by push and direct channels.
func (c Category) Title() string {
	switch c {
	case CategoryBanIssued:
		return "Your account has been restricted"
	case CategoryBanLifted:
		return "Your account restriction was lifted"
	case CategoryAdminMessage:
		return "Message from the PeerHelp team"
	default:
		return "PeerHelp"
	}
}

// Notification is the in-app record. Its CreatedAt is the event timestamp
// every other channel echoes.
type Notification struct {
	ID          id.NotificationID `json:"id"`
	RecipientID id.AccountID      `json:"recipient_id"`
	SenderID    *id.AccountID     `json:"sender_id,omitempty"`
	Body        string            `json:"body"`
	Category    Category          `json:"category"`
	URL         string            `json:"url,omitempty"`
	Read        bool              `json:"read"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Event is what callers hand to the dispatcher.
type Event struct {
	Recipient id.AccountID
	Sender    *id.AccountID
	Body      string
	Category  Category
	URL       string
}

// Recipient is the slice of account data the dispatcher needs for routing.
type Recipient struct {
	ID               id.AccountID
	TrustedChannelID string
}

// Subscription is a browser push endpoint registered by an account.
type Subscription struct {
	ID        id.SubscriptionID
	AccountID id.AccountID
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}

// Channel names a delivery path.
type Channel string

const (
	ChannelInApp  Channel = "in_app"
	ChannelPush   Channel = "push"
	ChannelDirect Channel = "direct"
)

// Outcome is what happened on one channel for one dispatch.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeQueued    Outcome = "queued"
)

// ChannelResult reports one channel. Err is set for failures and is never
// surfaced to callers as a dispatch error.
type ChannelResult struct {
	Channel Channel
	Outcome Outcome
	Err     error
}

// DispatchResult aggregates per-channel outcomes for one event.
type DispatchResult struct {
	Notification *Notification
	Channels     []ChannelResult
}

// Outcome returns the outcome recorded for ch, or skipped when absent.
func (r *DispatchResult) Outcome(ch Channel) Outcome {
	for _, c := range r.Channels {
		if c.Channel == ch {
			return c.Outcome
		}
	}
	return OutcomeSkipped
}

// ListQuery selects a page of a recipient's feed, newest first.
type ListQuery struct {
	RecipientID id.AccountID
	Limit       int
	Offset      int
	UnreadOnly  bool
}

// Page is one slice of the feed. Total counts notifications matching the
// query; Unread counts the whole feed.
type Page struct {
	Items  []Notification
	Total  int
	Unread int
}
