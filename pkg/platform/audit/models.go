package audit

import (
	"context"
	"time"

	id "peerhelp/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route and retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers account lifecycle events with retention obligations.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers moderation and authorization-relevant actions.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	AccountID id.AccountID
	// ActorID is who performed the action when different from AccountID
	// (a moderator issuing a ban, an admin unlinking a channel).
	ActorID   string
	Action    string
	Subject   string
	Reason    string
	RequestID string
}

// Store appends audit events. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can read events back.
type Lister interface {
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]Event, error)
}

type AuditEvent string

const (
	// Account events
	EventAccountRegistered     AuditEvent = "account_registered"
	EventAccountDeleted        AuditEvent = "account_deleted"
	EventSuspicionScored       AuditEvent = "suspicion_scored"
	EventTrustedChannelLinked  AuditEvent = "trusted_channel_linked"
	EventTrustedChannelRemoved AuditEvent = "trusted_channel_unlinked"
	EventCapabilityDenied      AuditEvent = "capability_denied"

	// Moderation events
	EventBanIssued        AuditEvent = "ban_issued"
	EventBanLifted        AuditEvent = "ban_lifted"
	EventBanExpiredClear  AuditEvent = "ban_expired_cleared"
	EventModerationDenied AuditEvent = "moderation_denied"

	// Notification events
	EventAdminMessageSent        AuditEvent = "admin_message_sent"
	EventPushSubscriptionRemoved AuditEvent = "push_subscription_removed"

	// Deletion workflow events
	EventDeletionRequested AuditEvent = "deletion_requested"
	EventDeletionRejected  AuditEvent = "deletion_code_rejected"
	EventDeletionConfirmed AuditEvent = "deletion_confirmed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAccountRegistered: CategoryCompliance,
	EventAccountDeleted:    CategoryCompliance,
	EventDeletionConfirmed: CategoryCompliance,

	EventBanIssued:             CategorySecurity,
	EventBanLifted:             CategorySecurity,
	EventBanExpiredClear:       CategorySecurity,
	EventModerationDenied:      CategorySecurity,
	EventCapabilityDenied:      CategorySecurity,
	EventTrustedChannelLinked:  CategorySecurity,
	EventTrustedChannelRemoved: CategorySecurity,
	EventDeletionRequested:     CategorySecurity,
	EventDeletionRejected:      CategorySecurity,

	EventSuspicionScored:         CategoryOperations,
	EventAdminMessageSent:        CategoryOperations,
	EventPushSubscriptionRemoved: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
