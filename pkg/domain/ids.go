// Package domain holds typed identifiers shared across bounded contexts.
//
// Each ID is a distinct named UUID type so an AccountID can never be passed
// where a NotificationID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "peerhelp/pkg/domain-errors"
)

type (
	AccountID      uuid.UUID
	NotificationID uuid.UUID
	SubscriptionID uuid.UUID
)

// NewAccountID returns a random account ID.
func NewAccountID() AccountID { return AccountID(uuid.New()) }

// NewNotificationID returns a random notification ID.
func NewNotificationID() NotificationID { return NotificationID(uuid.New()) }

// NewSubscriptionID returns a random push subscription ID.
func NewSubscriptionID() SubscriptionID { return SubscriptionID(uuid.New()) }

func (id AccountID) String() string      { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }
func (id SubscriptionID) String() string { return uuid.UUID(id).String() }

func (id AccountID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SubscriptionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id AccountID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id NotificationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id SubscriptionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *AccountID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *NotificationID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *SubscriptionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseAccountID parses a non-nil UUID string at a trust boundary.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s, "account ID")
	return AccountID(u), err
}

// ParseNotificationID parses a non-nil UUID string at a trust boundary.
func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s, "notification ID")
	return NotificationID(u), err
}

// ParseSubscriptionID parses a non-nil UUID string at a trust boundary.
func ParseSubscriptionID(s string) (SubscriptionID, error) {
	u, err := parseUUID(s, "subscription ID")
	return SubscriptionID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
