package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "peerhelp/pkg/domain"
	audit "peerhelp/pkg/platform/audit"
)

// Store implements audit.Store on the audit_events table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts one event. Category is always derived from the action.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var accountID *uuid.UUID
	if !event.AccountID.IsNil() {
		aid := uuid.UUID(event.AccountID)
		accountID = &aid
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, account_id, actor_id,
			action, subject, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		string(audit.AuditEvent(event.Action).Category()),
		event.Timestamp,
		accountID,
		event.ActorID,
		event.Action,
		event.Subject,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByAccount returns events for one account, oldest first.
func (s *Store) ListByAccount(ctx context.Context, accountID id.AccountID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, account_id, actor_id, action, subject, reason, request_id
		FROM audit_events
		WHERE account_id = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(accountID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			category string
			event    audit.Event
			aid      *uuid.UUID
		)
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&aid,
			&event.ActorID,
			&event.Action,
			&event.Subject,
			&event.Reason,
			&event.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if aid != nil {
			event.AccountID = id.AccountID(*aid)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
