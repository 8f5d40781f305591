package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"peerhelp/internal/notification/models"
	id "peerhelp/pkg/domain"
	"peerhelp/pkg/platform/sentinel"
)

// PostgresStore persists feeds and push subscriptions through a pgx pool.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectNotification = `
	SELECT id, recipient_id, sender_id, body, category, url, read, created_at
	FROM notifications`

func (s *PostgresStore) Insert(ctx context.Context, n *models.Notification) error {
	var sender *uuid.UUID
	if n.SenderID != nil {
		u := uuid.UUID(*n.SenderID)
		sender = &u
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO notifications (id, recipient_id, sender_id, body, category, url, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(n.ID),
		uuid.UUID(n.RecipientID),
		sender,
		n.Body,
		string(n.Category),
		n.URL,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, q models.ListQuery) (*models.Page, error) {
	page := &models.Page{Items: []models.Notification{}}
	recipient := uuid.UUID(q.RecipientID)

	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE $2::boolean = FALSE OR NOT read),
		       COUNT(*) FILTER (WHERE NOT read)
		FROM notifications
		WHERE recipient_id = $1`,
		recipient, q.UnreadOnly,
	).Scan(&page.Total, &page.Unread)
	if err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	rows, err := s.db.Query(ctx, selectNotification+`
		WHERE recipient_id = $1 AND ($2::boolean = FALSE OR NOT read)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		recipient, q.UnreadOnly, q.Limit, q.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return page, nil
}

func (s *PostgresStore) SetRead(ctx context.Context, recipientID id.AccountID, notificationID id.NotificationID, read bool) (*models.Notification, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE notifications SET read = $3
		WHERE id = $1 AND recipient_id = $2
		RETURNING id, recipient_id, sender_id, body, category, url, read, created_at`,
		uuid.UUID(notificationID), uuid.UUID(recipientID), read,
	)
	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return n, err
}

func (s *PostgresStore) MarkAllRead(ctx context.Context, recipientID id.AccountID) (int, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND NOT read`,
		uuid.UUID(recipientID),
	)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) DeleteByRecipient(ctx context.Context, recipientID id.AccountID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE recipient_id = $1`, uuid.UUID(recipientID)); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, sub models.Subscription) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO push_subscriptions (id, account_id, endpoint, p256dh, auth, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (endpoint) DO UPDATE
		SET account_id = EXCLUDED.account_id,
		    p256dh = EXCLUDED.p256dh,
		    auth = EXCLUDED.auth`,
		uuid.UUID(sub.ID),
		uuid.UUID(sub.AccountID),
		sub.Endpoint,
		sub.P256dh,
		sub.Auth,
		sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert push subscription: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByAccount(ctx context.Context, accountID id.AccountID) ([]models.Subscription, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, account_id, endpoint, p256dh, auth, created_at
		FROM push_subscriptions
		WHERE account_id = $1
		ORDER BY created_at`,
		uuid.UUID(accountID),
	)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	out := []models.Subscription{}
	for rows.Next() {
		var subID, owner uuid.UUID
		var sub models.Subscription
		if err := rows.Scan(&subID, &owner, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		sub.ID = id.SubscriptionID(subID)
		sub.AccountID = id.AccountID(owner)
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) DeleteSubscription(ctx context.Context, accountID id.AccountID, endpoint string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM push_subscriptions WHERE account_id = $1 AND endpoint = $2`,
		uuid.UUID(accountID), endpoint,
	)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteSubscriptionsByAccount(ctx context.Context, accountID id.AccountID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM push_subscriptions WHERE account_id = $1`, uuid.UUID(accountID)); err != nil {
		return fmt.Errorf("delete push subscriptions: %w", err)
	}
	return nil
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var (
		n                   models.Notification
		notificationID, rid uuid.UUID
		sender              *uuid.UUID
		category            string
	)
	err := row.Scan(&notificationID, &rid, &sender, &n.Body, &category, &n.URL, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	n.ID = id.NotificationID(notificationID)
	n.RecipientID = id.AccountID(rid)
	n.Category = models.Category(category)
	if sender != nil {
		s := id.AccountID(*sender)
		n.SenderID = &s
	}
	return &n, nil
}
