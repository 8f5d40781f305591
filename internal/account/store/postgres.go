package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"peerhelp/internal/account/models"
	id "peerhelp/pkg/domain"
	"peerhelp/pkg/platform/sentinel"
)

// PostgresStore keeps accounts in the accounts table. Execute takes a row
// lock with SELECT ... FOR UPDATE so concurrent mutations of one account
// queue behind each other.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectAccount = `
	SELECT id, display_name, email, roles, trusted_channel_id,
	       suspicion_score, suspicion_log,
	       ban_reason, ban_issued_by, ban_issued_at, ban_expires_at,
	       created_at, updated_at
	FROM accounts
	WHERE id = $1`

type rowScanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) Create(ctx context.Context, a *models.Account) error {
	logJSON, err := json.Marshal(logOrEmpty(a.SuspicionLog))
	if err != nil {
		return fmt.Errorf("marshal suspicion log: %w", err)
	}
	ban := banColumns(a.Ban)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, display_name, email, roles, trusted_channel_id,
			suspicion_score, suspicion_log,
			ban_reason, ban_issued_by, ban_issued_at, ban_expires_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.UUID(a.ID), a.DisplayName, a.Email, pq.Array(rolesToStrings(a.Roles)), nullString(a.TrustedChannelID),
		a.SuspicionScore, logJSON,
		ban.reason, ban.issuedBy, ban.issuedAt, ban.expiresAt,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	return s.find(ctx, s.db, selectAccount, accountID)
}

func (s *PostgresStore) Execute(ctx context.Context, accountID id.AccountID, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin account tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.find(ctx, tx, selectAccount+" FOR UPDATE", accountID)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(current); err != nil {
			return nil, err
		}
	}
	mutate(current)

	if err := s.update(ctx, tx, current); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit account tx: %w", err)
	}
	return current, nil
}

func (s *PostgresStore) Delete(ctx context.Context, accountID id.AccountID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, uuid.UUID(accountID))
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) update(ctx context.Context, tx *sql.Tx, a *models.Account) error {
	logJSON, err := json.Marshal(logOrEmpty(a.SuspicionLog))
	if err != nil {
		return fmt.Errorf("marshal suspicion log: %w", err)
	}
	ban := banColumns(a.Ban)
	_, err = tx.ExecContext(ctx, `
		UPDATE accounts SET
			display_name = $2, email = $3, roles = $4, trusted_channel_id = $5,
			suspicion_score = $6, suspicion_log = $7,
			ban_reason = $8, ban_issued_by = $9, ban_issued_at = $10, ban_expires_at = $11,
			updated_at = $12
		WHERE id = $1`,
		uuid.UUID(a.ID), a.DisplayName, a.Email, pq.Array(rolesToStrings(a.Roles)), nullString(a.TrustedChannelID),
		a.SuspicionScore, logJSON,
		ban.reason, ban.issuedBy, ban.issuedAt, ban.expiresAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

func (s *PostgresStore) find(ctx context.Context, q queryer, query string, accountID id.AccountID) (*models.Account, error) {
	a, err := scanAccount(q.QueryRowContext(ctx, query, uuid.UUID(accountID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a         models.Account
		accountID uuid.UUID
		roles     []string
		channel   sql.NullString
		logJSON   []byte
		banReason sql.NullString
		banBy     uuid.NullUUID
		banAt     sql.NullTime
		banUntil  sql.NullTime
	)
	if err := row.Scan(
		&accountID, &a.DisplayName, &a.Email, pq.Array(&roles), &channel,
		&a.SuspicionScore, &logJSON,
		&banReason, &banBy, &banAt, &banUntil,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.ID = id.AccountID(accountID)
	a.TrustedChannelID = channel.String
	for _, r := range roles {
		a.Roles = append(a.Roles, models.Role(r))
	}
	if err := json.Unmarshal(logJSON, &a.SuspicionLog); err != nil {
		return nil, fmt.Errorf("decode suspicion log: %w", err)
	}
	if banReason.Valid {
		a.Ban = &models.BanRecord{
			Reason:   banReason.String,
			IssuedBy: id.AccountID(banBy.UUID),
			IssuedAt: banAt.Time,
		}
		if banUntil.Valid {
			exp := banUntil.Time
			a.Ban.ExpiresAt = &exp
		}
	}
	return &a, nil
}

type banCols struct {
	reason    sql.NullString
	issuedBy  uuid.NullUUID
	issuedAt  sql.NullTime
	expiresAt sql.NullTime
}

func banColumns(b *models.BanRecord) banCols {
	if b == nil {
		return banCols{}
	}
	cols := banCols{
		reason:   sql.NullString{String: b.Reason, Valid: true},
		issuedBy: uuid.NullUUID{UUID: uuid.UUID(b.IssuedBy), Valid: true},
		issuedAt: sql.NullTime{Time: b.IssuedAt, Valid: true},
	}
	if b.ExpiresAt != nil {
		cols.expiresAt = sql.NullTime{Time: *b.ExpiresAt, Valid: true}
	}
	return cols
}

func rolesToStrings(roles []models.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func logOrEmpty(log []models.SuspicionEntry) []models.SuspicionEntry {
	if log == nil {
		return []models.SuspicionEntry{}
	}
	return log
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
