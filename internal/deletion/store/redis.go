package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"peerhelp/internal/deletion/models"
	id "peerhelp/pkg/domain"
	"peerhelp/pkg/platform/sentinel"
)

const keyPrefix = "deletion:pending:"

// Redis stores one JSON record per account (deletion:pending:<id>) and relies
// on key expiry for retention. Apply is a WATCH/MULTI compare-and-set: a
// concurrent write to the same key fails the transaction with ErrConflict.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func key(accountID id.AccountID) string {
	return keyPrefix + accountID.String()
}

func (s *Redis) Replace(ctx context.Context, req *models.PendingDeletionRequest, retain time.Duration) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode pending deletion: %w", err)
	}
	if err := s.client.Set(ctx, key(req.AccountID), raw, retain).Err(); err != nil {
		return fmt.Errorf("store pending deletion: %w", err)
	}
	return nil
}

func (s *Redis) Apply(ctx context.Context, accountID id.AccountID, decide func(*models.PendingDeletionRequest) (models.Change, error)) error {
	k := key(accountID)
	var decideErr error
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load pending deletion: %w", err)
		}
		var current models.PendingDeletionRequest
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("decode pending deletion: %w", err)
		}

		var change models.Change
		change, decideErr = decide(&current)
		if !change.Delete && change.Save == nil {
			return nil
		}

		var next []byte
		if change.Save != nil && !change.Delete {
			if next, err = json.Marshal(change.Save); err != nil {
				return fmt.Errorf("encode pending deletion: %w", err)
			}
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			if change.Delete {
				p.Del(ctx, k)
				return nil
			}
			p.SetArgs(ctx, k, next, redis.SetArgs{KeepTTL: true})
			return nil
		})
		return err
	}, k)
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("pending deletion changed concurrently: %w", sentinel.ErrConflict)
	case err != nil:
		return err
	}
	return decideErr
}

func (s *Redis) Delete(ctx context.Context, accountID id.AccountID) error {
	if err := s.client.Del(ctx, key(accountID)).Err(); err != nil {
		return fmt.Errorf("delete pending deletion: %w", err)
	}
	return nil
}
