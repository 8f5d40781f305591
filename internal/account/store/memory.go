// Package store persists accounts. Both implementations serialize
// read-validate-mutate cycles per account through Execute.
package store

import (
	"context"
	"sync"

	"peerhelp/internal/account/models"
	id "peerhelp/pkg/domain"
	"peerhelp/pkg/platform/keylock"
	"peerhelp/pkg/platform/sentinel"
)

// InMemory is the development and test store.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]*models.Account
	locks    *keylock.Locker
}

func NewInMemory() *InMemory {
	return &InMemory{
		accounts: make(map[id.AccountID]*models.Account),
		locks:    keylock.New(0),
	}
}

func (s *InMemory) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.ID]; exists {
		return sentinel.ErrConflict
	}
	s.accounts[account.ID] = account.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return a.Clone(), nil
}

// Execute loads the account under its per-account lock, runs validate, and
// if that passes applies mutate and saves. validate errors are returned as-is
// and nothing is written.
func (s *InMemory) Execute(ctx context.Context, accountID id.AccountID, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error) {
	var out *models.Account
	err := s.locks.Do(ctx, accountID.String(), func(ctx context.Context) error {
		current, err := s.FindByID(ctx, accountID)
		if err != nil {
			return err
		}
		if validate != nil {
			if err := validate(current); err != nil {
				return err
			}
		}
		mutate(current)

		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.accounts[accountID]; !ok {
			return sentinel.ErrNotFound
		}
		s.accounts[accountID] = current.Clone()
		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *InMemory) Delete(ctx context.Context, accountID id.AccountID) error {
	return s.locks.Do(ctx, accountID.String(), func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.accounts[accountID]; !ok {
			return sentinel.ErrNotFound
		}
		delete(s.accounts, accountID)
		return nil
	})
}
