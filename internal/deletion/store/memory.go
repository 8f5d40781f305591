// Package store keeps pending deletion requests. Records live for a retention
// window longer than the code TTL so a late confirmation still sees the
// expired or exhausted record instead of nothing.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"peerhelp/internal/deletion/models"
	id "peerhelp/pkg/domain"
	"peerhelp/pkg/platform/keylock"
	"peerhelp/pkg/platform/sentinel"
	"peerhelp/pkg/requestcontext"
)

type entry struct {
	req     models.PendingDeletionRequest
	evictAt time.Time
}

// InMemory evicts lazily against the request clock.
type InMemory struct {
	mu      sync.Mutex
	entries map[id.AccountID]entry
	locks   *keylock.Locker
}

func NewInMemory() *InMemory {
	return &InMemory{
		entries: make(map[id.AccountID]entry),
		locks:   keylock.New(0),
	}
}

// Replace stores req for retain, dropping any previous request of the account.
func (s *InMemory) Replace(ctx context.Context, req *models.PendingDeletionRequest, retain time.Duration) error {
	return s.locks.Do(ctx, req.AccountID.String(), func(ctx context.Context) error {
		s.put(req.AccountID, entry{req: clone(req), evictAt: requestcontext.Now(ctx).Add(retain)})
		return nil
	})
}

// Apply runs decide on the current record under the account lock and writes
// the returned change. decide's error is returned after the change is applied.
func (s *InMemory) Apply(ctx context.Context, accountID id.AccountID, decide func(*models.PendingDeletionRequest) (models.Change, error)) error {
	return s.locks.Do(ctx, accountID.String(), func(ctx context.Context) error {
		e, ok := s.get(ctx, accountID)
		if !ok {
			return sentinel.ErrNotFound
		}
		current := clone(&e.req)
		change, decideErr := decide(&current)
		switch {
		case change.Delete:
			s.remove(accountID)
		case change.Save != nil:
			s.put(accountID, entry{req: clone(change.Save), evictAt: e.evictAt})
		}
		return decideErr
	})
}

// Delete drops any record for the account. Missing records are not an error.
func (s *InMemory) Delete(ctx context.Context, accountID id.AccountID) error {
	return s.locks.Do(ctx, accountID.String(), func(context.Context) error {
		s.remove(accountID)
		return nil
	})
}

func (s *InMemory) get(ctx context.Context, accountID id.AccountID) (entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[accountID]
	if !ok {
		return entry{}, false
	}
	if !requestcontext.Now(ctx).Before(e.evictAt) {
		delete(s.entries, accountID)
		return entry{}, false
	}
	return e, true
}

func (s *InMemory) put(accountID id.AccountID, e entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[accountID] = e
}

func (s *InMemory) remove(accountID id.AccountID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, accountID)
}

func clone(req *models.PendingDeletionRequest) models.PendingDeletionRequest {
	out := *req
	out.CodeHash = slices.Clone(req.CodeHash)
	return out
}
