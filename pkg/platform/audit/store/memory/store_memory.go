package memory

import (
	"context"
	"sync"

	id "peerhelp/pkg/domain"
	audit "peerhelp/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.AccountID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.AccountID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.AccountID] = append(s.events[event.AccountID], event)
	return nil
}

func (s *InMemoryStore) ListByAccount(_ context.Context, accountID id.AccountID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[accountID]...), nil
}

// Actions returns the action names recorded for an account, in order.
// Handy in tests asserting which audit events a flow produced.
func (s *InMemoryStore) Actions(accountID id.AccountID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.events[accountID]))
	for _, e := range s.events[accountID] {
		out = append(out, e.Action)
	}
	return out
}
