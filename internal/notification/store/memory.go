package store

import (
	"context"
	"slices"
	"sync"

	"peerhelp/internal/notification/models"
	id "peerhelp/pkg/domain"
	"peerhelp/pkg/platform/sentinel"
)

// InMemory keeps feeds and push subscriptions in process memory.
type InMemory struct {
	mu            sync.RWMutex
	notifications map[id.AccountID][]*models.Notification
	subscriptions map[string]models.Subscription
}

func NewInMemory() *InMemory {
	return &InMemory{
		notifications: make(map[id.AccountID][]*models.Notification),
		subscriptions: make(map[string]models.Subscription),
	}
}

func (s *InMemory) Insert(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.notifications[n.RecipientID] = append(s.notifications[n.RecipientID], &cp)
	return nil
}

// List returns the feed newest first. Later inserts win CreatedAt ties.
func (s *InMemory) List(_ context.Context, q models.ListQuery) (*models.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	feed := make([]models.Notification, 0, len(s.notifications[q.RecipientID]))
	for _, n := range slices.Backward(s.notifications[q.RecipientID]) {
		feed = append(feed, *n)
	}
	slices.SortStableFunc(feed, func(a, b models.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	page := &models.Page{Items: []models.Notification{}}
	for _, n := range feed {
		if !n.Read {
			page.Unread++
		}
	}
	matched := feed
	if q.UnreadOnly {
		matched = slices.DeleteFunc(feed, func(n models.Notification) bool { return n.Read })
	}
	page.Total = len(matched)
	if q.Offset < len(matched) {
		end := min(q.Offset+q.Limit, len(matched))
		page.Items = append(page.Items, matched[q.Offset:end]...)
	}
	return page, nil
}

func (s *InMemory) SetRead(_ context.Context, recipientID id.AccountID, notificationID id.NotificationID, read bool) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications[recipientID] {
		if n.ID == notificationID {
			n.Read = read
			cp := *n
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) MarkAllRead(_ context.Context, recipientID id.AccountID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for _, n := range s.notifications[recipientID] {
		if !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}

func (s *InMemory) DeleteByRecipient(_ context.Context, recipientID id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notifications, recipientID)
	return nil
}

// Upsert stores sub keyed by endpoint. A browser re-subscribing the same
// endpoint replaces the previous owner and keys.
func (s *InMemory) Upsert(_ context.Context, sub models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[sub.Endpoint] = sub
	return nil
}

func (s *InMemory) ListByAccount(_ context.Context, accountID id.AccountID) ([]models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Subscription{}
	for _, sub := range s.subscriptions {
		if sub.AccountID == accountID {
			out = append(out, sub)
		}
	}
	slices.SortFunc(out, func(a, b models.Subscription) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *InMemory) DeleteSubscription(_ context.Context, accountID id.AccountID, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[endpoint]
	if !ok || sub.AccountID != accountID {
		return sentinel.ErrNotFound
	}
	delete(s.subscriptions, endpoint)
	return nil
}

func (s *InMemory) DeleteSubscriptionsByAccount(_ context.Context, accountID id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for endpoint, sub := range s.subscriptions {
		if sub.AccountID == accountID {
			delete(s.subscriptions, endpoint)
		}
	}
	return nil
}
