package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "peerhelp/pkg/domain"
	audit "peerhelp/pkg/platform/audit"
	"peerhelp/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	accountID := id.NewAccountID()
	err := pub.Emit(context.Background(), audit.Event{
		AccountID: accountID,
		Action:    string(audit.EventBanIssued),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), accountID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventBanIssued), events[0].Action)
	assert.Equal(t, audit.CategorySecurity, events[0].Category, "category derived from action")
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	accountID := id.NewAccountID()
	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{
			AccountID: accountID,
			Action:    string(audit.EventDeletionRequested),
		}))
	}

	require.NoError(t, pub.Close())

	events, err := store.ListByAccount(context.Background(), accountID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFullDoesNotBlock(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{
				AccountID: id.NewAccountID(),
				Action:    string(audit.EventAccountRegistered),
			})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_Timestamp(t *testing.T) {
	t.Run("sets missing timestamp", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		pub := NewPublisher(store)
		accountID := id.NewAccountID()

		before := time.Now()
		require.NoError(t, pub.Emit(context.Background(), audit.Event{AccountID: accountID, Action: "x"}))
		after := time.Now()

		events, err := pub.List(context.Background(), accountID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.False(t, events[0].Timestamp.Before(before))
		assert.False(t, events[0].Timestamp.After(after))
	})

	t.Run("preserves existing timestamp", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		pub := NewPublisher(store)
		accountID := id.NewAccountID()
		custom := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, pub.Emit(context.Background(), audit.Event{AccountID: accountID, Action: "x", Timestamp: custom}))

		events, err := pub.List(context.Background(), accountID)
		require.NoError(t, err)
		assert.Equal(t, custom, events[0].Timestamp)
	})
}

type appendOnly struct{}

func (appendOnly) Append(context.Context, audit.Event) error { return nil }

func TestPublisher_ListUnsupported(t *testing.T) {
	pub := NewPublisher(appendOnly{})
	_, err := pub.List(context.Background(), id.NewAccountID())
	assert.Error(t, err)
}
