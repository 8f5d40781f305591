//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"peerhelp/internal/account/models"
	"peerhelp/internal/account/store"
	"peerhelp/internal/platform/postgres"
	id "peerhelp/pkg/domain"
	"peerhelp/pkg/platform/sentinel"
	"peerhelp/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	store *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()
	pg := containers.NewPostgresContainer(s.T())
	db, err := postgres.Open(ctx, pg.DSN)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })
	s.Require().NoError(postgres.Migrate(ctx, db))
	s.store = store.NewPostgres(db)
}

func newTestAccount() *models.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Account{
		ID:             id.NewAccountID(),
		DisplayName:    "Grace",
		Email:          "grace@example.com",
		Roles:          []models.Role{models.RoleUser, models.RoleHelper},
		SuspicionScore: 15,
		SuspicionLog:   []models.SuspicionEntry{{RuleID: "ip_hosting", Reason: "hosting", Points: 15, RecordedAt: now}},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	a := newTestAccount()
	s.Require().NoError(s.store.Create(ctx, a))
	s.ErrorIs(s.store.Create(ctx, a), sentinel.ErrConflict)

	found, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(a.Roles, found.Roles)
	s.Equal(a.SuspicionLog[0].RuleID, found.SuspicionLog[0].RuleID)
	s.Nil(found.Ban)
	s.Empty(found.TrustedChannelID)
}

func (s *PostgresStoreSuite) TestExecuteBanLifecycle() {
	ctx := context.Background()
	a := newTestAccount()
	s.Require().NoError(s.store.Create(ctx, a))

	moderator := id.NewAccountID()
	expires := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
	updated, err := s.store.Execute(ctx, a.ID, nil, func(acc *models.Account) {
		acc.Ban = &models.BanRecord{Reason: "spam", IssuedBy: moderator, IssuedAt: time.Now().UTC(), ExpiresAt: &expires}
	})
	s.Require().NoError(err)
	s.NotNil(updated.Ban)

	found, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.Ban)
	s.Equal(moderator, found.Ban.IssuedBy)
	s.True(expires.Equal(*found.Ban.ExpiresAt))

	_, err = s.store.Execute(ctx, a.ID, nil, func(acc *models.Account) { acc.Ban = nil })
	s.Require().NoError(err)
	found, err = s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Nil(found.Ban)
}

func (s *PostgresStoreSuite) TestExecuteSerializesWriters() {
	ctx := context.Background()
	a := newTestAccount()
	a.SuspicionScore = 0
	s.Require().NoError(s.store.Create(ctx, a))

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, a.ID, nil, func(acc *models.Account) { acc.SuspicionScore++ })
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(workers, found.SuspicionScore)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	a := newTestAccount()
	s.Require().NoError(s.store.Create(ctx, a))
	s.Require().NoError(s.store.Delete(ctx, a.ID))
	s.ErrorIs(s.store.Delete(ctx, a.ID), sentinel.ErrNotFound)
	_, err := s.store.Execute(ctx, a.ID, nil, func(*models.Account) {})
	s.ErrorIs(err, sentinel.ErrNotFound)
}
