package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"peerhelp/internal/account/metrics"
	"peerhelp/internal/account/models"
	"peerhelp/internal/account/service/mocks"
	"peerhelp/internal/account/store"
	"peerhelp/internal/scoring"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/platform/audit/publisher"
	auditmemory "peerhelp/pkg/platform/audit/store/memory"
	"peerhelp/pkg/platform/sentinel"
	"peerhelp/pkg/requestcontext"
)

type stubCollector struct {
	signals *scoring.Signals
	calls   int
}

func (c *stubCollector) Collect(context.Context, string, string) *scoring.Signals {
	c.calls++
	return c.signals
}

type AccountServiceSuite struct {
	suite.Suite
	ctx       context.Context
	now       time.Time
	store     *store.InMemory
	audit     *auditmemory.InMemoryStore
	collector *stubCollector
	metrics   *metrics.Metrics
	service   *Service
}

func TestAccountServiceSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceSuite))
}

func (s *AccountServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = store.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	s.collector = &stubCollector{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.store,
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithSignalCollector(s.collector),
		WithMetrics(s.metrics),
	)
}

func (s *AccountServiceSuite) register() *models.Account {
	a, err := s.service.Register(s.ctx, models.RegisterRequest{DisplayName: "Ada", Email: "ada@example.com"})
	s.Require().NoError(err)
	return a
}

func (s *AccountServiceSuite) at(offset time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(offset))
}

func (s *AccountServiceSuite) TestRegister() {
	s.Run("clean signals score zero and start read-only", func() {
		s.collector.signals = &scoring.Signals{}
		a := s.register()

		s.Equal(0, a.SuspicionScore)
		s.Empty(a.SuspicionLog)
		s.Equal([]models.Role{models.RoleUser}, a.Roles)
		s.Equal(models.StateReadOnly, models.ComputeState(a, s.now))
		s.Equal([]string{"account_registered", "suspicion_scored"}, s.audit.Actions(a.ID))
	})

	s.Run("hosting and automated client fire in catalog order", func() {
		s.collector.signals = &scoring.Signals{Hosting: true, AutomatedClient: true}
		a := s.register()

		s.Equal(25, a.SuspicionScore)
		s.Require().Len(a.SuspicionLog, 2)
		s.Equal(scoring.RuleIPHosting, a.SuspicionLog[0].RuleID)
		s.Equal(scoring.RuleAutomatedClient, a.SuspicionLog[1].RuleID)
		s.Equal(s.now, a.SuspicionLog[0].RecordedAt)
	})

	s.Run("missing signals score zero", func() {
		s.collector.signals = nil
		a := s.register()
		s.Equal(0, a.SuspicionScore)
		s.NotNil(a.SuspicionLog)
	})

	s.Run("score does not gate the account", func() {
		s.collector.signals = &scoring.Signals{Hosting: true, Proxy: true, AutomatedClient: true}
		a := s.register()
		s.Equal(45, a.SuspicionScore)
		_, err := s.service.LinkTrustedChannel(s.ctx, a.ID, "1001")
		s.Require().NoError(err)
		s.NoError(s.service.RequireCapability(s.ctx, a.ID, models.CapabilityPostRequest))
	})

	s.Run("custom catalog replaces the default rules", func() {
		svc := New(s.store,
			WithSignalCollector(s.collector),
			WithScorer(scoring.NewEngine(scoring.Rule{
				ID:      "proxy_only",
				Points:  50,
				Reason:  "proxy",
				Applies: func(sig scoring.Signals) bool { return sig.Proxy },
			})),
		)
		s.collector.signals = &scoring.Signals{Hosting: true, Proxy: true}
		a, err := svc.Register(s.ctx, models.RegisterRequest{DisplayName: "Bo", Email: "bo@example.com"})
		s.Require().NoError(err)

		s.Equal(50, a.SuspicionScore)
		s.Require().Len(a.SuspicionLog, 1)
		s.Equal("proxy_only", a.SuspicionLog[0].RuleID)
	})

	s.Run("invalid request is rejected before signals are collected", func() {
		calls := s.collector.calls
		_, err := s.service.Register(s.ctx, models.RegisterRequest{DisplayName: " ", Email: "ada@example.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Equal(calls, s.collector.calls)
	})

	s.Run("counts registrations", func() {
		before := promtest.ToFloat64(s.metrics.AccountsRegistered)
		s.register()
		s.Equal(before+1, promtest.ToFloat64(s.metrics.AccountsRegistered))
	})
}

func (s *AccountServiceSuite) TestTrustedChannel() {
	s.Run("linking makes the account active", func() {
		a := s.register()
		_, err := s.service.LinkTrustedChannel(s.ctx, a.ID, "123456789")
		s.Require().NoError(err)

		status, err := s.service.TrustStatus(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal(models.StateActive, status.State)
		s.Nil(status.Ban)
		s.Contains(s.audit.Actions(a.ID), "trusted_channel_linked")
	})

	s.Run("relinking replaces the chat id", func() {
		a := s.register()
		_, err := s.service.LinkTrustedChannel(s.ctx, a.ID, "1")
		s.Require().NoError(err)
		updated, err := s.service.LinkTrustedChannel(s.ctx, a.ID, "2")
		s.Require().NoError(err)
		s.Equal("2", updated.TrustedChannelID)
	})

	s.Run("malformed chat id is invalid input", func() {
		a := s.register()
		_, err := s.service.LinkTrustedChannel(s.ctx, a.ID, "not-a-number")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown account is not found", func() {
		_, err := s.service.LinkTrustedChannel(s.ctx, id.NewAccountID(), "1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("holder can unlink and drops to read-only", func() {
		a := s.register()
		_, err := s.service.LinkTrustedChannel(s.ctx, a.ID, "1")
		s.Require().NoError(err)

		updated, err := s.service.UnlinkTrustedChannel(s.ctx, models.Actor{ID: a.ID}, a.ID)
		s.Require().NoError(err)
		s.Equal(models.StateReadOnly, models.ComputeState(updated, s.now))
	})

	s.Run("another user cannot unlink", func() {
		a := s.register()
		_, err := s.service.UnlinkTrustedChannel(s.ctx, models.Actor{ID: id.NewAccountID(), Roles: []string{"moderator"}}, a.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin unlink clears an elapsed ban", func() {
		a := s.register()
		expired := s.now.Add(-time.Minute)
		_, err := s.store.Execute(s.ctx, a.ID, nil, func(acc *models.Account) {
			acc.Ban = &models.BanRecord{Reason: "spam", IssuedBy: id.NewAccountID(), IssuedAt: s.now.Add(-time.Hour), ExpiresAt: &expired}
		})
		s.Require().NoError(err)

		admin := models.Actor{ID: id.NewAccountID(), Roles: []string{"admin"}}
		updated, err := s.service.UnlinkTrustedChannel(s.ctx, admin, a.ID)
		s.Require().NoError(err)
		s.Nil(updated.Ban)
		s.Contains(s.audit.Actions(a.ID), "ban_expired_cleared")
	})
}

func (s *AccountServiceSuite) TestRequireCapability() {
	s.Run("read-only account may browse but not post", func() {
		a := s.register()
		s.NoError(s.service.RequireCapability(s.ctx, a.ID, models.CapabilityBrowse))
		s.NoError(s.service.RequireCapability(s.ctx, a.ID, models.CapabilityLinkChannel))

		err := s.service.RequireCapability(s.ctx, a.ID, models.CapabilityPostRequest)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Contains(dErrors.MessageOf(err), "read-only")
		s.Equal(1.0, promtest.ToFloat64(s.metrics.CapabilityDenied.WithLabelValues("post_request", "READ_ONLY")))
		s.Contains(s.audit.Actions(a.ID), "capability_denied")
	})

	s.Run("temporary ban blocks writes until it elapses", func() {
		a := s.register()
		_, err := s.service.LinkTrustedChannel(s.ctx, a.ID, "1")
		s.Require().NoError(err)
		expires := s.now.Add(time.Hour)
		_, err = s.store.Execute(s.ctx, a.ID, nil, func(acc *models.Account) {
			acc.Ban = &models.BanRecord{Reason: "spam", IssuedBy: id.NewAccountID(), IssuedAt: s.now, ExpiresAt: &expires}
		})
		s.Require().NoError(err)

		err = s.service.RequireCapability(s.ctx, a.ID, models.CapabilitySendMessage)
		s.Contains(dErrors.MessageOf(err), "banned")
		s.Error(s.service.RequireCapability(s.ctx, a.ID, models.CapabilityEditProfile))
		s.NoError(s.service.RequireCapability(s.ctx, a.ID, models.CapabilityAppeal))

		later := s.at(61 * time.Minute)
		s.NoError(s.service.RequireCapability(later, a.ID, models.CapabilitySendMessage))
		status, err := s.service.TrustStatus(later, a.ID)
		s.Require().NoError(err)
		s.Equal(models.StateActive, status.State)
		s.Nil(status.Ban)
	})

	s.Run("unknown account is not found", func() {
		err := s.service.RequireCapability(s.ctx, id.NewAccountID(), models.CapabilityBrowse)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *AccountServiceSuite) TestAdminView() {
	s.Run("moderator sees score and log", func() {
		s.collector.signals = &scoring.Signals{Proxy: true}
		a := s.register()

		view, err := s.service.AdminView(s.ctx, models.Actor{ID: id.NewAccountID(), Roles: []string{"moderator"}}, a.ID)
		s.Require().NoError(err)
		s.Equal(20, view.Account.SuspicionScore)
		s.Equal(models.StateReadOnly, view.State)
	})

	s.Run("plain user is forbidden", func() {
		a := s.register()
		_, err := s.service.AdminView(s.ctx, models.Actor{ID: a.ID, Roles: []string{"user"}}, a.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *AccountServiceSuite) TestDeleteAccount() {
	s.Run("purges other modules then removes the account", func() {
		ctrl := gomock.NewController(s.T())
		purger := mocks.NewMockDataPurger(ctrl)
		svc := New(s.store, WithDataPurger(purger), WithAuditPublisher(publisher.NewPublisher(s.audit)))

		a := s.register()
		purger.EXPECT().PurgeAccount(gomock.Any(), a.ID).Return(nil)

		s.Require().NoError(svc.DeleteAccount(s.ctx, a.ID))
		_, err := svc.Get(s.ctx, a.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Contains(s.audit.Actions(a.ID), "account_deleted")
	})

	s.Run("purge failure keeps the account", func() {
		ctrl := gomock.NewController(s.T())
		purger := mocks.NewMockDataPurger(ctrl)
		svc := New(s.store, WithDataPurger(purger))

		a := s.register()
		purger.EXPECT().PurgeAccount(gomock.Any(), a.ID).Return(errors.New("db down"))

		err := svc.DeleteAccount(s.ctx, a.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		_, err = svc.Get(s.ctx, a.ID)
		s.NoError(err)
	})

	s.Run("unknown account is not found and nothing is purged", func() {
		ctrl := gomock.NewController(s.T())
		purger := mocks.NewMockDataPurger(ctrl)
		svc := New(s.store, WithDataPurger(purger))

		err := svc.DeleteAccount(s.ctx, id.NewAccountID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *AccountServiceSuite) TestStoreFailures() {
	ctrl := gomock.NewController(s.T())
	st := mocks.NewMockStore(ctrl)
	svc := New(st)

	s.Run("create conflict maps to conflict", func() {
		st.EXPECT().Create(gomock.Any(), gomock.Any()).Return(fmt.Errorf("insert account: %w", sentinel.ErrConflict))
		_, err := svc.Register(s.ctx, models.RegisterRequest{DisplayName: "Ada", Email: "ada@example.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unexpected load failure is internal", func() {
		st.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
		_, err := svc.TrustStatus(s.ctx, id.NewAccountID())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
