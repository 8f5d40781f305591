package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"peerhelp/internal/notification/channel/push"
	"peerhelp/internal/notification/dispatcher/mocks"
	"peerhelp/internal/notification/metrics"
	"peerhelp/internal/notification/models"
	"peerhelp/internal/notification/store"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/platform/audit/publisher"
	auditmemory "peerhelp/pkg/platform/audit/store/memory"
	"peerhelp/pkg/platform/sentinel"
	"peerhelp/pkg/requestcontext"
)

type DispatcherSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	ctx        context.Context
	now        time.Time
	store      *store.InMemory
	recipients *mocks.MockRecipientLookup
	push       *mocks.MockPushSender
	direct     *mocks.MockDirectSender
	audit      *auditmemory.InMemoryStore
	metrics    *metrics.Metrics
	dispatcher *Dispatcher
	recipient  models.Recipient
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = store.NewInMemory()
	s.recipients = mocks.NewMockRecipientLookup(s.ctrl)
	s.push = mocks.NewMockPushSender(s.ctrl)
	s.direct = mocks.NewMockDirectSender(s.ctrl)
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.recipient = models.Recipient{ID: id.NewAccountID(), TrustedChannelID: "4242"}

	s.dispatcher = New(s.store, s.recipients,
		WithPush(s.store, s.push),
		WithDirect(s.direct, time.Second),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithMetrics(s.metrics),
	)
}

func (s *DispatcherSuite) expectRecipient(r models.Recipient) {
	s.recipients.EXPECT().Recipient(gomock.Any(), r.ID).Return(&r, nil)
}

func (s *DispatcherSuite) subscribe(accountID id.AccountID, endpoint string) {
	s.Require().NoError(s.store.Upsert(s.ctx, models.Subscription{
		ID: id.NewSubscriptionID(), AccountID: accountID, Endpoint: endpoint, P256dh: "k", Auth: "a", CreatedAt: s.now,
	}))
}

func (s *DispatcherSuite) event() models.Event {
	return models.Event{Recipient: s.recipient.ID, Body: "Your ban was lifted", Category: models.CategoryBanLifted}
}

func (s *DispatcherSuite) feed(accountID id.AccountID) []models.Notification {
	page, err := s.store.List(s.ctx, models.ListQuery{RecipientID: accountID, Limit: 10})
	s.Require().NoError(err)
	return page.Items
}

func (s *DispatcherSuite) TestAllChannels() {
	s.expectRecipient(s.recipient)
	s.subscribe(s.recipient.ID, "https://push.example/a")

	var pushed push.Payload
	s.push.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Subscription, p push.Payload) error {
			pushed = p
			return nil
		})
	var text string
	s.direct.EXPECT().Send(gomock.Any(), "4242", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, t string) error {
			text = t
			return nil
		})

	result, err := s.dispatcher.Dispatch(s.ctx, s.event())
	s.Require().NoError(err)
	s.Require().NoError(s.dispatcher.Drain(context.Background()))

	s.Equal(models.OutcomeDelivered, result.Outcome(models.ChannelInApp))
	s.Equal(models.OutcomeDelivered, result.Outcome(models.ChannelPush))
	s.Equal(models.OutcomeQueued, result.Outcome(models.ChannelDirect))

	s.Equal(s.now, result.Notification.CreatedAt)
	s.True(pushed.CreatedAt.Equal(result.Notification.CreatedAt))
	s.Equal(models.CategoryBanLifted.Title(), pushed.Title)
	s.Contains(text, "2026-03-01T12:00:00Z")
	s.Len(s.feed(s.recipient.ID), 1)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Deliveries.WithLabelValues("direct", "delivered")))
}

func (s *DispatcherSuite) TestPushAndDirectFailuresAreIsolated() {
	s.expectRecipient(s.recipient)
	s.subscribe(s.recipient.ID, "https://push.example/a")
	s.push.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("malformed payload"))
	s.direct.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("bot blocked"))

	result, err := s.dispatcher.Dispatch(s.ctx, s.event())
	s.Require().NoError(err)
	s.Require().NoError(s.dispatcher.Drain(context.Background()))

	s.Equal(models.OutcomeDelivered, result.Outcome(models.ChannelInApp))
	s.Equal(models.OutcomeFailed, result.Outcome(models.ChannelPush))
	s.Len(s.feed(s.recipient.ID), 1)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Deliveries.WithLabelValues("direct", "failed")))
}

func (s *DispatcherSuite) TestPushFanOut() {
	s.Run("one live endpoint is enough", func() {
		r := models.Recipient{ID: id.NewAccountID()}
		s.expectRecipient(r)
		s.subscribe(r.ID, "https://push.example/live")
		s.subscribe(r.ID, "https://push.example/dead")

		s.push.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, sub models.Subscription, _ push.Payload) error {
				if sub.Endpoint == "https://push.example/dead" {
					return push.ErrSubscriptionGone
				}
				return nil
			}).Times(2)

		result, err := s.dispatcher.Dispatch(s.ctx, models.Event{Recipient: r.ID, Body: "hi", Category: models.CategorySystem})
		s.Require().NoError(err)
		s.Equal(models.OutcomeDelivered, result.Outcome(models.ChannelPush))
		s.Equal(models.OutcomeSkipped, result.Outcome(models.ChannelDirect))

		subs, err := s.store.ListByAccount(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Require().Len(subs, 1)
		s.Equal("https://push.example/live", subs[0].Endpoint)
		s.Contains(s.audit.Actions(r.ID), "push_subscription_removed")
	})

	s.Run("no subscriptions skips push", func() {
		r := models.Recipient{ID: id.NewAccountID()}
		s.expectRecipient(r)
		result, err := s.dispatcher.Dispatch(s.ctx, models.Event{Recipient: r.ID, Body: "hi", Category: models.CategorySystem})
		s.Require().NoError(err)
		s.Equal(models.OutcomeSkipped, result.Outcome(models.ChannelPush))
	})
}

func (s *DispatcherSuite) TestInAppFailureIsFatal() {
	feed := mocks.NewMockFeedWriter(s.ctrl)
	d := New(feed, s.recipients, WithPush(s.store, s.push), WithDirect(s.direct, time.Second))
	s.expectRecipient(s.recipient)
	feed.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := d.Dispatch(s.ctx, s.event())
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *DispatcherSuite) TestRejectsBeforeAnyWrite() {
	s.Run("empty body", func() {
		_, err := s.dispatcher.Dispatch(s.ctx, models.Event{Recipient: s.recipient.ID, Body: "  ", Category: models.CategorySystem})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown category", func() {
		_, err := s.dispatcher.Dispatch(s.ctx, models.Event{Recipient: s.recipient.ID, Body: "x", Category: "marketing"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown recipient", func() {
		s.recipients.EXPECT().Recipient(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		_, err := s.dispatcher.Dispatch(s.ctx, s.event())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Empty(s.feed(s.recipient.ID))
}

func (s *DispatcherSuite) TestDuplicateEventsAreNotDeduplicated() {
	r := models.Recipient{ID: id.NewAccountID()}
	s.recipients.EXPECT().Recipient(gomock.Any(), r.ID).Return(&r, nil).Times(2)
	ev := models.Event{Recipient: r.ID, Body: "same", Category: models.CategorySystem}

	_, err := s.dispatcher.Dispatch(s.ctx, ev)
	s.Require().NoError(err)
	_, err = s.dispatcher.Dispatch(s.ctx, ev)
	s.Require().NoError(err)
	s.Len(s.feed(r.ID), 2)
}

func (s *DispatcherSuite) TestDirectSendOutlivesRequest() {
	s.expectRecipient(s.recipient)
	release := make(chan struct{})
	s.direct.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string) error {
			<-release
			return ctx.Err()
		})

	ctx, cancel := context.WithCancel(s.ctx)
	_, err := s.dispatcher.Dispatch(ctx, s.event())
	s.Require().NoError(err)
	cancel()
	close(release)

	s.Require().NoError(s.dispatcher.Drain(context.Background()))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Deliveries.WithLabelValues("direct", "delivered")))
}

func (s *DispatcherSuite) TestDirectSendIsBounded() {
	d := New(s.store, s.recipients, WithDirect(s.direct, 20*time.Millisecond))
	s.expectRecipient(s.recipient)
	s.direct.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string) error {
			<-ctx.Done()
			return ctx.Err()
		})

	_, err := d.Dispatch(s.ctx, s.event())
	s.Require().NoError(err)

	drainCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.NoError(d.Drain(drainCtx))
}

func (s *DispatcherSuite) TestDeliverDirect() {
	s.Run("synchronous send", func() {
		s.direct.EXPECT().Send(gomock.Any(), "4242", "code 123456").Return(nil)
		s.NoError(s.dispatcher.DeliverDirect(s.ctx, "4242", "code 123456"))
	})

	s.Run("failure is returned", func() {
		s.direct.EXPECT().Send(gomock.Any(), "4242", gomock.Any()).Return(errors.New("timeout"))
		s.Error(s.dispatcher.DeliverDirect(s.ctx, "4242", "x"))
	})

	s.Run("unconfigured channel", func() {
		d := New(s.store, s.recipients)
		s.ErrorIs(d.DeliverDirect(s.ctx, "4242", "x"), ErrDirectUnavailable)
	})
}

func TestFormatDirect(t *testing.T) {
	created := time.Date(2026, 3, 1, 13, 0, 0, 0, time.FixedZone("CET", 3600))
	got := FormatDirect(push.Payload{Title: "Title", Body: "Body", CreatedAt: created})
	if got != "Title\n\nBody\n\n2026-03-01T12:00:00Z" {
		t.Fatalf("unexpected direct text %q", got)
	}
}
