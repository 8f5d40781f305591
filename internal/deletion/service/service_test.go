package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	accountmodels "peerhelp/internal/account/models"
	accountstore "peerhelp/internal/account/store"
	"peerhelp/internal/deletion/metrics"
	"peerhelp/internal/deletion/models"
	"peerhelp/internal/deletion/service/mocks"
	"peerhelp/internal/deletion/store"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/platform/audit/publisher"
	auditmemory "peerhelp/pkg/platform/audit/store/memory"
	"peerhelp/pkg/platform/sentinel"
	"peerhelp/pkg/requestcontext"
)

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

type DeletionServiceSuite struct {
	suite.Suite
	now       time.Time
	accounts  *accountstore.InMemory
	pending   *store.InMemory
	messenger *mocks.MockMessenger
	audit     *auditmemory.InMemoryStore
	metrics   *metrics.Metrics
	codes     []string
	service   *Service
}

func TestDeletionServiceSuite(t *testing.T) {
	suite.Run(t, new(DeletionServiceSuite))
}

func (s *DeletionServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.accounts = accountstore.NewInMemory()
	s.pending = store.NewInMemory()
	s.messenger = mocks.NewMockMessenger(gomock.NewController(s.T()))
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.codes = []string{"111111", "222222", "333333"}
	s.service = New(s.pending, s.accounts, s.messenger,
		WithHashCost(bcrypt.MinCost),
		WithCodeTTL(10*time.Minute),
		WithMaxAttempts(3),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithMetrics(s.metrics),
		WithCodeGenerator(func() (string, error) {
			next := s.codes[0]
			s.codes = s.codes[1:]
			return next, nil
		}),
	)
}

func (s *DeletionServiceSuite) at(offset time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(offset))
}

func (s *DeletionServiceSuite) newAccount(chatID string) id.AccountID {
	a := &accountmodels.Account{
		ID:               id.NewAccountID(),
		DisplayName:      "Ada",
		Email:            "ada@example.com",
		Roles:            []accountmodels.Role{accountmodels.RoleUser},
		TrustedChannelID: chatID,
		CreatedAt:        s.now,
	}
	s.Require().NoError(s.accounts.Create(context.Background(), a))
	return a.ID
}

func (s *DeletionServiceSuite) expectDelivery(chatID string, times int) {
	s.messenger.EXPECT().DeliverDirect(gomock.Any(), chatID, gomock.Any()).Return(nil).Times(times)
}

func (s *DeletionServiceSuite) TestRequestRequiresTrustedChannel() {
	accountID := s.newAccount("")

	_, err := s.service.RequestDeletion(s.at(0), accountID)
	s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))

	err = s.service.ConfirmDeletion(s.at(0), accountID, "111111")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "no pending request was created")
	s.Empty(s.audit.Actions(accountID))
}

func (s *DeletionServiceSuite) TestRequestUnknownAccount() {
	_, err := s.service.RequestDeletion(s.at(0), id.NewAccountID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DeletionServiceSuite) TestCodeGoesToTrustedChannelOnly() {
	accountID := s.newAccount("4242")
	var text string
	s.messenger.EXPECT().DeliverDirect(gomock.Any(), "4242", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, t string) error {
			text = t
			return nil
		})

	res, err := s.service.RequestDeletion(s.at(0), accountID)
	s.Require().NoError(err)
	s.True(res.Delivered)
	s.Equal(3, res.AttemptsRemaining)
	s.Equal(s.now.Add(10*time.Minute), res.ExpiresAt)
	s.Equal([]string{"111111"}, codePattern.FindAllString(text, -1))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.CodesIssued.WithLabelValues("delivered")))
}

func (s *DeletionServiceSuite) TestConfirm() {
	accountID := s.newAccount("4242")
	s.expectDelivery("4242", 1)
	_, err := s.service.RequestDeletion(s.at(0), accountID)
	s.Require().NoError(err)

	s.Require().NoError(s.service.ConfirmDeletion(s.at(time.Minute), accountID, "111111"))
	s.Equal([]string{"deletion_requested", "deletion_confirmed"}, s.audit.Actions(accountID))

	err = s.service.ConfirmDeletion(s.at(time.Minute), accountID, "111111")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "request is destroyed on success")
}

func (s *DeletionServiceSuite) TestPurgeAccountDropsPendingRequest() {
	accountID := s.newAccount("4242")
	s.expectDelivery("4242", 1)
	_, err := s.service.RequestDeletion(s.at(0), accountID)
	s.Require().NoError(err)

	s.Require().NoError(s.service.PurgeAccount(s.at(time.Minute), accountID))
	err = s.service.ConfirmDeletion(s.at(time.Minute), accountID, "111111")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.NoError(s.service.PurgeAccount(s.at(time.Minute), accountID), "nothing pending is not an error")
}

func (s *DeletionServiceSuite) TestSecondRequestInvalidatesFirst() {
	accountID := s.newAccount("4242")
	s.expectDelivery("4242", 2)
	_, err := s.service.RequestDeletion(s.at(0), accountID)
	s.Require().NoError(err)
	_, err = s.service.RequestDeletion(s.at(time.Minute), accountID)
	s.Require().NoError(err)

	err = s.service.ConfirmDeletion(s.at(2*time.Minute), accountID, "111111")
	s.True(dErrors.HasCode(err, dErrors.CodeMismatch))
	s.Require().NoError(s.service.ConfirmDeletion(s.at(2*time.Minute), accountID, "222222"))
}

func (s *DeletionServiceSuite) TestAttemptBudget() {
	accountID := s.newAccount("4242")
	s.expectDelivery("4242", 1)
	_, err := s.service.RequestDeletion(s.at(0), accountID)
	s.Require().NoError(err)

	for i, want := range []int{2, 1, 0} {
		err := s.service.ConfirmDeletion(s.at(0), accountID, "999999")
		s.True(dErrors.HasCode(err, dErrors.CodeMismatch), "attempt %d", i)
		s.Contains(dErrors.MessageOf(err), fmt.Sprintf("%d attempts remaining", want))
	}

	err = s.service.ConfirmDeletion(s.at(0), accountID, "111111")
	s.True(dErrors.HasCode(err, dErrors.CodeExhausted), "correct code after exhaustion")
	s.Equal(3.0, promtest.ToFloat64(s.metrics.Confirmations.WithLabelValues("mismatch")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Confirmations.WithLabelValues("exhausted")))
}

func (s *DeletionServiceSuite) TestMalformedCodeConsumesNoAttempt() {
	accountID := s.newAccount("4242")
	s.expectDelivery("4242", 1)
	_, err := s.service.RequestDeletion(s.at(0), accountID)
	s.Require().NoError(err)

	for _, bad := range []string{"", "12345", "abcdef", "1234567"} {
		err := s.service.ConfirmDeletion(s.at(0), accountID, bad)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput), bad)
	}
	err = s.service.ConfirmDeletion(s.at(0), accountID, "999999")
	s.Contains(dErrors.MessageOf(err), "2 attempts remaining")
}

func (s *DeletionServiceSuite) TestExpiry() {
	accountID := s.newAccount("4242")
	s.expectDelivery("4242", 1)
	_, err := s.service.RequestDeletion(s.at(0), accountID)
	s.Require().NoError(err)

	err = s.service.ConfirmDeletion(s.at(11*time.Minute), accountID, "111111")
	s.True(dErrors.HasCode(err, dErrors.CodeExpired))

	err = s.service.ConfirmDeletion(s.at(21*time.Minute), accountID, "111111")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "terminal record is gone after retention")
}

func (s *DeletionServiceSuite) TestDeliveryFailureKeepsRequest() {
	accountID := s.newAccount("4242")
	s.messenger.EXPECT().DeliverDirect(gomock.Any(), "4242", gomock.Any()).Return(errors.New("bot api down"))

	res, err := s.service.RequestDeletion(s.at(0), accountID)
	s.Require().NoError(err)
	s.False(res.Delivered)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.CodesIssued.WithLabelValues("failed")))
	s.Require().NoError(s.service.ConfirmDeletion(s.at(0), accountID, "111111"))
}

func (s *DeletionServiceSuite) TestNoMessengerConfigured() {
	svc := New(s.pending, s.accounts, nil, WithHashCost(bcrypt.MinCost))
	accountID := s.newAccount("4242")

	res, err := svc.RequestDeletion(s.at(0), accountID)
	s.Require().NoError(err)
	s.False(res.Delivered)
}

func (s *DeletionServiceSuite) TestStoreFailures() {
	ctrl := gomock.NewController(s.T())
	pending := mocks.NewMockStore(ctrl)
	svc := New(pending, s.accounts, s.messenger, WithHashCost(bcrypt.MinCost))
	accountID := s.newAccount("4242")

	s.Run("replace failure is internal and sends nothing", func() {
		pending.EXPECT().Replace(gomock.Any(), gomock.Any(), 20*time.Minute).Return(errors.New("connection reset"))
		_, err := svc.RequestDeletion(s.at(0), accountID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("lost race is a conflict", func() {
		pending.EXPECT().Apply(gomock.Any(), accountID, gomock.Any()).
			Return(fmt.Errorf("pending deletion changed concurrently: %w", sentinel.ErrConflict))
		err := svc.ConfirmDeletion(s.at(0), accountID, "111111")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *DeletionServiceSuite) TestCodesAreHashedAtRest() {
	accountID := s.newAccount("4242")
	s.expectDelivery("4242", 1)
	_, err := s.service.RequestDeletion(s.at(0), accountID)
	s.Require().NoError(err)

	s.Require().NoError(s.pending.Apply(s.at(0), accountID, func(p *models.PendingDeletionRequest) (models.Change, error) {
		s.NotContains(string(p.CodeHash), "111111")
		s.NoError(bcrypt.CompareHashAndPassword(p.CodeHash, []byte("111111")))
		return models.Change{}, nil
	}))
}
