package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	accounthandler "peerhelp/internal/account/handler"
	accountservice "peerhelp/internal/account/service"
	accountstore "peerhelp/internal/account/store"
	deletionhandler "peerhelp/internal/deletion/handler"
	deletionservice "peerhelp/internal/deletion/service"
	deletionstore "peerhelp/internal/deletion/store"
	jwttoken "peerhelp/internal/jwt_token"
	moderationhandler "peerhelp/internal/moderation/handler"
	moderationservice "peerhelp/internal/moderation/service"
	"peerhelp/internal/notification/dispatcher"
	notificationhandler "peerhelp/internal/notification/handler"
	notificationservice "peerhelp/internal/notification/service"
	notificationstore "peerhelp/internal/notification/store"
	"peerhelp/internal/platform/metrics"
	id "peerhelp/pkg/domain"
	adminmw "peerhelp/pkg/platform/middleware/admin"
	"peerhelp/pkg/testutil"
)

const adminToken = "internal-secret"

type capturingMessenger struct {
	mu    sync.Mutex
	texts []string
}

func (m *capturingMessenger) DeliverDirect(_ context.Context, _, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return nil
}

func (m *capturingMessenger) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}

type testServer struct {
	router    http.Handler
	jwt       *jwttoken.JWTService
	messenger *capturingMessenger
}

func newTestServer(t *testing.T, health map[string]HealthCheck) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := metrics.NewRegistry()

	accounts := accountstore.NewInMemory()
	feed := notificationstore.NewInMemory()
	notifications := dispatcher.New(feed, dispatcher.NewAccountRecipients(accounts), dispatcher.WithLogger(logger))
	moderationSvc := moderationservice.New(accounts, notifications, moderationservice.WithLogger(logger))
	notificationSvc := notificationservice.New(feed, notifications,
		notificationservice.WithLogger(logger),
		notificationservice.WithStaleBanClearer(moderationSvc),
	)
	messenger := &capturingMessenger{}
	deletionSvc := deletionservice.New(deletionstore.NewInMemory(), accounts, messenger,
		deletionservice.WithLogger(logger),
		deletionservice.WithHashCost(bcrypt.MinCost),
	)
	accountSvc := accountservice.New(accounts,
		accountservice.WithLogger(logger),
		accountservice.WithDataPurger(notificationSvc),
		accountservice.WithDataPurger(deletionSvc),
	)

	jwtService := jwttoken.NewJWTService("test-signing-key", "peerhelp")
	router := NewRouter(Config{
		Logger:      logger,
		Validator:   jwttoken.NewJWTServiceAdapter(jwtService),
		AdminToken:  adminToken,
		Registry:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Health:      health,
	}, Handlers{
		Accounts:      accounthandler.New(accountSvc, logger),
		Moderation:    moderationhandler.New(moderationSvc, logger),
		Notifications: notificationhandler.New(notificationSvc, logger),
		Deletion:      deletionhandler.New(deletionSvc, accountSvc, logger),
	})
	return &testServer{router: router, jwt: jwtService, messenger: messenger}
}

func (s *testServer) bearer(t *testing.T, req *http.Request, accountID id.AccountID, roles ...string) *http.Request {
	t.Helper()
	token, err := s.jwt.GenerateAccessToken(accountID, roles, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (s *testServer) internal(req *http.Request) *http.Request {
	req.Header.Set(adminmw.HeaderAdminToken, adminToken)
	return req
}

func (s *testServer) register(t *testing.T) id.AccountID {
	t.Helper()
	req := s.internal(testutil.NewJSONRequest(t, http.MethodPost, "/internal/accounts", map[string]string{
		"display_name": "Ada",
		"email":        "ada@example.com",
	}))
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[accounthandler.RegisterResponse](t, rr)
	accountID, err := id.ParseAccountID(resp.AccountID)
	require.NoError(t, err)
	return accountID
}

func (s *testServer) link(t *testing.T, accountID id.AccountID) {
	t.Helper()
	req := s.internal(testutil.NewJSONRequest(t, http.MethodPut,
		"/internal/accounts/"+accountID.String()+"/trusted-channel", map[string]string{"chat_id": "4242"}))
	testutil.AssertStatus(t, testutil.DoRequest(s.router, req), http.StatusOK)
}

func (s *testServer) trustState(t *testing.T, accountID id.AccountID) string {
	t.Helper()
	rr := testutil.DoRequest(s.router, s.bearer(t, testutil.NewRequest(t, http.MethodGet, "/me/trust"), accountID, "user"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	return string(testutil.UnmarshalResponse[accounthandler.TrustResponse](t, rr).State)
}

func TestInternalRoutesRequireAdminToken(t *testing.T) {
	s := newTestServer(t, nil)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/internal/accounts", map[string]string{
		"display_name": "Ada",
		"email":        "ada@example.com",
	})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestSelfRoutesRequireBearer(t *testing.T) {
	s := newTestServer(t, nil)
	rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/me/trust"))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestTrustLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	accountID := s.register(t)
	assert.Equal(t, "READ_ONLY", s.trustState(t, accountID))

	s.link(t, accountID)
	assert.Equal(t, "ACTIVE", s.trustState(t, accountID))

	banPath := "/admin/accounts/" + accountID.String() + "/ban"
	helper := id.NewAccountID()
	rr := testutil.DoRequest(s.router, s.bearer(t,
		testutil.NewJSONRequest(t, http.MethodPost, banPath, map[string]string{"reason": "spam"}), helper, "user", "helper"))
	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")

	moderator := id.NewAccountID()
	rr = testutil.DoRequest(s.router, s.bearer(t,
		testutil.NewJSONRequest(t, http.MethodPost, banPath, map[string]string{"reason": "spam", "duration": "1h"}), moderator, "moderator"))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	assert.Equal(t, "BANNED_TEMPORARY", s.trustState(t, accountID))

	rr = testutil.DoRequest(s.router, s.bearer(t, testutil.NewRequest(t, http.MethodGet, "/me/notifications"), accountID, "user"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	feed := testutil.UnmarshalResponse[notificationhandler.ListResponse](t, rr)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "ban_issued", string(feed.Items[0].Category))
	assert.Equal(t, 1, feed.Unread)

	rr = testutil.DoRequest(s.router, s.bearer(t, testutil.NewRequest(t, http.MethodDelete, banPath), moderator, "moderator"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "lifted", true)
	assert.Equal(t, "ACTIVE", s.trustState(t, accountID))
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

func TestDeletionFlow(t *testing.T) {
	s := newTestServer(t, nil)
	accountID := s.register(t)

	request := func() *http.Request {
		return s.bearer(t, testutil.NewRequest(t, http.MethodPost, "/me/deletion-request"), accountID, "user")
	}
	rr := testutil.DoRequest(s.router, request())
	testutil.AssertStatusAndError(t, rr, http.StatusPreconditionFailed, "precondition_failed")

	s.link(t, accountID)
	rr = testutil.DoRequest(s.router, request())
	testutil.AssertStatus(t, rr, http.StatusAccepted)
	code := codePattern.FindString(s.messenger.last())
	require.NotEmpty(t, code)

	confirm := s.bearer(t, testutil.NewJSONRequest(t, http.MethodPost, "/me/deletion-request/confirm",
		map[string]string{"code": code}), accountID, "user")
	testutil.AssertStatus(t, testutil.DoRequest(s.router, confirm), http.StatusNoContent)

	rr = testutil.DoRequest(s.router, s.bearer(t, testutil.NewRequest(t, http.MethodGet, "/me/trust"), accountID, "user"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestOperationalEndpoints(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := newTestServer(t, map[string]HealthCheck{"db": func(context.Context) error { return nil }})
		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("degraded", func(t *testing.T) {
		s := newTestServer(t, map[string]HealthCheck{"redis": func(context.Context) error { return errors.New("dial tcp: refused") }})
		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		testutil.AssertJSONContains(t, rr, "status", "degraded")
	})

	t.Run("metrics", func(t *testing.T) {
		s := newTestServer(t, nil)
		testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Contains(t, rr.Body.String(), "peerhelp_http_requests_total")
	})
}
