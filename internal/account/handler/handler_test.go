package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"peerhelp/internal/account/handler/mocks"
	"peerhelp/internal/account/models"
	id "peerhelp/pkg/domain"
	dErrors "peerhelp/pkg/domain-errors"
	"peerhelp/pkg/testutil"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRouter(t *testing.T) (*mocks.MockService, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(svc, logger)

	r := chi.NewRouter()
	h.RegisterInternal(r)
	h.RegisterSelf(r)
	h.RegisterAdmin(r)
	r.With(h.RequireCapability(models.CapabilityPostRequest)).Post("/requests", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	return svc, r
}

func TestRegister(t *testing.T) {
	t.Run("creates the account", func(t *testing.T) {
		svc, router := newRouter(t)
		accountID := id.NewAccountID()
		svc.EXPECT().Register(gomock.Any(), models.RegisterRequest{
			DisplayName: "Ada",
			Email:       "ada@example.com",
			ClientIP:    "203.0.113.9",
		}).Return(&models.Account{ID: accountID, SuspicionScore: 15, CreatedAt: fixedNow}, nil)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/internal/accounts", map[string]string{
			"display_name": " Ada ",
			"email":        "Ada@Example.com",
			"client_ip":    "203.0.113.9",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[RegisterResponse](t, rr)
		assert.Equal(t, accountID.String(), resp.AccountID)
		assert.Equal(t, models.StateReadOnly, resp.State)
		assert.Equal(t, 15, resp.SuspicionScore)
	})

	t.Run("invalid body never reaches the service", func(t *testing.T) {
		_, router := newRouter(t)
		req := httptestRaw(t, http.MethodPost, "/internal/accounts", "{not json")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("missing display name is invalid input", func(t *testing.T) {
		_, router := newRouter(t)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/internal/accounts", map[string]string{"email": "ada@example.com"})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})
}

func TestLinkTrustedChannel(t *testing.T) {
	t.Run("returns the new trust status", func(t *testing.T) {
		svc, router := newRouter(t)
		accountID := id.NewAccountID()
		svc.EXPECT().LinkTrustedChannel(gomock.Any(), accountID, "4242").
			Return(&models.Account{ID: accountID, TrustedChannelID: "4242"}, nil)

		req := testutil.NewJSONRequest(t, http.MethodPut, "/internal/accounts/"+accountID.String()+"/trusted-channel",
			map[string]string{"chat_id": "4242"})
		rr := testutil.DoRequest(router, testutil.WithTime(req, fixedNow))

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[TrustResponse](t, rr)
		assert.Equal(t, models.StateActive, resp.State)
		assert.Contains(t, resp.Capabilities, models.CapabilitySendMessage)
	})

	t.Run("malformed account id", func(t *testing.T) {
		_, router := newRouter(t)
		req := testutil.NewJSONRequest(t, http.MethodPut, "/internal/accounts/nope/trusted-channel",
			map[string]string{"chat_id": "4242"})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("unknown account", func(t *testing.T) {
		svc, router := newRouter(t)
		accountID := id.NewAccountID()
		svc.EXPECT().LinkTrustedChannel(gomock.Any(), accountID, "1").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "account not found"))

		req := testutil.NewJSONRequest(t, http.MethodPut, "/internal/accounts/"+accountID.String()+"/trusted-channel",
			map[string]string{"chat_id": "1"})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestGetTrust(t *testing.T) {
	t.Run("banned account gets the banner", func(t *testing.T) {
		svc, router := newRouter(t)
		accountID := id.NewAccountID()
		expires := fixedNow.Add(time.Hour)
		svc.EXPECT().TrustStatus(gomock.Any(), accountID).Return(&models.TrustStatus{
			State:        models.StateBannedTemporary,
			Capabilities: models.StateBannedTemporary.Capabilities(),
			Ban:          &models.BanBanner{Reason: "spam", ExpiresAt: &expires},
		}, nil)

		req := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodGet, "/me/trust"), accountID, "user")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[TrustResponse](t, rr)
		require.NotNil(t, resp.Ban)
		assert.Equal(t, "spam", resp.Ban.Reason)
		assert.Equal(t, []models.Capability{models.CapabilityBrowse, models.CapabilityAppeal}, resp.Capabilities)
	})

	t.Run("no principal is unauthorized", func(t *testing.T) {
		_, router := newRouter(t)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/me/trust"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})
}

func TestUnlink(t *testing.T) {
	t.Run("holder unlinks own channel", func(t *testing.T) {
		svc, router := newRouter(t)
		accountID := id.NewAccountID()
		svc.EXPECT().UnlinkTrustedChannel(gomock.Any(), models.Actor{ID: accountID, Roles: []string{"user"}}, accountID).
			Return(&models.Account{ID: accountID}, nil)

		req := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodDelete, "/me/trusted-channel"), accountID, "user")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "state", "READ_ONLY")
	})

	t.Run("admin route targets the path account", func(t *testing.T) {
		svc, router := newRouter(t)
		adminID, target := id.NewAccountID(), id.NewAccountID()
		svc.EXPECT().UnlinkTrustedChannel(gomock.Any(), models.Actor{ID: adminID, Roles: []string{"admin"}}, target).
			Return(&models.Account{ID: target}, nil)

		req := testutil.WithPrincipal(
			testutil.NewRequest(t, http.MethodDelete, "/admin/accounts/"+target.String()+"/trusted-channel"), adminID, "admin")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
	})
}

func TestAdminView(t *testing.T) {
	t.Run("exposes score, log and ban", func(t *testing.T) {
		svc, router := newRouter(t)
		modID, target := id.NewAccountID(), id.NewAccountID()
		account := &models.Account{
			ID:             target,
			DisplayName:    "Ada",
			Roles:          []models.Role{models.RoleUser},
			SuspicionScore: 20,
			SuspicionLog:   []models.SuspicionEntry{{RuleID: "ip_proxy", Points: 20, RecordedAt: fixedNow}},
			Ban:            &models.BanRecord{Reason: "spam", IssuedBy: modID, IssuedAt: fixedNow},
		}
		svc.EXPECT().AdminView(gomock.Any(), models.Actor{ID: modID, Roles: []string{"moderator"}}, target).
			Return(&models.AdminView{
				Account:      account,
				State:        models.StateBannedPermanent,
				Capabilities: models.StateBannedPermanent.Capabilities(),
			}, nil)

		req := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodGet, "/admin/accounts/"+target.String()), modID, "moderator")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[AdminAccountResponse](t, rr)
		assert.Equal(t, 20, resp.SuspicionScore)
		require.Len(t, resp.SuspicionLog, 1)
		require.NotNil(t, resp.Ban)
		assert.True(t, resp.Ban.InEffect)
		assert.Nil(t, resp.Ban.ExpiresAt)
		assert.Equal(t, modID.String(), resp.Ban.IssuedBy)
	})

	t.Run("forbidden for plain users", func(t *testing.T) {
		svc, router := newRouter(t)
		userID, target := id.NewAccountID(), id.NewAccountID()
		svc.EXPECT().AdminView(gomock.Any(), gomock.Any(), target).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "moderator or admin role required"))

		req := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodGet, "/admin/accounts/"+target.String()), userID, "user")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})
}

func TestRequireCapabilityMiddleware(t *testing.T) {
	t.Run("allowed capability reaches the handler", func(t *testing.T) {
		svc, router := newRouter(t)
		accountID := id.NewAccountID()
		svc.EXPECT().RequireCapability(gomock.Any(), accountID, models.CapabilityPostRequest).Return(nil)

		req := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodPost, "/requests"), accountID, "user")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
	})

	t.Run("denied capability is forbidden", func(t *testing.T) {
		svc, router := newRouter(t)
		accountID := id.NewAccountID()
		svc.EXPECT().RequireCapability(gomock.Any(), accountID, models.CapabilityPostRequest).
			Return(dErrors.New(dErrors.CodeForbidden, "account is banned"))

		req := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodPost, "/requests"), accountID, "user")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("anonymous caller is unauthorized", func(t *testing.T) {
		_, router := newRouter(t)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/requests"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestCheckCapability(t *testing.T) {
	t.Run("allowed returns no content", func(t *testing.T) {
		svc, router := newRouter(t)
		accountID := id.NewAccountID()
		svc.EXPECT().RequireCapability(gomock.Any(), accountID, models.CapabilitySendMessage).Return(nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet,
			"/internal/accounts/"+accountID.String()+"/capabilities/send_message"))
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})

	t.Run("read-only account is forbidden", func(t *testing.T) {
		svc, router := newRouter(t)
		accountID := id.NewAccountID()
		svc.EXPECT().RequireCapability(gomock.Any(), accountID, models.CapabilityPostRequest).
			Return(dErrors.New(dErrors.CodeForbidden, "account is read-only until a trusted channel is linked"))

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet,
			"/internal/accounts/"+accountID.String()+"/capabilities/post_request"))
		testutil.AssertErrorDescription(t, rr, "forbidden", "read-only")
	})

	t.Run("unknown capability is rejected before lookup", func(t *testing.T) {
		_, router := newRouter(t)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet,
			"/internal/accounts/"+id.NewAccountID().String()+"/capabilities/fly"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})
}

func httptestRaw(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}
