package ipreputation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientLookup(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/json/203.0.113.7", r.URL.Path)
		assert.Equal(t, "status,message,proxy,hosting", r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","proxy":false,"hosting":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	t.Run("public address is looked up", func(t *testing.T) {
		rep, err := client.Lookup(context.Background(), "203.0.113.7")
		require.NoError(t, err)
		require.NotNil(t, rep)
		assert.True(t, rep.Hosting)
		assert.False(t, rep.Proxy)
	})

	t.Run("private and malformed addresses are skipped", func(t *testing.T) {
		before := calls.Load()
		for _, ip := range []string{"10.0.0.1", "127.0.0.1", "::1", "192.168.1.20", "not-an-ip", ""} {
			rep, err := client.Lookup(context.Background(), ip)
			require.NoError(t, err, ip)
			assert.Nil(t, rep, ip)
		}
		assert.Equal(t, before, calls.Load())
	})
}

func TestClientLookup_Failures(t *testing.T) {
	t.Run("upstream reports failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second).Lookup(context.Background(), "203.0.113.7")
		require.ErrorIs(t, err, ErrLookupFailed)
		assert.Contains(t, err.Error(), "reserved range")
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second).Lookup(context.Background(), "203.0.113.7")
		require.ErrorIs(t, err, ErrLookupFailed)
	})

	t.Run("timeout is bounded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		start := time.Now()
		_, err := NewClient(srv.URL, 50*time.Millisecond).Lookup(context.Background(), "203.0.113.7")
		require.ErrorIs(t, err, ErrLookupFailed)
		assert.Less(t, time.Since(start), 900*time.Millisecond)
	})
}
