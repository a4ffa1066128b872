package rtc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayClientCheckAccess(t *testing.T) {
	t.Run("authorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/sub-status", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			w.Write([]byte(`{"authorized":true}`))
		}))
		defer server.Close()

		ok, err := NewGatewayClient(server.URL).CheckAccess(context.Background(), "a@x.com")

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("denied", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"authorized":false}`))
		}))
		defer server.Close()

		ok, err := NewGatewayClient(server.URL).CheckAccess(context.Background(), "a@x.com")

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("gateway error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := NewGatewayClient(server.URL).CheckAccess(context.Background(), "a@x.com")

		assert.Error(t, err)
	})
}

func TestGatewayClientFetch(t *testing.T) {
	t.Run("parses the client secret", func(t *testing.T) {
		expires := time.Now().Add(time.Minute).Unix()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/session", r.URL.Path)
			w.Write([]byte(`{"client_secret":{"value":"ek_live","expires_at":` +
				strconv.FormatInt(expires, 10) + `}}`))
		}))
		defer server.Close()

		cred, err := NewGatewayClient(server.URL).Fetch(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "ek_live", cred.Token)
		assert.Equal(t, expires, cred.ExpiresAt.Unix())
	})

	t.Run("payment required surfaces as an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
		}))
		defer server.Close()

		_, err := NewGatewayClient(server.URL).Fetch(context.Background())

		assert.Error(t, err)
	})

	t.Run("missing secret surfaces as an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		_, err := NewGatewayClient(server.URL).Fetch(context.Background())

		assert.Error(t, err)
	})
}
