package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialService_Mint(t *testing.T) {
	t.Run("posts model and voice with bearer auth", func(t *testing.T) {
		var gotAuth, gotContentType string
		var gotBody map[string]string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotContentType = r.Header.Get("Content-Type")
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"client_secret":{"value":"ek_test","expires_at":1735689600}}`))
		}))
		defer server.Close()

		svc := NewCredentialService(server.URL, "sk-test", "gpt-4o-realtime-preview-2024-12-17", "verse")
		payload, err := svc.Mint(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "Bearer sk-test", gotAuth)
		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, "gpt-4o-realtime-preview-2024-12-17", gotBody["model"])
		assert.Equal(t, "verse", gotBody["voice"])
		assert.JSONEq(t, `{"client_secret":{"value":"ek_test","expires_at":1735689600}}`, string(payload))
	})

	t.Run("non-success status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		svc := NewCredentialService(server.URL, "sk-bad", "model", "verse")
		_, err := svc.Mint(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("unreachable provider is an error", func(t *testing.T) {
		svc := NewCredentialService("http://127.0.0.1:1", "sk-test", "model", "verse")
		_, err := svc.Mint(context.Background())
		assert.Error(t, err)
	})
}
