package rtc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPExchanger(t *testing.T) {
	cred := Credential{Token: "ek_test"}

	t.Run("posts offer and returns answer", func(t *testing.T) {
		var gotAuth, gotContentType, gotModel, gotBody string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotContentType = r.Header.Get("Content-Type")
			gotModel = r.URL.Query().Get("model")
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			w.Write([]byte("v=0\r\nanswer"))
		}))
		defer server.Close()

		e := NewHTTPExchanger(server.URL, "gpt-4o-realtime-preview-2024-12-17")
		answer, err := e.Exchange(context.Background(), "v=0\r\noffer", cred)

		require.NoError(t, err)
		assert.Equal(t, "v=0\r\nanswer", answer)
		assert.Equal(t, "Bearer ek_test", gotAuth)
		assert.Equal(t, "application/sdp", gotContentType)
		assert.Equal(t, "gpt-4o-realtime-preview-2024-12-17", gotModel)
		assert.Equal(t, "v=0\r\noffer", gotBody)
	})

	t.Run("non-2xx becomes a StatusError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		e := NewHTTPExchanger(server.URL, "gpt-4o-realtime-preview-2024-12-17")
		_, err := e.Exchange(context.Background(), "v=0\r\noffer", cred)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
	})

	t.Run("transport failure is not a StatusError", func(t *testing.T) {
		e := NewHTTPExchanger("http://127.0.0.1:1", "gpt-4o-realtime-preview-2024-12-17")
		_, err := e.Exchange(context.Background(), "v=0\r\noffer", cred)

		require.Error(t, err)
		var statusErr *StatusError
		assert.False(t, errors.As(err, &statusErr))
	})
}
