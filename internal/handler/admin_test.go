package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/voicegate/voicegate-server/internal/model"
	"github.com/voicegate/voicegate-server/internal/service"
)

func adminRequestWith(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin/test-webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAdminHandler(t *testing.T) {
	t.Run("create returns the new subscription", func(t *testing.T) {
		subs := new(mockSubscriptionRepo)
		subs.On("UpsertByEmail", mock.Anything, mock.MatchedBy(func(p model.UpsertSubscriptionParams) bool {
			return p.Email == "a@x.com" && p.Status == model.StatusActive
		})).Return(&model.Subscription{Email: "a@x.com", Status: model.StatusActive}, nil)

		h := NewAdminHandler(service.NewDiagnosticService(subs, nopNotifier{}))
		rec := httptest.NewRecorder()
		h.RunDiagnostic(rec, adminRequestWith(`{"email":"a@x.com","action":"create"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"action":"create"`)
		assert.Contains(t, rec.Body.String(), `"a@x.com"`)
	})

	t.Run("cancel on unknown identity is 404", func(t *testing.T) {
		subs := new(mockSubscriptionRepo)
		subs.On("UpdateStatusByEmail", mock.Anything, "a@x.com", model.StatusCanceled).Return(int64(0), nil)

		h := NewAdminHandler(service.NewDiagnosticService(subs, nopNotifier{}))
		rec := httptest.NewRecorder()
		h.RunDiagnostic(rec, adminRequestWith(`{"email":"a@x.com","action":"cancel"}`))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown action is rejected", func(t *testing.T) {
		h := NewAdminHandler(service.NewDiagnosticService(new(mockSubscriptionRepo), nopNotifier{}))
		rec := httptest.NewRecorder()
		h.RunDiagnostic(rec, adminRequestWith(`{"email":"a@x.com","action":"explode"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		h := NewAdminHandler(service.NewDiagnosticService(new(mockSubscriptionRepo), nopNotifier{}))

		for name, body := range map[string]string{
			"no email":  `{"action":"check"}`,
			"no action": `{"email":"a@x.com"}`,
			"bad email": `{"email":"nope","action":"check"}`,
		} {
			t.Run(name, func(t *testing.T) {
				rec := httptest.NewRecorder()
				h.RunDiagnostic(rec, adminRequestWith(body))
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			})
		}
	})
}
