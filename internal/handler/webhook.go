package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/voicegate/voicegate-server/internal/httputil"
	"github.com/voicegate/voicegate-server/internal/metrics"
	"github.com/voicegate/voicegate-server/internal/middleware"
	"github.com/voicegate/voicegate-server/internal/service"
)

// WebhookHandler receives verified billing events. Signature verification
// happens upstream in the middleware; by the time this handler runs the event
// is authenticated and parsed.
type WebhookHandler struct {
	billing *service.BillingService
}

func NewWebhookHandler(billing *service.BillingService) *WebhookHandler {
	return &WebhookHandler{billing: billing}
}

// HandleEvent applies one billing event. A processing failure returns 500 so
// the provider retries delivery; acknowledged events return 200 regardless of
// whether they changed anything.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	event := middleware.GetStripeEvent(r.Context())
	if event == nil {
		log.Error().Msg("webhook handler: no verified event in request context")
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Webhook processing failed",
		})
		return
	}

	if err := h.billing.Apply(r.Context(), event); err != nil {
		log.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("webhook handler: event processing failed")
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "error").Inc()
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Webhook processing failed",
		})
		return
	}

	metrics.WebhookEvents.WithLabelValues(string(event.Type), "ok").Inc()
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}
