package middleware

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/voicegate/voicegate-server/internal/audit"
	"github.com/voicegate/voicegate-server/internal/config"
)

type contextKey string

const StripeEventContextKey contextKey = "stripeEvent"

func GetStripeEvent(ctx context.Context) *stripe.Event {
	if event, ok := ctx.Value(StripeEventContextKey).(*stripe.Event); ok {
		return event
	}
	return nil
}

// StripeSignatureMiddleware verifies the Stripe-Signature header over the raw
// request body before anything downstream interprets the payload. The body is
// read unparsed; parsing first would invalidate the signature check.
type StripeSignatureMiddleware struct {
	secret string
}

func NewStripeSignatureMiddleware(secret string) *StripeSignatureMiddleware {
	return &StripeSignatureMiddleware{secret: secret}
}

func (m *StripeSignatureMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(m.secret) == "" {
			log.Error().Msg("stripe signature middleware: STRIPE_WEBHOOK_SECRET is not configured, rejecting event")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "Webhook secret not configured",
			})
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if strings.TrimSpace(sigHeader) == "" {
			log.Warn().Msg("stripe signature middleware: missing signature header")
			audit.LogFromRequest(r, audit.Event{Type: audit.EventSignatureFailure})
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "Missing Stripe signature",
			})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, config.WebhookBodyLimit)
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error().Err(err).Msg("stripe signature middleware: failed to read body")
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "Failed to read request body",
			})
			return
		}

		event, err := webhook.ConstructEventWithOptions(payload, sigHeader, m.secret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			log.Warn().Err(err).Msg("stripe signature middleware: invalid signature")
			audit.LogFromRequest(r, audit.Event{Type: audit.EventSignatureFailure})
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "Invalid Stripe signature",
			})
			return
		}

		ctx := context.WithValue(r.Context(), StripeEventContextKey, &event)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
