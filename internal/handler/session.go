package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/voicegate/voicegate-server/internal/errors"
	"github.com/voicegate/voicegate-server/internal/httputil"
	"github.com/voicegate/voicegate-server/internal/metrics"
	"github.com/voicegate/voicegate-server/internal/service"
)

// SessionHandler proxies ephemeral credential mints so the provider API key
// never leaves the server. The provider payload is relayed verbatim.
type SessionHandler struct {
	credentials *service.CredentialService
}

func NewSessionHandler(credentials *service.CredentialService) *SessionHandler {
	return &SessionHandler{credentials: credentials}
}

func (h *SessionHandler) MintCredential(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	payload, err := h.credentials.Mint(r.Context())
	metrics.CredentialMintDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error().Err(err).Msg("session handler: credential mint failed")
		metrics.CredentialMints.WithLabelValues("error").Inc()
		httputil.WriteError(w, apperrors.CredentialMintFailed(err))
		return
	}

	metrics.CredentialMints.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		log.Error().Err(err).Msg("session handler: failed to write response")
	}
}
