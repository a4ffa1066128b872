package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/voicegate/voicegate-server/internal/audit"
	apperrors "github.com/voicegate/voicegate-server/internal/errors"
	"github.com/voicegate/voicegate-server/internal/httputil"
	"github.com/voicegate/voicegate-server/internal/metrics"
	"github.com/voicegate/voicegate-server/internal/service"
	"github.com/voicegate/voicegate-server/internal/util"
)

// AccessHandler answers the gate question: may this identity start a voice
// session right now. It never reveals why access was denied.
type AccessHandler struct {
	entitlements *service.EntitlementService
}

func NewAccessHandler(entitlements *service.EntitlementService) *AccessHandler {
	return &AccessHandler{entitlements: entitlements}
}

type accessRequest struct {
	Email string `json:"email"`
}

type accessResponse struct {
	Authorized bool `json:"authorized"`
}

func (h *AccessHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	var req accessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if req.Email == "" {
		httputil.WriteError(w, apperrors.MissingRequired("email"))
		return
	}
	if !util.IsValidEmail(req.Email) {
		httputil.WriteError(w, apperrors.InvalidInput("email", "must be a valid email address"))
		return
	}

	authorized, err := h.entitlements.Authorized(r.Context(), req.Email)
	if err != nil {
		log.Error().
			Err(err).
			Str("email", util.MaskEmail(req.Email)).
			Msg("access handler: entitlement lookup failed")
		metrics.AccessDecisions.WithLabelValues("error").Inc()
		httputil.WriteError(w, apperrors.Database(err))
		return
	}

	if authorized {
		metrics.AccessDecisions.WithLabelValues("authorized").Inc()
	} else {
		metrics.AccessDecisions.WithLabelValues("denied").Inc()
		audit.LogFromRequest(r, audit.Event{
			Type:     audit.EventAccessDenied,
			Identity: util.MaskEmail(req.Email),
		})
	}

	httputil.WriteJSON(w, http.StatusOK, accessResponse{Authorized: authorized})
}
