package handler

import (
	"encoding/json"
	"net/http"

	"github.com/voicegate/voicegate-server/internal/audit"
	apperrors "github.com/voicegate/voicegate-server/internal/errors"
	"github.com/voicegate/voicegate-server/internal/httputil"
	"github.com/voicegate/voicegate-server/internal/metrics"
	"github.com/voicegate/voicegate-server/internal/service"
	"github.com/voicegate/voicegate-server/internal/util"
)

// AdminHandler exposes subscription diagnostics for operators. The routes are
// mounted behind the admin auth middleware.
type AdminHandler struct {
	diagnostics *service.DiagnosticService
}

func NewAdminHandler(diagnostics *service.DiagnosticService) *AdminHandler {
	return &AdminHandler{diagnostics: diagnostics}
}

type diagnosticRequest struct {
	Email  string `json:"email"`
	Action string `json:"action"`
}

// RunDiagnostic mutates or inspects a subscription record directly, without
// going through the billing provider.
func (h *AdminHandler) RunDiagnostic(w http.ResponseWriter, r *http.Request) {
	var req diagnosticRequest
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
	if req.Action == "" {
		httputil.WriteError(w, apperrors.MissingRequired("action"))
		return
	}

	result, err := h.diagnostics.Run(r.Context(), req.Email, req.Action)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	metrics.DiagnosticActions.WithLabelValues(req.Action).Inc()
	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventDiagnosticAction,
		Identity: util.MaskEmail(req.Email),
		Details:  map[string]interface{}{"action": req.Action},
	})

	httputil.WriteJSON(w, http.StatusOK, result)
}
