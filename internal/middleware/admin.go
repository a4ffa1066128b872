package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/voicegate/voicegate-server/internal/audit"
	"github.com/voicegate/voicegate-server/internal/util"
)

// AdminAuthMiddleware guards the diagnostics surface with a bearer password
// checked against a bcrypt hash. With no hash configured the surface is
// disabled entirely.
type AdminAuthMiddleware struct {
	passwordHash string
}

func NewAdminAuthMiddleware(passwordHash string) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{passwordHash: passwordHash}
}

func (m *AdminAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.passwordHash == "" {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "Not found",
			})
			return
		}

		password := extractBearer(r)
		if password == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing admin credentials",
			})
			return
		}

		if !util.CheckPasswordHash(password, m.passwordHash) {
			log.Warn().Msg("admin auth middleware: invalid password attempt")
			audit.LogFromRequest(r, audit.Event{Type: audit.EventAdminAuthFailure})
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid admin credentials",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
