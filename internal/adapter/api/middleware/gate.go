package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/user/leafmarket/internal/adapter/metrics"
	"github.com/user/leafmarket/internal/domain"
)

// Redirect targets returned with gate denials. Clients navigate there
// instead of rendering the protected view.
const (
	LoginRedirect = "/auth/login"
	HomeRedirect  = "/"
)

// RequireRole is a middleware factory guarding a route subtree. Requests
// without an identity are sent to login; identities whose role does not
// match are sent home. Both denials render nothing but the redirect
// payload, so protected content never flashes through.
func RequireRole(required domain.Role, logger *slog.Logger, m *metrics.StoreMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				logger.Warn("unauthenticated request to protected route", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				if m != nil {
					m.GateDecisionsTotal.WithLabelValues("login_redirect").Inc()
				}
				deny(w, http.StatusUnauthorized, "authentication required", LoginRedirect)
				return
			}

			if session.Role != required {
				logger.Warn("role mismatch on protected route", "path", r.URL.Path, "role", session.Role, "required", required)
				if m != nil {
					m.GateDecisionsTotal.WithLabelValues("home_redirect").Inc()
				}
				deny(w, http.StatusForbidden, "access denied", HomeRedirect)
				return
			}

			if m != nil {
				m.GateDecisionsTotal.WithLabelValues("allowed").Inc()
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, status int, message, redirect string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":    message,
		"redirect": redirect,
	})
}
