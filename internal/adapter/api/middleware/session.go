package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/user/leafmarket/internal/domain"
	"github.com/user/leafmarket/internal/usecase"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Session is a middleware factory that resolves the request's session
// token, if any, and attaches the resulting domain.Session to the request
// context. Requests without a usable session pass through unchanged; the
// role gates downstream decide what an absent session means.
func Session(auth usecase.AuthUseCase, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := auth.ResolveSession(r.Context(), token)
			if err != nil {
				logger.Debug("session resolution failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the resolved session attached to the
// request, if any.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*domain.Session)
	return session, ok
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(header)
}
