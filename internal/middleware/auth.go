package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iyunix/go-aichat/internal/envelope"
)

const authCookie = "auth_token"

// TokenValidator resolves a session token to a user ID.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// tokenFromRequest reads a bearer token, falling back to the auth cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(authCookie); err == nil {
		return c.Value
	}
	return ""
}

// NewAuthMiddleware rejects requests without a valid session token with a
// 401 envelope.
func NewAuthMiddleware(validator TokenValidator, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				envelope.Write(w, envelope.Fail[struct{}](http.StatusUnauthorized, "not logged in"))
				return
			}

			userID, err := validator.ValidateToken(token)
			if err != nil {
				logger.Debug("rejected session token", "path", r.URL.Path, "error", err)
				envelope.Write(w, envelope.Fail[struct{}](http.StatusUnauthorized, "session expired, please log in again"))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GuestOnly redirects already authenticated clients to "/" instead of
// serving guest pages such as login and registration.
func GuestOnly(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r); token != "" {
				if _, err := validator.ValidateToken(token); err == nil {
					http.Redirect(w, r, "/", http.StatusSeeOther)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
