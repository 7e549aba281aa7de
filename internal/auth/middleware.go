package auth

import (
	"context"
	"net/http"

	"carfest-ticketing/internal/models"
)

type contextKey string

const (
	adminIDKey contextKey = "admin_id"
	roleKey    contextKey = "role"
)

// SessionStore is the server-side session lookup the middleware needs.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
}

// Middleware validates the bearer token AND checks the session is still
// live server-side; a signed token with a revoked session is rejected.
func Middleware(secret string, sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, "authorization required: "+err.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := ParseToken(secret, tokenString)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			session, err := sessions.Get(r.Context(), claims.SessionID)
			if err != nil {
				http.Error(w, "session lookup failed", http.StatusInternalServerError)
				return
			}
			if session == nil || session.AdminID != claims.Subject {
				http.Error(w, "session expired or revoked", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), adminIDKey, claims.Subject)
			ctx = context.WithValue(ctx, roleKey, session.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin allows only ADMIN sessions through; scanners get 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Role(r.Context()) != models.RoleAdmin {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminID returns the authenticated account id from the context.
func AdminID(ctx context.Context) string {
	if id, ok := ctx.Value(adminIDKey).(string); ok {
		return id
	}
	return ""
}

// Role returns the authenticated session role from the context.
func Role(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}
