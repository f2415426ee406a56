package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const userIDKey contextKey = "user_id"

// TokenResolver maps a bearer token to the user it was issued to.
// Implemented by the auth repository.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (uuid.UUID, error)
}

// AuthMiddleware resolves the Authorization header into a user id and stores
// it in the request context. It never rejects requests itself; handlers that
// need a user call UserID and return 401 when it is absent.
func AuthMiddleware(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				token := strings.TrimPrefix(authHeader, "Bearer ")
				if userID, err := resolver.ResolveToken(r.Context(), token); err == nil {
					ctx := context.WithValue(r.Context(), userIDKey, userID)
					r = r.WithContext(ctx)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserID returns the authenticated user id stored by AuthMiddleware, if any.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}
