package auth

import (
	"context"
	"net/http"
	"strings"

	"redguardian/pkg/jwt"
)

type contextKey int

const userIDKey contextKey = iota

// UserID returns the authenticated user id put into the context by
// Middleware. Empty when the request was not authenticated.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// Middleware validates the bearer token and stores the user id in the
// request context. Handlers below it never read ambient auth state.
func Middleware(tokens *jwt.JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "authorization token required", http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			claims, err := tokens.ValidateToken(token)
			if err != nil || claims.Type != jwt.TypeAccess {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
