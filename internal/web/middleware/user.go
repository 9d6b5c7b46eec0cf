package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userContextKey contextKey = "user_id"

// DefaultUser is the scope used when a request carries no user header. The
// API has no account system; callers identify themselves per request.
const DefaultUser = "default"

// UserScope reads the X-User-ID header and stores it in the request context
// so every handler sees a consistent user scope.
func UserScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if user == "" {
			user = DefaultUser
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the user scope stored by UserScope.
func UserID(r *http.Request) string {
	if user, ok := r.Context().Value(userContextKey).(string); ok && user != "" {
		return user
	}
	return DefaultUser
}
