package middleware

import (
	"net/http"

	"github.com/hongminglow/inventory-be/internal/session"
)

// SessionKey copies the session cookie value into the request context.
func SessionKey(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
				r = r.WithContext(session.WithKey(r.Context(), c.Value))
			}
			next.ServeHTTP(w, r)
		})
	}
}
