// ABOUTME: Optional bearer token middleware for the standalone chart view.
// ABOUTME: Accepts the Authorization header or a token query parameter, compared in constant time.
package chartview

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// BearerAuth returns middleware that requires the given token on every route
// except the health check.
func BearerAuth(token string) func(http.Handler) http.Handler {
	expected := "Bearer " + token
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if subtle.ConstantTimeCompare([]byte(auth), []byte(expected)) == 1 {
				next.ServeHTTP(w, r)
				return
			}

			if q := r.URL.Query().Get("token"); q != "" {
				if subtle.ConstantTimeCompare([]byte(q), []byte(token)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
		})
	}
}
