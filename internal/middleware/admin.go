package middleware

import (
	"net/http"

	"viralio/internal/logger"
)

// AdminMiddleware gates a route to tokens carrying the admin role. It must
// run after AuthMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Role(r.Context()) != "admin" {
			logger := logger.New()
			logger.Warn().Str("user_id", UserID(r.Context())).Str("path", r.URL.Path).
				Msg("Non-admin attempted admin route")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
