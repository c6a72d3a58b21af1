package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the configured origins ("*" for any) to call every route with
// any method and header. Credentials are allowed, so the request origin is
// echoed rather than "*".
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:       []string{"*"},
		AllowCredentials:     true,
		MaxAge:               600,
		OptionsSuccessStatus: http.StatusNoContent,
	}

	for _, o := range allowedOrigins {
		if o == "*" {
			// A literal "*" would be sent back verbatim, which browsers
			// refuse alongside credentials.
			opts.AllowedOrigins = nil
			opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
			break
		}
	}

	return cors.Handler(opts)
}
