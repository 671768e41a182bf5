package middlewares

import (
	"net/http"

	"github.com/rs/cors"
)

// Cors allows the configured origins and exposes the pagination and
// rate-limit headers to browsers.
func Cors(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Accept", "X-Request-ID"},
		ExposedHeaders: []string{
			"Location", "X-Pagination", "X-Request-ID",
			"X-RateLimit-Policy", "X-RateLimit-Limit", "X-RateLimit-Remaining",
			"Retry-After", "X-Response-Time",
		},
		MaxAge: 3600,
	})
	return c.Handler
}
