package middleware

import (
	"net/http"

	"shopapp/internal/config"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// corsOptions derives the CORS policy from the server settings. Outside
// production every origin is accepted.
func corsOptions(cfg config.ServerConfig) cors.Options {
	origins := cfg.AllowedOrigins
	if cfg.IsDevelopment() {
		origins = []string{"*"}
	}

	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         cfg.CORSMaxAge,
	}
}

// CORSMiddleware applies the CORS policy of cfg
func CORSMiddleware(cfg config.ServerConfig) func(http.Handler) http.Handler {
	return cors.Handler(corsOptions(cfg))
}

// DefaultMiddlewareStack returns the chi middleware every router starts with
func DefaultMiddlewareStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Compress(5),
	}
}
