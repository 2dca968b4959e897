package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/cipherledger/internal/adapter/http/handler"
	"github.com/iho/cipherledger/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TransactionHandler *handler.TransactionHandler
	HealthHandler      *handler.HealthHandler
	Logger             zerolog.Logger

	// RateLimiter throttles the intake endpoint when set.
	RateLimiter *middleware.RateLimiter
	// RelayVerifier guards the create endpoint when set.
	RelayVerifier middleware.TokenVerifier
	// MetricsHandler serves /metrics; defaults to promhttp.Handler().
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1/transactions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter.Limit)
			}
			r.Post("/info", cfg.TransactionHandler.Info)
		})

		r.Group(func(r chi.Router) {
			if cfg.RelayVerifier != nil {
				r.Use(middleware.RelayAuth(cfg.RelayVerifier))
			}
			r.Post("/create", cfg.TransactionHandler.Create)
		})

		r.Get("/{entryID}", cfg.TransactionHandler.Get)
	})

	return r
}
