package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/legendtrack/internal/adapter/http/handler"
	"github.com/iho/legendtrack/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PlayerHandler      *handler.PlayerHandler
	EventHandler       *handler.EventHandler
	LeaderboardHandler *handler.LeaderboardHandler
	PollHandler        *handler.PollHandler
	HealthHandler      *handler.HealthHandler
	LoggingMiddleware  *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Wrap)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/players", func(r chi.Router) {
			r.Post("/", cfg.PlayerHandler.Track)
			r.Get("/{tag}", cfg.PlayerHandler.Get)
			r.Delete("/{tag}", cfg.PlayerHandler.Untrack)
			r.Get("/{tag}/events", cfg.EventHandler.ListByPlayer)
		})

		r.Get("/leaderboard", cfg.LeaderboardHandler.Get)
		r.Post("/poll", cfg.PollHandler.Trigger)
	})

	return r
}
