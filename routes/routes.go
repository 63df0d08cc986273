package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/junction-boxers/fleetgate/app"
	"github.com/junction-boxers/fleetgate/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(deps.Config.Server.RequestTimeout))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	queryHandler := handlers.NewQueryHandler(deps.Pipeline, deps.Logger)
	auditHandler := handlers.NewAuditHandler(deps.Recorder, deps.Logger)
	settingsHandler := handlers.NewSettingsHandler(deps.Settings, deps.Logger)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", handlers.StatusHandler(deps))

		r.Post("/query", queryHandler.HandleQuery)

		r.Route("/audit", func(r chi.Router) {
			r.Get("/logs", auditHandler.HandleList)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/{callerId}", settingsHandler.HandleGet)
			r.Patch("/", settingsHandler.HandleUpdate)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
