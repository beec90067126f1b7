package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/runlens/runlens/internal/apikey"
	"github.com/runlens/runlens/internal/apikeys"
	"github.com/runlens/runlens/internal/apperrors"
	"github.com/runlens/runlens/internal/config"
	"github.com/runlens/runlens/internal/ingest"
	"github.com/runlens/runlens/internal/runs"
	"github.com/runlens/runlens/internal/storage"
)

// NewRouter creates and configures the Chi router with all middleware and routes
func NewRouter(pool *pgxpool.Pool, cfg *config.Config, store storage.Store, signer *storage.URLSigner) *chi.Mux {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)               // Set RemoteAddr to real IP
	r.Use(apperrors.RequestIDMiddleware)   // Add request ID to context
	r.Use(LoggingMiddleware)               // Structured request logging
	r.Use(RecoveryMiddleware)              // Recover from panics
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.BaseURL},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check routes (no authentication required)
	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(pool))

	// Signed screenshot delivery (token carried in the URL itself)
	r.Get("/screenshots/{key}", storage.HandleScreenshot(store, signer))

	// API routes - Ingestion (require API key authentication)
	r.Route("/api/v1/ingest", func(r chi.Router) {
		uploadLimits := ingest.NewUploadLimits(cfg.MaxUploadBytes)

		r.With(
			apikey.RequireAPIKey(pool, apikeys.ScopeIngestWrite),
			apikey.RateLimitByAPIKey(cfg.RateLimitRPM),
		).Post("/report", ingest.HandleReportUpload(pool, cfg, store, signer, uploadLimits))
	})

	// API routes - Runs (require API key authentication)
	r.Route("/api/v1/runs", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(apikey.RequireAPIKey(pool, apikeys.ScopeRunsRead))

		r.Get("/check", runs.HandleCheckDuplicate(pool))
		r.Get("/{run_id}", runs.HandleGetRun(pool))
	})

	return r
}

// handleHealthz returns a simple liveness check
// Always returns 200 OK if the service is running
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleReadyz returns a readiness check that includes database connectivity
// Returns 200 OK if service is ready to accept traffic, 503 if not
func handleReadyz(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check database connectivity
		if err := pool.Ping(r.Context()); err != nil {
			apperrors.WriteServiceUnavailable(w, r, "Database connection failed")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
			"status": "ready",
			"db":     "ok",
		})
	}
}
