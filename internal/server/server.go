// Package server provides the HTTP server and routing for forecastfolio.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/forecastfolio/internal/di"
	chartshandlers "github.com/aristath/forecastfolio/internal/modules/charts/handlers"
	forecastshandlers "github.com/aristath/forecastfolio/internal/modules/forecasts/handlers"
	optimizationhandlers "github.com/aristath/forecastfolio/internal/modules/optimization/handlers"
	"github.com/aristath/forecastfolio/internal/scheduler"
	"github.com/aristath/forecastfolio/pkg/embedded"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		port:      cfg.Port,
		container: cfg.Container,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.Container.Source,
			cfg.Container.ForecastsDB,
		),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SetJobs registers job instances for manual triggering via API
func (s *Server) SetJobs(forecastSync, walCheckpoints scheduler.Job) {
	s.systemHandlers.SetJobs(forecastSync, walCheckpoints)
}

// Router exposes the configured router (used by tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check and metrics (before SPA routing)
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", s.container.Recorder.Handler())

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		systemHandlers := s.systemHandlers
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", systemHandlers.HandleSystemStatus)
			r.Get("/database/stats", systemHandlers.HandleDatabaseStats)

			// Job triggers (manual operation triggers)
			r.Route("/jobs", func(r chi.Router) {
				r.Post("/forecast-sync", systemHandlers.HandleTriggerForecastSync)
				r.Post("/check-wal-checkpoints", systemHandlers.HandleTriggerCheckWALCheckpoints)
			})
		})

		// Forecasts module
		forecastsHandler := forecastshandlers.NewHandler(s.container.Source, s.log)
		forecastsHandler.RegisterRoutes(r)

		// Charts module
		chartsHandler := chartshandlers.NewHandler(s.container.ChartsService, s.log)
		chartsHandler.RegisterRoutes(r)

		// Optimization module
		optimizationHandler := optimizationhandlers.NewHandler(s.container.OptimizationService, s.log)
		optimizationHandler.RegisterRoutes(r)
	})

	// Serve the dashboard page from the embedded filesystem
	frontendFS, err := fs.Sub(embedded.Files, "frontend/dist")
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create frontend filesystem from embedded files")
		return
	}

	s.router.Get("/", s.handleDashboard(frontendFS))
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api") {
			s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		http.FileServer(http.FS(frontendFS)).ServeHTTP(w, r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handleDashboard serves the main dashboard HTML from embedded filesystem
func (s *Server) handleDashboard(frontendFS fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(frontendFS, "index.html")
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to read embedded index.html")
			http.Error(w, "Frontend not available", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(data); err != nil {
			s.log.Error().Err(err).Msg("Failed to write index.html response")
		}
	}
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
