// Package api exposes the analysis engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// Server represents the API server.
type Server struct {
	router  *chi.Mux
	addr    string
	timeout time.Duration
	server  *http.Server
}

// NewServer creates a new API server around the handlers.
func NewServer(handlers *Handlers, addr string, requestTimeout time.Duration) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)

		r.Get("/analyze", handlers.Analyze)
		r.Get("/analyze/batch", handlers.AnalyzeBatch)
		r.Get("/discover", handlers.Discover)

		r.Get("/history", handlers.GetHistory)
		r.Get("/export", handlers.ExportCSV)
		r.Delete("/cache", handlers.ClearCache)

		r.Get("/sources", handlers.GetSources)
	})

	return &Server{router: r, addr: addr, timeout: requestTimeout}
}

// Start starts the API server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", s.addr).Msg("Starting API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
