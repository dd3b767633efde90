package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Anurag2509-fledor/trade-simulator/internal/server/handler"
	"github.com/Anurag2509-fledor/trade-simulator/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health    *handler.HealthHandler
	Status    *handler.StatusHandler
	Estimates *handler.EstimateHandler
}

// Server is the read-only HTTP API server for the trade cost simulator.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up the middleware chain (CORS, request ID, logging) and exposes
// the Prometheus scrape endpoint when a metrics handler is provided.
func NewServer(cfg Config, handlers Handlers, metricsHandler http.Handler, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Pipeline status.
	mux.HandleFunc("GET /api/status", handlers.Status.Status)

	// Cost estimate endpoints.
	mux.HandleFunc("GET /api/estimates", handlers.Estimates.Estimates)
	mux.HandleFunc("GET /api/impact", handlers.Estimates.Impact)
	mux.HandleFunc("GET /api/slippage", handlers.Estimates.Slippage)
	mux.HandleFunc("GET /api/makertaker", handlers.Estimates.MakerTaker)
	mux.HandleFunc("GET /api/trajectory", handlers.Estimates.Trajectory)

	// Prometheus scrape endpoint.
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	// Build the middleware chain.
	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID()(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
