// Package server provides HTTP server management and lifecycle handling for the
// label checker: middleware, routes and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/giygas/druglabel-checker/config"
	"github.com/giygas/druglabel-checker/interfaces"
	"github.com/giygas/druglabel-checker/logging"
	"github.com/giygas/druglabel-checker/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const rateLimiterCleanupInterval = 30 * time.Minute

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	handler interfaces.HTTPHandler
	limiter *RateLimiter
	config  *config.Config

	cleanupCtx  context.Context
	stopCleanup context.CancelFunc
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()

	// A check may run two sequential searches per drug
	writeTimeout := 2*cfg.OpenFDA.Timeout + 15*time.Second

	s := &Server{
		server: &http.Server{
			Handler:           router,
			Addr:              net.JoinHostPort(cfg.Address, cfg.Port),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    int(cfg.MaxHeaderSize),
		},
		router:  router,
		handler: handler,
		limiter: NewRateLimiter(rateLimitRate, rateLimitCapacity),
		config:  cfg,
	}
	s.cleanupCtx, s.stopCleanup = context.WithCancel(context.Background())

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	if s.config.TrustProxy {
		// Must run before RealIP rewrites RemoteAddr
		s.router.Use(BlockDirectAccessMiddleware)
	}
	s.router.Use(RealIPMiddleware(s.config.TrustProxy))
	s.router.Use(logging.LoggingMiddleware(logging.Logger()))
	s.router.Use(metrics.Metrics)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Middleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handler.ServeIndex)

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/labels/{name}", s.handler.ServeLabel)
		r.Get("/interactions", s.handler.ServeInteractions)
		r.Get("/crosscheck", s.handler.ServeCrossCheck)
	})

	s.router.Get("/health", s.handler.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server and blocks until it stops. A graceful shutdown is not
// reported as an error.
func (s *Server) Start() error {
	go s.limiter.RunCleanup(s.cleanupCtx, rateLimiterCleanupInterval)

	logging.Info(fmt.Sprintf("Starting server at: %s", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.stopCleanup()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}
