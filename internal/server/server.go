package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/cpusched/internal/config"
	"github.com/me/cpusched/internal/retention"
	"github.com/me/cpusched/internal/sim"
	"github.com/me/cpusched/internal/store"
	"github.com/me/cpusched/internal/validate"
)

// Version is reported by the discovery and health endpoints.
const Version = "0.3.0"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Server is the cpusched REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	store     store.Store
	retention *retention.Loop // optional; nil when pruning is disabled
	limits    validate.Limits
	simOpts   sim.Options
	newID     func() string
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithRetention sets the loop that prunes old runs.
func WithRetention(l *retention.Loop) Option {
	return func(s *Server) {
		s.retention = l
	}
}

// WithIDGenerator replaces the generator for simulation run IDs.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, logger *slog.Logger, opts ...Option) *Server {
	simOpts := sim.DefaultOptions()
	if cfg.MaxSteps > 0 {
		simOpts.MaxSteps = cfg.MaxSteps
	}
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		store:     st,
		limits:    validate.Limits{MaxProcesses: cfg.MaxProcesses, MaxTime: cfg.MaxTime},
		simOpts:   simOpts,
		newID:     runID,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

// StartRetention begins the retention loop in a background goroutine.
func (s *Server) StartRetention(ctx context.Context) {
	if s.retention == nil {
		return
	}
	go func() {
		if err := s.retention.Start(ctx); err != nil && err != context.Canceled {
			s.logger.Error("retention stopped", "error", err)
		}
	}()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		// Discovery
		r.Get("/", s.handleDiscovery)

		// Health
		r.Get("/health", s.handleHealth)

		// Policy catalogue
		r.Get("/policies", s.handleListPolicies)

		// Stateless scheduling
		r.Post("/schedule/{policy}", s.handleSchedule)

		// Persisted simulations
		r.Route("/simulations", func(r chi.Router) {
			r.Get("/", s.handleListSimulations)
			r.Post("/", s.handleCreateSimulation)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSimulation)
				r.Delete("/", s.handleDeleteSimulation)
			})
		})

		// Policy comparison
		r.Post("/compare", s.handleCompare)
	})
}
