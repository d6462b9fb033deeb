// Package server provides the HTTP server implementation for the simulator.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jainsameer1991/object-storage/internal/config"
	apperrors "github.com/jainsameer1991/object-storage/internal/errors"
	"github.com/jainsameer1991/object-storage/internal/handler"
	"github.com/jainsameer1991/object-storage/internal/health"
	"github.com/jainsameer1991/object-storage/internal/metrics"
	"github.com/jainsameer1991/object-storage/internal/middleware"
	"github.com/jainsameer1991/object-storage/internal/service"
	"go.uber.org/zap"
)

// unmatchedRoute labels requests that hit no route.
const unmatchedRoute = "unmatched"

// Server represents the HTTP server.
type Server struct {
	router       *mux.Router
	root         http.Handler
	httpServer   *http.Server
	handlers     *handler.Handlers
	healthCheck  *health.HealthCheck
	metrics      *metrics.Metrics
	errorHandler *apperrors.Handler
	logger       *zap.Logger
	cfg          *config.Config
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.Config,
	status *service.StatusService,
	routing *service.RoutingService,
	healthCheck *health.HealthCheck,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Server {
	router := mux.NewRouter()
	errorHandler := apperrors.NewHandler(logger)

	s := &Server{
		router:       router,
		root:         router,
		handlers:     handler.NewHandlers(status, routing, errorHandler, logger),
		healthCheck:  healthCheck,
		metrics:      m,
		errorHandler: errorHandler,
		logger:       logger,
		cfg:          cfg,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { s.root.ServeHTTP(w, r) }),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// SetupRoutes configures all HTTP routes.
func (s *Server) SetupRoutes() {
	middlewareChain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Logging(s.logger),
		middleware.CORS(s.cfg.CORS.AllowedOrigins),
	}

	if s.cfg.Metrics.Enabled {
		middlewareChain = append(middlewareChain, metrics.MetricsMiddleware(s.metrics, s.routeLabel))
	}

	if s.cfg.RateLimiter.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			s.cfg.RateLimiter.RequestsPerSecond,
			s.cfg.RateLimiter.BurstSize,
			s.logger,
		)
		middlewareChain = append(middlewareChain, rateLimiter.Limit)
	}

	// Health check endpoints
	s.router.HandleFunc("/health", s.healthCheck.LivenessHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.healthCheck.ReadinessHandler).Methods(http.MethodGet)

	// Dashboard API. Registered on the root router so method mismatches answer 405.
	s.router.HandleFunc("/files", s.handlers.ListFiles).Methods(http.MethodGet)
	s.router.HandleFunc("/files/system/status", s.handlers.GetSystemStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/files/system/status", s.handlers.SetSystemStatus).Methods(http.MethodPost)
	s.router.HandleFunc("/files/partition-servers", s.handlers.ListPartitionServers).Methods(http.MethodGet)
	s.router.HandleFunc("/files/partition-manager/leader-election-log", s.handlers.GetElectionLog).Methods(http.MethodGet)
	s.router.HandleFunc("/files/migrations", s.handlers.ListMigrations).Methods(http.MethodGet)
	s.router.HandleFunc("/files/simulate", s.handlers.SimulateLookup).Methods(http.MethodPost)
	s.router.HandleFunc("/files/{filename}", s.handlers.GetFile).Methods(http.MethodGet)

	// Per-component endpoints
	s.router.HandleFunc("/partition-manager/partition-for-key", s.handlers.PartitionForKey).Methods(http.MethodGet)
	s.router.HandleFunc("/partition-server/file/{filename}", s.handlers.GetExtentMap).Methods(http.MethodGet)
	s.router.HandleFunc("/stream-manager/get-file", s.handlers.LocateReplica).Methods(http.MethodPost)
	s.router.HandleFunc("/extent-node/retrieve/{id}", s.handlers.RetrieveChunk).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(middleware.RequestIDHeader)
		s.errorHandler.WriteErrorResponse(w, http.StatusNotFound, apperrors.ErrorCodeInvalidRequest, "endpoint not found", requestID)
	})

	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(middleware.RequestIDHeader)
		s.errorHandler.WriteErrorResponse(w, http.StatusMethodNotAllowed, apperrors.ErrorCodeInvalidRequest, "method not allowed", requestID)
	})

	// Wrap the whole router so preflight and unmatched requests pass through the chain too
	s.root = middleware.Chain(middlewareChain...)(s.router)
}

// routeLabel returns the matched route template, keeping metric cardinality bounded.
func (s *Server) routeLabel(r *http.Request) string {
	var match mux.RouteMatch
	if !s.router.Match(r, &match) || match.Route == nil {
		return unmatchedRoute
	}
	tmpl, err := match.Route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}
	return tmpl
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.Int("port", s.cfg.Server.Port),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// GetHandler returns the http.Handler for the server, middleware included.
func (s *Server) GetHandler() http.Handler {
	return s.root
}
