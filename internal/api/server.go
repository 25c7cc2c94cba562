// Package api wires the HTTP surface: routing, middleware chains and
// request handlers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soltodo/service-layer/internal/auth"
	"github.com/soltodo/service-layer/internal/chain"
	"github.com/soltodo/service-layer/internal/config"
	"github.com/soltodo/service-layer/internal/logging"
	"github.com/soltodo/service-layer/internal/metrics"
	"github.com/soltodo/service-layer/internal/middleware"
	"github.com/soltodo/service-layer/internal/todo"
)

// Server hosts the todo service API.
type Server struct {
	cfg        *config.Config
	logger     *logging.Logger
	auth       *auth.Service
	todos      *todo.Service
	chain      *chain.Client
	limiter    *middleware.RateLimiter
	router     *mux.Router
	httpServer *http.Server
}

// New assembles the server from its collaborators.
func New(cfg *config.Config, logger *logging.Logger, authService *auth.Service, todoService *todo.Service, chainClient *chain.Client, registry *prometheus.Registry) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		auth:    authService,
		todos:   todoService,
		chain:   chainClient,
		limiter: middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Duration, logger),
		router:  mux.NewRouter(),
	}

	m := metrics.New(registry)
	s.router.Use(middleware.Logging(logger))
	s.router.Use(middleware.Metrics(m))

	s.routes(registry)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes(registry *prometheus.Registry) {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth", s.handleAuthenticate).Methods(http.MethodPost)

	todos := api.PathPrefix("/todos").Subrouter()
	todos.Use(middleware.Auth(s.auth, s.logger))
	todos.Use(s.limiter.Handler())
	todos.HandleFunc("", s.handleListTodos).Methods(http.MethodGet)
	todos.HandleFunc("", s.handleCreateTodo).Methods(http.MethodPost)
	todos.HandleFunc("/{id:[0-9]+}", s.handleUpdateTodo).Methods(http.MethodPut)
	todos.HandleFunc("/{id:[0-9]+}", s.handleDeleteTodo).Methods(http.MethodDelete)

	transactions := api.PathPrefix("/transactions").Subrouter()
	transactions.Use(middleware.Auth(s.auth, s.logger))
	transactions.Use(s.limiter.Handler())
	transactions.HandleFunc("/prepare/create", s.handlePrepareCreate).Methods(http.MethodPost)
	transactions.HandleFunc("/prepare/update/{id:[0-9]+}", s.handlePrepareUpdate).Methods(http.MethodPost)
	transactions.HandleFunc("/prepare/delete", s.handlePrepareDelete).Methods(http.MethodPost)
	transactions.HandleFunc("/prepare/init", s.handlePrepareInitialize).Methods(http.MethodPost)
	transactions.HandleFunc("/submit", s.handleSubmit).Methods(http.MethodPost)
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
