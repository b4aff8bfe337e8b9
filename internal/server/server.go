// Package server implements the deplist HTTP API.
//
// Routes:
//
//	GET  /healthz            build information
//	GET  /v1/options         resolver option names and defaults
//	POST /v1/resolve         resolve targets into a plan
//	POST /v1/graph?format=   render the plan graph as dot, svg or json
//	GET  /v1/plans           archived plan summaries, newest first
//	GET  /v1/plans/{id}      one archived plan
//
// Request bodies are [pipeline.Options] in JSON. Errors are returned as
// {"code": ..., "message": ...} with a status derived from the error code.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/deplist/pkg/observability"
	"github.com/matzehuels/deplist/pkg/pipeline"
)

// DefaultTimeout bounds a request when none is configured.
const DefaultTimeout = 30 * time.Second

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// Server serves the API over a shared pipeline runner.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	hooks   observability.ServerHooks
	timeout time.Duration
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option { return func(s *Server) { s.timeout = d } }

// WithHooks sets the server hooks. The default is observability.Server().
func WithHooks(h observability.ServerHooks) Option { return func(s *Server) { s.hooks = h } }

// New creates a server.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		logger:  logger,
		hooks:   observability.Server(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Post("/resolve", s.handleResolve)
		r.Post("/graph", s.handleGraph)
		r.Get("/plans", s.handleListPlans)
		r.Get("/plans/{id}", s.handleGetPlan)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
