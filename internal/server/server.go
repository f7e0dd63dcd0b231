// Package server exposes the resolution pipeline over HTTP.
//
// Routes:
//
//	POST /v1/resolve        resolve an application manifest and its components
//	POST /v1/graph          render a manifest's fallback graph as DOT or SVG
//	GET  /v1/chains/{rid}   the compiled-in default chain for a RID
//	GET  /healthz           liveness
//	GET  /metrics           Prometheus metrics, when a handler is configured
//
// Every response carries an X-Request-ID header. A client-supplied UUID is
// echoed back; otherwise a random one is generated.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/ridasset/internal/config"
	"github.com/matzehuels/ridasset/pkg/pipeline"
	"github.com/matzehuels/ridasset/pkg/rid"
)

// Server serves the HTTP API.
type Server struct {
	settings config.ServerConfig
	runner   *pipeline.Runner
	logger   *log.Logger
	detector rid.Detector
	metrics  http.Handler
	start    time.Time

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the runner's logger for request logging.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDetector sets the detector used for unset and unknown requests. By
// default the server reports an unknown platform, so those requests fall
// back to agnostic assets unless the client names a RID.
func WithDetector(d rid.Detector) Option {
	return func(s *Server) { s.detector = d }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New prepares a server. settings is defaulted with [config.Config.WithDefaults].
func New(runner *pipeline.Runner, settings config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		settings: config.Config{Server: settings}.WithDefaults().Server,
		runner:   runner,
		logger:   runner.Logger,
		start:    time.Now(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/resolve", s.handleResolve)
		r.Post("/graph", s.handleGraph)
		r.Get("/chains/{rid}", s.handleChain)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Code: "NOT_FOUND"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
	})
	return r
}

// ListenAndServe binds the configured address and serves until ctx is
// canceled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		return ctx.Err()
	}
}

// Listen binds the configured address without serving.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("server already listening on %s", s.listener.Addr())
	}
	ln, err := net.Listen("tcp", s.settings.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.settings.Addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout.Duration,
		WriteTimeout: s.settings.WriteTimeout.Duration,
	}
	return nil
}

// Serve serves on the bound listener until Shutdown.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	srv, ln := s.server, s.listener
	s.mu.Unlock()
	if srv == nil {
		return fmt.Errorf("server is not listening")
	}
	srv.BaseContext = func(net.Listener) context.Context { return ctx }
	s.logger.Info("listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.server = nil
	s.listener = nil
	return err
}
