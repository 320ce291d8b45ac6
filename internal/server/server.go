// Package server exposes one in-memory history DAG over HTTP.
//
// Routes:
//
//	GET  /healthz    liveness probe
//	GET  /summary    node, edge and leaf counts, history count, parsimony range
//	GET  /count      number of histories
//	GET  /histogram  parsimony score histogram
//	GET  /dag        the DAG in exchange form
//	POST /merge      merge an exchange-form DAG into the served one
//	GET  /metrics    Prometheus metrics, when a handler is configured
//
// History counts are arbitrary-precision and encoded as decimal strings.
// Reads share a lock; merges take it exclusively, and a failed merge leaves
// the served DAG unchanged.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/historydag/pkg/hdag"
)

// Options configures a [Server].
type Options struct {
	Logger *log.Logger
	// Metrics serves GET /metrics. Nil disables the route.
	Metrics http.Handler
	// MaxBodyBytes bounds POST /merge bodies. Zero means 64 MiB.
	MaxBodyBytes int64
	// ReadTimeout and WriteTimeout configure the listener in [Server.Run].
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves queries over a single DAG. The zero DAG is allowed: the
// first POST /merge installs one.
type Server struct {
	mu  sync.RWMutex
	dag *hdag.DAG

	logger *log.Logger
	opts   Options
	router chi.Router
}

// New creates a server for d, which may be nil.
func New(d *hdag.DAG, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = 64 << 20
	}
	s := &Server{dag: d, logger: opts.Logger, opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Get("/summary", s.summary)
	r.Get("/count", s.count)
	r.Get("/histogram", s.histogram)
	r.Get("/dag", s.exportDAG)
	r.Post("/merge", s.merge)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// DAG returns the served DAG. Callers must not modify it.
func (s *Server) DAG() *hdag.DAG {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dag
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
