// Package server exposes the relation resolver over HTTP: a JSON resolve
// endpoint plus health and metrics endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"relation-labels/internal/config"
	"relation-labels/internal/logging"
	"relation-labels/internal/resolve"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Pinger reports database connectivity for health checks. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Option configures optional server features.
type Option func(*Server)

// WithMetricsRegistry exposes the given registry on /metrics.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithTracing wraps the handler chain in OpenTelemetry HTTP instrumentation.
func WithTracing() Option {
	return func(s *Server) { s.tracing = true }
}

// WithDefaultLanguageID sets the language overlay applied to requests that do
// not specify one.
func WithDefaultLanguageID(id int64) Option {
	return func(s *Server) { s.defaultLanguageID = id }
}

// Server serves relation resolution requests.
type Server struct {
	cfg      config.ServerConfig
	logger   *logging.Logger
	resolver *resolve.Resolver
	fetcher  resolve.RecordFetcher
	db       Pinger

	registry          *prometheus.Registry
	tracing           bool
	defaultLanguageID int64

	srv *http.Server
}

// New creates a server. The fetcher loads source records before resolution;
// db backs the health check.
func New(cfg config.ServerConfig, logger *logging.Logger, resolver *resolve.Resolver, fetcher resolve.RecordFetcher, db Pinger, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
		fetcher:  fetcher,
		db:       db,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.buildHandler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the full HTTP handler chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/resolve", s.withRequestLogging(http.HandlerFunc(s.handleResolve)))
	mux.HandleFunc("/health", s.handleHealth)
	if s.registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	var handler http.Handler = mux
	if s.tracing || s.registry != nil {
		handler = otelhttp.NewHandler(handler, "http.server",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return httpRootSpanName(r)
			}),
		)
	}
	return handler
}

func httpRootSpanName(r *http.Request) string {
	if r == nil {
		return "HTTP /*"
	}
	method := strings.TrimSpace(r.Method)
	if method == "" {
		method = "HTTP"
	}
	switch r.URL.Path {
	case "/resolve", "/health", "/metrics":
		return method + " " + r.URL.Path
	default:
		return method + " /*"
	}
}

// Start launches the HTTP server goroutine and returns a channel that
// receives at most one fatal server error.
func (s *Server) Start() <-chan error {
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("address", s.srv.Addr),
			slog.String("resolve_endpoint", "/resolve"),
			slog.String("health_endpoint", "/health"),
			slog.Bool("metrics_enabled", s.registry != nil),
		)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed: %w", err)
		}
	}()
	return serverErrors
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
