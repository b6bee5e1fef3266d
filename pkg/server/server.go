package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/openfroyo/bodygraph/pkg/config"
	"github.com/openfroyo/bodygraph/pkg/service"
)

// Options configures the HTTP API.
type Options struct {
	// DefaultSave applies when a chart request has no save parameter.
	DefaultSave bool

	// MaxBatchSize bounds the requests in one batch. Zero means 100.
	MaxBatchSize int

	// Metrics serves /metrics. Nil disables the route.
	Metrics http.Handler
}

// Server is the bodygraph HTTP API.
type Server struct {
	svc    *service.Service
	opts   Options
	logger zerolog.Logger
	router chi.Router
}

// New creates the API and its routes.
func New(svc *service.Service, opts Options, logger zerolog.Logger) *Server {
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = 100
	}

	s := &Server{
		svc:    svc,
		opts:   opts,
		logger: logger.With().Str("component", "http").Logger(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/gates/{degree}", s.handleGate)

		r.Route("/charts", func(r chi.Router) {
			r.Post("/", s.handleCreateChart)
			r.Post("/batch", s.handleBatchCharts)
			r.Get("/", s.handleListCharts)
			r.Get("/{id}", s.handleGetChart)
			r.Delete("/{id}", s.handleDeleteChart)
		})
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", cfg.Addr).Msg("HTTP API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("Shutting down HTTP API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}

// requestLogger logs one line per request with zerolog.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
		})
	}
}
