package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// NewRouter builds the HTTP routes for s. Metrics are served from gatherer.
func NewRouter(s *Server, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Unprotected for scraping
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	m := s.metrics
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimitMiddleware(s.config.RateLimit, s.config.Burst, m))
		r.Use(m.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Get("/types", m.InstrumentHandler("GET", "/api/v1/types", s.handleListTypes))
		r.Get("/types/unresolved", m.InstrumentHandler("GET", "/api/v1/types/unresolved", s.handleUnresolved))
		r.Get("/types/{name}", m.InstrumentHandler("GET", "/api/v1/types/{name}", s.handleGetType))
		r.Post("/types/{name}/encode", m.InstrumentHandler("POST", "/api/v1/types/{name}/encode", s.handleEncode))
		r.Post("/types/{name}/decode", m.InstrumentHandler("POST", "/api/v1/types/{name}/decode", s.handleDecode))

		r.Get("/snapshots", m.InstrumentHandler("GET", "/api/v1/snapshots", s.handleListSnapshots))
		r.Get("/snapshots/{id}", m.InstrumentHandler("GET", "/api/v1/snapshots/{id}", s.handleGetSnapshot))
	})

	return r
}

// StartServer serves s until ctx is cancelled, then shuts down gracefully
func StartServer(ctx context.Context, s *Server, gatherer prometheus.Gatherer) error {
	addr := net.JoinHostPort(s.config.Bind, strconv.Itoa(s.config.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(s, gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	defer close(done)
	go s.startMetricsUpdater(done)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting sub-script API server",
			zap.String("addr", addr),
			zap.Int("types", s.lookup.Len()),
			zap.Bool("auth", s.config.APIKey != ""))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "listen on %s", addr)
	case <-ctx.Done():
	}

	s.log.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown API server")
	}
	return nil
}
