package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mikey/fraud-shield/internal/config"
	"github.com/mikey/fraud-shield/internal/core"
)

// Server is the HTTP frontend of the scan service
type Server struct {
	service  *core.ScanService
	cache    *core.FingerprintCache
	history  core.HistoryLedger
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	cfg      config.ServerConfig

	httpServer *http.Server
	now        func() time.Time
}

// NewServer creates a new HTTP frontend. gatherer may be nil to disable
// the metrics endpoint.
func NewServer(
	service *core.ScanService,
	cache *core.FingerprintCache,
	history core.HistoryLedger,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
	cfg config.ServerConfig,
) *Server {
	return &Server{
		service:  service,
		cache:    cache,
		history:  history,
		gatherer: gatherer,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Routes returns the chi router serving the API
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	r.Use(s.limitBody)

	r.Route("/api", func(r chi.Router) {
		r.Post("/scan-text", s.scanHandler(core.AnalysisScam))
		r.Post("/scan-url", s.scanHandler(core.AnalysisURL))
		r.Post("/scan-news", s.scanHandler(core.AnalysisNews))

		r.Get("/history", s.listHistory)
		r.Delete("/history", s.clearHistory)
		r.Delete("/history/{id}", s.deleteRecord)
		r.Get("/record/{id}", s.getRecord)

		r.Get("/cache/stats", s.cacheStats)
		r.Delete("/cache", s.clearCache)
	})

	r.Get("/health", s.health)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// Start starts listening without blocking
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.logger.Info("HTTP server starting",
		zap.String("address", listener.Addr().String()),
		zap.String("provider", s.service.Provider()))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops accepting requests and waits for in-flight ones
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
