// Package server provides HTTP server initialization and lifecycle management
// for the folio admin API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/scrypster/folio/internal/config"
	"github.com/scrypster/folio/internal/engine"
	"github.com/scrypster/folio/internal/metrics"
	"github.com/scrypster/folio/internal/storage"
	"github.com/scrypster/folio/web/handlers"
)

// Version is reported by /healthz. Overridden at build time.
var Version = "dev"

// Server owns the router, the websocket hub and the checker whose runs are
// broadcast to the hub.
type Server struct {
	cfg     *config.Config
	store   storage.ReportStore
	logger  logrus.FieldLogger
	hub     *handlers.WebSocketHub
	checker *engine.Checker
	router  chi.Router
}

// New wires handlers for cfg. The store receives every report created
// through the API.
func New(cfg *config.Config, store storage.ReportStore, logger logrus.FieldLogger) *Server {
	hub := handlers.NewWebSocketHub(logger, allowedOrigins(cfg.Server))
	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
		hub:    hub,
		checker: engine.NewChecker(
			engine.WithStore(store),
			engine.WithPublisher(hub),
			engine.WithLogger(logger),
		),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the websocket hub that report events are broadcast on.
func (s *Server) Hub() *handlers.WebSocketHub { return s.hub }

// Checker returns the checker used by the API. Runs triggered elsewhere in
// the process (file watcher) should use it so that subscribers see them.
func (s *Server) Checker() *engine.Checker { return s.checker }

func (s *Server) routes() chi.Router {
	apiHandlers := handlers.NewAPIHandlers(s.checker, s.logger)
	reportHandlers := handlers.NewReportHandlers(s.store)
	rateLimiter := handlers.NewRateLimiter(s.cfg.Server.RateLimit, s.cfg.Server.Burst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(handlers.RequestLogger(s.logger))
	r.Use(handlers.SecurityHeaders)
	r.Use(func(next http.Handler) http.Handler {
		return handlers.RateLimitMiddleware(next, rateLimiter)
	})

	// Health and metrics need no auth; they are scraped by monitoring.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"healthy","version":%q}`+"\n", Version)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// WebSocket endpoint (origin validation handles security)
	r.Method(http.MethodGet, "/ws", s.hub)

	r.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return handlers.RequireAuth(next, s.cfg)
		})
		r.Post("/validate", apiHandlers.Validate)
		r.Post("/deduplicate", apiHandlers.Deduplicate)
		r.Post("/admin/quality", apiHandlers.AdminQuality)
		r.Get("/reports", reportHandlers.List)
		r.Get("/reports/latest", reportHandlers.Latest)
		r.Get("/reports/{id}", reportHandlers.Get)
		r.Get("/config", handlers.ConfigHandler(s.cfg))
	})

	return r
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully and stops the hub.
// Returns the actual address being listened on (useful for testing with port 0).
func (s *Server) Start(ctx context.Context) (string, error) {
	addr := net.JoinHostPort(s.cfg.Server.Host, fmt.Sprint(s.cfg.Server.Port))
	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("server: listen on %s: %w", addr, err)
	}
	actualAddr := listener.Addr().String()

	go s.hub.Run()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("server: serve failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Warn("server: shutdown error")
		}
		s.hub.Stop()
	}()

	s.logger.WithField("addr", actualAddr).Info("server: listening")
	return actualAddr, nil
}

// allowedOrigins lists the browser origins the dashboard may be served
// from: the configured host plus its loopback aliases.
func allowedOrigins(cfg config.ServerConfig) []string {
	hosts := []string{cfg.Host}
	if cfg.Host == "127.0.0.1" || cfg.Host == "localhost" || cfg.Host == "0.0.0.0" {
		hosts = []string{"localhost", "127.0.0.1"}
	}
	origins := make([]string, 0, len(hosts))
	for _, h := range hosts {
		origins = append(origins, fmt.Sprintf("http://%s", net.JoinHostPort(h, fmt.Sprint(cfg.Port))))
	}
	return origins
}
