// Package web serves the food-sales dashboard over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/Veraticus/foodsales/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config holds server settings.
type Config struct {
	Logger          *slog.Logger
	Addr            string
	Mode            filter.Mode
	ShutdownTimeout time.Duration
	SessionTTL      time.Duration
}

// Server is the web dashboard. The dataset is loaded once before the
// server is built; a failed load turns every page into the failure message.
type Server struct {
	router   chi.Router
	logger   *slog.Logger
	server   *http.Server
	sessions *SessionStore
	loadErr  error
	data     model.Table
	options  filter.Options
	config   Config
}

// NewServer builds the router for data, or for loadErr when the dataset
// could not be loaded.
func NewServer(cfg Config, data model.Table, loadErr error) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		logger:  cfg.Logger,
		config:  cfg,
		data:    data,
		loadErr: loadErr,
		options: filter.DeriveOptions(data),
	}
	s.sessions = NewSessionStore(func() *filter.Session {
		return filter.NewSession(cfg.Mode, filter.DefaultSelection(cfg.Mode, data))
	}, cfg.SessionTTL)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(cfg.Logger))
	router.Use(middleware.Recoverer)

	router.Get("/", s.handleDashboard)
	router.Get("/healthz", s.handleHealth)
	router.Route("/api", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Get("/records", s.handleRecords)
	})

	s.router = router
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the per-browser session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("Starting server", "addr", s.server.Addr, "mode", s.config.Mode.String())
		serverErrors <- s.server.ListenAndServe()
	}()

	if s.config.SessionTTL > 0 {
		go s.pruneSessions(ctx)
	}

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Graceful shutdown failed", "error", err)
			return s.server.Close()
		}
	}

	return nil
}

func (s *Server) pruneSessions(ctx context.Context) {
	ticker := time.NewTicker(s.config.SessionTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Prune(); n > 0 {
				s.logger.Debug("Pruned idle sessions", "count", n)
			}
		}
	}
}
