// Package server exposes the browsing and event-detail API over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trifetch/trifetch/internal/engine"
	"github.com/trifetch/trifetch/internal/service"
)

// Server wires the echo router to the store and the event-detail engine.
type Server struct {
	echo   *echo.Echo
	store  service.Store
	engine *engine.Engine
	logger *slog.Logger
}

// New creates the HTTP server and registers all routes.
func New(store service.Store, eng *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	// The SPA is served from a different origin during development.
	e.Use(middleware.CORS())

	s := &Server{
		echo:   e,
		store:  store,
		engine: eng,
		logger: logger,
	}

	e.GET("/patients", s.handleListPatients)
	e.GET("/patient/:patient_id/episodes", s.handleListEpisodes)
	e.GET("/event/:event_id", s.handleGetEvent)
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Start begins serving on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.logger.Info("HTTP server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for handler tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
