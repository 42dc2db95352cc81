// Package api provides the HTTP API for epicboard.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/services/planner"
)

// Store is the epic storage the API reads and writes
type Store interface {
	planner.Source
	Create(ctx context.Context, e domain.Epic) (domain.Epic, error)
	Delete(ctx context.Context, id string) error
}

// Config holds HTTP server configuration
type Config struct {
	Host string
	Port int
}

// Server provides HTTP endpoints for epics and their phases
type Server struct {
	echo    *echo.Echo
	store   Store
	planner *planner.Planner
	logger  *slog.Logger
	config  *Config
}

// NewServer creates a new HTTP server
func NewServer(store Store, logger *slog.Logger, cfg *Config) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg == nil {
		cfg = &Config{Host: "127.0.0.1", Port: 7420}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(e, logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	s := &Server{
		echo:    e,
		store:   store,
		planner: planner.New(store, logger),
		logger:  logger,
		config:  cfg,
	}
	s.registerRoutes()

	return s, nil
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the status before logging it
				c.Error(err)
			}

			logger.Info("http request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/epics", s.handleListEpics)
	v1.POST("/epics", s.handleCreateEpic)
	v1.GET("/epics/:id", s.handleGetEpic)
	v1.DELETE("/epics/:id", s.handleDeleteEpic)
	v1.PUT("/epics/:id/status", s.handleUpdateStatus)
	v1.PUT("/epics/:id/dependencies", s.handleSetDependencies)

	v1.GET("/phases", s.handlePhases)
	v1.POST("/cycle-check", s.handleCycleCheck)
	v1.POST("/preview", s.handlePreview)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ─── Errors ──────────────────────────────────────────────────────────────────

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	// Path is set on 409 responses and names the cycle, start to start
	Path []string `json:"path,omitempty"`
}

// errorHandler maps domain errors onto status codes
func errorHandler(e *echo.Echo, logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "uri", c.Request().RequestURI, "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("writing error response", "error", err)
		}
	}
}

func statusFor(err error) (int, ErrorResponse) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, ErrorResponse{Error: fmt.Sprint(httpErr.Message)}
	}

	var cycleErr *domain.CycleError
	switch {
	case errors.As(err, &cycleErr):
		return http.StatusConflict, ErrorResponse{Error: cycleErr.Error(), Path: cycleErr.Path}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error"}
	}
}
