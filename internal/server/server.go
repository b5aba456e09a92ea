// Package server - HTTP API promptlab на echo.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ilkoid/promptlab/internal/app"
	"github.com/ilkoid/promptlab/pkg/utils"
)

// shutdownTimeout - сколько ждём завершения активных запросов.
const shutdownTimeout = 10 * time.Second

// Server represents the API server
type Server struct {
	echo  *echo.Echo
	state *app.AppState
}

// New creates a new API server
func New(state *app.AppState) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			utils.Info("HTTP request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency.String())
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:  e,
		state: state,
	}
	s.setupRoutes()

	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	api := s.echo.Group("/api")
	api.POST("/runPrompt", s.runPrompt)
	api.GET("/models", s.listModels)
	api.GET("/prompts", s.listPrompts)
	api.GET("/prompts/:id/history", s.promptHistory)
	api.POST("/prompts/:id/run", s.runStoredPrompt)
}

// Handler возвращает http.Handler сервера.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start слушает addr до отмены ctx, затем корректно останавливается.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		utils.Info("HTTP server started", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	utils.Info("HTTP server shutting down")
	return s.echo.Shutdown(shutdownCtx)
}
