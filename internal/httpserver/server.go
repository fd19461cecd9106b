// Package httpserver wires the echo web server hosting the dashboard API
// and the metrics endpoint.
package httpserver

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tphakala/ranchcam-go/internal/api"
	"github.com/tphakala/ranchcam-go/internal/conf"
	"github.com/tphakala/ranchcam-go/internal/diel"
	"github.com/tphakala/ranchcam-go/internal/drivestore"
	"github.com/tphakala/ranchcam-go/internal/loader"
	"github.com/tphakala/ranchcam-go/internal/logging"
	"github.com/tphakala/ranchcam-go/internal/observability"
)

// Server hosts the dashboard API over HTTP.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings
	API      *api.Controller

	webLogger      *slog.Logger
	webLoggerClose func() error
	levelVar       *slog.LevelVar
}

// New builds the server, configures middleware and registers all routes.
func New(settings *conf.Settings, snapshots *loader.Manager, store drivestore.Store,
	dielCalc *diel.DielCalc, metrics *observability.Metrics) *Server {

	configureDefaultSettings(settings)

	s := &Server{
		Echo:     echo.New(),
		Settings: settings,
	}
	s.Echo.HideBanner = true

	s.initLogger()
	s.configureMiddleware()

	s.API = api.New(s.Echo, settings, snapshots, store, dielCalc, metrics)

	if metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}

	return s
}

// configureDefaultSettings sets fallbacks for missing server settings.
func configureDefaultSettings(settings *conf.Settings) {
	if settings.WebServer.Port == "" {
		settings.WebServer.Port = "8080"
	}
}

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 6,
		Skipper: func(c echo.Context) bool {
			// Photo bytes are already compressed.
			return c.Path() == "/api/v1/media/:camera/:filename"
		},
	}))
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	}))
	s.Echo.Use(s.requestLoggerMiddleware())
}

// initLogger sets up the web request log file.
func (s *Server) initLogger() {
	s.levelVar = new(slog.LevelVar)
	if s.Settings.WebServer.Debug {
		s.levelVar.Set(slog.LevelDebug)
	} else {
		s.levelVar.Set(slog.LevelInfo)
	}

	logPath := filepath.Join("logs", "web.log")
	webLogger, closeFn, err := logging.NewFileLogger(logPath, "web", s.levelVar)
	if err != nil {
		log.Printf("Failed to initialize web log file at %s: %v", logPath, err)
		return
	}
	s.webLogger = webLogger
	s.webLoggerClose = closeFn
}

// requestLoggerMiddleware logs each request with latency and status.
func (s *Server) requestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if s.webLogger == nil {
				return nil
			}
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			} else if v.Status >= http.StatusBadRequest {
				level = slog.LevelWarn
			}
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"ip", c.RealIP(),
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error.Error())
			}
			s.webLogger.Log(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// Start runs the server until the context is cancelled, then shuts it down
// gracefully. The listen address comes from the webserver settings.
func (s *Server) Start(ctx context.Context) error {
	addr := ":" + s.Settings.WebServer.Port

	errChan := make(chan error, 1)
	go func() {
		if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	logging.Info("web server listening", "addr", addr)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown performs cleanup operations and gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.API != nil {
		s.API.Shutdown()
	}
	if s.webLoggerClose != nil {
		if err := s.webLoggerClose(); err != nil {
			log.Printf("Error closing web log file: %v", err)
		}
	}
	return s.Echo.Shutdown(ctx)
}
