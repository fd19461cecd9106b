// Package api implements the JSON API serving the activity dashboard.
package api

import (
	"crypto/rand"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/ranchcam-go/internal/conf"
	"github.com/tphakala/ranchcam-go/internal/diel"
	"github.com/tphakala/ranchcam-go/internal/drivestore"
	"github.com/tphakala/ranchcam-go/internal/loader"
	"github.com/tphakala/ranchcam-go/internal/logging"
	"github.com/tphakala/ranchcam-go/internal/observability"
)

// Controller manages the API routes and handlers.
type Controller struct {
	Echo      *echo.Echo
	Group     *echo.Group
	Settings  *conf.Settings
	Snapshots *loader.Manager
	Store     drivestore.Store
	Diel      *diel.DielCalc

	logger         *log.Logger
	apiLogger      *slog.Logger
	apiLevelVar    *slog.LevelVar
	apiLoggerClose func() error
	metrics        *observability.Metrics
}

// New creates the API controller and registers its routes under /api/v1.
func New(e *echo.Echo, settings *conf.Settings, snapshots *loader.Manager,
	store drivestore.Store, dielCalc *diel.DielCalc, metrics *observability.Metrics) *Controller {

	c := &Controller{
		Echo:      e,
		Settings:  settings,
		Snapshots: snapshots,
		Store:     store,
		Diel:      dielCalc,
		logger:    log.Default(),
		metrics:   metrics,
	}

	c.apiLevelVar = new(slog.LevelVar)
	if settings != nil && settings.WebServer.Debug {
		c.apiLevelVar.Set(slog.LevelDebug)
	} else {
		c.apiLevelVar.Set(slog.LevelInfo)
	}

	logPath := filepath.Join("logs", "api.log")
	apiLogger, closeFn, err := logging.NewFileLogger(logPath, "api", c.apiLevelVar)
	if err != nil {
		c.logger.Printf("Failed to initialize API log file at %s: %v", logPath, err)
	} else {
		c.apiLogger = apiLogger
		c.apiLoggerClose = closeFn
	}

	c.Group = e.Group("/api/v1")
	c.initRoutes()
	return c
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)

	routeInitializers := []struct {
		name string
		fn   func()
	}{
		{"event routes", c.initEventRoutes},
		{"analytics routes", c.initAnalyticsRoutes},
		{"media routes", c.initMediaRoutes},
	}

	for _, initializer := range routeInitializers {
		c.Debug("Initializing %s...", initializer.name)
		initializer.fn()
	}
}

// Shutdown closes resources held by the controller.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			c.logger.Printf("Error closing API log file: %v", err)
		}
	}
}

// Debug logs a debug message when webserver debug mode is enabled.
func (c *Controller) Debug(format string, v ...any) {
	if c.Settings != nil && c.Settings.WebServer.Debug {
		c.logger.Printf(format, v...)
	}
}

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse builds an error response with a fresh correlation ID.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

// generateCorrelationID creates a unique identifier for error tracking
// using cryptographic randomness.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError logs an error with a correlation ID and writes the JSON
// error response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)
	ip := ctx.RealIP()

	c.logger.Printf("API Error [%s] from %s: %s: %v", errorResp.CorrelationID, ip, message, err)

	if c.apiLogger != nil {
		errorStr := message
		if err != nil {
			errorStr = err.Error()
		}
		c.apiLogger.Error("API Error",
			"correlation_id", errorResp.CorrelationID,
			"message", message,
			"error", errorStr,
			"code", code,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
			"ip", ip,
		)
	}

	return ctx.JSON(code, errorResp)
}

// logAPIRequest logs API request details to the structured API logger.
func (c *Controller) logAPIRequest(ctx echo.Context, level slog.Level, msg string, args ...any) {
	if c.apiLogger == nil {
		return
	}
	base := []any{
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP(),
	}
	c.apiLogger.Log(ctx.Request().Context(), level, msg, append(base, args...)...)
}

// HealthCheck reports service status and snapshot freshness.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	snap := c.Snapshots.Current()
	if snap == nil {
		response["status"] = "degraded"
		response["snapshot"] = nil
	} else {
		response["snapshot"] = map[string]any{
			"id":        snap.ID,
			"source":    snap.Source,
			"loaded_at": snap.LoadedAt.Format(time.RFC3339),
			"events":    len(snap.Events),
		}
	}
	if c.Settings != nil && c.Settings.Main.Name != "" {
		response["name"] = c.Settings.Main.Name
	}

	return ctx.JSON(http.StatusOK, response)
}

// currentSnapshot returns the active snapshot or writes a 503 when no load
// has succeeded yet.
func (c *Controller) currentSnapshot(ctx echo.Context) (*loader.Snapshot, error) {
	snap := c.Snapshots.Current()
	if snap == nil {
		return nil, c.HandleError(ctx, fmt.Errorf("no event snapshot loaded yet"),
			"Event data not available", http.StatusServiceUnavailable)
	}
	return snap, nil
}
