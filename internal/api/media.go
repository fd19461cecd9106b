package api

import (
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

// initMediaRoutes registers the photo proxy endpoint.
func (c *Controller) initMediaRoutes() {
	c.Group.GET("/media/:camera/:filename", c.ServeMedia)
}

// ServeMedia streams a photo from remote storage. Photos that cannot be
// resolved return 404; upstream download failures return 502 so a broken
// photo never takes down the listing views that link to it.
func (c *Controller) ServeMedia(ctx echo.Context) error {
	camera := ctx.Param("camera")
	filename := ctx.Param("filename")

	if strings.Contains(filename, "..") || strings.Contains(camera, "..") {
		return c.HandleError(ctx, echo.ErrBadRequest, "Invalid media path", http.StatusBadRequest)
	}
	if c.Store == nil {
		return c.HandleError(ctx, echo.ErrServiceUnavailable,
			"Photo storage not configured", http.StatusServiceUnavailable)
	}

	reqCtx := ctx.Request().Context()
	ref, found := c.Store.ResolveFile(reqCtx, camera, filename)
	if !found {
		c.logAPIRequest(ctx, slog.LevelDebug, "photo not found",
			"camera", camera, "filename", filename)
		return c.HandleError(ctx, echo.ErrNotFound, "Photo not found", http.StatusNotFound)
	}

	data, err := c.Store.Download(reqCtx, ref.ID)
	if err != nil {
		if c.metrics != nil {
			c.metrics.DriveDownloadsTotal.WithLabelValues("error").Inc()
		}
		return c.HandleError(ctx, err, "Failed to fetch photo", http.StatusBadGateway)
	}
	if c.metrics != nil {
		c.metrics.DriveDownloadsTotal.WithLabelValues("success").Inc()
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	ctx.Response().Header().Set("Cache-Control", "public, max-age=3600")
	return ctx.Blob(http.StatusOK, contentType, data)
}
