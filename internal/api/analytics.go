package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/ranchcam-go/internal/events"
)

// initAnalyticsRoutes registers aggregation endpoints.
func (c *Controller) initAnalyticsRoutes() {
	analyticsGroup := c.Group.Group("/analytics")
	analyticsGroup.GET("/categories", c.GetCategoryCounts)
	analyticsGroup.GET("/timeofday", c.GetTimeOfDayCounts)
	analyticsGroup.GET("/weekdays", c.GetWeekdayCounts)
	analyticsGroup.GET("/labels/top", c.GetTopLabels)
}

// filteredEvents applies query criteria to the current snapshot so every
// aggregation endpoint operates on the same filter surface as the listing.
// When ok is false the error response has already been written.
func (c *Controller) filteredEvents(ctx echo.Context) (filtered []events.Event, snapshotID string, ok bool) {
	snap := c.Snapshots.Current()
	if snap == nil {
		_ = c.HandleError(ctx, echo.ErrServiceUnavailable,
			"Event data not available", http.StatusServiceUnavailable)
		return nil, "", false
	}
	crit, err := parseCriteria(ctx)
	if err != nil {
		_ = c.HandleError(ctx, err, "Invalid filter parameters", http.StatusBadRequest)
		return nil, "", false
	}
	return events.Filter(snap.Events, crit), snap.ID, true
}

// GetCategoryCounts returns event counts per category.
func (c *Controller) GetCategoryCounts(ctx echo.Context) error {
	filtered, snapshotID, ok := c.filteredEvents(ctx)
	if !ok {
		return nil
	}

	counts := events.CountByCategory(filtered)
	return ctx.JSON(http.StatusOK, map[string]any{
		"snapshot_id": snapshotID,
		"categories":  counts,
	})
}

// GetTimeOfDayCounts returns per-label counts bucketed by hour of day.
// The granularity query parameter selects 1, 2 or 4 hour buckets.
func (c *Controller) GetTimeOfDayCounts(ctx echo.Context) error {
	granularity := 1
	if c.Settings != nil && c.Settings.Dashboard.TimeGranularity > 0 {
		granularity = c.Settings.Dashboard.TimeGranularity
	}
	if v := ctx.QueryParam("granularity"); v != "" {
		g, err := strconv.Atoi(v)
		if err != nil || (g != 1 && g != 2 && g != 4) {
			return c.HandleError(ctx, echo.ErrBadRequest,
				"Invalid granularity, expected 1, 2 or 4", http.StatusBadRequest)
		}
		granularity = g
	}

	filtered, snapshotID, ok := c.filteredEvents(ctx)
	if !ok {
		return nil
	}

	buckets := events.CountByTimeBucket(filtered, granularity)
	return ctx.JSON(http.StatusOK, map[string]any{
		"snapshot_id": snapshotID,
		"granularity": granularity,
		"buckets":     buckets,
	})
}

// GetWeekdayCounts returns event counts per weekday, Sunday first.
func (c *Controller) GetWeekdayCounts(ctx echo.Context) error {
	filtered, snapshotID, ok := c.filteredEvents(ctx)
	if !ok {
		return nil
	}

	counts := events.CountByWeekday(filtered)
	return ctx.JSON(http.StatusOK, map[string]any{
		"snapshot_id": snapshotID,
		"weekdays":    counts,
	})
}

// GetTopLabels returns the N most frequent labels with the remainder
// folded into a display bucket.
func (c *Controller) GetTopLabels(ctx echo.Context) error {
	limit := 9
	if c.Settings != nil && c.Settings.Dashboard.TopLabels > 0 {
		limit = c.Settings.Dashboard.TopLabels
	}
	if v := ctx.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c.HandleError(ctx, echo.ErrBadRequest,
				"Invalid limit, expected a positive integer", http.StatusBadRequest)
		}
		limit = n
	}

	filtered, snapshotID, ok := c.filteredEvents(ctx)
	if !ok {
		return nil
	}

	labels := events.TopLabels(filtered, limit)
	return ctx.JSON(http.StatusOK, map[string]any{
		"snapshot_id": snapshotID,
		"limit":       limit,
		"labels":      labels,
	})
}
