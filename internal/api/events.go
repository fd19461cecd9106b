package api

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/ranchcam-go/internal/events"
)

// initEventRoutes registers event listing and detail endpoints.
func (c *Controller) initEventRoutes() {
	c.Group.GET("/events", c.GetEvents)
	c.Group.GET("/events/:id", c.GetEvent)
	c.Group.GET("/cameras", c.GetCameras)
	c.Group.GET("/labels", c.GetLabels)
}

// EventsResponse wraps a filtered event listing.
type EventsResponse struct {
	SnapshotID string         `json:"snapshot_id"`
	Total      int            `json:"total"`
	Events     []events.Event `json:"events"`
}

// EventDetail is a single event enriched with photo and diel context.
type EventDetail struct {
	events.Event
	DielPeriod string `json:"diel_period,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
	MediaURL   string `json:"media_url,omitempty"`
}

const criteriaDateLayout = "2006-01-02"

// parseCriteria builds filter criteria from request query parameters.
// Unknown parameters are ignored; malformed values are reported.
func parseCriteria(ctx echo.Context) (events.Criteria, error) {
	var crit events.Criteria

	if v := strings.TrimSpace(ctx.QueryParam("category")); v != "" {
		crit.Category = events.Category(strings.ToLower(v))
	}
	if cams, ok := ctx.QueryParams()["camera"]; ok {
		for _, cam := range cams {
			if cam = strings.TrimSpace(cam); cam != "" {
				crit.Cameras = append(crit.Cameras, cam)
			}
		}
	}
	if labels, ok := ctx.QueryParams()["label"]; ok {
		for _, l := range labels {
			if l = strings.TrimSpace(l); l != "" {
				crit.Labels = append(crit.Labels, l)
			}
		}
	}

	if v := ctx.QueryParam("date_start"); v != "" {
		t, err := time.ParseInLocation(criteriaDateLayout, v, time.Local)
		if err != nil {
			return crit, echo.NewHTTPError(http.StatusBadRequest, "invalid date_start, expected YYYY-MM-DD")
		}
		crit.DateStart = &t
	}
	if v := ctx.QueryParam("date_end"); v != "" {
		t, err := time.ParseInLocation(criteriaDateLayout, v, time.Local)
		if err != nil {
			return crit, echo.NewHTTPError(http.StatusBadRequest, "invalid date_end, expected YYYY-MM-DD")
		}
		crit.DateEnd = &t
	}

	if v := ctx.QueryParam("temp_min"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return crit, echo.NewHTTPError(http.StatusBadRequest, "invalid temp_min")
		}
		crit.TempMin = &f
	}
	if v := ctx.QueryParam("temp_max"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return crit, echo.NewHTTPError(http.StatusBadRequest, "invalid temp_max")
		}
		crit.TempMax = &f
	}

	if v := ctx.QueryParam("include_other"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return crit, echo.NewHTTPError(http.StatusBadRequest, "invalid include_other")
		}
		crit.IncludeOther = b
	}

	return crit, nil
}

// GetEvents returns events matching the query criteria.
func (c *Controller) GetEvents(ctx echo.Context) error {
	snap, err := c.currentSnapshot(ctx)
	if snap == nil {
		return err
	}

	crit, err := parseCriteria(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid filter parameters", http.StatusBadRequest)
	}

	filtered := events.Filter(snap.Events, crit)
	c.logAPIRequest(ctx, slog.LevelDebug, "events listed",
		"snapshot_id", snap.ID, "matched", len(filtered), "total", len(snap.Events))

	return ctx.JSON(http.StatusOK, EventsResponse{
		SnapshotID: snap.ID,
		Total:      len(filtered),
		Events:     filtered,
	})
}

// GetEvent returns one event by ID, enriched with its photo link and the
// diel period of its timestamp. A missing photo does not fail the request.
func (c *Controller) GetEvent(ctx echo.Context) error {
	snap, err := c.currentSnapshot(ctx)
	if snap == nil {
		return err
	}

	id := ctx.Param("id")
	for i := range snap.Events {
		if snap.Events[i].ID != id {
			continue
		}
		detail := EventDetail{Event: snap.Events[i]}

		if c.Diel != nil && detail.Timestamp != nil {
			detail.DielPeriod = string(c.Diel.Period(*detail.Timestamp))
		}
		if c.Store != nil {
			if ref, found := c.Store.ResolveFile(ctx.Request().Context(), detail.Camera, detail.Filename); found {
				detail.PhotoURL = ref.ViewURL
				detail.MediaURL = "/api/v1/media/" + detail.Camera + "/" + detail.Filename
			}
		}

		return ctx.JSON(http.StatusOK, detail)
	}

	return c.HandleError(ctx, echo.ErrNotFound, "Event not found", http.StatusNotFound)
}

// GetCameras returns the distinct camera names in the current snapshot.
func (c *Controller) GetCameras(ctx echo.Context) error {
	snap, err := c.currentSnapshot(ctx)
	if snap == nil {
		return err
	}

	seen := make(map[string]bool)
	for i := range snap.Events {
		if cam := snap.Events[i].Camera; cam != "" {
			seen[cam] = true
		}
	}
	cameras := make([]string, 0, len(seen))
	for cam := range seen {
		cameras = append(cameras, cam)
	}
	sort.Strings(cameras)

	return ctx.JSON(http.StatusOK, map[string]any{"cameras": cameras})
}

// GetLabels returns the distinct wildlife labels in the current snapshot.
// The sentinel bucket is excluded unless include_other is set.
func (c *Controller) GetLabels(ctx echo.Context) error {
	snap, err := c.currentSnapshot(ctx)
	if snap == nil {
		return err
	}

	includeOther := false
	if v := ctx.QueryParam("include_other"); v != "" {
		includeOther, _ = strconv.ParseBool(v)
	}

	seen := make(map[string]bool)
	for i := range snap.Events {
		e := &snap.Events[i]
		if e.Category != events.CategoryWildlife {
			continue
		}
		if e.Label == events.LabelOther && !includeOther {
			continue
		}
		seen[e.Label] = true
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	return ctx.JSON(http.StatusOK, map[string]any{"labels": labels})
}
