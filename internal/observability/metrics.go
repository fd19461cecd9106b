// Package observability provides Prometheus metrics for ranchcam services.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates all metric collectors behind a single registry.
type Metrics struct {
	registry *prometheus.Registry

	// Snapshot loading
	SnapshotLoadsTotal  *prometheus.CounterVec
	SnapshotLoadSeconds prometheus.Histogram
	RowsNormalizedTotal prometheus.Counter
	RowsNoTimestamp     prometheus.Counter
	SnapshotEvents      prometheus.Gauge

	// Drive collaborator
	DriveRequestsTotal  *prometheus.CounterVec
	DriveDownloadsTotal *prometheus.CounterVec
	DriveCacheTotal     *prometheus.CounterVec
}

// NewMetrics creates a new instance of Metrics, initializing and registering
// all metric collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		SnapshotLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranchcam_snapshot_loads_total",
				Help: "Total number of event snapshot load attempts",
			},
			[]string{"result"}, // success, failure, cached
		),
		SnapshotLoadSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ranchcam_snapshot_load_seconds",
				Help:    "Duration of event snapshot loads",
				Buckets: prometheus.DefBuckets,
			},
		),
		RowsNormalizedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ranchcam_rows_normalized_total",
				Help: "Total number of raw rows normalized into events",
			},
		),
		RowsNoTimestamp: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ranchcam_rows_unparseable_timestamp_total",
				Help: "Total number of rows whose date/time could not be parsed",
			},
		),
		SnapshotEvents: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ranchcam_snapshot_events",
				Help: "Number of events in the current snapshot",
			},
		),
		DriveRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranchcam_drive_requests_total",
				Help: "Total number of Drive API requests",
			},
			[]string{"operation", "status"},
		),
		DriveDownloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranchcam_drive_downloads_total",
				Help: "Total number of photo downloads",
			},
			[]string{"status"},
		),
		DriveCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranchcam_drive_cache_total",
				Help: "Drive cache lookups by outcome",
			},
			[]string{"cache", "outcome"}, // cache: csv, index; outcome: hit, miss
		),
	}

	collectors := []prometheus.Collector{
		m.SnapshotLoadsTotal,
		m.SnapshotLoadSeconds,
		m.RowsNormalizedTotal,
		m.RowsNoTimestamp,
		m.SnapshotEvents,
		m.DriveRequestsTotal,
		m.DriveDownloadsTotal,
		m.DriveCacheTotal,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics collector: %w", err)
		}
	}

	return m, nil
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
