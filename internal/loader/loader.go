// Package loader turns the remote events CSV into in-memory snapshots and
// keeps them fresh on a TTL schedule.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/ranchcam-go/internal/drivestore"
	"github.com/tphakala/ranchcam-go/internal/errors"
	"github.com/tphakala/ranchcam-go/internal/events"
	"github.com/tphakala/ranchcam-go/internal/logging"
	"github.com/tphakala/ranchcam-go/internal/observability"
)

var logger *slog.Logger

func init() {
	logger = logging.ForService("loader")
	if logger == nil {
		logger = slog.Default().With("service", "loader")
	}
}

// Snapshot is one fully normalized load of the events table. Snapshots are
// immutable once built; refresh swaps in a new one.
type Snapshot struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	LoadedAt time.Time      `json:"loaded_at"`
	Modified time.Time      `json:"modified"`
	Events   []events.Event `json:"events"`
}

// Manager loads snapshots from the store and serves the latest good one.
type Manager struct {
	store   drivestore.Store
	metrics *observability.Metrics

	mu      sync.RWMutex
	current *Snapshot
}

// NewManager creates a snapshot manager backed by the given store. The
// metrics argument may be nil.
func NewManager(store drivestore.Store, metrics *observability.Metrics) *Manager {
	return &Manager{store: store, metrics: metrics}
}

// Current returns the most recent good snapshot, or nil if no load has
// succeeded yet.
func (m *Manager) Current() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Refresh fetches the CSV, normalizes it and swaps in a new snapshot. On
// failure the previous snapshot stays current.
func (m *Manager) Refresh(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	snap, err := m.load(ctx)
	if m.metrics != nil {
		m.metrics.SnapshotLoadSeconds.Observe(time.Since(start).Seconds())
		result := "success"
		if err != nil {
			result = "error"
		}
		m.metrics.SnapshotLoadsTotal.WithLabelValues(result).Inc()
	}
	if err != nil {
		logger.Error("snapshot refresh failed, keeping previous snapshot", "error", err)
		return nil, err
	}

	m.mu.Lock()
	m.current = snap
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SnapshotEvents.Set(float64(len(snap.Events)))
	}
	logger.Info("snapshot refreshed",
		"snapshot_id", snap.ID,
		"source", snap.Source,
		"events", len(snap.Events),
		"elapsed", time.Since(start))
	return snap, nil
}

// Run refreshes once immediately and then on the given interval until the
// context is cancelled. The first refresh error is returned so startup can
// fail fast; later errors are logged and the loop keeps going.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if _, err := m.Refresh(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := m.Refresh(ctx); err != nil {
				logger.Warn("scheduled refresh failed", "error", err)
			}
		}
	}
}

func (m *Manager) load(ctx context.Context) (*Snapshot, error) {
	file, err := m.store.FetchEventsCSV(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := ParseCSV(bytes.NewReader(file.Data))
	if err != nil {
		return nil, err
	}

	evts := events.Normalize(rows)
	if m.metrics != nil {
		m.metrics.RowsNormalizedTotal.Add(float64(len(evts)))
		for i := range evts {
			if evts[i].Timestamp == nil {
				m.metrics.RowsNoTimestamp.Inc()
			}
		}
	}

	return &Snapshot{
		ID:       uuid.New().String(),
		Source:   file.Name,
		LoadedAt: time.Now(),
		Modified: file.ModifiedTime,
		Events:   evts,
	}, nil
}

// ParseCSV reads a header-driven CSV into raw rows. Header names are
// trimmed and lowercased; unrecognized columns are kept as-is. Rows shorter
// than the header are padded, longer rows have their tail dropped.
func ParseCSV(r io.Reader) ([]events.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Newf("events CSV is empty").
			Category(errors.CategoryFileParsing).
			Component("loader").
			Build()
	}
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileParsing).
			Component("loader").
			Context("stage", "header").
			Build()
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
	}

	var rows []events.RawRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// Malformed rows are skipped, not fatal; field exports are messy.
			logger.Warn("skipping malformed CSV row", "line", line, "error", err)
			continue
		}

		row := make(events.RawRow, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
