package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventAt(hour int, label string) Event {
	ts := time.Date(2026, 1, 18, hour, 30, 0, 0, time.Local)
	return Event{ID: "x", Category: CategoryWildlife, Label: label, Timestamp: &ts}
}

func TestCountByCategory(t *testing.T) {
	evts := buildTestEvents(t)

	counts := CountByCategory(evts)

	assert.Equal(t, 10, counts[CategoryWildlife])
	assert.Equal(t, 1, counts[CategoryHuman])
	assert.Equal(t, 1, counts[CategoryVehicle])
	assert.Equal(t, 1, counts[CategoryUnknown])
}

func TestTimeBucket(t *testing.T) {
	tests := []struct {
		hour, granularity, want int
	}{
		{0, 1, 0},
		{23, 1, 23},
		{5, 2, 4},
		{6, 2, 6},
		{7, 4, 4},
		{23, 4, 20},
		{9, 3, 9}, // invalid granularity falls back to hour
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeBucket(tt.hour, tt.granularity), "hour=%d g=%d", tt.hour, tt.granularity)
	}
}

func TestCountByTimeBucket(t *testing.T) {
	evts := []Event{
		eventAt(6, "deer"),
		eventAt(7, "deer"),
		eventAt(6, "coyote"),
		eventAt(18, "deer"),
		{ID: "no-ts", Category: CategoryWildlife, Label: "deer"}, // skipped
	}

	got := CountByTimeBucket(evts, 2)

	require.Equal(t, []BucketCount{
		{Bucket: 6, Label: "coyote", Count: 1},
		{Bucket: 6, Label: "deer", Count: 2},
		{Bucket: 18, Label: "deer", Count: 1},
	}, got)
}

func TestCountByWeekday(t *testing.T) {
	// 2026-01-18 is a Sunday.
	evts := []Event{
		eventAt(6, "deer"),
		eventAt(9, "deer"),
		{ID: "no-ts", Label: "deer"},
	}

	got := CountByWeekday(evts)

	require.Len(t, got, 7)
	assert.Equal(t, "Sunday", got[0].Weekday)
	assert.Equal(t, 2, got[0].Count)
	for _, wc := range got[1:] {
		assert.Zero(t, wc.Count)
	}
}

func TestTopLabels_Folding(t *testing.T) {
	var evts []Event
	add := func(label string, n int) {
		for i := 0; i < n; i++ {
			evts = append(evts, eventAt(10, label))
		}
	}
	add("deer", 5)
	add("turkey", 4)
	add("raccoon", 3)
	add("bobcat", 2)
	add("coyote", 1)

	got := TopLabels(evts, 3)

	require.Len(t, got, 4)
	assert.Equal(t, LabelCount{Label: "deer", Count: 5}, got[0])
	assert.Equal(t, LabelCount{Label: "turkey", Count: 4}, got[1])
	assert.Equal(t, LabelCount{Label: "raccoon", Count: 3}, got[2])
	assert.Equal(t, LabelCount{Label: LabelOther, Count: 3, Folded: true}, got[3])
}

func TestTopLabels_SentinelStaysDistinctFromFoldBucket(t *testing.T) {
	var evts []Event
	add := func(label string, n int) {
		for i := 0; i < n; i++ {
			evts = append(evts, eventAt(10, label))
		}
	}
	add(LabelOther, 6) // real sentinel rows
	add("deer", 5)
	add("turkey", 2)
	add("bobcat", 1)

	got := TopLabels(evts, 2)

	require.Len(t, got, 3)
	// The sentinel earned a top slot on its own count and is not folded.
	assert.Equal(t, LabelCount{Label: LabelOther, Count: 6}, got[0])
	assert.Equal(t, LabelCount{Label: "deer", Count: 5}, got[1])
	// The display bucket is tagged, and does not absorb sentinel counts.
	assert.Equal(t, LabelCount{Label: LabelOther, Count: 3, Folded: true}, got[2])
}

func TestTopLabels_NoFoldWhenUnderLimit(t *testing.T) {
	evts := []Event{eventAt(10, "deer"), eventAt(11, "turkey")}

	got := TopLabels(evts, 8)

	require.Len(t, got, 2)
	for _, lc := range got {
		assert.False(t, lc.Folded)
	}
}

func TestTopLabels_TieBreakByName(t *testing.T) {
	evts := []Event{eventAt(10, "turkey"), eventAt(11, "deer")}

	got := TopLabels(evts, 8)

	require.Len(t, got, 2)
	assert.Equal(t, "deer", got[0].Label)
	assert.Equal(t, "turkey", got[1].Label)
}
