package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestEvents normalizes a small mixed table: 10 wildlife rows of which
// 3 carry the sentinel label, plus human, vehicle and unknown rows.
func buildTestEvents(t *testing.T) []Event {
	t.Helper()

	rows := []RawRow{
		{"camera": "gate", "filename": "w1.jpg", "date": "01/10/2026", "time": "06:15 AM", "event_type": "animal", "species": "deer", "temp_f": "41"},
		{"camera": "gate", "filename": "w2.jpg", "date": "01/10/2026", "time": "11:50 PM", "event_type": "animal", "species": "deer", "temp_f": "38"},
		{"camera": "feeder", "filename": "w3.jpg", "date": "01/11/2026", "time": "07:05 AM", "event_type": "animal", "species": "raccoon", "temp_f": "44"},
		{"camera": "feeder", "filename": "w4.jpg", "date": "01/12/2026", "time": "02:20 PM", "event_type": "animal", "species": "bobcat"},
		{"camera": "ravine", "filename": "w5.jpg", "date": "01/12/2026", "time": "09:40 PM", "event_type": "animal", "species": "coyote", "temp_f": "35"},
		{"camera": "ravine", "filename": "w6.jpg", "date": "01/13/2026", "time": "05:55 AM", "event_type": "animal", "species": "deer", "temp_f": "33"},
		{"camera": "gate", "filename": "w7.jpg", "date": "01/14/2026", "time": "10:10 AM", "event_type": "animal", "species": "turkey", "temp_f": "51"},
		{"camera": "gate", "filename": "w8.jpg", "date": "01/14/2026", "time": "10:12 AM", "event_type": "animal", "species": "", "temp_f": "51"},
		{"camera": "feeder", "filename": "w9.jpg", "date": "01/15/2026", "time": "03:33 PM", "event_type": "animal", "species": "unknown", "temp_f": "58"},
		{"camera": "ravine", "filename": "w10.jpg", "date": "01/16/2026", "time": "08:08 PM", "event_type": "animal", "species": "animal", "temp_f": "40"},
		{"camera": "gate", "filename": "h1.jpg", "date": "01/12/2026", "time": "09:00 AM", "event_type": "person", "temp_f": "45"},
		{"camera": "gate", "filename": "v1.jpg", "date": "01/13/2026", "time": "04:30 PM", "event_type": "vehicle", "temp_f": "49"},
		{"camera": "feeder", "filename": "u1.jpg", "date": "bogus", "time": "", "event_type": "", "species": ""},
	}

	evts := Normalize(rows)
	require.Len(t, evts, len(rows))
	return evts
}

func TestFilter_WildlifeExcludesOtherByDefault(t *testing.T) {
	evts := buildTestEvents(t)

	got := Filter(evts, Criteria{Category: CategoryWildlife})

	// 10 wildlife rows, 3 of them sentinel-labeled.
	assert.Len(t, got, 7)
	for _, e := range got {
		assert.NotEqual(t, LabelOther, e.Label)
		assert.Equal(t, CategoryWildlife, e.Category)
	}

	withOther := Filter(evts, Criteria{Category: CategoryWildlife, IncludeOther: true})
	assert.Len(t, withOther, 10)
}

func TestFilter_UnknownExcludedFromSections(t *testing.T) {
	evts := buildTestEvents(t)

	for _, cat := range []Category{CategoryWildlife, CategoryHuman, CategoryVehicle} {
		for _, e := range Filter(evts, Criteria{Category: cat, IncludeOther: true}) {
			assert.Equal(t, cat, e.Category)
		}
	}

	// No category constraint: the unknown row is retained for audit.
	all := Filter(evts, Criteria{})
	assert.Len(t, all, len(evts))
}

func TestFilter_CameraAllowList(t *testing.T) {
	evts := buildTestEvents(t)

	got := Filter(evts, Criteria{Cameras: []string{"ravine"}})
	assert.Len(t, got, 3)
	for _, e := range got {
		assert.Equal(t, "ravine", e.Camera)
	}
}

func TestFilter_DateRangeInclusive(t *testing.T) {
	rows := []RawRow{
		{"filename": "end_midnight.jpg", "date": "01/14/2026", "time": "12:00 AM", "event_type": "animal", "species": "deer"},
		{"filename": "day_after.jpg", "date": "01/15/2026", "time": "12:00 AM", "event_type": "animal", "species": "deer"},
		{"filename": "start_late.jpg", "date": "01/12/2026", "time": "11:59 PM", "event_type": "animal", "species": "deer"},
	}
	evts := Normalize(rows)

	start := time.Date(2026, 1, 12, 0, 0, 0, 0, time.Local)
	end := time.Date(2026, 1, 14, 0, 0, 0, 0, time.Local)
	got := Filter(evts, Criteria{DateStart: &start, DateEnd: &end})

	require.Len(t, got, 2)
	names := []string{got[0].Filename, got[1].Filename}
	assert.Contains(t, names, "end_midnight.jpg")
	assert.Contains(t, names, "start_late.jpg")
}

func TestFilter_DateRangeDropsNilTimestamps(t *testing.T) {
	evts := buildTestEvents(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)

	for _, e := range Filter(evts, Criteria{DateStart: &start}) {
		assert.NotNil(t, e.Timestamp)
	}
}

func TestFilter_TemperatureRange(t *testing.T) {
	evts := buildTestEvents(t)

	lo, hi := 40.0, 50.0
	got := Filter(evts, Criteria{TempMin: &lo, TempMax: &hi})
	for _, e := range got {
		require.NotNil(t, e.TemperatureF)
		assert.GreaterOrEqual(t, *e.TemperatureF, lo)
		assert.LessOrEqual(t, *e.TemperatureF, hi)
	}

	// Without an active temperature filter, null-temperature rows survive.
	all := Filter(evts, Criteria{Category: CategoryWildlife, IncludeOther: true})
	var sawNil bool
	for _, e := range all {
		if e.TemperatureF == nil {
			sawNil = true
		}
	}
	assert.True(t, sawNil)
}

func TestFilter_WildlifeLabelAllowList(t *testing.T) {
	evts := buildTestEvents(t)

	got := Filter(evts, Criteria{Category: CategoryWildlife, Labels: []string{"deer", "coyote"}})
	assert.Len(t, got, 4)
	for _, e := range got {
		assert.Contains(t, []string{"deer", "coyote"}, e.Label)
	}
}

func TestFilter_Monotonicity(t *testing.T) {
	evts := buildTestEvents(t)

	lo, hi := 35.0, 55.0
	start := time.Date(2026, 1, 11, 0, 0, 0, 0, time.Local)
	end := time.Date(2026, 1, 15, 0, 0, 0, 0, time.Local)
	full := Criteria{
		Category:  CategoryWildlife,
		Cameras:   []string{"gate", "feeder"},
		DateStart: &start,
		DateEnd:   &end,
		TempMin:   &lo,
		TempMax:   &hi,
		Labels:    []string{"deer", "raccoon", "turkey"},
	}

	relaxations := []Criteria{
		{Cameras: full.Cameras, DateStart: full.DateStart, DateEnd: full.DateEnd, TempMin: full.TempMin, TempMax: full.TempMax},
		{Category: full.Category, DateStart: full.DateStart, DateEnd: full.DateEnd, TempMin: full.TempMin, TempMax: full.TempMax, Labels: full.Labels},
		{Category: full.Category, Cameras: full.Cameras, TempMin: full.TempMin, TempMax: full.TempMax, Labels: full.Labels},
		{Category: full.Category, Cameras: full.Cameras, DateStart: full.DateStart, DateEnd: full.DateEnd, Labels: full.Labels},
		{Category: full.Category, Cameras: full.Cameras, DateStart: full.DateStart, DateEnd: full.DateEnd, TempMin: full.TempMin, TempMax: full.TempMax},
	}

	strict := Filter(evts, full)
	ids := func(es []Event) map[string]bool {
		m := make(map[string]bool, len(es))
		for _, e := range es {
			m[e.ID] = true
		}
		return m
	}
	for i, relaxed := range relaxations {
		relaxedIDs := ids(Filter(evts, relaxed))
		for _, e := range strict {
			assert.True(t, relaxedIDs[e.ID], "relaxation %d dropped event %s", i, e.ID)
		}
	}
}

func TestFilter_IdempotentAndOrderPreserving(t *testing.T) {
	evts := buildTestEvents(t)
	c := Criteria{Category: CategoryWildlife, IncludeOther: true}

	once := Filter(evts, c)
	twice := Filter(once, c)
	assert.Equal(t, once, twice)

	// Order preserved relative to input.
	var lastIdx int = -1
	for _, e := range once {
		idx := -1
		for i := range evts {
			if evts[i].ID == e.ID {
				idx = i
				break
			}
		}
		assert.Greater(t, idx, lastIdx)
		lastIdx = idx
	}
}
