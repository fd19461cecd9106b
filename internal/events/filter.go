package events

import "time"

// Criteria is the filter surface consumed from the dashboard. Zero values
// mean "constraint not set"; temperature bounds are pointers so that an
// explicit bound of 0 °F is distinguishable from no bound at all.
type Criteria struct {
	Category     Category   // empty matches every category, unknown included
	Cameras      []string   // allow-list, exact match; empty means all cameras
	DateStart    *time.Time // inclusive, compared by calendar date
	DateEnd      *time.Time // inclusive, compared by calendar date
	TempMin      *float64   // inclusive, °F
	TempMax      *float64   // inclusive, °F
	Labels       []string   // wildlife-only label allow-list; empty means all
	IncludeOther bool       // wildlife-only: keep rows labeled with the sentinel
}

// dateOnly strips the time-of-day portion.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Filter returns the subset of events matching the criteria. Constraints
// compose by conjunction in a fixed order: category, camera, date,
// temperature, label. The result preserves input order and filtering the
// same slice twice with the same criteria yields an identical subset.
func Filter(evts []Event, c Criteria) []Event {
	out := make([]Event, 0, len(evts))
	for i := range evts {
		if matches(&evts[i], &c) {
			out = append(out, evts[i])
		}
	}
	return out
}

func matches(e *Event, c *Criteria) bool {
	if c.Category != "" && e.Category != c.Category {
		return false
	}

	if len(c.Cameras) > 0 && !containsString(c.Cameras, e.Camera) {
		return false
	}

	// Date bounds compare calendar dates, so a multi-day range includes all
	// events on the boundary dates regardless of time-of-day. Rows without a
	// usable timestamp are excluded only when a bound is active.
	if c.DateStart != nil || c.DateEnd != nil {
		if e.Timestamp == nil {
			return false
		}
		d := dateOnly(*e.Timestamp)
		if c.DateStart != nil && d.Before(dateOnly(*c.DateStart)) {
			return false
		}
		if c.DateEnd != nil && d.After(dateOnly(*c.DateEnd)) {
			return false
		}
	}

	// Rows with null temperature are excluded only while a temperature
	// filter is active.
	if c.TempMin != nil || c.TempMax != nil {
		if e.TemperatureF == nil {
			return false
		}
		if c.TempMin != nil && *e.TemperatureF < *c.TempMin {
			return false
		}
		if c.TempMax != nil && *e.TemperatureF > *c.TempMax {
			return false
		}
	}

	// Label constraints apply to the wildlife section only. The sentinel is
	// dropped before the allow-list is consulted.
	if c.Category == CategoryWildlife {
		if !c.IncludeOther && e.Label == LabelOther {
			return false
		}
		if len(c.Labels) > 0 && !containsString(c.Labels, e.Label) {
			return false
		}
	}

	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
