// Package diel classifies event timestamps into dawn, day, dusk and night
// periods from the station's coordinates.
package diel

import (
	"fmt"
	"sync"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// Period is a diel activity period.
type Period string

const (
	PeriodDawn  Period = "dawn"
	PeriodDay   Period = "day"
	PeriodDusk  Period = "dusk"
	PeriodNight Period = "night"
)

// SunEventTimes holds the calculated sun event times in local time
type SunEventTimes struct {
	CivilDawn time.Time // Civil dawn in local time
	Sunrise   time.Time // Sunrise in local time
	Sunset    time.Time // Sunset in local time
	CivilDusk time.Time // Civil dusk in local time
}

// cacheEntry holds the cached sun event times for a given date
type cacheEntry struct {
	times SunEventTimes // Sun event times in local time
	date  time.Time     // Date for which the sun event times are cached
}

// DielCalc handles caching and calculation of sun event times
type DielCalc struct {
	cache    map[string]cacheEntry // Cache of sun event times for dates
	lock     sync.RWMutex          // Lock for cache access
	observer astral.Observer       // Observer for sun event calculations
}

// New creates a new DielCalc instance for the given station coordinates.
func New(latitude, longitude float64) *DielCalc {
	return &DielCalc{
		cache:    make(map[string]cacheEntry),
		observer: astral.Observer{Latitude: latitude, Longitude: longitude},
	}
}

// SunEventTimes returns the sun event times for a given date, using cache if available
func (dc *DielCalc) SunEventTimes(date time.Time) (SunEventTimes, error) {
	dateKey := date.Format("2006-01-02")

	dc.lock.RLock()
	entry, exists := dc.cache[dateKey]
	dc.lock.RUnlock()

	if exists && entry.date.Equal(date) {
		return entry.times, nil
	}

	times, err := dc.calculateSunEventTimes(date)
	if err != nil {
		return SunEventTimes{}, err
	}

	dc.lock.Lock()
	dc.cache[dateKey] = cacheEntry{times: times, date: date}
	dc.lock.Unlock()

	return times, nil
}

// calculateSunEventTimes calculates the sun event times for a given date
func (dc *DielCalc) calculateSunEventTimes(date time.Time) (SunEventTimes, error) {
	civilDawn, err := astral.Dawn(dc.observer, date, astral.DepressionCivil)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate civil dawn: %w", err)
	}

	sunrise, err := astral.Sunrise(dc.observer, date)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunrise: %w", err)
	}

	sunset, err := astral.Sunset(dc.observer, date)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunset: %w", err)
	}

	civilDusk, err := astral.Dusk(dc.observer, date, astral.DepressionCivil)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate civil dusk: %w", err)
	}

	return SunEventTimes{
		CivilDawn: civilDawn.In(date.Location()),
		Sunrise:   sunrise.In(date.Location()),
		Sunset:    sunset.In(date.Location()),
		CivilDusk: civilDusk.In(date.Location()),
	}, nil
}

// Period classifies a timestamp into its diel period. When the sun events
// cannot be computed for the date (polar edge cases), everything is night.
func (dc *DielCalc) Period(t time.Time) Period {
	times, err := dc.SunEventTimes(t)
	if err != nil {
		return PeriodNight
	}

	switch {
	case !t.Before(times.Sunrise) && t.Before(times.Sunset):
		return PeriodDay
	case !t.Before(times.CivilDawn) && t.Before(times.Sunrise):
		return PeriodDawn
	case !t.Before(times.Sunset) && t.Before(times.CivilDusk):
		return PeriodDusk
	default:
		return PeriodNight
	}
}
