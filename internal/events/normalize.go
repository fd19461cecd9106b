package events

import (
	"strconv"
	"strings"
	"time"
)

// Raw event type values produced upstream. "animal" is the wildlife key on
// the wire; it maps to CategoryWildlife during label resolution.
const (
	rawTypeAnimal  = "animal"
	rawTypeHuman   = "human"
	rawTypeVehicle = "vehicle"
)

// blankValues are raw strings that mean "no value". "nan" shows up whenever
// the upstream export round-trips through a dataframe.
var blankValues = map[string]bool{
	"":     true,
	"none": true,
	"nan":  true,
}

// NormalizeCategory canonicalizes a raw event type string. Synonyms for
// human fold into "human"; blank markers collapse to the empty string,
// meaning the category is unknown and will be inferred from the species
// label later. Anything else passes through lowercased.
func NormalizeCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if blankValues[s] {
		return ""
	}
	switch s {
	case "person", "people":
		return rawTypeHuman
	}
	return s
}

// NormalizeSpecies canonicalizes a raw taxonomy string into a single
// best-effort species label. Taxonomy chains are semicolon-delimited from
// general to specific, so the last non-empty segment is the most usable
// label. Strings that merely smuggle a human or vehicle marker through a
// species column are mapped to that marker so resolution can force the
// category. Unusable input yields the empty string; the "Other" sentinel is
// applied during label resolution, where category is known.
func NormalizeSpecies(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if blankValues[s] {
		return ""
	}
	if strings.Contains(s, "vehicle") {
		return rawTypeVehicle
	}
	if strings.Contains(s, "human") || strings.Contains(s, "person") {
		return rawTypeHuman
	}
	if strings.Contains(s, ";") {
		segments := strings.Split(s, ";")
		s = ""
		for i := len(segments) - 1; i >= 0; i-- {
			if seg := strings.TrimSpace(segments[i]); seg != "" {
				s = seg
				break
			}
		}
	}
	switch s {
	case "", rawTypeAnimal, "unknown":
		return ""
	}
	return s
}

// timestampLayouts are the date+time shapes seen across the data source's
// history: US-style dates with 12-hour or 24-hour clocks, and ISO dates from
// newer exports. Date-only rows parse to midnight.
var timestampLayouts = []string{
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 3:04 PM",
	"1/2/2006",
	"2006-01-02",
}

// ParseTimestamp combines the raw date and time fields with a single space
// and parses the result as a calendar date+time. Unparseable input, garbled
// OCR included, yields nil rather than an error.
func ParseTimestamp(date, timeStr string) *time.Time {
	combined := strings.TrimSpace(strings.TrimSpace(date) + " " + strings.TrimSpace(timeStr))
	if combined == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, combined, time.Local); err == nil {
			return &ts
		}
	}
	return nil
}

// ParseNumeric parses a raw field to floating point. Non-numeric input,
// including the blank markers, yields nil.
func ParseNumeric(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if blankValues[strings.ToLower(s)] {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
