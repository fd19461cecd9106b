// Package events normalizes raw camera-trap detection rows into canonical,
// immutable Event records and answers filtered queries over them.
package events

import "strings"

// Column names recognized across the source CSV's history. The upstream
// pipeline has renamed and added columns several times; the set below is the
// union of every shape seen, versioned as data so that one coercion pass
// serves all of them.
const (
	ColCamera           = "camera"
	ColFilename         = "filename"
	ColDate             = "date"
	ColTime             = "time"
	ColTempF            = "temp_f"
	ColEventType        = "event_type"
	ColSpecies          = "species"
	ColSpeciesClean     = "species_clean"
	ColSpeciesGroup     = "species_group"
	ColMoonPhase        = "moon_phase"
	ColMoonIllumination = "moon_illumination"
	ColMoonAgeDays      = "moon_age_days"
	ColImageURL         = "image_url"
	ColImageDriveID     = "image_drive_id"
)

// RecognizedColumns lists every column the pipeline knows about. Numeric
// columns share the empty-string default; "missing" and "unparseable" are
// indistinguishable after coercion, which is what the normalizers expect.
var RecognizedColumns = []string{
	ColCamera,
	ColFilename,
	ColDate,
	ColTime,
	ColTempF,
	ColEventType,
	ColSpecies,
	ColSpeciesClean,
	ColSpeciesGroup,
	ColMoonPhase,
	ColMoonIllumination,
	ColMoonAgeDays,
	ColImageURL,
	ColImageDriveID,
}

// RawRow is one line of the source table. No field is guaranteed present;
// absent fields read as empty string through Get.
type RawRow map[string]string

// Get returns the trimmed value of a column, or the empty string when the
// column is absent.
func (r RawRow) Get(col string) string {
	return strings.TrimSpace(r[col])
}

// Camera returns the trimmed camera name.
func (r RawRow) Camera() string { return r.Get(ColCamera) }

// Filename returns the trimmed photo filename.
func (r RawRow) Filename() string { return r.Get(ColFilename) }

// Date returns the raw date string exactly as exported upstream.
func (r RawRow) Date() string { return r.Get(ColDate) }

// Time returns the raw time string exactly as exported upstream.
func (r RawRow) Time() string { return r.Get(ColTime) }

// TempF returns the raw temperature string.
func (r RawRow) TempF() string { return r.Get(ColTempF) }

// EventType returns the raw event type string.
func (r RawRow) EventType() string { return r.Get(ColEventType) }

// SpeciesRaw returns the best available raw taxonomy string, preferring the
// cleaned column over the free-text one.
func (r RawRow) SpeciesRaw() string {
	if clean := r.Get(ColSpeciesClean); clean != "" {
		return clean
	}
	return r.Get(ColSpecies)
}

// SpeciesGroup returns the coarse, ranch-relevant grouping field.
func (r RawRow) SpeciesGroup() string { return r.Get(ColSpeciesGroup) }

// MoonPhase returns the raw moon phase string.
func (r RawRow) MoonPhase() string { return r.Get(ColMoonPhase) }

// MoonIllumination returns the raw moon illumination string.
func (r RawRow) MoonIllumination() string { return r.Get(ColMoonIllumination) }

// MoonAgeDays returns the raw moon age string.
func (r RawRow) MoonAgeDays() string { return r.Get(ColMoonAgeDays) }

// CoerceColumns guarantees that every recognized column exists in every row,
// filling gaps with the empty string. Existing columns, including ones this
// package does not recognize, are never removed or altered. The input slice
// is not modified; coerced copies are returned.
func CoerceColumns(rows []RawRow) []RawRow {
	out := make([]RawRow, len(rows))
	for i, row := range rows {
		coerced := make(RawRow, len(row)+len(RecognizedColumns))
		for k, v := range row {
			coerced[k] = v
		}
		for _, col := range RecognizedColumns {
			if _, ok := coerced[col]; !ok {
				coerced[col] = ""
			}
		}
		out[i] = coerced
	}
	return out
}
