package events

import (
	"crypto/md5" //nolint:gosec // non-adversarial content checksum, not auth
	"encoding/hex"
	"strings"
	"time"
)

// Category is the top-level classification of an event.
type Category string

const (
	CategoryWildlife Category = "wildlife"
	CategoryHuman    Category = "human"
	CategoryVehicle  Category = "vehicle"
	CategoryUnknown  Category = "unknown"
)

// LabelOther is the wildlife sentinel assigned when no usable species
// taxonomy is available. Distinct from the display-only "Other" bucket the
// aggregation helpers produce; see TopLabels.
const LabelOther = "Other"

// Event is one normalized camera-trap detection record. Events are
// constructed once per load and never mutated; filtering produces subsets,
// not edits.
type Event struct {
	ID               string     `json:"id"`
	Camera           string     `json:"camera"`
	Filename         string     `json:"filename"`
	Category         Category   `json:"category"`
	Label            string     `json:"label"`
	Timestamp        *time.Time `json:"timestamp"`
	TemperatureF     *float64   `json:"temperature_f"`
	MoonPhase        string     `json:"moon_phase,omitempty"`
	MoonPhaseClean   string     `json:"moon_phase_clean,omitempty"`
	MoonEmoji        string     `json:"moon_emoji,omitempty"`
	MoonIllumination *float64   `json:"moon_illumination,omitempty"`
	MoonAgeDays      *float64   `json:"moon_age_days,omitempty"`
	Summary          string     `json:"summary"`
}

// ResolveLabel combines the normalized category with the species fields into
// the final (category, label) pair. Wildlife labels prefer the coarse group
// over the cleaned species name, with the "Other" sentinel as the floor.
// Human and vehicle categories force the label to the category name so a
// stray "human" in a species column can never surface as an animal label.
// When the category is empty it is inferred from the already-normalized
// label; rows with nothing usable at all land in CategoryUnknown.
func ResolveLabel(category, speciesGroup, speciesClean string) (Category, string) {
	switch category {
	case rawTypeHuman:
		return CategoryHuman, rawTypeHuman
	case rawTypeVehicle:
		return CategoryVehicle, rawTypeVehicle
	}

	label := speciesGroup
	if label == "" {
		label = speciesClean
	}

	if category == rawTypeAnimal {
		if label == "" {
			label = LabelOther
		}
		return CategoryWildlife, label
	}

	// Category is empty (or an unrecognized value, treated the same): infer
	// from the resolved label.
	switch label {
	case "":
		return CategoryUnknown, LabelOther
	case rawTypeHuman:
		return CategoryHuman, rawTypeHuman
	case rawTypeVehicle:
		return CategoryVehicle, rawTypeVehicle
	default:
		return CategoryWildlife, label
	}
}

// EventID computes the stable content-derived identifier for a capture:
// the first 10 hex characters of the MD5 digest of the pipe-joined raw
// tuple. Raw date and time strings are used on purpose; identity tracks the
// capture metadata as exported, not its interpretation, so two rows with
// unparseable but textually identical date/time still collapse. Inputs are
// hashed exactly as exported, whitespace included.
func EventID(camera, filename, rawDate, rawTime string) string {
	base := camera + "|" + filename + "|" + rawDate + "|" + rawTime
	sum := md5.Sum([]byte(base)) //nolint:gosec // see above
	return hex.EncodeToString(sum[:])[:10]
}

const summarySeparator = " • " // bullet

// Summary composes the one-line description shown in selection lists:
// time, camera, label, and the tail of the filename.
func Summary(ts *time.Time, camera string, category Category, label, filename string) string {
	when := "Unknown time"
	if ts != nil {
		when = ts.Format("Jan 02 03:04 PM")
	}

	cam := strings.TrimSpace(camera)
	if cam == "" {
		cam = "unknown"
	}

	display := label
	if category == CategoryHuman || category == CategoryVehicle {
		display = titleCaser.String(label)
	}
	if display == "" {
		display = LabelOther
	}

	suffix := filename
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}

	return when + summarySeparator + cam + summarySeparator + display + summarySeparator + suffix
}

// NewEvent runs the full per-row pipeline: field normalizers, label
// resolution, identity, and summary derivation. It is total; any garbage in
// yields an Event with documented floor values out.
func NewEvent(row RawRow) Event {
	// The species normalizer is applied to both taxonomy fields; the group
	// column has carried stray "human"/"vehicle" strings and blank markers in
	// past exports just like the species column.
	category, label := ResolveLabel(
		NormalizeCategory(row.EventType()),
		NormalizeSpecies(row.SpeciesGroup()),
		NormalizeSpecies(row.SpeciesRaw()),
	)

	ts := ParseTimestamp(row.Date(), row.Time())
	camera := row.Camera()
	filename := row.Filename()

	return Event{
		// Identity hashes the untrimmed column values; a row whose fields
		// carry stray whitespace keeps the id the exporter produced.
		ID:               EventID(row[ColCamera], row[ColFilename], row[ColDate], row[ColTime]),
		Camera:           camera,
		Filename:         filename,
		Category:         category,
		Label:            label,
		Timestamp:        ts,
		TemperatureF:     ParseNumeric(row.TempF()),
		MoonPhase:        row.MoonPhase(),
		MoonPhaseClean:   NormalizeMoonPhase(row.MoonPhase()),
		MoonEmoji:        MoonEmoji(row.MoonPhase()),
		MoonIllumination: ParseNumeric(row.MoonIllumination()),
		MoonAgeDays:      ParseNumeric(row.MoonAgeDays()),
		Summary:          Summary(ts, camera, category, label, filename),
	}
}

// Normalize coerces and transforms a batch of raw rows into Events. The
// transform is pure and idempotent: the same input rows always produce the
// same Event slice, in input order.
func Normalize(rows []RawRow) []Event {
	coerced := CoerceColumns(rows)
	out := make([]Event, len(coerced))
	for i, row := range coerced {
		out[i] = NewEvent(row)
	}
	return out
}
