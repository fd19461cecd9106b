package events

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical display names for the eight moon phases, keyed by the spellings
// the upstream pipeline has produced. "third quarter" is an alias for the
// last quarter.
var moonPhaseNames = map[string]string{
	"new moon":        "New Moon",
	"new":             "New Moon",
	"waxing crescent": "Waxing Crescent",
	"first quarter":   "First Quarter",
	"waxing gibbous":  "Waxing Gibbous",
	"full moon":       "Full Moon",
	"full":            "Full Moon",
	"waning gibbous":  "Waning Gibbous",
	"last quarter":    "Last Quarter",
	"third quarter":   "Last Quarter",
	"waning crescent": "Waning Crescent",
}

var moonPhaseEmoji = map[string]string{
	"New Moon":        "\U0001F311",
	"Waxing Crescent": "\U0001F312",
	"First Quarter":   "\U0001F313",
	"Waxing Gibbous":  "\U0001F314",
	"Full Moon":       "\U0001F315",
	"Waning Gibbous":  "\U0001F316",
	"Last Quarter":    "\U0001F317",
	"Waning Crescent": "\U0001F318",
}

// Crescent glyph shown for phases outside the known set.
const defaultMoonEmoji = "\U0001F319"

var titleCaser = cases.Title(language.English)

// NormalizeMoonPhase maps a raw moon phase spelling to its canonical display
// name. Unknown non-empty input is title-cased and passed through unchanged;
// empty input stays empty.
func NormalizeMoonPhase(raw string) string {
	s := strings.TrimSpace(raw)
	if blankValues[strings.ToLower(s)] {
		return ""
	}
	if name, ok := moonPhaseNames[strings.ToLower(s)]; ok {
		return name
	}
	return titleCaser.String(s)
}

// MoonEmoji returns the glyph for a raw moon phase string. Empty input has
// no glyph; unknown non-empty phases get the generic crescent.
func MoonEmoji(raw string) string {
	clean := NormalizeMoonPhase(raw)
	if clean == "" {
		return ""
	}
	if glyph, ok := moonPhaseEmoji[clean]; ok {
		return glyph
	}
	return defaultMoonEmoji
}
