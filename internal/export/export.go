// Package export writes normalized events to table or CSV output for
// offline inspection.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tphakala/ranchcam-go/internal/events"
)

const timestampLayout = "2006-01-02 15:04:05"

func formatTimestamp(e *events.Event) string {
	if e.Timestamp == nil {
		return ""
	}
	return e.Timestamp.Format(timestampLayout)
}

func formatTemp(e *events.Event) string {
	if e.TemperatureF == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *e.TemperatureF)
}

// WriteEventsTable writes events as tab-separated text. The output goes to
// stdout when filename is empty.
func WriteEventsTable(evts []events.Event, filename string) error {
	var w io.Writer
	if filename == "" {
		w = os.Stdout
	} else {
		if !strings.HasSuffix(filename, ".txt") {
			filename += ".txt"
		}
		file, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer file.Close()
		w = file
	}

	header := "ID\tCamera\tTimestamp\tCategory\tLabel\tTemp (F)\tMoon Phase\tFilename\n"
	if _, err := w.Write([]byte(header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	var err error
	for i := range evts {
		e := &evts[i]
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Camera, formatTimestamp(e), e.Category, e.Label,
			formatTemp(e), e.MoonPhaseClean, e.Filename)
		if _, err = w.Write([]byte(line)); err != nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if filename != "" {
		fmt.Println("Output written to", filename)
	}
	return nil
}

// WriteEventsCsv writes events in CSV format. The output goes to stdout
// when filename is empty.
func WriteEventsCsv(evts []events.Event, filename string) error {
	var w io.Writer
	if filename == "" {
		w = os.Stdout
	} else {
		if !strings.HasSuffix(filename, ".csv") {
			filename += ".csv"
		}
		file, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", filename, err)
		}
		defer file.Close()
		w = file
	}

	header := "id,camera,timestamp,category,label,temp_f,moon_phase,filename,summary\n"
	if _, err := w.Write([]byte(header)); err != nil {
		return fmt.Errorf("failed to write header to CSV: %w", err)
	}

	var err error
	for i := range evts {
		e := &evts[i]
		line := fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			e.ID, csvField(e.Camera), formatTimestamp(e), e.Category, csvField(e.Label),
			formatTemp(e), csvField(e.MoonPhaseClean), csvField(e.Filename), csvField(e.Summary))
		if _, err = w.Write([]byte(line)); err != nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write event to CSV: %w", err)
	}
	if filename != "" {
		fmt.Println("Output written to", filename)
	}
	return nil
}

// csvField quotes a value when it contains CSV metacharacters.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
