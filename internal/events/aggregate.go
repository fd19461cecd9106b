package events

import (
	"sort"
	"time"
)

// LabelCount is a per-label tally. Folded marks the display-only "Other"
// bucket produced by TopLabels; it is never set on the wildlife sentinel,
// which is a real label.
type LabelCount struct {
	Label  string `json:"label"`
	Count  int    `json:"count"`
	Folded bool   `json:"folded,omitempty"`
}

// BucketCount is a per-(time bucket, label) tally for histogram rendering.
// Bucket is the starting hour of the bucket.
type BucketCount struct {
	Bucket int    `json:"bucket"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
}

// WeekdayCount is a per-day-of-week tally, Sunday first.
type WeekdayCount struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

// CountByCategory tallies events per category, unknown included.
func CountByCategory(evts []Event) map[Category]int {
	out := make(map[Category]int, 4)
	for i := range evts {
		out[evts[i].Category]++
	}
	return out
}

// TimeBucket coarsens an hour-of-day to the given granularity in hours
// (1, 2 or 4) by integer division. Invalid granularities fall back to 1.
func TimeBucket(hour, granularity int) int {
	if granularity != 2 && granularity != 4 {
		return hour
	}
	return (hour / granularity) * granularity
}

// CountByTimeBucket tallies events per (time bucket, label). Rows without a
// usable timestamp are skipped; they carry no time-of-day signal. Results
// are sorted by bucket, then label, for stable chart output.
func CountByTimeBucket(evts []Event, granularity int) []BucketCount {
	type key struct {
		bucket int
		label  string
	}
	counts := make(map[key]int)
	for i := range evts {
		if evts[i].Timestamp == nil {
			continue
		}
		k := key{TimeBucket(evts[i].Timestamp.Hour(), granularity), evts[i].Label}
		counts[k]++
	}

	out := make([]BucketCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, BucketCount{Bucket: k.bucket, Label: k.label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bucket != out[j].Bucket {
			return out[i].Bucket < out[j].Bucket
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// CountByWeekday tallies events per day of week, Sunday through Saturday.
// Rows without a usable timestamp are skipped.
func CountByWeekday(evts []Event) []WeekdayCount {
	var counts [7]int
	for i := range evts {
		if evts[i].Timestamp == nil {
			continue
		}
		counts[evts[i].Timestamp.Weekday()]++
	}

	out := make([]WeekdayCount, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		out[d] = WeekdayCount{Weekday: d.String(), Count: counts[d]}
	}
	return out
}

// TopLabels tallies events per label and keeps the n highest counts,
// folding everything else into a single display-only "Other" bucket for
// legend readability. The folded bucket is a presentation grouping, not a
// re-classification: it is tagged Folded to keep it distinct from the
// wildlife sentinel, which competes for a top-n slot like any other label.
// Ties break by label name for stable output.
func TopLabels(evts []Event, n int) []LabelCount {
	totals := make(map[string]int)
	for i := range evts {
		totals[evts[i].Label]++
	}

	all := make([]LabelCount, 0, len(totals))
	for label, count := range totals {
		all = append(all, LabelCount{Label: label, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Label < all[j].Label
	})

	if n <= 0 || len(all) <= n {
		return all
	}

	out := all[:n:n]
	folded := LabelCount{Label: LabelOther, Folded: true}
	for _, lc := range all[n:] {
		folded.Count += lc.Count
	}
	return append(out, folded)
}
