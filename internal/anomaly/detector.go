// Package anomaly flags abnormal date ranges in a user's pain and symptom
// history. Detection is pure and deterministic: the same event set always
// yields the same ranges. Narrative phrasing may be delegated elsewhere, but
// the yes/no decision of what counts as abnormal is made here.
package anomaly

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/medmole/medmole/internal/model"
)

// Detection thresholds. These are policy, not tuning knobs: changing one
// changes which ranges users see highlighted.
const (
	severityThreshold = 7
	locationWindow    = 7 * 24 * time.Hour // same-location recurrence
	clusterWindow     = 3 * 24 * time.Hour // distinct-event clustering
	clusterMinEvents  = 3
)

// Range is one flagged span of days, inclusive on both ends. Start and End
// are midnight of the first and last flagged day.
type Range struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Reason string    `json:"reason"`
}

// Detect scans pain and symptom events for abnormal patterns. Other event
// types are ignored. Overlapping or adjacent ranges are merged, with their
// reasons joined.
func Detect(events []model.CalendarEvent) []Range {
	relevant := filterSymptomatic(events)
	if len(relevant) == 0 {
		return nil
	}
	sort.Slice(relevant, func(i, j int) bool { return relevant[i].Start.Before(relevant[j].Start) })

	var ranges []Range
	ranges = append(ranges, detectHighSeverity(relevant)...)
	ranges = append(ranges, detectChestPain(relevant)...)
	ranges = append(ranges, detectRecurringLocation(relevant)...)
	ranges = append(ranges, detectClusters(relevant)...)

	return mergeRanges(ranges)
}

func filterSymptomatic(events []model.CalendarEvent) []model.CalendarEvent {
	var out []model.CalendarEvent
	for _, e := range events {
		if e.Type == model.TypePain || e.Type == model.TypeSymptom {
			out = append(out, e)
		}
	}
	return out
}

// detectHighSeverity flags each event at or above the severity threshold as
// a single-day range, regardless of clustering.
func detectHighSeverity(events []model.CalendarEvent) []Range {
	var out []Range
	for _, e := range events {
		if e.EventData.Severity >= severityThreshold {
			day := dayOf(e.Start)
			out = append(out, Range{
				Start:  day,
				End:    day,
				Reason: fmt.Sprintf("high-severity %s: %q (%d/10)", e.Type, e.Title, e.EventData.Severity),
			})
		}
	}
	return out
}

// detectChestPain is a hard safety override: any pain event indicating chest
// pain is flagged no matter how mild it was logged as.
func detectChestPain(events []model.CalendarEvent) []Range {
	var out []Range
	for _, e := range events {
		if e.Type != model.TypePain {
			continue
		}
		if !isChestPain(e) {
			continue
		}
		day := dayOf(e.Start)
		out = append(out, Range{
			Start:  day,
			End:    day,
			Reason: fmt.Sprintf("chest pain reported: %q", e.Title),
		})
	}
	return out
}

func isChestPain(e model.CalendarEvent) bool {
	text := strings.ToLower(e.Title + " " + e.Description)
	if strings.Contains(text, "chest pain") {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(e.EventData.Location), "chest")
}

// detectRecurringLocation flags spans where the same body location shows up
// on two or more events close together, the "same complaint keeps coming
// back" signal. Events sharing a location are chained while consecutive
// occurrences stay within the window; each chain of length >= 2 becomes one
// range spanning first to last occurrence.
func detectRecurringLocation(events []model.CalendarEvent) []Range {
	byLocation := make(map[string][]model.CalendarEvent)
	for _, e := range events {
		loc := strings.ToLower(strings.TrimSpace(e.EventData.Location))
		if loc == "" {
			continue
		}
		byLocation[loc] = append(byLocation[loc], e)
	}

	// Map iteration order would leak into merged reasons; walk locations
	// in sorted order so identical inputs always yield identical ranges.
	locations := make([]string, 0, len(byLocation))
	for loc := range byLocation {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	var out []Range
	for _, loc := range locations {
		group := byLocation[loc]
		start := 0
		for i := 1; i <= len(group); i++ {
			if i < len(group) && group[i].Start.Sub(group[i-1].Start) <= locationWindow {
				continue
			}
			if i-start >= 2 {
				out = append(out, Range{
					Start:  dayOf(group[start].Start),
					End:    dayOf(group[i-1].Start),
					Reason: fmt.Sprintf("recurring %s complaints (%d in %d days)", loc, i-start, daySpan(group[start].Start, group[i-1].Start)),
				})
			}
			start = i
		}
	}
	return out
}

// detectClusters flags windows where several distinct symptomatic events
// pile up within a few days of each other, catching progressive worsening
// and co-occurring symptoms that are individually unremarkable.
func detectClusters(events []model.CalendarEvent) []Range {
	var out []Range
	start := 0
	for i := 1; i <= len(events); i++ {
		if i < len(events) && events[i].Start.Sub(events[i-1].Start) <= clusterWindow {
			continue
		}
		if i-start >= clusterMinEvents {
			out = append(out, Range{
				Start:  dayOf(events[start].Start),
				End:    dayOf(events[i-1].Start),
				Reason: fmt.Sprintf("%d symptom events within %d days", i-start, daySpan(events[start].Start, events[i-1].Start)),
			})
		}
		start = i
	}
	return out
}

// mergeRanges collapses overlapping and adjacent day ranges, joining their
// reasons. Input order does not matter; output is sorted by start.
func mergeRanges(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool {
		if !ranges[i].Start.Equal(ranges[j].Start) {
			return ranges[i].Start.Before(ranges[j].Start)
		}
		return ranges[i].End.Before(ranges[j].End)
	})

	merged := []Range{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if !r.Start.After(last.End.AddDate(0, 0, 1)) {
			if r.End.After(last.End) {
				last.End = r.End
			}
			last.Reason = joinReasons(last.Reason, r.Reason)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func joinReasons(a, b string) string {
	for _, part := range strings.Split(a, "; ") {
		if part == b {
			return a
		}
	}
	return a + "; " + b
}

// Recommendation derives a short deterministic advisory from the flagged
// ranges. It is the fallback text when no narrator is available and the
// baseline a narrator elaborates on.
func Recommendation(ranges []Range) string {
	if len(ranges) == 0 {
		return "No abnormal patterns detected in your recent symptoms."
	}

	all := make([]string, 0, len(ranges))
	for _, r := range ranges {
		all = append(all, r.Reason)
	}
	joined := strings.Join(all, "; ")

	switch {
	case strings.Contains(joined, "chest pain"):
		return "Chest pain was reported. Please seek medical attention promptly if it recurs or worsens."
	case strings.Contains(joined, "high-severity"):
		return "One or more high-severity events were recorded. Consider discussing these with your doctor."
	case strings.Contains(joined, "recurring"):
		return "The same complaint keeps recurring. A pattern like this is worth mentioning at your next appointment."
	default:
		return "Several symptoms were logged close together. Keep tracking them and consult your doctor if they persist."
	}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daySpan(a, b time.Time) int {
	return int(dayOf(b).Sub(dayOf(a)).Hours()/24) + 1
}
