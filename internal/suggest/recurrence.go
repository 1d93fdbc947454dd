package suggest

import (
	"fmt"
	"strings"
	"time"

	"github.com/medmole/medmole/internal/model"
)

// maxRecurrenceSpan bounds expansion when no explicit end date is given.
// The expander must never generate an unbounded series.
const maxRecurrenceSpan = 90 * 24 * time.Hour

const occurrenceDuration = 30 * time.Minute

// IsRecurringMedication reports whether the candidate should be expanded
// into a series rather than created as a single event.
func IsRecurringMedication(c *Candidate) bool {
	return c.Type == model.TypeMedication && c.EventData.IsRecurring
}

// ExpandRecurring generates the concrete occurrences of a recurring
// medication reminder. The anchor is the candidate's start; the series ends
// at RecurringEndDate when present, otherwise 90 days after the anchor.
// Every occurrence shares a recurringId (medication name + anchor unix
// timestamp) so adherence can be aggregated across the series.
func ExpandRecurring(c *Candidate) []Candidate {
	anchor := c.Start
	anchorDay := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())

	endDay := anchorDay.Add(maxRecurrenceSpan)
	if c.EventData.RecurringEndDate != "" {
		if d, err := time.ParseInLocation("2006-01-02", c.EventData.RecurringEndDate, anchor.Location()); err == nil {
			endDay = d
		}
	}

	times := occurrenceTimes(c)
	interval := c.EventData.RecurringInterval
	if interval < 1 {
		interval = 1
	}

	recurringID := c.EventData.RecurringID
	if recurringID == "" {
		name := c.EventData.Medication
		if name == "" {
			name = c.Title
		}
		recurringID = fmt.Sprintf("%s-%d", name, anchor.Unix())
	}

	var out []Candidate
	for day, idx := anchorDay, 0; !day.After(endDay); day, idx = day.AddDate(0, 0, 1), idx+1 {
		if !dayMatches(c, day, idx, interval) {
			continue
		}
		for _, clock := range times {
			start := time.Date(day.Year(), day.Month(), day.Day(), clock.hour, clock.minute, 0, 0, anchor.Location())
			occ := *c
			occ.Start = start
			occ.End = start.Add(occurrenceDuration)
			occ.EventData.RecurringID = recurringID
			out = append(out, occ)
		}
	}
	return out
}

func dayMatches(c *Candidate, day time.Time, daysSinceAnchor, interval int) bool {
	switch c.EventData.RecurringPattern {
	case model.RecurWeekly:
		name := strings.ToLower(day.Weekday().String())
		for _, d := range c.EventData.RecurringDays {
			if strings.ToLower(strings.TrimSpace(d)) == name {
				return true
			}
		}
		return false
	case model.RecurCustom:
		return daysSinceAnchor%interval == 0
	default: // daily
		return true
	}
}

type clockTime struct {
	hour, minute int
}

// occurrenceTimes returns the per-day times for the series: the trimmed
// RecurringTimes entries, falling back to the candidate's own start time
// when the list is empty.
func occurrenceTimes(c *Candidate) []clockTime {
	var out []clockTime
	for _, s := range c.EventData.RecurringTimes {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if t, err := time.Parse("15:04", s); err == nil {
			out = append(out, clockTime{t.Hour(), t.Minute()})
		}
	}
	if len(out) == 0 {
		out = append(out, clockTime{c.Start.Hour(), c.Start.Minute()})
	}
	return out
}
