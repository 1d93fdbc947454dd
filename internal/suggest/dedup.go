package suggest

import (
	"strings"

	"github.com/medmole/medmole/internal/model"
)

// FindDuplicate reports whether the candidate already has a counterpart in
// the existing event set, returning the matched event or nil.
//
// An existing event is a duplicate when it has the same type, its start falls
// on the same local calendar day, and the first whitespace-delimited token of
// the candidate's title appears case-insensitively in the existing title.
// The heuristic is intentionally coarse: skipping a legitimate second
// same-day entry is preferred over double-logging, because duplicate noise
// degrades the anomaly detector's signal.
func FindDuplicate(c *Candidate, existing []model.CalendarEvent) *model.CalendarEvent {
	token := firstToken(c.Title)
	if token == "" {
		return nil
	}

	cy, cm, cd := c.Start.Date()
	for i := range existing {
		e := &existing[i]
		if e.Type != c.Type {
			continue
		}
		ey, em, ed := e.Start.In(c.Start.Location()).Date()
		if ey != cy || em != cm || ed != cd {
			continue
		}
		if strings.Contains(strings.ToLower(e.Title), token) {
			return e
		}
	}
	return nil
}

func firstToken(title string) string {
	fields := strings.Fields(strings.ToLower(title))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
