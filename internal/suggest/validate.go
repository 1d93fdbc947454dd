package suggest

import (
	"errors"
	"strings"
	"time"

	"github.com/medmole/medmole/internal/model"
)

// ErrMissingTitle is the only fatal validation failure: a suggestion with no
// title cannot be promoted to an event.
var ErrMissingTitle = errors.New("missing title")

const defaultDuration = 30 * time.Minute

// Candidate is a suggestion that passed validation: types are closed, dates
// are concrete, and End >= Start always holds.
type Candidate struct {
	Title       string
	Type        model.EventType
	Description string
	Start       time.Time
	End         time.Time
	EventData   model.EventData
}

// Validate normalizes an untrusted suggestion into a Candidate. The input
// originates from model output parsed as JSON, so every field except the
// title degrades gracefully: unknown types fall closed to symptom, a bad or
// absent date becomes today, a bad or absent time becomes now truncated to
// the minute, and a non-positive duration becomes 30 minutes. The suggestion
// is advisory; substituting a default beats dropping it.
func Validate(s model.Suggestion, now time.Time) (*Candidate, error) {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}

	eventType := model.EventType(strings.TrimSpace(s.Type))
	if !model.ValidEventType(eventType) {
		eventType = model.TypeSymptom
	}

	day, err := time.ParseInLocation("2006-01-02", s.Date, now.Location())
	if err != nil {
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	clock, err := time.Parse("15:04", s.Time)
	if err != nil {
		clock = time.Date(0, 1, 1, now.Hour(), now.Minute(), 0, 0, time.UTC)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())

	duration := time.Duration(s.Duration) * time.Minute
	if duration <= 0 {
		duration = defaultDuration
	}

	return &Candidate{
		Title:       title,
		Type:        eventType,
		Description: strings.TrimSpace(s.Description),
		Start:       start,
		End:         start.Add(duration),
		EventData:   s.EventData,
	}, nil
}
