package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/medmole/medmole/internal/model"
)

// SuggestionMarker delimits the structured block the assistant appends when
// it proposes a calendar event. Everything before it is conversational text.
const SuggestionMarker = "EVENT_SUGGESTION:"

// Event context windows fed into the prompt.
const (
	recentEventsWindow = 14 * 24 * time.Hour
	nearbyEventsWindow = 3 * 24 * time.Hour
)

const systemPrompt = `You are a helpful health assistant focused on symptom tracking and health management.

Guidelines:
- Provide helpful, supportive responses about health and symptom tracking
- If discussing symptoms, suggest tracking patterns and potential triggers
- Recommend consulting healthcare providers for serious concerns
- Keep responses concise but informative
- Use a caring, professional tone
- Do not provide specific medical diagnoses

EVENT SUGGESTION LOGIC:
Suggest adding an event when:
1. The user mentions a current symptom/pain/medication occurrence
2. The user mentions a specific past symptom with a date or time
3. The user mentions a future appointment or reminder

Do NOT suggest events when:
- The user is just discussing general health topics
- The user is asking questions about existing symptoms
- The user describes a routine or pattern rather than a specific instance

Duplicates are filtered automatically after your response; do not withhold a suggestion because a similar event might already exist.

To suggest one or more events, finish your response with this structure (a single object or an array of objects):

EVENT_SUGGESTION:
{
  "title": "Brief title for the event",
  "type": "pain|symptom|medication-reminder|medical-appointment|event",
  "description": "Brief description",
  "date": "YYYY-MM-DD (default to today if not specified)",
  "time": "HH:MM (default to current time if not specified)",
  "duration": 30,
  "eventData": {
    "severity": 5,
    "painLevel": "mild|moderate|severe",
    "location": "specific body part",
    "medication": "medication name",
    "dosage": "amount",
    "frequency": "how often",
    "doctorName": "doctor name",
    "appointmentType": "type of appointment",
    "notes": "additional relevant information"
  }
}

When the user mentions a time period (yesterday, this morning, last week), extract the specific date and time for the suggestion.`

// promptEvent is the trimmed event shape embedded in the prompt. Internal
// ids and bookkeeping timestamps would only waste tokens.
type promptEvent struct {
	Title       string          `json:"title"`
	Type        model.EventType `json:"type"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	EventData   model.EventData `json:"eventData,omitempty"`
}

// BuildPrompt assembles the full generation prompt: system guidance,
// current date/time context, the user's message, and two windows of
// existing events so the model can reference the user's history.
func BuildPrompt(userMessage string, now time.Time, recent, nearby []model.CalendarEvent) string {
	var b strings.Builder
	b.WriteString(systemPrompt)

	fmt.Fprintf(&b, "\n\nCurrent context:\n- Today's date: %s\n- Current time: %s\n- User timezone: %s\n",
		now.Format("2006-01-02"), now.Format("15:04"), now.Location())

	fmt.Fprintf(&b, "\nUser message: %q\n", userMessage)

	if len(nearby) > 0 {
		b.WriteString("\nEvents around the current time period (3 days before/after today):\n")
		b.WriteString(renderEvents(nearby))
	}
	if len(recent) > 0 {
		b.WriteString("\nRecent events (last 2 weeks):\n")
		b.WriteString(renderEvents(recent))
	}

	return b.String()
}

func renderEvents(events []model.CalendarEvent) string {
	out := make([]promptEvent, 0, len(events))
	for _, e := range events {
		out = append(out, promptEvent{
			Title:       e.Title,
			Type:        e.Type,
			Description: e.Description,
			Date:        e.Start.Format("2006-01-02"),
			Time:        e.Start.Format("15:04"),
			EventData:   e.EventData,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data) + "\n"
}
