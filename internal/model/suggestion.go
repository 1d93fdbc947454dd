package model

// Suggestion is a raw candidate event produced by the chat or analysis
// pipeline. It originates from model output text parsed as JSON and is
// never persisted as-is: it must pass validation before promotion to a
// CalendarEvent.
type Suggestion struct {
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Date        string    `json:"date"`     // YYYY-MM-DD, defaults to today
	Time        string    `json:"time"`     // HH:MM 24-hour, defaults to now
	Duration    int       `json:"duration"` // minutes, defaults to 30
	EventData   EventData `json:"eventData"`
}
