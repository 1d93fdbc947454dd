package model

import "time"

// EventType classifies a calendar entry. Unknown values coming from the
// suggestion pipeline are coerced to TypeSymptom at the validation boundary.
type EventType string

const (
	TypePain        EventType = "pain"
	TypeSymptom     EventType = "symptom"
	TypeMedication  EventType = "medication-reminder"
	TypeAppointment EventType = "medical-appointment"
	TypeGeneric     EventType = "event"
)

// ValidEventType reports whether t is one of the closed set of event types.
func ValidEventType(t EventType) bool {
	switch t {
	case TypePain, TypeSymptom, TypeMedication, TypeAppointment, TypeGeneric:
		return true
	}
	return false
}

// PainLevel buckets for pain events.
const (
	PainMild     = "mild"
	PainModerate = "moderate"
	PainSevere   = "severe"
)

// Recurrence patterns for medication reminders.
const (
	RecurDaily  = "daily"
	RecurWeekly = "weekly"
	RecurCustom = "custom"
)

// EventData is the type-dependent attribute bag attached to an event.
// Which fields are meaningful depends on the event type.
type EventData struct {
	// pain / symptom
	PainLevel string `json:"painLevel,omitempty"`
	Location  string `json:"location,omitempty"`
	Severity  int    `json:"severity,omitempty"` // 1..10

	// medication-reminder
	Medication string     `json:"medication,omitempty"`
	Dosage     string     `json:"dosage,omitempty"`
	Frequency  string     `json:"frequency,omitempty"`
	Taken      bool       `json:"taken,omitempty"`
	TakenAt    *time.Time `json:"takenAt,omitempty"`

	// recurrence metadata (medication-reminder only)
	IsRecurring       bool     `json:"isRecurring,omitempty"`
	RecurringPattern  string   `json:"recurringPattern,omitempty"` // daily | weekly | custom
	RecurringDays     []string `json:"recurringDays,omitempty"`    // lowercase weekday names
	RecurringInterval int      `json:"recurringInterval,omitempty"`
	RecurringEndDate  string   `json:"recurringEndDate,omitempty"` // YYYY-MM-DD
	RecurringTimes    []string `json:"recurringTimes,omitempty"`   // HH:MM entries
	RecurringID       string   `json:"recurringId,omitempty"`      // adherence grouping key

	// medical-appointment
	DoctorName      string `json:"doctorName,omitempty"`
	AppointmentType string `json:"appointmentType,omitempty"`

	// all types
	Notes string `json:"notes,omitempty"`
}

// IsZero reports whether the bag carries no data at all.
func (d EventData) IsZero() bool {
	return d.PainLevel == "" && d.Location == "" && d.Severity == 0 &&
		d.Medication == "" && d.Dosage == "" && d.Frequency == "" &&
		!d.Taken && d.TakenAt == nil && !d.IsRecurring &&
		d.RecurringID == "" && d.DoctorName == "" && d.AppointmentType == "" &&
		d.Notes == ""
}

// CalendarEvent is the core persisted entity. Every event belongs to exactly
// one user; stores filter all reads and writes by UserID.
type CalendarEvent struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Type        EventType `json:"type"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"all_day"`
	EventData   EventData `json:"event_data"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
