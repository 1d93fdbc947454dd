package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/medmole/medmole/internal/model"
)

// EventStore persists calendar events. Every query is scoped by the owning
// user id; there is no unscoped read or write path.
type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventCols = `id, user_id, title, event_type, description, start_time, end_time, all_day, event_data, created_at, updated_at`

func scanEvent(scanner interface{ Scan(...any) error }) (*model.CalendarEvent, error) {
	var e model.CalendarEvent
	var allDayInt int
	var dataJSON string

	err := scanner.Scan(&e.ID, &e.UserID, &e.Title, &e.Type, &e.Description,
		&e.Start, &e.End, &allDayInt, &dataJSON, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	e.AllDay = allDayInt != 0
	if dataJSON != "" && dataJSON != "{}" {
		if err := json.Unmarshal([]byte(dataJSON), &e.EventData); err != nil {
			return nil, fmt.Errorf("decode event data: %w", err)
		}
	}
	return &e, nil
}

func (s *EventStore) Create(userID int64, title string, eventType model.EventType, description string, start, end time.Time, allDay bool, data model.EventData) (*model.CalendarEvent, error) {
	var allDayInt int
	if allDay {
		allDayInt = 1
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO calendar_events (user_id, title, event_type, description, start_time, end_time, all_day, event_data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, title, string(eventType), description, start.UTC(), end.UTC(), allDayInt, string(dataJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("insert calendar event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(userID, id)
}

// GetByID returns the event, or nil if it does not exist or belongs to a
// different user.
func (s *EventStore) GetByID(userID, id int64) (*model.CalendarEvent, error) {
	row := s.db.QueryRow(
		`SELECT `+eventCols+` FROM calendar_events WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query calendar event: %w", err)
	}
	return e, nil
}

// ListByUser returns all events for the user ordered chronologically.
func (s *EventStore) ListByUser(userID int64) ([]model.CalendarEvent, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM calendar_events WHERE user_id = ? ORDER BY start_time ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query calendar events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListByUserDateRange returns events overlapping [start, end).
func (s *EventStore) ListByUserDateRange(userID int64, start, end time.Time) ([]model.CalendarEvent, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM calendar_events
		 WHERE user_id = ? AND start_time < ? AND end_time > ?
		 ORDER BY all_day DESC, start_time ASC`,
		userID, end.UTC(), start.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query calendar events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *EventStore) Update(userID, id int64, title string, eventType model.EventType, description string, start, end time.Time, allDay bool, data model.EventData) (*model.CalendarEvent, error) {
	var allDayInt int
	if allDay {
		allDayInt = 1
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE calendar_events
		 SET title = ?, event_type = ?, description = ?, start_time = ?, end_time = ?, all_day = ?, event_data = ?
		 WHERE id = ? AND user_id = ?`,
		title, string(eventType), description, start.UTC(), end.UTC(), allDayInt, string(dataJSON), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update calendar event: %w", err)
	}

	return s.GetByID(userID, id)
}

// UpdateTimes moves an event (drag or resize) without touching other fields.
func (s *EventStore) UpdateTimes(userID, id int64, start, end time.Time) (*model.CalendarEvent, error) {
	_, err := s.db.Exec(
		`UPDATE calendar_events SET start_time = ?, end_time = ? WHERE id = ? AND user_id = ?`,
		start.UTC(), end.UTC(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update event times: %w", err)
	}
	return s.GetByID(userID, id)
}

// SetMedicationTaken toggles the taken flag on a medication reminder,
// stamping TakenAt when set.
func (s *EventStore) SetMedicationTaken(userID, id int64, taken bool, at time.Time) (*model.CalendarEvent, error) {
	e, err := s.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}

	e.EventData.Taken = taken
	if taken {
		t := at.UTC()
		e.EventData.TakenAt = &t
	} else {
		e.EventData.TakenAt = nil
	}

	dataJSON, err := json.Marshal(e.EventData)
	if err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE calendar_events SET event_data = ? WHERE id = ? AND user_id = ?`,
		string(dataJSON), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update medication taken: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *EventStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM calendar_events WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}
