package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/medmole/medmole/internal/auth"
	"github.com/medmole/medmole/internal/model"
	"github.com/medmole/medmole/internal/store"
	"github.com/medmole/medmole/internal/websocket"
)

// Invalidator resets cached analysis state after an event mutation.
type Invalidator interface {
	Invalidate(userID int64)
}

type CalendarEventHandler struct {
	eventStore *store.EventStore
	hub        *websocket.Hub
	analysis   Invalidator
	logger     *slog.Logger
}

func NewCalendarEventHandler(es *store.EventStore, hub *websocket.Hub, analysis Invalidator, logger *slog.Logger) *CalendarEventHandler {
	return &CalendarEventHandler{eventStore: es, hub: hub, analysis: analysis, logger: logger}
}

// changed fans out one mutation: realtime push to the user's other
// connections and an analysis cache reset.
func (h *CalendarEventHandler) changed(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.BroadcastMessage(userID, websocket.NewMessage("calendar_event", action, id, nil))
	}
	if h.analysis != nil {
		h.analysis.Invalidate(userID)
	}
}

type eventRequest struct {
	Title       string          `json:"title"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time"`
	AllDay      bool            `json:"all_day"`
	EventData   model.EventData `json:"event_data"`
}

func (h *CalendarEventHandler) parseAndValidate(r *http.Request, w http.ResponseWriter) (*eventRequest, time.Time, time.Time, bool) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return nil, time.Time{}, time.Time{}, false
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return nil, time.Time{}, time.Time{}, false
	}

	if !model.ValidEventType(model.EventType(req.Type)) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown event type"})
		return nil, time.Time{}, time.Time{}, false
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_time must be RFC3339 format"})
		return nil, time.Time{}, time.Time{}, false
	}

	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_time must be RFC3339 format"})
		return nil, time.Time{}, time.Time{}, false
	}

	if endTime.Before(startTime) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_time must not be before start_time"})
		return nil, time.Time{}, time.Time{}, false
	}

	return &req, startTime, endTime, true
}

func (h *CalendarEventHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, startTime, endTime, ok := h.parseAndValidate(r, w)
	if !ok {
		return
	}

	userID := auth.UserID(r.Context())
	event, err := h.eventStore.Create(userID, req.Title, model.EventType(req.Type), req.Description, startTime, endTime, req.AllDay, req.EventData)
	if err != nil {
		h.logger.Error("create calendar event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create event"})
		return
	}

	h.changed(userID, "created", event.ID)
	writeJSON(w, http.StatusCreated, event)
}

// List returns the user's events, filtered to [start, end) when both query
// parameters are present.
func (h *CalendarEventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	var events []model.CalendarEvent
	var err error
	if startStr == "" && endStr == "" {
		events, err = h.eventStore.ListByUser(userID)
	} else {
		var start, end time.Time
		if start, err = parseFlexibleTime(startStr); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start must be RFC3339 or YYYY-MM-DD format"})
			return
		}
		if end, err = parseFlexibleTime(endStr); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end must be RFC3339 or YYYY-MM-DD format"})
			return
		}
		events, err = h.eventStore.ListByUserDateRange(userID, start, end)
	}
	if err != nil {
		h.logger.Error("list calendar events", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list events"})
		return
	}
	if events == nil {
		events = []model.CalendarEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *CalendarEventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	event, err := h.eventStore.GetByID(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("get calendar event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}
	if event == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *CalendarEventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	userID := auth.UserID(r.Context())
	existing, err := h.eventStore.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get calendar event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}

	req, startTime, endTime, ok := h.parseAndValidate(r, w)
	if !ok {
		return
	}

	event, err := h.eventStore.Update(userID, id, req.Title, model.EventType(req.Type), req.Description, startTime, endTime, req.AllDay, req.EventData)
	if err != nil {
		h.logger.Error("update calendar event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update event"})
		return
	}

	h.changed(userID, "updated", id)
	writeJSON(w, http.StatusOK, event)
}

type eventTimesRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// UpdateTimes handles drag and resize: only the two timestamps change.
func (h *CalendarEventHandler) UpdateTimes(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req eventTimesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_time must be RFC3339 format"})
		return
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_time must be RFC3339 format"})
		return
	}
	if endTime.Before(startTime) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_time must not be before start_time"})
		return
	}

	userID := auth.UserID(r.Context())
	event, err := h.eventStore.UpdateTimes(userID, id, startTime, endTime)
	if err != nil {
		h.logger.Error("move calendar event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update event"})
		return
	}
	if event == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}

	h.changed(userID, "updated", id)
	writeJSON(w, http.StatusOK, event)
}

type takenRequest struct {
	Taken bool `json:"taken"`
}

// SetTaken toggles the medication-taken flag on a reminder.
func (h *CalendarEventHandler) SetTaken(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req takenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	userID := auth.UserID(r.Context())
	existing, err := h.eventStore.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get calendar event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}
	if existing.Type != model.TypeMedication {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "not a medication reminder"})
		return
	}

	event, err := h.eventStore.SetMedicationTaken(userID, id, req.Taken, time.Now())
	if err != nil {
		h.logger.Error("toggle medication taken", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update event"})
		return
	}

	h.changed(userID, "updated", id)
	writeJSON(w, http.StatusOK, event)
}

func (h *CalendarEventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	userID := auth.UserID(r.Context())
	existing, err := h.eventStore.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get calendar event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}

	if err := h.eventStore.Delete(userID, id); err != nil {
		h.logger.Error("delete calendar event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete event"})
		return
	}

	h.changed(userID, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
