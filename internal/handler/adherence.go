package handler

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/medmole/medmole/internal/auth"
	"github.com/medmole/medmole/internal/model"
	"github.com/medmole/medmole/internal/store"
)

const adherenceWindow = 7 * 24 * time.Hour

// AdherenceEntry aggregates one recurring medication series: how many of
// its reminders in the trailing week were marked taken.
type AdherenceEntry struct {
	RecurringID   string  `json:"recurring_id"`
	Medication    string  `json:"medication"`
	Total         int     `json:"total"`
	Taken         int     `json:"taken"`
	Missed        int     `json:"missed"`
	UpcomingToday int     `json:"upcoming_today"`
	Rate          float64 `json:"rate"`
}

type AdherenceHandler struct {
	eventStore *store.EventStore
	logger     *slog.Logger
	now        func() time.Time
}

func NewAdherenceHandler(es *store.EventStore, logger *slog.Logger) *AdherenceHandler {
	return &AdherenceHandler{eventStore: es, logger: logger, now: time.Now}
}

// Get reports per-series medication adherence over the trailing week.
// One-off reminders without a recurringId are excluded; adherence is a
// property of a schedule, not a single dose.
func (h *AdherenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	// The window runs through end of day so reminders still due today show
	// up as upcoming rather than vanishing from the report.
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	events, err := h.eventStore.ListByUserDateRange(auth.UserID(r.Context()), now.Add(-adherenceWindow), endOfDay)
	if err != nil {
		h.logger.Error("list events for adherence", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute adherence"})
		return
	}

	writeJSON(w, http.StatusOK, Adherence(events, now))
}

// Adherence groups medication reminders by series and computes taken, missed
// and upcoming counts per series. A reminder counts as missed once its start
// has passed without being marked taken; reminders later today are upcoming,
// not missed. Output is sorted by medication name for stable rendering.
func Adherence(events []model.CalendarEvent, now time.Time) []AdherenceEntry {
	bySeries := make(map[string]*AdherenceEntry)
	for _, e := range events {
		if e.Type != model.TypeMedication || e.EventData.RecurringID == "" {
			continue
		}
		entry, ok := bySeries[e.EventData.RecurringID]
		if !ok {
			entry = &AdherenceEntry{
				RecurringID: e.EventData.RecurringID,
				Medication:  e.EventData.Medication,
			}
			bySeries[e.EventData.RecurringID] = entry
		}
		entry.Total++
		switch {
		case e.EventData.Taken:
			entry.Taken++
		case e.Start.After(now):
			entry.UpcomingToday++
		default:
			entry.Missed++
		}
	}

	out := make([]AdherenceEntry, 0, len(bySeries))
	for _, entry := range bySeries {
		counted := entry.Taken + entry.Missed
		if counted > 0 {
			entry.Rate = float64(entry.Taken) / float64(counted)
		}
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Medication != out[j].Medication {
			return out[i].Medication < out[j].Medication
		}
		return out[i].RecurringID < out[j].RecurringID
	})
	return out
}
