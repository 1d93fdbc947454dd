package suggest

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/medmole/medmole/internal/model"
)

// fakeStore is an in-memory EventStore for orchestrator tests.
type fakeStore struct {
	events   []model.CalendarEvent
	nextID   int64
	failOn   string // titles containing this substring fail to persist
	listErr  error
}

func (f *fakeStore) Create(userID int64, title string, eventType model.EventType, description string, start, end time.Time, allDay bool, data model.EventData) (*model.CalendarEvent, error) {
	if f.failOn != "" && strings.Contains(title, f.failOn) {
		return nil, errors.New("storage unavailable")
	}
	f.nextID++
	e := model.CalendarEvent{
		ID: f.nextID, UserID: userID, Title: title, Type: eventType,
		Description: description, Start: start, End: end, AllDay: allDay, EventData: data,
	}
	f.events = append(f.events, e)
	return &e, nil
}

func (f *fakeStore) ListByUser(userID int64) ([]model.CalendarEvent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.CalendarEvent, len(f.events))
	copy(out, f.events)
	return out, nil
}

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) Invalidate(userID int64) { f.calls++ }

func newTestOrchestrator(store *fakeStore, inv Invalidator) *Orchestrator {
	o := NewOrchestrator(store, inv, slog.New(slog.DiscardHandler))
	o.now = func() time.Time { return testNow }
	return o
}

func TestProcessSingleSuggestion(t *testing.T) {
	store := &fakeStore{}
	inv := &fakeInvalidator{}
	o := newTestOrchestrator(store, inv)

	res := o.Process(1, []model.Suggestion{{
		Title: "Headache",
		Type:  "pain",
		Date:  "2026-01-15",
		Time:  "10:00",
	}})

	if len(res.Added) != 1 || len(res.Skipped) != 0 || len(res.Failed) != 0 {
		t.Fatalf("added=%d skipped=%d failed=%d", len(res.Added), len(res.Skipped), len(res.Failed))
	}
	if len(store.events) != 1 {
		t.Fatalf("persisted %d events, want 1", len(store.events))
	}
	if inv.calls != 1 {
		t.Errorf("analysis invalidated %d times, want 1", inv.calls)
	}
	if !strings.Contains(res.Summary(), "Headache") {
		t.Errorf("summary missing title: %q", res.Summary())
	}
}

func TestProcessPartialFailure(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store, nil)

	res := o.Process(1, []model.Suggestion{
		{Title: "Headache", Type: "pain", Date: "2026-01-15", Time: "09:00"},
		{Title: "", Type: "symptom"}, // irrecoverable: empty title
		{Title: "Nausea", Type: "symptom", Date: "2026-01-15", Time: "11:00"},
	})

	if len(res.Added) != 2 {
		t.Errorf("added = %d, want 2", len(res.Added))
	}
	if len(res.Failed) != 1 {
		t.Errorf("failed = %d, want 1", len(res.Failed))
	}
	if len(store.events) != 2 {
		t.Errorf("persisted %d events, want 2", len(store.events))
	}

	summary := res.Summary()
	if !strings.Contains(summary, "✅") || !strings.Contains(summary, "❌") {
		t.Errorf("summary should report both buckets: %q", summary)
	}
	if !strings.Contains(summary, "manually") {
		t.Errorf("failure bucket should hint at manual entry: %q", summary)
	}
}

func TestProcessSkipsDuplicate(t *testing.T) {
	store := &fakeStore{}
	// Pre-existing same-day headache.
	store.Create(1, "Headache", model.TypePain, "",
		time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC), false, model.EventData{})
	inv := &fakeInvalidator{}
	o := newTestOrchestrator(store, inv)

	res := o.Process(1, []model.Suggestion{{
		Title: "Headache again",
		Type:  "pain",
		Date:  "2026-01-15",
	}})

	if len(res.Skipped) != 1 {
		t.Fatalf("skipped = %d, want 1", len(res.Skipped))
	}
	if res.Skipped[0].MatchedTitle != "Headache" {
		t.Errorf("matched = %q", res.Skipped[0].MatchedTitle)
	}
	if len(store.events) != 1 {
		t.Errorf("duplicate was persisted")
	}
	if inv.calls != 0 {
		t.Error("analysis should not be invalidated when nothing was added")
	}
	if !strings.Contains(res.Summary(), "already exists") {
		t.Errorf("summary should surface the duplicate warning: %q", res.Summary())
	}
}

func TestProcessPersistenceErrorContinuesBatch(t *testing.T) {
	store := &fakeStore{failOn: "Migraine"}
	o := newTestOrchestrator(store, nil)

	res := o.Process(1, []model.Suggestion{
		{Title: "Migraine", Type: "pain", Date: "2026-01-15"},
		{Title: "Nausea", Type: "symptom", Date: "2026-01-15"},
	})

	if len(res.Failed) != 1 || res.Failed[0] != "Migraine" {
		t.Errorf("failed = %v", res.Failed)
	}
	if len(res.Added) != 1 {
		t.Errorf("added = %d, want 1", len(res.Added))
	}
}

func TestProcessRecurringExpansion(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store, nil)

	res := o.Process(1, []model.Suggestion{{
		Title: "Amoxicillin",
		Type:  "medication-reminder",
		Date:  "2026-01-01",
		Time:  "08:00",
		EventData: model.EventData{
			Medication:       "Amoxicillin",
			IsRecurring:      true,
			RecurringPattern: model.RecurDaily,
			RecurringEndDate: "2026-01-07",
		},
	}})

	if len(res.Added) != 1 {
		t.Fatalf("added = %d, want 1 series entry", len(res.Added))
	}
	if res.Added[0].Occurrences != 7 {
		t.Errorf("occurrences = %d, want 7", res.Added[0].Occurrences)
	}
	if len(store.events) != 7 {
		t.Errorf("persisted %d events, want 7", len(store.events))
	}
	id := store.events[0].EventData.RecurringID
	for _, e := range store.events {
		if e.EventData.RecurringID != id {
			t.Error("series should share one recurringId")
		}
	}
}

func TestProcessRecurringMultipleTimesPerDay(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store, nil)

	res := o.Process(1, []model.Suggestion{{
		Title: "Amoxicillin",
		Type:  "medication-reminder",
		Date:  "2026-01-01",
		Time:  "08:00",
		EventData: model.EventData{
			Medication:       "Amoxicillin",
			IsRecurring:      true,
			RecurringPattern: model.RecurDaily,
			RecurringEndDate: "2026-01-03",
			RecurringTimes:   []string{"08:00", "20:00"},
		},
	}})

	// The evening dose shares the morning dose's day and title; it must
	// still be created, not treated as a duplicate of its sibling.
	if len(store.events) != 6 {
		t.Fatalf("persisted %d events, want 6 (added=%v skipped=%v)", len(store.events), res.Added, res.Skipped)
	}
	if len(res.Added) != 1 || res.Added[0].Occurrences != 6 {
		t.Errorf("added = %+v, want one entry with 6 occurrences", res.Added)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("skipped = %+v, want none", res.Skipped)
	}
}

func TestProcessRecurringSurfacesSkipsAlongsideAdds(t *testing.T) {
	seed := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{events: []model.CalendarEvent{{
		ID: 99, UserID: 1, Title: "Amoxicillin", Type: model.TypeMedication,
		Start: seed, End: seed.Add(30 * time.Minute),
	}}, nextID: 99}
	o := newTestOrchestrator(store, nil)

	res := o.Process(1, []model.Suggestion{{
		Title: "Amoxicillin",
		Type:  "medication-reminder",
		Date:  "2026-01-01",
		Time:  "08:00",
		EventData: model.EventData{
			Medication:       "Amoxicillin",
			IsRecurring:      true,
			RecurringPattern: model.RecurDaily,
			RecurringEndDate: "2026-01-03",
		},
	}})

	if len(res.Added) != 1 || res.Added[0].Occurrences != 2 {
		t.Errorf("added = %+v, want one entry with 2 occurrences", res.Added)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].MatchedTitle != "Amoxicillin" {
		t.Errorf("skipped = %+v, want the day-one duplicate surfaced", res.Skipped)
	}
	summary := res.Summary()
	if !strings.Contains(summary, "already exists") {
		t.Errorf("summary = %q, want the duplicate warning surfaced", summary)
	}
}

func TestProcessEmptyBatchFallbackMessage(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store, nil)

	res := o.Process(1, nil)
	if got := res.Summary(); !strings.Contains(got, "No events could be added") {
		t.Errorf("summary = %q, want fallback message", got)
	}
}

func TestProcessListErrorFailsClosed(t *testing.T) {
	store := &fakeStore{listErr: errors.New("db gone")}
	o := newTestOrchestrator(store, nil)

	res := o.Process(1, []model.Suggestion{{Title: "Headache", Type: "pain"}})
	if len(res.Failed) != 1 {
		t.Errorf("failed = %d, want 1 (cannot dedup without the existing set)", len(res.Failed))
	}
	if len(store.events) != 0 {
		t.Error("nothing should be persisted when the existing set is unavailable")
	}
}
