package suggest

import (
	"testing"
	"time"

	"github.com/medmole/medmole/internal/model"
)

func existingEvent(title string, typ model.EventType, start time.Time) model.CalendarEvent {
	return model.CalendarEvent{
		ID:    1,
		Title: title,
		Type:  typ,
		Start: start,
		End:   start.Add(30 * time.Minute),
	}
}

func TestFindDuplicateSameDayTypeAndToken(t *testing.T) {
	existing := []model.CalendarEvent{
		existingEvent("Headache", model.TypePain, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)),
	}
	cand, err := Validate(model.Suggestion{
		Title: "Headache right now",
		Type:  "pain",
		Date:  "2025-01-01",
		Time:  "18:00",
	}, testNow)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	matched := FindDuplicate(cand, existing)
	if matched == nil {
		t.Fatal("expected duplicate")
	}
	if matched.Title != "Headache" {
		t.Errorf("matched %q", matched.Title)
	}
}

func TestFindDuplicateDifferentTypeIsNotDuplicate(t *testing.T) {
	existing := []model.CalendarEvent{
		existingEvent("Headache", model.TypePain, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)),
	}
	cand, err := Validate(model.Suggestion{
		Title: "Headache right now",
		Type:  "symptom",
		Date:  "2025-01-01",
	}, testNow)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if FindDuplicate(cand, existing) != nil {
		t.Error("type mismatch should not be a duplicate")
	}
}

func TestFindDuplicateDifferentDayIsNotDuplicate(t *testing.T) {
	existing := []model.CalendarEvent{
		existingEvent("Headache", model.TypePain, time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)),
	}
	cand, err := Validate(model.Suggestion{
		Title: "Headache",
		Type:  "pain",
		Date:  "2025-01-01",
	}, testNow)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if FindDuplicate(cand, existing) != nil {
		t.Error("different day should not be a duplicate")
	}
}

func TestFindDuplicateCaseInsensitive(t *testing.T) {
	existing := []model.CalendarEvent{
		existingEvent("Lower back PAIN flaring", model.TypePain, time.Date(2025, 3, 3, 7, 0, 0, 0, time.UTC)),
	}
	cand, err := Validate(model.Suggestion{
		Title: "Lower back ache",
		Type:  "pain",
		Date:  "2025-03-03",
	}, testNow)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if FindDuplicate(cand, existing) == nil {
		t.Error("first token match should be case-insensitive")
	}
}

func TestFindDuplicateNoTokenOverlap(t *testing.T) {
	existing := []model.CalendarEvent{
		existingEvent("Headache", model.TypePain, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)),
	}
	cand, err := Validate(model.Suggestion{
		Title: "Knee pain",
		Type:  "pain",
		Date:  "2025-01-01",
	}, testNow)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if FindDuplicate(cand, existing) != nil {
		t.Error("unrelated titles should not match")
	}
}
