package chat

import (
	"testing"
	"time"

	"github.com/medmole/medmole/internal/model"
)

func event(eventType model.EventType, title string, data model.EventData) model.CalendarEvent {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return model.CalendarEvent{Title: title, Type: eventType, Start: start, End: start.Add(30 * time.Minute), EventData: data}
}

func TestExtractSymptomsCanonicalizes(t *testing.T) {
	events := []model.CalendarEvent{
		event(model.TypePain, "Bad Migraine", model.EventData{}),
		event(model.TypeSymptom, "Feeling nauseous", model.EventData{}),
		event(model.TypeSymptom, "So tired today", model.EventData{}),
	}
	got := ExtractSymptoms(events)
	want := []string{"headache", "nausea", "fatigue"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symptom %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractSymptomsDeduplicates(t *testing.T) {
	events := []model.CalendarEvent{
		event(model.TypePain, "Headache", model.EventData{}),
		event(model.TypePain, "Another headache", model.EventData{}),
		event(model.TypePain, "Migraine", model.EventData{}),
	}
	got := ExtractSymptoms(events)
	if len(got) != 1 || got[0] != "headache" {
		t.Errorf("got %v, want [headache]", got)
	}
}

func TestExtractSymptomsSpecificBeatsGeneric(t *testing.T) {
	events := []model.CalendarEvent{
		event(model.TypePain, "Chest pain after exercise", model.EventData{}),
	}
	got := ExtractSymptoms(events)
	if len(got) == 0 || got[0] != "chest pain" {
		t.Errorf("got %v, want chest pain first", got)
	}
}

func TestExtractSymptomsIgnoresOtherTypes(t *testing.T) {
	events := []model.CalendarEvent{
		event(model.TypeMedication, "Headache medication", model.EventData{}),
		event(model.TypeAppointment, "Dizziness consult", model.EventData{}),
	}
	if got := ExtractSymptoms(events); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestExtractSymptomsReadsLocationAndNotes(t *testing.T) {
	events := []model.CalendarEvent{
		event(model.TypePain, "Ouch", model.EventData{Location: "lower back", Notes: "some swelling too"}),
	}
	got := ExtractSymptoms(events)
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 symptoms", got)
	}
}
