package anomaly

import (
	"strings"
	"testing"
	"time"

	"github.com/medmole/medmole/internal/model"
)

func painEvent(title string, day time.Time, data model.EventData) model.CalendarEvent {
	return model.CalendarEvent{Title: title, Type: model.TypePain, Start: day, End: day.Add(30 * time.Minute), EventData: data}
}

func symptomEvent(title string, day time.Time, data model.EventData) model.CalendarEvent {
	return model.CalendarEvent{Title: title, Type: model.TypeSymptom, Start: day, End: day.Add(30 * time.Minute), EventData: data}
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC)
}

func TestDetectEmptyAndIrrelevant(t *testing.T) {
	if got := Detect(nil); got != nil {
		t.Errorf("Detect(nil) = %v", got)
	}
	events := []model.CalendarEvent{
		{Title: "Metformin", Type: model.TypeMedication, Start: day(1)},
		{Title: "Dr. Lee", Type: model.TypeAppointment, Start: day(2)},
	}
	if got := Detect(events); got != nil {
		t.Errorf("medication and appointment events should never flag, got %v", got)
	}
}

func TestDetectHighSeverity(t *testing.T) {
	events := []model.CalendarEvent{
		symptomEvent("Fatigue", day(3), model.EventData{Severity: 6}),
		symptomEvent("Migraine", day(10), model.EventData{Severity: 8}),
	}
	ranges := Detect(events)
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1: %v", len(ranges), ranges)
	}
	r := ranges[0]
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if !r.Start.Equal(want) || !r.End.Equal(want) {
		t.Errorf("range = %v..%v, want single day %v", r.Start, r.End, want)
	}
	if !strings.Contains(r.Reason, "Migraine") || !strings.Contains(r.Reason, "8/10") {
		t.Errorf("reason = %q", r.Reason)
	}
}

func TestDetectChestPainAlwaysFlags(t *testing.T) {
	// Severity 1, but chest pain is a hard override.
	events := []model.CalendarEvent{
		painEvent("Mild chest pain", day(5), model.EventData{Severity: 1}),
	}
	ranges := Detect(events)
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1", len(ranges))
	}
	if !strings.Contains(ranges[0].Reason, "chest pain") {
		t.Errorf("reason = %q", ranges[0].Reason)
	}

	// Location alone also triggers it.
	events = []model.CalendarEvent{
		painEvent("Tightness", day(5), model.EventData{Location: "Chest"}),
	}
	if got := Detect(events); len(got) != 1 {
		t.Errorf("chest location should flag, got %v", got)
	}

	// Symptom-typed chest mention does not. Only pain events carry the override.
	events = []model.CalendarEvent{
		symptomEvent("Chest pain worry", day(5), model.EventData{}),
	}
	if got := Detect(events); len(got) != 0 {
		t.Errorf("non-pain chest mention should not flag, got %v", got)
	}
}

func TestDetectRecurringLocation(t *testing.T) {
	events := []model.CalendarEvent{
		painEvent("Headache", day(1), model.EventData{Location: "head"}),
		painEvent("Headache again", day(5), model.EventData{Location: "Head"}),
	}
	ranges := Detect(events)
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1: %v", len(ranges), ranges)
	}
	r := ranges[0]
	if !r.Start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) ||
		!r.End.Equal(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("range = %v..%v, want Mar 1..Mar 5", r.Start, r.End)
	}
	if !strings.Contains(r.Reason, "head") {
		t.Errorf("reason = %q", r.Reason)
	}
}

func TestDetectRecurringLocationOutsideWindow(t *testing.T) {
	events := []model.CalendarEvent{
		painEvent("Headache", day(1), model.EventData{Location: "head"}),
		painEvent("Headache", day(15), model.EventData{Location: "head"}),
	}
	if got := Detect(events); len(got) != 0 {
		t.Errorf("occurrences 14 days apart should not flag, got %v", got)
	}
}

func TestDetectCluster(t *testing.T) {
	events := []model.CalendarEvent{
		symptomEvent("Fatigue", day(1), model.EventData{}),
		symptomEvent("Nausea", day(2), model.EventData{}),
		painEvent("Back pain", day(4), model.EventData{}),
	}
	ranges := Detect(events)
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1: %v", len(ranges), ranges)
	}
	if !strings.Contains(ranges[0].Reason, "3 symptom events") {
		t.Errorf("reason = %q", ranges[0].Reason)
	}
}

func TestDetectNoClusterWhenSpread(t *testing.T) {
	events := []model.CalendarEvent{
		symptomEvent("Fatigue", day(1), model.EventData{}),
		symptomEvent("Nausea", day(10), model.EventData{}),
		painEvent("Back pain", day(20), model.EventData{}),
	}
	if got := Detect(events); len(got) != 0 {
		t.Errorf("spread-out events should not flag, got %v", got)
	}
}

func TestDetectMergesOverlappingRanges(t *testing.T) {
	// High severity on day 2 plus a cluster spanning days 1..3 must come
	// back as a single merged range with both reasons.
	events := []model.CalendarEvent{
		symptomEvent("Fatigue", day(1), model.EventData{}),
		symptomEvent("Migraine", day(2), model.EventData{Severity: 9}),
		symptomEvent("Nausea", day(3), model.EventData{}),
	}
	ranges := Detect(events)
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1 merged: %v", len(ranges), ranges)
	}
	r := ranges[0]
	if !strings.Contains(r.Reason, "high-severity") || !strings.Contains(r.Reason, "symptom events") {
		t.Errorf("merged reason = %q", r.Reason)
	}
	if !r.Start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) ||
		!r.End.Equal(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("range = %v..%v", r.Start, r.End)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	// Two locations recurring over the identical span merge into one range;
	// the joined reason order must not depend on map iteration.
	events := []model.CalendarEvent{
		painEvent("Headache", day(1), model.EventData{Location: "head", Severity: 8}),
		painEvent("Headache", day(3), model.EventData{Location: "head"}),
		painEvent("Sore arm", day(1), model.EventData{Location: "arm"}),
		painEvent("Sore arm", day(3), model.EventData{Location: "arm"}),
		symptomEvent("Nausea", day(2), model.EventData{}),
	}
	first := Detect(events)
	for range 50 {
		again := Detect(events)
		if len(again) != len(first) {
			t.Fatalf("non-deterministic range count: %d vs %d", len(again), len(first))
		}
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("non-deterministic range %d: %v vs %v", i, first[i], again[i])
			}
		}
	}
}

func TestRecommendation(t *testing.T) {
	if got := Recommendation(nil); !strings.Contains(got, "No abnormal patterns") {
		t.Errorf("empty recommendation = %q", got)
	}
	chest := []Range{{Reason: "chest pain reported: \"Tightness\""}}
	if got := Recommendation(chest); !strings.Contains(got, "medical attention") {
		t.Errorf("chest recommendation = %q", got)
	}
	severe := []Range{{Reason: "high-severity pain: \"Migraine\" (9/10)"}}
	if got := Recommendation(severe); !strings.Contains(got, "doctor") {
		t.Errorf("severity recommendation = %q", got)
	}
}
