package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/medmole/medmole/internal/llm"
	"github.com/medmole/medmole/internal/model"
	"github.com/medmole/medmole/internal/suggest"
)

type fakeProvider struct {
	reply string
	err   error
	last  llm.Request
}

func (f *fakeProvider) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.last = req
	return f.reply, f.err
}

func (f *fakeProvider) Name() string { return "fake" }

type memoryEvents struct {
	events []model.CalendarEvent
	nextID int64
}

func (m *memoryEvents) Create(userID int64, title string, eventType model.EventType, description string, start, end time.Time, allDay bool, data model.EventData) (*model.CalendarEvent, error) {
	m.nextID++
	e := model.CalendarEvent{ID: m.nextID, UserID: userID, Title: title, Type: eventType, Start: start, End: end, EventData: data}
	m.events = append(m.events, e)
	return &e, nil
}

func (m *memoryEvents) ListByUser(userID int64) ([]model.CalendarEvent, error) {
	return m.events, nil
}

func (m *memoryEvents) ListByUserDateRange(userID int64, start, end time.Time) ([]model.CalendarEvent, error) {
	var out []model.CalendarEvent
	for _, e := range m.events {
		if !e.Start.Before(start) && e.Start.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakePredictor struct {
	advisory string
	err      error
	symptoms []string
}

func (f *fakePredictor) PredictPhysical(ctx context.Context, symptoms []string) (string, error) {
	f.symptoms = symptoms
	return f.advisory, f.err
}

var chatNow = time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)

func newTestService(provider llm.Provider, events *memoryEvents, predictor PhysicalPredictor) *Service {
	logger := slog.New(slog.DiscardHandler)
	orch := suggest.NewOrchestrator(events, nil, logger)
	svc := NewService(provider, events, orch, predictor, logger)
	svc.now = func() time.Time { return chatNow }
	return svc
}

func TestSendCreatesEventFromSuggestion(t *testing.T) {
	provider := &fakeProvider{reply: `Sorry about the headache, make sure to rest.

EVENT_SUGGESTION:
{"title": "Headache", "type": "pain", "date": "2026-03-15", "time": "14:00", "eventData": {"severity": 4, "location": "head"}}`}
	events := &memoryEvents{}
	svc := newTestService(provider, events, nil)

	resp := svc.Send(context.Background(), 1, "I have a headache right now")

	if len(events.events) != 1 {
		t.Fatalf("persisted %d events, want 1", len(events.events))
	}
	created := events.events[0]
	if created.Type != model.TypePain || created.Start.Format("2006-01-02") != "2026-03-15" {
		t.Errorf("created = %+v", created)
	}
	if !strings.Contains(resp.Message, "rest") || !strings.Contains(resp.Message, "✅") {
		t.Errorf("message = %q", resp.Message)
	}
	if len(resp.Created) != 1 {
		t.Errorf("response created = %d, want 1", len(resp.Created))
	}
}

func TestSendPromptCarriesEventContext(t *testing.T) {
	events := &memoryEvents{}
	events.Create(1, "Back pain", model.TypePain, "", chatNow.Add(-24*time.Hour), chatNow.Add(-24*time.Hour+30*time.Minute), false, model.EventData{})
	provider := &fakeProvider{reply: "Take care."}
	svc := newTestService(provider, events, nil)

	svc.Send(context.Background(), 1, "How am I doing?")

	if len(provider.last.Messages) != 1 {
		t.Fatalf("messages = %d", len(provider.last.Messages))
	}
	prompt := provider.last.Messages[0].Content
	if !strings.Contains(prompt, "Back pain") {
		t.Errorf("prompt missing event context")
	}
	if !strings.Contains(prompt, "2026-03-15") {
		t.Errorf("prompt missing current date")
	}
	if !strings.Contains(prompt, "How am I doing?") {
		t.Errorf("prompt missing user message")
	}
}

func TestSendGenerationFailureIsApologetic(t *testing.T) {
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	svc := newTestService(provider, &memoryEvents{}, nil)

	resp := svc.Send(context.Background(), 1, "hello")
	if resp.Message != apologeticMessage {
		t.Errorf("message = %q", resp.Message)
	}
	if strings.Contains(resp.Message, "quota") {
		t.Error("backend error leaked to user")
	}
}

func TestSendEmptyMessageRejected(t *testing.T) {
	provider := &fakeProvider{reply: "should not be called"}
	svc := newTestService(provider, &memoryEvents{}, nil)

	resp := svc.Send(context.Background(), 1, "   ")
	if strings.Contains(resp.Message, "should not be called") {
		t.Error("provider was called for an empty message")
	}
	if resp.Message == "" {
		t.Error("empty response")
	}
}

func TestSendInvokesPredictorAtThreshold(t *testing.T) {
	events := &memoryEvents{}
	day := chatNow.Add(-48 * time.Hour)
	events.Create(1, "Headache", model.TypePain, "", day, day.Add(30*time.Minute), false, model.EventData{})
	events.Create(1, "Nausea", model.TypeSymptom, "", day.Add(time.Hour), day.Add(90*time.Minute), false, model.EventData{})
	events.Create(1, "Fatigue", model.TypeSymptom, "", day.Add(2*time.Hour), day.Add(150*time.Minute), false, model.EventData{})

	predictor := &fakePredictor{advisory: "Consider a flu screening."}
	provider := &fakeProvider{reply: "Noted."}
	svc := newTestService(provider, events, predictor)

	resp := svc.Send(context.Background(), 1, "What do you think?")
	if len(predictor.symptoms) != 3 {
		t.Fatalf("predictor got %v", predictor.symptoms)
	}
	if !strings.Contains(resp.Message, "flu screening") {
		t.Errorf("advisory missing from reply: %q", resp.Message)
	}
}

func TestSendSkipsPredictorBelowThreshold(t *testing.T) {
	events := &memoryEvents{}
	day := chatNow.Add(-48 * time.Hour)
	events.Create(1, "Headache", model.TypePain, "", day, day.Add(30*time.Minute), false, model.EventData{})

	predictor := &fakePredictor{advisory: "unexpected"}
	provider := &fakeProvider{reply: "Noted."}
	svc := newTestService(provider, events, predictor)

	resp := svc.Send(context.Background(), 1, "What do you think?")
	if predictor.symptoms != nil {
		t.Errorf("predictor called with %v", predictor.symptoms)
	}
	if strings.Contains(resp.Message, "unexpected") {
		t.Error("advisory appended below threshold")
	}
}

func TestSendPredictorFailureOmitsAdvisory(t *testing.T) {
	events := &memoryEvents{}
	day := chatNow.Add(-48 * time.Hour)
	events.Create(1, "Headache", model.TypePain, "", day, day.Add(30*time.Minute), false, model.EventData{})
	events.Create(1, "Nausea", model.TypeSymptom, "", day, day.Add(30*time.Minute), false, model.EventData{})
	events.Create(1, "Fatigue", model.TypeSymptom, "", day, day.Add(30*time.Minute), false, model.EventData{})

	predictor := &fakePredictor{err: errors.New("binary missing")}
	provider := &fakeProvider{reply: "Noted."}
	svc := newTestService(provider, events, predictor)

	resp := svc.Send(context.Background(), 1, "What do you think?")
	if resp.Message != "Noted." {
		t.Errorf("message = %q", resp.Message)
	}
}
