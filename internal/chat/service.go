// Package chat runs the assistant conversation loop: build a context-aware
// prompt, call the text-generation backend, and reconcile any event
// suggestions embedded in the response against the user's calendar.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/medmole/medmole/internal/llm"
	"github.com/medmole/medmole/internal/model"
	"github.com/medmole/medmole/internal/suggest"
)

// Backend failures are never surfaced raw; users get this instead.
const apologeticMessage = "I'm sorry, I'm having trouble connecting right now. Please try again in a moment."

// EventSource provides the calendar windows embedded in the prompt.
type EventSource interface {
	ListByUserDateRange(userID int64, start, end time.Time) ([]model.CalendarEvent, error)
}

// Reconciler promotes parsed suggestions to persisted events.
type Reconciler interface {
	Process(userID int64, suggestions []model.Suggestion) suggest.Result
}

// PhysicalPredictor returns advisory text for a symptom list.
type PhysicalPredictor interface {
	PredictPhysical(ctx context.Context, symptoms []string) (string, error)
}

// Response is one assistant turn.
type Response struct {
	Message string                `json:"message"`
	Created []model.CalendarEvent `json:"created,omitempty"`
}

// Service wires the chat pipeline together. The predictor is optional; when
// nil the symptom-classifier step is skipped entirely.
type Service struct {
	provider  llm.Provider
	events    EventSource
	reconcile Reconciler
	predictor PhysicalPredictor
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(provider llm.Provider, events EventSource, reconcile Reconciler, predictor PhysicalPredictor, logger *slog.Logger) *Service {
	return &Service{
		provider:  provider,
		events:    events,
		reconcile: reconcile,
		predictor: predictor,
		logger:    logger.With("component", "chat"),
		now:       time.Now,
	}
}

// Send processes one user message and returns the assistant's reply. The
// reply may carry a reconciliation summary and a classifier advisory in
// addition to the conversational text. Generation failures degrade to an
// apologetic message rather than an error; only an empty message is
// rejected outright.
func (s *Service) Send(ctx context.Context, userID int64, message string) Response {
	message = strings.TrimSpace(message)
	if message == "" {
		return Response{Message: "Please type a message first."}
	}

	now := s.now()
	recent := s.window(userID, now.Add(-recentEventsWindow), now)
	nearby := s.window(userID, now.Add(-nearbyEventsWindow), now.Add(nearbyEventsWindow))

	prompt := BuildPrompt(message, now, recent, nearby)
	text, err := s.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		s.logger.Error("generate reply", "error", err, "provider", s.provider.Name())
		return Response{Message: apologeticMessage}
	}

	reply, suggestions := SplitSuggestions(text)

	var resp Response
	var parts []string
	if reply != "" {
		parts = append(parts, reply)
	}

	if len(suggestions) > 0 {
		result := s.reconcile.Process(userID, suggestions)
		parts = append(parts, result.Summary())
		resp.Created = result.Created
	}

	if advisory := s.predict(ctx, recent); advisory != "" {
		parts = append(parts, advisory)
	}

	resp.Message = strings.Join(parts, "\n\n")
	if resp.Message == "" {
		resp.Message = apologeticMessage
	}
	return resp
}

// window fetches one event range for prompt context. A storage error here
// costs context, not the conversation, so it degrades to an empty window.
func (s *Service) window(userID int64, from, to time.Time) []model.CalendarEvent {
	events, err := s.events.ListByUserDateRange(userID, from, to)
	if err != nil {
		s.logger.Error("list events for prompt", "error", err, "user_id", userID)
		return nil
	}
	return events
}

// predict consults the physical symptom classifier when the recent history
// mentions enough distinct symptoms to make its output meaningful.
func (s *Service) predict(ctx context.Context, recent []model.CalendarEvent) string {
	if s.predictor == nil {
		return ""
	}
	symptoms := ExtractSymptoms(recent)
	if len(symptoms) < MinSymptomsForPrediction {
		return ""
	}
	advisory, err := s.predictor.PredictPhysical(ctx, symptoms)
	if err != nil {
		s.logger.Error("physical prediction", "error", err, "symptoms", len(symptoms))
		return ""
	}
	return advisory
}
