// Package analysis maintains the per-user set of abnormal symptom ranges.
// Results are recomputed from the event log on demand and cached in memory;
// they are never persisted. Any event mutation invalidates the cache so the
// next read re-scans the updated set.
package analysis

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/medmole/medmole/internal/anomaly"
	"github.com/medmole/medmole/internal/model"
)

// EventLister is the slice of the event store the service reads from.
type EventLister interface {
	ListByUser(userID int64) ([]model.CalendarEvent, error)
}

// Broadcaster pushes a realtime message to all of one user's connections.
type Broadcaster interface {
	Broadcast(userID int64, message []byte)
}

// Report is one user's current analysis result.
type Report struct {
	Ranges         []anomaly.Range `json:"ranges"`
	Recommendation string          `json:"recommendation"`
	ComputedAt     time.Time       `json:"computed_at"`
}

type cacheEntry struct {
	report Report
	stale  bool
}

// Service computes and caches anomaly reports per user.
type Service struct {
	events EventLister
	hub    Broadcaster
	logger *slog.Logger

	mu    sync.Mutex
	cache map[int64]*cacheEntry
}

func NewService(events EventLister, hub Broadcaster, logger *slog.Logger) *Service {
	return &Service{
		events: events,
		hub:    hub,
		logger: logger.With("component", "analysis"),
		cache:  make(map[int64]*cacheEntry),
	}
}

// Report returns the user's current analysis, recomputing it when the
// cached copy is missing or stale.
func (s *Service) Report(userID int64) (Report, error) {
	s.mu.Lock()
	entry, ok := s.cache[userID]
	if ok && !entry.stale {
		report := entry.report
		s.mu.Unlock()
		return report, nil
	}
	s.mu.Unlock()

	return s.recompute(userID)
}

// Invalidate marks the user's cached report stale. Callers invoke this on
// every event mutation; the report itself is rebuilt lazily on the next
// read or scheduler pass.
func (s *Service) Invalidate(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.cache[userID]; ok {
		entry.stale = true
	}
}

// RefreshStale recomputes every stale cached report and notifies the
// owning user's connections. Fresh entries are left alone, so a pass over
// an unchanged cache does no work.
func (s *Service) RefreshStale() {
	s.mu.Lock()
	var staleUsers []int64
	for userID, entry := range s.cache {
		if entry.stale {
			staleUsers = append(staleUsers, userID)
		}
	}
	s.mu.Unlock()

	for _, userID := range staleUsers {
		report, err := s.recompute(userID)
		if err != nil {
			s.logger.Error("refresh analysis", "error", err, "user_id", userID)
			continue
		}
		s.notify(userID, report)
	}
}

func (s *Service) recompute(userID int64) (Report, error) {
	events, err := s.events.ListByUser(userID)
	if err != nil {
		return Report{}, fmt.Errorf("list events: %w", err)
	}

	ranges := anomaly.Detect(events)
	report := Report{
		Ranges:         ranges,
		Recommendation: anomaly.Recommendation(ranges),
		ComputedAt:     time.Now(),
	}

	s.mu.Lock()
	s.cache[userID] = &cacheEntry{report: report}
	s.mu.Unlock()

	s.logger.Debug("analysis recomputed", "user_id", userID, "ranges", len(ranges))
	return report, nil
}

func (s *Service) notify(userID int64, report Report) {
	if s.hub == nil {
		return
	}
	msg, err := json.Marshal(map[string]any{
		"type":    "analysis_updated",
		"payload": report,
	})
	if err != nil {
		s.logger.Error("marshal analysis update", "error", err)
		return
	}
	s.hub.Broadcast(userID, msg)
}
