package suggest

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/medmole/medmole/internal/model"
)

// EventStore is the slice of the persistence layer the orchestrator needs.
type EventStore interface {
	Create(userID int64, title string, eventType model.EventType, description string, start, end time.Time, allDay bool, data model.EventData) (*model.CalendarEvent, error)
	ListByUser(userID int64) ([]model.CalendarEvent, error)
}

// Invalidator resets cached analysis state after the event set changes.
type Invalidator interface {
	Invalidate(userID int64)
}

// Orchestrator promotes raw suggestions to persisted calendar events:
// validate, dedup-check, expand recurring series, persist, summarize.
type Orchestrator struct {
	events   EventStore
	analysis Invalidator
	logger   *slog.Logger
	now      func() time.Time
}

func NewOrchestrator(events EventStore, analysis Invalidator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		events:   events,
		analysis: analysis,
		logger:   logger,
		now:      time.Now,
	}
}

// AddedItem records one successfully persisted suggestion.
type AddedItem struct {
	Title       string
	Date        string
	Time        string
	Occurrences int // > 1 for expanded recurring series
}

// SkippedItem records a suggestion skipped as a duplicate of an existing event.
type SkippedItem struct {
	Title        string
	Type         model.EventType
	Date         string
	MatchedTitle string
}

// Result classifies the outcome of one suggestion batch.
type Result struct {
	Added   []AddedItem
	Skipped []SkippedItem
	Failed  []string
	Created []model.CalendarEvent
}

// Process runs one suggestion batch for the user. Items are handled in array
// order and in isolation: a validation error, duplicate, or persistence
// failure on one item never aborts the rest. On any successful add the
// cached analysis state is invalidated so the next pass re-scans the
// updated event set.
func (o *Orchestrator) Process(userID int64, suggestions []model.Suggestion) Result {
	var res Result

	existing, err := o.events.ListByUser(userID)
	if err != nil {
		// Without the existing set the dedup check cannot run; proceeding
		// would risk double-logging, so the whole batch fails.
		o.logger.Error("list events for dedup", "error", err, "user_id", userID)
		for _, s := range suggestions {
			res.Failed = append(res.Failed, displayTitle(s))
		}
		return res
	}

	for _, s := range suggestions {
		o.processOne(userID, s, &existing, &res)
	}

	if len(res.Added) > 0 && o.analysis != nil {
		o.analysis.Invalidate(userID)
	}
	return res
}

func (o *Orchestrator) processOne(userID int64, s model.Suggestion, existing *[]model.CalendarEvent, res *Result) {
	cand, err := Validate(s, o.now())
	if err != nil {
		o.logger.Warn("suggestion rejected", "error", err)
		res.Failed = append(res.Failed, displayTitle(s))
		return
	}

	if IsRecurringMedication(cand) {
		o.processSeries(userID, cand, existing, res)
		return
	}

	if matched := FindDuplicate(cand, *existing); matched != nil {
		res.Skipped = append(res.Skipped, SkippedItem{
			Title:        cand.Title,
			Type:         cand.Type,
			Date:         cand.Start.Format("2006-01-02"),
			MatchedTitle: matched.Title,
		})
		return
	}

	created, err := o.events.Create(userID, cand.Title, cand.Type, cand.Description, cand.Start, cand.End, false, cand.EventData)
	if err != nil {
		// Not retried: a silent retry could race a slow first attempt and
		// double-create. The user gets a manual-entry fallback instead.
		o.logger.Error("persist suggestion", "error", err, "title", cand.Title)
		res.Failed = append(res.Failed, cand.Title)
		return
	}

	*existing = append(*existing, *created)
	res.Created = append(res.Created, *created)
	res.Added = append(res.Added, AddedItem{
		Title:       cand.Title,
		Date:        cand.Start.Format("2006-01-02"),
		Time:        cand.Start.Format("15:04"),
		Occurrences: 1,
	})
}

// processSeries expands a recurring medication and persists each occurrence
// independently. Some occurrences failing or deduping away is expected and
// does not abort the series.
func (o *Orchestrator) processSeries(userID int64, cand *Candidate, existing *[]model.CalendarEvent, res *Result) {
	occurrences := ExpandRecurring(cand)
	if len(occurrences) == 0 {
		res.Failed = append(res.Failed, cand.Title)
		return
	}

	// Dedup against the set as it stood before this series. Checking
	// against freshly created siblings would make a second daily dose look
	// like a duplicate of the first.
	prior := *existing

	var createdCount, skippedCount int
	var matchedTitle string
	for i := range occurrences {
		occ := &occurrences[i]
		if matched := FindDuplicate(occ, prior); matched != nil {
			skippedCount++
			matchedTitle = matched.Title
			continue
		}
		created, err := o.events.Create(userID, occ.Title, occ.Type, occ.Description, occ.Start, occ.End, false, occ.EventData)
		if err != nil {
			o.logger.Error("persist occurrence", "error", err, "title", occ.Title, "start", occ.Start)
			continue
		}
		*existing = append(*existing, *created)
		res.Created = append(res.Created, *created)
		createdCount++
	}

	if createdCount > 0 {
		res.Added = append(res.Added, AddedItem{
			Title:       cand.Title,
			Date:        cand.Start.Format("2006-01-02"),
			Time:        cand.Start.Format("15:04"),
			Occurrences: createdCount,
		})
	}
	if skippedCount > 0 {
		res.Skipped = append(res.Skipped, SkippedItem{
			Title:        cand.Title,
			Type:         cand.Type,
			Date:         cand.Start.Format("2006-01-02"),
			MatchedTitle: matchedTitle,
		})
	}
	if createdCount == 0 && skippedCount == 0 {
		res.Failed = append(res.Failed, cand.Title)
	}
}

// Summary renders the batch outcome as a single user-facing message with
// three buckets: added, skipped as duplicate, and failed. Empty buckets are
// omitted; an entirely empty result produces the fallback message.
func (r Result) Summary() string {
	var parts []string

	if n := len(r.Added); n > 0 {
		var lines []string
		for _, a := range r.Added {
			if a.Occurrences > 1 {
				lines = append(lines, fmt.Sprintf("• %q (%d reminders starting %s at %s)", a.Title, a.Occurrences, a.Date, a.Time))
			} else {
				lines = append(lines, fmt.Sprintf("• %q for %s at %s", a.Title, a.Date, a.Time))
			}
		}
		if n == 1 && r.Added[0].Occurrences == 1 {
			parts = append(parts, fmt.Sprintf("✅ I've added %q for %s at %s to your calendar.",
				r.Added[0].Title, r.Added[0].Date, r.Added[0].Time))
		} else {
			parts = append(parts, fmt.Sprintf("✅ I've added %d events to your calendar:\n%s", n, strings.Join(lines, "\n")))
		}
	}

	if len(r.Skipped) > 0 {
		var lines []string
		for _, s := range r.Skipped {
			lines = append(lines, fmt.Sprintf("⚠️ A similar %s event (%q) already exists for %s.", s.Type, s.MatchedTitle, s.Date))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	if len(r.Failed) > 0 {
		quoted := make([]string, len(r.Failed))
		for i, f := range r.Failed {
			quoted[i] = fmt.Sprintf("%q", f)
		}
		parts = append(parts, fmt.Sprintf("❌ Failed to add %s. You can add these manually using the + button.",
			strings.Join(quoted, ", ")))
	}

	if len(parts) == 0 {
		return "❌ No events could be added. You can add them manually using the + button."
	}
	return strings.Join(parts, "\n\n")
}

func displayTitle(s model.Suggestion) string {
	t := strings.TrimSpace(s.Title)
	if t == "" {
		return "(untitled)"
	}
	return t
}
