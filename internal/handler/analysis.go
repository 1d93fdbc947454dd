package handler

import (
	"log/slog"
	"net/http"

	"github.com/medmole/medmole/internal/analysis"
	"github.com/medmole/medmole/internal/auth"
)

type AnalysisHandler struct {
	analysis *analysis.Service
	logger   *slog.Logger
}

func NewAnalysisHandler(svc *analysis.Service, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{analysis: svc, logger: logger}
}

// Get returns the user's current abnormal-range report. The report is
// derived state: computing it on demand is cheap and it is never persisted.
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.analysis.Report(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("analysis report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to analyze events"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Refresh discards the cached report and recomputes it immediately instead
// of waiting for the next background pass.
func (h *AnalysisHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	h.analysis.Invalidate(userID)
	report, err := h.analysis.Report(userID)
	if err != nil {
		h.logger.Error("analysis refresh", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to analyze events"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}
