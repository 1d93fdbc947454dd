package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/medmole/medmole/internal/auth"
	"github.com/medmole/medmole/internal/store"
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	logger        *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, logger: logger}
}

func (h *SettingsHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.All(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type settingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Key = strings.TrimSpace(req.Key)
	if !slices.Contains(store.KnownSettingKeys, req.Key) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown setting key"})
		return
	}

	if err := h.settingsStore.Set(auth.UserID(r.Context()), req.Key, req.Value); err != nil {
		h.logger.Error("set setting", "error", err, "key", req.Key)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save setting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{req.Key: req.Value})
}
