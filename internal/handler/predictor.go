package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/medmole/medmole/internal/auth"
	"github.com/medmole/medmole/internal/predictor"
	"github.com/medmole/medmole/internal/store"
)

// PredictorRunner is the model-invocation surface the handlers need.
type PredictorRunner interface {
	Physical(ctx context.Context, symptoms []string) (string, error)
	Mental(ctx context.Context, symptoms []string, age int, gender string) (string, error)
}

type PredictorHandler struct {
	runner    PredictorRunner
	userStore *store.UserStore
	logger    *slog.Logger
}

func NewPredictorHandler(runner PredictorRunner, us *store.UserStore, logger *slog.Logger) *PredictorHandler {
	return &PredictorHandler{runner: runner, userStore: us, logger: logger}
}

// predictorResponse is the historical wire shape: result carries the
// model's advisory text base64-encoded.
type predictorResponse struct {
	Message string `json:"message"`
	Result  string `json:"result"`
}

type physicalRequest struct {
	Symptoms []string `json:"symptoms"`
}

func (h *PredictorHandler) Physical(w http.ResponseWriter, r *http.Request) {
	var req physicalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.Symptoms) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "symptoms are required"})
		return
	}

	result, err := h.runner.Physical(r.Context(), req.Symptoms)
	if err != nil {
		h.predictorError(w, "physical", err)
		return
	}

	writeJSON(w, http.StatusOK, predictorResponse{
		Message: "success",
		Result:  base64.StdEncoding.EncodeToString([]byte(result)),
	})
}

type mentalRequest struct {
	Symptoms []string `json:"symptoms"`
	Age      int      `json:"age"`
	Gender   string   `json:"gender"`
}

func (h *PredictorHandler) Mental(w http.ResponseWriter, r *http.Request) {
	var req mentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.Symptoms) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "symptoms are required"})
		return
	}

	// Fall back to the profile when the client omits demographics.
	if req.Age == 0 || req.Gender == "" {
		user, err := h.userStore.GetByID(auth.UserID(r.Context()))
		if err != nil {
			h.logger.Error("load user for prediction", "error", err)
		} else if user != nil {
			if req.Age == 0 && user.Age != nil {
				req.Age = *user.Age
			}
			if req.Gender == "" {
				req.Gender = user.Gender
			}
		}
	}

	result, err := h.runner.Mental(r.Context(), req.Symptoms, req.Age, req.Gender)
	if err != nil {
		h.predictorError(w, "mental", err)
		return
	}

	writeJSON(w, http.StatusOK, predictorResponse{
		Message: "success",
		Result:  base64.StdEncoding.EncodeToString([]byte(result)),
	})
}

func (h *PredictorHandler) predictorError(w http.ResponseWriter, which string, err error) {
	if errors.Is(err, predictor.ErrNotConfigured) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": which + " model is not available"})
		return
	}
	h.logger.Error("predictor failed", "model", which, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "prediction failed"})
}
