package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/medmole/medmole/internal/auth"
	"github.com/medmole/medmole/internal/chat"
)

// ChatService is the slice of the chat pipeline the handler needs.
type ChatService interface {
	Send(ctx context.Context, userID int64, message string) chat.Response
}

type ChatHandler struct {
	chat ChatService
}

func NewChatHandler(cs ChatService) *ChatHandler {
	return &ChatHandler{chat: cs}
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	resp := h.chat.Send(r.Context(), auth.UserID(r.Context()), req.Message)
	writeJSON(w, http.StatusOK, resp)
}
