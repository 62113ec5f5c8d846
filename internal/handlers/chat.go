package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"propertybot/internal/models"
	"propertybot/internal/services"
)

type chatReplier interface {
	Reply(ctx context.Context, message string) (*models.ChatResponse, error)
}

type ChatHandler struct {
	chatService chatReplier
}

func NewChatHandler(chatService chatReplier) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat answers POST /api/chat with the best matching listings.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resp, err := h.chatService.Reply(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No message provided", r))
			return
		}
		log.Printf("Chat search failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("SEARCH_ERROR", "Failed to search properties", r))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
