package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/chat-assistant/internal/application"
)

type schedulingService interface {
	HandleScheduleCommand(ctx context.Context, params application.ScheduleCommandParams) (application.ScheduleResult, error)
}

type ScheduleHandler struct {
	service   schedulingService
	responder responder
}

func NewScheduleHandler(service schedulingService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{service: service, responder: newResponder(logger)}
}

type scheduleRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

type scheduleResponse struct {
	Event        eventDTO `json:"event"`
	Participants []string `json:"participants"`
	Message      string   `json:"message"`
}

// Create processes one natural-language scheduling request.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	userID, _ := UserIDFromContext(r.Context())

	result, err := h.service.HandleScheduleCommand(r.Context(), application.ScheduleCommandParams{
		ActingUserID:   userID,
		ConversationID: req.ConversationID,
		Text:           req.Text,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, scheduleResponse{
		Event:        toEventDTO(result.Event),
		Participants: result.Participants,
		Message:      result.Message,
	})
}
