package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/chat-assistant/internal/application"
)

type memberService interface {
	SetRole(ctx context.Context, actingUserID, conversationID, memberID, role string) (application.RosterMember, error)
}

type MemberHandler struct {
	service   memberService
	responder responder
}

func NewMemberHandler(service memberService, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{service: service, responder: newResponder(logger)}
}

type setRoleRequest struct {
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
}

type memberDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// SetRole self-assigns the caller's role in a conversation.
func (h *MemberHandler) SetRole(w http.ResponseWriter, r *http.Request, memberID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if strings.TrimSpace(memberID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMemberID)
		return
	}

	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	member, err := h.service.SetRole(r.Context(), userID, req.ConversationID, memberID, req.Role)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, memberDTO{
		ID:          member.ID,
		DisplayName: member.DisplayName,
		Role:        member.Role,
	})
}
