package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/chat-assistant/internal/application"
)

type planService interface {
	RunPlan(ctx context.Context, params application.RunPlanParams) (application.PlanView, error)
	GetPlan(ctx context.Context, actingUserID, planID string) (application.PlanView, error)
	ListPlans(ctx context.Context, actingUserID string) ([]application.PlanView, error)
}

type PlanHandler struct {
	service   planService
	responder responder
}

func NewPlanHandler(service planService, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{service: service, responder: newResponder(logger)}
}

type planRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

type taskDTO struct {
	Type   string            `json:"type"`
	Input  map[string]string `json:"input,omitempty"`
	Output string            `json:"output,omitempty"`
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
}

type planDTO struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	ConversationID string     `json:"conversation_id"`
	Intent         string     `json:"intent"`
	IntentSource   string     `json:"intent_source"`
	Status         string     `json:"status"`
	Summary        string     `json:"summary,omitempty"`
	Error          string     `json:"error,omitempty"`
	Tasks          []taskDTO  `json:"tasks,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Run executes a free-text request through the plan pipeline. Plans that
// fail mid-execution still return 201 with status "failed"; the request
// itself was served.
func (h *PlanHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	userID, _ := UserIDFromContext(r.Context())

	view, err := h.service.RunPlan(r.Context(), application.RunPlanParams{
		ActingUserID:   userID,
		ConversationID: req.ConversationID,
		Text:           req.Text,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toPlanDTO(view))
}

// Get fetches one plan with its tasks.
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	planID, ok := planIDFromPath(r.URL.Path)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPlanID)
		return
	}
	userID, _ := UserIDFromContext(r.Context())

	view, err := h.service.GetPlan(r.Context(), userID, planID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPlanDTO(view))
}

// List returns the caller's plans without task details.
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	views, err := h.service.ListPlans(r.Context(), userID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	plans := make([]planDTO, 0, len(views))
	for _, view := range views {
		plans = append(plans, toPlanDTO(view))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, plans)
}

func planIDFromPath(path string) (string, bool) {
	id := strings.TrimPrefix(path, "/plans/")
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func toPlanDTO(view application.PlanView) planDTO {
	dto := planDTO{
		ID:             view.ID,
		OwnerID:        view.OwnerID,
		ConversationID: view.ConversationID,
		Intent:         view.Intent,
		IntentSource:   view.IntentSource,
		Status:         view.Status,
		Summary:        view.Summary,
		Error:          view.Error,
		CreatedAt:      view.CreatedAt,
		CompletedAt:    view.CompletedAt,
	}
	for _, task := range view.Tasks {
		dto.Tasks = append(dto.Tasks, taskDTO{
			Type:   task.Type,
			Input:  task.Input,
			Output: task.Output,
			Status: task.Status,
			Error:  task.Error,
		})
	}
	return dto
}
