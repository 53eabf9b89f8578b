package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/chat-assistant/internal/agent"
	"github.com/example/chat-assistant/internal/application"
	"github.com/example/chat-assistant/internal/roster"
	"github.com/example/chat-assistant/internal/timeparse"
)

var (
	errBadRequestBody  = errors.New("the request body could not be parsed")
	errInvalidEventID  = errors.New("invalid event id")
	errInvalidPlanID   = errors.New("invalid plan id")
	errMissingUserID   = errors.New("the X-User-ID header is required")
	errInvalidMemberID = errors.New("invalid member id")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps application errors to HTTP responses. Atomic write
// failures get their own error code so operators can tell store inconsistency
// risk apart from ordinary validation noise.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "You are not allowed to perform this operation.",
		})
		return
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "The requested resource was not found."})
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "The request could not be understood.",
			Errors:  vErr.FieldErrors,
		})
		return
	}

	var resErr *roster.ResolutionError
	if errors.As(err, &resErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "UNRESOLVED_PARTICIPANT",
			Message:   "A participant could not be resolved against the conversation roster.",
			Errors:    map[string]string{"participants": resErr.Error()},
		})
		return
	}

	var parseErr *timeparse.ParseError
	if errors.As(err, &parseErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "INVALID_DATETIME",
			Message:   "The date or time could not be interpreted.",
			Errors:    map[string]string{"datetime": parseErr.Error()},
		})
		return
	}

	var dateErr *timeparse.UnreasonableDateError
	if errors.As(err, &dateErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "UNREASONABLE_DATETIME",
			Message:   "The requested time is outside the allowed scheduling window.",
			Errors:    map[string]string{"datetime": dateErr.Error()},
		})
		return
	}

	var cErr *application.ConflictError
	if errors.As(err, &cErr) {
		conflicts := make([]eventDTO, 0, len(cErr.Events))
		for _, event := range cErr.Events {
			conflicts = append(conflicts, toEventDTO(event))
		}
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "SCHEDULING_CONFLICT",
			Message:   "The requested time overlaps existing events.",
			Conflicts: conflicts,
		})
		return
	}

	var uErr *agent.UnknownIntentError
	if errors.As(err, &uErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "UNKNOWN_INTENT",
			Message:   "The request could not be classified into a supported task.",
		})
		return
	}

	var aErr *application.AtomicWriteError
	if errors.As(err, &aErr) {
		r.loggerFor(ctx).ErrorContext(ctx, "atomic write failure", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{
			ErrorCode: "ATOMIC_WRITE_FAILURE",
			Message:   "The event could not be written consistently. No changes were made.",
		})
		return
	}

	r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "An internal error occurred."})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request is malformed."
	case http.StatusUnauthorized:
		return "Authentication is required."
	case http.StatusForbidden:
		return "You are not allowed to perform this operation."
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusConflict:
		return "The request conflicts with the current state."
	case http.StatusUnprocessableEntity:
		return "The request could not be understood."
	default:
		return "An internal error occurred."
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Conflicts []eventDTO        `json:"conflicts,omitempty"`
}

// eventDTO is the wire shape shared by schedule and event endpoints.
type eventDTO struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Title          string    `json:"title"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	CreatedBy      string    `json:"created_by"`
	ConversationID string    `json:"conversation_id"`
	Status         string    `json:"status"`
}

func toEventDTO(event application.ScheduleEvent) eventDTO {
	return eventDTO{
		ID:             event.ID,
		OwnerID:        event.OwnerID,
		Title:          event.Title,
		Start:          event.Start,
		End:            event.End,
		CreatedBy:      event.CreatedBy,
		ConversationID: event.ConversationID,
		Status:         string(event.Status),
	}
}
