package application

import "time"

// EventStatus tracks one participant's relationship to an event copy.
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusAccepted EventStatus = "accepted"
	EventStatusDeclined EventStatus = "declined"
	EventStatusDone     EventStatus = "done"
)

// committedStatuses are the statuses that occupy a participant's calendar
// for conflict purposes. Declined and done copies do not block new events.
var committedStatuses = []string{string(EventStatusPending), string(EventStatusAccepted)}

// Stage identifies where in the scheduling pipeline a request currently is,
// or where it failed.
type Stage string

const (
	StageParsing               Stage = "parsing"
	StageParticipantResolution Stage = "participant_resolution"
	StageDateTimeResolution    Stage = "datetime_resolution"
	StageAvailabilitySearch    Stage = "availability_search"
	StageConflictCheck         Stage = "conflict_check"
	StageEventCreation         Stage = "event_creation"
	StageDone                  Stage = "done"
)

// ScheduleEvent is one participant's copy of a scheduled event as exposed to
// callers. All copies share the ID.
type ScheduleEvent struct {
	ID             string
	OwnerID        string
	Title          string
	Start          time.Time
	End            time.Time
	CreatedBy      string
	ConversationID string
	Status         EventStatus
	CreatedAt      time.Time
}

// ScheduleCommandParams wraps the data needed to process a natural-language
// scheduling request.
type ScheduleCommandParams struct {
	ActingUserID   string
	ConversationID string
	Text           string
}

// ScheduleResult reports the outcome of a successfully processed command.
type ScheduleResult struct {
	Event        ScheduleEvent
	Participants []string
	Message      string
}

// UpdateEventParams moves an existing event to a new time window.
type UpdateEventParams struct {
	ActingUserID string
	EventID      string
	Start        time.Time
	End          time.Time
}

// RespondEventParams records a participant's accept or decline.
type RespondEventParams struct {
	ActingUserID string
	EventID      string
	Accept       bool
}

// RosterMember is a conversation member as seen by the services. Members
// from a degraded roster carry their ID as DisplayName and the default role.
type RosterMember struct {
	ID          string
	DisplayName string
	Role        string
}

// TaskView is one plan step as exposed to callers.
type TaskView struct {
	Type   string
	Input  map[string]string
	Output string
	Status string
	Error  string
}

// PlanView is a persisted plan as exposed to callers.
type PlanView struct {
	ID             string
	OwnerID        string
	ConversationID string
	Intent         string
	IntentSource   string
	Status         string
	Summary        string
	Error          string
	Tasks          []TaskView
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// RunPlanParams wraps the data needed to run a multi-step plan.
type RunPlanParams struct {
	ActingUserID   string
	ConversationID string
	Text           string
}
