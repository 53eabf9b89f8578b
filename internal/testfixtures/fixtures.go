package testfixtures

import (
	"time"

	"github.com/example/chat-assistant/internal/persistence"
)

// ReferenceTime returns the shared anchor instant used by fixtures: a Thursday
// morning, so relative phrases such as "tomorrow" and weekday names resolve to
// predictable dates.
func ReferenceTime() time.Time {
	return time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC)
}

// EventOption customises an event copy produced by NewEvent.
type EventOption func(*persistence.Event)

// WithEventWindow sets the start time and duration of the event.
func WithEventWindow(start time.Time, duration time.Duration) EventOption {
	return func(e *persistence.Event) {
		e.Start = start
		e.End = start.Add(duration)
	}
}

// WithEventTitle overrides the default title.
func WithEventTitle(title string) EventOption {
	return func(e *persistence.Event) {
		e.Title = title
	}
}

// WithEventStatus overrides the participant copy status.
func WithEventStatus(status string) EventOption {
	return func(e *persistence.Event) {
		e.Status = status
	}
}

// WithEventCreator overrides the organiser recorded on the copy.
func WithEventCreator(creator string) EventOption {
	return func(e *persistence.Event) {
		e.CreatedBy = creator
	}
}

// WithEventConversation sets the conversation the event belongs to.
func WithEventConversation(conversationID string) EventOption {
	return func(e *persistence.Event) {
		e.ConversationID = conversationID
	}
}

// NewEvent builds a pending event copy owned by ownerID, starting one hour
// after ReferenceTime and lasting one hour. The owner doubles as the creator
// unless an option says otherwise.
func NewEvent(id, ownerID string, opts ...EventOption) persistence.Event {
	start := ReferenceTime().Add(time.Hour)
	event := persistence.Event{
		ID:             id,
		OwnerID:        ownerID,
		Title:          "Meeting",
		Start:          start,
		End:            start.Add(time.Hour),
		CreatedBy:      ownerID,
		ConversationID: "conv-1",
		Status:         "pending",
		CreatedAt:      ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// NewEventCopies builds one copy of the same event for each owner. The first
// owner is recorded as the creator on every copy unless WithEventCreator says
// otherwise.
func NewEventCopies(id string, ownerIDs []string, opts ...EventOption) []persistence.Event {
	copies := make([]persistence.Event, 0, len(ownerIDs))
	for _, ownerID := range ownerIDs {
		all := append([]EventOption{WithEventCreator(ownerIDs[0])}, opts...)
		copies = append(copies, NewEvent(id, ownerID, all...))
	}
	return copies
}

// MemberOption customises a conversation member produced by NewMember.
type MemberOption func(*persistence.Member)

// WithDisplayName sets the enriched display name.
func WithDisplayName(name string) MemberOption {
	return func(m *persistence.Member) {
		m.DisplayName = &name
	}
}

// WithRole sets the enriched role label.
func WithRole(role string) MemberOption {
	return func(m *persistence.Member) {
		m.Role = &role
	}
}

// NewMember builds a conversation member. Without options the member carries
// no enrichment, matching a roster in degraded mode.
func NewMember(conversationID, memberID string, opts ...MemberOption) persistence.Member {
	member := persistence.Member{
		ConversationID: conversationID,
		MemberID:       memberID,
		CreatedAt:      ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&member)
	}
	return member
}

// NewRoster builds the three-person conversation used across service tests:
// an organiser with the PM role and two designers.
func NewRoster(conversationID string) []persistence.Member {
	return []persistence.Member{
		NewMember(conversationID, "user-a", WithDisplayName("User A"), WithRole("PM")),
		NewMember(conversationID, "user-b", WithDisplayName("User B"), WithRole("Design")),
		NewMember(conversationID, "user-c", WithDisplayName("User C"), WithRole("Design")),
	}
}

// PlanOption customises a plan produced by NewPlan.
type PlanOption func(*persistence.Plan)

// WithPlanStatus overrides the plan status.
func WithPlanStatus(status string) PlanOption {
	return func(p *persistence.Plan) {
		p.Status = status
	}
}

// WithPlanTasks replaces the plan's task list, renumbering indices.
func WithPlanTasks(tasks ...persistence.PlanTask) PlanOption {
	return func(p *persistence.Plan) {
		for i := range tasks {
			tasks[i].PlanID = p.ID
			tasks[i].Idx = i
		}
		p.Tasks = tasks
	}
}

// NewPlan builds a pending plan with a single pending task.
func NewPlan(id, ownerID string, opts ...PlanOption) persistence.Plan {
	plan := persistence.Plan{
		ID:             id,
		OwnerID:        ownerID,
		ConversationID: "conv-1",
		Intent:         "summarize",
		IntentSource:   "rule",
		Status:         "pending",
		CreatedAt:      ReferenceTime(),
		Tasks: []persistence.PlanTask{
			{
				PlanID: id,
				Idx:    0,
				Type:   "retrieve_context",
				Input:  map[string]string{"query": "notes", "scope": "conv-1"},
				Status: "pending",
			},
		},
	}
	for _, opt := range opts {
		opt(&plan)
	}
	return plan
}

// NewTask builds a plan task for use with WithPlanTasks.
func NewTask(taskType string, input map[string]string) persistence.PlanTask {
	return persistence.PlanTask{
		Type:   taskType,
		Input:  input,
		Status: "pending",
	}
}
