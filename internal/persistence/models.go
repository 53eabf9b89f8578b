package persistence

import "time"

// Event is one participant's copy of a scheduled event. All copies of the
// same event share the ID; the participant set is recovered by listing the
// owner IDs that share it.
type Event struct {
	ID             string
	OwnerID        string
	Title          string
	Start          time.Time
	End            time.Time
	CreatedBy      string
	ConversationID string
	Status         string
	CreatedAt      time.Time
}

// Member is a conversation roster entry. DisplayName and Role are nil when
// the roster source could not enrich the member and only the ID is known.
type Member struct {
	ConversationID string
	MemberID       string
	DisplayName    *string
	Role           *string
	CreatedAt      time.Time
}

// Plan is a persisted multi-step task plan.
type Plan struct {
	ID             string
	OwnerID        string
	ConversationID string
	Intent         string
	IntentSource   string
	Status         string
	Summary        string
	Error          string
	CreatedAt      time.Time
	CompletedAt    *time.Time
	Tasks          []PlanTask
}

// PlanTask is one step of a plan, ordered by Idx.
type PlanTask struct {
	PlanID string
	Idx    int
	Type   string
	Input  map[string]string
	Output string
	Status string
	Error  string
}
