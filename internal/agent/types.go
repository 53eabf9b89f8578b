// Package agent implements the general request pipeline: intent
// classification, decomposition into typed tasks, sequential execution with
// forward context-passing, and plan summarization.
package agent

import (
	"context"
	"time"

	"github.com/example/chat-assistant/internal/retrieval"
)

// Intent is one of the closed set of task intents a request can classify to.
type Intent string

const (
	IntentMeetingScheduling Intent = "meeting-scheduling"
	IntentOffsitePlanning   Intent = "offsite-planning"
	IntentTaskBreakdown     Intent = "task-breakdown"
)

// KnownIntents enumerates the closed intent set in a stable order.
func KnownIntents() []Intent {
	return []Intent{IntentMeetingScheduling, IntentOffsitePlanning, IntentTaskBreakdown}
}

// IntentSource tags how an intent was decided.
type IntentSource string

const (
	IntentSourceRule  IntentSource = "rule"
	IntentSourceModel IntentSource = "model"
)

// TaskType names the capability a task invokes.
type TaskType string

const (
	TaskRetrieveContext  TaskType = "retrieve-context"
	TaskSummarizeContext TaskType = "summarize-context"
	TaskComputeTimeSlots TaskType = "compute-time-slots"
	TaskGenerateSummary  TaskType = "generate-summary"
	TaskScheduleMeeting  TaskType = "schedule-meeting"
)

// TaskStatus tracks one task through execution.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// PlanStatus tracks a whole plan.
type PlanStatus string

const (
	PlanStatusPending   PlanStatus = "pending"
	PlanStatusRunning   PlanStatus = "running"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusFailed    PlanStatus = "failed"
)

// Task is one step of a plan. Input keys are validated when the task is
// constructed; Output is set only when the task completes.
type Task struct {
	Type   TaskType
	Input  map[string]string
	Output string
	Status TaskStatus
	Error  string
}

// Plan is an ordered, typed sequence of tasks produced from a classified
// intent. Terminal state is immutable once reached.
type Plan struct {
	ID             string
	Intent         Intent
	IntentSource   IntentSource
	Tasks          []Task
	Summary        string
	Status         PlanStatus
	OwnerID        string
	ConversationID string
	CreatedAt      time.Time
	CompletedAt    *time.Time
	Error          string
}

// Terminal reports whether the plan has reached a final state.
func (p *Plan) Terminal() bool {
	return p != nil && (p.Status == PlanStatusCompleted || p.Status == PlanStatusFailed)
}

// TextCompleter is the narrow interface over the text-completion service.
type TextCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ContextRetriever is the narrow interface over the semantic-retrieval service.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query, scopeID string, limit int) ([]retrieval.Passage, error)
}

// MeetingScheduler exposes the scheduling orchestrator as a task capability.
// It follows the orchestrator's own success/failure contract.
type MeetingScheduler interface {
	ScheduleFromText(ctx context.Context, rawText, organizerID, conversationID string) (string, error)
}

// SlotFinder locates open calendar slots for the compute-time-slots capability.
type SlotFinder interface {
	FindOpenSlots(ctx context.Context, ownerID string, durationMinutes, limit int) ([]time.Time, error)
}
