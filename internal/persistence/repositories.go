package persistence

import (
	"context"
	"time"
)

// EventRepository stores per-participant event copies.
type EventRepository interface {
	// CreateEventCopies writes every copy in a single transaction. Either
	// all copies are committed or none; partial failure surfaces as
	// ErrAtomicWrite.
	CreateEventCopies(ctx context.Context, copies []Event) error
	GetEvent(ctx context.Context, id, ownerID string) (Event, error)
	// ListEventsForOwner returns the owner's copies, optionally narrowed to
	// the given statuses, ordered by start time.
	ListEventsForOwner(ctx context.Context, ownerID string, statuses []string) ([]Event, error)
	// ListEventCopies returns every participant's copy of one event.
	ListEventCopies(ctx context.Context, id string) ([]Event, error)
	// UpdateEventWindow moves all copies of an event to a new time window.
	UpdateEventWindow(ctx context.Context, id string, start, end time.Time) error
	// UpdateCopyStatus changes one participant's copy only.
	UpdateCopyStatus(ctx context.Context, id, ownerID, status string) error
	DeleteEventCopies(ctx context.Context, id string) error
	// MarkElapsedDone transitions copies whose end time has passed out of
	// their pending or accepted state. Returns the number of copies touched.
	MarkElapsedDone(ctx context.Context, reference time.Time) (int, error)
}

// MemberRepository stores conversation rosters.
type MemberRepository interface {
	UpsertMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, conversationID, memberID string) (Member, error)
	ListMembers(ctx context.Context, conversationID string) ([]Member, error)
	SetMemberRole(ctx context.Context, conversationID, memberID, role string) error
}

// PlanRepository stores plans together with their tasks.
type PlanRepository interface {
	// SavePlan upserts the plan row and replaces its task rows in a single
	// transaction.
	SavePlan(ctx context.Context, plan Plan) error
	GetPlan(ctx context.Context, id string) (Plan, error)
	ListPlansForOwner(ctx context.Context, ownerID string) ([]Plan, error)
}
