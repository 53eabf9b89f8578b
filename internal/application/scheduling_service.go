package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/chat-assistant/internal/command"
	"github.com/example/chat-assistant/internal/persistence"
	"github.com/example/chat-assistant/internal/roster"
	"github.com/example/chat-assistant/internal/scheduler"
	"github.com/example/chat-assistant/internal/timeparse"
)

// EventStore captures the persistence interactions needed by the service.
type EventStore interface {
	CreateEventCopies(ctx context.Context, copies []persistence.Event) error
	GetEvent(ctx context.Context, id, ownerID string) (persistence.Event, error)
	ListEventsForOwner(ctx context.Context, ownerID string, statuses []string) ([]persistence.Event, error)
	ListEventCopies(ctx context.Context, id string) ([]persistence.Event, error)
	UpdateEventWindow(ctx context.Context, id string, start, end time.Time) error
	UpdateCopyStatus(ctx context.Context, id, ownerID, status string) error
	DeleteEventCopies(ctx context.Context, id string) error
	MarkElapsedDone(ctx context.Context, reference time.Time) (int, error)
}

// MembershipProvider returns the roster of a conversation.
type MembershipProvider interface {
	ListMembers(ctx context.Context, conversationID string) ([]persistence.Member, error)
}

// availabilityStep is the granularity of the earliest-available scan.
const availabilityStep = 30 * time.Minute

// SchedulingService turns free-text scheduling requests into persisted
// events. Processing walks a fixed pipeline; a failure at any stage aborts
// the request with an error carrying the stage name.
type SchedulingService struct {
	events      EventStore
	members     MembershipProvider
	resolver    *timeparse.Resolver
	rosters     *rosterCache
	idGenerator func() string
	now         func() time.Time
	horizon     time.Duration
	logger      *slog.Logger
}

// SchedulingOptions tunes resolution bounds. Zero values fall back to the
// package defaults in timeparse.
type SchedulingOptions struct {
	Horizon                time.Duration
	DefaultDurationMinutes int
}

// NewSchedulingService wires dependencies for scheduling operations.
func NewSchedulingService(events EventStore, members MembershipProvider, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SchedulingService {
	return NewSchedulingServiceWithOptions(events, members, idGenerator, now, logger, SchedulingOptions{})
}

// NewSchedulingServiceWithOptions additionally applies configured resolution
// bounds.
func NewSchedulingServiceWithOptions(events EventStore, members MembershipProvider, idGenerator func() string, now func() time.Time, logger *slog.Logger, opts SchedulingOptions) *SchedulingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	horizon := opts.Horizon
	if horizon <= 0 {
		horizon = timeparse.DefaultHorizon
	}
	return &SchedulingService{
		events:      events,
		members:     members,
		resolver:    timeparse.NewResolverWithDefault(now, horizon, opts.DefaultDurationMinutes),
		rosters:     newRosterCache(0, 0, now),
		idGenerator: idGenerator,
		now:         now,
		horizon:     horizon,
		logger:      defaultLogger(logger),
	}
}

// HandleScheduleCommand processes one natural-language scheduling request
// end to end and persists every participant's copy of the resulting event.
func (s *SchedulingService) HandleScheduleCommand(ctx context.Context, params ScheduleCommandParams) (ScheduleResult, error) {
	if s == nil {
		return ScheduleResult{}, fmt.Errorf("SchedulingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "scheduling", "handle_schedule_command",
		"user_id", params.ActingUserID, "conversation_id", params.ConversationID)

	if params.ActingUserID == "" {
		return ScheduleResult{}, ErrUnauthorized
	}

	cmd, err := command.Parse(params.Text)
	if err != nil {
		return ScheduleResult{}, s.fail(ctx, logger, StageParsing, validationFor("text", err))
	}

	participants, members, err := s.resolveParticipants(ctx, cmd, params.ConversationID, params.ActingUserID)
	if err != nil {
		return ScheduleResult{}, s.fail(ctx, logger, StageParticipantResolution, err)
	}

	resolved, durationMinutes, err := s.resolveDateTime(cmd)
	if err != nil {
		return ScheduleResult{}, s.fail(ctx, logger, StageDateTimeResolution, err)
	}
	duration := time.Duration(durationMinutes) * time.Minute

	start := resolved.Instant
	if resolved.EarliestAvailable {
		start, err = s.findEarliestSlot(ctx, params.ActingUserID, resolved.EarliestFrom, duration)
		if err != nil {
			return ScheduleResult{}, s.fail(ctx, logger, StageAvailabilitySearch, err)
		}
	}
	end := start.Add(duration)

	if err := s.checkConflicts(ctx, params.ActingUserID, start, end, ""); err != nil {
		return ScheduleResult{}, s.fail(ctx, logger, StageConflictCheck, err)
	}

	event := ScheduleEvent{
		ID:             s.idGenerator(),
		OwnerID:        params.ActingUserID,
		Title:          deriveTitle(cmd, members, participants, params.ActingUserID),
		Start:          start,
		End:            end,
		CreatedBy:      params.ActingUserID,
		ConversationID: params.ConversationID,
		Status:         EventStatusPending,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.writeCopies(ctx, event, participants); err != nil {
		return ScheduleResult{}, s.fail(ctx, logger, StageEventCreation, err)
	}

	logger.InfoContext(ctx, "event scheduled",
		"event_id", event.ID, "participants", len(participants), "start", start)
	return ScheduleResult{
		Event:        event,
		Participants: participants,
		Message: fmt.Sprintf("Scheduled %q on %s for %d participant(s).",
			event.Title, start.Format("Mon Jan 2 15:04"), len(participants)),
	}, nil
}

// ScheduleFromText runs the schedule pipeline for a raw request and returns a
// one-line description of the outcome. It adapts HandleScheduleCommand to the
// string-in, string-out shape task execution works with.
func (s *SchedulingService) ScheduleFromText(ctx context.Context, rawText, organizerID, conversationID string) (string, error) {
	result, err := s.HandleScheduleCommand(ctx, ScheduleCommandParams{
		ActingUserID:   organizerID,
		ConversationID: conversationID,
		Text:           rawText,
	})
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

// FindOpenSlots returns up to limit conflict-free start times on the owner's
// calendar, scanned forward from now.
func (s *SchedulingService) FindOpenSlots(ctx context.Context, ownerID string, durationMinutes, limit int) ([]time.Time, error) {
	if durationMinutes <= 0 {
		return nil, validationFor("duration", fmt.Errorf("duration must be positive"))
	}
	if limit <= 0 {
		limit = 1
	}
	busy, err := s.committedWindows(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(durationMinutes) * time.Minute
	cursor := s.now().UTC().Truncate(availabilityStep).Add(availabilityStep)
	horizon := s.now().UTC().Add(s.horizon)

	var slots []time.Time
	for cursor.Before(horizon) && len(slots) < limit {
		if len(scheduler.DetectConflicts(busy, scheduler.Window{Start: cursor, End: cursor.Add(duration)})) == 0 {
			slots = append(slots, cursor)
		}
		cursor = cursor.Add(availabilityStep)
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("no open slots within the scheduling horizon")
	}
	return slots, nil
}

// ListEvents returns the acting user's own event copies ordered by start.
func (s *SchedulingService) ListEvents(ctx context.Context, actingUserID string) ([]ScheduleEvent, error) {
	if actingUserID == "" {
		return nil, ErrUnauthorized
	}
	records, err := s.events.ListEventsForOwner(ctx, actingUserID, nil)
	if err != nil {
		return nil, mapStoreError(err)
	}
	events := make([]ScheduleEvent, 0, len(records))
	for _, record := range records {
		events = append(events, fromRecord(record))
	}
	return events, nil
}

// RespondToEvent records an accept or decline on the acting user's own copy.
func (s *SchedulingService) RespondToEvent(ctx context.Context, params RespondEventParams) (ScheduleEvent, error) {
	logger := serviceLogger(ctx, s.logger, "scheduling", "respond_to_event",
		"user_id", params.ActingUserID, "event_id", params.EventID)
	if params.ActingUserID == "" {
		return ScheduleEvent{}, ErrUnauthorized
	}

	status := EventStatusAccepted
	if !params.Accept {
		status = EventStatusDeclined
	}
	if err := s.events.UpdateCopyStatus(ctx, params.EventID, params.ActingUserID, string(status)); err != nil {
		return ScheduleEvent{}, mapStoreError(err)
	}

	record, err := s.events.GetEvent(ctx, params.EventID, params.ActingUserID)
	if err != nil {
		return ScheduleEvent{}, mapStoreError(err)
	}
	logger.InfoContext(ctx, "event response recorded", "status", status)
	return fromRecord(record), nil
}

// UpdateEvent moves an event to a new window. Only the creator may move it;
// the conflict check runs again and every copy moves, or none do.
func (s *SchedulingService) UpdateEvent(ctx context.Context, params UpdateEventParams) (ScheduleEvent, error) {
	logger := serviceLogger(ctx, s.logger, "scheduling", "update_event",
		"user_id", params.ActingUserID, "event_id", params.EventID)

	record, err := s.requireCreator(ctx, params.EventID, params.ActingUserID)
	if err != nil {
		return ScheduleEvent{}, err
	}
	if !params.Start.Before(params.End) {
		return ScheduleEvent{}, validationFor("window", fmt.Errorf("start must precede end"))
	}

	if err := s.checkConflicts(ctx, params.ActingUserID, params.Start, params.End, params.EventID); err != nil {
		return ScheduleEvent{}, s.fail(ctx, logger, StageConflictCheck, err)
	}

	if err := s.events.UpdateEventWindow(ctx, params.EventID, params.Start, params.End); err != nil {
		return ScheduleEvent{}, &AtomicWriteError{Err: err}
	}

	record.Start = params.Start.UTC()
	record.End = params.End.UTC()
	logger.InfoContext(ctx, "event window moved", "start", params.Start)
	return fromRecord(record), nil
}

// DeleteEvent removes every participant's copy. Creator only.
func (s *SchedulingService) DeleteEvent(ctx context.Context, actingUserID, eventID string) error {
	logger := serviceLogger(ctx, s.logger, "scheduling", "delete_event",
		"user_id", actingUserID, "event_id", eventID)

	if _, err := s.requireCreator(ctx, eventID, actingUserID); err != nil {
		return err
	}
	if err := s.events.DeleteEventCopies(ctx, eventID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return &AtomicWriteError{Err: err}
	}
	logger.InfoContext(ctx, "event deleted")
	return nil
}

// CompleteElapsedEvents marks pending and accepted copies whose window has
// fully elapsed as done. Invoked periodically by the sweeper.
func (s *SchedulingService) CompleteElapsedEvents(ctx context.Context) (int, error) {
	touched, err := s.events.MarkElapsedDone(ctx, s.now().UTC())
	if err != nil {
		return 0, mapStoreError(err)
	}
	if touched > 0 {
		serviceLogger(ctx, s.logger, "scheduling", "complete_elapsed_events").
			InfoContext(ctx, "elapsed events closed", "count", touched)
	}
	return touched, nil
}

// InvalidateRoster drops the cached roster of a conversation. Called after
// roster mutations so role changes apply to the next request.
func (s *SchedulingService) InvalidateRoster(conversationID string) {
	s.rosters.Invalidate(conversationID)
}

func (s *SchedulingService) resolveParticipants(ctx context.Context, cmd command.Command, conversationID, organizerID string) ([]string, []roster.Member, error) {
	members, err := s.conversationRoster(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	participants, err := roster.ResolveParticipants(cmd.ParticipantPhrases, cmd.Everyone, members, organizerID)
	if err != nil {
		return nil, nil, err
	}
	return participants, members, nil
}

// conversationRoster loads the roster, synthesizing display names and the
// default role for members the provider could not enrich.
func (s *SchedulingService) conversationRoster(ctx context.Context, conversationID string) ([]roster.Member, error) {
	if cached, ok := s.rosters.Get(conversationID); ok {
		return cached, nil
	}

	records, err := s.members.ListMembers(ctx, conversationID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	members := make([]roster.Member, 0, len(records))
	for _, record := range records {
		member := roster.Member{ID: record.MemberID, DisplayName: record.MemberID, Role: roster.DefaultRole}
		if record.DisplayName != nil && *record.DisplayName != "" {
			member.DisplayName = *record.DisplayName
		}
		if record.Role != nil {
			if role, ok := roster.ParseRole(*record.Role); ok {
				member.Role = role
			}
		}
		members = append(members, member)
	}
	s.rosters.Put(conversationID, members)
	return members, nil
}

func (s *SchedulingService) resolveDateTime(cmd command.Command) (timeparse.Resolved, int, error) {
	resolved, err := s.resolver.Resolve(cmd.DateTimePhrase)
	if err != nil {
		return timeparse.Resolved{}, 0, err
	}
	durationMinutes := resolved.DurationMinutes
	if cmd.DurationPhrase != "" {
		if minutes, ok := timeparse.ParseDuration(cmd.DurationPhrase); ok {
			durationMinutes = minutes
		}
	}
	return resolved, durationMinutes, nil
}

// findEarliestSlot scans the organizer's committed events forward from the
// lower bound in fixed steps and returns the first conflict-free start.
func (s *SchedulingService) findEarliestSlot(ctx context.Context, ownerID string, from time.Time, duration time.Duration) (time.Time, error) {
	busy, err := s.committedWindows(ctx, ownerID)
	if err != nil {
		return time.Time{}, err
	}

	cursor := from.UTC()
	horizon := s.now().UTC().Add(s.horizon)
	for cursor.Before(horizon) {
		if len(scheduler.DetectConflicts(busy, scheduler.Window{Start: cursor, End: cursor.Add(duration)})) == 0 {
			return cursor, nil
		}
		cursor = cursor.Add(availabilityStep)
	}
	return time.Time{}, fmt.Errorf("no open slot within the scheduling horizon")
}

// checkConflicts inspects the acting user's own committed copies. excludeID
// skips the event being moved so it does not conflict with itself.
func (s *SchedulingService) checkConflicts(ctx context.Context, ownerID string, start, end time.Time, excludeID string) error {
	busy, err := s.committedWindows(ctx, ownerID)
	if err != nil {
		return err
	}
	if excludeID != "" {
		filtered := busy[:0]
		for _, event := range busy {
			if event.ID != excludeID {
				filtered = append(filtered, event)
			}
		}
		busy = filtered
	}

	conflicts := scheduler.DetectConflicts(busy, scheduler.Window{Start: start, End: end})
	if len(conflicts) == 0 {
		return nil
	}

	conflictErr := &ConflictError{}
	for _, conflict := range conflicts {
		record, err := s.events.GetEvent(ctx, conflict.ID, conflict.OwnerID)
		if err != nil {
			// The overlap is already established; fall back to the window
			// data in hand rather than dropping the conflict.
			conflictErr.Events = append(conflictErr.Events, ScheduleEvent{
				ID:      conflict.ID,
				OwnerID: conflict.OwnerID,
				Title:   conflict.Title,
				Start:   conflict.Start,
				End:     conflict.End,
			})
			continue
		}
		conflictErr.Events = append(conflictErr.Events, fromRecord(record))
	}
	return conflictErr
}

func (s *SchedulingService) committedWindows(ctx context.Context, ownerID string) ([]scheduler.Event, error) {
	records, err := s.events.ListEventsForOwner(ctx, ownerID, committedStatuses)
	if err != nil {
		return nil, mapStoreError(err)
	}
	busy := make([]scheduler.Event, 0, len(records))
	for _, record := range records {
		busy = append(busy, scheduler.Event{
			ID:      record.ID,
			OwnerID: record.OwnerID,
			Title:   record.Title,
			Start:   record.Start,
			End:     record.End,
		})
	}
	return busy, nil
}

// writeCopies materializes one copy per participant in a single batch.
func (s *SchedulingService) writeCopies(ctx context.Context, event ScheduleEvent, participants []string) error {
	copies := make([]persistence.Event, 0, len(participants))
	for _, participant := range participants {
		record := toRecord(event)
		record.OwnerID = participant
		copies = append(copies, record)
	}
	if err := s.events.CreateEventCopies(ctx, copies); err != nil {
		return &AtomicWriteError{Err: err}
	}
	return nil
}

func (s *SchedulingService) requireCreator(ctx context.Context, eventID, actingUserID string) (persistence.Event, error) {
	if actingUserID == "" {
		return persistence.Event{}, ErrUnauthorized
	}
	record, err := s.events.GetEvent(ctx, eventID, actingUserID)
	if err != nil {
		return persistence.Event{}, mapStoreError(err)
	}
	if record.CreatedBy != actingUserID {
		return persistence.Event{}, ErrUnauthorized
	}
	return record, nil
}

func (s *SchedulingService) fail(ctx context.Context, logger *slog.Logger, stage Stage, err error) error {
	wrapped := &StageError{Stage: stage, Err: err}
	level := slog.LevelWarn
	var aErr *AtomicWriteError
	if errors.As(err, &aErr) {
		level = slog.LevelError
	}
	logger.Log(ctx, level, "scheduling request failed",
		"stage", string(stage), "error_kind", ErrorKind(err), "error", err)
	return wrapped
}

// deriveTitle picks an event title from the command or the participant set.
func deriveTitle(cmd command.Command, members []roster.Member, participants []string, organizerID string) string {
	if cmd.Title != "" {
		return cmd.Title
	}
	if cmd.Everyone {
		return "Team Meeting"
	}

	// A single matched role names the meeting after it.
	byID := make(map[string]roster.Member, len(members))
	for _, member := range members {
		byID[member.ID] = member
	}
	roles := make(map[roster.Role]bool)
	var names []string
	for _, id := range participants {
		if id == organizerID {
			continue
		}
		member, ok := byID[id]
		if !ok {
			continue
		}
		roles[member.Role] = true
		names = append(names, member.DisplayName)
	}
	if len(roles) == 1 && len(names) > 1 {
		for role := range roles {
			return fmt.Sprintf("%s Meeting", role)
		}
	}
	if len(names) > 0 {
		sort.Strings(names)
		return fmt.Sprintf("Meeting with %s", strings.Join(names, ", "))
	}
	return "Meeting"
}

func validationFor(field string, err error) error {
	vErr := &ValidationError{}
	vErr.add(field, err.Error())
	return vErr
}

func mapStoreError(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func fromRecord(record persistence.Event) ScheduleEvent {
	return ScheduleEvent{
		ID:             record.ID,
		OwnerID:        record.OwnerID,
		Title:          record.Title,
		Start:          record.Start,
		End:            record.End,
		CreatedBy:      record.CreatedBy,
		ConversationID: record.ConversationID,
		Status:         EventStatus(record.Status),
		CreatedAt:      record.CreatedAt,
	}
}

func toRecord(event ScheduleEvent) persistence.Event {
	return persistence.Event{
		ID:             event.ID,
		OwnerID:        event.OwnerID,
		Title:          event.Title,
		Start:          event.Start,
		End:            event.End,
		CreatedBy:      event.CreatedBy,
		ConversationID: event.ConversationID,
		Status:         string(event.Status),
		CreatedAt:      event.CreatedAt,
	}
}
