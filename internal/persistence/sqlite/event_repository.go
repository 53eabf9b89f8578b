package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/chat-assistant/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool *ConnectionPool
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{pool: pool}
}

// CreateEventCopies inserts every copy inside one transaction. Any failure
// rolls the whole batch back and surfaces as persistence.ErrAtomicWrite.
func (r *EventRepository) CreateEventCopies(ctx context.Context, copies []persistence.Event) error {
	if len(copies) == 0 {
		return persistence.ErrConstraintViolation
	}
	for _, copy := range copies {
		if copy.ID == "" || copy.OwnerID == "" {
			return persistence.ErrConstraintViolation
		}
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO schedule_events (id, owner_id, title, start_time, end_time, created_by, conversation_id, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		for _, copy := range copies {
			_, err := tx.ExecContext(ctx, query,
				copy.ID,
				copy.OwnerID,
				copy.Title,
				copy.Start.UTC().Format(time.RFC3339),
				copy.End.UTC().Format(time.RFC3339),
				copy.CreatedBy,
				copy.ConversationID,
				copy.Status,
				copy.CreatedAt.UTC().Format(time.RFC3339),
			)
			if err != nil {
				return mapError(err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return err
		}
		return fmt.Errorf("%w: %v", persistence.ErrAtomicWrite, err)
	}
	return nil
}

// GetEvent returns one participant's copy.
func (r *EventRepository) GetEvent(ctx context.Context, id, ownerID string) (persistence.Event, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, start_time, end_time, created_by, conversation_id, status, created_at
		FROM schedule_events WHERE id = ? AND owner_id = ?
	`, id, ownerID)
	return scanEvent(row)
}

// ListEventsForOwner returns the owner's copies ordered by start time,
// narrowed to the given statuses when any are supplied.
func (r *EventRepository) ListEventsForOwner(ctx context.Context, ownerID string, statuses []string) ([]persistence.Event, error) {
	query := `
		SELECT id, owner_id, title, start_time, end_time, created_by, conversation_id, status, created_at
		FROM schedule_events WHERE owner_id = ?
	`
	args := []any{ownerID}
	if len(statuses) > 0 {
		query += " AND status IN (?" + strings.Repeat(", ?", len(statuses)-1) + ")"
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += " ORDER BY start_time, id"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListEventCopies returns every participant's copy of one event.
func (r *EventRepository) ListEventCopies(ctx context.Context, id string) ([]persistence.Event, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, owner_id, title, start_time, end_time, created_by, conversation_id, status, created_at
		FROM schedule_events WHERE id = ? ORDER BY owner_id
	`, id)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	copies, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(copies) == 0 {
		return nil, persistence.ErrNotFound
	}
	return copies, nil
}

// UpdateEventWindow moves every copy of the event to the new window.
func (r *EventRepository) UpdateEventWindow(ctx context.Context, id string, start, end time.Time) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE schedule_events SET start_time = ?, end_time = ? WHERE id = ?
	`, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339), id)
	if err != nil {
		return mapError(err)
	}
	return requireRows(result)
}

// UpdateCopyStatus changes one participant's copy only.
func (r *EventRepository) UpdateCopyStatus(ctx context.Context, id, ownerID, status string) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE schedule_events SET status = ? WHERE id = ? AND owner_id = ?
	`, status, id, ownerID)
	if err != nil {
		return mapError(err)
	}
	return requireRows(result)
}

// DeleteEventCopies removes the event for every participant.
func (r *EventRepository) DeleteEventCopies(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM schedule_events WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRows(result)
}

// MarkElapsedDone closes out copies whose end time has passed.
func (r *EventRepository) MarkElapsedDone(ctx context.Context, reference time.Time) (int, error) {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE schedule_events SET status = 'done'
		WHERE end_time <= ? AND status IN ('pending', 'accepted')
	`, reference.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, mapError(err)
	}
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var event persistence.Event
	var start, end, createdAt string
	err := row.Scan(&event.ID, &event.OwnerID, &event.Title, &start, &end,
		&event.CreatedBy, &event.ConversationID, &event.Status, &createdAt)
	if err != nil {
		return persistence.Event{}, mapError(err)
	}
	if event.Start, err = time.Parse(time.RFC3339, start); err != nil {
		return persistence.Event{}, fmt.Errorf("sqlite: parse start_time: %w", err)
	}
	if event.End, err = time.Parse(time.RFC3339, end); err != nil {
		return persistence.Event{}, fmt.Errorf("sqlite: parse end_time: %w", err)
	}
	if event.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Event{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	return event, nil
}

func collectEvents(rows *sql.Rows) ([]persistence.Event, error) {
	var events []persistence.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return events, nil
}

func requireRows(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
