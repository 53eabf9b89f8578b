package sqlite

import (
	"context"
	"fmt"
)

// schema holds the table definitions applied on startup. Statements are
// idempotent so reopening an existing database is safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS schedule_events (
		id              TEXT NOT NULL,
		owner_id        TEXT NOT NULL,
		title           TEXT NOT NULL,
		start_time      TEXT NOT NULL,
		end_time        TEXT NOT NULL,
		created_by      TEXT NOT NULL,
		conversation_id TEXT NOT NULL,
		status          TEXT NOT NULL,
		created_at      TEXT NOT NULL,
		PRIMARY KEY (id, owner_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_events_owner
		ON schedule_events (owner_id, start_time)`,
	`CREATE TABLE IF NOT EXISTS conversation_members (
		conversation_id TEXT NOT NULL,
		member_id       TEXT NOT NULL,
		display_name    TEXT,
		role            TEXT,
		created_at      TEXT NOT NULL,
		PRIMARY KEY (conversation_id, member_id)
	)`,
	`CREATE TABLE IF NOT EXISTS plans (
		id              TEXT PRIMARY KEY,
		owner_id        TEXT NOT NULL,
		conversation_id TEXT NOT NULL,
		intent          TEXT NOT NULL,
		intent_source   TEXT NOT NULL,
		status          TEXT NOT NULL,
		summary         TEXT NOT NULL DEFAULT '',
		error           TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL,
		completed_at    TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS plan_tasks (
		plan_id TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		idx     INTEGER NOT NULL,
		type    TEXT NOT NULL,
		input   TEXT NOT NULL DEFAULT '{}',
		output  TEXT NOT NULL DEFAULT '',
		status  TEXT NOT NULL,
		error   TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (plan_id, idx)
	)`,
}

// Migrate creates the assistant's tables if they do not exist yet.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: apply schema: %w", err)
		}
	}
	return nil
}
