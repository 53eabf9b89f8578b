package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/chat-assistant/internal/persistence"
)

// PlanRepository implements persistence.PlanRepository using SQLite.
type PlanRepository struct {
	pool *ConnectionPool
}

// NewPlanRepository creates a new SQLite plan repository.
func NewPlanRepository(pool *ConnectionPool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

// SavePlan upserts the plan row and replaces its task rows in one
// transaction, so a plan is never visible with a stale task list.
func (r *PlanRepository) SavePlan(ctx context.Context, plan persistence.Plan) error {
	if plan.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var completedAt sql.NullString
		if plan.CompletedAt != nil {
			completedAt = sql.NullString{String: plan.CompletedAt.UTC().Format(time.RFC3339), Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO plans (id, owner_id, conversation_id, intent, intent_source, status, summary, error, created_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				status = excluded.status,
				summary = excluded.summary,
				error = excluded.error,
				completed_at = excluded.completed_at
		`, plan.ID, plan.OwnerID, plan.ConversationID, plan.Intent, plan.IntentSource,
			plan.Status, plan.Summary, plan.Error,
			plan.CreatedAt.UTC().Format(time.RFC3339), completedAt)
		if err != nil {
			return mapError(err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM plan_tasks WHERE plan_id = ?`, plan.ID); err != nil {
			return mapError(err)
		}

		for _, task := range plan.Tasks {
			input, err := json.Marshal(task.Input)
			if err != nil {
				return fmt.Errorf("sqlite: encode task input: %w", err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO plan_tasks (plan_id, idx, type, input, output, status, error)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, plan.ID, task.Idx, task.Type, string(input), task.Output, task.Status, task.Error)
			if err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// GetPlan returns a plan with its tasks ordered by index.
func (r *PlanRepository) GetPlan(ctx context.Context, id string) (persistence.Plan, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, owner_id, conversation_id, intent, intent_source, status, summary, error, created_at, completed_at
		FROM plans WHERE id = ?
	`, id)
	plan, err := scanPlan(row)
	if err != nil {
		return persistence.Plan{}, err
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT plan_id, idx, type, input, output, status, error
		FROM plan_tasks WHERE plan_id = ? ORDER BY idx
	`, id)
	if err != nil {
		return persistence.Plan{}, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var task persistence.PlanTask
		var input string
		if err := rows.Scan(&task.PlanID, &task.Idx, &task.Type, &input, &task.Output, &task.Status, &task.Error); err != nil {
			return persistence.Plan{}, mapError(err)
		}
		if err := json.Unmarshal([]byte(input), &task.Input); err != nil {
			return persistence.Plan{}, fmt.Errorf("sqlite: decode task input: %w", err)
		}
		plan.Tasks = append(plan.Tasks, task)
	}
	if err := rows.Err(); err != nil {
		return persistence.Plan{}, mapError(err)
	}
	return plan, nil
}

// ListPlansForOwner returns the owner's plans, newest first, without tasks.
func (r *PlanRepository) ListPlansForOwner(ctx context.Context, ownerID string) ([]persistence.Plan, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, owner_id, conversation_id, intent, intent_source, status, summary, error, created_at, completed_at
		FROM plans WHERE owner_id = ? ORDER BY created_at DESC, id
	`, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var plans []persistence.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return plans, nil
}

func scanPlan(row rowScanner) (persistence.Plan, error) {
	var plan persistence.Plan
	var createdAt string
	var completedAt sql.NullString
	err := row.Scan(&plan.ID, &plan.OwnerID, &plan.ConversationID, &plan.Intent,
		&plan.IntentSource, &plan.Status, &plan.Summary, &plan.Error, &createdAt, &completedAt)
	if err != nil {
		return persistence.Plan{}, mapError(err)
	}
	if plan.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Plan{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if completedAt.Valid {
		parsed, err := time.Parse(time.RFC3339, completedAt.String)
		if err != nil {
			return persistence.Plan{}, fmt.Errorf("sqlite: parse completed_at: %w", err)
		}
		plan.CompletedAt = &parsed
	}
	return plan, nil
}
