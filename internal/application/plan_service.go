package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/chat-assistant/internal/agent"
	"github.com/example/chat-assistant/internal/persistence"
)

// PlanStore captures the persistence interactions needed by the service.
type PlanStore interface {
	SavePlan(ctx context.Context, plan persistence.Plan) error
	GetPlan(ctx context.Context, id string) (persistence.Plan, error)
	ListPlansForOwner(ctx context.Context, ownerID string) ([]persistence.Plan, error)
}

// PlanService drives the general request pipeline: classify the intent,
// decompose it into tasks, execute them in order and summarize the result.
// Plans are persisted before execution and again at their terminal state, so
// a failed plan keeps its partial outputs.
type PlanService struct {
	classifier  *agent.Classifier
	executor    *agent.Executor
	summarizer  *agent.Summarizer
	plans       PlanStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewPlanService wires the pipeline components.
func NewPlanService(classifier *agent.Classifier, executor *agent.Executor, summarizer *agent.Summarizer, plans PlanStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PlanService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PlanService{
		classifier:  classifier,
		executor:    executor,
		summarizer:  summarizer,
		plans:       plans,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// RunPlan processes one free-text request to a terminal plan. Task failures
// do not surface as errors: the returned view carries the failed status and
// the partial outputs. Errors are reserved for requests that never became a
// plan and for persistence failures.
func (s *PlanService) RunPlan(ctx context.Context, params RunPlanParams) (PlanView, error) {
	if s == nil {
		return PlanView{}, fmt.Errorf("PlanService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "plan", "run_plan",
		"user_id", params.ActingUserID, "conversation_id", params.ConversationID)

	if params.ActingUserID == "" {
		return PlanView{}, ErrUnauthorized
	}

	intent, source, err := s.classifier.Classify(ctx, params.Text)
	if err != nil {
		logger.WarnContext(ctx, "intent classification failed", "error", err)
		return PlanView{}, err
	}

	tasks, err := agent.Decompose(intent, params.Text, params.ActingUserID, params.ConversationID)
	if err != nil {
		return PlanView{}, err
	}

	plan := &agent.Plan{
		ID:             s.idGenerator(),
		Intent:         intent,
		IntentSource:   source,
		Tasks:          tasks,
		Status:         agent.PlanStatusPending,
		OwnerID:        params.ActingUserID,
		ConversationID: params.ConversationID,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.plans.SavePlan(ctx, toPlanRecord(plan)); err != nil {
		return PlanView{}, fmt.Errorf("persist plan: %w", err)
	}
	logger = logger.With("plan_id", plan.ID, "intent", string(intent), "intent_source", string(source))
	logger.InfoContext(ctx, "plan started", "tasks", len(plan.Tasks))

	if execErr := s.executor.Execute(ctx, plan); execErr != nil {
		logger.WarnContext(ctx, "plan failed", "error", execErr)
	} else {
		s.summarize(ctx, logger, plan)
	}

	completed := s.now().UTC()
	plan.CompletedAt = &completed
	if err := s.plans.SavePlan(ctx, toPlanRecord(plan)); err != nil {
		return PlanView{}, fmt.Errorf("persist terminal plan: %w", err)
	}
	logger.InfoContext(ctx, "plan finished", "status", string(plan.Status))
	return planView(toPlanRecord(plan)), nil
}

// summarize fills the plan summary, degrading to the deterministic fallback
// when the model call fails.
func (s *PlanService) summarize(ctx context.Context, logger *slog.Logger, plan *agent.Plan) {
	summary, err := s.summarizer.Summarize(ctx, plan)
	if err != nil {
		logger.WarnContext(ctx, "plan summary degraded to fallback", "error", err)
		summary = agent.FallbackSummary(plan)
	}
	plan.Summary = summary
}

// GetPlan returns one of the acting user's plans with its tasks.
func (s *PlanService) GetPlan(ctx context.Context, actingUserID, planID string) (PlanView, error) {
	if actingUserID == "" {
		return PlanView{}, ErrUnauthorized
	}
	record, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return PlanView{}, mapStoreError(err)
	}
	if record.OwnerID != actingUserID {
		return PlanView{}, ErrUnauthorized
	}
	return planView(record), nil
}

// ListPlans returns the acting user's plans, newest first, without tasks.
func (s *PlanService) ListPlans(ctx context.Context, actingUserID string) ([]PlanView, error) {
	if actingUserID == "" {
		return nil, ErrUnauthorized
	}
	records, err := s.plans.ListPlansForOwner(ctx, actingUserID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	views := make([]PlanView, 0, len(records))
	for _, record := range records {
		views = append(views, planView(record))
	}
	return views, nil
}

func toPlanRecord(plan *agent.Plan) persistence.Plan {
	record := persistence.Plan{
		ID:             plan.ID,
		OwnerID:        plan.OwnerID,
		ConversationID: plan.ConversationID,
		Intent:         string(plan.Intent),
		IntentSource:   string(plan.IntentSource),
		Status:         string(plan.Status),
		Summary:        plan.Summary,
		Error:          plan.Error,
		CreatedAt:      plan.CreatedAt,
		CompletedAt:    plan.CompletedAt,
	}
	for i, task := range plan.Tasks {
		record.Tasks = append(record.Tasks, persistence.PlanTask{
			PlanID: plan.ID,
			Idx:    i,
			Type:   string(task.Type),
			Input:  task.Input,
			Output: task.Output,
			Status: string(task.Status),
			Error:  task.Error,
		})
	}
	return record
}

func planView(record persistence.Plan) PlanView {
	view := PlanView{
		ID:             record.ID,
		OwnerID:        record.OwnerID,
		ConversationID: record.ConversationID,
		Intent:         record.Intent,
		IntentSource:   record.IntentSource,
		Status:         record.Status,
		Summary:        record.Summary,
		Error:          record.Error,
		CreatedAt:      record.CreatedAt,
		CompletedAt:    record.CompletedAt,
	}
	for _, task := range record.Tasks {
		view.Tasks = append(view.Tasks, TaskView{
			Type:   task.Type,
			Input:  task.Input,
			Output: task.Output,
			Status: task.Status,
			Error:  task.Error,
		})
	}
	return view
}
