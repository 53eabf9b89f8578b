package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/chat-assistant/internal/agent"
	"github.com/example/chat-assistant/internal/persistence"
	"github.com/example/chat-assistant/internal/retrieval"
)

type stubPlanStore struct {
	plans   map[string]persistence.Plan
	saves   int
	saveErr error
}

func newStubPlanStore() *stubPlanStore {
	return &stubPlanStore{plans: make(map[string]persistence.Plan)}
}

func (s *stubPlanStore) SavePlan(_ context.Context, plan persistence.Plan) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.plans[plan.ID] = plan
	return nil
}

func (s *stubPlanStore) GetPlan(_ context.Context, id string) (persistence.Plan, error) {
	plan, ok := s.plans[id]
	if !ok {
		return persistence.Plan{}, persistence.ErrNotFound
	}
	return plan, nil
}

func (s *stubPlanStore) ListPlansForOwner(_ context.Context, ownerID string) ([]persistence.Plan, error) {
	var plans []persistence.Plan
	for _, plan := range s.plans {
		if plan.OwnerID == ownerID {
			plans = append(plans, plan)
		}
	}
	return plans, nil
}

type funcCompleter func(system, user string) (string, error)

func (f funcCompleter) Complete(_ context.Context, system, user string) (string, error) {
	return f(system, user)
}

type funcRetriever func(query, scopeID string, limit int) ([]retrieval.Passage, error)

func (f funcRetriever) Retrieve(_ context.Context, query, scopeID string, limit int) ([]retrieval.Passage, error) {
	return f(query, scopeID, limit)
}

type funcSlots func(ownerID string, durationMinutes, limit int) ([]time.Time, error)

func (f funcSlots) FindOpenSlots(_ context.Context, ownerID string, durationMinutes, limit int) ([]time.Time, error) {
	return f(ownerID, durationMinutes, limit)
}

func newTestPlanService(store *stubPlanStore, completer funcCompleter, retriever funcRetriever, slots funcSlots) *PlanService {
	seq := 0
	idGen := func() string {
		seq++
		return fmt.Sprintf("plan-%d", seq)
	}
	classifier := agent.NewClassifier(completer)
	executor := agent.NewExecutor(completer, retriever, nil, slots)
	summarizer := agent.NewSummarizer(completer)
	return NewPlanService(classifier, executor, summarizer, store, idGen, func() time.Time { return fixedNow }, nil)
}

func okRetriever(query, scopeID string, limit int) ([]retrieval.Passage, error) {
	return []retrieval.Passage{{Text: "team of 8, budget approved", Score: 0.9}}, nil
}

func okSlots(ownerID string, durationMinutes, limit int) ([]time.Time, error) {
	return []time.Time{fixedNow.Add(24 * time.Hour)}, nil
}

func TestRunPlanCompletes(t *testing.T) {
	t.Parallel()

	store := newStubPlanStore()
	completer := funcCompleter(func(system, user string) (string, error) {
		return "model output", nil
	})
	service := newTestPlanService(store, completer, funcRetriever(okRetriever), funcSlots(okSlots))

	view, err := service.RunPlan(context.Background(), RunPlanParams{
		ActingUserID:   "user-a",
		ConversationID: "conv-1",
		Text:           "plan an offsite next month",
	})
	if err != nil {
		t.Fatalf("run plan: %v", err)
	}

	if view.Status != string(agent.PlanStatusCompleted) {
		t.Fatalf("expected completed, got %s", view.Status)
	}
	if view.Intent != string(agent.IntentOffsitePlanning) || view.IntentSource != string(agent.IntentSourceRule) {
		t.Fatalf("unexpected classification: %s via %s", view.Intent, view.IntentSource)
	}
	if view.Summary == "" {
		t.Fatal("completed plan must carry a summary")
	}
	if view.CompletedAt == nil {
		t.Fatal("terminal plan must carry a completion time")
	}
	if store.saves != 2 {
		t.Fatalf("expected pending and terminal persists, got %d", store.saves)
	}
	if len(view.Tasks) != 4 {
		t.Fatalf("offsite template has 4 tasks, got %d", len(view.Tasks))
	}
}

func TestRunPlanSecondTaskFailurePreservesPartials(t *testing.T) {
	t.Parallel()

	store := newStubPlanStore()
	summarizerCalled := false
	completer := funcCompleter(func(system, user string) (string, error) {
		summarizerCalled = true
		return "", errors.New("model unavailable")
	})
	service := newTestPlanService(store, completer, funcRetriever(okRetriever), funcSlots(okSlots))

	view, err := service.RunPlan(context.Background(), RunPlanParams{
		ActingUserID:   "user-a",
		ConversationID: "conv-1",
		Text:           "plan an offsite next month",
	})
	if err != nil {
		t.Fatalf("task failure must not fail the request: %v", err)
	}

	if view.Status != string(agent.PlanStatusFailed) {
		t.Fatalf("expected failed plan, got %s", view.Status)
	}
	want := []string{"completed", "failed", "pending", "pending"}
	for i, status := range want {
		if view.Tasks[i].Status != status {
			t.Fatalf("task %d: expected %s, got %s", i, status, view.Tasks[i].Status)
		}
	}
	if view.Tasks[0].Output == "" {
		t.Fatal("completed task output must be preserved")
	}
	if view.Summary != "" {
		t.Fatal("failed plan must not be summarized")
	}

	// The completer runs once for the failing summarize-context task; the
	// plan summarizer never fires after a failure.
	if !summarizerCalled {
		t.Fatal("expected the failing task to have consulted the model")
	}
	stored, err := store.GetPlan(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("stored plan: %v", err)
	}
	if stored.Status != string(agent.PlanStatusFailed) || len(stored.Tasks) != 4 {
		t.Fatalf("terminal state not persisted: %+v", stored)
	}
}

func TestRunPlanSummaryFallsBackWhenModelFails(t *testing.T) {
	t.Parallel()

	store := newStubPlanStore()
	calls := 0
	completer := funcCompleter(func(system, user string) (string, error) {
		calls++
		// Task completions succeed; the final recap call fails.
		if calls > 2 {
			return "", errors.New("rate limited")
		}
		return "step output", nil
	})
	service := newTestPlanService(store, completer, funcRetriever(okRetriever), funcSlots(okSlots))

	view, err := service.RunPlan(context.Background(), RunPlanParams{
		ActingUserID:   "user-a",
		ConversationID: "conv-1",
		Text:           "plan an offsite next month",
	})
	if err != nil {
		t.Fatalf("run plan: %v", err)
	}
	if view.Status != string(agent.PlanStatusCompleted) {
		t.Fatalf("expected completed, got %s", view.Status)
	}
	if view.Summary == "" {
		t.Fatal("expected deterministic fallback summary")
	}
}

func TestRunPlanUnknownIntent(t *testing.T) {
	t.Parallel()

	store := newStubPlanStore()
	completer := funcCompleter(func(system, user string) (string, error) {
		return "unknown", nil
	})
	service := newTestPlanService(store, completer, funcRetriever(okRetriever), funcSlots(okSlots))

	_, err := service.RunPlan(context.Background(), RunPlanParams{
		ActingUserID:   "user-a",
		ConversationID: "conv-1",
		Text:           "tell me a story",
	})
	var unknownErr *agent.UnknownIntentError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownIntentError, got %v", err)
	}
	if len(store.plans) != 0 {
		t.Fatal("unclassified request must not persist a plan")
	}
}

func TestGetPlanOwnerOnly(t *testing.T) {
	t.Parallel()

	store := newStubPlanStore()
	completer := funcCompleter(func(system, user string) (string, error) {
		return "output", nil
	})
	service := newTestPlanService(store, completer, funcRetriever(okRetriever), funcSlots(okSlots))
	ctx := context.Background()

	view, err := service.RunPlan(ctx, RunPlanParams{
		ActingUserID: "user-a", ConversationID: "conv-1", Text: "plan an offsite",
	})
	if err != nil {
		t.Fatalf("run plan: %v", err)
	}

	if _, err := service.GetPlan(ctx, "user-b", view.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for foreign plan, got %v", err)
	}
	got, err := service.GetPlan(ctx, "user-a", view.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if got.ID != view.ID || len(got.Tasks) != len(view.Tasks) {
		t.Fatalf("unexpected plan: %+v", got)
	}
	if _, err := service.GetPlan(ctx, "user-a", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
