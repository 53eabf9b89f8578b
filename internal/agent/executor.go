package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const summarizeContextPrompt = `You condense retrieved conversation context into a short briefing.
Keep only facts relevant to the request. Answer in plain prose.`

const generateTextPrompt = `You draft the final answer for a chat assistant task.
Use the prior step outputs provided as context. Be concise and concrete.`

// Executor runs a plan's tasks strictly in order, feeding each completed
// task's output forward as context to later tasks. The first failure marks
// the task and the plan failed and stops execution; the partial task list
// with outputs collected so far is preserved.
type Executor struct {
	completer TextCompleter
	retriever ContextRetriever
	scheduler MeetingScheduler
	slots     SlotFinder
}

// NewExecutor wires the capabilities tasks may dispatch to. A capability
// left nil fails any task that needs it.
func NewExecutor(completer TextCompleter, retriever ContextRetriever, scheduler MeetingScheduler, slots SlotFinder) *Executor {
	return &Executor{completer: completer, retriever: retriever, scheduler: scheduler, slots: slots}
}

// Execute drives the plan to a terminal status. The returned error is the
// TaskExecutionError of the failing task, or the context error when the
// caller abandoned the plan between tasks; nil means the plan completed.
func (e *Executor) Execute(ctx context.Context, plan *Plan) error {
	if e == nil || plan == nil {
		return fmt.Errorf("agent: executor not configured")
	}
	if plan.Terminal() {
		return fmt.Errorf("agent: plan %s already terminal", plan.ID)
	}

	plan.Status = PlanStatusRunning

	for i := range plan.Tasks {
		// Abandonment stops before the next task, never mid-call.
		if err := ctx.Err(); err != nil {
			plan.Status = PlanStatusFailed
			plan.Error = err.Error()
			return err
		}

		task := &plan.Tasks[i]
		task.Status = TaskStatusRunning
		e.injectContext(plan, i)

		output, err := e.runTask(ctx, *task)
		if err != nil {
			task.Status = TaskStatusFailed
			task.Error = err.Error()
			plan.Status = PlanStatusFailed
			execErr := &TaskExecutionError{Index: i, Type: task.Type, Err: err}
			plan.Error = execErr.Error()
			return execErr
		}

		task.Output = output
		task.Status = TaskStatusCompleted
	}

	plan.Status = PlanStatusCompleted
	return nil
}

// injectContext substitutes the outputs of completed prior tasks into the
// pending task's "context" input.
func (e *Executor) injectContext(plan *Plan, index int) {
	var parts []string
	for _, prior := range plan.Tasks[:index] {
		if prior.Status == TaskStatusCompleted && prior.Output != "" {
			parts = append(parts, fmt.Sprintf("[%s]\n%s", prior.Type, prior.Output))
		}
	}
	if len(parts) == 0 {
		return
	}
	if plan.Tasks[index].Input == nil {
		plan.Tasks[index].Input = make(map[string]string)
	}
	plan.Tasks[index].Input["context"] = strings.Join(parts, "\n\n")
}

// runTask dispatches on the task's type. The task set is closed; adding a
// variant means adding a case here.
func (e *Executor) runTask(ctx context.Context, task Task) (string, error) {
	switch task.Type {
	case TaskRetrieveContext:
		return e.retrieveContext(ctx, task)
	case TaskSummarizeContext:
		return e.summarizeContext(ctx, task)
	case TaskComputeTimeSlots:
		return e.computeTimeSlots(ctx, task)
	case TaskGenerateSummary:
		return e.generateSummary(ctx, task)
	case TaskScheduleMeeting:
		return e.scheduleMeeting(ctx, task)
	default:
		return "", fmt.Errorf("unknown task type %q", task.Type)
	}
}

func (e *Executor) retrieveContext(ctx context.Context, task Task) (string, error) {
	if e.retriever == nil {
		return "", fmt.Errorf("retriever not configured")
	}
	passages, err := e.retriever.Retrieve(ctx, task.Input["query"], task.Input["scope"], 5)
	if err != nil {
		return "", err
	}
	if len(passages) == 0 {
		return "no relevant context found", nil
	}
	var b strings.Builder
	for _, passage := range passages {
		fmt.Fprintf(&b, "- %s (%.2f)\n", passage.Text, passage.Score)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (e *Executor) summarizeContext(ctx context.Context, task Task) (string, error) {
	if e.completer == nil {
		return "", fmt.Errorf("completer not configured")
	}
	user := fmt.Sprintf("Request: %s\n\nContext:\n%s", task.Input["request"], task.Input["context"])
	return e.completer.Complete(ctx, summarizeContextPrompt, user)
}

func (e *Executor) computeTimeSlots(ctx context.Context, task Task) (string, error) {
	if e.slots == nil {
		return "", fmt.Errorf("slot finder not configured")
	}
	duration, err := strconv.Atoi(task.Input["duration"])
	if err != nil || duration <= 0 {
		return "", fmt.Errorf("invalid duration %q", task.Input["duration"])
	}
	openings, err := e.slots.FindOpenSlots(ctx, task.Input["owner"], duration, 3)
	if err != nil {
		return "", err
	}
	if len(openings) == 0 {
		return "", fmt.Errorf("no open slots within the scheduling horizon")
	}
	var b strings.Builder
	for _, slot := range openings {
		fmt.Fprintf(&b, "- %s\n", slot.Format("Mon Jan 2 15:04"))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (e *Executor) generateSummary(ctx context.Context, task Task) (string, error) {
	if e.completer == nil {
		return "", fmt.Errorf("completer not configured")
	}
	user := fmt.Sprintf("Request: %s\n\nPrior step outputs:\n%s", task.Input["request"], task.Input["context"])
	return e.completer.Complete(ctx, generateTextPrompt, user)
}

func (e *Executor) scheduleMeeting(ctx context.Context, task Task) (string, error) {
	if e.scheduler == nil {
		return "", fmt.Errorf("scheduler not configured")
	}
	return e.scheduler.ScheduleFromText(ctx, task.Input["text"], task.Input["organizer"], task.Input["conversation"])
}
