package agent

import (
	"context"
	"fmt"
	"strings"
)

const summarizePlanPrompt = `You write a short user-facing recap of a finished multi-step plan.
Mention what was done and the final result. Two or three sentences, no bullet lists.`

// Summarizer produces the user-facing recap of a completed plan.
type Summarizer struct {
	completer TextCompleter
}

func NewSummarizer(completer TextCompleter) *Summarizer {
	return &Summarizer{completer: completer}
}

// Summarize asks the model for a recap of a completed plan. Callers are
// expected to fall back to FallbackSummary when the model call fails.
func (s *Summarizer) Summarize(ctx context.Context, plan *Plan) (string, error) {
	if s == nil || s.completer == nil {
		return "", fmt.Errorf("agent: summarizer not configured")
	}
	if plan == nil || plan.Status != PlanStatusCompleted {
		return "", fmt.Errorf("agent: cannot summarize a plan that did not complete")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Intent: %s\n\nSteps:\n", plan.Intent)
	for i, task := range plan.Tasks {
		fmt.Fprintf(&b, "%d. %s\n%s\n", i+1, task.Type, task.Output)
	}
	return s.completer.Complete(ctx, summarizePlanPrompt, b.String())
}

// FallbackSummary is the deterministic recap used when the model is
// unavailable. It names the steps taken and quotes the last task's output.
func FallbackSummary(plan *Plan) string {
	if plan == nil || len(plan.Tasks) == 0 {
		return "The plan finished with no steps."
	}
	steps := make([]string, 0, len(plan.Tasks))
	for _, task := range plan.Tasks {
		steps = append(steps, string(task.Type))
	}
	last := plan.Tasks[len(plan.Tasks)-1]
	return fmt.Sprintf("Completed %d steps (%s). Result: %s",
		len(plan.Tasks), strings.Join(steps, ", "), last.Output)
}
