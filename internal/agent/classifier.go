package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const classifySystemPrompt = `You classify chat assistant requests into task intents.
Respond with exactly one of the following labels and nothing else:
%s
If none applies, respond with "unknown".`

// intentRules are the deterministic patterns tried before any model call.
// Order matters: the first match wins.
var intentRules = []struct {
	pattern *regexp.Regexp
	intent  Intent
}{
	{regexp.MustCompile(`(?i)\b(offsite|off-site|retreat|team (outing|trip|event))\b`), IntentOffsitePlanning},
	{regexp.MustCompile(`(?i)\b(schedule|set ?up|book)\b.*\b(meeting|call|sync|session|1:1|time)\b`), IntentMeetingScheduling},
	{regexp.MustCompile(`(?i)\b(break (it |this )?down|breakdown|step[- ]by[- ]step|checklist|subtasks?)\b`), IntentTaskBreakdown},
}

// Classifier places free-text requests into the closed intent set. Pattern
// rules run first; the text-completion service is consulted only on no-match
// and is constrained to return one label from the set.
type Classifier struct {
	completer TextCompleter
}

// NewClassifier wires the model fallback. A nil completer disables it, in
// which case rule misses surface UnknownIntentError directly.
func NewClassifier(completer TextCompleter) *Classifier {
	return &Classifier{completer: completer}
}

// Classify returns the matched intent and the source of the decision.
func (c *Classifier) Classify(ctx context.Context, text string) (Intent, IntentSource, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", "", &UnknownIntentError{Text: text}
	}

	for _, rule := range intentRules {
		if rule.pattern.MatchString(trimmed) {
			return rule.intent, IntentSourceRule, nil
		}
	}

	if c == nil || c.completer == nil {
		return "", "", &UnknownIntentError{Text: trimmed}
	}

	labels := make([]string, 0, len(KnownIntents()))
	for _, intent := range KnownIntents() {
		labels = append(labels, string(intent))
	}
	system := fmt.Sprintf(classifySystemPrompt, strings.Join(labels, "\n"))

	raw, err := c.completer.Complete(ctx, system, trimmed)
	if err != nil {
		return "", "", fmt.Errorf("agent: intent classification: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(raw))
	for _, intent := range KnownIntents() {
		if label == string(intent) {
			return intent, IntentSourceModel, nil
		}
	}

	return "", "", &UnknownIntentError{Text: trimmed, Label: label}
}
