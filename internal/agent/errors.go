package agent

import "fmt"

// UnknownIntentError is returned when neither the rule patterns nor the
// model could place a request inside the closed intent set. It is surfaced
// to the caller; no default intent is ever assumed.
type UnknownIntentError struct {
	Text  string
	Label string
}

func (e *UnknownIntentError) Error() string {
	if e == nil {
		return ""
	}
	if e.Label != "" {
		return fmt.Sprintf("agent: model returned unrecognized intent %q", e.Label)
	}
	return fmt.Sprintf("agent: cannot classify request %q", e.Text)
}

// TaskExecutionError reports the task that stopped a plan. The plan's
// partial task list, including outputs collected so far, is preserved.
type TaskExecutionError struct {
	Index int
	Type  TaskType
	Err   error
}

func (e *TaskExecutionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("agent: task %d (%s) failed: %v", e.Index, e.Type, e.Err)
}

func (e *TaskExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TaskInputError reports a task constructed with a missing or invalid input.
// Validation happens at construction time so malformed plans fail fast.
type TaskInputError struct {
	Type TaskType
	Key  string
}

func (e *TaskInputError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("agent: task %s requires input %q", e.Type, e.Key)
}
