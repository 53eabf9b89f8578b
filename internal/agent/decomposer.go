package agent

// requiredInputs lists the input keys each task type must carry. The
// "context" key is injected by the executor at run time and is never
// required at construction. A schedule-meeting task carries a "conversation"
// key too, but it may be empty: a request outside any conversation schedules
// against the degraded single-member roster.
var requiredInputs = map[TaskType][]string{
	TaskRetrieveContext:  {"query", "scope"},
	TaskSummarizeContext: {"request"},
	TaskComputeTimeSlots: {"owner", "duration"},
	TaskGenerateSummary:  {"request"},
	TaskScheduleMeeting:  {"text", "organizer"},
}

// NewTask constructs a pending task, validating its input schema up front so
// malformed plans fail at decomposition rather than mid-execution.
func NewTask(taskType TaskType, input map[string]string) (Task, error) {
	required, ok := requiredInputs[taskType]
	if !ok {
		return Task{}, &TaskInputError{Type: taskType, Key: "(unknown task type)"}
	}
	for _, key := range required {
		if input[key] == "" {
			return Task{}, &TaskInputError{Type: taskType, Key: key}
		}
	}

	copied := make(map[string]string, len(input))
	for k, v := range input {
		copied[k] = v
	}
	return Task{Type: taskType, Input: copied, Status: TaskStatusPending}, nil
}

// Decompose expands a classified intent into its fixed ordered task
// template. Each intent maps to a bounded template of three to five tasks.
func Decompose(intent Intent, requestText, ownerID, conversationID string) ([]Task, error) {
	scope := conversationID
	if scope == "" {
		scope = ownerID
	}

	var specs []taskTemplate

	switch intent {
	case IntentMeetingScheduling:
		specs = append(specs,
			taskSpec(TaskRetrieveContext, map[string]string{"query": requestText, "scope": scope}),
			taskSpec(TaskScheduleMeeting, map[string]string{"text": requestText, "organizer": ownerID, "conversation": conversationID}),
			taskSpec(TaskGenerateSummary, map[string]string{"request": requestText}),
		)
	case IntentOffsitePlanning:
		specs = append(specs,
			taskSpec(TaskRetrieveContext, map[string]string{"query": requestText, "scope": scope}),
			taskSpec(TaskSummarizeContext, map[string]string{"request": requestText}),
			taskSpec(TaskComputeTimeSlots, map[string]string{"owner": ownerID, "duration": "480"}),
			taskSpec(TaskGenerateSummary, map[string]string{"request": requestText}),
		)
	case IntentTaskBreakdown:
		specs = append(specs,
			taskSpec(TaskRetrieveContext, map[string]string{"query": requestText, "scope": scope}),
			taskSpec(TaskSummarizeContext, map[string]string{"request": requestText}),
			taskSpec(TaskGenerateSummary, map[string]string{"request": requestText}),
		)
	default:
		return nil, &UnknownIntentError{Text: requestText, Label: string(intent)}
	}

	tasks := make([]Task, 0, len(specs))
	for _, spec := range specs {
		task, err := NewTask(spec.taskType, spec.input)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

type taskTemplate struct {
	taskType TaskType
	input    map[string]string
}

func taskSpec(taskType TaskType, input map[string]string) taskTemplate {
	return taskTemplate{taskType: taskType, input: input}
}
