package application

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the acting user lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ConflictError reports that a requested time window collides with existing
// committed events. No event is created when it is returned.
type ConflictError struct {
	Events []ScheduleEvent
}

func (c *ConflictError) Error() string {
	if c == nil || len(c.Events) == 0 {
		return "scheduling conflict"
	}
	return fmt.Sprintf("scheduling conflict with %d existing event(s)", len(c.Events))
}

// AtomicWriteError reports that the batch write of event copies failed and
// was rolled back. It is distinct from a conflict: the window was free, the
// store refused the write.
type AtomicWriteError struct {
	Err error
}

func (a *AtomicWriteError) Error() string {
	return fmt.Sprintf("event creation failed, no copies were written: %v", a.Err)
}

func (a *AtomicWriteError) Unwrap() error {
	return a.Err
}

// StageError wraps a pipeline failure with the stage it occurred in.
type StageError struct {
	Stage Stage
	Err   error
}

func (s *StageError) Error() string {
	return fmt.Sprintf("%s: %v", s.Stage, s.Err)
}

func (s *StageError) Unwrap() error {
	return s.Err
}

// FailedStage extracts the pipeline stage from an error chain, or empty.
func FailedStage(err error) Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}
