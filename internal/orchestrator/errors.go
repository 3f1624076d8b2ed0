package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Start when an execution is already
	// registered for the job.
	ErrAlreadyRunning = errors.New("job is already running")

	// ErrInvalidState is returned when a lifecycle operation is requested
	// from a status that does not permit it.
	ErrInvalidState = errors.New("job is not in a valid state for this operation")
)

// ValidationError reports a malformed job creation request. The job is
// never created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
