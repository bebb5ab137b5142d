package eventstore

import (
	"errors"
	"fmt"
)

var (
	// ErrGap indicates ReadFrom or Subscribe detected a missing seq between
	// two consecutive rows — the gap-free guarantee was violated.
	ErrGap = errors.New("gap in event sequence")

	// ErrUnknownEventType indicates a payload was marshaled under an
	// event_type no registered decoder recognizes.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrStaleWrite indicates an Append was attempted with a parent_seq that
	// no longer exists (the parent was never committed, e.g. after a crash
	// mid-transaction). No function in this package returns it.
	ErrStaleWrite = errors.New("parent event does not exist")

	// ErrListenerNotRunning indicates Subscribe was called before Start or
	// after Stop. No function in this package returns it.
	ErrListenerNotRunning = errors.New("notify listener not running")
)

// AppendError wraps a failure to append a specific event, carrying enough
// context to log or retry without re-deriving it from the error string.
type AppendError struct {
	EventType string
	RunID     string
	Err       error
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("append %s (run %s): %v", e.EventType, e.RunID, e.Err)
}

func (e *AppendError) Unwrap() error {
	return e.Err
}

func NewAppendError(eventType, runID string, err error) *AppendError {
	return &AppendError{EventType: eventType, RunID: runID, Err: err}
}
