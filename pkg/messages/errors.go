package messages

import (
	"errors"
	"fmt"
)

// ErrMalformedEvent is returned when a log entry body is not a valid event.
type ErrMalformedEvent struct {
	Reason string
	Err    error
}

func (e *ErrMalformedEvent) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed event: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed event: %s", e.Reason)
}

func (e *ErrMalformedEvent) Unwrap() error {
	return e.Err
}

func NewErrMalformedEvent(reason string, err error) *ErrMalformedEvent {
	return &ErrMalformedEvent{Reason: reason, Err: err}
}

func IsMalformedEvent(err error) bool {
	var target *ErrMalformedEvent
	return errors.As(err, &target)
}
