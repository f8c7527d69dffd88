package transport

import (
	"errors"
	"fmt"
)

// ErrTransport wraps any failure talking to the log host.
type ErrTransport struct {
	Op  string
	Err error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

func NewErrTransport(op string, err error) *ErrTransport {
	return &ErrTransport{Op: op, Err: err}
}

func IsTransportError(err error) bool {
	var target *ErrTransport
	return errors.As(err, &target)
}
