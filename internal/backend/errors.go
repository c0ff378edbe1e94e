package backend

import (
	"errors"
	"fmt"
)

// Error is a failed backend call: either a non-2xx status or a body that
// reported success=false. Message is what the user gets to see.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "backend error"
	}
	return e.Message
}

// Detail includes the operation and status code for logs.
func (e *Error) Detail() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}

func IsBackendError(err error) bool {
	var be *Error
	return errors.As(err, &be)
}
