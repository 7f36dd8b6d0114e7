package errors

import (
	"context"
)

// TransientError marks an error as retriable, for example a timeout
// or a deadline of an I/O operation.
type TransientError struct {
	error
}

func NewTransientError(err error) TransientError {
	return TransientError{error: err}
}

func (e TransientError) Unwrap() error {
	return e.error
}

type timeouter interface {
	Timeout() bool
}

// IsTransient reports whether the error is worth a bounded retry:
// an explicit TransientError, a deadline, or a network/filesystem timeout.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var transient TransientError
	if As(err, &transient) {
		return true
	}
	if Is(err, context.DeadlineExceeded) {
		return true
	}
	var withTimeout timeouter
	if As(err, &withTimeout) && withTimeout.Timeout() {
		return true
	}
	return false
}
