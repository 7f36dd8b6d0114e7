// Package errors provides a drop-in replacement for the standard errors package
// extended with stack traces, error prefixes and multi/nested error aggregation.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
)

type StackTrace []uintptr

type stackTracer interface {
	StackTrace() StackTrace
}

// withStack wraps an error and attaches the stack trace of the call site.
type withStack struct {
	err   error
	trace StackTrace
}

func New(text string) error {
	return &withStack{err: stderrors.New(text), trace: callers()}
}

func Errorf(format string, a ...any) error {
	return &withStack{err: fmt.Errorf(format, a...), trace: callers()}
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Wrap adds the message as a prefix of the wrapped error.
func Wrap(err error, message string) error {
	return NewNestedError(New(message), err)
}

// Wrapf adds the formatted message as a prefix of the wrapped error.
func Wrapf(err error, format string, a ...any) error {
	return NewNestedError(Errorf(format, a...), err)
}

func (e *withStack) Error() string {
	return e.err.Error()
}

func (e *withStack) Unwrap() error {
	return e.err
}

func (e *withStack) StackTrace() StackTrace {
	return e.trace
}

func callers() StackTrace {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}
