package errors

import (
	"sync"
)

// MultiError is a list of errors, it supports concurrent appends.
type MultiError interface {
	error
	Len() int
	Append(errs ...error)
	AppendWithPrefix(err error, prefix string)
	AppendWithPrefixf(err error, format string, a ...any)
	ErrorOrNil() error
	WrappedErrors() []error
}

type multiErrorGetter interface {
	WrappedErrors() []error
}

type multiError struct {
	lock sync.Mutex
	errs []error
}

func NewMultiError() MultiError {
	return &multiError{}
}

func (e *multiError) Len() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return len(e.errs)
}

func (e *multiError) Error() string {
	return Format(e)
}

// Append adds one or more errors, a MultiError is flattened.
func (e *multiError) Append(errs ...error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	for _, err := range errs {
		if err == nil {
			continue
		}
		// A nested error keeps its prefix, only a plain list is flattened
		if _, ok := err.(nestedErrorGetter); ok { // nolint: errorlint
			e.errs = append(e.errs, err)
			continue
		}
		if v, ok := err.(multiErrorGetter); ok { // nolint: errorlint
			e.errs = append(e.errs, v.WrappedErrors()...)
			continue
		}
		e.errs = append(e.errs, err)
	}
}

func (e *multiError) AppendWithPrefix(err error, prefix string) {
	e.Append(PrefixError(err, prefix))
}

func (e *multiError) AppendWithPrefixf(err error, format string, a ...any) {
	e.Append(PrefixErrorf(err, format, a...))
}

// ErrorOrNil returns nil if the list is empty, otherwise the error itself.
func (e *multiError) ErrorOrNil() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if len(e.errs) == 0 {
		return nil
	}
	return e
}

func (e *multiError) WrappedErrors() []error {
	e.lock.Lock()
	defer e.lock.Unlock()
	out := make([]error, len(e.errs))
	copy(out, e.errs)
	return out
}

func (e *multiError) Unwrap() []error {
	return e.WrappedErrors()
}
