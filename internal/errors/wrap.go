package errors

import (
	"errors"
	"fmt"
)

// ErrorWrapper tags errors from one module operation with a message that
// is safe to show to API clients.
type ErrorWrapper struct {
	module    string
	operation string
}

// NewWrapper returns a wrapper for module and operation.
func NewWrapper(module, operation string) *ErrorWrapper {
	return &ErrorWrapper{module: module, operation: operation}
}

// Wrap attaches userMessage to err. A nil err stays nil.
func (w *ErrorWrapper) Wrap(err error, userMessage string) error {
	if err == nil {
		return nil
	}
	return &WrappedError{
		Module:      w.module,
		Operation:   w.operation,
		Cause:       err,
		UserMessage: userMessage,
	}
}

// WrappedError pairs an internal cause with the text a client may see.
type WrappedError struct {
	Module      string // owning package, such as "accounts"
	Operation   string // the failing call, such as "login"
	Cause       error  // never shown to clients
	UserMessage string // returned in the JSON error body
}

func (e *WrappedError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Module, e.Operation, e.Cause)
}

func (e *WrappedError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the client-safe text carried by err: the message of
// the outermost WrappedError, or "<field> <message>" for a ValidationError.
// ok is false when err carries neither.
func UserMessage(err error) (msg string, ok bool) {
	var wrapped *WrappedError
	if errors.As(err, &wrapped) {
		return wrapped.UserMessage, true
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Field + " " + verr.Message, true
	}
	return "", false
}
