package errors

import (
	"errors"
	"fmt"
)

// New returns an error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// ContextError annotates an error with the operation that produced it.
type ContextError struct {
	Context string
	Err     error
}

func (err ContextError) Error() string {
	return fmt.Sprintf("%s: %s", err.Context, err.Err)
}

func (err ContextError) Unwrap() error {
	return err.Err
}

// WithContext wraps `err` so that its message is prefixed with `context`.
func WithContext(err error, context string) error {
	return ContextError{Context: context, Err: err}
}

// RootCause unwraps `err` until it reaches the error that started the chain.
func RootCause(err error) error {
	for {
		wrapped, ok := err.(ContextError)
		if !ok {
			return err
		}
		err = wrapped.Err
	}
}

// FriendlyError is an error meant to be shown directly to users. Its message
// is printed without any wrapping context, so it should be a complete,
// readable explanation of what went wrong.
type FriendlyError struct {
	Message string
}

func (err FriendlyError) Error() string {
	return err.Message
}

// NewFriendlyError creates a FriendlyError with the given format string.
func NewFriendlyError(format string, args ...interface{}) error {
	return FriendlyError{Message: fmt.Sprintf(format, args...)}
}
