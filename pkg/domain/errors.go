package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownGenerator is returned when no generator is registered for a kind.
var ErrUnknownGenerator = errors.New("unknown generator")

// FetchError reports a failed retrieval of a baseline resource.
// It is a soft failure: the loader degrades instead of aborting.
type FetchError struct {
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// InvocationError reports a failure raised by a generator routine.
// Message holds the raised information verbatim.
type InvocationError struct {
	Kind     GeneratorKind
	Message  string
	Panicked bool
	Err      error
}

func (e *InvocationError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("generator %s panicked: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("generator %s failed: %s", e.Kind, e.Message)
}

func (e *InvocationError) Unwrap() error { return e.Err }
