package eventbus

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors for the event bus.
var (
	// ErrInvalidEventName is returned by Announce for names that cannot be
	// turned into a registry key.
	ErrInvalidEventName = errors.New("invalid event name")

	// ErrInvalidPattern is returned by pattern constructors.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrMethodNotFound is reported when a method registration names a
	// method its receiver does not have.
	ErrMethodNotFound = errors.New("listener method not found")

	// ErrMethodSignature is reported when a method registration names a
	// method that cannot be called with a Payload.
	ErrMethodSignature = errors.New("listener method has wrong signature")

	// ErrListenerPanic matches every *PanicError.
	ErrListenerPanic = errors.New("listener panicked")

	// ErrNilListener is reported when a func registration has no closure.
	ErrNilListener = errors.New("nil listener func")
)

// PanicError wraps a value recovered from a panicking listener.
type PanicError struct {
	// EventName is the announced event.
	EventName string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("listener panic on event '%s': %v", e.EventName, e.Value)
}

// Is allows errors.Is to match PanicError with ErrListenerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrListenerPanic
}

// Unwrap returns the panic value if it was an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// ListenerError describes one failed listener invocation.
type ListenerError struct {
	EventName    string
	ListenerType string
	Err          error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("event '%s' listener '%s': %v", e.EventName, e.ListenerType, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

// ErrorCollector is an ErrorHandler that records every reported failure.
//
//	c := eventbus.NewErrorCollector()
//	bus.SetErrorHandler(c.Handle)
type ErrorCollector struct {
	mu     sync.Mutex
	errors []*ListenerError
}

// NewErrorCollector creates an empty collector.
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]*ListenerError, 0),
	}
}

// Handle records a failure. It has the ErrorHandler signature.
func (c *ErrorCollector) Handle(receiver any, payload Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errors = append(c.errors, &ListenerError{
		EventName:    payload.EventName(),
		ListenerType: fmt.Sprintf("%T", receiver),
		Err:          payload.Err(),
	})
}

// Errors returns a copy of the recorded failures, oldest first.
func (c *ErrorCollector) Errors() []*ListenerError {
	c.mu.Lock()
	defer c.mu.Unlock()

	errorsCopy := make([]*ListenerError, len(c.errors))
	copy(errorsCopy, c.errors)
	return errorsCopy
}

// Clear drops all recorded failures.
func (c *ErrorCollector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = make([]*ListenerError, 0)
}
