package eventbus

// Listener is an object that listens to a single named event.
// RegisterListener files it under Exact(EventName()) and calls OnEvent on
// every announcement of that name.
type Listener interface {
	EventName() string
	OnEvent(payload Payload) error
}

// Handler is an object with a "handle event" capability. It can be
// registered under any pattern with AddHandler.
type Handler interface {
	HandleEvent(payload Payload) error
}

// ListenerFunc is a closure listener.
type ListenerFunc func(payload Payload) error

// ErrorHandler receives listener failures. receiver is the object (or the
// closure) whose invocation failed and payload is the delivered payload with
// the failure stored under FieldError.
type ErrorHandler func(receiver any, payload Payload)
