package eventbus

// Reserved payload fields.
const (
	// FieldEventName holds the announced event name. It is always set by
	// the bus and overrides any caller supplied value.
	FieldEventName = "event_name"

	// FieldError holds the failure passed to the error handler.
	FieldError = "error"
)

// Payload is the set of named fields delivered with an event.
type Payload map[string]any

// Clone returns a shallow copy of the payload. A nil payload clones to an
// empty, non-nil one.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// With returns a copy of the payload with key set to value.
func (p Payload) With(key string, value any) Payload {
	out := p.Clone()
	out[key] = value
	return out
}

// EventName returns the event_name field, or "" if it is absent.
func (p Payload) EventName() string {
	name, _ := p[FieldEventName].(string)
	return name
}

// Err returns the error field, or nil if it is absent.
func (p Payload) Err() error {
	err, _ := p[FieldError].(error)
	return err
}
