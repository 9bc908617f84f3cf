package eventbus

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// Kind identifies the target of a registration.
type Kind int

const (
	// KindMethod registrations call a named method on a receiver.
	KindMethod Kind = iota + 1
	// KindFunc registrations call a closure.
	KindFunc
)

func (k Kind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindFunc:
		return "func"
	default:
		return "unknown"
	}
}

// Method names served without reflection.
const (
	onEventMethod     = "OnEvent"
	handleEventMethod = "HandleEvent"
)

var (
	payloadType = reflect.TypeOf(Payload(nil))
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Registration binds a pattern to a listener. It is an immutable value:
// copies returned by lookups compare Equal to the handle returned when the
// listener was added, and any of them can be passed to Remove.
//
// Equality is identity, not structure. Adding the same receiver and method
// under the same pattern twice yields two registrations, and removing one
// handle never removes the other.
type Registration struct {
	id       uuid.UUID
	kind     Kind
	pattern  Pattern
	receiver any
	method   string
	fn       ListenerFunc
}

func newMethodRegistration(pattern Pattern, receiver any, method string) Registration {
	return Registration{
		id:       uuid.New(),
		kind:     KindMethod,
		pattern:  pattern,
		receiver: receiver,
		method:   method,
	}
}

func newFuncRegistration(pattern Pattern, fn ListenerFunc) Registration {
	return Registration{
		id:      uuid.New(),
		kind:    KindFunc,
		pattern: pattern,
		fn:      fn,
	}
}

// ID returns the identity of the registration.
func (r Registration) ID() uuid.UUID { return r.id }

// Kind returns whether the registration targets a method or a closure.
func (r Registration) Kind() Kind { return r.kind }

// Pattern returns the pattern the registration is filed under.
func (r Registration) Pattern() Pattern { return r.pattern }

// Method returns the method name of a method registration.
func (r Registration) Method() string { return r.method }

// Receiver returns the object a failure is attributed to: the receiver of a
// method registration or the closure of a func registration.
func (r Registration) Receiver() any {
	if r.kind == KindFunc {
		return r.fn
	}
	return r.receiver
}

// IsZero reports whether r was not produced by a registry.
func (r Registration) IsZero() bool { return r.id == uuid.Nil }

// Equal reports whether r and other come from the same add call.
func (r Registration) Equal(other Registration) bool { return r.id == other.id }

func (r Registration) String() string {
	if r.kind == KindFunc {
		return fmt.Sprintf("%s -> func", r.pattern)
	}
	return fmt.Sprintf("%s -> %T.%s", r.pattern, r.receiver, r.method)
}

// Respond invokes the listener if the pattern matches name. Failures of the
// listener are returned, panics are not recovered here.
func (r Registration) Respond(name string, payload Payload) error {
	if !r.pattern.Matches(name) {
		return nil
	}
	return r.invoke(payload)
}

// invoke calls the listener unconditionally.
func (r Registration) invoke(payload Payload) error {
	switch r.kind {
	case KindFunc:
		if r.fn == nil {
			return fmt.Errorf("%w: %s", ErrNilListener, r.pattern)
		}
		return r.fn(payload)
	case KindMethod:
		return callMethod(r.receiver, r.method, payload)
	}
	return nil
}

// callMethod resolves method on receiver and calls it with payload.
func callMethod(receiver any, method string, payload Payload) error {
	switch method {
	case onEventMethod:
		if l, ok := receiver.(Listener); ok {
			return l.OnEvent(payload)
		}
	case handleEventMethod:
		if h, ok := receiver.(Handler); ok {
			return h.HandleEvent(payload)
		}
	}

	v := reflect.ValueOf(receiver)
	if !v.IsValid() {
		return fmt.Errorf("%w: %s on nil receiver", ErrMethodNotFound, method)
	}
	m := v.MethodByName(method)
	if !m.IsValid() {
		return fmt.Errorf("%w: %T has no method %s", ErrMethodNotFound, receiver, method)
	}

	t := m.Type()
	if t.NumIn() != 1 || !payloadType.AssignableTo(t.In(0)) ||
		t.NumOut() > 1 || (t.NumOut() == 1 && t.Out(0) != errorType) {
		return fmt.Errorf("%w: %T.%s is %s", ErrMethodSignature, receiver, method, t)
	}

	out := m.Call([]reflect.Value{reflect.ValueOf(payload)})
	if len(out) == 1 {
		if err, ok := out[0].Interface().(error); ok {
			return err
		}
	}
	return nil
}
