// Package eventbus provides a synchronous, in-process publish/subscribe bus.
//
// Listeners are filed under a Pattern, either as a closure or as a
// receiver plus method name. Announce fans an event out to the listeners
// filed under the event's name, in registration order:
//   - Payload always carries the event name under "event_name"
//   - Each listener is tested against its own pattern before it is called
//   - A failing or panicking listener never stops the fan-out
//   - Failures go to a single error handler, or are dropped if none is set
//
// Basic usage:
//
//	bus := eventbus.New()
//	bus.On("user.created", func(p eventbus.Payload) error {
//		fmt.Println(p["id"])
//		return nil
//	})
//	bus.Announce("user.created", eventbus.Payload{"id": 42})
package eventbus

import (
	"sync"

	"github.com/rs/zerolog"
)

// Bus owns a registry and the error handler slot.
// It is safe for concurrent use; listeners run in the announcing goroutine.
type Bus struct {
	registry     *Registry
	handlerMu    sync.RWMutex
	errorHandler ErrorHandler
	logger       zerolog.Logger
	metrics      *Metrics
	patternScan  bool
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		registry: NewRegistry(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry returns the registration table of the bus.
func (b *Bus) Registry() *Registry {
	return b.registry
}

// On registers fn for the event named name.
func (b *Bus) On(name string, fn ListenerFunc) Registration {
	return b.AddFunc(Exact(name), fn)
}

// AddFunc registers fn under pattern.
func (b *Bus) AddFunc(pattern Pattern, fn ListenerFunc) Registration {
	reg := b.registry.AddFunc(pattern, fn)
	b.registered(reg)
	return reg
}

// AddMethod registers receiver.method under pattern. A missing method or a
// method that does not take a Payload is accepted here and reported as a
// failure each time the registration is dispatched.
func (b *Bus) AddMethod(pattern Pattern, receiver any, method string) Registration {
	reg := b.registry.AddMethod(pattern, receiver, method)
	b.registered(reg)
	return reg
}

// AddHandler registers h.HandleEvent under pattern.
func (b *Bus) AddHandler(pattern Pattern, h Handler) Registration {
	return b.AddMethod(pattern, h, handleEventMethod)
}

// RegisterListener registers one or more listeners, each under
// Exact(EventName()).
func (b *Bus) RegisterListener(listeners ...Listener) []Registration {
	regs := make([]Registration, 0, len(listeners))
	for _, listener := range listeners {
		regs = append(regs, b.AddMethod(Exact(listener.EventName()), listener, onEventMethod))
	}
	return regs
}

func (b *Bus) registered(reg Registration) {
	b.metrics.setRegistrations(b.registry.Len())
	b.logger.Debug().
		Str("key", reg.pattern.Key()).
		Stringer("kind", reg.kind).
		Stringer("registration", reg.id).
		Msg("listener registered")
}

// SetErrorHandler replaces the error handler. A nil h uninstalls it, after
// which listener failures are dropped silently.
func (b *Bus) SetErrorHandler(h ErrorHandler) {
	b.handlerMu.Lock()
	defer b.handlerMu.Unlock()
	b.errorHandler = h
}

func (b *Bus) currentErrorHandler() ErrorHandler {
	b.handlerMu.RLock()
	defer b.handlerMu.RUnlock()
	return b.errorHandler
}

// Remove deletes reg. Removing an unknown or already removed registration
// does nothing.
func (b *Bus) Remove(reg Registration) {
	if !b.registry.Remove(reg) {
		return
	}
	b.metrics.setRegistrations(b.registry.Len())
	b.logger.Debug().
		Str("key", reg.pattern.Key()).
		Stringer("registration", reg.id).
		Msg("listener removed")
}

// RemoveEvent deletes every registration filed under exactly key.
func (b *Bus) RemoveEvent(key string) {
	if !b.registry.RemoveKey(key) {
		return
	}
	b.metrics.setRegistrations(b.registry.Len())
	b.logger.Debug().Str("key", key).Msg("event removed")
}

// ListenersFor returns the registrations filed under exactly key.
func (b *Bus) ListenersFor(key string) []Registration {
	return b.registry.ListenersFor(key)
}

// LastListener returns the most recent registration filed under key.
func (b *Bus) LastListener(key string) (Registration, bool) {
	return b.registry.Last(key)
}

// Clear removes all registrations. The error handler is kept.
func (b *Bus) Clear() {
	b.registry.Clear()
	b.metrics.setRegistrations(0)
	b.logger.Debug().Msg("registry cleared")
}
