package eventbus

import (
	"runtime/debug"
)

// Announce delivers payload to every listener filed under name whose pattern
// matches name, in registration order. The delivered payload is a copy of
// payload with FieldEventName set to name.
//
// Listener failures never stop the fan-out and are never returned: each one
// is passed to the error handler, or dropped when none is installed. A panic
// raised by the error handler itself is not recovered.
//
// The only error is ErrInvalidEventName.
func (b *Bus) Announce(name string, payload Payload) error {
	key, err := CanonicalName(name)
	if err != nil {
		return err
	}

	full := payload.With(FieldEventName, name)

	regs := b.registry.candidates(key, b.patternScan)
	b.metrics.announced(len(regs) > 0)
	if len(regs) == 0 {
		return nil
	}

	for _, reg := range regs {
		b.passEventTo(reg, name, full)
	}
	return nil
}

// passEventTo invokes one registration and routes its failure.
func (b *Bus) passEventTo(reg Registration, name string, payload Payload) {
	err := b.respond(reg, name, payload)
	if err == nil {
		return
	}

	handler := b.currentErrorHandler()
	b.metrics.failed(handler != nil)
	if handler == nil {
		b.logger.Debug().
			Err(err).
			Str("event", name).
			Stringer("registration", reg.id).
			Msg("listener failed, no error handler")
		return
	}

	b.logger.Warn().
		Err(err).
		Str("event", name).
		Stringer("registration", reg.id).
		Msg("listener failed")
	handler(reg.Receiver(), payload.With(FieldError, err))
}

// respond matches and calls reg inside its own recover boundary, so a
// panicking pattern predicate is reported like a panicking listener.
func (b *Bus) respond(reg Registration, name string, payload Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				EventName: name,
				Value:     r,
				Stack:     string(debug.Stack()),
			}
		}
	}()

	if !reg.pattern.Matches(name) {
		return nil
	}
	b.metrics.invoked()
	return reg.invoke(payload)
}
