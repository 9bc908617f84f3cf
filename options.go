package eventbus

import "github.com/rs/zerolog"

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithMetrics records dispatch statistics into m.
func WithMetrics(m *Metrics) Option {
	return func(b *Bus) {
		b.metrics = m
	}
}

// WithErrorHandler installs the initial error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(b *Bus) {
		b.errorHandler = h
	}
}

// WithPatternScan makes Announce also test the non-exact registrations filed
// under other keys, after the registrations under the announced key. Without
// it a glob or regexp registration only fires for an event named exactly
// after its key.
func WithPatternScan() Option {
	return func(b *Bus) {
		b.patternScan = true
	}
}
