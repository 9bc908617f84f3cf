package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of a bus. A nil *Metrics records
// nothing.
type Metrics struct {
	announcements prometheus.Counter
	unmatched     prometheus.Counter
	invocations   prometheus.Counter
	failures      *prometheus.CounterVec
	registrations prometheus.Gauge
}

// NewMetrics creates the bus collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		announcements: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "announcements_total",
			Help:      "Total number of announced events",
		}),
		unmatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "announcements_unmatched_total",
			Help:      "Announced events with no registrations under their key",
		}),
		invocations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listener_invocations_total",
			Help:      "Total number of listener invocations",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listener_failures_total",
			Help:      "Listener failures, by whether an error handler received them",
		}, []string{"reported"}),
		registrations: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registrations",
			Help:      "Number of registrations in the registry",
		}),
	}
}

func (m *Metrics) announced(matched bool) {
	if m == nil {
		return
	}
	m.announcements.Inc()
	if !matched {
		m.unmatched.Inc()
	}
}

func (m *Metrics) invoked() {
	if m == nil {
		return
	}
	m.invocations.Inc()
}

func (m *Metrics) failed(reported bool) {
	if m == nil {
		return
	}
	if reported {
		m.failures.WithLabelValues("true").Inc()
	} else {
		m.failures.WithLabelValues("false").Inc()
	}
}

func (m *Metrics) setRegistrations(n int) {
	if m == nil {
		return
	}
	m.registrations.Set(float64(n))
}
