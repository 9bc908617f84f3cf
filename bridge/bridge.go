// Package bridge connects an eventbus.Bus to an asaskevich/EventBus bus.
//
// Mirror copies announcements out to an EventBus topic; Forward announces
// everything published on an EventBus topic into a Bus. Both directions are
// synchronous.
package bridge

import (
	"fmt"
	"sync"

	"github.com/asaskevich/EventBus"

	"github.com/openframebox/eventbus"
)

// Mirror registers a listener under pattern that publishes each delivered
// payload onto topic of target as a single map[string]any argument.
// Remove the returned registration from bus to stop mirroring.
//
// A target subscriber whose signature does not accept the payload makes
// EventBus panic; the bus reports that like any other listener failure.
// EventBus holds its lock while running subscribers, so target must not be
// the source of a Forwarder feeding the same announcement.
func Mirror(bus *eventbus.Bus, pattern eventbus.Pattern, target EventBus.Bus, topic string) eventbus.Registration {
	return bus.AddFunc(pattern, func(payload eventbus.Payload) error {
		target.Publish(topic, map[string]any(payload))
		return nil
	})
}

// Forwarder announces messages published on an EventBus topic.
type Forwarder struct {
	bus    *eventbus.Bus
	name   string
	fan    *fanout
	closed bool
}

// subscription identifies one EventBus topic on one EventBus instance.
type subscription struct {
	source EventBus.Bus
	topic  string
}

// fanout is the single EventBus subscriber shared by every forwarder of a
// (source, topic) pair. EventBus unsubscribes handlers by function pointer,
// so each forwarder cannot own a closure of its own.
type fanout struct {
	sub     subscription
	handler func(map[string]any)

	mu         sync.Mutex
	forwarders []*Forwarder
}

var (
	fanoutsMu sync.Mutex
	fanouts   = make(map[subscription]*fanout)
)

func newFanout(sub subscription) *fanout {
	fan := &fanout{sub: sub}
	fan.handler = func(payload map[string]any) {
		fan.mu.Lock()
		forwarders := make([]*Forwarder, len(fan.forwarders))
		copy(forwarders, fan.forwarders)
		fan.mu.Unlock()

		for _, f := range forwarders {
			// name was validated by Forward; listener failures stay inside bus.
			_ = f.bus.Announce(f.name, payload)
		}
	}
	return fan
}

// Forward subscribes to topic on source and announces every message
// published there as event name on bus. Publishers must pass a single
// map[string]any (or eventbus.Payload) argument.
//
// Forwarders sharing a source and topic are served by one EventBus
// subscription and run in the order they were created.
func Forward(source EventBus.Bus, topic string, bus *eventbus.Bus, name string) (*Forwarder, error) {
	if _, err := eventbus.CanonicalName(name); err != nil {
		return nil, fmt.Errorf("forward %s: %w", topic, err)
	}

	fanoutsMu.Lock()
	defer fanoutsMu.Unlock()

	sub := subscription{source: source, topic: topic}
	fan, ok := fanouts[sub]
	if !ok {
		fan = newFanout(sub)
		if err := source.Subscribe(topic, fan.handler); err != nil {
			return nil, fmt.Errorf("forward %s: %w", topic, err)
		}
		fanouts[sub] = fan
	}

	f := &Forwarder{bus: bus, name: name, fan: fan}
	fan.mu.Lock()
	fan.forwarders = append(fan.forwarders, f)
	fan.mu.Unlock()
	return f, nil
}

// Topic returns the EventBus topic the forwarder listens on.
func (f *Forwarder) Topic() string {
	return f.fan.sub.topic
}

// Close stops this forwarder. Other forwarders on the same topic keep
// running; the EventBus subscription is dropped with the last of them.
// Closing twice is a no-op.
func (f *Forwarder) Close() error {
	fanoutsMu.Lock()
	defer fanoutsMu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	fan := f.fan
	fan.mu.Lock()
	for i, other := range fan.forwarders {
		if other == f {
			fan.forwarders = append(fan.forwarders[:i:i], fan.forwarders[i+1:]...)
			break
		}
	}
	left := len(fan.forwarders)
	fan.mu.Unlock()

	if left > 0 {
		return nil
	}
	delete(fanouts, fan.sub)
	return fan.sub.source.Unsubscribe(fan.sub.topic, fan.handler)
}
