package bridge

import (
	"errors"
	"testing"

	"github.com/asaskevich/EventBus"

	"github.com/openframebox/eventbus"
)

func TestMirror(t *testing.T) {
	bus := eventbus.New()
	target := EventBus.New()

	var got []map[string]any
	if err := target.Subscribe("mirrored", func(payload map[string]any) {
		got = append(got, payload)
	}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	reg := Mirror(bus, eventbus.Exact("user.created"), target, "mirrored")
	bus.Announce("user.created", eventbus.Payload{"id": 7})

	if len(got) != 1 {
		t.Fatalf("Expected 1 mirrored message, got %d", len(got))
	}
	if got[0]["id"] != 7 || got[0][eventbus.FieldEventName] != "user.created" {
		t.Errorf("Unexpected mirrored payload %v", got[0])
	}

	bus.Remove(reg)
	bus.Announce("user.created", nil)
	if len(got) != 1 {
		t.Errorf("Expected mirroring to stop after Remove, got %d messages", len(got))
	}
}

func TestMirror_BadSubscriberReported(t *testing.T) {
	bus := eventbus.New()
	collector := eventbus.NewErrorCollector()
	bus.SetErrorHandler(collector.Handle)

	target := EventBus.New()
	target.Subscribe("mirrored", func(n int) {})

	Mirror(bus, eventbus.Exact("foo"), target, "mirrored")
	if err := bus.Announce("foo", nil); err != nil {
		t.Fatalf("Announce: %v", err)
	}

	errs := collector.Errors()
	if len(errs) != 1 || !errors.Is(errs[0].Err, eventbus.ErrListenerPanic) {
		t.Errorf("Expected one listener panic, got %v", errs)
	}
}

func TestForward(t *testing.T) {
	source := EventBus.New()
	bus := eventbus.New()

	var got eventbus.Payload
	bus.On("order.paid", func(p eventbus.Payload) error {
		got = p
		return nil
	})

	f, err := Forward(source, "payments", bus, "order.paid")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if f.Topic() != "payments" {
		t.Errorf("Expected topic 'payments', got '%s'", f.Topic())
	}

	source.Publish("payments", map[string]any{"amount": 10})
	if got == nil || got["amount"] != 10 || got.EventName() != "order.paid" {
		t.Fatalf("Unexpected forwarded payload %v", got)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got = nil
	source.Publish("payments", map[string]any{"amount": 20})
	if got != nil {
		t.Error("Expected no delivery after Close")
	}
}

func TestForward_InvalidName(t *testing.T) {
	_, err := Forward(EventBus.New(), "payments", eventbus.New(), "")
	if !errors.Is(err, eventbus.ErrInvalidEventName) {
		t.Errorf("Expected ErrInvalidEventName, got %v", err)
	}
}

// EventBus holds its lock while calling subscribers, so the forwarding
// source and the mirror target must be different buses.
func TestForward_ThroughBus(t *testing.T) {
	upstream := EventBus.New()
	downstream := EventBus.New()
	bus := eventbus.New()

	if _, err := Forward(upstream, "in", bus, "ping"); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	Mirror(bus, eventbus.Exact("ping"), downstream, "out")

	var out map[string]any
	downstream.Subscribe("out", func(p map[string]any) {
		out = p
	})

	upstream.Publish("in", map[string]any{"seq": 1})
	if out == nil || out["seq"] != 1 || out[eventbus.FieldEventName] != "ping" {
		t.Errorf("Unexpected payload %v", out)
	}
}

func TestForward_CloseKeepsOtherForwarders(t *testing.T) {
	source := EventBus.New()
	first := eventbus.New()
	second := eventbus.New()

	var firstGot, secondGot int
	first.On("in", func(eventbus.Payload) error {
		firstGot++
		return nil
	})
	second.On("in", func(eventbus.Payload) error {
		secondGot++
		return nil
	})

	f1, err := Forward(source, "t", first, "in")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	f2, err := Forward(source, "t", second, "in")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	source.Publish("t", map[string]any{})
	if firstGot != 1 || secondGot != 1 {
		t.Fatalf("Expected one delivery each, got %d and %d", firstGot, secondGot)
	}

	if err := f2.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := f2.Close(); err != nil {
		t.Errorf("Second Close: %v", err)
	}
	source.Publish("t", map[string]any{})
	if firstGot != 2 || secondGot != 1 {
		t.Errorf("Expected only the open forwarder to deliver, got %d and %d", firstGot, secondGot)
	}

	if err := f1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if source.HasCallback("t") {
		t.Error("Expected the topic subscription to be dropped with the last forwarder")
	}
	source.Publish("t", map[string]any{})
	if firstGot != 2 || secondGot != 1 {
		t.Errorf("Expected no delivery after closing both, got %d and %d", firstGot, secondGot)
	}
}
