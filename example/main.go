package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/asaskevich/EventBus"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openframebox/eventbus"
	"github.com/openframebox/eventbus/bridge"
	"github.com/openframebox/eventbus/config"
)

// --- Listener Example ---

// WelcomeListener implements eventbus.Listener
type WelcomeListener struct{}

func (wl *WelcomeListener) EventName() string {
	return "user.created"
}

func (wl *WelcomeListener) OnEvent(payload eventbus.Payload) error {
	fmt.Printf("[LISTENER] Welcome mail for user %v (%s)\n", payload["userId"], payload.EventName())
	return nil
}

// --- Method Registration Example ---

// AuditLog receives events through a named method
type AuditLog struct {
	entries int
}

func (a *AuditLog) Record(payload eventbus.Payload) {
	a.entries++
	fmt.Printf("[AUDIT] #%d %s %v\n", a.entries, payload.EventName(), payload["userId"])
}

// --- Error Handling Example ---

// ErrorListener demonstrates error reporting
type ErrorListener struct{}

func (el *ErrorListener) EventName() string {
	return "user.deleted"
}

func (el *ErrorListener) OnEvent(payload eventbus.Payload) error {
	fmt.Printf("[ERROR-LISTENER] Processing event: %s (UserID: %v)\n", payload.EventName(), payload["userId"])
	return errors.New("simulated error during event processing")
}

func main() {
	configPath := flag.String("config", "", "path to a TOML or YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	opts, err := cfg.Options(os.Stderr, prometheus.NewRegistry())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== EventBus Example ===")

	bus := eventbus.New(opts...)
	collector := eventbus.NewErrorCollector()
	bus.SetErrorHandler(collector.Handle)

	// Listeners, a method registration and a closure
	bus.RegisterListener(&WelcomeListener{}, &ErrorListener{})
	audit := &AuditLog{}
	bus.AddMethod(eventbus.Exact("user.created"), audit, "Record")
	bus.AddMethod(eventbus.Exact("user.deleted"), audit, "Record")
	closure := bus.On("user.created", func(p eventbus.Payload) error {
		fmt.Printf("[CLOSURE] user.created payload: %v\n", map[string]any(p))
		return nil
	})

	fmt.Println("\n--- Announce ---")
	bus.Announce("user.created", eventbus.Payload{"userId": 123})
	bus.Announce("user.deleted", eventbus.Payload{"userId": 456})

	fmt.Println("\n--- Remove ---")
	bus.Remove(closure)
	bus.Announce("user.created", eventbus.Payload{"userId": 789})

	fmt.Println("\n--- Mirror to EventBus ---")
	external := EventBus.New()
	external.Subscribe("users", func(p map[string]any) {
		fmt.Printf("[EVENTBUS] %s %v\n", p[eventbus.FieldEventName], p["userId"])
	})
	bridge.Mirror(bus, eventbus.Exact("user.created"), external, "users")
	bus.Announce("user.created", eventbus.Payload{"userId": 1000})

	fmt.Println("\n--- Error Summary ---")
	for _, err := range collector.Errors() {
		fmt.Printf("  - %s\n", err)
	}

	bus.Clear()
	fmt.Printf("Registrations after Clear: %d\n", bus.Registry().Len())

	fmt.Println("\n=== Example Complete ===")
}
