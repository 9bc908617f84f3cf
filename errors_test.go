package eventbus

import (
	"errors"
	"io"
	"testing"
)

func TestErrorCollection(t *testing.T) {
	bus := New()
	collector := NewErrorCollector()
	bus.SetErrorHandler(collector.Handle)

	errorListener := &testErrorListener{}
	bus.RegisterListener(errorListener)
	bus.Announce("test.event", Payload{"data": "error test 1"})
	bus.Announce("test.event", Payload{"data": "error test 2"})

	allErrs := collector.Errors()
	if len(allErrs) != 2 {
		t.Fatalf("Expected 2 errors, got %d", len(allErrs))
	}

	first := allErrs[0]
	if first.EventName != "test.event" {
		t.Errorf("Expected event 'test.event', got '%s'", first.EventName)
	}
	if first.ListenerType != "*eventbus.testErrorListener" {
		t.Errorf("Expected listener type '*eventbus.testErrorListener', got '%s'", first.ListenerType)
	}
	if first.Err.Error() != "test error" {
		t.Errorf("Expected error 'test error', got '%s'", first.Err.Error())
	}

	collector.Clear()
	if n := len(collector.Errors()); n != 0 {
		t.Errorf("Expected 0 errors after Clear(), got %d", n)
	}
}

func TestErrorCollector_FuncReceiver(t *testing.T) {
	bus := New()
	collector := NewErrorCollector()
	bus.SetErrorHandler(collector.Handle)

	bus.On("foo", func(Payload) error { return io.EOF })
	bus.Announce("foo", nil)

	errs := collector.Errors()
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(errs))
	}
	if errs[0].ListenerType != "eventbus.ListenerFunc" {
		t.Errorf("Expected listener type 'eventbus.ListenerFunc', got '%s'", errs[0].ListenerType)
	}
	if !errors.Is(errs[0], io.EOF) {
		t.Error("Expected ListenerError to unwrap to io.EOF")
	}
}

func TestListenerError_Error(t *testing.T) {
	err := &ListenerError{EventName: "foo", ListenerType: "*main.L", Err: errors.New("bad")}

	want := "event 'foo' listener '*main.L': bad"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestPanicError(t *testing.T) {
	err := &PanicError{EventName: "foo", Value: io.ErrUnexpectedEOF}

	if !errors.Is(err, ErrListenerPanic) {
		t.Error("Expected PanicError to match ErrListenerPanic")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("Expected PanicError to unwrap an error panic value")
	}

	plain := &PanicError{EventName: "foo", Value: 42}
	if plain.Unwrap() != nil {
		t.Error("Expected nil Unwrap for a non-error panic value")
	}
	if plain.Error() != "listener panic on event 'foo': 42" {
		t.Errorf("Unexpected message %q", plain.Error())
	}
}
