package events

import (
	"errors"
	"testing"

	"github.com/foxcpp/gammu-gateway/internal/model"
)

func TestSetAcceptsPlainFuncLiteral(t *testing.T) {
	r := NewRegistry()

	var got model.Message
	err := r.Set("receive", func(msg model.Message, done func(error)) {
		got = msg
		done(nil)
	})
	if err != nil {
		t.Fatalf("Set returned an error for a correctly-shaped func literal: %v", err)
	}

	h, ok := r.Receive()
	if !ok {
		t.Fatal("Receive() reported no handler after a successful Set")
	}
	h(model.Message{From: "+1"}, func(error) {})
	if got.From != "+1" {
		t.Errorf("handler was not actually invoked")
	}
}

func TestSetRejectsWrongSignature(t *testing.T) {
	r := NewRegistry()

	err := r.Set("receive", func(msg model.Message) {})
	if err == nil {
		t.Fatal("expected an error for a mismatched signature")
	}
}

func TestSetRejectsNonFunction(t *testing.T) {
	r := NewRegistry()

	if err := r.Set("receive", "not a function"); err == nil {
		t.Fatal("expected an error for a non-function handler")
	}
}

func TestSetRejectsUnknownEvent(t *testing.T) {
	r := NewRegistry()

	err := r.Set("bogus", func(msg model.Message, done func(error)) {})
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("err = %v, want wrapping ErrUnknownEvent", err)
	}
}

func TestAllSixEventsRegister(t *testing.T) {
	r := NewRegistry()
	handlers := map[string]interface{}{
		"receive":          func(msg model.Message, done func(error)) {},
		"transmit":         func(msg model.Message, result model.SendResult) {},
		"error":            func(err error, msg *model.Message) {},
		"receive_segment":  func(seg model.Segment, done func(error)) {},
		"return_segments":  func(id string, done func(error, []model.Segment)) {},
		"release_segments": func(id string) {},
	}

	for _, name := range Names() {
		if err := r.Set(name, handlers[name]); err != nil {
			t.Errorf("Set(%q) failed: %v", name, err)
		}
	}

	if _, ok := r.Transmit(); !ok {
		t.Error("Transmit() reports unset after registration")
	}
	if _, ok := r.Error(); !ok {
		t.Error("Error() reports unset after registration")
	}
	if _, ok := r.ReceiveSegment(); !ok {
		t.Error("ReceiveSegment() reports unset after registration")
	}
	if _, ok := r.ReturnSegments(); !ok {
		t.Error("ReturnSegments() reports unset after registration")
	}
	if _, ok := r.ReleaseSegments(); !ok {
		t.Error("ReleaseSegments() reports unset after registration")
	}
}

func TestEmitErrorNoopWithoutHandler(t *testing.T) {
	r := NewRegistry()
	// Must not panic.
	r.EmitError(errors.New("boom"), nil)
}
