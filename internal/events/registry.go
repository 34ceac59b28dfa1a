// Package events implements the gateway's Event Dispatcher / Handler
// Registry: a fixed table of six lifecycle events the embedder may
// attach callbacks to, each with its own Go func signature. Setting a
// handler with the wrong signature, or for a name outside the table,
// returns an error rather than panicking, since registration is driven
// by embedder input.
package events

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/foxcpp/gammu-gateway/internal/model"
)

// Handler function shapes for each recognized event.
type (
	ReceiveHandler         func(msg model.Message, done func(error))
	TransmitHandler        func(msg model.Message, result model.SendResult)
	ErrorHandler           func(err error, msg *model.Message)
	ReceiveSegmentHandler  func(seg model.Segment, done func(error))
	ReturnSegmentsHandler  func(id string, done func(error, []model.Segment))
	ReleaseSegmentsHandler func(id string)
)

// ErrUnknownEvent is returned by Set when asked to register a handler
// for a name outside the fixed six-event table.
var ErrUnknownEvent = errors.New("events: unknown event name")

// Registry holds at most one handler per recognized event.
type Registry struct {
	mu sync.RWMutex

	receive         ReceiveHandler
	transmit        TransmitHandler
	errorH          ErrorHandler
	receiveSegment  ReceiveSegmentHandler
	returnSegments  ReturnSegmentsHandler
	releaseSegments ReleaseSegmentsHandler
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Names lists the six recognized event names in canonical order.
func Names() []string {
	return []string{
		"receive", "transmit", "error",
		"receive_segment", "return_segments", "release_segments",
	}
}

// Set registers handler for event. handler must be a function whose
// signature matches the Go func type documented for that event name
// (see the Handler types above) — a plain func literal works, it need
// not be declared with the named handler type. A signature mismatch,
// a non-function value, or an unrecognized event name is a
// registration error rather than a panic, since it is driven by
// embedder input.
func (r *Registry) Set(event string, handler interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event {
	case "receive":
		h, ok := asFunc[ReceiveHandler](handler)
		if !ok {
			return wrongSignature(event, "func(model.Message, func(error))")
		}
		r.receive = h
	case "transmit":
		h, ok := asFunc[TransmitHandler](handler)
		if !ok {
			return wrongSignature(event, "func(model.Message, model.SendResult)")
		}
		r.transmit = h
	case "error":
		h, ok := asFunc[ErrorHandler](handler)
		if !ok {
			return wrongSignature(event, "func(error, *model.Message)")
		}
		r.errorH = h
	case "receive_segment":
		h, ok := asFunc[ReceiveSegmentHandler](handler)
		if !ok {
			return wrongSignature(event, "func(model.Segment, func(error))")
		}
		r.receiveSegment = h
	case "return_segments":
		h, ok := asFunc[ReturnSegmentsHandler](handler)
		if !ok {
			return wrongSignature(event, "func(string, func(error, []model.Segment))")
		}
		r.returnSegments = h
	case "release_segments":
		h, ok := asFunc[ReleaseSegmentsHandler](handler)
		if !ok {
			return wrongSignature(event, "func(string)")
		}
		r.releaseSegments = h
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}

	return nil
}

// asFunc reports whether handler's underlying function signature
// matches T, converting it via reflection if so. A direct type
// assertion would reject an ordinary func literal here: its dynamic
// type is the literal's own unnamed function type, never the named
// handler type, even though the two share an identical underlying
// type.
func asFunc[T any](handler interface{}) (T, bool) {
	var zero T
	v := reflect.ValueOf(handler)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return zero, false
	}
	target := reflect.TypeOf(zero)
	if !v.Type().ConvertibleTo(target) {
		return zero, false
	}
	return v.Convert(target).Interface().(T), true
}

func wrongSignature(event, want string) error {
	return fmt.Errorf("events: handler for %q must have type %s", event, want)
}

func (r *Registry) Receive() (ReceiveHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.receive, r.receive != nil
}

func (r *Registry) Transmit() (TransmitHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.transmit, r.transmit != nil
}

func (r *Registry) Error() (ErrorHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.errorH, r.errorH != nil
}

func (r *Registry) ReceiveSegment() (ReceiveSegmentHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.receiveSegment, r.receiveSegment != nil
}

func (r *Registry) ReturnSegments() (ReturnSegmentsHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.returnSegments, r.returnSegments != nil
}

func (r *Registry) ReleaseSegments() (ReleaseSegmentsHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.releaseSegments, r.releaseSegments != nil
}

// EmitError invokes the error handler, if any, with scope recorded via
// the err's Fields() when it implements model.Fielder. A missing error
// handler is silently a no-op.
func (r *Registry) EmitError(err error, msg *model.Message) {
	if h, ok := r.Error(); ok {
		h(err, msg)
	}
}

// EmitReleaseSegments invokes the release_segments handler, if any.
func (r *Registry) EmitReleaseSegments(id string) {
	if h, ok := r.ReleaseSegments(); ok {
		h(id)
	}
}
