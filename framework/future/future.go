// Package future provides a simple single-value future used to bridge
// the gateway's callback-based handler protocol (receive,
// receive_segment, and return_segments all take a completion callback)
// back onto goroutines that need to block until that callback fires.
package future

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/foxcpp/gammu-gateway/framework/log"
)

// Future is a container for a (value, error) pair that "will be set
// later" and can be awaited by one or more goroutines.
//
// It should not be copied after first use.
type Future struct {
	mu  sync.RWMutex
	set bool
	val interface{}
	err error

	notify chan struct{}
}

func New() *Future {
	return &Future{notify: make(chan struct{})}
}

// Set stores the (value, error) pair. All currently blocked and future
// Get/GetContext calls observe it. Calling Set more than once is a bug
// in the caller (a handler invoked its callback twice); it is logged
// and otherwise ignored rather than panicking, since it is invoked from
// embedder-supplied code we do not fully trust.
func (f *Future) Set(val interface{}, err error) {
	if f == nil {
		panic("nil future used")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.set {
		stack := debug.Stack()
		log.Println("future: Set called more than once", string(stack))
		return
	}

	f.set = true
	f.val = val
	f.err = err
	close(f.notify)
}

func (f *Future) Get() (interface{}, error) {
	return f.GetContext(context.Background())
}

func (f *Future) GetContext(ctx context.Context) (interface{}, error) {
	if f == nil {
		panic("nil future used")
	}

	f.mu.RLock()
	if f.set {
		val, err := f.val, f.err
		f.mu.RUnlock()
		return val, err
	}
	f.mu.RUnlock()

	select {
	case <-f.notify:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.val, f.err
}
