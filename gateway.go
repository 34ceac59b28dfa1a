package gammu

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foxcpp/gammu-gateway/framework/log"
	"github.com/foxcpp/gammu-gateway/internal/events"
	"github.com/foxcpp/gammu-gateway/internal/metrics"
	"github.com/foxcpp/gammu-gateway/internal/segstore"
	"github.com/foxcpp/gammu-gateway/internal/subprocess"
)

// Gateway is the long-lived coordinator between an embedding
// application and the gammu-json helper. Construct one with New.
type Gateway struct {
	opts    Options
	runner  subprocess.Runner
	store   SegmentStore
	events  *events.Registry
	metrics *metrics.Metrics
	log     log.Logger

	mu             sync.Mutex
	outboundQueue  []Outbound
	deletionIndex  map[int]Message
	pendingDeletes map[int]Message

	isPolling int32

	runMu    sync.Mutex
	cancel   context.CancelFunc
	loopDone chan struct{}
}

// New constructs a Gateway from opts. opts' zero-valued fields are
// filled in from DefaultOptions, except MaxTransmitAttempts, where 0
// is kept and means unlimited.
func New(opts Options) *Gateway {
	opts = opts.withDefaults()

	store := opts.SegmentStore
	if store == nil {
		store = segstore.NewMemory()
	}

	return &Gateway{
		opts:           opts,
		runner:         subprocess.NewExec(opts.GammuJSONPath, opts.Prefix, opts.Logger),
		store:          store,
		events:         events.NewRegistry(),
		metrics:        metrics.New(opts.MetricsRegisterer),
		log:            opts.Logger,
		deletionIndex:  make(map[int]Message),
		pendingDeletes: make(map[int]Message),
	}
}

// IsPolling reports whether the scheduler is currently running.
func (g *Gateway) IsPolling() bool {
	return atomic.LoadInt32(&g.isPolling) == 1
}

// Start begins polling: every Options.Interval after the previous tick
// completes, Start runs the receive, delete, and transmit phases in
// order. Start returns immediately; polling happens on its own
// goroutine. Calling Start while already polling returns an error.
func (g *Gateway) Start() error {
	g.runMu.Lock()
	defer g.runMu.Unlock()

	if !atomic.CompareAndSwapInt32(&g.isPolling, 0, 1) {
		return errors.New("gammu: gateway is already polling")
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.loopDone = make(chan struct{})

	go g.scheduleLoop(ctx, g.loopDone)

	return nil
}

// Stop stops polling: is_polling is cleared immediately so no further
// tick is scheduled, but the in-flight tick (if any) runs to
// completion. Stop blocks until that happens or ctx is done. Calling
// Stop when not polling is a no-op.
func (g *Gateway) Stop(ctx context.Context) error {
	g.runMu.Lock()
	cancel := g.cancel
	done := g.loopDone
	wasPolling := atomic.CompareAndSwapInt32(&g.isPolling, 1, 0)
	g.runMu.Unlock()

	if !wasPolling || cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gateway) scheduleLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil || !g.IsPolling() {
			return
		}

		// The tick runs detached from ctx so that Stop's cancel does not
		// kill an in-flight helper or abandon a pending handler callback.
		g.runTick(context.WithoutCancel(ctx))

		select {
		case <-ctx.Done():
			return
		case <-time.After(g.opts.Interval):
		}
	}
}

// runTick drives the three phases in order, isolating each phase's
// errors into the global error event rather than letting one phase's
// failure block the others.
func (g *Gateway) runTick(ctx context.Context) {
	if err := g.receivePhase(ctx); err != nil {
		g.emitGlobalError(err)
	}
	if err := g.deletePhase(ctx); err != nil {
		g.emitGlobalError(err)
	}
	if err := g.transmitPhase(ctx); err != nil {
		g.emitGlobalError(err)
	}
	g.metrics.PollsTotal.Inc()
}

func (g *Gateway) emitGlobalError(err error) {
	g.log.Error("poll phase error", err)
	g.events.EmitError(err, nil)
}
