package gammu

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/foxcpp/gammu-gateway/framework/log"
)

// Options configures a Gateway. New fills zero-valued fields from
// DefaultOptions, except MaxTransmitAttempts, whose zero value means
// unlimited; start from DefaultOptions to get the default of 2.
type Options struct {
	// GammuJSONPath is the gammu-json executable to spawn; resolved
	// via PATH if not absolute. Defaults to "gammu-json".
	GammuJSONPath string

	// Interval between the end of one poll tick and the start of the
	// next. Defaults to 5 seconds (spec: "interval", given in seconds).
	Interval time.Duration

	// TransmitBatchSize bounds the argv length of a single `send`
	// invocation. At most TransmitBatchSize-1 outbound items are
	// interleaved into one batch; the off-by-one is intentional, not a
	// bug. Defaults to 64.
	TransmitBatchSize int

	// DeleteBatchSize bounds the argv length of a single `delete`
	// invocation the same way. Defaults to 1024.
	DeleteBatchSize int

	// MaxTransmitAttempts is tx_attempt_limit. 0 means unlimited.
	// Defaults to 2.
	MaxTransmitAttempts int

	// Debug enables verbose diagnostic logging, including the
	// helper's stderr.
	Debug bool

	// Prefix, if set, prepends "<prefix>/bin" to PATH in the
	// environment used to spawn gammu-json.
	Prefix string

	// SegmentStore persists inbound multi-part segments. Defaults to
	// an in-memory store (internal/segstore.Memory) when nil.
	SegmentStore SegmentStore

	// Logger receives structured gateway diagnostics. Defaults to
	// framework/log.DefaultLogger when zero.
	Logger log.Logger

	// MetricsRegisterer, if set, receives the gateway's Prometheus
	// collectors. Left nil, metrics are tracked in-process but never
	// exported.
	MetricsRegisterer prometheus.Registerer
}

// DefaultOptions returns the gateway's documented default option set.
func DefaultOptions() Options {
	return Options{
		GammuJSONPath:       "gammu-json",
		Interval:            5 * time.Second,
		TransmitBatchSize:   64,
		DeleteBatchSize:     1024,
		MaxTransmitAttempts: 2,
	}
}

// withDefaults fills in zero-valued fields of o with DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()

	if o.GammuJSONPath == "" {
		o.GammuJSONPath = d.GammuJSONPath
	}
	if o.Interval <= 0 {
		o.Interval = d.Interval
	}
	if o.TransmitBatchSize <= 0 {
		o.TransmitBatchSize = d.TransmitBatchSize
	}
	if o.DeleteBatchSize <= 0 {
		o.DeleteBatchSize = d.DeleteBatchSize
	}
	// MaxTransmitAttempts is intentionally left as given: 0 means
	// "unlimited," a meaningful value distinct from "unset". Callers
	// who want the default of 2 should start from DefaultOptions()
	// rather than a bare Options{}.
	if o.Logger.Out == nil {
		o.Logger = log.Logger{Out: log.DefaultLogger.Out, Name: "gammu", Debug: o.Debug}
	} else {
		o.Logger.Debug = o.Debug
	}

	return o
}
