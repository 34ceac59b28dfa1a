// Package metrics wires the gateway's poll cycle into Prometheus:
// counters and histograms per poll phase, plus queue depth gauges.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	PollsTotal        prometheus.Counter
	PollPhaseErrors   *prometheus.CounterVec
	PhaseDuration     *prometheus.HistogramVec
	MessagesReceived  prometheus.Counter
	MessagesSent      prometheus.Counter
	MessagesDeleted   prometheus.Counter
	OutboundQueueSize prometheus.Gauge
	DeletionQueueSize prometheus.Gauge
}

// New constructs a Metrics bundle and registers it with reg. reg may be
// nil, in which case metrics are tracked but never exported - useful
// for embedders who don't run a /metrics endpoint.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PollsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gammu_gateway",
			Name:      "polls_total",
			Help:      "Number of poll ticks completed.",
		}),
		PollPhaseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gammu_gateway",
			Name:      "phase_errors_total",
			Help:      "Errors observed per poll phase.",
		}, []string{"phase"}),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gammu_gateway",
			Name:      "phase_duration_seconds",
			Help:      "Wall-clock duration of each poll phase.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gammu_gateway",
			Name:      "messages_received_total",
			Help:      "Messages (single or reassembled) delivered to the receive handler.",
		}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gammu_gateway",
			Name:      "messages_sent_total",
			Help:      "Outbound messages transmitted successfully.",
		}),
		MessagesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gammu_gateway",
			Name:      "messages_deleted_total",
			Help:      "Modem storage slots successfully deleted.",
		}),
		OutboundQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gammu_gateway",
			Name:      "outbound_queue_size",
			Help:      "Outbound items currently queued.",
		}),
		DeletionQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gammu_gateway",
			Name:      "deletion_queue_size",
			Help:      "Locations currently awaiting deletion.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.PollsTotal, m.PollPhaseErrors, m.PhaseDuration,
			m.MessagesReceived, m.MessagesSent, m.MessagesDeleted,
			m.OutboundQueueSize, m.DeletionQueueSize,
		)
	}

	return m
}

// ObservePhase records the duration of one poll phase and, if err is
// non-nil, counts it against that phase's error counter.
func (m *Metrics) ObservePhase(phase string, start time.Time, err error) {
	m.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
	if err != nil {
		m.PollPhaseErrors.WithLabelValues(phase).Inc()
	}
}
