package world

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the gateway's operational counters. All methods are
// nil-safe so wiring metrics stays optional in tests.
type Metrics struct {
	openConnections    prometheus.Gauge
	activeParticipants prometheus.Gauge
	broadcastsTotal    *prometheus.CounterVec
	droppedFrames      prometheus.Counter
	rejectedFrames     *prometheus.CounterVec
}

// NewMetrics registers the world metrics on reg; nil reg disables metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		openConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arena",
			Subsystem: "gateway",
			Name:      "open_connections",
			Help:      "Currently open WebSocket connections.",
		}),
		activeParticipants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arena",
			Subsystem: "world",
			Name:      "active_participants",
			Help:      "Participants currently registered in the world.",
		}),
		broadcastsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Subsystem: "world",
			Name:      "broadcasts_total",
			Help:      "Broadcast events requested, by event type.",
		}, []string{"event"}),
		droppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arena",
			Subsystem: "gateway",
			Name:      "dropped_frames_total",
			Help:      "Outbound frames dropped because a client send queue was full.",
		}),
		rejectedFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Subsystem: "gateway",
			Name:      "rejected_frames_total",
			Help:      "Inbound frames dropped, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(
		m.openConnections,
		m.activeParticipants,
		m.broadcastsTotal,
		m.droppedFrames,
		m.rejectedFrames,
	)
	return m
}

func (m *Metrics) ConnOpened() {
	if m != nil {
		m.openConnections.Inc()
	}
}

func (m *Metrics) ConnClosed() {
	if m != nil {
		m.openConnections.Dec()
	}
}

func (m *Metrics) ParticipantJoined() {
	if m != nil {
		m.activeParticipants.Inc()
	}
}

func (m *Metrics) ParticipantLeft() {
	if m != nil {
		m.activeParticipants.Dec()
	}
}

func (m *Metrics) IncBroadcast(event string) {
	if m != nil {
		m.broadcastsTotal.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) IncDropped() {
	if m != nil {
		m.droppedFrames.Inc()
	}
}

func (m *Metrics) IncRejected(reason string) {
	if m != nil {
		m.rejectedFrames.WithLabelValues(reason).Inc()
	}
}
