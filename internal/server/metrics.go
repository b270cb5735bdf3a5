package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"netmonsim/internal/models"
)

// Metrics is a capture sink exporting stream counters to Prometheus.
type Metrics struct {
	packets    *prometheus.CounterVec
	suspicious prometheus.Counter
	alerts     prometheus.Counter
	clears     prometheus.Counter
	expired    prometheus.Counter
}

// NewMetrics creates the stream counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netmonsim",
			Name:      "packets_total",
			Help:      "Synthetic packets emitted, by protocol and source group.",
		}, []string{"protocol", "group"}),
		suspicious: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netmonsim",
			Name:      "suspicious_packets_total",
			Help:      "Emitted packets exchanged with a suspicious source.",
		}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netmonsim",
			Name:      "correlator_alerts_total",
			Help:      "Correlator alert packets emitted after user actions.",
		}),
		clears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netmonsim",
			Name:      "queue_clears_total",
			Help:      "Times the packet list was cleared.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netmonsim",
			Name:      "alerts_expired_total",
			Help:      "Alert packets removed from the queue after their TTL.",
		}),
	}
	reg.MustRegister(m.packets, m.suspicious, m.alerts, m.clears, m.expired)
	return m
}

func (m *Metrics) OnPacket(pkt models.Packet) {
	m.packets.WithLabelValues(pkt.Protocol, string(pkt.Group)).Inc()
	if pkt.Suspicious {
		m.suspicious.Inc()
	}
	if pkt.Alert {
		m.alerts.Inc()
	}
}

func (m *Metrics) OnClear()           { m.clears.Inc() }
func (m *Metrics) OnRemove(id string) { m.expired.Inc() }
