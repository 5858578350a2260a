package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the relay.
type Metrics struct {
	ReportsReceived *prometheus.CounterVec // labels: type
	LocationUpdates prometheus.Counter

	NotificationsQueued prometheus.Counter
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter

	// 1 while a hazard event is open, 0 otherwise.
	EventActive prometheus.Gauge
}

// NewMetrics creates and registers all relay metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReportsReceived,
		m.LocationUpdates,
		m.NotificationsQueued,
		m.NotificationsSent,
		m.NotificationsFailed,
		m.EventActive,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default
// registry, to avoid "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_relay",
			Name:      "reports_received_total",
			Help:      "Hazard reports accepted, by event type.",
		}, []string{"type"}),
		LocationUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_relay",
			Name:      "location_updates_total",
			Help:      "User location shares processed.",
		}),
		NotificationsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_relay",
			Name:      "notifications_queued_total",
			Help:      "Notifications pushed to the delivery queue.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_relay",
			Name:      "notifications_sent_total",
			Help:      "Notifications delivered to the chat platform.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_relay",
			Name:      "notifications_failed_total",
			Help:      "Notifications dropped after exhausting retries.",
		}),
		EventActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_relay",
			Name:      "event_active",
			Help:      "1 while a hazard event is open, 0 otherwise.",
		}),
	}
}
