package field_simulator

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/LeonardoBeccarini/field_simulator/internal/device"
)

const (
	metricsNamespace = "field_simulator"
	metricsSubsystem = "devices"
)

// Metrics records device events as Prometheus series.
type Metrics struct {
	readings    *prometheus.CounterVec // readings published by sensor kind
	failures    *prometheus.CounterVec // failed reading publishes by sensor kind
	transitions *prometheus.CounterVec // lifecycle transitions by class and target status
	active      *prometheus.GaugeVec   // devices currently active by class
}

// NewMetrics creates the device metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "readings_published_total",
			Help:      "Total sensor readings published",
		}, []string{"kind"}),

		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "publish_failures_total",
			Help:      "Total sensor readings that could not be published",
		}, []string{"kind"}),

		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "transitions_total",
			Help:      "Total device lifecycle transitions",
		}, []string{"class", "to"}),

		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "active",
			Help:      "Devices currently holding a live connection",
		}, []string{"class"}),
	}

	for _, c := range []prometheus.Collector{m.readings, m.failures, m.transitions, m.active} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ReadingPublished(kind string) {
	m.readings.WithLabelValues(kind).Inc()
}

func (m *Metrics) PublishFailed(kind string) {
	m.failures.WithLabelValues(kind).Inc()
}

func (m *Metrics) StatusChanged(class device.Class, from, to device.Status) {
	m.transitions.WithLabelValues(string(class), to.String()).Inc()
	switch {
	case to == device.StatusActive:
		m.active.WithLabelValues(string(class)).Inc()
	case from == device.StatusActive:
		m.active.WithLabelValues(string(class)).Dec()
	}
}
