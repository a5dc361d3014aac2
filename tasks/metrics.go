package tasks

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports pool activity. A nil *Metrics records nothing.
type Metrics struct {
	submittedTotal *prometheus.CounterVec
	rejectedTotal  *prometheus.CounterVec
	completedTotal *prometheus.CounterVec
	running        *prometheus.GaugeVec
}

// NewMetrics registers the pool collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submittedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filemanager",
			Subsystem: "tasks",
			Name:      "submitted_total",
			Help:      "Background tasks accepted by the pool.",
		}, []string{"kind"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filemanager",
			Subsystem: "tasks",
			Name:      "rejected_total",
			Help:      "Background tasks refused because the queue was full.",
		}, []string{"kind"}),
		completedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filemanager",
			Subsystem: "tasks",
			Name:      "completed_total",
			Help:      "Background tasks that reached a final state.",
		}, []string{"kind", "status"}),
		running: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "filemanager",
			Subsystem: "tasks",
			Name:      "running",
			Help:      "Background tasks currently executing.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.submittedTotal, m.rejectedTotal, m.completedTotal, m.running)
	return m
}

func (m *Metrics) submitted(kind string) {
	if m != nil {
		m.submittedTotal.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) rejected(kind string) {
	if m != nil {
		m.rejectedTotal.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) started(kind string) {
	if m != nil {
		m.running.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) stopped(kind string) {
	if m != nil {
		m.running.WithLabelValues(kind).Dec()
	}
}

func (m *Metrics) completed(kind string, status Status) {
	if m != nil {
		m.completedTotal.WithLabelValues(kind, string(status)).Inc()
	}
}
