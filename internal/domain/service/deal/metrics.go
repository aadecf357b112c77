package deal

import (
	"github.com/prometheus/client_golang/prometheus"

	"prodi/internal/domain/value"
)

type Metrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
	memos       *prometheus.CounterVec
}

func NewMetrics(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deals",
			Name:      "created_total",
			Help:      "Number of proposed deals.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deals",
			Name:      "status_transitions_total",
			Help:      "Number of deal status changes by target status.",
		}, []string{"status"}),
		memos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deals",
			Name:      "memos_total",
			Help:      "Ledger memo attempts by outcome.",
		}, []string{"outcome"}),
	}

	registerer.MustRegister(m.created, m.transitions, m.memos)

	return m
}

func (m *Metrics) dealCreated() {
	if m == nil {
		return
	}

	m.created.Inc()
}

func (m *Metrics) statusChanged(status value.DealStatus) {
	if m == nil {
		return
	}

	m.transitions.WithLabelValues(status.String()).Inc()
}

func (m *Metrics) memo(status value.MemoStatus) {
	if m == nil {
		return
	}

	m.memos.WithLabelValues(status.String()).Inc()
}
