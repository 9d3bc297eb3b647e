// Package metrics records store and persistence activity for Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what the store and the storage adapter report into.
type Recorder interface {
	RecordMutation(kind string)
	RecordPersistenceFailure(operation string)
	SetCollectionSizes(active, trash int)
}

// Prometheus implements Recorder on top of a prometheus registry.
type Prometheus struct {
	mutations           *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	activeExpenses      prometheus.Gauge
	trashedExpenses     prometheus.Gauge
}

// NewPrometheus registers the collectors with reg. Passing
// prometheus.DefaultRegisterer exposes them on the default /metrics handler.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartspend_store_mutations_total",
				Help: "Total number of effective store mutations",
			},
			[]string{"kind"},
		),
		persistenceFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartspend_persistence_failures_total",
				Help: "Total number of failed key-value reads and writes",
			},
			[]string{"operation"},
		),
		activeExpenses: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "smartspend_active_expenses",
				Help: "Number of expenses in the active collection",
			},
		),
		trashedExpenses: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "smartspend_trashed_expenses",
				Help: "Number of expenses in the trash collection",
			},
		),
	}
	reg.MustRegister(m.mutations, m.persistenceFailures, m.activeExpenses, m.trashedExpenses)
	return m
}

func (m *Prometheus) RecordMutation(kind string) {
	m.mutations.WithLabelValues(kind).Inc()
}

func (m *Prometheus) RecordPersistenceFailure(operation string) {
	m.persistenceFailures.WithLabelValues(operation).Inc()
}

func (m *Prometheus) SetCollectionSizes(active, trash int) {
	m.activeExpenses.Set(float64(active))
	m.trashedExpenses.Set(float64(trash))
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordMutation(string)           {}
func (Noop) RecordPersistenceFailure(string) {}
func (Noop) SetCollectionSizes(int, int)     {}
