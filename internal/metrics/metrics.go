// Package metrics provides Prometheus metrics for phase computation and
// dependency edits.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PhaseComputations counts full phase computations over a snapshot.
	// Labels: result (ok, cycle)
	PhaseComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "epicboard",
			Subsystem: "phases",
			Name:      "computations_total",
			Help:      "Total number of phase computations by result",
		},
		[]string{"result"},
	)

	// ComputationDuration tracks how long a full phase computation takes.
	ComputationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "epicboard",
			Subsystem: "phases",
			Name:      "computation_duration_seconds",
			Help:      "Duration of phase computations in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
		},
	)

	// CycleRejections counts dependency edits refused because they would close a cycle.
	// Labels: source (store, import, preview)
	CycleRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "epicboard",
			Subsystem: "deps",
			Name:      "cycle_rejections_total",
			Help:      "Total number of dependency edits rejected for closing a cycle",
		},
		[]string{"source"},
	)

	// DependencyEdits counts committed dependsOn edits.
	DependencyEdits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "epicboard",
			Subsystem: "deps",
			Name:      "edits_total",
			Help:      "Total number of committed dependency edits",
		},
	)

	// Epics is the number of epics in the last computed snapshot.
	Epics = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "epicboard",
			Subsystem: "store",
			Name:      "epics",
			Help:      "Number of epics in the last computed snapshot",
		},
	)
)

// ObserveComputation records one phase computation started at start.
func ObserveComputation(start time.Time, epics int, err error) {
	ComputationDuration.Observe(time.Since(start).Seconds())
	Epics.Set(float64(epics))
	if err != nil {
		PhaseComputations.WithLabelValues("cycle").Inc()
		return
	}
	PhaseComputations.WithLabelValues("ok").Inc()
}

// RecordCycleRejection records a refused dependency edit.
func RecordCycleRejection(source string) {
	CycleRejections.WithLabelValues(source).Inc()
}
