package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "inspection_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	pollCycles       *prometheus.CounterVec
	pollInspections  *prometheus.CounterVec
	pollCycleLatency prometheus.Histogram

	predictionsTotal *prometheus.CounterVec
	scoringLatency   prometheus.Histogram

	escalationsTotal prometheus.Counter

	schedulerRunning prometheus.Gauge
)

// Init registers observability metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		pollCycles = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "poll_cycles_total",
				Help: "Total sensor poll cycles by result",
			},
			[]string{"result"},
		)
		pollInspections = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "poll_inspections_total",
				Help: "Total per-inspection poll attempts by result",
			},
			[]string{"result"},
		)
		pollCycleLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "poll_cycle_latency_seconds",
				Help:    "Poll cycle latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)

		predictionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "predictions_total",
				Help: "Total failure predictions by priority",
			},
			[]string{"priority"},
		)
		scoringLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "scoring_latency_seconds",
				Help:    "Scoring and persistence latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)

		escalationsTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "escalations_total",
				Help: "Total critical-priority escalation signals",
			},
		)

		schedulerRunning = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "scheduler_running",
				Help: "Whether the polling scheduler loop is active",
			},
		)

		prometheus.MustRegister(
			pollCycles,
			pollInspections,
			pollCycleLatency,
			predictionsTotal,
			scoringLatency,
			escalationsTotal,
			schedulerRunning,
		)
	})
}

// ObservePollCycle records one completed poll cycle.
func ObservePollCycle(err error, elapsed time.Duration) {
	if pollCycles == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	pollCycles.WithLabelValues(result).Inc()
	pollCycleLatency.Observe(elapsed.Seconds())
}

// ObservePollInspection records one per-inspection poll attempt.
func ObservePollInspection(err error) {
	if pollInspections == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	pollInspections.WithLabelValues(result).Inc()
}

// ObservePrediction records one stored prediction.
func ObservePrediction(priority string, elapsed time.Duration) {
	if predictionsTotal == nil {
		return
	}
	predictionsTotal.WithLabelValues(priority).Inc()
	scoringLatency.Observe(elapsed.Seconds())
}

// ObserveEscalation records one critical escalation signal.
func ObserveEscalation() {
	if escalationsTotal == nil {
		return
	}
	escalationsTotal.Inc()
}

// SetSchedulerRunning flags the scheduler loop state.
func SetSchedulerRunning(running bool) {
	if schedulerRunning == nil {
		return
	}
	if running {
		schedulerRunning.Set(1)
		return
	}
	schedulerRunning.Set(0)
}
