// Package metrics exposes Prometheus counters and gauges for sessions,
// external lookups and HTTP requests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests          *prometheus.CounterVec
	CounterSetsLogged        prometheus.Counter
	CounterPersonalRecords   prometheus.Counter
	CounterSessions          *prometheus.CounterVec
	CounterExternalFailures  *prometheus.CounterVec
	CounterExerciseCacheHits *prometheus.CounterVec

	// gauges
	GaugeActiveSessions prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("reprx", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("reprx", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterSetsLogged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sets_logged",
			Help:      "The total number of logged sets",
		}),
		CounterPersonalRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "personal_records",
			Help:      "The total number of sets flagged as personal records",
		}),
		CounterSessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions",
			Help:      "Workout sessions by outcome",
		}, []string{"outcome"}),
		CounterExternalFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "external_failures",
			Help:      "Failed calls to external services",
		}, []string{"service"}),
		CounterExerciseCacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "exercise_lookups",
			Help:      "Exercise media lookups by source",
		}, []string{"source"}),
		GaugeActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_sessions",
			Help:      "Sessions currently running",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		}),
	}
}

// Session outcomes.
const (
	OutcomeStarted   = "started"
	OutcomeCompleted = "completed"
	OutcomeAbandoned = "abandoned"
)

// External services.
const (
	ServiceGroq       = "groq"
	ServiceExerciseDB = "exercisedb"
	ServiceWger       = "wger"
	ServiceStore      = "store"
)

// Lookup sources.
const (
	SourceCache  = "cache"
	SourceStore  = "store"
	SourceRemote = "remote"
)
