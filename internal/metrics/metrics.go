// Package metrics exposes Prometheus instruments for validation runs.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scrypster/folio/pkg/types"
)

// Run results.
const (
	ResultValid       = "valid"
	ResultInvalid     = "invalid"
	ResultSchemaError = "schema_error"
	ResultLoadError   = "load_error"
)

type metrics struct {
	runsTotal   *prometheus.CounterVec
	issuesTotal *prometheus.CounterVec

	runDuration *prometheus.HistogramVec

	lastScore    prometheus.Gauge
	lastEntities prometheus.Gauge
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		runsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "validation_runs_total",
			Help:      "Total number of validation runs by result.",
		}, []string{"result"}),
		issuesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "issues_total",
			Help:      "Total number of reported issues by kind.",
		}, []string{"kind"}),
		runDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "folio",
			Name:      "validation_duration_seconds",
			Help:      "Latency distribution for validation runs.",
			Buckets: []float64{
				0.001, 0.005, 0.01,
				0.05, 0.1, 0.5,
				1, 5, 10,
			},
		}, []string{"result"}),
		lastScore: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "folio",
			Name:      "last_quality_score",
			Help:      "Quality score of the most recent successful validation run.",
		}),
		lastEntities: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "folio",
			Name:      "last_total_entities",
			Help:      "Entity count of the most recent successful validation run.",
		}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

// ObserveReport records a completed validation run.
func ObserveReport(r types.Report, score int, elapsed time.Duration) {
	m := getMetrics()
	result := ResultValid
	if !r.IsValid {
		result = ResultInvalid
	}
	m.runsTotal.WithLabelValues(result).Inc()
	m.runDuration.WithLabelValues(result).Observe(elapsed.Seconds())
	for _, issue := range r.Errors {
		m.issuesTotal.WithLabelValues(string(issue.Kind)).Inc()
	}
	for _, issue := range r.Warnings {
		m.issuesTotal.WithLabelValues(string(issue.Kind)).Inc()
	}
	m.lastScore.Set(float64(score))
	m.lastEntities.Set(float64(r.Stats.TotalEntities))
}

// ObserveFailure records a run that stopped before integrity checks.
// result is ResultSchemaError or ResultLoadError.
func ObserveFailure(result string, elapsed time.Duration) {
	m := getMetrics()
	m.runsTotal.WithLabelValues(result).Inc()
	m.runDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// RunsTotal returns the run counter for result. Exposed for tests.
func RunsTotal(result string) prometheus.Counter {
	return getMetrics().runsTotal.WithLabelValues(result)
}

// IssuesTotal returns the issue counter for kind. Exposed for tests.
func IssuesTotal(kind types.IssueKind) prometheus.Counter {
	return getMetrics().issuesTotal.WithLabelValues(string(kind))
}

// LastScore returns the last-score gauge. Exposed for tests.
func LastScore() prometheus.Gauge {
	return getMetrics().lastScore
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	getMetrics()
	return promhttp.Handler()
}
