// Package metrics exposes Prometheus counters for pipeline runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/pipelinelog"
)

// Metrics holds every uxradar collector. Each instance owns its registry so
// several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	SourceRequests     *prometheus.CounterVec
	ListingsDropped    *prometheus.CounterVec
	DuplicatesRemoved  *prometheus.CounterVec
	ListingsClassified *prometheus.CounterVec
	Runs               *prometheus.CounterVec
	PipelineDuration   prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SourceRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uxradar_source_requests_total",
			Help: "Search requests per source by outcome (success, error)",
		}, []string{"source", "outcome"}),
		ListingsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uxradar_listings_dropped_total",
			Help: "Raw results dropped during normalization",
		}, []string{"source", "reason"}),
		DuplicatesRemoved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uxradar_duplicates_removed_total",
			Help: "Listings removed by deduplication",
		}, []string{"method"}),
		ListingsClassified: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uxradar_listings_classified_total",
			Help: "Listings returned by eligibility",
		}, []string{"eligibility"}),
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uxradar_pipeline_runs_total",
			Help: "Pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "uxradar_pipeline_duration_seconds",
			Help:    "Wall time of a full pipeline run",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRun records one finished run. A nil Metrics is a no-op.
func (m *Metrics) ObserveRun(outcome model.PipelineOutcome, events []pipelinelog.Event, elapsed time.Duration) {
	if m == nil {
		return
	}

	for _, e := range events {
		switch e.Stage {
		case "search_response":
			m.SourceRequests.WithLabelValues(e.Source, "success").Inc()
		case "search_error":
			m.SourceRequests.WithLabelValues(e.Source, "error").Inc()
		case "normalize_drops":
			for reason, n := range e.DropReasons {
				m.ListingsDropped.WithLabelValues(e.Source, reason).Add(float64(n))
			}
		}
	}

	if outcome.DedupMethod != "" {
		m.DuplicatesRemoved.WithLabelValues(string(outcome.DedupMethod)).Add(float64(outcome.DuplicatesRemoved))
	}
	for _, l := range outcome.Listings {
		m.ListingsClassified.WithLabelValues(string(l.Eligibility)).Inc()
	}
	m.Runs.WithLabelValues(string(outcome.Status)).Inc()
	m.PipelineDuration.Observe(elapsed.Seconds())
}
