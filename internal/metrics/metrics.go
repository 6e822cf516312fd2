// Package metrics exposes prometheus instrumentation for the assessment
// pipeline and the persisted stores.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Assessment outcomes
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
)

type Metrics struct {
	registry *prometheus.Registry

	assessmentsTotal *prometheus.CounterVec
	modelLatency     *prometheus.HistogramVec
	pipelineFailures *prometheus.CounterVec
	storeEntries     *prometheus.GaugeVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Default returns the process-wide metrics instance
func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

// New creates a Metrics instance backed by its own registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		assessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_assessments_total",
			Help: "Assessment requests by input variant and outcome",
		}, []string{"variant", "outcome"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carelink_model_latency_seconds",
			Help:    "Latency of generative model calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"variant"}),
		pipelineFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_pipeline_failures_total",
			Help: "Pipeline failures by error code before fallback substitution",
		}, []string{"code"}),
		storeEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "carelink_store_entries",
			Help: "Current number of entries held by each store",
		}, []string{"store"}),
	}

	registry.MustRegister(m.assessmentsTotal, m.modelLatency, m.pipelineFailures, m.storeEntries)
	return m
}

func (m *Metrics) RecordAssessment(variant, outcome string) {
	m.assessmentsTotal.WithLabelValues(variant, outcome).Inc()
}

func (m *Metrics) RecordModelLatency(variant string, d time.Duration) {
	m.modelLatency.WithLabelValues(variant).Observe(d.Seconds())
}

func (m *Metrics) RecordPipelineFailure(code string) {
	m.pipelineFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) SetStoreEntries(store string, n int) {
	m.storeEntries.WithLabelValues(store).Set(float64(n))
}

// Handler returns the scrape endpoint handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
