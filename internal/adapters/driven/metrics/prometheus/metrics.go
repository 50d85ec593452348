// Package prometheus records service metrics with the Prometheus client
// and exposes them for scraping.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

const namespace = "repoqa"

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

// Metrics owns a private registry so tests and multiple servers never
// collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	fetches      *prometheus.CounterVec
	fetchFailed  *prometheus.CounterVec
	filesKept    prometheus.Histogram
	segments     prometheus.Histogram
	fetchSeconds prometheus.Histogram
	questions    *prometheus.CounterVec
	askSeconds   prometheus.Histogram
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_fetches_total",
			Help:      "Repositories loaded into a session.",
		}, []string{"from_cache", "truncated"}),
		fetchFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_fetch_failures_total",
			Help:      "Failed repository loads by error kind.",
		}, []string{"kind"}),
		filesKept: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repository_files",
			Help:      "Files indexed per repository.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		segments: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repository_segments",
			Help:      "Segments produced per repository.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
		}),
		fetchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repository_fetch_duration_seconds",
			Help:      "Time to fetch, segment and index a repository.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_total",
			Help:      "Questions answered by route.",
		}, []string{"route", "degraded"}),
		askSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "question_duration_seconds",
			Help:      "Time to answer a question.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetches, m.fetchFailed, m.filesKept, m.segments, m.fetchSeconds,
		m.questions, m.askSeconds,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RepositoryFetched records a successful ingest.
func (m *Metrics) RepositoryFetched(r *domain.IngestReport) {
	m.fetches.WithLabelValues(strconv.FormatBool(r.FromCache), strconv.FormatBool(r.Truncated)).Inc()
	m.filesKept.Observe(float64(r.FilesKept))
	m.segments.Observe(float64(r.Segments))
	m.fetchSeconds.Observe(r.Duration.Seconds())
}

// FetchFailed records a failed ingest.
func (m *Metrics) FetchFailed(kind string) {
	m.fetchFailed.WithLabelValues(kind).Inc()
}

// QuestionAnswered records one answered question.
func (m *Metrics) QuestionAnswered(route domain.Route, degraded bool, elapsed time.Duration) {
	m.questions.WithLabelValues(route.String(), strconv.FormatBool(degraded)).Inc()
	m.askSeconds.Observe(elapsed.Seconds())
}
