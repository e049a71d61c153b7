// internal/monitoring/metrics.go

// Package monitoring exposes Prometheus metrics and a small status
// server for long archive harvests.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the harvester's Prometheus collectors. Each Metrics
// value carries its own registry so independent runs never collide on
// registration.
type Metrics struct {
	registry *prometheus.Registry

	archiveEpisodes *prometheus.CounterVec
	episodesBuilt   *prometheus.CounterVec
	episodesSkipped *prometheus.CounterVec
	episodeFailures *prometheus.CounterVec
	peopleResolved  prometheus.Gauge
	sponsorsFound   prometheus.Gauge
	showDuration    *prometheus.HistogramVec
}

// NewMetrics creates the harvester metric set under the showharvest
// namespace.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{registry: registry}

	m.archiveEpisodes = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "showharvest",
			Name:      "archive_episodes_found_total",
			Help:      "Episodes discovered in the legacy archive",
		},
		[]string{"show"},
	)

	m.episodesBuilt = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "showharvest",
			Name:      "episodes_built_total",
			Help:      "Episode content files assembled and written",
		},
		[]string{"show"},
	)

	m.episodesSkipped = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "showharvest",
			Name:      "episodes_skipped_total",
			Help:      "Episodes skipped because their content file already exists",
		},
		[]string{"show"},
	)

	m.episodeFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "showharvest",
			Name:      "episode_failures_total",
			Help:      "Episodes that failed to build",
		},
		[]string{"show"},
	)

	m.peopleResolved = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "showharvest",
			Name:      "people_resolved",
			Help:      "Distinct people resolved across all shows",
		},
	)

	m.sponsorsFound = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "showharvest",
			Name:      "sponsors_found",
			Help:      "Distinct sponsors found across all shows",
		},
	)

	m.showDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "showharvest",
			Name:      "show_harvest_duration_seconds",
			Help:      "Wall time spent harvesting one show's feed",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"show"},
	)

	return m
}

func (m *Metrics) AddArchiveEpisodes(show string, n int) {
	m.archiveEpisodes.WithLabelValues(show).Add(float64(n))
}

func (m *Metrics) RecordEpisodeBuilt(show string) {
	m.episodesBuilt.WithLabelValues(show).Inc()
}

func (m *Metrics) RecordEpisodeSkipped(show string) {
	m.episodesSkipped.WithLabelValues(show).Inc()
}

func (m *Metrics) RecordEpisodeFailure(show string) {
	m.episodeFailures.WithLabelValues(show).Inc()
}

func (m *Metrics) SetPeopleResolved(n int) {
	m.peopleResolved.Set(float64(n))
}

func (m *Metrics) SetSponsorsFound(n int) {
	m.sponsorsFound.Set(float64(n))
}

func (m *Metrics) ObserveShowDuration(show string, seconds float64) {
	m.showDuration.WithLabelValues(show).Observe(seconds)
}

// Handler serves this metric set in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
