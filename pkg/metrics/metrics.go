// Package metrics provides Prometheus metrics for the snapshot pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics collects and exposes pipeline Prometheus metrics.
// All record methods are safe on a nil receiver so components can run
// unmetered in tests.
type PipelineMetrics struct {
	registry *prometheus.Registry

	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Futures pipeline metrics
	MarketsDiscovered prometheus.Gauge
	MarketsSkipped    *prometheus.CounterVec
	MarketsClassified *prometheus.CounterVec
	TeamResolutions   *prometheus.CounterVec

	// Extractor metrics
	ExtractorStageUsed *prometheus.CounterVec

	// Snapshot metrics
	SectionEmpty   *prometheus.CounterVec
	CacheFallbacks *prometheus.CounterVec
}

// NewPipelineMetrics creates a new pipeline metrics collector.
func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	m := &PipelineMetrics{
		registry: registry,

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "futuresnap_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "futuresnap_run_duration_seconds",
				Help:    "Duration of a full pipeline run",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
		MarketsDiscovered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "futuresnap_markets_discovered",
				Help: "Market references returned by the last index fetch",
			},
		),
		MarketsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "futuresnap_markets_skipped_total",
				Help: "Markets dropped during a run, by reason",
			},
			[]string{"reason"},
		),
		MarketsClassified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "futuresnap_markets_classified_total",
				Help: "Markets successfully classified, by outcome kind",
			},
			[]string{"kind"},
		),
		TeamResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "futuresnap_team_resolutions_total",
				Help: "Team reference resolutions, by result",
			},
			[]string{"result"},
		),
		ExtractorStageUsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "futuresnap_extractor_stage_total",
				Help: "Extraction strategy that produced the accepted records",
			},
			[]string{"stage"},
		),
		SectionEmpty: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "futuresnap_section_empty_total",
				Help: "Snapshot sections produced empty by a run",
			},
			[]string{"section"},
		),
		CacheFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "futuresnap_cache_fallbacks_total",
				Help: "Sections carried forward from the previous snapshot",
			},
			[]string{"section"},
		),
	}

	registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.MarketsDiscovered,
		m.MarketsSkipped,
		m.MarketsClassified,
		m.TeamResolutions,
		m.ExtractorStageUsed,
		m.SectionEmpty,
		m.CacheFallbacks,
	)

	return m
}

// Handler returns an HTTP handler serving the registry.
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRun records a completed run and its duration.
func (m *PipelineMetrics) RecordRun(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(d.Seconds())
}

// RecordDiscovery records the size of the discovered market index.
func (m *PipelineMetrics) RecordDiscovery(count int) {
	if m == nil {
		return
	}
	m.MarketsDiscovered.Set(float64(count))
}

// RecordSkip records a dropped market.
func (m *PipelineMetrics) RecordSkip(reason string) {
	if m == nil {
		return
	}
	m.MarketsSkipped.WithLabelValues(reason).Inc()
}

// RecordClassified records a classified market.
func (m *PipelineMetrics) RecordClassified(kind string) {
	if m == nil {
		return
	}
	m.MarketsClassified.WithLabelValues(kind).Inc()
}

// RecordResolution records one team-reference resolution attempt.
func (m *PipelineMetrics) RecordResolution(result string) {
	if m == nil {
		return
	}
	m.TeamResolutions.WithLabelValues(result).Inc()
}

// RecordExtractorStage records which extraction strategy was accepted.
func (m *PipelineMetrics) RecordExtractorStage(stage string) {
	if m == nil {
		return
	}
	m.ExtractorStageUsed.WithLabelValues(stage).Inc()
}

// RecordEmptySection records a section a run produced empty.
func (m *PipelineMetrics) RecordEmptySection(section string) {
	if m == nil {
		return
	}
	m.SectionEmpty.WithLabelValues(section).Inc()
}

// RecordCacheFallback records a section substituted from the previous
// snapshot.
func (m *PipelineMetrics) RecordCacheFallback(section string) {
	if m == nil {
		return
	}
	m.CacheFallbacks.WithLabelValues(section).Inc()
}
