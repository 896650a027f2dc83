// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for weekly runs. Every Record
// method is safe to call on a nil *Metrics, so components can run without
// instrumentation in tests and one-shot CLI invocations.
type Metrics struct {
	// WeeksProcessed counts finished week runs by terminal state.
	WeeksProcessed *prometheus.CounterVec

	// RunDuration observes the wall time of one week run in seconds.
	RunDuration prometheus.Histogram

	// AdapterCalls counts adapter invocations by provider and outcome
	// (success, empty, rate_limited, unavailable, skipped).
	AdapterCalls *prometheus.CounterVec

	// AdapterDuration observes adapter call duration in seconds by provider.
	AdapterDuration *prometheus.HistogramVec

	// RateLimited counts providers flagged as throttled during a run.
	RateLimited *prometheus.CounterVec

	// RecordsCollected counts records returned per logical source.
	RecordsCollected *prometheus.CounterVec

	// SourcesSkipped counts logical sources that contributed nothing.
	SourcesSkipped *prometheus.CounterVec

	// EnrichmentFailures counts degraded enrichments by stage
	// (metadata, translate).
	EnrichmentFailures *prometheus.CounterVec

	// RecordsDropped counts records removed as malformed by reason.
	RecordsDropped *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on reg under namespace.
// A nil reg registers on the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		WeeksProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "runs",
			Name:      "weeks_processed_total",
			Help:      "Week runs by terminal state.",
		}, []string{"state"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "runs",
			Name:      "duration_seconds",
			Help:      "Duration of one week run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		AdapterCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sources",
			Name:      "adapter_calls_total",
			Help:      "Adapter invocations by provider and outcome.",
		}, []string{"provider", "outcome"}),
		AdapterDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sources",
			Name:      "adapter_duration_seconds",
			Help:      "Adapter call duration.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"provider"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sources",
			Name:      "rate_limited_total",
			Help:      "Providers flagged as rate limited.",
		}, []string{"provider"}),
		RecordsCollected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sources",
			Name:      "records_total",
			Help:      "Records collected per logical source.",
		}, []string{"source"}),
		SourcesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sources",
			Name:      "skipped_total",
			Help:      "Logical sources that contributed no records.",
		}, []string{"source"}),
		EnrichmentFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "failures_total",
			Help:      "Degraded enrichments by stage.",
		}, []string{"stage"}),
		RecordsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "records_dropped_total",
			Help:      "Records dropped as malformed.",
		}, []string{"reason"}),
	}
}

// RecordWeek records the terminal state and duration of a week run.
func (m *Metrics) RecordWeek(state string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.WeeksProcessed.WithLabelValues(state).Inc()
	m.RunDuration.Observe(durationSeconds)
}

// RecordAdapterCall records one adapter invocation.
func (m *Metrics) RecordAdapterCall(provider, outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.AdapterCalls.WithLabelValues(provider, outcome).Inc()
	m.AdapterDuration.WithLabelValues(provider).Observe(durationSeconds)
}

// RecordAdapterSkipped records an adapter not called because its provider
// was already flagged.
func (m *Metrics) RecordAdapterSkipped(provider string) {
	if m == nil {
		return
	}
	m.AdapterCalls.WithLabelValues(provider, "skipped").Inc()
}

// RecordRateLimited records a provider being flagged for the run.
func (m *Metrics) RecordRateLimited(provider string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(provider).Inc()
}

// RecordSource records the result of one logical source.
func (m *Metrics) RecordSource(source string, records int) {
	if m == nil {
		return
	}
	if records == 0 {
		m.SourcesSkipped.WithLabelValues(source).Inc()
		return
	}
	m.RecordsCollected.WithLabelValues(source).Add(float64(records))
}

// RecordEnrichmentFailure records a degraded enrichment.
func (m *Metrics) RecordEnrichmentFailure(stage string) {
	if m == nil {
		return
	}
	m.EnrichmentFailures.WithLabelValues(stage).Inc()
}

// RecordDropped records a record removed as malformed.
func (m *Metrics) RecordDropped(reason string) {
	if m == nil {
		return
	}
	m.RecordsDropped.WithLabelValues(reason).Inc()
}
