// Package metrics exposes Prometheus instrumentation for the acquisition
// pipeline and HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by handler and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ytdoc",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by handler and status code.",
	}, []string{"handler", "status"})

	// RequestDuration observes HTTP request latency by handler.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ytdoc",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by handler.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"handler"})

	// DocumentsGenerated counts generated documents by outcome.
	DocumentsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ytdoc",
		Subsystem: "pipeline",
		Name:      "documents_generated_total",
		Help:      "Documents generated by outcome (generated, cached, error).",
	}, []string{"outcome"})

	// ProviderFallbacks counts metadata provider failures that caused a
	// fall-through to the next provider.
	ProviderFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ytdoc",
		Subsystem: "pipeline",
		Name:      "provider_fallbacks_total",
		Help:      "Metadata provider failures that fell through to the next provider.",
	}, []string{"provider"})

	// TranscriptOutcomes counts transcript fetches by outcome.
	TranscriptOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ytdoc",
		Subsystem: "pipeline",
		Name:      "transcript_outcomes_total",
		Help:      "Transcript fetches by outcome (fetched, skipped).",
	}, []string{"outcome"})

	// StageDuration observes per-stage pipeline latency.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ytdoc",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Acquisition pipeline stage latency.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"stage"})

	// CacheLookups counts URL cache lookups by result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ytdoc",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Document URL cache lookups by result (hit, miss).",
	}, []string{"result"})
)
