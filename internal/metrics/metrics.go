// Package metrics provides Prometheus metrics for the assistant.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "netassist"

// Metrics holds the assistant's collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	QueriesTotal     *prometheus.CounterVec
	QueryDuration    prometheus.Histogram
	QueryFailures    prometheus.Counter
	WebEscalations   prometheus.Counter
	RetrievedDocs    prometheus.Histogram
	ChunksIngested   *prometheus.CounterVec
	IngestFailures   prometheus.Counter
	UpdateChecks     *prometheus.CounterVec
	UpdatedDocuments prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, including Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of answered queries by intent",
		}, []string{"intent"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "End-to-end duration of answering a query",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}),
		QueryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_failures_total",
			Help:      "Queries answered with the apology message",
		}),
		WebEscalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "web_escalations_total",
			Help:      "Queries whose local context was insufficient and fell back to web search",
		}),
		RetrievedDocs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieved_documents",
			Help:      "Distinct local documents retrieved per query",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}),
		ChunksIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_ingested_total",
			Help:      "Chunks written to the vector store by collection",
		}, []string{"collection"}),
		IngestFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_failures_total",
			Help:      "Ingestion units that failed",
		}),
		UpdateChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "update_checks_total",
			Help:      "Update checks by source and outcome",
		}, []string{"source", "status"}),
		UpdatedDocuments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updated_documents_total",
			Help:      "New or changed documents found by update checks",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.QueriesTotal,
		m.QueryDuration,
		m.QueryFailures,
		m.WebEscalations,
		m.RetrievedDocs,
		m.ChunksIngested,
		m.IngestFailures,
		m.UpdateChecks,
		m.UpdatedDocuments,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Registry returns the registry for exposition. Nil when m is nil.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordQuery records one answered query.
func (m *Metrics) RecordQuery(intent string, d time.Duration, docs int, web, failed bool) {
	if m == nil {
		return
	}
	if intent == "" {
		intent = "unknown"
	}
	m.QueriesTotal.WithLabelValues(intent).Inc()
	m.QueryDuration.Observe(d.Seconds())
	m.RetrievedDocs.Observe(float64(docs))
	if web {
		m.WebEscalations.Inc()
	}
	if failed {
		m.QueryFailures.Inc()
	}
}

// RecordIngest records chunks stored into a collection.
func (m *Metrics) RecordIngest(collection string, chunks int) {
	if m == nil || chunks <= 0 {
		return
	}
	m.ChunksIngested.WithLabelValues(collection).Add(float64(chunks))
}

// RecordIngestFailure records a failed ingestion unit.
func (m *Metrics) RecordIngestFailure() {
	if m == nil {
		return
	}
	m.IngestFailures.Inc()
}

// RecordUpdateCheck records an update check outcome.
func (m *Metrics) RecordUpdateCheck(source string, changed int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.UpdateChecks.WithLabelValues(source, status).Inc()
	if changed > 0 {
		m.UpdatedDocuments.Add(float64(changed))
	}
}

// RecordHTTPRequest records one API request.
func (m *Metrics) RecordHTTPRequest(route, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}
